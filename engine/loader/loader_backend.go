package loader

import (
	"io"

	"github.com/Carmen-Shannon/polygon/engine/model"
)

// loaderBackend loads models of one file format from files or streams.
type loaderBackend interface {
	// Extensions lists the lower-case file extensions the backend reads, including the dot.
	Extensions() []string

	// Load imports a model from a file.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.Model: the imported model
	//   - error: error if loading fails
	Load(path string) (*model.Model, error)

	// LoadReader imports a model from a stream.
	//
	// Parameters:
	//   - name: the model name
	//   - r: the reader providing model data
	//   - binary: true for the binary variant of the format
	//   - baseDir: directory external resources are resolved against
	//
	// Returns:
	//   - *model.Model: the imported model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, binary bool, baseDir string) (*model.Model, error)
}
