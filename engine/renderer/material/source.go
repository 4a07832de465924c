package material

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SourceFormat is the textual format of a material source file.
type SourceFormat int

const (
	// SourceFormatTOML is used for .material and .toml files.
	SourceFormatTOML SourceFormat = iota

	// SourceFormatYAML is used for .yaml and .yml files.
	SourceFormatYAML
)

func (f SourceFormat) String() string {
	switch f {
	case SourceFormatTOML:
		return "toml"
	case SourceFormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("SourceFormat(%d)", int(f))
	}
}

// PropertySource declares one property slot a material exposes.
type PropertySource struct {
	Name string `toml:"name" yaml:"name"`
	Kind string `toml:"kind" yaml:"kind"`
}

// MaterialSource is the declarative description of a material: the shader it binds to and
// the ordered property slots it exposes.
//
// TOML:
//
//	shader = "diffuse_lit"
//
//	[[property]]
//	name = "surface_color"
//	kind = "color"
//
// YAML:
//
//	shader: diffuse_lit
//	properties:
//	  - name: surface_color
//	    kind: color
type MaterialSource struct {
	// Name optionally labels materials built from this source.
	Name string `toml:"name,omitempty" yaml:"name,omitempty"`

	// Shader is the key of the shader in the Library.
	Shader string `toml:"shader" yaml:"shader"`

	// Properties lists the exposed property slots in order.
	Properties []PropertySource `toml:"property" yaml:"properties"`
}

// FormatForPath picks the source format from a file extension.
//
// Parameters:
//   - path: the source file path
//
// Returns:
//   - SourceFormat: the detected format
//   - error: ErrUnknownFormat if the extension is not recognized
func FormatForPath(path string) (SourceFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".material", ".toml":
		return SourceFormatTOML, nil
	case ".yaml", ".yml":
		return SourceFormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// SourceFromFile reads and parses a material source file. The format is chosen from the
// extension (see FormatForPath). When the source has no name, the file name without its
// extension is used.
//
// Parameters:
//   - path: the source file path
//
// Returns:
//   - MaterialSource: the parsed source
//   - error: an error if the file cannot be read, has an unknown extension, or is malformed
func SourceFromFile(path string) (MaterialSource, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return MaterialSource{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return MaterialSource{}, fmt.Errorf("material: failed to read source %q: %w", path, err)
	}
	src, err := ParseSource(data, format)
	if err != nil {
		return MaterialSource{}, fmt.Errorf("material: %s: %w", path, err)
	}
	if src.Name == "" {
		src.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return src, nil
}

// ParseSource decodes a material source. Unknown keys are rejected.
//
// Parameters:
//   - data: the encoded source
//   - format: the encoding of data
//
// Returns:
//   - MaterialSource: the parsed source
//   - error: an error if data is malformed or names no shader
func ParseSource(data []byte, format SourceFormat) (MaterialSource, error) {
	var src MaterialSource
	switch format {
	case SourceFormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
		if err := dec.Decode(&src); err != nil {
			return MaterialSource{}, fmt.Errorf("invalid toml source: %w", err)
		}
	case SourceFormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&src); err != nil {
			return MaterialSource{}, fmt.Errorf("invalid yaml source: %w", err)
		}
	default:
		return MaterialSource{}, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if strings.TrimSpace(src.Shader) == "" {
		return MaterialSource{}, fmt.Errorf("source does not name a shader")
	}
	return src, nil
}

// Marshal encodes the source in the given format.
//
// Parameters:
//   - format: the target encoding
//
// Returns:
//   - []byte: the encoded source
//   - error: an error if encoding fails or the format is unknown
func (s MaterialSource) Marshal(format SourceFormat) ([]byte, error) {
	switch format {
	case SourceFormatTOML:
		return toml.Marshal(s)
	case SourceFormatYAML:
		return yaml.Marshal(s)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
