package loader

import (
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/model"
)

// ErrUnsupportedFormat is returned for a model file with an extension no backend reads.
var ErrUnsupportedFormat = errors.New("loader: unsupported model format")

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu *sync.RWMutex

	modelCache map[string]*model.Model
	backend    loaderBackend

	workers int
	pool    worker.DynamicWorkerPool
}

// Loader imports static 3D models from files and caches them by path. Loaded models are CPU-side
// data; model.Spawn registers them into a scene.
// Thread-safe for concurrent access.
type Loader interface {
	// Load imports a model file and caches the result. A cached model is returned as is.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *model.Model: the loaded model
	//   - error: ErrUnsupportedFormat for an unknown extension, or the import error
	Load(path string) (*model.Model, error)

	// LoadAll imports several model files in parallel on the loader's worker pool.
	//
	// Parameters:
	//   - paths: the file paths to load
	//
	// Returns:
	//   - []*model.Model: the models in the order of paths
	//   - error: every failure joined together; successfully loaded models are still cached
	LoadAll(paths ...string) ([]*model.Model, error)

	// LoadReader imports a model from a stream and caches it under name.
	//
	// Parameters:
	//   - name: the cache key and model name
	//   - r: the reader providing model data
	//   - binary: true for GLB, false for glTF JSON
	//   - baseDir: directory external buffers and images are resolved against
	//
	// Returns:
	//   - *model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, binary bool, baseDir string) (*model.Model, error)

	// Get retrieves a cached model.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *model.Model: the cached model
	//   - bool: false if nothing is cached under name
	Get(name string) (*model.Model, bool)

	// Evict drops a model from the cache.
	//
	// Parameters:
	//   - name: the cache key
	//
	// Returns:
	//   - bool: true if a model was cached under name
	Evict(name string) bool

	// Names returns every cache key in sorted order.
	Names() []string

	// Close stops the worker pool. The cache stays readable and LoadAll loads one file at a
	// time afterwards.
	Close()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         &sync.RWMutex{},
		modelCache: make(map[string]*model.Model),
		workers:    4,
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	default:
		panic(fmt.Sprintf("loader: unknown backend type %d", backendType))
	}

	for _, option := range options {
		option(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 64, 1*time.Second)
	return l
}

func (l *loader) Load(path string) (*model.Model, error) {
	if m, ok := l.Get(path); ok {
		return m, nil
	}
	if !slices.Contains(l.backend.Extensions(), strings.ToLower(filepath.Ext(path))) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	m, err := l.backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to load %s: %w", path, err)
	}
	log.Printf("[Loader] loaded %q: %d meshes, %d materials, %d nodes", path, len(m.Meshes), len(m.Materials), len(m.Nodes))
	return l.store(path, m), nil
}

func (l *loader) LoadAll(paths ...string) ([]*model.Model, error) {
	models := make([]*model.Model, len(paths))
	errs := make([]error, len(paths))

	l.mu.RLock()
	pool := l.pool
	l.mu.RUnlock()
	if pool == nil {
		for i, path := range paths {
			models[i], errs[i] = l.Load(path)
		}
		return models, errors.Join(errs...)
	}

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				models[i], errs[i] = l.Load(path)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()
	return models, errors.Join(errs...)
}

func (l *loader) LoadReader(name string, r io.Reader, binary bool, baseDir string) (*model.Model, error) {
	if m, ok := l.Get(name); ok {
		return m, nil
	}
	m, err := l.backend.LoadReader(name, r, binary, baseDir)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to load %s: %w", name, err)
	}
	return l.store(name, m), nil
}

// store caches m under key unless another load won the race, in which case that model is kept.
func (l *loader) store(key string, m *model.Model) *model.Model {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.modelCache[key]; ok {
		return existing
	}
	l.modelCache[key] = m
	return m
}

func (l *loader) Get(name string) (*model.Model, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.modelCache[name]
	return m, ok
}

func (l *loader) Evict(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.modelCache[name]
	delete(l.modelCache, name)
	return ok
}

func (l *loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.modelCache))
	for k := range l.modelCache {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func (l *loader) Close() {
	l.mu.Lock()
	pool := l.pool
	l.pool = nil
	l.mu.Unlock()
	common.StopWorkerPool(pool, l.workers)
}
