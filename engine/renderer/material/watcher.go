package material

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// SourceCallback receives a re-parsed material source, or the error that prevented parsing.
type SourceCallback func(MaterialSource, error)

// sourceWatcher is the implementation of the SourceWatcher interface.
type sourceWatcher struct {
	mu        *sync.Mutex
	watcher   *fsnotify.Watcher
	callbacks map[string]SourceCallback
	dirs      map[string]int
	done      chan struct{}
	wg        *sync.WaitGroup
}

// SourceWatcher re-parses material source files when they change on disk so the application
// can rebuild the materials that use them. Callbacks run on the watcher goroutine; hand the
// result to the render loop before touching registered materials.
type SourceWatcher interface {
	// Watch registers a callback for a material source file. The file's directory is watched so
	// editors that replace files on save are handled.
	//
	// Parameters:
	//   - path: the material source path
	//   - fn: the callback invoked after each write
	//
	// Returns:
	//   - error: an error if the path cannot be resolved or watched
	Watch(path string, fn SourceCallback) error

	// Unwatch removes the callback for a material source file.
	//
	// Parameters:
	//   - path: the material source path
	Unwatch(path string)

	// Close stops the watcher goroutine and releases the underlying watcher.
	//
	// Returns:
	//   - error: an error from closing the underlying watcher
	Close() error
}

var _ SourceWatcher = &sourceWatcher{}

// NewSourceWatcher starts a SourceWatcher.
//
// Returns:
//   - SourceWatcher: the running watcher
//   - error: an error if the platform watcher cannot be created
func NewSourceWatcher() (SourceWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("material: failed to create source watcher: %w", err)
	}
	sw := &sourceWatcher{
		mu:        &sync.Mutex{},
		watcher:   w,
		callbacks: make(map[string]SourceCallback),
		dirs:      make(map[string]int),
		done:      make(chan struct{}),
		wg:        &sync.WaitGroup{},
	}
	sw.wg.Add(1)
	go sw.run()
	return sw, nil
}

func (sw *sourceWatcher) Watch(path string, fn SourceCallback) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("material: failed to resolve %q: %w", path, err)
	}
	if _, err := FormatForPath(abs); err != nil {
		return err
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()
	if _, exists := sw.callbacks[abs]; !exists {
		dir := filepath.Dir(abs)
		if sw.dirs[dir] == 0 {
			if err := sw.watcher.Add(dir); err != nil {
				return fmt.Errorf("material: failed to watch %q: %w", dir, err)
			}
		}
		sw.dirs[dir]++
	}
	sw.callbacks[abs] = fn
	return nil
}

func (sw *sourceWatcher) Unwatch(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if _, exists := sw.callbacks[abs]; !exists {
		return
	}
	delete(sw.callbacks, abs)
	dir := filepath.Dir(abs)
	sw.dirs[dir]--
	if sw.dirs[dir] == 0 {
		delete(sw.dirs, dir)
		_ = sw.watcher.Remove(dir)
	}
}

func (sw *sourceWatcher) Close() error {
	select {
	case <-sw.done:
		return nil
	default:
	}
	close(sw.done)
	err := sw.watcher.Close()
	sw.wg.Wait()
	return err
}

func (sw *sourceWatcher) run() {
	defer sw.wg.Done()
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			sw.mu.Lock()
			fn := sw.callbacks[abs]
			sw.mu.Unlock()
			if fn == nil {
				continue
			}
			fn(SourceFromFile(abs))
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[Material] source watcher error: %v", err)
		}
	}
}
