package engine

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/polygon/engine/profiler"
	"github.com/Carmen-Shannon/polygon/engine/scene"
	"github.com/Carmen-Shannon/polygon/engine/window"
)

// engine implements the Engine interface.
type engine struct {
	quitChannel chan struct{}
	quitOnce    sync.Once

	window window.Window
	scene  scene.Scene

	profiler         *profiler.Profiler
	profilingEnabled bool

	updateCallback func(deltaTime float32)
	errorHandler   func(err error) bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxFrames        uint64        // stop after this many frames; 0 = unlimited

	frames    atomic.Uint64
	lastFrame time.Time
	frameErr  error
	titleBase string
}

// Engine drives the render loop: each iteration runs the update callback, draws the scene and
// presents. With a window the loop follows the window's message pump; without one it runs
// headless until Quit is called or the frame limit is reached.
type Engine interface {
	// Window returns the window the engine presents into, or nil when headless.
	Window() window.Window

	// Scene returns the scene drawn every frame.
	Scene() scene.Scene

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetUpdateCallback registers the function called before every frame is drawn.
	// Scene mutation belongs here, since it runs on the render loop.
	//
	// Parameters:
	//   - callback: function receiving the delta time since the previous frame in seconds
	SetUpdateCallback(callback func(deltaTime float32))

	// SetErrorHandler registers the function deciding what happens when a frame fails.
	// By default the error is logged and the engine quits.
	//
	// Parameters:
	//   - handler: function receiving the frame error; returning true keeps the loop running
	SetErrorHandler(handler func(err error) bool)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frames returns the number of frames rendered so far.
	Frames() uint64

	// Run starts the render loop and blocks until it stops.
	//
	// Returns:
	//   - error: the frame error that stopped the loop, or nil on a normal quit
	Run() error

	// Quit signals the render loop to stop after the current frame.
	// Safe to call multiple times and from any goroutine.
	Quit()
}

// NewEngine creates a new Engine drawing s. NewEngine panics if s is nil.
//
// Parameters:
//   - s: the scene to draw every frame (must not be nil)
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(s scene.Scene, options ...EngineBuilderOption) Engine {
	if s == nil {
		panic("engine: NewEngine requires a non-nil Scene")
	}
	e := &engine{
		quitChannel: make(chan struct{}),
		scene:       s,
		profiler:    profiler.NewProfiler(),
	}
	e.errorHandler = e.defaultErrorHandler

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.titleBase = e.window.Title()
		e.window.SetResizeCallback(func(width, height int) {
			e.scene.Renderer().Resize(width, height)
		})
		e.window.SetCloseCallback(e.Quit)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetUpdateCallback(callback func(deltaTime float32)) {
	e.updateCallback = callback
}

func (e *engine) SetErrorHandler(handler func(err error) bool) {
	if handler == nil {
		handler = e.defaultErrorHandler
	}
	e.errorHandler = handler
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func (e *engine) Frames() uint64 {
	return e.frames.Load()
}

func (e *engine) Run() error {
	e.lastFrame = time.Now()

	if e.window != nil {
		e.window.SetUpdateCallback(func() {
			if !e.frame() {
				e.window.RequestClose()
			}
		})
		e.window.ProcessMessages()
		e.Quit()
		return e.frameErr
	}

	for e.frame() {
	}
	return e.frameErr
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) quitting() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

// frame runs one iteration of the render loop and reports whether the loop should continue.
func (e *engine) frame() (cont bool) {
	if e.quitting() {
		return false
	}
	if e.maxFrames > 0 && e.frames.Load() >= e.maxFrames {
		e.Quit()
		return false
	}

	// Recover from panics inside user callbacks or the draw to shut down cleanly.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] render loop recovered from panic: %v", r)
			e.frameErr = fmt.Errorf("engine: render loop panic: %v", r)
			e.Quit()
			cont = false
		}
	}()

	start := time.Now()
	dt := float32(start.Sub(e.lastFrame).Seconds())
	e.lastFrame = start

	if e.updateCallback != nil {
		e.updateCallback(dt)
	}

	if err := e.scene.Draw(); err != nil {
		if !e.errorHandler(err) {
			e.frameErr = err
			e.Quit()
			return false
		}
		return !e.quitting()
	}
	e.frames.Add(1)

	if e.profilingEnabled {
		stats := e.scene.LastFrameStats()
		if e.profiler.Tick(stats.Drawn, stats.Skipped()) && e.window != nil {
			e.window.SetTitle(fmt.Sprintf("%s | %.0f FPS", e.titleBase, e.profiler.LastReport().FPS))
		}
	}

	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return !e.quitting()
}

func (e *engine) defaultErrorHandler(err error) bool {
	log.Printf("[Engine] frame failed: %v", err)
	return false
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
