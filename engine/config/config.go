// Package config loads the optional engine configuration file and turns it into the builder
// options of the window, renderer, scene and engine.
//
// TOML:
//
//	[window]
//	title = "materials"
//	width = 1280
//	height = 720
//
//	[renderer]
//	present_mode = "vsync"
//	msaa = 4
//	clear_color = [0.1, 0.1, 0.1]
//
//	[scene]
//	ambient = [1.0, 1.0, 1.0]
//
//	[engine]
//	profiling = true
//	frame_limit = 120
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine"
	"github.com/Carmen-Shannon/polygon/engine/renderer"
	"github.com/Carmen-Shannon/polygon/engine/scene"
	"github.com/Carmen-Shannon/polygon/engine/window"
)

// ErrUnknownFormat is returned for a configuration file with an unrecognized extension.
var ErrUnknownFormat = errors.New("config: unknown format")

// Format is the textual format of a configuration file.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// WindowConfig configures the native window.
type WindowConfig struct {
	Title     string `toml:"title" yaml:"title"`
	Width     int    `toml:"width" yaml:"width"`
	Height    int    `toml:"height" yaml:"height"`
	Resizable *bool  `toml:"resizable,omitempty" yaml:"resizable,omitempty"`
}

// RendererConfig configures the renderer and its surface.
type RendererConfig struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode" yaml:"present_mode"`
	// MSAA is the sample count: 1, 4, 8 or 16.
	MSAA             int       `toml:"msaa" yaml:"msaa"`
	ClearColor       []float32 `toml:"clear_color,omitempty" yaml:"clear_color,omitempty"`
	SoftwareRenderer bool      `toml:"software_renderer" yaml:"software_renderer"`
}

// SceneConfig configures the scene registry and draw pipeline.
type SceneConfig struct {
	Name             string    `toml:"name,omitempty" yaml:"name,omitempty"`
	Ambient          []float32 `toml:"ambient,omitempty" yaml:"ambient,omitempty"`
	TransformWorkers int       `toml:"transform_workers,omitempty" yaml:"transform_workers,omitempty"`
	CullingDisabled  bool      `toml:"culling_disabled" yaml:"culling_disabled"`
}

// EngineConfig configures the render loop.
type EngineConfig struct {
	Profiling  bool    `toml:"profiling" yaml:"profiling"`
	FrameLimit float64 `toml:"frame_limit" yaml:"frame_limit"`
	MaxFrames  uint64  `toml:"max_frames" yaml:"max_frames"`
}

// Config is the full engine configuration. Zero values mean "use the component default".
type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Scene    SceneConfig    `toml:"scene" yaml:"scene"`
	Engine   EngineConfig   `toml:"engine" yaml:"engine"`
}

// FormatForPath picks the format from a file extension.
//
// Parameters:
//   - path: the configuration file path
//
// Returns:
//   - Format: the detected format
//   - error: ErrUnknownFormat if the extension is not recognized
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Load reads, parses and validates a configuration file.
//
// Parameters:
//   - path: the configuration file path
//
// Returns:
//   - Config: the parsed configuration
//   - error: an error if the file cannot be read, has an unknown extension, or is invalid
func Load(path string) (Config, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %q: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration. Unknown keys are rejected.
//
// Parameters:
//   - data: the encoded configuration
//   - format: the encoding of data
//
// Returns:
//   - Config: the parsed configuration
//   - error: an error if data is malformed or a value is out of range
func Parse(data []byte, format Format) (Config, error) {
	var cfg Config
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("invalid toml config: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document is a valid, all-default configuration.
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("invalid yaml config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every value that has a restricted range.
//
// Returns:
//   - error: the first invalid value found
func (c Config) Validate() error {
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("window size %dx%d must not be negative", c.Window.Width, c.Window.Height)
	}
	if _, err := c.presentMode(); err != nil {
		return err
	}
	if _, err := c.msaa(); err != nil {
		return err
	}
	if _, _, err := parseColor(c.Renderer.ClearColor); err != nil {
		return fmt.Errorf("renderer clear_color: %w", err)
	}
	if _, _, err := parseColor(c.Scene.Ambient); err != nil {
		return fmt.Errorf("scene ambient: %w", err)
	}
	if c.Scene.TransformWorkers < 0 {
		return fmt.Errorf("scene transform_workers %d must not be negative", c.Scene.TransformWorkers)
	}
	if c.Engine.FrameLimit < 0 {
		return fmt.Errorf("engine frame_limit %g must not be negative", c.Engine.FrameLimit)
	}
	return nil
}

// WindowOptions converts the window section into window builder options.
func (c Config) WindowOptions() []window.WindowBuilderOption {
	var opts []window.WindowBuilderOption
	if c.Window.Title != "" {
		opts = append(opts, window.WithTitle(c.Window.Title))
	}
	if c.Window.Width > 0 && c.Window.Height > 0 {
		opts = append(opts, window.WithSize(c.Window.Width, c.Window.Height))
	}
	if c.Window.Resizable != nil {
		opts = append(opts, window.WithResizable(*c.Window.Resizable))
	}
	return opts
}

// RendererOptions converts the renderer section into renderer builder options.
// The configuration must have passed Validate.
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	var opts []renderer.RendererBuilderOption
	if mode, _ := c.presentMode(); mode != nil {
		opts = append(opts, renderer.WithPresentMode(*mode))
	}
	if count, _ := c.msaa(); count != nil {
		opts = append(opts, renderer.WithMSAA(*count))
	}
	if clearColor, ok, _ := parseColor(c.Renderer.ClearColor); ok {
		opts = append(opts, renderer.WithClearColor(clearColor))
	}
	if c.Renderer.SoftwareRenderer {
		opts = append(opts, renderer.WithForceSoftwareRenderer(true))
	}
	return opts
}

// SceneOptions converts the scene section into scene builder options.
func (c Config) SceneOptions() []scene.SceneBuilderOption {
	var opts []scene.SceneBuilderOption
	if c.Scene.Name != "" {
		opts = append(opts, scene.WithName(c.Scene.Name))
	}
	if ambient, ok, _ := parseColor(c.Scene.Ambient); ok {
		opts = append(opts, scene.WithAmbientLight(ambient))
	}
	if c.Scene.TransformWorkers > 0 {
		opts = append(opts, scene.WithTransformWorkers(c.Scene.TransformWorkers))
	}
	if c.Scene.CullingDisabled {
		opts = append(opts, scene.WithCullingDisabled(true))
	}
	return opts
}

// EngineOptions converts the engine section into engine builder options.
func (c Config) EngineOptions() []engine.EngineBuilderOption {
	opts := []engine.EngineBuilderOption{engine.WithProfiling(c.Engine.Profiling)}
	if c.Engine.FrameLimit > 0 {
		opts = append(opts, engine.WithRenderFrameLimit(c.Engine.FrameLimit))
	}
	if c.Engine.MaxFrames > 0 {
		opts = append(opts, engine.WithMaxFrames(c.Engine.MaxFrames))
	}
	return opts
}

func (c Config) presentMode() (*renderer.PresentMode, error) {
	var mode renderer.PresentMode
	switch strings.ToLower(c.Renderer.PresentMode) {
	case "":
		return nil, nil
	case "vsync":
		mode = renderer.PresentModeVSync
	case "uncapped":
		mode = renderer.PresentModeUncapped
	default:
		return nil, fmt.Errorf("renderer present_mode %q must be \"vsync\" or \"uncapped\"", c.Renderer.PresentMode)
	}
	return &mode, nil
}

func (c Config) msaa() (*renderer.MSAASampleCount, error) {
	var count renderer.MSAASampleCount
	switch c.Renderer.MSAA {
	case 0:
		return nil, nil
	case 1:
		count = renderer.MSAAOff
	case 4:
		count = renderer.MSAA4x
	case 8:
		count = renderer.MSAA8x
	case 16:
		count = renderer.MSAA16x
	default:
		return nil, fmt.Errorf("renderer msaa %d must be 1, 4, 8 or 16", c.Renderer.MSAA)
	}
	return &count, nil
}

// parseColor accepts an empty list (unset), [r, g, b] or [r, g, b, a] with components in [0, 1].
func parseColor(v []float32) (common.Color, bool, error) {
	var c common.Color
	switch len(v) {
	case 0:
		return c, false, nil
	case 3:
		c = common.RGB(v[0], v[1], v[2])
	case 4:
		c = common.NewColor(v[0], v[1], v[2], v[3])
	default:
		return c, false, fmt.Errorf("color needs 3 or 4 components, got %d", len(v))
	}
	for _, x := range v {
		if x < 0 || x > 1 {
			return c, false, fmt.Errorf("color component %g outside [0, 1]", x)
		}
	}
	return c, true, nil
}
