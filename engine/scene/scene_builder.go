package scene

import (
	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/renderer/shader"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier, used in log output.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithLibrary sets the shader library materials are resolved against.
// Defaults to shader.NewLibrary() with the built-in shaders.
//
// Parameters:
//   - lib: the shader library
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLibrary(lib shader.Library) SceneBuilderOption {
	return func(s *scene) {
		s.library = lib
	}
}

// WithAmbientLight sets the initial ambient light color. Defaults to black.
//
// Parameters:
//   - c: the ambient color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAmbientLight(c common.Color) SceneBuilderOption {
	return func(s *scene) {
		s.ambient = c
	}
}

// WithTransformWorkers sets the number of worker goroutines that resolve world transforms
// during Draw. Defaults to runtime.NumCPU()-1. Lower values reduce scheduling overhead for
// scenes with only a handful of instances.
//
// Parameters:
//   - n: the number of transform workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTransformWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.transformWorkers = n
	}
}

// WithCullingDisabled disables CPU frustum culling, so every resolvable instance is drawn
// even when its bounding sphere lies outside the camera frustum.
// By default culling is enabled (disabled = false).
//
// Parameters:
//   - disabled: true to disable frustum culling, false to enable it (default)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCullingDisabled(disabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.cullingDisabled = disabled
	}
}
