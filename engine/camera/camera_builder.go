package camera

import (
	"github.com/Carmen-Shannon/polygon/engine/handle"
)

// CameraBuilderOption is a functional option for configuring a Camera.
type CameraBuilderOption func(*cameraImpl)

// WithFov sets the vertical field of view.
//
// Parameters:
//   - fov: the field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that applies the field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect fixes the aspect ratio instead of following the surface.
//
// Parameters:
//   - aspect: the aspect ratio (width / height)
//
// Returns:
//   - CameraBuilderOption: a function that applies the aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: the near distance
//
// Returns:
//   - CameraBuilderOption: a function that applies the near distance
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: the far distance
//
// Returns:
//   - CameraBuilderOption: a function that applies the far distance
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithAnchor attaches the camera to an anchor.
//
// Parameters:
//   - a: the anchor handle
//
// Returns:
//   - CameraBuilderOption: a function that applies the anchor
func WithAnchor(a handle.Anchor) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.anchor = a
		c.hasAnchor = true
	}
}
