package camera

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	mu *sync.Mutex

	fov    float32
	aspect float32
	near   float32
	far    float32

	anchor    handle.Anchor
	hasAnchor bool
}

// Camera defines the projection parameters of a viewpoint. Its placement comes from an anchor
// registered in the same scene: the view matrix is the inverse of that anchor's world transform,
// so an identity anchor looks down -Z with +Y up.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: the field of view
	Fov() float32

	// Aspect returns the fixed aspect ratio, or 0 when the camera follows the surface aspect.
	//
	// Returns:
	//   - float32: the aspect ratio (width / height) or 0
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: the near distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: the far distance
	Far() float32

	// Anchor returns the anchor that places this camera.
	//
	// Returns:
	//   - handle.Anchor: the anchor handle
	//   - bool: false if no anchor has been set
	Anchor() (handle.Anchor, bool)

	// ProjectionMatrix builds the perspective projection (WebGPU depth range [0, 1]).
	//
	// Parameters:
	//   - surfaceAspect: the render surface aspect ratio, used when the camera has no fixed aspect
	//
	// Returns:
	//   - [16]float32: the column-major projection matrix
	ProjectionMatrix(surfaceAspect float32) [16]float32

	// SetFov sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fov: the field of view
	SetFov(fov float32)

	// SetAspect fixes the aspect ratio. Pass 0 to follow the surface aspect.
	//
	// Parameters:
	//   - aspect: the aspect ratio or 0
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance.
	//
	// Parameters:
	//   - near: the near distance (> 0)
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	//
	// Parameters:
	//   - far: the far distance (> near)
	SetFar(far float32)

	// SetAnchor attaches the camera to an anchor.
	//
	// Parameters:
	//   - a: the anchor handle
	SetAnchor(a handle.Anchor)

	// ClearAnchor detaches the camera from its anchor. A camera without an anchor renders nothing.
	ClearAnchor()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the provided options.
// Defaults: 45° vertical field of view, aspect following the surface, near 0.1, far 100.
//
// Parameters:
//   - options: a variadic list of CameraBuilderOption functions
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:   &sync.Mutex{},
		fov:  45.0 * (math32.Pi / 180.0),
		near: 0.1,
		far:  100.0,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Anchor() (handle.Anchor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anchor, c.hasAnchor
}

func (c *cameraImpl) ProjectionMatrix(surfaceAspect float32) [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	aspect := c.aspect
	if aspect <= 0 {
		aspect = surfaceAspect
	}
	if aspect <= 0 {
		aspect = 1
	}
	var p [16]float32
	common.Perspective(p[:], c.fov, aspect, c.near, c.far)
	return p
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
}

func (c *cameraImpl) SetAnchor(a handle.Anchor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchor = a
	c.hasAnchor = true
}

func (c *cameraImpl) ClearAnchor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchor = 0
	c.hasAnchor = false
}

// ViewMatrix inverts a camera anchor's world transform into a view matrix.
//
// Parameters:
//   - world: the camera anchor's world transform
//
// Returns:
//   - [16]float32: the view matrix
//   - bool: false if the transform is singular (e.g. a zero scale)
func ViewMatrix(world [16]float32) ([16]float32, bool) {
	var v [16]float32
	if !common.Invert4(v[:], world[:]) {
		return v, false
	}
	return v, true
}
