package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
)

func TestDefaults(t *testing.T) {
	c := NewCamera()
	assert.InDelta(t, math.Pi/4, c.Fov(), 1e-6)
	assert.Equal(t, float32(0), c.Aspect())
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(100), c.Far())
	_, ok := c.Anchor()
	assert.False(t, ok)
}

func TestProjectionFollowsSurfaceAspect(t *testing.T) {
	c := NewCamera()
	wide := c.ProjectionMatrix(2)
	square := c.ProjectionMatrix(1)
	assert.InDelta(t, square[0]/2, wide[0], 1e-6)
	assert.Equal(t, square[5], wide[5])

	c.SetAspect(1)
	fixed := c.ProjectionMatrix(2)
	assert.Equal(t, square, fixed)

	// a zero surface aspect falls back to 1
	assert.Equal(t, square, NewCamera().ProjectionMatrix(0))
}

func TestProjectionMatchesPerspective(t *testing.T) {
	c := NewCamera(WithFov(1), WithNear(0.5), WithFar(50), WithAspect(1.5))
	var want [16]float32
	common.Perspective(want[:], 1, 1.5, 0.5, 50)
	assert.Equal(t, want, c.ProjectionMatrix(3))
}

func TestAnchor(t *testing.T) {
	a := handle.Anchor(handle.NewID(1, 1))
	c := NewCamera(WithAnchor(a))
	got, ok := c.Anchor()
	require.True(t, ok)
	assert.Equal(t, a, got)
	c.ClearAnchor()
	_, ok = c.Anchor()
	assert.False(t, ok)
}

func TestViewMatrixInvertsWorld(t *testing.T) {
	var world [16]float32
	common.ComposeTRS(world[:], [3]float32{0, 0, 10}, common.QuatIdentity(), [3]float32{1, 1, 1})
	view, ok := ViewMatrix(world)
	require.True(t, ok)
	p := common.TransformPoint(view[:], [3]float32{0, 0, 0})
	assert.InDelta(t, -10, p[2], 1e-5)

	var singular [16]float32
	_, ok = ViewMatrix(singular)
	assert.False(t, ok)
}

func TestGPUCameraUniform(t *testing.T) {
	var world [16]float32
	common.ComposeTRS(world[:], [3]float32{1, 2, 3}, common.QuatIdentity(), [3]float32{1, 1, 1})
	u := NewGPUCameraUniform(common.Identity4(), world)
	assert.Equal(t, 80, u.Size())
	buf := u.Marshal()
	require.Len(t, buf, 80)
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(buf[68:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
}
