package anchor

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
)

func TestNewDefaults(t *testing.T) {
	a := New()
	assert.Equal(t, [3]float32{}, a.Position())
	assert.Equal(t, common.QuatIdentity(), a.Orientation())
	assert.Equal(t, [3]float32{1, 1, 1}, a.Scale())
	_, ok := a.Parent()
	assert.False(t, ok)
}

func TestIdentityAnchorYieldsIdentity(t *testing.T) {
	s := NewStore()
	h := s.Register(New())
	w, ok := s.WorldTransform(h)
	require.True(t, ok)
	assert.Equal(t, common.Identity4(), w)
}

func TestWorldTransformComposesTRS(t *testing.T) {
	s := NewStore()
	h := s.Register(New(
		WithPosition([3]float32{1, 2, 3}),
		WithOrientation(common.QuatFromAxisAngle([3]float32{0, 1, 0}, math32.Pi)),
		WithScale([3]float32{2, 2, 2}),
	))
	w, ok := s.WorldTransform(h)
	require.True(t, ok)
	p := common.TransformPoint(w[:], [3]float32{1, 0, 0})
	assert.InDelta(t, -1, p[0], 1e-5)
	assert.InDelta(t, 2, p[1], 1e-5)
	assert.InDelta(t, 3, p[2], 1e-5)
}

func TestGetMutWritesThrough(t *testing.T) {
	s := NewStore()
	h := s.Register(New())
	a, ok := s.GetMut(h)
	require.True(t, ok)
	a.SetPosition([3]float32{0, 0, 5})
	a.Translate([3]float32{1, 0, 0})

	got, ok := s.Get(h)
	require.True(t, ok)
	assert.Equal(t, [3]float32{1, 0, 5}, got.Position())
}

func TestSetOrientationNormalizes(t *testing.T) {
	a := New()
	a.SetOrientation(common.Quat{W: 4})
	assert.Equal(t, common.QuatIdentity(), a.Orientation())
}

func TestParentChain(t *testing.T) {
	s := NewStore()
	root := s.Register(New(WithPosition([3]float32{10, 0, 0})))
	child := s.Register(New(WithParent(root), WithPosition([3]float32{0, 1, 0})))
	grandchild := s.Register(New(WithParent(child), WithScale([3]float32{3, 3, 3})))

	w, ok := s.WorldTransform(grandchild)
	require.True(t, ok)
	p := common.TransformPoint(w[:], [3]float32{1, 0, 0})
	assert.InDelta(t, 13, p[0], 1e-5)
	assert.InDelta(t, 1, p[1], 1e-5)
}

func TestMissingParentIsUnresolved(t *testing.T) {
	s := NewStore()
	parent := s.Register(New())
	child := s.Register(New(WithParent(parent)))
	_, ok := s.Unregister(parent)
	require.True(t, ok)

	_, ok = s.WorldTransform(child)
	assert.False(t, ok)

	c, _ := s.GetMut(child)
	c.ClearParent()
	_, ok = s.WorldTransform(child)
	assert.True(t, ok)
}

func TestParentCycleIsUnresolved(t *testing.T) {
	s := NewStore()
	a := s.Register(New())
	b := s.Register(New(WithParent(a)))
	pa, _ := s.GetMut(a)
	pa.SetParent(b)

	_, ok := s.WorldTransform(a)
	assert.False(t, ok)
	_, ok = s.WorldTransform(b)
	assert.False(t, ok)
}

func TestInvalidHandles(t *testing.T) {
	s := NewStore()
	h := s.Register(New())
	s.Unregister(h)
	for _, bogus := range []handle.Anchor{0, h, handle.Anchor(handle.NewID(1000, 1))} {
		_, ok := s.Get(bogus)
		assert.False(t, ok)
		p, ok := s.GetMut(bogus)
		assert.False(t, ok)
		assert.Nil(t, p)
		_, ok = s.WorldTransform(bogus)
		assert.False(t, ok)
		_, ok = s.Unregister(bogus)
		assert.False(t, ok)
	}
}

func TestRotateComposes(t *testing.T) {
	a := New()
	quarter := common.QuatFromAxisAngle([3]float32{0, 0, 1}, math32.Pi/2)
	a.Rotate(quarter)
	a.Rotate(quarter)
	v := a.Orientation().Rotate([3]float32{1, 0, 0})
	assert.InDelta(t, -1, v[0], 1e-5)
	assert.InDelta(t, 0, v[1], 1e-5)
}

func TestGPUTransform(t *testing.T) {
	var world [16]float32
	common.ComposeTRS(world[:], [3]float32{1, 2, 3}, common.QuatIdentity(), [3]float32{2, 2, 2})
	g := NewGPUTransform(world, common.Identity4())
	assert.Equal(t, 192, g.Size())
	assert.Equal(t, world, g.MVP)
	assert.InDelta(t, 0.5, g.Normal[0], 1e-6)

	buf := g.Marshal()
	require.Len(t, buf, 192)
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(buf[128+14*4:])))
}
