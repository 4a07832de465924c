package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
)

func TestConstructors(t *testing.T) {
	d := Directional([3]float32{0, 0, -2}, 0.5, common.RGB(1, 0, 0))
	assert.Equal(t, LightTypeDirectional, d.Type())
	assert.Equal(t, [3]float32{0, 0, -1}, d.Direction())
	assert.Equal(t, float32(0.5), d.Strength())
	assert.Equal(t, common.RGB(1, 0, 0), d.Color())
	_, ok := d.Anchor()
	assert.False(t, ok)

	p := Point(7, 2, common.ColorWhite)
	assert.Equal(t, LightTypePoint, p.Type())
	assert.Equal(t, float32(7), p.Radius())
	assert.True(t, NeedsAnchor(p.Type()))
	assert.False(t, NeedsAnchor(d.Type()))

	s := Spot(5, [3]float32{0, -1, 0}, 10, 20, 1, common.ColorWhite)
	assert.Equal(t, LightTypeSpot, s.Type())
	assert.InDelta(t, math.Cos(10*math.Pi/180), s.InnerCone(), 1e-5)
	assert.InDelta(t, math.Cos(20*math.Pi/180), s.OuterCone(), 1e-5)
}

func TestAnchorAttachment(t *testing.T) {
	a := handle.Anchor(handle.NewID(3, 1))
	p := NewLight(LightTypePoint, WithAnchor(a))
	got, ok := p.Anchor()
	require.True(t, ok)
	assert.Equal(t, a, got)
	p.ClearAnchor()
	_, ok = p.Anchor()
	assert.False(t, ok)
}

func TestGPULightLayout(t *testing.T) {
	g := GPULight{}
	assert.Equal(t, 64, g.Size())
	h := GPULightHeader{}
	assert.Equal(t, 16, h.Size())
}

func TestToGPULight(t *testing.T) {
	p := Point(12, 3, common.RGB(0.1, 0.2, 0.3))
	g := ToGPULight(p, [3]float32{1, 2, 3})
	assert.Equal(t, uint32(LightTypePoint), g.LightType)
	assert.Equal(t, [3]float32{1, 2, 3}, g.Position)
	assert.Equal(t, float32(12), g.Radius)
	assert.Equal(t, float32(3), g.Intensity)
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, g.Color)
}

func TestMarshalLightBuffer(t *testing.T) {
	f := func(buf []byte, off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }

	empty := MarshalLightBuffer(nil, common.RGB(0.25, 0.5, 0.75))
	require.Len(t, empty, 16+64)
	assert.Equal(t, float32(0.5), f(empty, 4))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(empty[12:]))

	lights := []GPULight{
		ToGPULight(Directional([3]float32{0, -1, 0}, 1, common.ColorWhite), [3]float32{}),
		ToGPULight(Point(4, 1, common.ColorWhite), [3]float32{9, 8, 7}),
	}
	buf := MarshalLightBuffer(lights, common.ColorBlack)
	require.Len(t, buf, 16+2*64)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[12:]))
	assert.Equal(t, float32(9), f(buf, 16+64))
	assert.Equal(t, uint32(LightTypePoint), binary.LittleEndian.Uint32(buf[16+64+12:]))
}

func TestMarshalLightBufferCaps(t *testing.T) {
	lights := make([]GPULight, MaxGPULights+5)
	buf := MarshalLightBuffer(lights, common.ColorBlack)
	assert.Len(t, buf, LightBufferSize(MaxGPULights))
	assert.Equal(t, uint32(MaxGPULights), binary.LittleEndian.Uint32(buf[12:]))
}
