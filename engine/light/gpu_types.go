package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/polygon/common"
)

// MaxGPULights is the maximum number of lights marshaled into the GPU storage buffer per frame.
// Lights past the budget are dropped in registration order.
const MaxGPULights = 256

// GPULightSource is the WGSL Light struct matching GPULight.
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPULight is one light as laid out in the storage buffer (64 bytes, std430).
type GPULight struct {
	Position  [3]float32 // offset  0: world-space position (point/spot) or unused (directional)
	LightType uint32     // offset 12: 0 = directional, 1 = point, 2 = spot
	Color     [3]float32 // offset 16: RGB color
	Intensity float32    // offset 28: scalar multiplier
	Direction [3]float32 // offset 32: normalized direction (directional/spot) or unused (point)
	Radius    float32    // offset 44: attenuation cutoff distance
	InnerCone float32    // offset 48: cos(inner half-angle) for spot
	OuterCone float32    // offset 52: cos(outer half-angle) for spot
	_pad      [2]uint32  // offset 56: padding to 64-byte alignment
}

// Size returns the size of the GPULight struct in bytes (64).
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the light into its 64-byte std430 form.
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.marshalInto(buf)
	return buf
}

func (g *GPULight) marshalInto(buf []byte) {
	w := std430Writer{buf: buf}
	w.vec3(g.Position)
	w.u32(g.LightType)
	w.vec3(g.Color)
	w.f32(g.Intensity)
	w.vec3(g.Direction)
	w.f32(g.Radius)
	w.f32(g.InnerCone)
	w.f32(g.OuterCone)
	w.u32(0)
	w.u32(0)
}

// GPULightHeaderSource is the WGSL LightHeader struct matching GPULightHeader.
//
//go:embed assets/light_header.wgsl
var GPULightHeaderSource string

// GPULightHeader precedes the lights in the storage buffer: the ambient color and the number
// of lights that follow (16 bytes).
type GPULightHeader struct {
	AmbientColor [3]float32 // offset 0: scene ambient RGB
	LightCount   uint32     // offset 12: number of active lights following the header
}

func (h *GPULightHeader) Size() int {
	return int(unsafe.Sizeof(*h))
}

func (h *GPULightHeader) Marshal() []byte {
	buf := make([]byte, h.Size())
	w := std430Writer{buf: buf}
	w.vec3(h.AmbientColor)
	w.u32(h.LightCount)
	return buf
}

// std430Writer appends little-endian 4-byte scalars to a pre-sized buffer.
type std430Writer struct {
	buf []byte
	off int
}

func (w *std430Writer) u32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

func (w *std430Writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *std430Writer) vec3(v [3]float32) {
	for _, c := range v {
		w.f32(c)
	}
}

// ToGPULight converts a Light into its GPU-aligned representation.
//
// Parameters:
//   - l: the Light to convert
//   - position: the light's resolved world-space position (ignored for directional lights)
//
// Returns:
//   - GPULight: the GPU-aligned representation
func ToGPULight(l Light, position [3]float32) GPULight {
	return GPULight{
		Position:  position,
		LightType: uint32(l.Type()),
		Color:     l.Color().RGB3(),
		Intensity: l.Strength(),
		Direction: l.Direction(),
		Radius:    l.Radius(),
		InnerCone: l.InnerCone(),
		OuterCone: l.OuterCone(),
	}
}

// LightBufferSize returns the byte size of a light buffer able to hold n lights.
// A buffer always has room for at least one light, since the WGSL runtime-sized array
// requires one element for its minimum binding size.
//
// Parameters:
//   - n: the number of lights
//
// Returns:
//   - int: the buffer size in bytes
func LightBufferSize(n int) int {
	n = min(max(n, 1), MaxGPULights)
	return (&GPULightHeader{}).Size() + n*(&GPULight{}).Size()
}

// MarshalLightBuffer marshals already-resolved lights into a byte buffer suitable for GPU upload.
// The buffer layout is:
//
//	[GPULightHeader (16 bytes)] [GPULight × max(count, 1) (64 bytes each)]
//
// At most MaxGPULights lights are written; the header count reflects the number written.
//
// Parameters:
//   - lights: the resolved lights in registration order
//   - ambient: the scene ambient color
//
// Returns:
//   - []byte: the marshaled buffer ready for GPU upload
func MarshalLightBuffer(lights []GPULight, ambient common.Color) []byte {
	count := min(len(lights), MaxGPULights)
	header := GPULightHeader{AmbientColor: ambient.RGB3(), LightCount: uint32(count)}

	buf := make([]byte, LightBufferSize(count))
	off := copy(buf, header.Marshal())
	for i := range count {
		lights[i].marshalInto(buf[off:])
		off += lights[i].Size()
	}
	return buf
}
