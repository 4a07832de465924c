package anchor

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/polygon/common"
)

// GPUTransformSource is the canonical WGSL definition of the TransformUniform struct.
// Matches GPUTransform layout exactly (192 bytes).
//
//go:embed assets/transform.wgsl
var GPUTransformSource string

// GPUTransform is the per-draw transform data bound at group 1, binding 0.
// Size: 192 bytes (three column-major mat4x4<f32>).
type GPUTransform struct {
	Model  [16]float32 // offset   0: world transform
	Normal [16]float32 // offset  64: inverse-transpose of the world transform, upper 3x3 used
	MVP    [16]float32 // offset 128: projection * view * model
}

// NewGPUTransform builds the per-draw uniform for an instance.
//
// Parameters:
//   - world: the instance anchor's world transform
//   - viewProj: the camera's projection * view matrix
//
// Returns:
//   - GPUTransform: the uniform value
func NewGPUTransform(world, viewProj [16]float32) GPUTransform {
	g := GPUTransform{Model: world}
	common.NormalMatrix(g.Normal[:], world[:])
	common.Mul4(g.MVP[:], viewProj[:], world[:])
	return g
}

// Size returns the size of the GPUTransform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (192)
func (g *GPUTransform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUTransform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 192-byte buffer ready for GPU upload
func (g *GPUTransform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, m := range [3]*[16]float32{&g.Model, &g.Normal, &g.MVP} {
		for j, v := range m {
			binary.LittleEndian.PutUint32(buf[i*64+j*4:], math.Float32bits(v))
		}
	}
	return buf
}
