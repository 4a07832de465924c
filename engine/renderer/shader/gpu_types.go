package shader

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// MaxMaterialSlots is the number of vec4 slots in the material uniform. Each color or f32
// property occupies one slot.
const MaxMaterialSlots = 16

// GPUMaterialParamsSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterialParams layout exactly (256 bytes).
//
//go:embed assets/material_params.wgsl
var GPUMaterialParamsSource string

// GPUMaterialParams is the per-draw material uniform bound at group 1, binding 1.
// Slots are assigned in property declaration order; f32 values live in the x component.
// Size: 256 bytes (array<vec4<f32>, 16>).
type GPUMaterialParams struct {
	Params [MaxMaterialSlots][4]float32
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (256)
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 256-byte buffer ready for GPU upload
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, slot := range g.Params {
		for j, v := range slot {
			binary.LittleEndian.PutUint32(buf[i*16+j*4:], math.Float32bits(v))
		}
	}
	return buf
}
