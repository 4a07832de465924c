package shader

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/polygon/engine/anchor"
	"github.com/Carmen-Shannon/polygon/engine/camera"
	"github.com/Carmen-Shannon/polygon/engine/light"
	"github.com/Carmen-Shannon/polygon/engine/mesh"
)

// Bind group indices shared by every engine shader.
const (
	// GroupFrame holds the per-frame camera uniform (binding 0) and light buffer (binding 1).
	GroupFrame = 0

	// GroupDraw holds the per-draw transform uniform (binding 0) and material params (binding 1).
	GroupDraw = 1

	// GroupTextures holds the texture/sampler pairs of texture properties. Only present when
	// the shader declares at least one texture property.
	GroupTextures = 2
)

// FrameBindGroupLayoutDescriptor describes the per-frame bind group shared by every shader.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the group 0 layout
func FrameBindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	cam := camera.GPUCameraUniform{}
	return wgpu.BindGroupLayoutDescriptor{
		Label: "polygon frame",
		Entries: []wgpu.BindGroupLayoutEntry{
			bufferEntry(0, wgpu.BufferBindingTypeUniform, cam.Size()),
			bufferEntry(1, wgpu.BufferBindingTypeReadOnlyStorage, light.LightBufferSize(1)),
		},
	}
}

// DrawBindGroupLayoutDescriptor describes the per-draw bind group shared by every shader.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the group 1 layout
func DrawBindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	tr := anchor.GPUTransform{}
	params := GPUMaterialParams{}
	return wgpu.BindGroupLayoutDescriptor{
		Label: "polygon draw",
		Entries: []wgpu.BindGroupLayoutEntry{
			bufferEntry(0, wgpu.BufferBindingTypeUniform, tr.Size()),
			bufferEntry(1, wgpu.BufferBindingTypeUniform, params.Size()),
		},
	}
}

// TextureBindGroupLayoutDescriptor describes the texture group of a shader with n texture properties.
//
// Parameters:
//   - n: the number of texture properties
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the group 2 layout
func TextureBindGroupLayoutDescriptor(n int) wgpu.BindGroupLayoutDescriptor {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, 2*n)
	for i := range n {
		p := Property{Kind: PropertyKindTexture, TextureIndex: i}

		tex := wgpu.BindGroupLayoutEntry{
			Binding:    p.TextureBinding(),
			Visibility: wgpu.ShaderStageFragment,
		}
		tex.Texture.SampleType = wgpu.TextureSampleTypeFloat
		tex.Texture.ViewDimension = wgpu.TextureViewDimension2D

		samp := wgpu.BindGroupLayoutEntry{
			Binding:    p.SamplerBinding(),
			Visibility: wgpu.ShaderStageFragment,
		}
		samp.Sampler.Type = wgpu.SamplerBindingTypeFiltering

		entries = append(entries, tex, samp)
	}
	return wgpu.BindGroupLayoutDescriptor{
		Label:   "polygon textures",
		Entries: entries,
	}
}

func bufferEntry(binding uint32, bufferType wgpu.BufferBindingType, minSize int) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
	}
	entry.Buffer.Type = bufferType
	entry.Buffer.MinBindingSize = uint64(minSize)
	return entry
}

// VertexBufferLayout describes the interleaved vertex buffer produced by mesh.Mesh.VertexBytes.
//
// Returns:
//   - wgpu.VertexBufferLayout: the vertex buffer layout for slot 0
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: mesh.VertexStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: mesh.PositionOffset, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: mesh.NormalOffset, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: mesh.TexCoordOffset, ShaderLocation: 2},
		},
	}
}
