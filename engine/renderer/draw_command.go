package renderer

import (
	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/anchor"
	"github.com/Carmen-Shannon/polygon/engine/camera"
	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/light"
	"github.com/Carmen-Shannon/polygon/engine/renderer/shader"
)

// FrameUniforms is the data bound once per frame in the frame bind group.
type FrameUniforms struct {
	Camera  camera.GPUCameraUniform
	Lights  []light.GPULight
	Ambient common.Color
}

// LightBytes packs the lights and ambient color into the light storage buffer layout.
func (f FrameUniforms) LightBytes() []byte {
	return light.MarshalLightBuffer(f.Lights, f.Ambient)
}

// DrawCommand is one fully resolved indexed draw: a registered mesh, the shader it is drawn
// with, its transform and the packed material.
type DrawCommand struct {
	Mesh      handle.Mesh
	Shader    shader.Shader
	Transform anchor.GPUTransform
	Params    shader.GPUMaterialParams
	// Textures holds one handle per texture property of Shader, ordered by texture index.
	Textures []handle.Texture
}
