package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/mesh"
	"github.com/Carmen-Shannon/polygon/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/polygon/engine/texture"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeRecording selects a headless backend that records every frame instead of
	// drawing it. It needs no window and no GPU.
	BackendTypeRecording
)

// String returns the backend name.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeRecording:
		return "recording"
	default:
		return "unknown"
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// SurfaceSource provides the platform surface a wgpu backend presents to.
// window.Window satisfies it.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// RendererBackend is the GPU-facing half of the Renderer. The Renderer owns handle allocation and
// validation; the backend owns the GPU objects behind each handle and encodes frames.
// All methods are called from the render loop goroutine.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swapchain and the depth and MSAA targets for a surface size.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the frame is cleared to before drawing.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c common.Color)

	// UploadMesh creates the vertex and index buffers of a mesh.
	//
	// Parameters:
	//   - h: the handle the mesh was registered under
	//   - m: the validated mesh
	//
	// Returns:
	//   - error: an error if GPU allocation fails
	UploadMesh(h handle.Mesh, m *mesh.Mesh) error

	// ReleaseMesh frees the GPU buffers of a mesh.
	//
	// Parameters:
	//   - h: the mesh handle
	ReleaseMesh(h handle.Mesh)

	// UploadTexture creates a sampled texture and its sampler.
	//
	// Parameters:
	//   - h: the handle the texture was registered under
	//   - t: the validated texture
	//
	// Returns:
	//   - error: an error if GPU allocation fails
	UploadTexture(h handle.Texture, t *texture.Texture2D) error

	// ReleaseTexture frees the GPU storage of a texture.
	//
	// Parameters:
	//   - h: the texture handle
	ReleaseTexture(h handle.Texture)

	// RegisterPipeline creates the GPU render pipeline of a Pipeline.
	//
	// Parameters:
	//   - p: the pipeline describing shader and render state
	//
	// Returns:
	//   - error: an error if the shader module or pipeline cannot be created
	RegisterPipeline(p pipeline.Pipeline) error

	// BeginFrame acquires the next surface texture, uploads the per-frame uniforms and begins the
	// main render pass. Must be paired with EndFrame.
	//
	// Parameters:
	//   - frame: the camera, light and ambient data of the frame
	//
	// Returns:
	//   - error: an error if the surface texture or command encoder could not be acquired
	BeginFrame(frame FrameUniforms) error

	// Draw encodes one indexed draw within the current frame. The zero texture handle selects the
	// backend's default white texture.
	//
	// Parameters:
	//   - p: the registered pipeline to draw with
	//   - cmd: the resolved draw
	//
	// Returns:
	//   - error: an error if no frame is in progress or per-draw resources cannot be created
	Draw(p pipeline.Pipeline, cmd DrawCommand) error

	// EndFrame ends the render pass and submits the command buffer to the GPU queue.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// Release frees every GPU object the backend holds. The backend is unusable afterwards.
	Release()
}
