package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/mesh"
	"github.com/Carmen-Shannon/polygon/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/polygon/engine/texture"
)

// meshRecord is the CPU-side metadata of a registered mesh.
type meshRecord struct {
	label      string
	indexCount int
	center     [3]float32
	radius     float32
}

// textureRecord is the CPU-side metadata of a registered texture.
type textureRecord struct {
	width, height uint32
}

type renderer struct {
	mu            *sync.Mutex
	pipelineCache map[string]pipeline.Pipeline
	backendType   RendererBackendType
	backend       RendererBackend

	meshes   *handle.Arena[handle.Mesh, meshRecord]
	textures *handle.Arena[handle.Texture, textureRecord]

	width, height int
	inFrame       bool
	released      bool

	// configuration flags applied before the backend is created
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *common.Color
	pendingPipelines     []pipeline.Pipeline
}

// Renderer is the GPU resource table and frame API of the engine. Meshes and textures are
// uploaded once and referenced by handle; a frame is BeginFrame, any number of Draw calls,
// EndFrame and Present. Lookups with unknown handles report absence and never panic.
type Renderer interface {
	// BackendType returns the backend the renderer was created with.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// Backend returns the backend the renderer drives. Tests use it to inspect the recording backend.
	//
	// Returns:
	//   - RendererBackend: the backend
	Backend() RendererBackend

	// RegisterMesh uploads a mesh to the GPU.
	//
	// Parameters:
	//   - m: a mesh produced by mesh.MeshBuilder
	//
	// Returns:
	//   - handle.Mesh: the handle of the uploaded mesh
	//   - error: an error if the mesh is nil or the upload fails
	RegisterMesh(m *mesh.Mesh) (handle.Mesh, error)

	// UnregisterMesh frees the GPU storage of a mesh. The handle becomes stale.
	//
	// Parameters:
	//   - h: the mesh handle
	//
	// Returns:
	//   - bool: false if the handle was not registered
	UnregisterMesh(h handle.Mesh) bool

	// HasMesh reports whether a mesh handle is registered.
	//
	// Parameters:
	//   - h: the mesh handle
	//
	// Returns:
	//   - bool: true if the mesh is registered
	HasMesh(h handle.Mesh) bool

	// MeshIndexCount retrieves the number of indices drawn for a mesh.
	//
	// Parameters:
	//   - h: the mesh handle
	//
	// Returns:
	//   - int: the index count
	//   - bool: false if the mesh is not registered
	MeshIndexCount(h handle.Mesh) (int, bool)

	// MeshBounds retrieves the model-space bounding sphere of a mesh.
	//
	// Parameters:
	//   - h: the mesh handle
	//
	// Returns:
	//   - [3]float32: the sphere center
	//   - float32: the sphere radius
	//   - bool: false if the mesh is not registered
	MeshBounds(h handle.Mesh) ([3]float32, float32, bool)

	// RegisterTexture uploads a texture to the GPU.
	//
	// Parameters:
	//   - t: a texture produced by the texture package
	//
	// Returns:
	//   - handle.Texture: the handle of the uploaded texture
	//   - error: an error if the texture is nil or the upload fails
	RegisterTexture(t *texture.Texture2D) (handle.Texture, error)

	// UnregisterTexture frees the GPU storage of a texture. The handle becomes stale and
	// materials still referencing it draw with the default white texture.
	//
	// Parameters:
	//   - h: the texture handle
	//
	// Returns:
	//   - bool: false if the handle was not registered
	UnregisterTexture(h handle.Texture) bool

	// HasTexture reports whether a texture handle is registered.
	//
	// Parameters:
	//   - h: the texture handle
	//
	// Returns:
	//   - bool: true if the texture is registered
	HasTexture(h handle.Texture) bool

	// TextureSize retrieves the dimensions of a registered texture.
	//
	// Parameters:
	//   - h: the texture handle
	//
	// Returns:
	//   - uint32: the width in pixels
	//   - uint32: the height in pixels
	//   - bool: false if the texture is not registered
	TextureSize(h handle.Texture) (uint32, uint32, bool)

	// RegisterPipeline creates the GPU pipeline for a shader with custom render state. Shaders
	// drawn without a registered pipeline get one with default state on first use.
	//
	// Parameters:
	//   - p: the pipeline to register; replaces any pipeline registered for the same shader key
	//
	// Returns:
	//   - error: an error if the backend cannot create the pipeline
	RegisterPipeline(p pipeline.Pipeline) error

	// Pipeline retrieves the cached pipeline of a shader key.
	//
	// Parameters:
	//   - key: the shader key
	//
	// Returns:
	//   - pipeline.Pipeline: the cached pipeline
	//   - bool: false if no pipeline is cached for the key
	Pipeline(key string) (pipeline.Pipeline, bool)

	// Resize reconfigures the surface for a new size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SurfaceSize returns the current surface size.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	SurfaceSize() (int, int)

	// SurfaceAspect returns width / height of the surface, or 1 for an empty surface.
	//
	// Returns:
	//   - float32: the aspect ratio
	SurfaceAspect() float32

	// SetPresentMode sets the surface present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color frames are cleared to.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c common.Color)

	// BeginFrame starts a frame and binds its per-frame uniforms.
	//
	// Parameters:
	//   - frame: the camera, light and ambient data of the frame
	//
	// Returns:
	//   - error: an error if a frame is already in progress or the surface cannot be acquired
	BeginFrame(frame FrameUniforms) error

	// Draw encodes one indexed draw. Texture handles that are not registered are replaced by
	// the zero handle, which the backend binds to its default white texture.
	//
	// Parameters:
	//   - cmd: the resolved draw
	//
	// Returns:
	//   - error: ErrUnknownMesh, ErrNoFrame, or a backend error
	Draw(cmd DrawCommand) error

	// EndFrame ends the frame and submits it to the GPU.
	//
	// Returns:
	//   - error: ErrNoFrame or an error finishing the command buffer
	EndFrame() error

	// Present presents the last submitted frame.
	Present()

	// Release frees every GPU allocation held by the renderer: meshes, textures, pipelines,
	// per-draw buffers and the surface. Calling it twice is a no-op.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with the specified backend. The wgpu backend needs a surface
// source, typically the engine window; the recording backend ignores it and may be given nil.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - surface: the surface source for the wgpu backend
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the new renderer
//   - error: a *CreationError if the GPU instance, surface, adapter or device cannot be created
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		meshes:        handle.NewArena[handle.Mesh, meshRecord](),
		textures:      handle.NewArena[handle.Texture, textureRecord](),
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	if r.backend == nil {
		switch backendType {
		case BackendTypeRecording:
			r.backend = NewRecordingBackend()
		case BackendTypeWGPU:
			if surface == nil {
				return nil, &CreationError{Stage: StageSurface, Err: fmt.Errorf("no surface source")}
			}
			b, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
			if err != nil {
				return nil, err
			}
			r.backend = b
		default:
			return nil, &CreationError{Stage: StageInstance, Err: fmt.Errorf("unsupported backend type %d", backendType)}
		}
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	if surface != nil {
		r.width, r.height = surface.Width(), surface.Height()
	}
	r.backend.ConfigureSurface(r.width, r.height)

	for _, p := range r.pendingPipelines {
		if err := r.RegisterPipeline(p); err != nil {
			r.backend.Release()
			return nil, err
		}
	}
	r.pendingPipelines = nil
	return r, nil
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) RegisterMesh(m *mesh.Mesh) (handle.Mesh, error) {
	if m == nil {
		return 0, fmt.Errorf("renderer: mesh must not be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return 0, ErrReleased
	}

	center, radius := m.Bounds()
	h := r.meshes.Insert(meshRecord{
		label:      m.Label(),
		indexCount: m.IndexCount(),
		center:     center,
		radius:     radius,
	})
	if err := r.backend.UploadMesh(h, m); err != nil {
		r.meshes.Remove(h)
		return 0, fmt.Errorf("renderer: failed to upload mesh %q: %w", m.Label(), err)
	}
	return h, nil
}

func (r *renderer) UnregisterMesh(h handle.Mesh) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meshes.Remove(h); !ok {
		return false
	}
	r.backend.ReleaseMesh(h)
	return true
}

func (r *renderer) HasMesh(h handle.Mesh) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meshes.Contains(h)
}

func (r *renderer) MeshIndexCount(h handle.Mesh) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.meshes.Get(h)
	return rec.indexCount, ok
}

func (r *renderer) MeshBounds(h handle.Mesh) ([3]float32, float32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.meshes.Get(h)
	return rec.center, rec.radius, ok
}

func (r *renderer) RegisterTexture(t *texture.Texture2D) (handle.Texture, error) {
	if t == nil {
		return 0, fmt.Errorf("renderer: texture must not be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return 0, ErrReleased
	}

	h := r.textures.Insert(textureRecord{width: t.Width(), height: t.Height()})
	if err := r.backend.UploadTexture(h, t); err != nil {
		r.textures.Remove(h)
		return 0, fmt.Errorf("renderer: failed to upload %dx%d texture: %w", t.Width(), t.Height(), err)
	}
	return h, nil
}

func (r *renderer) UnregisterTexture(h handle.Texture) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.textures.Remove(h); !ok {
		return false
	}
	r.backend.ReleaseTexture(h)
	return true
}

func (r *renderer) HasTexture(h handle.Texture) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.textures.Contains(h)
}

func (r *renderer) TextureSize(h handle.Texture) (uint32, uint32, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.textures.Get(h)
	return rec.width, rec.height, ok
}

func (r *renderer) RegisterPipeline(p pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerPipeline(p)
}

func (r *renderer) registerPipeline(p pipeline.Pipeline) error {
	if r.released {
		return ErrReleased
	}
	if err := r.backend.RegisterPipeline(p); err != nil {
		return fmt.Errorf("renderer: failed to create pipeline %q: %w", p.PipelineKey(), err)
	}
	if old, exists := r.pipelineCache[p.PipelineKey()]; exists && old != p {
		old.Release()
	}
	r.pipelineCache[p.PipelineKey()] = p
	return nil
}

func (r *renderer) Pipeline(key string) (pipeline.Pipeline, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pipelineCache[key]
	return p, ok
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SurfaceSize() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SurfaceAspect() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.width <= 0 || r.height <= 0 {
		return 1
	}
	return float32(r.width) / float32(r.height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(c common.Color) {
	r.backend.SetClearColor(c)
}

func (r *renderer) BeginFrame(frame FrameUniforms) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return ErrReleased
	}
	if r.inFrame {
		return fmt.Errorf("renderer: previous frame not ended")
	}
	if err := r.backend.BeginFrame(frame); err != nil {
		return fmt.Errorf("renderer: failed to begin frame: %w", err)
	}
	r.inFrame = true
	return nil
}

func (r *renderer) Draw(cmd DrawCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inFrame {
		return ErrNoFrame
	}
	if !r.meshes.Contains(cmd.Mesh) {
		return fmt.Errorf("%w: %s", ErrUnknownMesh, cmd.Mesh)
	}
	if cmd.Shader == nil {
		return fmt.Errorf("renderer: draw of %s has no shader", cmd.Mesh)
	}

	p, ok := r.pipelineCache[cmd.Shader.Key()]
	if !ok {
		p = pipeline.NewPipeline(cmd.Shader)
		if err := r.registerPipeline(p); err != nil {
			return err
		}
	}

	textures := make([]handle.Texture, cmd.Shader.TextureCount())
	for i := range textures {
		if i < len(cmd.Textures) && r.textures.Contains(cmd.Textures[i]) {
			textures[i] = cmd.Textures[i]
		}
	}
	cmd.Textures = textures

	return r.backend.Draw(p, cmd)
}

func (r *renderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inFrame {
		return ErrNoFrame
	}
	r.inFrame = false
	if err := r.backend.EndFrame(); err != nil {
		return fmt.Errorf("renderer: failed to submit frame: %w", err)
	}
	return nil
}

func (r *renderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.inFrame = false

	for _, h := range r.meshes.Handles() {
		r.backend.ReleaseMesh(h)
	}
	r.meshes.Clear()
	for _, h := range r.textures.Handles() {
		r.backend.ReleaseTexture(h)
	}
	r.textures.Clear()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.backend.Release()
}
