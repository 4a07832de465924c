package renderer

import (
	"sort"
	"sync"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/anchor"
	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/light"
	"github.com/Carmen-Shannon/polygon/engine/mesh"
	"github.com/Carmen-Shannon/polygon/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/polygon/engine/renderer/shader"
	"github.com/Carmen-Shannon/polygon/engine/texture"
)

// defaultClearColor is the dark gray frames are cleared to unless configured otherwise.
var defaultClearColor = common.RGB(0.1, 0.1, 0.1)

// RecordedDraw is one draw captured by the RecordingBackend.
type RecordedDraw struct {
	Pipeline   string
	Mesh       handle.Mesh
	IndexCount int
	Transform  anchor.GPUTransform
	Params     shader.GPUMaterialParams
	Textures   []handle.Texture
}

// RecordedFrame is one frame captured by the RecordingBackend.
type RecordedFrame struct {
	Uniforms   FrameUniforms
	ClearColor common.Color
	Draws      []RecordedDraw
	Submitted  bool
	Presented  bool
}

// RecordingBackend is a headless RendererBackend that keeps every frame in memory instead of
// drawing it. Uploads are validated and counted; frame and upload failures can be injected.
type RecordingBackend struct {
	mu *sync.Mutex

	width, height int
	presentMode   PresentMode
	clearColor    common.Color

	meshes    map[handle.Mesh]int
	textures  map[handle.Texture][2]uint32
	pipelines map[string]bool

	frames  []RecordedFrame
	current *RecordedFrame

	uploadErr error
	frameErr  error
	released  bool
}

var _ RendererBackend = &RecordingBackend{}

// NewRecordingBackend creates an empty RecordingBackend.
//
// Returns:
//   - *RecordingBackend: the backend
func NewRecordingBackend() *RecordingBackend {
	return &RecordingBackend{
		mu:         &sync.Mutex{},
		clearColor: defaultClearColor,
		meshes:     make(map[handle.Mesh]int),
		textures:   make(map[handle.Texture][2]uint32),
		pipelines:  make(map[string]bool),
	}
}

// FailUploads makes every following mesh and texture upload return err. Pass nil to stop failing.
func (b *RecordingBackend) FailUploads(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uploadErr = err
}

// FailFrames makes every following BeginFrame return err. Pass nil to stop failing.
func (b *RecordingBackend) FailFrames(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frameErr = err
}

// Frames returns a copy of every completed or in-progress frame, oldest first.
func (b *RecordingBackend) Frames() []RecordedFrame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedFrame(nil), b.frames...)
}

// LastFrame returns the most recent frame.
func (b *RecordingBackend) LastFrame() (RecordedFrame, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.frames) == 0 {
		return RecordedFrame{}, false
	}
	return b.frames[len(b.frames)-1], true
}

// ResetFrames discards every recorded frame.
func (b *RecordingBackend) ResetFrames() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = nil
	b.current = nil
}

// MeshCount returns the number of meshes currently uploaded.
func (b *RecordingBackend) MeshCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.meshes)
}

// TextureCount returns the number of textures currently uploaded.
func (b *RecordingBackend) TextureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.textures)
}

// PipelineKeys returns the sorted keys of every created pipeline.
func (b *RecordingBackend) PipelineKeys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.pipelines))
	for k := range b.pipelines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SurfaceSize returns the size passed to the last ConfigureSurface.
func (b *RecordingBackend) SurfaceSize() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

// PresentMode returns the configured present mode.
func (b *RecordingBackend) PresentMode() PresentMode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.presentMode
}

// Released reports whether Release has been called.
func (b *RecordingBackend) Released() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

func (b *RecordingBackend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = width, height
}

func (b *RecordingBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = mode
}

func (b *RecordingBackend) SetClearColor(c common.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = c
}

func (b *RecordingBackend) UploadMesh(h handle.Mesh, m *mesh.Mesh) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadErr != nil {
		return b.uploadErr
	}
	b.meshes[h] = m.IndexCount()
	return nil
}

func (b *RecordingBackend) ReleaseMesh(h handle.Mesh) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.meshes, h)
}

func (b *RecordingBackend) UploadTexture(h handle.Texture, t *texture.Texture2D) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploadErr != nil {
		return b.uploadErr
	}
	b.textures[h] = [2]uint32{t.Width(), t.Height()}
	return nil
}

func (b *RecordingBackend) ReleaseTexture(h handle.Texture) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.textures, h)
}

func (b *RecordingBackend) RegisterPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pipelines[p.PipelineKey()] = true
	return nil
}

func (b *RecordingBackend) BeginFrame(frame FrameUniforms) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frameErr != nil {
		return b.frameErr
	}
	frame.Lights = append([]light.GPULight(nil), frame.Lights...)
	b.frames = append(b.frames, RecordedFrame{Uniforms: frame, ClearColor: b.clearColor})
	b.current = &b.frames[len(b.frames)-1]
	return nil
}

func (b *RecordingBackend) Draw(p pipeline.Pipeline, cmd DrawCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return ErrNoFrame
	}
	b.current.Draws = append(b.current.Draws, RecordedDraw{
		Pipeline:   p.PipelineKey(),
		Mesh:       cmd.Mesh,
		IndexCount: b.meshes[cmd.Mesh],
		Transform:  cmd.Transform,
		Params:     cmd.Params,
		Textures:   append([]handle.Texture(nil), cmd.Textures...),
	})
	return nil
}

func (b *RecordingBackend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return ErrNoFrame
	}
	b.current.Submitted = true
	return nil
}

func (b *RecordingBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil || !b.current.Submitted {
		return
	}
	b.current.Presented = true
	b.current = nil
}

func (b *RecordingBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.released = true
	b.current = nil
	clear(b.meshes)
	clear(b.textures)
	clear(b.pipelines)
}
