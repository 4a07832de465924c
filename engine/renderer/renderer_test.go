package renderer

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/mesh"
	"github.com/Carmen-Shannon/polygon/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/polygon/engine/renderer/shader"
	"github.com/Carmen-Shannon/polygon/engine/texture"
)

type fakeSurface struct {
	w, h int
}

func (f fakeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (f fakeSurface) Width() int                                 { return f.w }
func (f fakeSurface) Height() int                                { return f.h }

func newRecording(t *testing.T, opts ...RendererBuilderOption) (Renderer, *RecordingBackend) {
	t.Helper()
	r, err := NewRenderer(BackendTypeRecording, fakeSurface{w: 800, h: 600}, opts...)
	require.NoError(t, err)
	rec, ok := r.Backend().(*RecordingBackend)
	require.True(t, ok)
	return r, rec
}

func TestNewRendererRecording(t *testing.T) {
	r, rec := newRecording(t, WithPresentMode(PresentModeVSync), WithClearColor(common.ColorBlack))
	assert.Equal(t, BackendTypeRecording, r.BackendType())
	assert.Equal(t, "recording", r.BackendType().String())
	assert.Equal(t, PresentModeVSync, rec.PresentMode())

	w, h := rec.SurfaceSize()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.InDelta(t, 800.0/600.0, r.SurfaceAspect(), 1e-6)

	r.Resize(100, 0)
	assert.Equal(t, float32(1), r.SurfaceAspect())
}

func TestNewRendererErrors(t *testing.T) {
	_, err := NewRenderer(BackendTypeWGPU, nil)
	var creationErr *CreationError
	require.True(t, errors.As(err, &creationErr))
	assert.Equal(t, StageSurface, creationErr.Stage)
	assert.Contains(t, creationErr.Error(), "surface")

	_, err = NewRenderer(RendererBackendType(42), nil)
	require.True(t, errors.As(err, &creationErr))
	assert.Equal(t, StageInstance, creationErr.Stage)
}

func TestRegisterMesh(t *testing.T) {
	r, rec := newRecording(t)
	h, err := r.RegisterMesh(mesh.Triangle())
	require.NoError(t, err)

	assert.True(t, r.HasMesh(h))
	n, ok := r.MeshIndexCount(h)
	require.True(t, ok)
	assert.Equal(t, 3, n)
	_, radius, ok := r.MeshBounds(h)
	require.True(t, ok)
	assert.Greater(t, radius, float32(0))
	assert.Equal(t, 1, rec.MeshCount())

	assert.True(t, r.UnregisterMesh(h))
	assert.False(t, r.UnregisterMesh(h))
	assert.False(t, r.HasMesh(h))
	_, ok = r.MeshIndexCount(h)
	assert.False(t, ok)
	assert.Zero(t, rec.MeshCount())

	_, err = r.RegisterMesh(nil)
	assert.Error(t, err)
}

func TestRegisterTexture(t *testing.T) {
	r, rec := newRecording(t)
	h, err := r.RegisterTexture(texture.Solid(common.RGB(1, 0, 0)))
	require.NoError(t, err)
	assert.True(t, r.HasTexture(h))
	w, ht, ok := r.TextureSize(h)
	require.True(t, ok)
	assert.Equal(t, uint32(1), w)
	assert.Equal(t, uint32(1), ht)
	assert.Equal(t, 1, rec.TextureCount())

	assert.True(t, r.UnregisterTexture(h))
	assert.False(t, r.HasTexture(h))
	assert.False(t, r.UnregisterTexture(h))
	assert.Zero(t, rec.TextureCount())
}

func TestUploadFailure(t *testing.T) {
	r, rec := newRecording(t)
	boom := errors.New("out of memory")
	rec.FailUploads(boom)

	h, err := r.RegisterMesh(mesh.Triangle())
	assert.ErrorIs(t, err, boom)
	assert.False(t, r.HasMesh(h))

	th, err := r.RegisterTexture(texture.Solid(common.ColorWhite))
	assert.ErrorIs(t, err, boom)
	assert.False(t, r.HasTexture(th))

	rec.FailUploads(nil)
	_, err = r.RegisterMesh(mesh.Triangle())
	assert.NoError(t, err)
}

func TestInvalidHandleLookupsAreIdempotent(t *testing.T) {
	r, _ := newRecording(t)
	bogus := handle.Mesh(handle.NewID(9, 9))
	for range 3 {
		assert.False(t, r.HasMesh(bogus))
		_, ok := r.MeshIndexCount(bogus)
		assert.False(t, ok)
		assert.False(t, r.HasTexture(handle.Texture(bogus)))
		assert.False(t, r.UnregisterMesh(bogus))
	}
}

func TestFrameLifecycle(t *testing.T) {
	r, rec := newRecording(t)
	lib := shader.NewLibrary()
	h, err := r.RegisterMesh(mesh.Triangle())
	require.NoError(t, err)

	cmd := DrawCommand{Mesh: h, Shader: lib.Default(), Params: lib.Default().DefaultParams()}
	assert.ErrorIs(t, r.Draw(cmd), ErrNoFrame)
	assert.ErrorIs(t, r.EndFrame(), ErrNoFrame)

	require.NoError(t, r.BeginFrame(FrameUniforms{Ambient: common.RGB(0.2, 0.2, 0.2)}))
	assert.Error(t, r.BeginFrame(FrameUniforms{}))
	require.NoError(t, r.Draw(cmd))
	assert.ErrorIs(t, r.Draw(DrawCommand{Mesh: handle.Mesh(handle.NewID(7, 1)), Shader: lib.Default()}), ErrUnknownMesh)
	require.NoError(t, r.EndFrame())
	r.Present()

	frame, ok := rec.LastFrame()
	require.True(t, ok)
	assert.True(t, frame.Submitted)
	assert.True(t, frame.Presented)
	require.Len(t, frame.Draws, 1)
	assert.Equal(t, shader.KeyDefault, frame.Draws[0].Pipeline)
	assert.Equal(t, 3, frame.Draws[0].IndexCount)
	assert.Equal(t, common.RGB(0.2, 0.2, 0.2), frame.Uniforms.Ambient)
	assert.Equal(t, []string{shader.KeyDefault}, rec.PipelineKeys())

	_, ok = r.Pipeline(shader.KeyDefault)
	assert.True(t, ok)
}

func TestDrawResolvesUnknownTexturesToZero(t *testing.T) {
	r, rec := newRecording(t)
	lib := shader.NewLibrary()
	textured, ok := lib.Shader(shader.KeyTextureDiffuseLit)
	require.True(t, ok)

	mh, err := r.RegisterMesh(mesh.Quad(1))
	require.NoError(t, err)
	th, err := r.RegisterTexture(texture.Solid(common.ColorWhite))
	require.NoError(t, err)

	require.NoError(t, r.BeginFrame(FrameUniforms{}))
	require.NoError(t, r.Draw(DrawCommand{Mesh: mh, Shader: textured, Textures: []handle.Texture{th}}))
	require.NoError(t, r.Draw(DrawCommand{Mesh: mh, Shader: textured, Textures: []handle.Texture{handle.Texture(handle.NewID(40, 3))}}))
	require.NoError(t, r.Draw(DrawCommand{Mesh: mh, Shader: textured}))
	require.NoError(t, r.EndFrame())

	frame, _ := rec.LastFrame()
	require.Len(t, frame.Draws, 3)
	assert.Equal(t, []handle.Texture{th}, frame.Draws[0].Textures)
	assert.Equal(t, []handle.Texture{0}, frame.Draws[1].Textures)
	assert.Equal(t, []handle.Texture{0}, frame.Draws[2].Textures)
}

func TestFrameFailure(t *testing.T) {
	r, rec := newRecording(t)
	lost := errors.New("surface lost")
	rec.FailFrames(lost)
	assert.ErrorIs(t, r.BeginFrame(FrameUniforms{}), lost)
	assert.ErrorIs(t, r.EndFrame(), ErrNoFrame)

	rec.FailFrames(nil)
	assert.NoError(t, r.BeginFrame(FrameUniforms{}))
}

func TestRegisterPipeline(t *testing.T) {
	lib := shader.NewLibrary()
	flat, _ := lib.Shader(shader.KeyDiffuseFlat)
	r, rec := newRecording(t, WithPipeline(pipeline.NewPipeline(flat, pipeline.WithCullMode(wgpu.CullModeBack))))
	assert.Equal(t, []string{shader.KeyDiffuseFlat}, rec.PipelineKeys())

	p, ok := r.Pipeline(shader.KeyDiffuseFlat)
	require.True(t, ok)
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())

	require.NoError(t, r.RegisterPipeline(pipeline.NewPipeline(flat)))
	p, _ = r.Pipeline(shader.KeyDiffuseFlat)
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
}

func TestRelease(t *testing.T) {
	r, rec := newRecording(t)
	_, err := r.RegisterMesh(mesh.Cube(1))
	require.NoError(t, err)
	_, err = r.RegisterTexture(texture.Solid(common.ColorWhite))
	require.NoError(t, err)

	r.Release()
	r.Release()
	assert.True(t, rec.Released())
	assert.Zero(t, rec.MeshCount())
	assert.Zero(t, rec.TextureCount())

	_, err = r.RegisterMesh(mesh.Triangle())
	assert.ErrorIs(t, err, ErrReleased)
	assert.ErrorIs(t, r.BeginFrame(FrameUniforms{}), ErrReleased)
}
