package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/polygon/engine/anchor"
	"github.com/Carmen-Shannon/polygon/engine/camera"
	"github.com/Carmen-Shannon/polygon/engine/mesh"
	"github.com/Carmen-Shannon/polygon/engine/mesh_instance"
	"github.com/Carmen-Shannon/polygon/engine/profiler"
	"github.com/Carmen-Shannon/polygon/engine/renderer"
	"github.com/Carmen-Shannon/polygon/engine/scene"
)

func newHeadlessScene(t *testing.T) (scene.Scene, *renderer.RecordingBackend) {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeRecording, nil)
	require.NoError(t, err)
	rec := r.Backend().(*renderer.RecordingBackend)
	s := scene.NewScene(r, scene.WithTransformWorkers(1))
	t.Cleanup(s.Release)

	ah := s.RegisterAnchor(anchor.New(anchor.WithPosition([3]float32{0, 0, 10})))
	s.RegisterCamera(camera.NewCamera(camera.WithAnchor(ah)))
	mh, err := s.RegisterMesh(mesh.Triangle())
	require.NoError(t, err)
	s.RegisterMeshInstance(mesh_instance.WithOwnedMaterial(mh, s.DefaultMaterial(), mesh_instance.WithAnchor(s.RegisterAnchor(anchor.New()))))
	return s, rec
}

func TestNewEngineNilScenePanics(t *testing.T) {
	assert.Panics(t, func() { NewEngine(nil) })
}

func TestHeadlessRunStopsAtMaxFrames(t *testing.T) {
	s, rec := newHeadlessScene(t)
	updates := 0
	e := NewEngine(s, WithMaxFrames(5), WithUpdateCallback(func(float32) { updates++ }))

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(5), e.Frames())
	assert.Equal(t, 5, updates)
	frames := rec.Frames()
	require.Len(t, frames, 5)
	for _, f := range frames {
		assert.True(t, f.Presented)
		assert.Len(t, f.Draws, 1)
	}
}

func TestQuitFromUpdateCallback(t *testing.T) {
	s, _ := newHeadlessScene(t)
	e := NewEngine(s)
	e.SetUpdateCallback(func(float32) {
		if e.Frames() == 2 {
			e.Quit()
		}
	})

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(3), e.Frames())
	e.Quit()
}

func TestFrameErrorStopsLoop(t *testing.T) {
	s, rec := newHeadlessScene(t)
	lost := errors.New("device lost")
	e := NewEngine(s, WithMaxFrames(10))
	e.SetUpdateCallback(func(float32) {
		if e.Frames() == 1 {
			rec.FailFrames(lost)
		}
	})

	err := e.Run()
	assert.ErrorIs(t, err, lost)
	assert.Equal(t, uint64(1), e.Frames())
}

func TestErrorHandlerCanContinue(t *testing.T) {
	s, rec := newHeadlessScene(t)
	rec.FailFrames(errors.New("transient"))
	var seen int
	e := NewEngine(s, WithMaxFrames(3), WithErrorHandler(func(error) bool {
		seen++
		if seen == 2 {
			rec.FailFrames(nil)
		}
		return true
	}))

	require.NoError(t, e.Run())
	assert.Equal(t, 2, seen)
	assert.Equal(t, uint64(3), e.Frames())
}

func TestPanicInUpdateIsRecovered(t *testing.T) {
	s, _ := newHeadlessScene(t)
	e := NewEngine(s, WithUpdateCallback(func(float32) { panic("boom") }))

	err := e.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Zero(t, e.Frames())
}

func TestProfilerTicksWithSceneStats(t *testing.T) {
	s, _ := newHeadlessScene(t)
	p := profiler.NewProfiler(profiler.WithQuiet(true), profiler.WithInterval(1))
	e := NewEngine(s, WithMaxFrames(3), WithProfiler(p), WithProfiling(true))

	require.NoError(t, e.Run())
	assert.InDelta(t, 1, p.LastReport().AvgDrawn, 1e-9)
	assert.Nil(t, e.Window())
	assert.Same(t, s, e.Scene())
}
