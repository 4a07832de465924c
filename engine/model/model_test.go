package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/anchor"
	"github.com/Carmen-Shannon/polygon/engine/camera"
	"github.com/Carmen-Shannon/polygon/engine/mesh"
	"github.com/Carmen-Shannon/polygon/engine/renderer"
	"github.com/Carmen-Shannon/polygon/engine/scene"
	"github.com/Carmen-Shannon/polygon/engine/texture"
)

var red = common.RGB(1, 0, 0)

func newTestScene(t *testing.T) (scene.Scene, *renderer.RecordingBackend) {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeRecording, nil)
	require.NoError(t, err)
	s := scene.NewScene(r, scene.WithTransformWorkers(1))
	t.Cleanup(s.Release)
	return s, r.Backend().(*renderer.RecordingBackend)
}

func translated(x, y, z float32) Transform {
	tr := IdentityTransform()
	tr.Translation = [3]float32{x, y, z}
	return tr
}

// testModel has an empty root node with two children: one drawing a triangle and a quad, the
// other drawing a textured cube.
func testModel() *Model {
	return &Model{
		Name: "test",
		Meshes: []Mesh{
			{Name: "pair", Primitives: []Primitive{
				{Mesh: mesh.Triangle(), MaterialIndex: 0},
				{Mesh: mesh.Quad(1), MaterialIndex: -1},
			}},
			{Name: "cube", Primitives: []Primitive{{Mesh: mesh.Cube(1), MaterialIndex: 1}}},
		},
		Materials: []MaterialData{
			{Name: "red", BaseColor: red, Shininess: 16},
			{Name: "crate", BaseColor: common.ColorWhite, BaseColorTexture: texture.Solid(common.RGB(0, 0, 1))},
		},
		Nodes: []Node{
			{Name: "root", Transform: translated(1, 0, 0), Parent: -1, MeshIndex: -1},
			{Name: "pair", Transform: translated(0, 2, 0), Parent: 0, MeshIndex: 0},
			{Name: "cube", Transform: translated(0, 0, -3), Parent: 0, MeshIndex: 1},
		},
	}
}

func TestModelCounts(t *testing.T) {
	m := testModel()
	assert.Equal(t, 3, m.PrimitiveCount())
	assert.Equal(t, 3, m.InstanceCount())
	assert.NoError(t, m.Validate())
}

func TestValidateRejectsBrokenReferences(t *testing.T) {
	m := testModel()
	m.Nodes[0].Parent = 2
	assert.Error(t, m.Validate())

	m = testModel()
	m.Nodes[1].MeshIndex = 5
	assert.Error(t, m.Validate())

	m = testModel()
	m.Meshes[0].Primitives[0].MaterialIndex = 7
	assert.Error(t, m.Validate())

	m = testModel()
	m.Meshes[1].Primitives[0].Mesh = nil
	assert.Error(t, m.Validate())
}

func TestSpawnRegistersHierarchy(t *testing.T) {
	s, rec := newTestScene(t)
	sp, err := Spawn(s, testModel())
	require.NoError(t, err)

	assert.Len(t, sp.Anchors, 3)
	assert.Len(t, sp.Instances, 3)
	assert.Len(t, sp.Materials, 3)
	assert.Len(t, sp.Meshes, 3)
	assert.Len(t, sp.Textures, 1)
	assert.Equal(t, 3, s.MeshInstanceCount())
	assert.Equal(t, 3, rec.MeshCount())
	assert.Equal(t, 1, rec.TextureCount())

	world, ok := s.WorldTransform(sp.Anchors[1])
	require.True(t, ok)
	assert.Equal(t, [3]float32{1, 2, 0}, [3]float32{world[12], world[13], world[14]})

	mat, ok := s.MaterialMut(sp.Materials[0])
	require.True(t, ok)
	c, _ := mat.Color("surface_color")
	assert.Equal(t, red, c)
	shininess, _ := mat.F32("surface_shininess")
	assert.Equal(t, float32(16), shininess)

	crate, ok := s.MaterialMut(sp.Materials[1])
	require.True(t, ok)
	tex, ok := crate.Texture("surface_diffuse")
	require.True(t, ok)
	assert.Equal(t, sp.Textures[0], tex)
}

func TestSpawnedModelDraws(t *testing.T) {
	s, rec := newTestScene(t)
	ah := s.RegisterAnchor(anchor.New(anchor.WithPosition([3]float32{0, 0, 10})))
	s.RegisterCamera(camera.NewCamera(camera.WithAnchor(ah)))

	_, err := Spawn(s, testModel())
	require.NoError(t, err)
	require.NoError(t, s.Draw())

	f, ok := rec.LastFrame()
	require.True(t, ok)
	assert.Len(t, f.Draws, 3)
	assert.Equal(t, 3, s.LastFrameStats().Drawn)
}

func TestSpawnOptions(t *testing.T) {
	s, _ := newTestScene(t)
	root := s.RegisterAnchor(anchor.New(anchor.WithPosition([3]float32{0, 5, 0})))
	ch := s.RegisterAnchor(anchor.New(anchor.WithPosition([3]float32{0, 0, 10})))
	s.RegisterCamera(camera.NewCamera(camera.WithAnchor(ch)))

	sp, err := Spawn(s, testModel(), WithRootAnchor(root), WithDisabled(true))
	require.NoError(t, err)

	world, ok := s.WorldTransform(sp.Anchors[1])
	require.True(t, ok)
	assert.Equal(t, [3]float32{1, 7, 0}, [3]float32{world[12], world[13], world[14]})

	require.NoError(t, s.Draw())
	assert.Equal(t, 3, s.LastFrameStats().Disabled)
	assert.Zero(t, s.LastFrameStats().Drawn)
}

func TestDespawnRemovesEverything(t *testing.T) {
	s, rec := newTestScene(t)
	sp, err := Spawn(s, testModel())
	require.NoError(t, err)
	anchors := append(sp.Anchors[:0:0], sp.Anchors...)

	Despawn(s, sp)
	assert.Zero(t, s.MeshInstanceCount())
	assert.Zero(t, rec.MeshCount())
	assert.Zero(t, rec.TextureCount())
	for _, h := range anchors {
		_, ok := s.Anchor(h)
		assert.False(t, ok)
	}
	assert.Empty(t, sp.Instances)

	assert.NotPanics(t, func() { Despawn(s, sp) })
	assert.NotPanics(t, func() { Despawn(s, nil) })
}

func TestSpawnFailureRollsBack(t *testing.T) {
	s, rec := newTestScene(t)
	_, err := Spawn(s, testModel(), WithShaders("", "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
	assert.Zero(t, s.MeshInstanceCount())
	assert.Zero(t, rec.MeshCount())
	assert.Zero(t, rec.TextureCount())

	uploadErr := errors.New("out of memory")
	rec.FailUploads(uploadErr)
	_, err = Spawn(s, testModel())
	assert.ErrorIs(t, err, uploadErr)
	assert.Zero(t, s.MeshInstanceCount())
}
