package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/model"
	"github.com/Carmen-Shannon/polygon/engine/renderer"
	"github.com/Carmen-Shannon/polygon/engine/scene"
)

// triangleBinary packs positions, texcoords and uint16 indices of one triangle, padded to 4 bytes.
func triangleBinary(t *testing.T) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, [][3]float32{{0, 1, 0}, {-1, -1, 0}, {1, -1, 0}}))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, [][2]float32{{0.5, 0}, {0, 1}, {1, 1}}))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, []uint16{0, 1, 2, 0}))
	return buf.Bytes()
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range 4 {
		img.Set(i%2, i/2, color.RGBA{R: 255, A: 255})
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// triangleDocument describes a root node translated to (1,0,0) whose child, placed by a matrix at
// (0,2,0), draws a red textured triangle. For GLB the buffer has no URI and the image lives in a
// fourth buffer view after the geometry.
func triangleDocument(bin, pngData []byte, glb bool) map[string]any {
	views := []any{
		map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 36},
		map[string]any{"buffer": 0, "byteOffset": 36, "byteLength": 24},
		map[string]any{"buffer": 0, "byteOffset": 60, "byteLength": 6},
	}
	var buffers, images []any
	if glb {
		views = append(views, map[string]any{"buffer": 0, "byteOffset": len(bin), "byteLength": len(pngData)})
		buffers = []any{map[string]any{"byteLength": len(bin) + len(pngData)}}
		images = []any{map[string]any{"bufferView": 3, "mimeType": "image/png"}}
	} else {
		buffers = []any{map[string]any{"uri": dataURI("application/octet-stream", bin), "byteLength": len(bin)}}
		images = []any{map[string]any{"uri": dataURI("image/png", pngData)}}
	}

	return map[string]any{
		"asset":  map[string]any{"version": "2.0"},
		"scene":  0,
		"scenes": []any{map[string]any{"name": "triangle_scene", "nodes": []int{0}}},
		"nodes": []any{
			map[string]any{"name": "root", "translation": []float32{1, 0, 0}, "children": []int{1}},
			map[string]any{"name": "tri", "mesh": 0, "matrix": []float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 2, 0, 1}},
		},
		"meshes": []any{map[string]any{
			"name": "triangle",
			"primitives": []any{map[string]any{
				"attributes": map[string]int{"POSITION": 0, "TEXCOORD_0": 1},
				"indices":    2,
				"material":   0,
			}},
		}},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": gltfComponentTypeFloat, "count": 3, "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": gltfComponentTypeFloat, "count": 3, "type": "VEC2"},
			map[string]any{"bufferView": 2, "componentType": gltfComponentTypeUnsignedShort, "count": 3, "type": "SCALAR"},
		},
		"bufferViews": views,
		"buffers":     buffers,
		"materials": []any{map[string]any{
			"name": "red",
			"pbrMetallicRoughness": map[string]any{
				"baseColorFactor":  []float32{1, 0, 0, 1},
				"baseColorTexture": map[string]any{"index": 0},
				"roughnessFactor":  1,
			},
		}},
		"textures": []any{map[string]any{"source": 0}},
		"images":   images,
	}
}

func encodeGLB(t *testing.T, doc map[string]any, bin []byte) []byte {
	t.Helper()
	js, err := json.Marshal(doc)
	require.NoError(t, err)
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	buf := new(bytes.Buffer)
	total := 12 + 8 + len(js) + 8 + len(bin)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)}))
	require.NoError(t, binary.Write(buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(js)), ChunkType: gltfGLBChunkJSON}))
	buf.Write(js)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN}))
	buf.Write(bin)
	return buf.Bytes()
}

func newTestLoader(t *testing.T, opts ...LoaderBuilderOption) Loader {
	t.Helper()
	l := NewLoader(BackendTypeGLTF, opts...)
	t.Cleanup(l.Close)
	return l
}

func writeGLTF(t *testing.T, dir, name string, doc map[string]any) string {
	t.Helper()
	js, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, js, 0o644))
	return path
}

func assertTriangleModel(t *testing.T, m *model.Model) {
	t.Helper()
	require.Len(t, m.Meshes, 1)
	require.Len(t, m.Meshes[0].Primitives, 1)
	prim := m.Meshes[0].Primitives[0]
	assert.Equal(t, 3, prim.Mesh.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2}, prim.Mesh.Indices())
	assert.False(t, prim.Mesh.HasSuppliedNormals())
	assert.True(t, prim.Mesh.HasSuppliedTexcoords())
	assert.Equal(t, 0, prim.MaterialIndex)

	require.Len(t, m.Materials, 1)
	mat := m.Materials[0]
	assert.Equal(t, "red", mat.Name)
	assert.Equal(t, common.RGB(1, 0, 0), mat.BaseColor)
	assert.Equal(t, float32(1), mat.Shininess)
	require.NotNil(t, mat.BaseColorTexture)
	assert.Equal(t, uint32(2), mat.BaseColorTexture.Width())

	require.Len(t, m.Nodes, 2)
	assert.Equal(t, -1, m.Nodes[0].Parent)
	assert.Equal(t, -1, m.Nodes[0].MeshIndex)
	assert.Equal(t, [3]float32{1, 0, 0}, m.Nodes[0].Transform.Translation)
	assert.Equal(t, 0, m.Nodes[1].Parent)
	assert.Equal(t, 0, m.Nodes[1].MeshIndex)
	assert.Equal(t, [3]float32{0, 2, 0}, m.Nodes[1].Transform.Translation)
	assert.Equal(t, [3]float32{1, 1, 1}, m.Nodes[1].Transform.Scale)
	assert.InDelta(t, 1, m.Nodes[1].Transform.Rotation.W, 1e-6)
}

func TestLoadGLTF(t *testing.T) {
	path := writeGLTF(t, t.TempDir(), "triangle.gltf", triangleDocument(triangleBinary(t), testPNG(t), false))
	l := newTestLoader(t)

	m, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "triangle_scene", m.Name)
	assertTriangleModel(t, m)

	again, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, m, again)
	assert.Equal(t, []string{path}, l.Names())

	assert.True(t, l.Evict(path))
	assert.False(t, l.Evict(path))
	_, ok := l.Get(path)
	assert.False(t, ok)
}

func TestLoadGLB(t *testing.T) {
	bin, pngData := triangleBinary(t), testPNG(t)
	glb := encodeGLB(t, triangleDocument(bin, pngData, true), append(bin, pngData...))

	l := newTestLoader(t)
	m, err := l.LoadReader("triangle", bytes.NewReader(glb), true, "")
	require.NoError(t, err)
	assertTriangleModel(t, m)

	cached, ok := l.Get("triangle")
	require.True(t, ok)
	assert.Same(t, m, cached)

	path := filepath.Join(t.TempDir(), "triangle.glb")
	require.NoError(t, os.WriteFile(path, glb, 0o644))
	fromFile, err := l.Load(path)
	require.NoError(t, err)
	assertTriangleModel(t, fromFile)
}

func TestExternalBufferFile(t *testing.T) {
	dir := t.TempDir()
	bin := triangleBinary(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "triangle.bin"), bin, 0o644))
	doc := triangleDocument(bin, testPNG(t), false)
	doc["buffers"] = []any{map[string]any{"uri": "triangle.bin", "byteLength": len(bin)}}

	m, err := newTestLoader(t).Load(writeGLTF(t, dir, "triangle.gltf", doc))
	require.NoError(t, err)
	assertTriangleModel(t, m)
}

func TestLoadErrors(t *testing.T) {
	l := newTestLoader(t)
	_, err := l.Load("model.obj")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = l.Load(filepath.Join(t.TempDir(), "missing.gltf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	breakers := map[string]func(doc map[string]any){
		"version": func(doc map[string]any) { doc["asset"] = map[string]any{"version": "1.0"} },
		"required extension": func(doc map[string]any) {
			doc["extensionsRequired"] = []string{"KHR_draco_mesh_compression"}
		},
		"accessor range": func(doc map[string]any) {
			doc["meshes"].([]any)[0].(map[string]any)["primitives"].([]any)[0].(map[string]any)["indices"] = 9
		},
		"primitive mode": func(doc map[string]any) {
			doc["meshes"].([]any)[0].(map[string]any)["primitives"].([]any)[0].(map[string]any)["mode"] = 1
		},
		"accessor type": func(doc map[string]any) {
			doc["accessors"].([]any)[0].(map[string]any)["type"] = "VEC2"
		},
		"node cycle": func(doc map[string]any) {
			doc["nodes"].([]any)[1].(map[string]any)["children"] = []int{0}
		},
		"short buffer": func(doc map[string]any) {
			doc["buffers"].([]any)[0].(map[string]any)["byteLength"] = 4096
		},
		"negative accessor count": func(doc map[string]any) {
			doc["accessors"].([]any)[0].(map[string]any)["count"] = -1
		},
		"negative accessor offset": func(doc map[string]any) {
			doc["accessors"].([]any)[0].(map[string]any)["byteOffset"] = -12
		},
		"huge accessor count": func(doc map[string]any) {
			doc["accessors"].([]any)[0].(map[string]any)["count"] = 1 << 62
		},
		"negative view length": func(doc map[string]any) {
			doc["bufferViews"].([]any)[0].(map[string]any)["byteLength"] = -1
		},
		"negative view offset": func(doc map[string]any) {
			doc["bufferViews"].([]any)[1].(map[string]any)["byteOffset"] = -4
		},
		"stride below element size": func(doc map[string]any) {
			doc["bufferViews"].([]any)[0].(map[string]any)["byteStride"] = 4
		},
	}
	for name, breakDoc := range breakers {
		t.Run(name, func(t *testing.T) {
			doc := triangleDocument(triangleBinary(t), testPNG(t), false)
			breakDoc(doc)
			_, err := newTestLoader(t).Load(writeGLTF(t, t.TempDir(), "broken.gltf", doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadAllAfterClose(t *testing.T) {
	dir := t.TempDir()
	good := writeGLTF(t, dir, "good.gltf", triangleDocument(triangleBinary(t), testPNG(t), false))
	l := newTestLoader(t, WithWorkers(3))
	l.Close()
	assert.NotPanics(t, l.Close)

	models, err := l.LoadAll(good)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assertTriangleModel(t, models[0])
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	good := writeGLTF(t, dir, "good.gltf", triangleDocument(triangleBinary(t), testPNG(t), false))
	l := newTestLoader(t, WithWorkers(2))

	models, err := l.LoadAll(good, filepath.Join(dir, "missing.gltf"))
	require.Error(t, err)
	require.Len(t, models, 2)
	assert.NotNil(t, models[0])
	assert.Nil(t, models[1])
	_, ok := l.Get(good)
	assert.True(t, ok)
}

func TestWithModelPrepopulatesCache(t *testing.T) {
	m := &model.Model{Name: "cached"}
	l := newTestLoader(t, WithModel("cached.gltf", m))
	got, err := l.Load("cached.gltf")
	require.NoError(t, err)
	assert.Same(t, m, got)
}

func TestDecomposeMatrix(t *testing.T) {
	q := common.QuatFromAxisAngle([3]float32{0, 1, 0}, 0.5)
	var m [16]float32
	common.ComposeTRS(m[:], [3]float32{3, -2, 1}, q, [3]float32{2, 3, 4})

	tr := decomposeMatrix(m)
	assert.InDeltaSlice(t, []float32{3, -2, 1}, tr.Translation[:], 1e-5)
	assert.InDeltaSlice(t, []float32{2, 3, 4}, tr.Scale[:], 1e-5)
	assert.InDeltaSlice(t, []float32{q.X, q.Y, q.Z, q.W}, []float32{tr.Rotation.X, tr.Rotation.Y, tr.Rotation.Z, tr.Rotation.W}, 1e-5)
}

func TestSpawnLoadedModel(t *testing.T) {
	path := writeGLTF(t, t.TempDir(), "triangle.gltf", triangleDocument(triangleBinary(t), testPNG(t), false))
	m, err := newTestLoader(t).Load(path)
	require.NoError(t, err)

	r, err := renderer.NewRenderer(renderer.BackendTypeRecording, nil)
	require.NoError(t, err)
	s := scene.NewScene(r, scene.WithTransformWorkers(1))
	t.Cleanup(s.Release)

	sp, err := model.Spawn(s, m)
	require.NoError(t, err)
	assert.Equal(t, 1, s.MeshInstanceCount())
	require.Len(t, sp.Textures, 1)

	world, ok := s.WorldTransform(sp.Anchors[1])
	require.True(t, ok)
	assert.InDeltaSlice(t, []float32{1, 2, 0}, world[12:15], 1e-6)
}

func TestRoughnessToShininess(t *testing.T) {
	assert.Equal(t, float32(minShininess), roughnessToShininess(1))
	assert.Equal(t, float32(maxShininess), roughnessToShininess(0))
	assert.InDelta(t, 30, roughnessToShininess(0.5), 1e-4)
	assert.Greater(t, roughnessToShininess(0.4), roughnessToShininess(0.6))
}
