package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/polygon/engine/mesh"
	"github.com/Carmen-Shannon/polygon/engine/model"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts glTF meshes into validated engine meshes, one per primitive.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - model.Mesh: the mesh with one primitive per glTF primitive
	//   - error: error if an attribute cannot be read or the mesh data is inconsistent
	ExtractMesh(meshIndex int) (model.Mesh, error)

	// ExtractAllMeshes extracts every mesh in document order.
	//
	// Returns:
	//   - []model.Mesh: all meshes
	//   - error: error if any mesh fails to extract
	ExtractAllMeshes() ([]model.Mesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) (model.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return model.Mesh{}, errNoDocument
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return model.Mesh{}, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	src := &doc.Meshes[meshIndex]
	out := model.Mesh{Name: src.Name}
	if out.Name == "" {
		out.Name = fmt.Sprintf("mesh_%d", meshIndex)
	}
	for i := range src.Primitives {
		prim, err := e.extractPrimitive(&src.Primitives[i], out.Name, i)
		if err != nil {
			return model.Mesh{}, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, i, err)
		}
		out.Primitives = append(out.Primitives, prim)
	}
	return out, nil
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]model.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}
	meshes := make([]model.Mesh, 0, len(doc.Meshes))
	for i := range doc.Meshes {
		m, err := e.ExtractMesh(i)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, meshName string, primIndex int) (model.Primitive, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return model.Primitive{}, fmt.Errorf("unsupported primitive mode %d (only triangles)", *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return model.Primitive{}, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return model.Primitive{}, fmt.Errorf("failed to read positions: %w", err)
	}

	label := meshName
	if primIndex > 0 {
		label = fmt.Sprintf("%s_prim%d", meshName, primIndex)
	}
	b := mesh.NewMeshBuilder().SetLabel(label).SetPositionData(positions)

	// Normals are generated by the mesh builder when absent.
	if acc, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := e.parser.ReadVec3Accessor(acc)
		if err != nil {
			return model.Primitive{}, fmt.Errorf("failed to read normals: %w", err)
		}
		b.SetNormalData(normals)
	}
	if acc, ok := prim.Attributes["TEXCOORD_0"]; ok {
		texcoords, err := e.parser.ReadVec2Accessor(acc)
		if err != nil {
			return model.Primitive{}, fmt.Errorf("failed to read texcoords: %w", err)
		}
		b.SetTexcoordData(texcoords)
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = e.parser.ReadIndicesAccessor(*prim.Indices); err != nil {
			return model.Primitive{}, fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	m, err := b.SetIndices(indices).Build()
	if err != nil {
		return model.Primitive{}, err
	}

	materialIndex := -1
	if prim.Material != nil {
		materialIndex = *prim.Material
	}
	return model.Primitive{Mesh: m, MaterialIndex: materialIndex}, nil
}
