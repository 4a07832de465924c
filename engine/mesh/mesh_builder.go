package mesh

import "slices"

// MeshBuilder collects vertex attributes and indices and validates them into a Mesh.
// Setters copy their input, so callers may reuse their slices afterwards.
type MeshBuilder struct {
	label     string
	positions [][3]float32
	normals   [][3]float32
	texcoords [][2]float32
	indices   []uint32
}

// NewMeshBuilder creates an empty MeshBuilder.
//
// Returns:
//   - *MeshBuilder: the builder
func NewMeshBuilder() *MeshBuilder {
	return &MeshBuilder{}
}

// SetLabel sets the debug label carried into GPU resource names.
func (b *MeshBuilder) SetLabel(label string) *MeshBuilder {
	b.label = label
	return b
}

// SetPositionData sets the model-space vertex positions.
func (b *MeshBuilder) SetPositionData(positions [][3]float32) *MeshBuilder {
	b.positions = slices.Clone(positions)
	return b
}

// SetNormalData sets per-vertex normals. Optional; must match the position count when given.
func (b *MeshBuilder) SetNormalData(normals [][3]float32) *MeshBuilder {
	b.normals = slices.Clone(normals)
	return b
}

// SetTexcoordData sets per-vertex UV coordinates. Optional; must match the position count when given.
func (b *MeshBuilder) SetTexcoordData(texcoords [][2]float32) *MeshBuilder {
	b.texcoords = slices.Clone(texcoords)
	return b
}

// SetIndices sets the triangle-list indices (three per triangle, counter-clockwise front faces).
func (b *MeshBuilder) SetIndices(indices []uint32) *MeshBuilder {
	b.indices = slices.Clone(indices)
	return b
}

// Build validates the collected data and produces an immutable Mesh.
//
// Returns:
//   - *Mesh: the validated mesh
//   - error: a *BuildMeshError describing the first inconsistency found
func (b *MeshBuilder) Build() (*Mesh, error) {
	n := len(b.positions)
	switch {
	case n == 0:
		return nil, &BuildMeshError{Kind: ErrKindNoPositions}
	case len(b.indices) == 0:
		return nil, &BuildMeshError{Kind: ErrKindNoIndices}
	case len(b.indices)%3 != 0:
		return nil, &BuildMeshError{Kind: ErrKindIndexCount, Got: len(b.indices)}
	case len(b.normals) != 0 && len(b.normals) != n:
		return nil, &BuildMeshError{Kind: ErrKindNormalCount, Got: len(b.normals), Want: n}
	case len(b.texcoords) != 0 && len(b.texcoords) != n:
		return nil, &BuildMeshError{Kind: ErrKindTexcoordCount, Got: len(b.texcoords), Want: n}
	}
	for i, idx := range b.indices {
		if int(idx) >= n {
			return nil, &BuildMeshError{Kind: ErrKindIndexOutOfRange, Got: int(idx), Want: n, Position: i}
		}
	}

	m := &Mesh{
		label:        b.label,
		positions:    slices.Clone(b.positions),
		indices:      slices.Clone(b.indices),
		hasNormals:   len(b.normals) != 0,
		hasTexcoords: len(b.texcoords) != 0,
	}
	if m.hasNormals {
		m.normals = slices.Clone(b.normals)
	} else {
		m.generateNormals()
	}
	if m.hasTexcoords {
		m.texcoords = slices.Clone(b.texcoords)
	} else {
		m.texcoords = make([][2]float32, n)
	}
	m.computeBounds()
	return m, nil
}
