package mesh

// Triangle returns a single counter-clockwise triangle in the XY plane facing +Z, with
// vertices at (-0.5, -0.5), (0.5, -0.5) and (0, 0.5).
//
// Returns:
//   - *Mesh: the triangle mesh
func Triangle() *Mesh {
	return mustBuild(NewMeshBuilder().
		SetLabel("triangle").
		SetPositionData([][3]float32{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0, 0.5, 0}}).
		SetNormalData([][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}).
		SetTexcoordData([][2]float32{{0, 1}, {1, 1}, {0.5, 0}}).
		SetIndices([]uint32{0, 1, 2}))
}

// Quad returns a size x size square in the XY plane facing +Z, centered on the origin.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - *Mesh: the quad mesh
func Quad(size float32) *Mesh {
	h := size / 2
	return mustBuild(NewMeshBuilder().
		SetLabel("quad").
		SetPositionData([][3]float32{{-h, -h, 0}, {h, -h, 0}, {h, h, 0}, {-h, h, 0}}).
		SetNormalData([][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}).
		SetTexcoordData([][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}).
		SetIndices([]uint32{0, 1, 2, 0, 2, 3}))
}

// Cube returns an axis-aligned cube centered on the origin with flat per-face normals and a full
// 0..1 UV square on every face.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - *Mesh: the cube mesh (24 vertices, 36 indices)
func Cube(size float32) *Mesh {
	h := size / 2
	type face struct {
		positions [4][3]float32
		normal    [3]float32
	}
	faces := []face{
		{positions: [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}, normal: [3]float32{1, 0, 0}},
		{positions: [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}, normal: [3]float32{-1, 0, 0}},
		{positions: [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}, normal: [3]float32{0, 1, 0}},
		{positions: [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}, normal: [3]float32{0, -1, 0}},
		{positions: [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}, normal: [3]float32{0, 0, 1}},
		{positions: [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}, normal: [3]float32{0, 0, -1}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	positions := make([][3]float32, 0, 24)
	normals := make([][3]float32, 0, 24)
	texcoords := make([][2]float32, 0, 24)
	indices := make([]uint32, 0, 36)
	for fi, f := range faces {
		for vi, p := range f.positions {
			positions = append(positions, p)
			normals = append(normals, f.normal)
			texcoords = append(texcoords, uvs[vi])
		}
		base := uint32(fi * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mustBuild(NewMeshBuilder().
		SetLabel("cube").
		SetPositionData(positions).
		SetNormalData(normals).
		SetTexcoordData(texcoords).
		SetIndices(indices))
}

// mustBuild is only used for the hard-coded primitives above, whose data is known to be valid.
func mustBuild(b *MeshBuilder) *Mesh {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
