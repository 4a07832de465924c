package mesh

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildValidationErrors(t *testing.T) {
	tri := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	tests := []struct {
		name    string
		builder *MeshBuilder
		kind    BuildMeshErrorKind
	}{
		{"no positions", NewMeshBuilder().SetIndices([]uint32{0, 1, 2}), ErrKindNoPositions},
		{"no indices", NewMeshBuilder().SetPositionData(tri), ErrKindNoIndices},
		{"partial triangle", NewMeshBuilder().SetPositionData(tri).SetIndices([]uint32{0, 1}), ErrKindIndexCount},
		{"normal mismatch", NewMeshBuilder().SetPositionData(tri).SetNormalData([][3]float32{{0, 0, 1}}).SetIndices([]uint32{0, 1, 2}), ErrKindNormalCount},
		{"texcoord mismatch", NewMeshBuilder().SetPositionData(tri).SetTexcoordData([][2]float32{{0, 0}}).SetIndices([]uint32{0, 1, 2}), ErrKindTexcoordCount},
		{"index out of range", NewMeshBuilder().SetPositionData(tri).SetIndices([]uint32{0, 1, 3}), ErrKindIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.builder.Build()
			assert.Nil(t, m)
			var be *BuildMeshError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.kind, be.Kind)
			assert.NotEmpty(t, err.Error())
		})
	}
}

func TestIndexOutOfRangeReportsPosition(t *testing.T) {
	_, err := NewMeshBuilder().
		SetPositionData([][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}).
		SetIndices([]uint32{0, 1, 2, 2, 1, 7}).
		Build()
	var be *BuildMeshError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 5, be.Position)
	assert.Equal(t, 7, be.Got)
	assert.Equal(t, 3, be.Want)
}

func TestBuildGeneratesNormals(t *testing.T) {
	m, err := NewMeshBuilder().
		SetPositionData([][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}).
		SetIndices([]uint32{0, 1, 2}).
		Build()
	require.NoError(t, err)
	assert.False(t, m.HasSuppliedNormals())
	assert.False(t, m.HasSuppliedTexcoords())
	for _, n := range m.Normals() {
		assert.InDelta(t, 1, n[2], 1e-6)
	}
	assert.Equal(t, [][2]float32{{0, 0}, {0, 0}, {0, 0}}, m.Texcoords())
}

func TestBuilderCopiesInput(t *testing.T) {
	pos := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	idx := []uint32{0, 1, 2}
	b := NewMeshBuilder().SetPositionData(pos).SetIndices(idx)
	pos[0] = [3]float32{9, 9, 9}
	idx[0] = 2
	m, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, [3]float32{0, 0, 0}, m.Positions()[0])
	assert.Equal(t, uint32(0), m.Indices()[0])
}

func TestVertexBytesLayout(t *testing.T) {
	m := Triangle()
	data := m.VertexBytes()
	require.Len(t, data, 3*VertexStride)

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(data[off:])) }
	// second vertex
	base := VertexStride
	assert.Equal(t, float32(0.5), f(base+PositionOffset))
	assert.Equal(t, float32(-0.5), f(base+PositionOffset+4))
	assert.Equal(t, float32(1), f(base+NormalOffset+8))
	assert.Equal(t, float32(1), f(base+TexCoordOffset))

	idx := m.IndexBytes()
	require.Len(t, idx, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(idx[8:]))
}

func TestGPUVertexSize(t *testing.T) {
	v := GPUVertex{}
	assert.Equal(t, VertexStride, v.Size())
	assert.Len(t, v.Marshal(), VertexStride)
}

func TestBounds(t *testing.T) {
	c := Cube(2)
	center, radius := c.Bounds()
	assert.Equal(t, [3]float32{}, center)
	assert.InDelta(t, math.Sqrt(3), radius, 1e-5)
}

func TestPrimitives(t *testing.T) {
	assert.Equal(t, 3, Triangle().IndexCount())
	assert.Equal(t, 6, Quad(1).IndexCount())
	c := Cube(1)
	assert.Equal(t, 24, c.VertexCount())
	assert.Equal(t, 36, c.IndexCount())
	assert.Equal(t, "cube", c.Label())
}

func TestCubeFacesWindCounterClockwise(t *testing.T) {
	c := Cube(1)
	pos, nrm, idx := c.Positions(), c.Normals(), c.Indices()
	for t0 := 0; t0 < len(idx); t0 += 3 {
		p0, p1, p2 := pos[idx[t0]], pos[idx[t0+1]], pos[idx[t0+2]]
		e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		cross := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		n := nrm[idx[t0]]
		dot := cross[0]*n[0] + cross[1]*n[1] + cross[2]*n[2]
		assert.Greater(t, dot, float32(0), "triangle %d", t0/3)
	}
}
