// Package mesh holds CPU-side triangle geometry and packs it into the interleaved layout the
// renderer uploads. A Mesh is immutable once built; register it with the renderer to obtain a
// handle.Mesh that any number of mesh instances can share.
package mesh

import (
	"encoding/binary"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/polygon/common"
)

// Mesh is validated triangle-list geometry. Normals are generated from the triangles when the
// builder was not given any, and texcoords default to (0, 0).
type Mesh struct {
	label        string
	positions    [][3]float32
	normals      [][3]float32
	texcoords    [][2]float32
	indices      []uint32
	hasNormals   bool
	hasTexcoords bool
	center       [3]float32
	radius       float32
}

func (m *Mesh) Label() string              { return m.label }
func (m *Mesh) VertexCount() int           { return len(m.positions) }
func (m *Mesh) IndexCount() int            { return len(m.indices) }
func (m *Mesh) Positions() [][3]float32    { return m.positions }
func (m *Mesh) Normals() [][3]float32      { return m.normals }
func (m *Mesh) Texcoords() [][2]float32    { return m.texcoords }
func (m *Mesh) Indices() []uint32          { return m.indices }
func (m *Mesh) HasSuppliedNormals() bool   { return m.hasNormals }
func (m *Mesh) HasSuppliedTexcoords() bool { return m.hasTexcoords }

// Bounds returns a model-space bounding sphere enclosing every vertex.
//
// Returns:
//   - [3]float32: the sphere center (the midpoint of the axis-aligned bounds)
//   - float32: the sphere radius
func (m *Mesh) Bounds() ([3]float32, float32) {
	return m.center, m.radius
}

// Vertex returns the packed GPU vertex at index i.
func (m *Mesh) Vertex(i int) GPUVertex {
	return GPUVertex{
		Position: m.positions[i],
		Normal:   m.normals[i],
		TexCoord: m.texcoords[i],
	}
}

// VertexBytes returns the interleaved vertex buffer contents (VertexStride bytes per vertex).
//
// Returns:
//   - []byte: the little-endian vertex data
func (m *Mesh) VertexBytes() []byte {
	buf := make([]byte, len(m.positions)*VertexStride)
	for i := range m.positions {
		v := m.Vertex(i)
		v.marshalInto(buf[i*VertexStride:])
	}
	return buf
}

// IndexBytes returns the uint32 index buffer contents.
//
// Returns:
//   - []byte: the little-endian index data
func (m *Mesh) IndexBytes() []byte {
	buf := make([]byte, len(m.indices)*4)
	for i, idx := range m.indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// computeBounds fills the bounding sphere from the axis-aligned extents of the positions.
func (m *Mesh) computeBounds() {
	lo, hi := m.positions[0], m.positions[0]
	for _, p := range m.positions[1:] {
		for c := 0; c < 3; c++ {
			lo[c] = min(lo[c], p[c])
			hi[c] = max(hi[c], p[c])
		}
	}
	m.center = [3]float32{(lo[0] + hi[0]) / 2, (lo[1] + hi[1]) / 2, (lo[2] + hi[2]) / 2}
	var r2 float32
	for _, p := range m.positions {
		dx, dy, dz := p[0]-m.center[0], p[1]-m.center[1], p[2]-m.center[2]
		r2 = max(r2, dx*dx+dy*dy+dz*dz)
	}
	m.radius = math32.Sqrt(r2)
}

// generateNormals computes smooth per-vertex normals by accumulating the area-weighted face
// normal of every counter-clockwise triangle touching the vertex.
func (m *Mesh) generateNormals() {
	acc := make([][3]float32, len(m.positions))
	for t := 0; t+2 < len(m.indices); t += 3 {
		i0, i1, i2 := m.indices[t], m.indices[t+1], m.indices[t+2]
		p0, p1, p2 := m.positions[i0], m.positions[i1], m.positions[i2]
		e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		n := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		for _, i := range [3]uint32{i0, i1, i2} {
			acc[i][0] += n[0]
			acc[i][1] += n[1]
			acc[i][2] += n[2]
		}
	}
	m.normals = make([][3]float32, len(m.positions))
	for i, n := range acc {
		nn := common.Normalize3(n)
		if nn == ([3]float32{}) {
			nn = [3]float32{0, 0, 1}
		}
		m.normals[i] = nn
	}
}
