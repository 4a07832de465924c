package model

import (
	"fmt"
)

// Model is a static 3D model imported from an external format. It is plain CPU-side data:
// nothing is uploaded until the model is spawned into a scene.
type Model struct {
	// Name is the model identifier.
	Name string

	// Meshes contains every mesh referenced by the nodes.
	Meshes []Mesh

	// Materials are the materials the primitives index into.
	Materials []MaterialData

	// Nodes is the transform hierarchy, parents before children.
	Nodes []Node
}

// PrimitiveCount returns the number of primitives across all meshes.
func (m *Model) PrimitiveCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += len(mesh.Primitives)
	}
	return n
}

// InstanceCount returns the number of mesh instances spawning the model creates.
func (m *Model) InstanceCount() int {
	n := 0
	for _, node := range m.Nodes {
		if node.MeshIndex >= 0 && node.MeshIndex < len(m.Meshes) {
			n += len(m.Meshes[node.MeshIndex].Primitives)
		}
	}
	return n
}

// Validate checks that every index in the model refers to an existing element and that
// parents precede their children.
//
// Returns:
//   - error: the first broken reference found
func (m *Model) Validate() error {
	for i, mesh := range m.Meshes {
		for j, prim := range mesh.Primitives {
			if prim.Mesh == nil {
				return fmt.Errorf("model %q: mesh %d primitive %d has no mesh data", m.Name, i, j)
			}
			if prim.MaterialIndex < -1 || prim.MaterialIndex >= len(m.Materials) {
				return fmt.Errorf("model %q: mesh %d primitive %d: material index %d out of range", m.Name, i, j, prim.MaterialIndex)
			}
		}
	}
	for i, node := range m.Nodes {
		if node.Parent < -1 || node.Parent >= i {
			return fmt.Errorf("model %q: node %d: parent %d must precede it", m.Name, i, node.Parent)
		}
		if node.MeshIndex < -1 || node.MeshIndex >= len(m.Meshes) {
			return fmt.Errorf("model %q: node %d: mesh index %d out of range", m.Name, i, node.MeshIndex)
		}
	}
	return nil
}
