package model

import (
	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/mesh"
	"github.com/Carmen-Shannon/polygon/engine/texture"
)

// Transform is a node's local translation, rotation and scale.
type Transform struct {
	// Translation is the position offset.
	Translation [3]float32

	// Rotation is the orientation.
	Rotation common.Quat

	// Scale is the scale factor along each axis.
	Scale [3]float32
}

// IdentityTransform returns a transform with no translation, no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{Rotation: common.QuatIdentity(), Scale: [3]float32{1, 1, 1}}
}

// Primitive is one drawable piece of a mesh with a single material.
type Primitive struct {
	// Mesh is the validated vertex and index data.
	Mesh *mesh.Mesh

	// MaterialIndex indexes Model.Materials, or is -1 when the primitive has no material.
	MaterialIndex int
}

// Mesh groups the primitives a node draws.
type Mesh struct {
	Name       string
	Primitives []Primitive
}

// MaterialData is the part of an imported material the built-in shaders can express.
type MaterialData struct {
	Name string

	// BaseColor multiplies the base color texture, or is the surface color when there is none.
	BaseColor common.Color

	// BaseColorTexture is the decoded diffuse image, or nil.
	BaseColorTexture *texture.Texture2D

	// Shininess is the specular exponent derived from the material roughness.
	Shininess float32
}

// Node is one element of the imported transform hierarchy.
type Node struct {
	Name      string
	Transform Transform

	// Parent indexes Model.Nodes, or is -1 for a root node. Parents always precede their children.
	Parent int

	// MeshIndex indexes Model.Meshes, or is -1 for a node that draws nothing.
	MeshIndex int
}
