package mesh_instance

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/renderer/material"
)

type meshInstance struct {
	mesh      handle.Mesh
	anchor    handle.Anchor
	hasAnchor bool
	enabled   atomic.Bool

	// exactly one of owned / shared is in use
	owned    material.Material
	shared   handle.Material
	isShared bool
}

// MeshInstance defines the interface for a drawable placement of a GPU mesh: which mesh to
// draw, which anchor places it, and which material shades it. The material is either owned by
// the instance (it moves with the instance through remove and re-register) or shared through a
// material handle registered in the scene.
type MeshInstance interface {
	// Mesh returns the GPU mesh handle drawn by this instance.
	//
	// Returns:
	//   - handle.Mesh: the mesh handle
	Mesh() handle.Mesh

	// Anchor returns the anchor that places this instance.
	//
	// Returns:
	//   - handle.Anchor: the anchor handle
	//   - bool: false if no anchor has been set
	Anchor() (handle.Anchor, bool)

	// Enabled returns whether this instance is drawn.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Material returns the owned material.
	//
	// Returns:
	//   - material.Material: the owned material, or nil if the instance uses a shared material
	Material() material.Material

	// SharedMaterial returns the shared material handle.
	//
	// Returns:
	//   - handle.Material: the shared material handle
	//   - bool: false if the instance owns its material
	SharedMaterial() (handle.Material, bool)

	// SetMesh replaces the mesh drawn by this instance.
	//
	// Parameters:
	//   - m: the mesh handle
	SetMesh(m handle.Mesh)

	// SetAnchor attaches the instance to an anchor.
	//
	// Parameters:
	//   - a: the anchor handle
	SetAnchor(a handle.Anchor)

	// ClearAnchor detaches the instance from its anchor. An instance without an anchor is skipped.
	ClearAnchor()

	// SetEnabled sets whether the instance is drawn.
	//
	// Parameters:
	//   - enabled: true to draw the instance
	SetEnabled(enabled bool)

	// SetMaterial switches the instance to an owned material.
	//
	// Parameters:
	//   - m: the material to own
	SetMaterial(m material.Material)

	// SetSharedMaterial switches the instance to a shared material.
	//
	// Parameters:
	//   - h: the shared material handle
	SetSharedMaterial(h handle.Material)
}

var _ MeshInstance = &meshInstance{}

// WithOwnedMaterial creates a MeshInstance that owns its material.
//
// Parameters:
//   - mesh: the GPU mesh handle
//   - m: the material, owned by the instance from now on
//   - options: variadic list of MeshInstanceBuilderOption functions
//
// Returns:
//   - MeshInstance: the new instance
func WithOwnedMaterial(mesh handle.Mesh, m material.Material, options ...MeshInstanceBuilderOption) MeshInstance {
	if m == nil {
		panic("mesh_instance: owned material must not be nil")
	}
	mi := newMeshInstance(mesh)
	mi.owned = m
	for _, opt := range options {
		opt(mi)
	}
	return mi
}

// WithSharedMaterial creates a MeshInstance shaded by a material registered in the scene.
//
// Parameters:
//   - mesh: the GPU mesh handle
//   - h: the shared material handle
//   - options: variadic list of MeshInstanceBuilderOption functions
//
// Returns:
//   - MeshInstance: the new instance
func WithSharedMaterial(mesh handle.Mesh, h handle.Material, options ...MeshInstanceBuilderOption) MeshInstance {
	mi := newMeshInstance(mesh)
	mi.shared = h
	mi.isShared = true
	for _, opt := range options {
		opt(mi)
	}
	return mi
}

func newMeshInstance(mesh handle.Mesh) *meshInstance {
	mi := &meshInstance{mesh: mesh}
	mi.enabled.Store(true)
	return mi
}

func (mi *meshInstance) Mesh() handle.Mesh {
	return mi.mesh
}

func (mi *meshInstance) Anchor() (handle.Anchor, bool) {
	return mi.anchor, mi.hasAnchor
}

func (mi *meshInstance) Enabled() bool {
	return mi.enabled.Load()
}

func (mi *meshInstance) Material() material.Material {
	if mi.isShared {
		return nil
	}
	return mi.owned
}

func (mi *meshInstance) SharedMaterial() (handle.Material, bool) {
	return mi.shared, mi.isShared
}

func (mi *meshInstance) SetMesh(m handle.Mesh) {
	mi.mesh = m
}

func (mi *meshInstance) SetAnchor(a handle.Anchor) {
	mi.anchor = a
	mi.hasAnchor = true
}

func (mi *meshInstance) ClearAnchor() {
	mi.anchor = 0
	mi.hasAnchor = false
}

func (mi *meshInstance) SetEnabled(enabled bool) {
	mi.enabled.Store(enabled)
}

func (mi *meshInstance) SetMaterial(m material.Material) {
	if m == nil {
		panic("mesh_instance: owned material must not be nil")
	}
	mi.owned = m
	mi.shared = 0
	mi.isShared = false
}

func (mi *meshInstance) SetSharedMaterial(h handle.Material) {
	mi.owned = nil
	mi.shared = h
	mi.isShared = true
}
