// Package handle provides the opaque, typed tokens the engine hands out for every registered
// resource, together with the generational allocator that backs them.
//
// An ID encodes a 32-bit slot index in the lower bits and a 32-bit generation in the upper bits.
// Releasing a slot bumps its generation, so any copy of the old ID is detected as stale instead of
// silently resolving to whatever is registered in the reused slot. Generations start at 1, which
// means the zero value of every handle type is never live.
package handle

import "fmt"

// ID is the untyped generational identifier shared by every handle category.
type ID uint64

// NewID packs a slot index and generation into an ID.
//
// Parameters:
//   - index: the slot index
//   - generation: the slot generation at allocation time
//
// Returns:
//   - ID: the packed identifier
func NewID(index uint32, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(index))
}

func (id ID) Index() uint32      { return uint32(id) }
func (id ID) Generation() uint32 { return uint32(id >> 32) }
func (id ID) IsZero() bool       { return id == 0 }

func (id ID) String() string {
	return fmt.Sprintf("%d@%d", id.Index(), id.Generation())
}

// Typed handles. Each category is a distinct type so a mesh handle can never be passed where an
// anchor handle is expected.
type (
	// Mesh identifies GPU-resident geometry registered with the renderer.
	Mesh ID
	// Texture identifies a GPU-resident 2D texture registered with the renderer.
	Texture ID
	// Anchor identifies a spatial transform registered with a scene.
	Anchor ID
	// MeshInstance identifies a drawable (mesh, material, anchor) triple registered with a scene.
	MeshInstance ID
	// Camera identifies a camera registered with a scene.
	Camera ID
	// Light identifies a light registered with a scene.
	Light ID
	// Material identifies a material shared between several mesh instances.
	Material ID
)

func (h Mesh) String() string         { return "mesh:" + ID(h).String() }
func (h Texture) String() string      { return "texture:" + ID(h).String() }
func (h Anchor) String() string       { return "anchor:" + ID(h).String() }
func (h MeshInstance) String() string { return "mesh_instance:" + ID(h).String() }
func (h Camera) String() string       { return "camera:" + ID(h).String() }
func (h Light) String() string        { return "light:" + ID(h).String() }
func (h Material) String() string     { return "material:" + ID(h).String() }
