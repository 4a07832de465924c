package anchor

import (
	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
)

// store is the implementation of the Store interface.
type store struct {
	anchors *handle.Arena[handle.Anchor, Anchor]
}

// Store owns every registered Anchor and resolves world transforms.
// It performs no locking of its own; the Scene serializes writers and only reads
// from it concurrently while no writer is active.
type Store interface {
	// Register adds an anchor and returns its handle.
	//
	// Parameters:
	//   - a: the anchor value to store
	//
	// Returns:
	//   - handle.Anchor: the handle referring to the stored anchor
	Register(a Anchor) handle.Anchor

	// Unregister removes an anchor. Children of the removed anchor become unresolved.
	//
	// Parameters:
	//   - h: the anchor handle
	//
	// Returns:
	//   - Anchor: the removed anchor value
	//   - bool: true if h was live
	Unregister(h handle.Anchor) (Anchor, bool)

	// Get returns a copy of the anchor behind h.
	//
	// Parameters:
	//   - h: the anchor handle
	//
	// Returns:
	//   - Anchor: the anchor value
	//   - bool: true if h is live
	Get(h handle.Anchor) (Anchor, bool)

	// GetMut returns the stored anchor for in-place mutation.
	//
	// Parameters:
	//   - h: the anchor handle
	//
	// Returns:
	//   - *Anchor: the stored anchor, or nil if h is not live
	//   - bool: true if h is live
	GetMut(h handle.Anchor) (*Anchor, bool)

	// WorldTransform resolves the world transform of an anchor by walking its parent chain.
	// A stale handle, a missing parent or a parent cycle leaves the anchor unresolved.
	//
	// Parameters:
	//   - h: the anchor handle
	//
	// Returns:
	//   - [16]float32: the column-major world transform
	//   - bool: true if the transform could be resolved
	WorldTransform(h handle.Anchor) ([16]float32, bool)

	// Contains reports whether h is live.
	Contains(h handle.Anchor) bool

	// Len returns the number of registered anchors.
	Len() int

	// Clear removes every anchor.
	Clear()
}

var _ Store = &store{}

// NewStore creates an empty anchor Store.
//
// Returns:
//   - Store: the store
func NewStore() Store {
	return &store{
		anchors: handle.NewArena[handle.Anchor, Anchor](),
	}
}

func (s *store) Register(a Anchor) handle.Anchor {
	return s.anchors.Insert(a)
}

func (s *store) Unregister(h handle.Anchor) (Anchor, bool) {
	return s.anchors.Remove(h)
}

func (s *store) Get(h handle.Anchor) (Anchor, bool) {
	return s.anchors.Get(h)
}

func (s *store) GetMut(h handle.Anchor) (*Anchor, bool) {
	return s.anchors.Ptr(h)
}

func (s *store) Contains(h handle.Anchor) bool {
	return s.anchors.Contains(h)
}

func (s *store) Len() int {
	return s.anchors.Len()
}

func (s *store) Clear() {
	s.anchors.Clear()
}

func (s *store) WorldTransform(h handle.Anchor) ([16]float32, bool) {
	a, ok := s.anchors.Ptr(h)
	if !ok {
		return [16]float32{}, false
	}
	world := a.LocalTransform()

	// A chain longer than the number of anchors must revisit one, i.e. it is a cycle.
	limit := s.anchors.Len()
	cur := a
	for depth := 0; cur.hasParent; depth++ {
		if depth >= limit {
			return [16]float32{}, false
		}
		parent, ok := s.anchors.Ptr(cur.parent)
		if !ok {
			return [16]float32{}, false
		}
		local := parent.LocalTransform()
		common.Mul4(world[:], local[:], world[:])
		cur = parent
	}
	return world, true
}
