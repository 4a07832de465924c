package handle

import "slices"

// Arena stores values keyed by a typed handle and remembers the order in which they were
// inserted. Values are heap-allocated per slot so pointers returned by Ptr stay valid until
// the entry is removed, even while other entries are inserted.
//
// Removal leaves a zero tombstone in the insertion order, which is compacted once tombstones
// outnumber live entries, so Remove does not scan the order.
//
// Arena is not safe for concurrent use.
type Arena[H ~uint64, V any] struct {
	alloc *Allocator
	slots []*V
	pos   []int // slot index -> position in order
	order []H
	live  int
}

// NewArena creates an empty Arena.
//
// Returns:
//   - *Arena[H, V]: the arena
func NewArena[H ~uint64, V any]() *Arena[H, V] {
	return &Arena[H, V]{
		alloc: NewAllocator(),
	}
}

// Insert stores v and returns the handle that now refers to it.
//
// Parameters:
//   - v: the value to store
//
// Returns:
//   - H: the new handle
func (a *Arena[H, V]) Insert(v V) H {
	id := a.alloc.Allocate()
	idx := int(id.Index())
	for len(a.slots) <= idx {
		a.slots = append(a.slots, nil)
		a.pos = append(a.pos, -1)
	}
	a.slots[idx] = &v
	h := H(id)
	a.pos[idx] = len(a.order)
	a.order = append(a.order, h)
	a.live++
	return h
}

// Get returns a copy of the value behind h.
//
// Parameters:
//   - h: the handle to resolve
//
// Returns:
//   - V: the value, or the zero value if h is not live
//   - bool: true if h is live
func (a *Arena[H, V]) Get(h H) (V, bool) {
	p, ok := a.Ptr(h)
	if !ok {
		var zero V
		return zero, false
	}
	return *p, true
}

// Ptr returns a pointer to the stored value so it can be mutated in place.
//
// Parameters:
//   - h: the handle to resolve
//
// Returns:
//   - *V: the stored value, or nil if h is not live
//   - bool: true if h is live
func (a *Arena[H, V]) Ptr(h H) (*V, bool) {
	id := ID(h)
	if !a.alloc.Alive(id) {
		return nil, false
	}
	return a.slots[id.Index()], true
}

// Remove deletes the value behind h and returns it. h and all of its copies become stale.
//
// Parameters:
//   - h: the handle to remove
//
// Returns:
//   - V: the removed value, or the zero value if h was not live
//   - bool: true if a value was removed
func (a *Arena[H, V]) Remove(h H) (V, bool) {
	id := ID(h)
	if !a.alloc.Alive(id) {
		var zero V
		return zero, false
	}
	idx := id.Index()
	v := *a.slots[idx]
	a.slots[idx] = nil
	a.alloc.Release(id)
	a.order[a.pos[idx]] = 0
	a.pos[idx] = -1
	a.live--

	for len(a.order) > 0 && a.order[len(a.order)-1] == 0 {
		a.order = a.order[:len(a.order)-1]
	}
	if len(a.order) > 2*a.live+8 {
		a.compact()
	}
	return v, true
}

// Contains reports whether h is live.
func (a *Arena[H, V]) Contains(h H) bool {
	return a.alloc.Alive(ID(h))
}

// Len returns the number of live entries.
func (a *Arena[H, V]) Len() int {
	return a.live
}

// Each calls fn for every live entry in insertion order until fn returns false.
// The set of entries visited is fixed when Each starts, so fn may insert or remove entries.
// Entries removed by fn before they are reached are skipped.
//
// Parameters:
//   - fn: the visitor
func (a *Arena[H, V]) Each(fn func(H, V) bool) {
	for _, h := range slices.Clone(a.order) {
		p, ok := a.Ptr(h)
		if !ok {
			continue
		}
		if !fn(h, *p) {
			return
		}
	}
}

// Handles returns the live handles in insertion order.
func (a *Arena[H, V]) Handles() []H {
	return slices.DeleteFunc(slices.Clone(a.order), func(h H) bool { return h == 0 })
}

// Last returns the most recently inserted live handle.
//
// Returns:
//   - H: the handle, or zero if the arena is empty
//   - bool: true if the arena is not empty
func (a *Arena[H, V]) Last() (H, bool) {
	if len(a.order) == 0 {
		var zero H
		return zero, false
	}
	return a.order[len(a.order)-1], true
}

// Clear removes every entry. Every handle issued so far becomes stale.
func (a *Arena[H, V]) Clear() {
	a.alloc.Reset()
	for i := range a.slots {
		a.slots[i] = nil
	}
	for i := range a.pos {
		a.pos[i] = -1
	}
	a.order = a.order[:0]
	a.live = 0
}

// compact drops tombstones from the order and renumbers positions.
func (a *Arena[H, V]) compact() {
	a.order = slices.DeleteFunc(a.order, func(h H) bool { return h == 0 })
	for i, h := range a.order {
		a.pos[ID(h).Index()] = i
	}
}
