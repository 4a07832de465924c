package handle

// Allocator hands out generational IDs and recycles released slots through a free list.
// It is not safe for concurrent use; owners guard it with their own lock.
type Allocator struct {
	generations []uint32
	alive       []bool
	freeList    []uint32
	live        int
}

// NewAllocator creates an empty Allocator.
//
// Returns:
//   - *Allocator: the allocator
func NewAllocator() *Allocator {
	return &Allocator{
		generations: make([]uint32, 0, 64),
		alive:       make([]bool, 0, 64),
		freeList:    make([]uint32, 0, 16),
	}
}

// Allocate returns a fresh live ID. Allocation never fails.
//
// Returns:
//   - ID: the new identifier
func (a *Allocator) Allocate() ID {
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		a.alive[idx] = true
		a.live++
		return NewID(idx, a.generations[idx])
	}
	idx := uint32(len(a.generations))
	a.generations = append(a.generations, 1)
	a.alive = append(a.alive, true)
	a.live++
	return NewID(idx, 1)
}

// Release retires an ID. The slot's generation is bumped so copies of id stop resolving.
//
// Parameters:
//   - id: the identifier to release
//
// Returns:
//   - bool: true if id was live, false if it was stale, zero or never allocated
func (a *Allocator) Release(id ID) bool {
	if !a.Alive(id) {
		return false
	}
	idx := id.Index()
	a.alive[idx] = false
	a.generations[idx]++
	if a.generations[idx] == 0 {
		// wrapped; skip generation 0 so the zero ID stays dead
		a.generations[idx] = 1
	}
	a.freeList = append(a.freeList, idx)
	a.live--
	return true
}

// Alive reports whether id was allocated and has not been released since.
//
// Parameters:
//   - id: the identifier to check
//
// Returns:
//   - bool: true if id is live
func (a *Allocator) Alive(id ID) bool {
	idx := id.Index()
	if id.IsZero() || int(idx) >= len(a.generations) {
		return false
	}
	return a.alive[idx] && a.generations[idx] == id.Generation()
}

// Len returns the number of live IDs.
func (a *Allocator) Len() int {
	return a.live
}

// Reset releases every ID at once. Generations are kept so IDs issued before the reset stay stale.
func (a *Allocator) Reset() {
	a.freeList = a.freeList[:0]
	for i := len(a.generations) - 1; i >= 0; i-- {
		if a.alive[i] {
			a.alive[i] = false
			a.generations[i]++
			if a.generations[i] == 0 {
				a.generations[i] = 1
			}
		}
		a.freeList = append(a.freeList, uint32(i))
	}
	a.live = 0
}
