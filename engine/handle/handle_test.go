package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDPacking(t *testing.T) {
	id := NewID(7, 3)
	assert.Equal(t, uint32(7), id.Index())
	assert.Equal(t, uint32(3), id.Generation())
	assert.False(t, id.IsZero())
	assert.True(t, ID(0).IsZero())
	assert.Equal(t, "7@3", id.String())
}

func TestAllocatorZeroNeverLive(t *testing.T) {
	a := NewAllocator()
	assert.False(t, a.Alive(0))
	id := a.Allocate()
	assert.False(t, id.IsZero())
	assert.False(t, a.Alive(0))
	assert.False(t, a.Release(0))
}

func TestAllocatorReuseBumpsGeneration(t *testing.T) {
	a := NewAllocator()
	first := a.Allocate()
	require.True(t, a.Release(first))
	assert.False(t, a.Alive(first))

	second := a.Allocate()
	assert.Equal(t, first.Index(), second.Index())
	assert.NotEqual(t, first, second)
	assert.True(t, a.Alive(second))
	assert.False(t, a.Alive(first))
}

func TestAllocatorDoubleRelease(t *testing.T) {
	a := NewAllocator()
	id := a.Allocate()
	assert.True(t, a.Release(id))
	assert.False(t, a.Release(id))
	assert.Equal(t, 0, a.Len())
}

func TestAllocatorUnknownIndex(t *testing.T) {
	a := NewAllocator()
	assert.False(t, a.Alive(NewID(42, 1)))
	assert.False(t, a.Release(NewID(42, 1)))
}

func TestAllocatorReset(t *testing.T) {
	a := NewAllocator()
	ids := []ID{a.Allocate(), a.Allocate(), a.Allocate()}
	a.Reset()
	assert.Equal(t, 0, a.Len())
	for _, id := range ids {
		assert.False(t, a.Alive(id))
	}
	next := a.Allocate()
	assert.True(t, a.Alive(next))
	assert.NotContains(t, ids, next)
}

func TestArenaInsertGetRemove(t *testing.T) {
	a := NewArena[Mesh, string]()
	h := a.Insert("cube")
	v, ok := a.Get(h)
	require.True(t, ok)
	assert.Equal(t, "cube", v)

	removed, ok := a.Remove(h)
	require.True(t, ok)
	assert.Equal(t, "cube", removed)

	_, ok = a.Get(h)
	assert.False(t, ok)
	_, ok = a.Remove(h)
	assert.False(t, ok)
}

func TestArenaInvalidLookupsAreIdempotent(t *testing.T) {
	a := NewArena[Anchor, int]()
	a.Insert(1)
	bogus := Anchor(NewID(99, 5))
	for i := 0; i < 3; i++ {
		v, ok := a.Get(bogus)
		assert.False(t, ok)
		assert.Zero(t, v)
		p, ok := a.Ptr(bogus)
		assert.False(t, ok)
		assert.Nil(t, p)
	}
	assert.Equal(t, 1, a.Len())
}

func TestArenaPtrSurvivesGrowth(t *testing.T) {
	a := NewArena[Light, int]()
	h := a.Insert(1)
	p, ok := a.Ptr(h)
	require.True(t, ok)
	for i := 0; i < 100; i++ {
		a.Insert(i)
	}
	*p = 42
	v, _ := a.Get(h)
	assert.Equal(t, 42, v)
}

func TestArenaEachInsertionOrder(t *testing.T) {
	a := NewArena[MeshInstance, string]()
	ha := a.Insert("a")
	a.Insert("b")
	a.Insert("c")
	a.Remove(ha)
	a.Insert("d")

	var got []string
	a.Each(func(_ MeshInstance, v string) bool {
		got = append(got, v)
		return true
	})
	assert.Equal(t, []string{"b", "c", "d"}, got)

	last, ok := a.Last()
	require.True(t, ok)
	v, _ := a.Get(last)
	assert.Equal(t, "d", v)
}

func TestArenaEachStopsEarly(t *testing.T) {
	a := NewArena[Camera, int]()
	for i := 0; i < 5; i++ {
		a.Insert(i)
	}
	count := 0
	a.Each(func(_ Camera, _ int) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestArenaEachToleratesRemoval(t *testing.T) {
	a := NewArena[Material, int]()
	h1 := a.Insert(1)
	h2 := a.Insert(2)
	var seen []int
	a.Each(func(h Material, v int) bool {
		seen = append(seen, v)
		if h == h1 {
			a.Remove(h2)
		}
		return true
	})
	assert.Equal(t, []int{1}, seen)
}

func TestArenaClear(t *testing.T) {
	a := NewArena[Texture, int]()
	h := a.Insert(1)
	a.Clear()
	assert.Equal(t, 0, a.Len())
	assert.False(t, a.Contains(h))
	_, ok := a.Last()
	assert.False(t, ok)
}

func TestArenaRemovalKeepsOrderAcrossCompaction(t *testing.T) {
	a := NewArena[MeshInstance, int]()
	handles := make([]MeshInstance, 64)
	for i := range handles {
		handles[i] = a.Insert(i)
	}

	// Removing most entries from the front forces tombstones to be compacted.
	for i := 0; i < 60; i++ {
		if i%4 == 3 {
			continue
		}
		_, ok := a.Remove(handles[i])
		require.True(t, ok)
	}
	_, ok := a.Remove(handles[0])
	assert.False(t, ok)

	var want []int
	for i := range 64 {
		if i >= 60 || i%4 == 3 {
			want = append(want, i)
		}
	}
	var got []int
	a.Each(func(_ MeshInstance, v int) bool {
		got = append(got, v)
		return true
	})
	assert.Equal(t, want, got)
	assert.Equal(t, len(want), a.Len())
	assert.Len(t, a.Handles(), len(want))

	last, ok := a.Last()
	require.True(t, ok)
	assert.Equal(t, handles[63], last)

	// Removing the tail exposes the previous live entry as Last.
	a.Remove(handles[63])
	a.Remove(handles[62])
	last, ok = a.Last()
	require.True(t, ok)
	assert.Equal(t, handles[61], last)

	h := a.Insert(100)
	v, ok := a.Get(h)
	require.True(t, ok)
	assert.Equal(t, 100, v)
	last, _ = a.Last()
	assert.Equal(t, h, last)
	assert.Equal(t, len(want)-1, a.Len())
	for _, stale := range handles[:3] {
		assert.False(t, a.Contains(stale))
	}
}
