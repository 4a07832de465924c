package mesh_instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/renderer/material"
	"github.com/Carmen-Shannon/polygon/engine/renderer/shader"
)

func TestOwnedMaterial(t *testing.T) {
	m := material.Default(shader.NewLibrary())
	mesh := handle.Mesh(handle.NewID(0, 1))
	mi := WithOwnedMaterial(mesh, m)

	assert.Equal(t, mesh, mi.Mesh())
	assert.Same(t, m, mi.Material())
	_, shared := mi.SharedMaterial()
	assert.False(t, shared)
	_, ok := mi.Anchor()
	assert.False(t, ok)
	assert.True(t, mi.Enabled())
}

func TestSharedMaterial(t *testing.T) {
	h := handle.Material(handle.NewID(2, 1))
	a := handle.Anchor(handle.NewID(5, 3))
	mi := WithSharedMaterial(handle.Mesh(handle.NewID(0, 1)), h, WithAnchor(a), WithEnabled(false))

	assert.Nil(t, mi.Material())
	got, ok := mi.SharedMaterial()
	require.True(t, ok)
	assert.Equal(t, h, got)
	anchor, ok := mi.Anchor()
	require.True(t, ok)
	assert.Equal(t, a, anchor)
	assert.False(t, mi.Enabled())
}

func TestSwitchMaterialVariant(t *testing.T) {
	m := material.Default(shader.NewLibrary())
	mi := WithSharedMaterial(handle.Mesh(handle.NewID(0, 1)), handle.Material(handle.NewID(1, 1)))

	mi.SetMaterial(m)
	assert.Same(t, m, mi.Material())
	_, ok := mi.SharedMaterial()
	assert.False(t, ok)

	mi.SetSharedMaterial(handle.Material(handle.NewID(3, 1)))
	assert.Nil(t, mi.Material())
	h, ok := mi.SharedMaterial()
	require.True(t, ok)
	assert.Equal(t, uint32(3), handle.ID(h).Index())
}

func TestAnchorAndMesh(t *testing.T) {
	mi := WithOwnedMaterial(handle.Mesh(handle.NewID(0, 1)), material.Default(shader.NewLibrary()))
	a := handle.Anchor(handle.NewID(1, 1))
	mi.SetAnchor(a)
	got, ok := mi.Anchor()
	require.True(t, ok)
	assert.Equal(t, a, got)
	mi.ClearAnchor()
	_, ok = mi.Anchor()
	assert.False(t, ok)

	mi.SetMesh(handle.Mesh(handle.NewID(9, 1)))
	assert.Equal(t, uint32(9), handle.ID(mi.Mesh()).Index())
}

func TestNilOwnedMaterialPanics(t *testing.T) {
	assert.Panics(t, func() { WithOwnedMaterial(0, nil) })
}
