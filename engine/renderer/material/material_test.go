package material

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/renderer/shader"
)

func litSource() MaterialSource {
	return MaterialSource{
		Shader: shader.KeyTextureDiffuseLit,
		Properties: []PropertySource{
			{Name: "surface_color", Kind: "color"},
			{Name: "surface_shininess", Kind: "f32"},
			{Name: "surface_diffuse", Kind: "texture"},
		},
	}
}

func TestDefaultMaterial(t *testing.T) {
	lib := shader.NewLibrary()
	m := Default(lib)
	assert.Equal(t, shader.KeyDefault, m.Shader().Key())
	assert.True(t, m.HasProperty("surface_color"))
	assert.False(t, m.IsOverridden("surface_color"))

	c, ok := m.Color("surface_color")
	require.True(t, ok)
	assert.Equal(t, common.ColorWhite, c)

	require.NoError(t, m.SetColor("surface_color", common.RGB(1, 0, 0)))
	assert.True(t, m.IsOverridden("surface_color"))
	assert.Equal(t, [4]float32{1, 0, 0, 1}, m.Pack().Params[0])
}

func TestUnknownPropertyPolicy(t *testing.T) {
	m := Default(shader.NewLibrary())
	before := m.Pack()

	err := m.SetColor("nope", common.ColorBlack)
	assert.ErrorIs(t, err, ErrUnknownProperty)
	err = m.SetF32("nope", 1)
	assert.ErrorIs(t, err, ErrUnknownProperty)
	err = m.SetTexture("nope", handle.Texture(handle.NewID(1, 1)))
	assert.ErrorIs(t, err, ErrUnknownProperty)
	assert.ErrorIs(t, m.ClearOverride("nope"), ErrUnknownProperty)

	err = m.SetF32("surface_color", 2)
	assert.ErrorIs(t, err, ErrPropertyKind)
	err = m.SetTexture("surface_color", handle.Texture(handle.NewID(1, 1)))
	assert.ErrorIs(t, err, ErrPropertyKind)

	assert.Equal(t, before, m.Pack())
	assert.False(t, m.IsOverridden("surface_color"))
	assert.False(t, m.IsOverridden("nope"))
}

func TestBuild(t *testing.T) {
	lib := shader.NewLibrary()
	src := litSource()
	src.Name = "bricks"
	m, err := Build(lib, src)
	require.NoError(t, err)
	assert.Equal(t, "bricks", m.Label())

	names := make([]string, 0)
	for _, p := range m.Properties() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"surface_color", "surface_shininess", "surface_diffuse"}, names)

	// declared by the shader but not exposed by the source
	assert.False(t, m.HasProperty("specular_color"))
	assert.ErrorIs(t, m.SetColor("specular_color", common.ColorWhite), ErrUnknownProperty)

	shininess, ok := m.F32("surface_shininess")
	require.True(t, ok)
	assert.Equal(t, float32(8), shininess)

	_, ok = m.Texture("surface_diffuse")
	assert.False(t, ok)
	tex := handle.Texture(handle.NewID(4, 2))
	require.NoError(t, m.SetTexture("surface_diffuse", tex))
	got, ok := m.Texture("surface_diffuse")
	require.True(t, ok)
	assert.Equal(t, tex, got)
	assert.Equal(t, []handle.Texture{tex}, m.TextureBindings())

	// unexposed uniform slots keep the shader default
	specular, _ := m.Shader().Property("specular_color")
	assert.Equal(t, specular.Default, m.Pack().Params[specular.Slot])
}

func TestBuildErrors(t *testing.T) {
	lib := shader.NewLibrary()
	tests := []struct {
		name   string
		src    MaterialSource
		reason BuildErrorReason
		is     error
	}{
		{name: "no shader", src: MaterialSource{}, reason: ReasonMalformedSource},
		{name: "unknown shader", src: MaterialSource{Shader: "toon"}, reason: ReasonUnknownShader},
		{
			name:   "unknown property",
			src:    MaterialSource{Shader: shader.KeyDefault, Properties: []PropertySource{{Name: "roughness", Kind: "f32"}}},
			reason: ReasonUnknownProperty,
			is:     ErrUnknownProperty,
		},
		{
			name:   "kind mismatch",
			src:    MaterialSource{Shader: shader.KeyDefault, Properties: []PropertySource{{Name: "surface_color", Kind: "f32"}}},
			reason: ReasonKindMismatch,
			is:     ErrPropertyKind,
		},
		{
			name:   "bad kind",
			src:    MaterialSource{Shader: shader.KeyDefault, Properties: []PropertySource{{Name: "surface_color", Kind: "vec3"}}},
			reason: ReasonMalformedSource,
		},
		{
			name:   "missing name",
			src:    MaterialSource{Shader: shader.KeyDefault, Properties: []PropertySource{{Kind: "color"}}},
			reason: ReasonMalformedSource,
		},
		{
			name: "duplicate",
			src: MaterialSource{Shader: shader.KeyDefault, Properties: []PropertySource{
				{Name: "surface_color", Kind: "color"},
				{Name: "surface_color", Kind: "color"},
			}},
			reason: ReasonDuplicateProperty,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Build(lib, tt.src)
			assert.Nil(t, m)
			var buildErr *MaterialBuildError
			require.True(t, errors.As(err, &buildErr), "got %v", err)
			assert.Equal(t, tt.reason, buildErr.Reason)
			assert.NotEmpty(t, buildErr.Error())
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestClearOverride(t *testing.T) {
	m, err := Build(shader.NewLibrary(), litSource())
	require.NoError(t, err)
	require.NoError(t, m.SetF32("surface_shininess", 2))
	require.NoError(t, m.SetTexture("surface_diffuse", handle.Texture(handle.NewID(1, 1))))

	require.NoError(t, m.ClearOverride("surface_shininess"))
	require.NoError(t, m.ClearOverride("surface_diffuse"))
	v, _ := m.F32("surface_shininess")
	assert.Equal(t, float32(8), v)
	assert.False(t, m.IsOverridden("surface_shininess"))
	assert.Equal(t, []handle.Texture{0}, m.TextureBindings())
}

func TestClone(t *testing.T) {
	m := Default(shader.NewLibrary())
	require.NoError(t, m.SetColor("surface_color", common.RGB(0, 1, 0)))
	c := m.Clone()
	require.NoError(t, c.SetColor("surface_color", common.RGB(0, 0, 1)))

	orig, _ := m.Color("surface_color")
	cloned, _ := c.Color("surface_color")
	assert.Equal(t, common.RGB(0, 1, 0), orig)
	assert.Equal(t, common.RGB(0, 0, 1), cloned)
	assert.Same(t, m.Shader(), c.Shader())
}

func TestNewWithOptions(t *testing.T) {
	lib := shader.NewLibrary()
	lit, _ := lib.Shader(shader.KeyDiffuseLit)

	m, err := New(lit,
		WithLabel("shiny"),
		WithColor("surface_color", common.RGB(0.5, 0.5, 0.5)),
		WithF32("surface_shininess", 64),
	)
	require.NoError(t, err)
	assert.Equal(t, "shiny", m.Label())
	assert.True(t, m.HasProperty("specular_color"))
	v, _ := m.F32("surface_shininess")
	assert.Equal(t, float32(64), v)

	_, err = New(lit, WithTexture("surface_color", 0), WithF32("missing", 1))
	assert.ErrorIs(t, err, ErrPropertyKind)
}
