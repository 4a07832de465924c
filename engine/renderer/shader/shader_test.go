package shader

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalSource = `//@polygon:include standard_vertex
//@polygon:property color tint 0.5 0.25 1
//@polygon:property f32 gloss 4
//@polygon:property texture albedo
//@polygon:property texture mask

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return prop_tint();
}
`

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    *Annotation
		wantErr bool
	}{
		{name: "plain code", line: "let x = 1.0;"},
		{name: "plain comment", line: "// just a comment"},
		{name: "prefix outside comment", line: `let s = "@polygon:include camera";`},
		{
			name: "include",
			line: "  //@polygon:include camera",
			want: &Annotation{Type: annotationTypeInclude, Args: []AnnotationArg{"camera"}, Line: 1},
		},
		{
			name: "color property",
			line: "//@polygon:property color surface_color 1 0 0",
			want: &Annotation{Type: AnnotationTypeProperty, Args: []AnnotationArg{"color", "surface_color", "1", "0", "0"}, Line: 1},
		},
		{
			name: "texture property",
			line: "//@polygon:property TEXTURE diffuse",
			want: &Annotation{Type: AnnotationTypeProperty, Args: []AnnotationArg{"texture", "diffuse"}, Line: 1},
		},
		{name: "empty", line: "//@polygon:", wantErr: true},
		{name: "unknown type", line: "//@polygon:group 0 0", wantErr: true},
		{name: "unknown include", line: "//@polygon:include shadow", wantErr: true},
		{name: "include arity", line: "//@polygon:include camera light", wantErr: true},
		{name: "unknown kind", line: "//@polygon:property vec2 uv", wantErr: true},
		{name: "missing name", line: "//@polygon:property color", wantErr: true},
		{name: "bad name", line: "//@polygon:property color 9lives", wantErr: true},
		{name: "color arity", line: "//@polygon:property color c 1 1", wantErr: true},
		{name: "f32 arity", line: "//@polygon:property f32 s 1 2", wantErr: true},
		{name: "texture default", line: "//@polygon:property texture t 1", wantErr: true},
		{name: "bad number", line: "//@polygon:property f32 s abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnnotation(tt.line, 1)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessAssignsSlotsAndBindings(t *testing.T) {
	s, err := NewShader("minimal", minimalSource)
	require.NoError(t, err)

	props := s.Properties()
	require.Len(t, props, 4)

	tint, ok := s.Property("tint")
	require.True(t, ok)
	assert.Equal(t, PropertyKindColor, tint.Kind)
	assert.Equal(t, 0, tint.Slot)
	assert.Equal(t, -1, tint.TextureIndex)
	assert.Equal(t, [4]float32{0.5, 0.25, 1, 1}, tint.Default)

	gloss, _ := s.Property("gloss")
	assert.Equal(t, 1, gloss.Slot)
	assert.Equal(t, [4]float32{4, 0, 0, 0}, gloss.Default)

	mask, _ := s.Property("mask")
	assert.Equal(t, -1, mask.Slot)
	assert.Equal(t, 1, mask.TextureIndex)
	assert.Equal(t, uint32(2), mask.TextureBinding())
	assert.Equal(t, uint32(3), mask.SamplerBinding())

	_, ok = s.Property("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, s.TextureCount())
	assert.Equal(t, 2, s.UniformSlots())
	assert.Equal(t, "vs_main", s.VertexEntryPoint())
	assert.Equal(t, "fs_main", s.FragmentEntryPoint())

	src := s.Source()
	assert.Contains(t, src, "fn prop_tint() -> vec4<f32> { return material.params[0]; }")
	assert.Contains(t, src, "fn prop_gloss() -> f32 { return material.params[1].x; }")
	assert.Contains(t, src, "@group(2) @binding(2) var tex_mask: texture_2d<f32>;")
	assert.Contains(t, src, "@group(2) @binding(3) var samp_mask: sampler;")
	assert.NotContains(t, src, "@polygon:")
	assert.Equal(t, 1, strings.Count(src, "struct CameraUniform"))
	assert.Equal(t, 1, strings.Count(src, "struct VertexInput"))

	layouts := s.BindGroupLayoutDescriptors()
	require.Len(t, layouts, 3)
	assert.Len(t, layouts[GroupFrame].Entries, 2)
	assert.Len(t, layouts[GroupDraw].Entries, 2)
	assert.Len(t, layouts[GroupTextures].Entries, 4)
	assert.Equal(t, uint64(192), layouts[GroupDraw].Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint64(256), layouts[GroupDraw].Entries[1].Buffer.MinBindingSize)

	assert.Equal(t, "minimal", s.Module().Label)
}

func TestPropertiesReturnsCopy(t *testing.T) {
	s, err := NewShader("minimal", minimalSource)
	require.NoError(t, err)
	props := s.Properties()
	props[0].Name = "changed"
	_, ok := s.Property("tint")
	assert.True(t, ok)
	assert.Equal(t, "tint", s.Properties()[0].Name)
}

func TestNewShaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		source string
	}{
		{name: "empty key", key: "", source: minimalSource},
		{name: "no vertex", key: "s", source: "@fragment fn fs() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }"},
		{name: "no fragment", key: "s", source: "//@polygon:include standard_vertex"},
		{name: "bad annotation", key: "s", source: "//@polygon:property sphere x\n" + minimalSource},
		{name: "duplicate property", key: "s", source: "//@polygon:property f32 tint\n" + minimalSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShader(tt.key, tt.source)
			assert.Error(t, err)
		})
	}
}

func TestTooManySlots(t *testing.T) {
	var b strings.Builder
	for i := range MaxMaterialSlots + 1 {
		b.WriteString("//@polygon:property f32 p")
		b.WriteString(string(rune('a' + i)))
		b.WriteString("\n")
	}
	b.WriteString(minimalSource)
	_, err := NewShader("s", b.String())
	assert.ErrorContains(t, err, "uniform slots")
}

func TestDefaultParams(t *testing.T) {
	s, err := NewShader("minimal", minimalSource)
	require.NoError(t, err)
	params := s.DefaultParams()
	assert.Equal(t, [4]float32{0.5, 0.25, 1, 1}, params.Params[0])
	assert.Equal(t, float32(4), params.Params[1][0])

	assert.Equal(t, 256, params.Size())
	buf := params.Marshal()
	require.Len(t, buf, 256)
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])))
	assert.Equal(t, float32(4), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])))
}

func TestNewShaderFromFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "custom_tint.wgsl")
	require.NoError(t, os.WriteFile(p, []byte(minimalSource), 0o644))

	s, err := NewShaderFromFile(p)
	require.NoError(t, err)
	assert.Equal(t, "custom_tint", s.Key())

	_, err = NewShaderFromFile(filepath.Join(dir, "missing.wgsl"))
	assert.Error(t, err)
}

func TestLibraryBuiltins(t *testing.T) {
	lib := NewLibrary()
	assert.Equal(t, []string{KeyDefault, KeyDiffuseFlat, KeyDiffuseLit, KeyTextureDiffuseLit}, lib.Keys())

	def := lib.Default()
	require.NotNil(t, def)
	assert.Equal(t, KeyDefault, def.Key())
	p, ok := def.Property("surface_color")
	require.True(t, ok)
	assert.Equal(t, PropertyKindColor, p.Kind)
	assert.Len(t, def.BindGroupLayoutDescriptors(), 2)

	lit, ok := lib.Shader(KeyDiffuseLit)
	require.True(t, ok)
	for _, name := range []string{"surface_color", "specular_color", "surface_shininess"} {
		_, ok := lit.Property(name)
		assert.True(t, ok, name)
	}

	tex, ok := lib.Shader(KeyTextureDiffuseLit)
	require.True(t, ok)
	diffuse, ok := tex.Property("surface_diffuse")
	require.True(t, ok)
	assert.Equal(t, PropertyKindTexture, diffuse.Kind)
	assert.Equal(t, 1, tex.TextureCount())
	assert.Len(t, tex.BindGroupLayoutDescriptors(), 3)
	assert.Equal(t, 1, strings.Count(tex.Source(), "fn shade_diffuse"))

	_, ok = lib.Shader("nope")
	assert.False(t, ok)
}

func TestLibraryRegister(t *testing.T) {
	lib := NewLibrary()
	s, err := NewShader("custom", minimalSource)
	require.NoError(t, err)
	require.NoError(t, lib.Register(s))
	got, ok := lib.Shader("custom")
	require.True(t, ok)
	assert.Same(t, s, got)

	assert.Error(t, lib.Register(s))
	dup, err := NewShader(KeyDefault, minimalSource)
	require.NoError(t, err)
	assert.Error(t, lib.Register(dup))
}
