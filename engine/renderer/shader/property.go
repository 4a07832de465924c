package shader

import (
	"fmt"
	"strconv"
)

// Property is a material property declared by a shader through a @polygon:property annotation.
type Property struct {
	// Name is the property name used by materials (e.g. "surface_color").
	Name string

	// Kind is the value kind of the property.
	Kind PropertyKind

	// Default is the shader default. Colors use all four components, f32 uses [0], textures leave it zero.
	Default [4]float32

	// Slot is the vec4 index in the material uniform, or -1 for textures.
	Slot int

	// TextureIndex is the position among the shader's texture properties, or -1 for non-textures.
	// The texture binds at @binding(2*TextureIndex) and its sampler at @binding(2*TextureIndex+1).
	TextureIndex int

	// Line is the source line the property was declared on.
	Line int
}

// TextureBinding returns the texture binding index of a texture property within the texture group.
//
// Returns:
//   - uint32: the texture binding index
func (p Property) TextureBinding() uint32 {
	return uint32(2 * p.TextureIndex)
}

// SamplerBinding returns the sampler binding index of a texture property within the texture group.
//
// Returns:
//   - uint32: the sampler binding index
func (p Property) SamplerBinding() uint32 {
	return uint32(2*p.TextureIndex + 1)
}

// propertyFromAnnotation builds a Property from a parsed property annotation, assigning the next
// free uniform slot or texture index.
func propertyFromAnnotation(a Annotation, slot, textureIndex int) (Property, error) {
	p := Property{
		Kind:         PropertyKind(a.Args[0]),
		Name:         string(a.Args[1]),
		Slot:         -1,
		TextureIndex: -1,
		Line:         a.Line,
	}
	values := make([]float32, 0, len(a.Args)-2)
	for _, arg := range a.Args[2:] {
		v, err := strconv.ParseFloat(string(arg), 32)
		if err != nil {
			return Property{}, fmt.Errorf("line %d: invalid default %q for property %q: %w", a.Line, arg, p.Name, err)
		}
		values = append(values, float32(v))
	}

	switch p.Kind {
	case PropertyKindColor:
		p.Slot = slot
		p.Default = [4]float32{1, 1, 1, 1}
		copy(p.Default[:], values)
	case PropertyKindF32:
		p.Slot = slot
		if len(values) == 1 {
			p.Default[0] = values[0]
		}
	case PropertyKindTexture:
		p.TextureIndex = textureIndex
	}
	return p, nil
}

// generatedSource returns the WGSL emitted in place of a property annotation.
func (p Property) generatedSource() string {
	switch p.Kind {
	case PropertyKindColor:
		return fmt.Sprintf("fn prop_%s() -> vec4<f32> { return material.params[%d]; }", p.Name, p.Slot)
	case PropertyKindF32:
		return fmt.Sprintf("fn prop_%s() -> f32 { return material.params[%d].x; }", p.Name, p.Slot)
	case PropertyKindTexture:
		return fmt.Sprintf("@group(%d) @binding(%d) var tex_%s: texture_2d<f32>;\n@group(%d) @binding(%d) var samp_%s: sampler;",
			GroupTextures, p.TextureBinding(), p.Name, GroupTextures, p.SamplerBinding(), p.Name)
	}
	return ""
}
