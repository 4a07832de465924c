package material

import (
	"fmt"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
	"github.com/Carmen-Shannon/polygon/engine/renderer/shader"
)

// slot is one exposed property of a material and its override state.
type slot struct {
	prop       shader.Property
	overridden bool
	value      [4]float32
	texture    handle.Texture
}

// material is the implementation of the Material interface.
type material struct {
	label  string
	shader shader.Shader
	slots  []slot
	index  map[string]int
	err    error
}

// Material defines a named-property bag bound to a shader. Each exposed property is a color,
// a scalar or a texture reference; a property left untouched resolves to the shader default.
// Setters never mutate the material on failure: a name the material does not expose yields
// ErrUnknownProperty and a value of the wrong kind yields ErrPropertyKind.
//
// Changes are picked up by the next frame drawn.
type Material interface {
	// Label retrieves the material label used in log output.
	//
	// Returns:
	//   - string: the label, possibly empty
	Label() string

	// Shader retrieves the shader the material binds to.
	//
	// Returns:
	//   - shader.Shader: the bound shader
	Shader() shader.Shader

	// Properties lists the exposed properties in exposure order.
	//
	// Returns:
	//   - []shader.Property: the exposed property declarations
	Properties() []shader.Property

	// HasProperty reports whether the material exposes a property.
	//
	// Parameters:
	//   - name: the property name
	//
	// Returns:
	//   - bool: true if the property is exposed
	HasProperty(name string) bool

	// SetColor overrides a color property.
	//
	// Parameters:
	//   - name: the property name
	//   - c: the color
	//
	// Returns:
	//   - error: ErrUnknownProperty or ErrPropertyKind; the material is unchanged on error
	SetColor(name string, c common.Color) error

	// SetF32 overrides a scalar property.
	//
	// Parameters:
	//   - name: the property name
	//   - v: the value
	//
	// Returns:
	//   - error: ErrUnknownProperty or ErrPropertyKind; the material is unchanged on error
	SetF32(name string, v float32) error

	// SetTexture binds a texture handle to a texture property. The handle is not validated here;
	// a handle the renderer does not know resolves to the default white texture at draw time.
	//
	// Parameters:
	//   - name: the property name
	//   - t: the texture handle
	//
	// Returns:
	//   - error: ErrUnknownProperty or ErrPropertyKind; the material is unchanged on error
	SetTexture(name string, t handle.Texture) error

	// Color resolves a color property to its override or shader default.
	//
	// Parameters:
	//   - name: the property name
	//
	// Returns:
	//   - common.Color: the resolved color
	//   - bool: false if the name is not an exposed color property
	Color(name string) (common.Color, bool)

	// F32 resolves a scalar property to its override or shader default.
	//
	// Parameters:
	//   - name: the property name
	//
	// Returns:
	//   - float32: the resolved value
	//   - bool: false if the name is not an exposed f32 property
	F32(name string) (float32, bool)

	// Texture retrieves the texture bound to a texture property.
	//
	// Parameters:
	//   - name: the property name
	//
	// Returns:
	//   - handle.Texture: the bound handle, or the zero handle when none is bound
	//   - bool: false if the name is not an exposed texture property or nothing is bound
	Texture(name string) (handle.Texture, bool)

	// IsOverridden reports whether a property has been set since creation or the last ClearOverride.
	//
	// Parameters:
	//   - name: the property name
	//
	// Returns:
	//   - bool: true if the property holds an override
	IsOverridden(name string) bool

	// ClearOverride reverts a property to its shader default.
	//
	// Parameters:
	//   - name: the property name
	//
	// Returns:
	//   - error: ErrUnknownProperty if the material does not expose the property
	ClearOverride(name string) error

	// Clone returns an independent copy sharing only the shader.
	//
	// Returns:
	//   - Material: the copy
	Clone() Material

	// Pack writes every color and f32 value into the material uniform. Slots of shader
	// properties the material does not expose hold the shader default.
	//
	// Returns:
	//   - shader.GPUMaterialParams: the packed uniform
	Pack() shader.GPUMaterialParams

	// TextureBindings lists the texture bound to each texture property of the shader, ordered
	// by texture index. Unbound or unexposed properties yield the zero handle.
	//
	// Returns:
	//   - []handle.Texture: one handle per shader texture property
	TextureBindings() []handle.Texture
}

var _ Material = &material{}

// New creates a Material bound to a shader with every declared property exposed and no overrides.
// Options run in order; the first failing override is returned as the error.
//
// Parameters:
//   - s: the shader to bind
//   - options: variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the new material
//   - error: the first error raised by an override option
func New(s shader.Shader, options ...MaterialBuilderOption) (Material, error) {
	if s == nil {
		panic("material: shader must not be nil")
	}
	m := newMaterial(s, s.Properties())
	for _, opt := range options {
		opt(m)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m, nil
}

// Default creates a material bound to the library's default shader with every property
// exposed and left at its shader default.
//
// Parameters:
//   - lib: the shader library
//
// Returns:
//   - Material: the default material
func Default(lib shader.Library) Material {
	return newMaterial(lib.Default(), lib.Default().Properties())
}

// Build resolves a MaterialSource against a shader library. Every property named by the source
// must be declared by the shader with the same kind and appear only once.
//
// Parameters:
//   - lib: the shader library
//   - src: the material source
//
// Returns:
//   - Material: the built material exposing exactly the source's properties
//   - error: a *MaterialBuildError describing the first problem found
func Build(lib shader.Library, src MaterialSource) (Material, error) {
	if src.Shader == "" {
		return nil, &MaterialBuildError{Reason: ReasonMalformedSource, Err: fmt.Errorf("no shader named")}
	}
	s, ok := lib.Shader(src.Shader)
	if !ok {
		return nil, &MaterialBuildError{Shader: src.Shader, Reason: ReasonUnknownShader}
	}

	exposed := make([]shader.Property, 0, len(src.Properties))
	seen := make(map[string]bool, len(src.Properties))
	for i, ps := range src.Properties {
		if ps.Name == "" {
			return nil, &MaterialBuildError{Shader: src.Shader, Reason: ReasonMalformedSource, Err: fmt.Errorf("property %d has no name", i)}
		}
		kind, ok := shader.ParsePropertyKind(ps.Kind)
		if !ok {
			return nil, &MaterialBuildError{Shader: src.Shader, Property: ps.Name, Reason: ReasonMalformedSource, Err: fmt.Errorf("unknown kind %q", ps.Kind)}
		}
		if seen[ps.Name] {
			return nil, &MaterialBuildError{Shader: src.Shader, Property: ps.Name, Reason: ReasonDuplicateProperty}
		}
		seen[ps.Name] = true

		prop, ok := s.Property(ps.Name)
		if !ok {
			return nil, &MaterialBuildError{Shader: src.Shader, Property: ps.Name, Reason: ReasonUnknownProperty, Err: ErrUnknownProperty}
		}
		if prop.Kind != kind {
			return nil, &MaterialBuildError{
				Shader:   src.Shader,
				Property: ps.Name,
				Reason:   ReasonKindMismatch,
				Err:      fmt.Errorf("%w: source says %s, shader declares %s", ErrPropertyKind, kind, prop.Kind),
			}
		}
		exposed = append(exposed, prop)
	}

	m := newMaterial(s, exposed)
	m.label = src.Name
	return m, nil
}

func newMaterial(s shader.Shader, props []shader.Property) *material {
	m := &material{
		shader: s,
		slots:  make([]slot, len(props)),
		index:  make(map[string]int, len(props)),
	}
	for i, p := range props {
		m.slots[i] = slot{prop: p, value: p.Default}
		m.index[p.Name] = i
	}
	return m
}

func (m *material) Label() string {
	return m.label
}

func (m *material) Shader() shader.Shader {
	return m.shader
}

func (m *material) Properties() []shader.Property {
	props := make([]shader.Property, len(m.slots))
	for i, s := range m.slots {
		props[i] = s.prop
	}
	return props
}

func (m *material) HasProperty(name string) bool {
	_, ok := m.index[name]
	return ok
}

func (m *material) SetColor(name string, c common.Color) error {
	s, err := m.lookup(name, shader.PropertyKindColor)
	if err != nil {
		return err
	}
	s.value = c.Array()
	s.overridden = true
	return nil
}

func (m *material) SetF32(name string, v float32) error {
	s, err := m.lookup(name, shader.PropertyKindF32)
	if err != nil {
		return err
	}
	s.value = [4]float32{v, 0, 0, 0}
	s.overridden = true
	return nil
}

func (m *material) SetTexture(name string, t handle.Texture) error {
	s, err := m.lookup(name, shader.PropertyKindTexture)
	if err != nil {
		return err
	}
	s.texture = t
	s.overridden = true
	return nil
}

func (m *material) Color(name string) (common.Color, bool) {
	s, err := m.lookup(name, shader.PropertyKindColor)
	if err != nil {
		return common.Color{}, false
	}
	return common.NewColor(s.value[0], s.value[1], s.value[2], s.value[3]), true
}

func (m *material) F32(name string) (float32, bool) {
	s, err := m.lookup(name, shader.PropertyKindF32)
	if err != nil {
		return 0, false
	}
	return s.value[0], true
}

func (m *material) Texture(name string) (handle.Texture, bool) {
	s, err := m.lookup(name, shader.PropertyKindTexture)
	if err != nil || !s.overridden {
		return 0, false
	}
	return s.texture, true
}

func (m *material) IsOverridden(name string) bool {
	i, ok := m.index[name]
	return ok && m.slots[i].overridden
}

func (m *material) ClearOverride(name string) error {
	i, ok := m.index[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	s := &m.slots[i]
	s.value = s.prop.Default
	s.texture = 0
	s.overridden = false
	return nil
}

func (m *material) Clone() Material {
	c := &material{
		label:  m.label,
		shader: m.shader,
		slots:  append([]slot(nil), m.slots...),
		index:  make(map[string]int, len(m.index)),
	}
	for k, v := range m.index {
		c.index[k] = v
	}
	return c
}

func (m *material) Pack() shader.GPUMaterialParams {
	params := m.shader.DefaultParams()
	for _, s := range m.slots {
		if s.prop.Slot >= 0 {
			params.Params[s.prop.Slot] = s.value
		}
	}
	return params
}

func (m *material) TextureBindings() []handle.Texture {
	bindings := make([]handle.Texture, m.shader.TextureCount())
	for _, s := range m.slots {
		if s.prop.TextureIndex >= 0 && s.prop.TextureIndex < len(bindings) {
			bindings[s.prop.TextureIndex] = s.texture
		}
	}
	return bindings
}

// lookup finds an exposed property of the expected kind.
func (m *material) lookup(name string, kind shader.PropertyKind) (*slot, error) {
	i, ok := m.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	s := &m.slots[i]
	if s.prop.Kind != kind {
		return nil, fmt.Errorf("%w: %q is %s, not %s", ErrPropertyKind, name, s.prop.Kind, kind)
	}
	return s, nil
}
