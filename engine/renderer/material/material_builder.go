package material

import (
	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithLabel is an option builder that sets the label of the material.
//
// Parameters:
//   - label: the identifier used in log output
//
// Returns:
//   - MaterialBuilderOption: a function that applies the label option to a material
func WithLabel(label string) MaterialBuilderOption {
	return func(m *material) {
		m.label = label
	}
}

// WithColor is an option builder that overrides a color property.
//
// Parameters:
//   - name: the property name
//   - c: the color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the override to a material
func WithColor(name string, c common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.record(m.SetColor(name, c))
	}
}

// WithF32 is an option builder that overrides a scalar property.
//
// Parameters:
//   - name: the property name
//   - v: the value
//
// Returns:
//   - MaterialBuilderOption: a function that applies the override to a material
func WithF32(name string, v float32) MaterialBuilderOption {
	return func(m *material) {
		m.record(m.SetF32(name, v))
	}
}

// WithTexture is an option builder that binds a texture to a texture property.
//
// Parameters:
//   - name: the property name
//   - t: the texture handle
//
// Returns:
//   - MaterialBuilderOption: a function that applies the binding to a material
func WithTexture(name string, t handle.Texture) MaterialBuilderOption {
	return func(m *material) {
		m.record(m.SetTexture(name, t))
	}
}

func (m *material) record(err error) {
	if m.err == nil {
		m.err = err
	}
}
