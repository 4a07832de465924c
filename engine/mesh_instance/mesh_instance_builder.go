package mesh_instance

import (
	"github.com/Carmen-Shannon/polygon/engine/handle"
)

// MeshInstanceBuilderOption is a functional option for configuring a MeshInstance during construction.
type MeshInstanceBuilderOption func(*meshInstance)

// WithAnchor attaches the MeshInstance to an anchor.
//
// Parameters:
//   - a: the anchor handle
//
// Returns:
//   - MeshInstanceBuilderOption: functional option to set the anchor
func WithAnchor(a handle.Anchor) MeshInstanceBuilderOption {
	return func(mi *meshInstance) {
		mi.anchor = a
		mi.hasAnchor = true
	}
}

// WithEnabled sets whether the MeshInstance is drawn.
//
// Parameters:
//   - enabled: true to draw the instance, false to skip it
//
// Returns:
//   - MeshInstanceBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) MeshInstanceBuilderOption {
	return func(mi *meshInstance) {
		mi.enabled.Store(enabled)
	}
}
