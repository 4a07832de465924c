package anchor

import (
	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
)

// AnchorBuilderOption is a functional option for configuring an Anchor at construction time.
type AnchorBuilderOption func(*Anchor)

// WithPosition sets the initial local position.
//
// Parameters:
//   - p: the position in the parent's space (world space when there is no parent)
//
// Returns:
//   - AnchorBuilderOption: a function that applies the position
func WithPosition(p [3]float32) AnchorBuilderOption {
	return func(a *Anchor) {
		a.SetPosition(p)
	}
}

// WithOrientation sets the initial local orientation.
//
// Parameters:
//   - q: the orientation, normalized on assignment
//
// Returns:
//   - AnchorBuilderOption: a function that applies the orientation
func WithOrientation(q common.Quat) AnchorBuilderOption {
	return func(a *Anchor) {
		a.SetOrientation(q)
	}
}

// WithScale sets the initial per-axis scale.
//
// Parameters:
//   - s: the scale factors
//
// Returns:
//   - AnchorBuilderOption: a function that applies the scale
func WithScale(s [3]float32) AnchorBuilderOption {
	return func(a *Anchor) {
		a.SetScale(s)
	}
}

// WithParent attaches the anchor to a parent anchor.
//
// Parameters:
//   - parent: the parent anchor handle
//
// Returns:
//   - AnchorBuilderOption: a function that applies the parent
func WithParent(parent handle.Anchor) AnchorBuilderOption {
	return func(a *Anchor) {
		a.SetParent(parent)
	}
}
