// Package anchor implements spatial anchors: position, orientation and scale records that mesh
// instances, cameras and lights attach to, plus the Store that resolves them into world transforms.
package anchor

import (
	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
)

// Anchor is a plain value describing a local transform. The world transform it produces is
// T * R * S, pre-multiplied by the parent's world transform when a parent is set.
type Anchor struct {
	position    [3]float32
	orientation common.Quat
	scale       [3]float32
	parent      handle.Anchor
	hasParent   bool
}

// New creates an Anchor at the origin with identity orientation and unit scale, then applies options.
//
// Parameters:
//   - options: a variadic list of AnchorBuilderOption functions to configure the anchor
//
// Returns:
//   - Anchor: the configured anchor value
func New(options ...AnchorBuilderOption) Anchor {
	a := Anchor{
		orientation: common.QuatIdentity(),
		scale:       [3]float32{1, 1, 1},
	}
	for _, opt := range options {
		opt(&a)
	}
	return a
}

func (a Anchor) Position() [3]float32          { return a.position }
func (a Anchor) Orientation() common.Quat      { return a.orientation }
func (a Anchor) Scale() [3]float32             { return a.scale }
func (a Anchor) Parent() (handle.Anchor, bool) { return a.parent, a.hasParent }

// SetPosition replaces the local position.
func (a *Anchor) SetPosition(p [3]float32) {
	a.position = p
}

// SetOrientation replaces the local orientation. The quaternion is normalized on the way in.
func (a *Anchor) SetOrientation(q common.Quat) {
	a.orientation = q.Normalize()
}

// SetScale replaces the per-axis local scale.
func (a *Anchor) SetScale(s [3]float32) {
	a.scale = s
}

// SetParent makes the anchor relative to another anchor in the same store.
func (a *Anchor) SetParent(parent handle.Anchor) {
	a.parent = parent
	a.hasParent = true
}

// ClearParent makes the anchor relative to world space again.
func (a *Anchor) ClearParent() {
	a.parent = 0
	a.hasParent = false
}

// Translate moves the anchor by delta in its parent's space.
func (a *Anchor) Translate(delta [3]float32) {
	a.position[0] += delta[0]
	a.position[1] += delta[1]
	a.position[2] += delta[2]
}

// Rotate applies q after the current orientation, in the parent's space.
func (a *Anchor) Rotate(q common.Quat) {
	a.orientation = q.Mul(a.orientation).Normalize()
}

// LocalTransform returns T * R * S for this anchor alone, ignoring any parent.
//
// Returns:
//   - [16]float32: the column-major local transform
func (a Anchor) LocalTransform() [16]float32 {
	var m [16]float32
	common.ComposeTRS(m[:], a.position, a.orientation, a.scale)
	return m
}
