package light

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
)

// LightBuilderOption is a functional option for configuring a Light.
type LightBuilderOption func(*lightImpl)

// WithAnchor attaches the light to an anchor at construction time.
//
// Parameters:
//   - a: the anchor handle
//
// Returns:
//   - LightBuilderOption: a function that applies the anchor
func WithAnchor(a handle.Anchor) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetAnchor(a)
	}
}

// WithDirection sets the light direction (normalized).
//
// Parameters:
//   - d: the direction vector
//
// Returns:
//   - LightBuilderOption: a function that applies the direction
func WithDirection(d [3]float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetDirection(d)
	}
}

// WithColor sets the light color.
//
// Parameters:
//   - c: the color
//
// Returns:
//   - LightBuilderOption: a function that applies the color
func WithColor(c common.Color) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithStrength sets the scalar intensity multiplier.
//
// Parameters:
//   - strength: the strength
//
// Returns:
//   - LightBuilderOption: a function that applies the strength
func WithStrength(strength float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.strength = strength
	}
}

// WithRadius sets the attenuation cutoff distance for point and spot lights.
//
// Parameters:
//   - radius: the radius in world units
//
// Returns:
//   - LightBuilderOption: a function that applies the radius
func WithRadius(radius float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.radius = radius
	}
}

// WithSpotCone sets the spot light cone half-angles in degrees.
//
// Parameters:
//   - innerDeg: the half-angle of full intensity
//   - outerDeg: the half-angle where intensity reaches zero
//
// Returns:
//   - LightBuilderOption: a function that applies the cone angles
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.SetSpotCone(innerDeg, outerDeg)
	}
}

// WithEnabled sets whether the light starts enabled.
//
// Parameters:
//   - enabled: the initial state
//
// Returns:
//   - LightBuilderOption: a function that applies the state
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

func cosDeg(deg float32) float32 {
	return math32.Cos(deg * math32.Pi / 180.0)
}
