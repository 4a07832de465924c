package light

import (
	"github.com/Carmen-Shannon/polygon/common"
	"github.com/Carmen-Shannon/polygon/engine/handle"
)

// LightType identifies the kind of light source, which determines how the light
// contributes to scene illumination in the lit shaders.
type LightType int

const (
	// LightTypeDirectional represents an infinitely distant light source (e.g. the sun).
	// Only the direction is used; anchors are ignored.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents an omnidirectional light emitting from the anchor position
	// with distance-based attenuation up to its radius.
	LightTypePoint

	// LightTypeSpot represents a cone-shaped light emitting from the anchor position along a
	// world-space direction, with inner/outer cone angles controlling the falloff.
	LightTypeSpot
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	case LightTypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType LightType
	anchor    handle.Anchor
	hasAnchor bool
	direction [3]float32
	color     common.Color
	strength  float32
	radius    float32
	innerCone float32 // stored as cos(angle in radians)
	outerCone float32 // stored as cos(angle in radians)
	enabled   bool
}

// Light defines the interface for a scene light. Point and spot lights take their position from an
// anchor registered in the same scene; a point or spot light without a resolvable anchor does not
// contribute to the frame.
type Light interface {
	// Type returns the light's type (directional, point or spot).
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Anchor returns the anchor the light is positioned by.
	//
	// Returns:
	//   - handle.Anchor: the anchor handle
	//   - bool: false if no anchor has been set
	Anchor() (handle.Anchor, bool)

	// Direction returns the normalized world-space direction the light travels along.
	// Used by directional and spot lights.
	//
	// Returns:
	//   - [3]float32: the direction
	Direction() [3]float32

	// Color returns the light color.
	//
	// Returns:
	//   - common.Color: the color
	Color() common.Color

	// Strength returns the scalar intensity multiplier.
	//
	// Returns:
	//   - float32: the strength
	Strength() float32

	// Radius returns the attenuation cutoff distance of point and spot lights.
	//
	// Returns:
	//   - float32: the radius in world units
	Radius() float32

	// InnerCone returns the cosine of the spot light's inner half-angle.
	//
	// Returns:
	//   - float32: the cosine value
	InnerCone() float32

	// OuterCone returns the cosine of the spot light's outer half-angle.
	//
	// Returns:
	//   - float32: the cosine value
	OuterCone() float32

	// Enabled reports whether the light contributes to rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetAnchor attaches the light to an anchor.
	//
	// Parameters:
	//   - a: the anchor handle
	SetAnchor(a handle.Anchor)

	// ClearAnchor detaches the light from its anchor.
	ClearAnchor()

	// SetDirection sets the light direction. The vector is normalized.
	//
	// Parameters:
	//   - d: the direction
	SetDirection(d [3]float32)

	// SetColor sets the light color.
	//
	// Parameters:
	//   - c: the color
	SetColor(c common.Color)

	// SetStrength sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - strength: the strength
	SetStrength(strength float32)

	// SetRadius sets the attenuation cutoff distance.
	//
	// Parameters:
	//   - radius: the radius in world units
	SetRadius(radius float32)

	// SetSpotCone sets the spot light cone half-angles in degrees.
	//
	// Parameters:
	//   - innerDeg: the half-angle of full intensity
	//   - outerDeg: the half-angle where intensity reaches zero
	SetSpotCone(innerDeg, outerDeg float32)

	// SetEnabled toggles whether the light contributes to rendering.
	//
	// Parameters:
	//   - enabled: the new state
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the given type with the provided builder options.
// Defaults: direction (0, -1, 0), white, strength 1, radius 10, spot cone 25°/35°, enabled.
//
// Parameters:
//   - lightType: the type of light to create
//   - opts: functional options to configure the light
//
// Returns:
//   - Light: the configured light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		direction: [3]float32{0, -1, 0},
		color:     common.ColorWhite,
		strength:  1.0,
		radius:    10.0,
		innerCone: cosDeg(25),
		outerCone: cosDeg(35),
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Directional creates a directional light.
//
// Parameters:
//   - direction: the direction the light travels (normalized)
//   - strength: the intensity multiplier
//   - color: the light color
//
// Returns:
//   - Light: the directional light
func Directional(direction [3]float32, strength float32, color common.Color) Light {
	return NewLight(LightTypeDirectional, WithDirection(direction), WithStrength(strength), WithColor(color))
}

// Point creates a point light. Attach it to an anchor to position it.
//
// Parameters:
//   - radius: the attenuation cutoff distance
//   - strength: the intensity multiplier
//   - color: the light color
//
// Returns:
//   - Light: the point light
func Point(radius, strength float32, color common.Color) Light {
	return NewLight(LightTypePoint, WithRadius(radius), WithStrength(strength), WithColor(color))
}

// Spot creates a spot light. Attach it to an anchor to position it.
//
// Parameters:
//   - radius: the attenuation cutoff distance
//   - direction: the world-space direction of the cone axis
//   - innerDeg, outerDeg: the cone half-angles in degrees
//   - strength: the intensity multiplier
//   - color: the light color
//
// Returns:
//   - Light: the spot light
func Spot(radius float32, direction [3]float32, innerDeg, outerDeg, strength float32, color common.Color) Light {
	return NewLight(LightTypeSpot,
		WithRadius(radius),
		WithDirection(direction),
		WithSpotCone(innerDeg, outerDeg),
		WithStrength(strength),
		WithColor(color),
	)
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Anchor() (handle.Anchor, bool) {
	return l.anchor, l.hasAnchor
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() common.Color {
	return l.color
}

func (l *lightImpl) Strength() float32 {
	return l.strength
}

func (l *lightImpl) Radius() float32 {
	return l.radius
}

func (l *lightImpl) InnerCone() float32 {
	return l.innerCone
}

func (l *lightImpl) OuterCone() float32 {
	return l.outerCone
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetAnchor(a handle.Anchor) {
	l.anchor = a
	l.hasAnchor = true
}

func (l *lightImpl) ClearAnchor() {
	l.anchor = 0
	l.hasAnchor = false
}

func (l *lightImpl) SetDirection(d [3]float32) {
	l.direction = common.Normalize3(d)
}

func (l *lightImpl) SetColor(c common.Color) {
	l.color = c
}

func (l *lightImpl) SetStrength(strength float32) {
	l.strength = strength
}

func (l *lightImpl) SetRadius(radius float32) {
	l.radius = radius
}

func (l *lightImpl) SetSpotCone(innerDeg, outerDeg float32) {
	l.innerCone = cosDeg(innerDeg)
	l.outerCone = cosDeg(outerDeg)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

// NeedsAnchor reports whether a light of type t takes its position from an anchor.
func NeedsAnchor(t LightType) bool {
	return t == LightTypePoint || t == LightTypeSpot
}
