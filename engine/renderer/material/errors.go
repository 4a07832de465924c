package material

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProperty is returned when a property name is not exposed by the material.
	// The material is left unchanged.
	ErrUnknownProperty = errors.New("material: unknown property")

	// ErrPropertyKind is returned when a property is set with a value of the wrong kind.
	// The material is left unchanged.
	ErrPropertyKind = errors.New("material: property kind mismatch")

	// ErrUnknownFormat is returned by SourceFromFile for an unrecognized file extension.
	ErrUnknownFormat = errors.New("material: unknown source format")
)

// BuildErrorReason classifies a MaterialBuildError.
type BuildErrorReason string

const (
	ReasonMalformedSource   BuildErrorReason = "malformed source"
	ReasonUnknownShader     BuildErrorReason = "unknown shader"
	ReasonUnknownProperty   BuildErrorReason = "unknown property"
	ReasonKindMismatch      BuildErrorReason = "property kind mismatch"
	ReasonDuplicateProperty BuildErrorReason = "duplicate property"
)

// MaterialBuildError reports why a MaterialSource could not be turned into a Material.
type MaterialBuildError struct {
	// Shader is the shader key named by the source.
	Shader string

	// Property is the offending property name, empty for source-level failures.
	Property string

	// Reason classifies the failure.
	Reason BuildErrorReason

	// Err is the underlying error, if any.
	Err error
}

func (e *MaterialBuildError) Error() string {
	msg := fmt.Sprintf("material build (shader %q): %s", e.Shader, e.Reason)
	if e.Property != "" {
		msg += fmt.Sprintf(" %q", e.Property)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MaterialBuildError) Unwrap() error {
	return e.Err
}
