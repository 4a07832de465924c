package renderer

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMesh is returned when a draw names a mesh handle that is not registered.
	ErrUnknownMesh = errors.New("renderer: unknown mesh")

	// ErrNoFrame is returned when a draw is issued outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("renderer: no frame in progress")

	// ErrReleased is returned by operations on a renderer after Release.
	ErrReleased = errors.New("renderer: released")
)

// CreationStage names the step of renderer construction that failed.
type CreationStage string

const (
	StageInstance CreationStage = "instance"
	StageSurface  CreationStage = "surface"
	StageAdapter  CreationStage = "adapter"
	StageDevice   CreationStage = "device"
	StageTargets  CreationStage = "targets"
)

// CreationError reports that the GPU instance, surface, adapter or device could not be created.
type CreationError struct {
	Stage CreationStage
	Err   error
}

func (e *CreationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("renderer: failed to create %s", e.Stage)
	}
	return fmt.Sprintf("renderer: failed to create %s: %v", e.Stage, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}
