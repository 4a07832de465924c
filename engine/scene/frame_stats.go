package scene

import "github.com/Carmen-Shannon/polygon/engine/handle"

// FrameStats summarizes one call to Scene.Draw.
type FrameStats struct {
	// Camera is the camera that drove the frame, zero for an empty frame.
	Camera handle.Camera
	// EmptyFrame is set when no camera could be resolved and only a cleared frame was presented.
	EmptyFrame bool

	Instances int // live instances at the start of the frame
	Drawn     int
	Lights    int // lights bound for the frame

	Disabled        int
	MissingAnchor   int
	MissingMesh     int
	MissingMaterial int
	Culled          int

	// Failed counts draws rejected by the renderer for any other reason; LastError holds the last one.
	Failed    int
	LastError error
}

// Skipped returns the number of instances that produced no draw call.
func (f FrameStats) Skipped() int {
	return f.Disabled + f.MissingAnchor + f.MissingMesh + f.MissingMaterial + f.Culled + f.Failed
}

func (f *FrameStats) count(r skipReason) {
	switch r {
	case skipDisabled:
		f.Disabled++
	case skipAnchor:
		f.MissingAnchor++
	case skipMesh:
		f.MissingMesh++
	case skipMaterial:
		f.MissingMaterial++
	case skipCulled:
		f.Culled++
	}
}
