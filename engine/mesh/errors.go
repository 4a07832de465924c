package mesh

import "fmt"

// BuildMeshErrorKind classifies why a MeshBuilder rejected its input.
type BuildMeshErrorKind int

const (
	// ErrKindNoPositions means no vertex positions were supplied.
	ErrKindNoPositions BuildMeshErrorKind = iota
	// ErrKindNoIndices means the index list is empty.
	ErrKindNoIndices
	// ErrKindIndexCount means the index count is not a multiple of three (triangle lists only).
	ErrKindIndexCount
	// ErrKindNormalCount means normals were supplied but their count differs from the position count.
	ErrKindNormalCount
	// ErrKindTexcoordCount means texcoords were supplied but their count differs from the position count.
	ErrKindTexcoordCount
	// ErrKindIndexOutOfRange means an index refers past the last vertex.
	ErrKindIndexOutOfRange
)

func (k BuildMeshErrorKind) String() string {
	switch k {
	case ErrKindNoPositions:
		return "no positions"
	case ErrKindNoIndices:
		return "no indices"
	case ErrKindIndexCount:
		return "index count not a multiple of 3"
	case ErrKindNormalCount:
		return "normal count mismatch"
	case ErrKindTexcoordCount:
		return "texcoord count mismatch"
	case ErrKindIndexOutOfRange:
		return "index out of range"
	default:
		return fmt.Sprintf("BuildMeshErrorKind(%d)", int(k))
	}
}

// BuildMeshError is returned by MeshBuilder.Build when the supplied geometry is inconsistent.
type BuildMeshError struct {
	Kind BuildMeshErrorKind
	// Got and Want carry the offending count, or for ErrKindIndexOutOfRange the index value and vertex count.
	Got, Want int
	// Position is the offset into the index list for ErrKindIndexOutOfRange.
	Position int
}

func (e *BuildMeshError) Error() string {
	switch e.Kind {
	case ErrKindNormalCount, ErrKindTexcoordCount:
		return fmt.Sprintf("mesh: %s: got %d, want %d", e.Kind, e.Got, e.Want)
	case ErrKindIndexCount:
		return fmt.Sprintf("mesh: %s: got %d", e.Kind, e.Got)
	case ErrKindIndexOutOfRange:
		return fmt.Sprintf("mesh: %s: indices[%d] = %d, vertex count %d", e.Kind, e.Position, e.Got, e.Want)
	default:
		return "mesh: " + e.Kind.String()
	}
}
