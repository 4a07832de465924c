package common

import (
	"github.com/chewxy/math32"
)

// Plane is the plane n·p + d = 0 with a unit normal. Points with a positive signed distance
// lie on the side the normal points to.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// SignedDistance returns the signed distance from a point to the plane. Positive values are inside.
func (p Plane) SignedDistance(point [3]float32) float32 {
	return p.Normal[0]*point[0] + p.Normal[1]*point[1] + p.Normal[2]*point[2] + p.Distance
}

// Frustum holds the six inward-facing clip planes of a view volume, used by the scene to cull
// instances whose bounding sphere lies fully outside the camera's view.
type Frustum struct {
	Planes [6]Plane // left, right, bottom, top, near, far
}

// ExtractFrustumFromMatrix derives the clip planes of a column-major view-projection matrix
// (Gribb/Hartmann). The projection is expected to map depth to [0, 1], as Perspective does,
// so the near plane is the z row alone. Passing P * V * W instead yields the planes in that
// object's local space.
//
// Parameters:
//   - viewProj: the 16 column-major matrix elements
//
// Returns:
//   - Frustum: the frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj []float32) Frustum {
	row := func(i int) [4]float32 {
		return [4]float32{viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]}
	}
	x, y, z, w := row(0), row(1), row(2), row(3)

	var f Frustum
	for i, coeffs := range [6][4]float32{
		addRows(w, x, 1),
		addRows(w, x, -1),
		addRows(w, y, 1),
		addRows(w, y, -1),
		z,
		addRows(w, z, -1),
	} {
		f.Planes[i] = planeFromCoefficients(coeffs)
	}
	return f
}

// SphereVisible reports whether a bounding sphere intersects or lies inside the frustum.
//
// Parameters:
//   - center: the sphere center in the same space the frustum was extracted in
//   - radius: the sphere radius
//
// Returns:
//   - bool: false only when the sphere is entirely outside at least one plane
func (f Frustum) SphereVisible(center [3]float32, radius float32) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(center) < -radius {
			return false
		}
	}
	return true
}

func addRows(a, b [4]float32, sign float32) [4]float32 {
	return [4]float32{a[0] + sign*b[0], a[1] + sign*b[1], a[2] + sign*b[2], a[3] + sign*b[3]}
}

func planeFromCoefficients(c [4]float32) Plane {
	p := Plane{Normal: [3]float32{c[0], c[1], c[2]}, Distance: c[3]}
	if l := math32.Sqrt(c[0]*c[0] + c[1]*c[1] + c[2]*c[2]); l > 0 {
		inv := 1 / l
		p.Normal = [3]float32{c[0] * inv, c[1] * inv, c[2] * inv}
		p.Distance *= inv
	}
	return p
}
