package common

import (
	"github.com/chewxy/math32"
)

// Quat is a rotation quaternion with the scalar part in W.
// Orientations stored on anchors are kept unit length.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the quaternion representing no rotation.
//
// Returns:
//   - Quat: the identity rotation (0, 0, 0, 1)
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle builds a rotation of angle radians around axis.
// The axis is normalized first; a zero axis yields the identity rotation.
//
// Parameters:
//   - axis: the rotation axis
//   - radians: the rotation angle in radians (right-handed)
//
// Returns:
//   - Quat: the unit rotation quaternion
func QuatFromAxisAngle(axis [3]float32, radians float32) Quat {
	n := Normalize3(axis)
	if n == ([3]float32{}) {
		return QuatIdentity()
	}
	s, c := math32.Sincos(radians / 2)
	return Quat{X: n[0] * s, Y: n[1] * s, Z: n[2] * s, W: c}
}

// QuatFromEuler builds a rotation from Euler angles in radians, composed as Ry * Rx * Rz
// (yaw, then pitch, then roll when applied to a column vector from the right).
//
// Parameters:
//   - pitch: rotation around X in radians
//   - yaw: rotation around Y in radians
//   - roll: rotation around Z in radians
//
// Returns:
//   - Quat: the unit rotation quaternion
func QuatFromEuler(pitch, yaw, roll float32) Quat {
	qx := QuatFromAxisAngle([3]float32{1, 0, 0}, pitch)
	qy := QuatFromAxisAngle([3]float32{0, 1, 0}, yaw)
	qz := QuatFromAxisAngle([3]float32{0, 0, 1}, roll)
	return qy.Mul(qx).Mul(qz).Normalize()
}

// Mul returns the Hamilton product q * r, which applies r first and then q.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Length returns the Euclidean norm of the quaternion.
func (q Quat) Length() float32 {
	return math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalize returns q scaled to unit length. A zero quaternion normalizes to the identity.
func (q Quat) Normalize() Quat {
	l := q.Length()
	if l == 0 {
		return QuatIdentity()
	}
	return Quat{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

// Conjugate returns the conjugate of q, which is its inverse when q is unit length.
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Rotate applies the rotation to a vector.
//
// Parameters:
//   - v: the vector to rotate
//
// Returns:
//   - [3]float32: the rotated vector
func (q Quat) Rotate(v [3]float32) [3]float32 {
	// t = 2 * cross(q.xyz, v); v' = v + w*t + cross(q.xyz, t)
	tx := 2 * (q.Y*v[2] - q.Z*v[1])
	ty := 2 * (q.Z*v[0] - q.X*v[2])
	tz := 2 * (q.X*v[1] - q.Y*v[0])
	return [3]float32{
		v[0] + q.W*tx + (q.Y*tz - q.Z*ty),
		v[1] + q.W*ty + (q.Z*tx - q.X*tz),
		v[2] + q.W*tz + (q.X*ty - q.Y*tx),
	}
}

// Matrix writes the 4x4 rotation matrix of q into out in column-major order.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
func (q Quat) Matrix(out []float32) {
	xx, yy, zz := q.X*q.X, q.Y*q.Y, q.Z*q.Z
	xy, xz, yz := q.X*q.Y, q.X*q.Z, q.Y*q.Z
	wx, wy, wz := q.W*q.X, q.W*q.Y, q.W*q.Z

	out[0] = 1 - 2*(yy+zz)
	out[1] = 2 * (xy + wz)
	out[2] = 2 * (xz - wy)
	out[3] = 0

	out[4] = 2 * (xy - wz)
	out[5] = 1 - 2*(xx+zz)
	out[6] = 2 * (yz + wx)
	out[7] = 0

	out[8] = 2 * (xz + wy)
	out[9] = 2 * (yz - wx)
	out[10] = 1 - 2*(xx+yy)
	out[11] = 0

	out[12], out[13], out[14], out[15] = 0, 0, 0, 1
}
