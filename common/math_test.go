package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func assertVec3(t *testing.T, want, got [3]float32) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], eps, "component %d", i)
	}
}

func TestMul4Identity(t *testing.T) {
	id := Identity4()
	m := make([]float32, 16)
	ComposeTRS(m, [3]float32{1, 2, 3}, QuatFromAxisAngle([3]float32{0, 1, 0}, 0.7), [3]float32{2, 2, 2})

	out := make([]float32, 16)
	Mul4(out, id[:], m)
	assert.True(t, ApproxEqual4(out, m, eps))
	Mul4(out, m, id[:])
	assert.True(t, ApproxEqual4(out, m, eps))
}

func TestComposeTRSIdentity(t *testing.T) {
	m := make([]float32, 16)
	ComposeTRS(m, [3]float32{}, QuatIdentity(), [3]float32{1, 1, 1})
	id := Identity4()
	assert.True(t, ApproxEqual4(m, id[:], eps))
}

func TestComposeTRSOrder(t *testing.T) {
	// scale, then rotate 90 degrees around Z, then translate
	m := make([]float32, 16)
	ComposeTRS(m, [3]float32{10, 0, 0}, QuatFromAxisAngle([3]float32{0, 0, 1}, math32.Pi/2), [3]float32{2, 1, 1})
	got := TransformPoint(m, [3]float32{1, 0, 0})
	assertVec3(t, [3]float32{10, 2, 0}, got)
}

func TestInvert4RoundTrip(t *testing.T) {
	m := make([]float32, 16)
	ComposeTRS(m, [3]float32{3, -4, 5}, QuatFromEuler(0.3, 1.1, -0.4), [3]float32{1, 2, 0.5})
	inv := make([]float32, 16)
	require.True(t, Invert4(inv, m))

	out := make([]float32, 16)
	Mul4(out, m, inv)
	id := Identity4()
	assert.True(t, ApproxEqual4(out, id[:], 1e-4))
}

func TestInvert4Singular(t *testing.T) {
	m := make([]float32, 16)
	ComposeTRS(m, [3]float32{}, QuatIdentity(), [3]float32{0, 1, 1})
	out := Identity4()
	assert.False(t, Invert4(out[:], m))
	id := Identity4()
	assert.Equal(t, id, out)
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := make([]float32, 16)
	Perspective(p, math32.Pi/4, 1, 0.1, 100)

	clip := func(z float32) float32 {
		// column-major: z' = p[2]x + p[6]y + p[10]z + p[14], w' = p[11]z + p[15]
		zc := p[10]*z + p[14]
		wc := p[11]*z + p[15]
		return zc / wc
	}
	assert.InDelta(t, 0, clip(-0.1), eps)
	assert.InDelta(t, 1, clip(-100), 1e-4)
}

func TestNormalMatrixUniformScaleKeepsDirection(t *testing.T) {
	m := make([]float32, 16)
	ComposeTRS(m, [3]float32{1, 1, 1}, QuatIdentity(), [3]float32{3, 3, 3})
	n := make([]float32, 16)
	NormalMatrix(n, m)
	d := Normalize3(TransformDirection(n, [3]float32{0, 1, 0}))
	assertVec3(t, [3]float32{0, 1, 0}, d)
}

func TestQuatRotateMatchesMatrix(t *testing.T) {
	q := QuatFromEuler(0.5, -0.25, 1.2)
	m := make([]float32, 16)
	q.Matrix(m)
	v := [3]float32{0.3, -2, 4}
	assertVec3(t, TransformDirection(m, v), q.Rotate(v))
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle([3]float32{0, 1, 0}, math32.Pi/2)
	b := QuatFromAxisAngle([3]float32{1, 0, 0}, math32.Pi/2)
	v := [3]float32{0, 0, 1}
	assertVec3(t, a.Rotate(b.Rotate(v)), a.Mul(b).Rotate(v))
}

func TestQuatConjugateInverts(t *testing.T) {
	q := QuatFromEuler(0.2, 0.9, -1.3)
	v := [3]float32{1, 2, 3}
	assertVec3(t, v, q.Conjugate().Rotate(q.Rotate(v)))
}

func TestQuatNormalize(t *testing.T) {
	assert.Equal(t, QuatIdentity(), Quat{}.Normalize())
	q := Quat{X: 0, Y: 0, Z: 2, W: 0}.Normalize()
	assert.InDelta(t, 1, q.Length(), eps)
}

func TestQuatFromZeroAxis(t *testing.T) {
	assert.Equal(t, QuatIdentity(), QuatFromAxisAngle([3]float32{}, 1))
}

func TestFrustumSphereVisible(t *testing.T) {
	proj := make([]float32, 16)
	Perspective(proj, math32.Pi/2, 1, 0.1, 100)
	f := ExtractFrustumFromMatrix(proj)

	assert.True(t, f.SphereVisible([3]float32{0, 0, -10}, 1))
	assert.False(t, f.SphereVisible([3]float32{0, 0, 10}, 1))
	assert.False(t, f.SphereVisible([3]float32{0, 0, -500}, 1))
	assert.True(t, f.SphereVisible([3]float32{0, 0, -100.5}, 1))

	// depth maps to [0, 1], so the near plane sits at z = -near
	assert.False(t, f.SphereVisible([3]float32{0, 0, -0.05}, 0.01))
	assert.InDelta(t, -0.1, f.Planes[4].Distance, 1e-4)
	assert.InDelta(t, -1, f.Planes[4].Normal[2], 1e-5)
}

func TestColorHelpers(t *testing.T) {
	c := RGB(1, 0.5, 0)
	assert.Equal(t, [4]float32{1, 0.5, 0, 1}, c.Array())
	assert.Equal(t, [3]float32{1, 0.5, 0}, c.RGB3())
	assert.Equal(t, Color{0.1, 0.2, 0.3, 0.4}, NewColor(0.1, 0.2, 0.3, 0.4))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
}
