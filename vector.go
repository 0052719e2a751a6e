package nova

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector is a 2D vector. Arithmetic comes from mgl64 (Add, Sub, Mul, Dot,
// Len); the helpers below cover the 2D-only operations it lacks.
type Vector = mgl64.Vec2

// Mat2 is a 2x2 matrix in column-major order.
type Mat2 = mgl64.Mat2

func VectorZero() Vector {
	return Vector{}
}

/// 2D vector cross product analog.
/// The cross product of 2D vectors results in a 3D vector with only a z component.
/// This function returns the magnitude of the z value.
func cross(a, b Vector) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// crossSV is the cross product of a scalar (z axis) with a vector.
func crossSV(s float64, v Vector) Vector {
	return Vector{-s * v[1], s * v[0]}
}

func perp(v Vector) Vector {
	return Vector{-v[1], v[0]}
}

func rperp(v Vector) Vector {
	return Vector{v[1], -v[0]}
}

func neg(v Vector) Vector {
	return Vector{-v[0], -v[1]}
}

func lengthSq(v Vector) float64 {
	return v.Dot(v)
}

func distSq(a, b Vector) float64 {
	return lengthSq(b.Sub(a))
}

// normalize returns the unit vector of v, or the zero vector when v has no
// length. mgl64's Normalize divides by zero in that case.
func normalize(v Vector) Vector {
	l := v.Len()
	if l == 0 {
		return Vector{}
	}
	return v.Mul(1 / l)
}

func rotation(angle float64) Mat2 {
	return mgl64.Rotate2D(angle)
}

// rotate applies a rotation matrix to v.
func rotate(m Mat2, v Vector) Vector {
	return m.Mul2x1(v)
}

// unrotate applies the inverse of a rotation matrix to v.
func unrotate(m Mat2, v Vector) Vector {
	return m.Transpose().Mul2x1(v)
}

func nearlyEqual(a, b float64) bool {
	return mgl64.FloatEqualThreshold(a, b, NEARLY_EQUAL_THRESHOLD)
}

func vnearlyEqual(a, b Vector) bool {
	return a.ApproxEqualThreshold(b, NEARLY_EQUAL_THRESHOLD)
}

func clamp(f, min, max float64) float64 {
	return mgl64.Clamp(f, min, max)
}

func isFinite(v Vector) bool {
	return !math.IsNaN(v[0]) && !math.IsNaN(v[1]) && !math.IsInf(v[0], 0) && !math.IsInf(v[1], 0)
}
