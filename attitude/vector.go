// Package attitude implements the attitude kinematics kernel: the
// skew-symmetric hat/vee maps, SO(3) exponential and logarithm, axis
// rotations, quaternion/DCM conversion, and the SO(3) tracking error used
// by the guidance package.
package attitude

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const tol = 1e-12

// Norm returns the Euclidean norm of a 3-vector.
func Norm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Unit returns the unit vector of v, or the zero vector if v is ~0.
func Unit(v [3]float64) [3]float64 {
	n := Norm(v)
	if floats.EqualWithinAbs(n, 0, tol) {
		return [3]float64{}
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

// Dot returns the inner product of a and b.
func Dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross returns a × b.
func Cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Add returns a+b.
func Add(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub returns a-b.
func Sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale returns s*a.
func Scale(s float64, a [3]float64) [3]float64 {
	return [3]float64{s * a[0], s * a[1], s * a[2]}
}
