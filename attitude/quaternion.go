package attitude

import "math"

// Quaternion is a scalar-first unit quaternion [q0, q1, q2, q3] representing
// the same rotation as a Mat3: DCMFromQuaternion(q).MulVec(v) ==
// QuaternionFromDCM round-trips to within 1e-12 per §8 invariant 9.
type Quaternion [4]float64

// QuaternionFromDCM converts a direction-cosine (rotation) matrix to its
// quaternion representation using Shepperd's method, which picks the
// numerically best of the four equivalent formulas based on the largest
// diagonal term.
func QuaternionFromDCM(r Mat3) Quaternion {
	tr := r.Trace()
	var q Quaternion
	switch {
	case tr > r[0][0] && tr > r[1][1] && tr > r[2][2]:
		q[0] = 0.5 * math.Sqrt(1+tr)
		f := 0.25 / q[0]
		q[1] = (r[2][1] - r[1][2]) * f
		q[2] = (r[0][2] - r[2][0]) * f
		q[3] = (r[1][0] - r[0][1]) * f
	case r[0][0] > r[1][1] && r[0][0] > r[2][2]:
		q[1] = 0.5 * math.Sqrt(1+r[0][0]-r[1][1]-r[2][2])
		f := 0.25 / q[1]
		q[0] = (r[2][1] - r[1][2]) * f
		q[2] = (r[0][1] + r[1][0]) * f
		q[3] = (r[0][2] + r[2][0]) * f
	case r[1][1] > r[2][2]:
		q[2] = 0.5 * math.Sqrt(1-r[0][0]+r[1][1]-r[2][2])
		f := 0.25 / q[2]
		q[0] = (r[0][2] - r[2][0]) * f
		q[1] = (r[0][1] + r[1][0]) * f
		q[3] = (r[1][2] + r[2][1]) * f
	default:
		q[3] = 0.5 * math.Sqrt(1-r[0][0]-r[1][1]+r[2][2])
		f := 0.25 / q[3]
		q[0] = (r[1][0] - r[0][1]) * f
		q[1] = (r[0][2] + r[2][0]) * f
		q[2] = (r[1][2] + r[2][1]) * f
	}
	return q.normalize()
}

// DCMFromQuaternion converts a unit quaternion to its rotation matrix.
func DCMFromQuaternion(q Quaternion) Mat3 {
	q = q.normalize()
	w, x, y, z := q[0], q[1], q[2], q[3]
	return Mat3{
		{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	}
}

func (q Quaternion) normalize() Quaternion {
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if n < tol {
		return Quaternion{1, 0, 0, 0}
	}
	return Quaternion{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}
