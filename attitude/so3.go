package attitude

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Mat3 is a 3x3 matrix stored row-major, used for rotation matrices (SO(3))
// and their generators (so(3)). Value semantics: copying a Mat3 copies the
// matrix, unlike a mat.Dense pointer.
type Mat3 [3][3]float64

// Identity3 returns the 3x3 identity.
func Identity3() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Hat returns the skew-symmetric cross-product matrix of v, i.e. the so(3)
// element such that Hat(v).MulVec(w) == Cross(v, w).
func Hat(v [3]float64) Mat3 {
	return Mat3{
		{0, -v[2], v[1]},
		{v[2], 0, -v[0]},
		{-v[1], v[0], 0},
	}
}

// Vee is the inverse of Hat: extracts the axial vector of a skew-symmetric
// matrix. Vee(Hat(v)) == v for any v; Hat(Vee(M)) == M for any skew M.
func Vee(m Mat3) [3]float64 {
	return [3]float64{m[2][1], m[0][2], m[1][0]}
}

// MulVec returns m*v.
func (m Mat3) MulVec(v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

// Mul returns m*n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += m[i][k] * n[k][j]
			}
			r[i][j] = s
		}
	}
	return r
}

// Add returns m+n.
func (m Mat3) Add(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] + n[i][j]
		}
	}
	return r
}

// Sub returns m-n.
func (m Mat3) Sub(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] - n[i][j]
		}
	}
	return r
}

// Scale returns s*m.
func (m Mat3) Scale(s float64) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = s * m[i][j]
		}
	}
	return r
}

// T returns the transpose of m.
func (m Mat3) T() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[j][i] = m[i][j]
		}
	}
	return r
}

// Trace returns the sum of the diagonal elements of m.
func (m Mat3) Trace() float64 {
	return m[0][0] + m[1][1] + m[2][2]
}

// Det returns the determinant of m.
func (m Mat3) Det() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// FrobeniusNorm returns ||m||_F.
func (m Mat3) FrobeniusNorm() float64 {
	var s float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s += m[i][j] * m[i][j]
		}
	}
	return math.Sqrt(s)
}

// R1 is the axis rotation about the 1st (x) axis, mapping vectors expressed
// in the rotated frame to the unrotated one.
func R1(theta float64) Mat3 {
	s, c := math.Sincos(theta)
	return Mat3{{1, 0, 0}, {0, c, -s}, {0, s, c}}
}

// R2 is the axis rotation about the 2nd (y) axis.
func R2(theta float64) Mat3 {
	s, c := math.Sincos(theta)
	return Mat3{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}
}

// R3 is the axis rotation about the 3rd (z) axis. Used for the asteroid's
// body-to-inertial rotation Ra(t) = R3(Ωt).
func R3(theta float64) Mat3 {
	s, c := math.Sincos(theta)
	return Mat3{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

// Exp is the SO(3) exponential map: given an axis-angle vector phi (so(3),
// expressed as its Vee-extracted axial vector), returns the rotation matrix
// via the Rodrigues formula.
func Exp(phi [3]float64) Mat3 {
	theta := Norm(phi)
	if theta < tol {
		return Identity3()
	}
	k := Scale(1/theta, phi)
	khat := Hat(k)
	s, c := math.Sincos(theta)
	return Identity3().Add(khat.Scale(s)).Add(khat.Mul(khat).Scale(1 - c))
}

// Log is the SO(3) logarithm, the inverse of Exp: returns the axis-angle
// vector phi such that Exp(phi) == R (up to the usual 2π ambiguity and the
// π singularity, handled by falling back to the symmetric-part extraction).
func Log(r Mat3) [3]float64 {
	cosTheta := (r.Trace() - 1) / 2
	cosTheta = math.Max(-1, math.Min(1, cosTheta))
	theta := math.Acos(cosTheta)
	if theta < tol {
		return [3]float64{}
	}
	if math.Pi-theta < 1e-6 {
		// Near the π singularity, 1/sin(theta) blows up; extract the axis
		// from the symmetric part of R instead (±ambiguity resolved by the
		// largest-magnitude diagonal term of R+I).
		rpi := r.Add(Identity3())
		k := 0
		if rpi[1][1] > rpi[k][k] {
			k = 1
		}
		if rpi[2][2] > rpi[k][k] {
			k = 2
		}
		nk := math.Sqrt(math.Max(0, rpi[k][k]/2))
		var axis [3]float64
		for j := 0; j < 3; j++ {
			axis[j] = (rpi[k][j] + rpi[j][k]) / (4 * nk)
		}
		return Scale(theta, Unit(axis))
	}
	v := Vee(r.Sub(r.T()))
	return Scale(theta/(2*math.Sin(theta)), v)
}

// Reorthonormalize projects r onto SO(3) via the polar decomposition
// R' = U V^T (from the SVD R = U S V^T), per §4.1's numerical policy:
// applied whenever ||R^T R - I||_F exceeds 1e-6.
func Reorthonormalize(r Mat3) Mat3 {
	if r.T().Mul(r).Sub(Identity3()).FrobeniusNorm() <= 1e-6 {
		return r
	}
	var d mat.Dense
	d.CloneFrom(mat3ToDense(r))
	var svd mat.SVD
	ok := svd.Factorize(&d, mat.SVDFull)
	if !ok {
		return r
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	var ortho mat.Dense
	ortho.Mul(&u, v.T())
	out := denseToMat3(&ortho)
	if out.Det() < 0 {
		// Flip the smallest singular vector's sign to keep det=+1.
		var flip mat.Dense
		flip.CloneFrom(&v)
		for i := 0; i < 3; i++ {
			flip.Set(i, 2, -flip.At(i, 2))
		}
		ortho.Mul(&u, flip.T())
		out = denseToMat3(&ortho)
	}
	return out
}

func mat3ToDense(m Mat3) *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, m[i][j])
		}
	}
	return d
}

func denseToMat3(d *mat.Dense) Mat3 {
	var m Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = d.At(i, j)
		}
	}
	return m
}

// TrackingError computes the SO(3) attitude tracking error pair used by the
// geometric controller (§4.1/§4.7):
//
//	e_R = ½ (R_d^T R − R^T R_d)^∨
//	e_ω = ω − R^T R_d ω_d
func TrackingError(r, rd Mat3, omega, omegaDes [3]float64) (eR, eOmega [3]float64) {
	skew := rd.T().Mul(r).Sub(r.T().Mul(rd))
	eR = Scale(0.5, Vee(skew))
	eOmega = Sub(omega, r.T().Mul(rd).MulVec(omegaDes))
	return
}
