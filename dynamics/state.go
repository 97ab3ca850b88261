// Package dynamics assembles the dumbbell's equations of motion (§4.6):
// two point masses under the polyhedron gravity field, in either the
// inertial or asteroid-rotating frame, plus the control wrench supplied by
// the guidance package.
package dynamics

import (
	"fmt"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
)

// State is the packed 18-element dumbbell state (§3): position, velocity,
// attitude (row-major 3x3), body angular velocity. A fixed-size array, not
// a slice, so that assignment is a value copy, matching the ownership
// model of §5 (the integrator never aliases a caller's State).
type State [18]float64

// NewState packs p, v, R, omega into a State.
func NewState(p, v [3]float64, r attitude.Mat3, omega [3]float64) State {
	var s State
	copy(s[0:3], p[:])
	copy(s[3:6], v[:])
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s[6+3*i+j] = r[i][j]
		}
	}
	copy(s[15:18], omega[:])
	return s
}

// Position returns p.
func (s State) Position() [3]float64 { return [3]float64{s[0], s[1], s[2]} }

// Velocity returns v.
func (s State) Velocity() [3]float64 { return [3]float64{s[3], s[4], s[5]} }

// Attitude returns R, reassembled from the packed row-major block.
func (s State) Attitude() attitude.Mat3 {
	var r attitude.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = s[6+3*i+j]
		}
	}
	return r
}

// AngularVelocity returns the body angular velocity omega.
func (s State) AngularVelocity() [3]float64 { return [3]float64{s[15], s[16], s[17]} }

// WithPosition returns a copy of s with position replaced.
func (s State) WithPosition(p [3]float64) State {
	out := s
	copy(out[0:3], p[:])
	return out
}

// WithAttitude returns a copy of s with attitude replaced, e.g. after the
// §4.1 re-orthonormalization policy runs at an output tick.
func (s State) WithAttitude(r attitude.Mat3) State {
	out := s
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[6+3*i+j] = r[i][j]
		}
	}
	return out
}

// Slice returns s as a []float64 for integrators that operate on slices
// (§4.8's dopri driver). The returned slice does not alias s.
func (s State) Slice() []float64 {
	out := make([]float64, 18)
	copy(out, s[:])
	return out
}

// FromSlice builds a State from an 18-element slice, as returned by the
// integrator after a successful step.
func FromSlice(v []float64) (State, error) {
	var s State
	if len(v) != 18 {
		return s, fmt.Errorf("dynamics: state slice has length %d, want 18", len(v))
	}
	copy(s[:], v)
	return s, nil
}

// OrthonormalityError returns ||R^T R - I||_F, the quantity the §4.1
// re-orthonormalization policy and §8 invariant 1 both test against.
func (s State) OrthonormalityError() float64 {
	r := s.Attitude()
	diff := r.T().Mul(r).Sub(attitude.Identity3())
	return diff.FrobeniusNorm()
}

// Reorthonormalized returns s with its attitude block polar-projected back
// onto SO(3) if drift exceeds the §4.1 threshold of 1e-6; otherwise s is
// returned unchanged.
func (s State) Reorthonormalized() State {
	if s.OrthonormalityError() <= 1e-6 {
		return s
	}
	return s.WithAttitude(attitude.Reorthonormalize(s.Attitude()))
}
