// Package guidance implements the mode-polymorphic trajectory generators
// and the Lee SE(3) geometric controller of §4.7.
package guidance

import (
	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
)

// Desired is the controller's target state for one tick (§3): position,
// velocity, acceleration, attitude, angular velocity, and angular
// acceleration, all recomputed each tick.
type Desired struct {
	P, V, A      [3]float64
	R            attitude.Mat3
	Omega, Alpha [3]float64
}

// Mode is the tagged variant of §9: the guidance mode dispatches once per
// tick with no virtual hierarchy required.
type Mode int

const (
	Circumnavigate Mode = iota
	Lissajous
	Explore
	Refine
	Land
)

// Params bundles every mode's parameters; only the fields relevant to
// Params.Mode are read by Generate.
type Params struct {
	Mode Mode

	// Circumnavigate / Lissajous
	Tf     float64 // horizon, s
	Loops  float64
	T0     float64 // epoch at which P0/radius were captured
	P0     [3]float64

	// Explore
	Lambda        float64 // translational-effort penalty weight
	ConeHalfAngle float64 // sensor cone half-angle, rad
	Candidates    [][3]float64

	// Refine
	Site          [3]float64 // body-frame landing site
	StandoffAngle float64    // half sensor FOV used to size hover height

	// Land
	Handoff [3]float64
}

// AttitudeFromPointing completes a body-to-world attitude matrix whose
// +x axis points along forward, with the up reference aligned to world +z
// and re-orthogonalized against forward (§4.7's pointing/target attitude
// generator).
func AttitudeFromPointing(forward [3]float64) attitude.Mat3 {
	x := attitude.Unit(forward)
	zHint := [3]float64{0, 0, 1}
	if attitude.Norm(attitude.Cross(zHint, x)) < 1e-6 {
		zHint = [3]float64{0, 1, 0}
	}
	y := attitude.Unit(attitude.Cross(zHint, x))
	z := attitude.Cross(x, y)
	var r attitude.Mat3
	for i := 0; i < 3; i++ {
		r[i][0], r[i][1], r[i][2] = x[i], y[i], z[i]
	}
	return r
}
