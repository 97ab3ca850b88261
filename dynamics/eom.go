package dynamics

import (
	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"github.com/BlenderCN-Org/asteroid-dumbbell/gravity"
)

// Frame selects which form of §4.6's equations of motion Derivative
// assembles.
type Frame int

const (
	Inertial Frame = iota
	Rotating
)

// GravityField is the minimal interface Derivative needs from a gravity
// source: the polyhedron field (*gravity.Field) and the point-mass
// fallback (PointMass, §8 invariant 2 / scenario S1) both satisfy it. This
// keeps dynamics decoupled from the asteroid package — the orchestrator is
// the one place that wires a concrete asteroid.Asteroid.Field into a
// Config.
type GravityField interface {
	Evaluate(r [3]float64) gravity.Result
}

// Wrench is the control force/torque the guidance package closes the loop
// with (§4.7's u_f, u_m), expressed in the inertial frame (force) and body
// frame (torque).
type Wrench struct {
	Force, Torque [3]float64
}

// Config parameterizes the single EOM right-hand side of §9: which frame,
// which gravity field, the asteroid's body-to-world rotation at time t
// (identity for the rotating form), and its spin rate for the Coriolis-like
// terms of §4.6.
type Config struct {
	Frame      Frame
	Dumbbell   *Dumbbell
	Gravity    GravityField
	RotationAt func(t float64) attitude.Mat3 // inertial form only
	Omega      float64                       // rotating form only
}

// Derivative evaluates the §4.6 state derivative at time t for state x
// under control wrench u. The inertial form maps body-frame field points
// through Ra=R3(Ωt); the rotating form evaluates directly in the
// asteroid-fixed frame and adds the §4.6 Coriolis-like terms instead.
func Derivative(cfg Config, t float64, x State, u Wrench) State {
	p, v, r, omega := x.Position(), x.Velocity(), x.Attitude(), x.AngularVelocity()
	dum := cfg.Dumbbell

	ra := attitude.Identity3()
	if cfg.Frame == Inertial {
		ra = cfg.RotationAt(t)
	}

	z1 := ra.T().MulVec(attitude.Add(p, r.MulVec(dum.Zeta1)))
	z2 := ra.T().MulVec(attitude.Add(p, r.MulVec(dum.Zeta2)))
	res1 := cfg.Gravity.Evaluate(z1)
	res2 := cfg.Gravity.Evaluate(z2)

	f1 := attitude.Scale(dum.M1, ra.MulVec(res1.Grad))
	f2 := attitude.Scale(dum.M2, ra.MulVec(res2.Grad))

	m1 := attitude.Scale(dum.M1, attitude.Hat(dum.Zeta1).MulVec(r.T().MulVec(ra.MulVec(res1.Grad))))
	m2 := attitude.Scale(dum.M2, attitude.Hat(dum.Zeta2).MulVec(r.T().MulVec(ra.MulVec(res2.Grad))))

	accel := attitude.Scale(1/dum.Mass(), attitude.Add(attitude.Add(f1, f2), u.Force))
	if cfg.Frame == Rotating {
		omegaVec := [3]float64{0, 0, cfg.Omega}
		accel = attitude.Add(accel, attitude.Add(attitude.Hat(omegaVec).MulVec(p), attitude.Hat(omegaVec).MulVec(v)))
	}

	rDot := r.Mul(attitude.Hat(omega))

	torque := attitude.Add(attitude.Add(m1, m2), u.Torque)
	gyroscopic := attitude.Cross(omega, dum.J.MulVec(omega))
	omegaDot := dum.JInv.MulVec(attitude.Sub(torque, gyroscopic))

	return NewState(v, accel, rDot, omegaDot)
}

// GravityForce returns the combined inertial-frame gravity force F1+F2 on
// the two point masses at state x, time t, under cfg — the same quantity
// Derivative folds into accel, exposed separately so a controller can
// cancel it exactly (§4.7's u_f feedforward term) without duplicating the
// z1/z2 frame transform by hand.
func GravityForce(cfg Config, t float64, x State) [3]float64 {
	p, r := x.Position(), x.Attitude()
	dum := cfg.Dumbbell

	ra := attitude.Identity3()
	if cfg.Frame == Inertial {
		ra = cfg.RotationAt(t)
	}

	z1 := ra.T().MulVec(attitude.Add(p, r.MulVec(dum.Zeta1)))
	z2 := ra.T().MulVec(attitude.Add(p, r.MulVec(dum.Zeta2)))
	res1 := cfg.Gravity.Evaluate(z1)
	res2 := cfg.Gravity.Evaluate(z2)

	f1 := attitude.Scale(dum.M1, ra.MulVec(res1.Grad))
	f2 := attitude.Scale(dum.M2, ra.MulVec(res2.Grad))
	return attitude.Add(f1, f2)
}

// Energy returns the mechanical energy (kinetic + polyhedron potential,
// summed over both point masses) used by §8 invariant 2's drift check.
// Valid for the point-mass or polyhedron field evaluated directly in the
// frame x is expressed in (no Ra rotation, matching the uncontrolled
// two-body fallback of scenario S1).
func Energy(cfg Config, x State) float64 {
	p, v, r := x.Position(), x.Velocity(), x.Attitude()
	dum := cfg.Dumbbell
	z1 := attitude.Add(p, r.MulVec(dum.Zeta1))
	z2 := attitude.Add(p, r.MulVec(dum.Zeta2))
	res1 := cfg.Gravity.Evaluate(z1)
	res2 := cfg.Gravity.Evaluate(z2)
	kinetic := 0.5 * dum.Mass() * attitude.Dot(v, v)
	potential := dum.M1*res1.U + dum.M2*res2.U
	return kinetic + potential
}
