package guidance

import (
	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"github.com/BlenderCN-Org/asteroid-dumbbell/dynamics"
)

// Gains are the diagonal (here, scalar-times-identity) controller gains of
// §4.7.
type Gains struct {
	Kp, Kv, KR, Kw float64
}

// DefaultGains places the closed-loop translational and rotational poles
// at -ζωn with ζ=1 (critically damped) and ωn=0.2 rad/s (§4.7): for a
// second-order system M ë + kv ė + kp e = 0, kp=M ωn² and kv=2ζωnM. The
// rotational gains use the same formula against the dumbbell's nonzero
// transverse inertia (J is singular along body x, §9).
func DefaultGains(mass, inertiaScale float64) Gains {
	const zeta, omegaN = 1.0, 0.2
	return Gains{
		Kp: mass * omegaN * omegaN,
		Kv: 2 * zeta * omegaN * mass,
		KR: inertiaScale * omegaN * omegaN,
		Kw: 2 * zeta * omegaN * inertiaScale,
	}
}

// Controller closes the §4.7 Lee SE(3) geometric control loop: translational
// PD plus feedforward, rotational PD plus feedforward and gyroscopic
// compensation.
type Controller struct {
	Gains Gains
}

// Control computes (u_f, u_m) for dumbbell dum currently in state x
// tracking desired d, given the combined gravity force (F1+F2) as returned
// by dynamics.GravityForce (§4.7's control law has no corresponding
// gravity term in u_m).
func (c Controller) Control(dum *dynamics.Dumbbell, x dynamics.State, d Desired, gravityForce [3]float64) dynamics.Wrench {
	p, v := x.Position(), x.Velocity()
	r, omega := x.Attitude(), x.AngularVelocity()

	ep := attitude.Sub(p, d.P)
	ev := attitude.Sub(v, d.V)
	uf := attitude.Sub(
		attitude.Add(attitude.Scale(-c.Gains.Kp, ep), attitude.Scale(dum.Mass(), d.A)),
		attitude.Add(attitude.Scale(c.Gains.Kv, ev), gravityForce))

	eR, eOmega := attitude.TrackingError(r, d.R, omega, d.Omega)
	gyroscopic := attitude.Cross(omega, dum.J.MulVec(omega))
	rtRd := r.T().Mul(d.R)
	feedforward := dum.J.MulVec(attitude.Sub(
		attitude.Hat(omega).MulVec(rtRd.MulVec(d.Omega)),
		rtRd.MulVec(d.Alpha)))
	um := attitude.Sub(
		attitude.Add(attitude.Scale(-c.Gains.KR, eR), gyroscopic),
		attitude.Add(attitude.Scale(c.Gains.Kw, eOmega), feedforward))

	return dynamics.Wrench{Force: uf, Torque: um}
}
