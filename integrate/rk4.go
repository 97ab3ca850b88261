package integrate

import (
	"github.com/ChristopherRabotin/ode"

	"github.com/BlenderCN-Org/asteroid-dumbbell/dynamics"
)

// fixedStepCheck adapts a dynamics.Config/ControlFunc pair to
// github.com/ChristopherRabotin/ode's Integrable interface. It drives a
// fixed-step RK4 propagation used only as an independent cross-check
// against the adaptive dopri driver (§8 invariant 2's energy-drift test),
// never as the orchestrator's primary integrator.
type fixedStepCheck struct {
	cfg     dynamics.Config
	control ControlFunc
	state   dynamics.State
	t0, tf  float64
}

// Stop reports whether the propagation has reached tf.
func (c *fixedStepCheck) Stop(t float64) bool {
	return t >= c.tf
}

// GetState returns the current packed state as a plain slice.
func (c *fixedStepCheck) GetState() (s []float64) {
	return c.state.Slice()
}

// SetState installs the integrator's updated state after a successful
// step.
func (c *fixedStepCheck) SetState(t float64, s []float64) {
	x, err := dynamics.FromSlice(s)
	if err != nil {
		panic("integrate: rk4 cross-check received malformed state: " + err.Error())
	}
	c.state = x
}

// Func is the RK4 right-hand side: the same EOM dopri's adaptive driver
// evaluates, evaluated here at the fixed step given to CrossCheckRK4.
func (c *fixedStepCheck) Func(t float64, f []float64) (fDot []float64) {
	x, err := dynamics.FromSlice(f)
	if err != nil {
		panic("integrate: rk4 cross-check received malformed derivative input: " + err.Error())
	}
	u := c.control(t, x)
	dx := dynamics.Derivative(c.cfg, t, x, u)
	return dx[:]
}

// CrossCheckRK4 propagates x0 from t0 to tf with a fixed-step RK4
// integrator, independent of the adaptive dopri Driver, and returns the
// final state. Intended for validating dopri's result against a second
// method on the uncontrolled point-mass scenario (§8 invariant 2 / S1),
// not for production ticking.
func CrossCheckRK4(cfg dynamics.Config, control ControlFunc, x0 dynamics.State, t0, tf, stepSeconds float64) dynamics.State {
	a := &fixedStepCheck{cfg: cfg, control: control, state: x0, t0: t0, tf: tf}
	ode.NewRK4(t0, stepSeconds, a).Solve() // Blocking.
	return a.state.Reorthonormalized()
}
