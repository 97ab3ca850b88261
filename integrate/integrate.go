// Package integrate implements the stiff ODE driver of §4.8: the outer
// loop ticks at fixed 1 s integer time steps; internally the integrator
// takes as many adaptive substeps as its tolerances require.
package integrate

import (
	"errors"
	"fmt"

	kitlog "github.com/go-kit/kit/log"
	"github.com/ready-steady/ode/dopri"

	"github.com/BlenderCN-Org/asteroid-dumbbell/dynamics"
)

// ErrDiverged wraps a failed dopri step (§7: "states that fail convergence
// ... terminate the current phase").
var ErrDiverged = errors.New("integrate: step did not converge")

// ControlFunc closes the loop each substep: given time and the current
// state, it returns the control wrench the guidance controller commands.
// The orchestrator supplies one backed by guidance.Controller; dynamics
// itself never calls back into guidance (§9's single right-hand-side
// signature).
type ControlFunc func(t float64, x dynamics.State) dynamics.Wrench

// Driver wraps github.com/ready-steady/ode/dopri's adaptive
// Dormand-Prince integrator with the §4.8 tolerance contract.
type Driver struct {
	AbsTol, RelTol float64
	logger         kitlog.Logger
}

// New builds a Driver with the given tolerances (§4.8 default 1e-9/1e-9).
func New(absTol, relTol float64, logger kitlog.Logger) *Driver {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Driver{AbsTol: absTol, RelTol: relTol, logger: kitlog.With(logger, "subsys", "integrate")}
}

// Step advances state x0 at time t0 by dt (typically the §4.8 1 s tick),
// subdividing internally as dopri's error controller requires. The
// right-hand side is the EOM of cfg plus the wrench control returns at
// each substep; both are deterministic and side-effect free, so the
// orchestrator's raycast/reconstruct pass runs only once, after Step
// returns (§4.8).
func (d *Driver) Step(cfg dynamics.Config, control ControlFunc, x0 dynamics.State, t0, dt float64) (dynamics.State, error) {
	// dopri's Compute takes no explicit start time: it integrates from an
	// implicit x=0 through each requested point in xs. Each Step therefore
	// runs its own zero-based integration and maps the relative variable
	// back to the mission clock via t0 before calling into dynamics.
	rhs := func(relT float64, y, f []float64) {
		x, err := dynamics.FromSlice(y)
		if err != nil {
			// dopri only ever hands back a slice of the length we gave it;
			// a mismatch here means a library-internal inconsistency.
			panic(fmt.Sprintf("integrate: %v", err))
		}
		t := t0 + relT
		u := control(t, x)
		dx := dynamics.Derivative(cfg, t, x, u)
		copy(f, dx[:])
	}

	// AbsTolerance/RelTolerance are dopri's documented Config fields for
	// the Dormand-Prince error controller; DefaultConfig supplies sane
	// step-count and order bounds around them.
	conf := dopri.DefaultConfig()
	conf.AbsTolerance = d.AbsTol
	conf.RelTolerance = d.RelTol
	integrator, err := dopri.New(conf)
	if err != nil {
		return dynamics.State{}, fmt.Errorf("integrate: %w", err)
	}

	xs := []float64{dt}
	values, _, err := integrator.Compute(rhs, x0.Slice(), xs)
	if err != nil {
		d.logger.Log("level", "error", "subsys", "integrate", "t", t0, "err", err)
		return dynamics.State{}, fmt.Errorf("integrate: %w: %w", ErrDiverged, err)
	}

	out, err := dynamics.FromSlice(values[len(values)-18:])
	if err != nil {
		return dynamics.State{}, fmt.Errorf("integrate: %w", err)
	}
	return out.Reorthonormalized(), nil
}
