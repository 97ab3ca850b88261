// Package orchestrator drives the per-phase mission loop of §9: a
// finite-state machine {Explore → Refine → Land → Done}, transitioning on
// fixed horizons, with cancellation and rollback handled at the FSM
// boundary rather than mid-integration (§9's design note). Each tick
// wires together the raycaster, LIDAR head, reconstruction engine,
// guidance controller, and integrator that the rest of this module
// implements in isolation.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	kitlog "github.com/go-kit/kit/log"

	"github.com/BlenderCN-Org/asteroid-dumbbell/archive"
	"github.com/BlenderCN-Org/asteroid-dumbbell/asteroid"
	"github.com/BlenderCN-Org/asteroid-dumbbell/config"
	"github.com/BlenderCN-Org/asteroid-dumbbell/dynamics"
	"github.com/BlenderCN-Org/asteroid-dumbbell/guidance"
	"github.com/BlenderCN-Org/asteroid-dumbbell/integrate"
	"github.com/BlenderCN-Org/asteroid-dumbbell/lidar"
	"github.com/BlenderCN-Org/asteroid-dumbbell/raycast"
	"github.com/BlenderCN-Org/asteroid-dumbbell/reconstruct"
)

// Phase is a state of the §9 mission FSM.
type Phase int

const (
	PhaseExplore Phase = iota
	PhaseRefine
	PhaseLand
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseExplore:
		return "explore"
	case PhaseRefine:
		return "refine"
	case PhaseLand:
		return "land"
	default:
		return "done"
	}
}

// Mission owns every resource the §5 ownership model assigns to the
// orchestrator: the true asteroid (and its optional refinement-phase
// bumpy override, §8's supplemented feature), the running estimate mesh,
// the dumbbell rigid body, the controller, the ray caster, the LIDAR
// head, the integrator, and the archive.
type Mission struct {
	True        *asteroid.Asteroid
	RefineTrue  *asteroid.Asteroid // optional; nil reuses True during Refine
	Estimate    *reconstruct.Mesh
	Dumbbell    *dynamics.Dumbbell
	Controller  guidance.Controller
	Caster      *raycast.Caster
	Head        *lidar.Head
	Driver      *integrate.Driver
	Store       archive.Store
	Cfg         config.Config
	Site        [3]float64 // body-frame landing site, §8 scenario S6
	Candidates  [][3]float64
	logger      kitlog.Logger

	phase         Phase
	state         dynamics.State
	t             float64
	paramsWritten bool
}

// New builds a Mission starting in PhaseExplore at t=0 with x0.
func New(true_ *asteroid.Asteroid, estimate *reconstruct.Mesh, dum *dynamics.Dumbbell,
	caster *raycast.Caster, head *lidar.Head, store archive.Store, cfg config.Config,
	site [3]float64, candidates [][3]float64, x0 dynamics.State, logger kitlog.Logger) *Mission {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	gains := configuredGains(cfg, dum)
	return &Mission{
		True: true_, Estimate: estimate, Dumbbell: dum,
		Controller: guidance.Controller{Gains: gains},
		Caster:     caster, Head: head,
		Driver: integrate.New(cfg.AbsTol, cfg.RelTol, logger),
		Store:  store, Cfg: cfg, Site: site, Candidates: candidates,
		logger: kitlog.With(logger, "subsys", "orchestrator"),
		phase:  PhaseExplore, state: x0,
	}
}

// configuredGains uses cfg's controller gains where set, falling back to
// guidance.DefaultGains per-field for whichever of Kp/Kv/KR/Kw is left at
// its zero value (§4.11's config defaults all fields, but a Config built
// by hand, as in tests, may leave them unset).
func configuredGains(cfg config.Config, dum *dynamics.Dumbbell) guidance.Gains {
	def := guidance.DefaultGains(dum.Mass(), dum.J[1][1])
	g := guidance.Gains{Kp: cfg.Kp, Kv: cfg.Kv, KR: cfg.KR, Kw: cfg.Kw}
	if g.Kp == 0 {
		g.Kp = def.Kp
	}
	if g.Kv == 0 {
		g.Kv = def.Kv
	}
	if g.KR == 0 {
		g.KR = def.KR
	}
	if g.Kw == 0 {
		g.Kw = def.Kw
	}
	return g
}

// errHorizonReached names the end of a phase's horizon. runPhase does not
// return it: a phase that reaches its horizon ends with a nil error.
var errHorizonReached = errors.New("orchestrator: horizon reached")

// activeAsteroid returns the true asteroid driving gravity and raycasting
// for the current phase — the bumpy refinement override during
// PhaseRefine if one was supplied, else True throughout (§8 supplemented
// feature: initialize_refinement's true-mesh re-keying).
func (m *Mission) activeAsteroid() *asteroid.Asteroid {
	if m.phase == PhaseRefine && m.RefineTrue != nil {
		return m.RefineTrue
	}
	return m.True
}

// dynConfig builds the §4.6 EOM configuration for the current phase, in
// the asteroid-rotating frame (§9: the orchestrator always integrates in
// body coordinates so the raycaster never has to re-derive a rotating
// true mesh from an inertial state).
func (m *Mission) dynConfig() dynamics.Config {
	a := m.activeAsteroid()
	return dynamics.Config{Frame: dynamics.Rotating, Dumbbell: m.Dumbbell, Gravity: a.Field, Omega: a.Omega}
}

// phaseParams builds the guidance parameters for the current phase and
// tick time t (§4.7's Params, dispatched by Mode).
func (m *Mission) phaseParams(t float64) guidance.Params {
	switch m.phase {
	case PhaseExplore:
		return guidance.Params{
			Mode: guidance.Explore, Lambda: 0.1,
			ConeHalfAngle: m.Head.FOVx / 2, Candidates: m.Candidates,
		}
	case PhaseRefine:
		return guidance.Params{
			Mode: guidance.Refine, Site: m.Site, StandoffAngle: m.Head.FOVx / 2,
		}
	case PhaseLand:
		return guidance.Params{
			Mode: guidance.Land, T0: t, Tf: m.Cfg.Phases.LandHorizon,
			Handoff: m.state.Position(), Site: m.Site,
		}
	default:
		return guidance.Params{Mode: guidance.Circumnavigate, Tf: 1, Loops: 0, P0: m.state.Position()}
	}
}

// control closes the guidance loop for one integrator evaluation: the
// desired state is recomputed at the integrator's own internal time t, not
// frozen at the tick boundary, since dopri may evaluate the right-hand
// side at several internal substep times per 1 s tick (§4.8).
func (m *Mission) control(params guidance.Params, cfg dynamics.Config) integrate.ControlFunc {
	return func(t float64, x dynamics.State) dynamics.Wrench {
		d := guidance.Generate(params, m.Estimate, x.Position(), t)
		g := dynamics.GravityForce(cfg, t, x)
		return m.Controller.Control(m.Dumbbell, x, d, g)
	}
}

// sense runs the §4.3/§4.4/§4.5 measurement pipeline once, after a
// successful integration step lands at a new tick boundary: rotate the
// true mesh to world(t), cast the LIDAR grid against it, and fold the
// finite hits into the estimate.
func (m *Mission) sense(ctx context.Context) error {
	a := m.activeAsteroid()
	worldMesh := a.Mesh.Rotate(a.RotationAt(m.t))
	m.Caster.UpdateMesh(worldMesh)

	p, r := m.state.Position(), m.state.Attitude()
	targets := m.Head.DefineTargets(p, r, m.Cfg.Lidar.Range)
	hits := m.Caster.CastBatch(ctx, p, targets)
	noisy := m.Head.Sample(p, hits.Points)

	batch := make([]reconstruct.Measurement, 0, len(noisy))
	for i, pt := range noisy {
		if hits.FaceIndex[i] < 0 {
			continue
		}
		batch = append(batch, reconstruct.Measurement{Point: pt, Weight: 1})
	}
	if len(batch) == 0 {
		return nil
	}
	maxHalfAngle := m.Head.FOVx
	return m.Estimate.Update(ctx, batch, maxHalfAngle)
}

// horizonFor returns the current phase's horizon in seconds, per §4.11's
// configured per-phase durations.
func (m *Mission) horizonFor() float64 {
	switch m.phase {
	case PhaseExplore:
		return m.Cfg.Phases.ExploreHorizon
	case PhaseRefine:
		return m.Cfg.Phases.RefineHorizon
	case PhaseLand:
		return m.Cfg.Phases.LandHorizon
	default:
		return 0
	}
}

// runPhase ticks at fixed 1 s steps until the current phase's horizon is
// exhausted or a step fails to converge (§7: "states that fail
// convergence ... terminate the current phase"). phaseT0 is the mission
// time at which the phase starts; each completed tick is appended to the
// archive with its mission time and phase label.
func (m *Mission) runPhase(ctx context.Context, phaseT0 float64) error {
	horizon := m.horizonFor()
	cfg := m.dynConfig()
	params := m.phaseParams(phaseT0)
	const dt = 1.0

	for localT := 0.0; localT < horizon; localT += dt {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		control := m.control(params, cfg)
		next, err := m.Driver.Step(cfg, control, m.state, m.t, dt)
		if err != nil {
			m.logger.Log("level", "error", "phase", m.phase, "t", m.t, "err", err)
			return fmt.Errorf("orchestrator: %w", err)
		}
		m.state = next
		m.t += dt

		if err := m.sense(ctx); err != nil {
			return fmt.Errorf("orchestrator: sense: %w", err)
		}
		if err := m.Store.WriteTick(archive.Tick{T: m.t, Mode: m.phase.String(), State: m.state}); err != nil {
			return fmt.Errorf("orchestrator: %w", err)
		}
	}
	return nil
}

func (m *Mission) writeParamsOnce() error {
	if m.paramsWritten {
		return nil
	}
	if err := m.Store.WriteParams(archive.Params{
		AsteroidName: m.True.Name, Mu: m.True.Mu, Rho: m.True.Rho, Omega: m.True.Omega,
		AbsTol: m.Cfg.AbsTol, RelTol: m.Cfg.RelTol,
	}); err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	m.paramsWritten = true
	return nil
}

// AdvancePhase runs exactly the Mission's current phase to its horizon
// and transitions to the next one, or does nothing if the Mission is
// already PhaseDone. Lets cmd/dumbbell's explore/refine/land modes (§6)
// exercise one phase at a time instead of racing through to landing.
func (m *Mission) AdvancePhase(ctx context.Context) error {
	if m.phase == PhaseDone {
		return nil
	}
	if err := m.writeParamsOnce(); err != nil {
		return err
	}
	m.logger.Log("level", "info", "subsys", "orchestrator", "msg", "entering phase", "phase", m.phase)
	if err := m.runPhase(ctx, m.t); err != nil {
		return err
	}
	m.phase++
	return nil
}

// Run advances the FSM from whatever phase the Mission is currently in
// through PhaseDone, persisting one archive tick per successful
// integration step. On integrator divergence, Run returns the wrapped
// integrate.ErrDiverged after already having persisted every completed
// tick (§7's exit-code-2 contract; cmd/dumbbell maps the returned error to
// that exit code).
func (m *Mission) Run(ctx context.Context) error {
	for m.phase != PhaseDone {
		if err := m.AdvancePhase(ctx); err != nil {
			return err
		}
	}
	m.logger.Log("level", "info", "subsys", "orchestrator", "msg", "mission complete", "t", m.t)
	return nil
}

// Phase reports the Mission's current FSM state.
func (m *Mission) Phase() Phase { return m.phase }

// State reports the Mission's current dynamics state.
func (m *Mission) State() dynamics.State { return m.state }

// T reports the Mission's current mission-elapsed time, seconds.
func (m *Mission) T() float64 { return m.t }
