// Command dumbbell drives the asteroid-exploration dumbbell simulator
// end to end: load a named asteroid's true mesh, seed an estimate, run
// the explore/refine/land mission FSM, and archive the result (§6).
// Argument parsing uses the standard library flag package, not a
// framework — §1 scopes CLI argument parsing out as an external
// collaborator, so only the minimal interface of §6 is implemented here.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	kitlog "github.com/go-kit/kit/log"

	"github.com/BlenderCN-Org/asteroid-dumbbell/archive"
	"github.com/BlenderCN-Org/asteroid-dumbbell/asteroid"
	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"github.com/BlenderCN-Org/asteroid-dumbbell/config"
	"github.com/BlenderCN-Org/asteroid-dumbbell/dynamics"
	"github.com/BlenderCN-Org/asteroid-dumbbell/lidar"
	"github.com/BlenderCN-Org/asteroid-dumbbell/mesh"
	"github.com/BlenderCN-Org/asteroid-dumbbell/orchestrator"
	"github.com/BlenderCN-Org/asteroid-dumbbell/raycast"
	"github.com/BlenderCN-Org/asteroid-dumbbell/reconstruct"
)

// Exit codes per §6/§7: 0 success, 1 unknown asteroid, 2 integrator
// divergence, 3 archive missing or malformed.
const (
	exitOK = iota
	exitUnknownAsteroid
	exitDiverged
	exitArchiveError
)

var (
	mode = ""

	// Cosmetic flags with no plotting collaborator in this repo (§1);
	// accepted for interface compatibility with §6 and otherwise unused.
	moveCam       = ""
	meshWeight    = false
	show          = false
	magnification = 0.0
)

func init() {
	flag.StringVar(&mode, "mode", "explore", "explore|refine|land|reconstruct|volume|uncertainty|state")
	flag.StringVar(&moveCam, "move_cam", "", "cosmetic, unused (no plotting collaborator)")
	flag.BoolVar(&meshWeight, "mesh_weight", false, "cosmetic, unused (no plotting collaborator)")
	flag.BoolVar(&show, "show", false, "cosmetic, unused (no plotting collaborator)")
	flag.Float64Var(&magnification, "magnification", 1.0, "cosmetic, unused (no plotting collaborator)")
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()
	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: dumbbell [flags] <archive_path> <asteroid_name>")
		flag.PrintDefaults()
		return exitUnknownAsteroid
	}
	archivePath, name := args[0], args[1]

	logger := kitlog.NewLogfmtLogger(os.Stderr)
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	logCosmeticFlags(logger)

	seed, err := asteroid.SeedParamsFor(name)
	if err != nil {
		logger.Log("level", "error", "msg", err)
		return exitUnknownAsteroid
	}

	// Mesh ingestion is an external collaborator per §1; this binary's
	// one convention is data/<name>.obj relative to the working
	// directory, following §6's Wavefront OBJ subset.
	objPath := filepath.Join("data", name+".obj")
	f, err := os.Open(objPath)
	if err != nil {
		logger.Log("level", "error", "msg", fmt.Sprintf("could not open mesh %s", objPath), "err", err)
		return exitArchiveError
	}
	trueMesh, err := mesh.Load(f)
	f.Close()
	if err != nil {
		logger.Log("level", "error", "msg", "malformed OBJ mesh", "err", err)
		return exitArchiveError
	}

	const mu, rho, omega = 0.01, 2100, 0.0003
	trueAst, err := asteroid.New(name, trueMesh, mu, rho, omega)
	if err != nil {
		logger.Log("level", "error", "msg", "asteroid construction failed", "err", err)
		return exitArchiveError
	}

	a, _, _ := trueAst.Axes()
	maxAngle := seed.MaxAngle(a)
	subdiv := 2
	if maxAngle > 0 && maxAngle < 0.1 {
		subdiv = 3 // finer seed mesh for small target angles
	}
	seedMesh := mesh.Ellipsoid(a*1.05, a*1.05*0.8, a*1.05*0.8, subdiv)
	estimate, err := reconstruct.New(seedMesh, 1.0)
	if err != nil {
		logger.Log("level", "error", "msg", "estimate mesh construction failed", "err", err)
		return exitArchiveError
	}

	dum, err := dynamics.NewDumbbell(100, 100, 0.001)
	if err != nil {
		logger.Log("level", "error", "msg", "dumbbell construction failed", "err", err)
		return exitArchiveError
	}

	cfg := config.Load(logger)
	caster := raycast.New(trueMesh)
	head, err := lidar.New([3]float64{-1, 0, 0}, [3]float64{0, 0, 1}, cfg.Lidar.FOVx, cfg.Lidar.FOVy, cfg.Lidar.Grid, 0)
	if err != nil {
		logger.Log("level", "error", "msg", "lidar head construction failed", "err", err)
		return exitArchiveError
	}

	store, err := archive.NewFileStore(archivePath)
	if err != nil {
		logger.Log("level", "error", "msg", "could not open archive", "err", err)
		return exitArchiveError
	}
	defer store.Close()

	p0 := [3]float64{2 * a, 0, 0}
	v0 := [3]float64{0, 0, 0}
	x0 := dynamics.NewState(p0, v0, attitude.Identity3(), [3]float64{})
	site := [3]float64{seed.MaxRadius, 0, 0}
	candidates := explorationShell(seed.MaxDistance)

	mission := orchestrator.New(trueAst, estimate, dum, caster, head, store, cfg, site, candidates, x0, logger)

	switch mode {
	case "explore", "refine", "land":
		if err := runUntilPhase(mission, mode); err != nil {
			logger.Log("level", "error", "msg", "mission aborted", "err", err)
			return exitDiverged
		}
	case "reconstruct", "volume", "uncertainty", "state":
		if err := mission.Run(context.Background()); err != nil {
			logger.Log("level", "error", "msg", "mission aborted", "err", err)
			return exitDiverged
		}
		report(logger, mission, mode)
	default:
		fmt.Fprintf(os.Stderr, "unknown -mode %q\n", mode)
		return exitUnknownAsteroid
	}

	return exitOK
}

// runUntilPhase runs the FSM one phase at a time, stopping once the named
// phase has completed (inclusive), rather than racing straight through to
// PhaseDone — the explore/refine/land modes of §6 are meant to exercise
// one phase at a time.
func runUntilPhase(m *orchestrator.Mission, phaseName string) error {
	target := map[string]orchestrator.Phase{"explore": orchestrator.PhaseExplore, "refine": orchestrator.PhaseRefine, "land": orchestrator.PhaseLand}[phaseName]
	for m.Phase() <= target && m.Phase() != orchestrator.PhaseDone {
		if err := m.AdvancePhase(context.Background()); err != nil {
			return err
		}
	}
	return nil
}

// report prints the requested summary once a full mission run has
// completed.
func report(logger kitlog.Logger, m *orchestrator.Mission, mode string) {
	switch mode {
	case "state":
		s := m.State()
		logger.Log("level", "info", "mode", mode, "t", m.T(), "p", fmt.Sprintf("%v", s.Position()), "v", fmt.Sprintf("%v", s.Velocity()))
	case "reconstruct":
		logger.Log("level", "info", "mode", mode, "vertices", m.Estimate.NumVertices())
	case "uncertainty":
		var sum float64
		for i := 0; i < m.Estimate.NumVertices(); i++ {
			sum += m.Estimate.Weight(i)
		}
		logger.Log("level", "info", "mode", mode, "mean_weight", sum/float64(m.Estimate.NumVertices()))
	case "volume":
		logger.Log("level", "info", "mode", mode, "faces", m.Estimate.M.NumFaces())
	}
}

func logCosmeticFlags(logger kitlog.Logger) {
	if moveCam != "" || meshWeight || show || magnification != 1.0 {
		logger.Log("level", "debug", "msg", "cosmetic flags accepted but have no effect (no plotting collaborator in this repo)",
			"move_cam", moveCam, "mesh_weight", meshWeight, "show", show, "magnification", magnification)
	}
}

// explorationShell returns a coarse set of unit-sphere candidate
// directions scaled to maxDistance's order of magnitude, used to seed
// guidance.Params.Candidates for the Explore mode (§4.7).
func explorationShell(maxDistance float64) [][3]float64 {
	dirs := [][3]float64{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
		{0.577, 0.577, 0.577}, {0.577, -0.577, 0.577}, {-0.577, 0.577, 0.577}, {-0.577, -0.577, 0.577},
	}
	out := make([][3]float64, len(dirs))
	for i, d := range dirs {
		out[i] = [3]float64{d[0] * maxDistance, d[1] * maxDistance, d[2] * maxDistance}
	}
	return out
}
