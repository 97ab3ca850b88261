package orchestrator

import (
	"context"
	"testing"

	"github.com/BlenderCN-Org/asteroid-dumbbell/archive"
	"github.com/BlenderCN-Org/asteroid-dumbbell/asteroid"
	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"github.com/BlenderCN-Org/asteroid-dumbbell/config"
	"github.com/BlenderCN-Org/asteroid-dumbbell/dynamics"
	"github.com/BlenderCN-Org/asteroid-dumbbell/lidar"
	"github.com/BlenderCN-Org/asteroid-dumbbell/mesh"
	"github.com/BlenderCN-Org/asteroid-dumbbell/raycast"
	"github.com/BlenderCN-Org/asteroid-dumbbell/reconstruct"
)

func testMission(t *testing.T) (*Mission, *archive.MemStore) {
	t.Helper()
	trueMesh := mesh.Ellipsoid(0.3, 0.2, 0.2, 2)
	trueAst, err := asteroid.New("test-body", trueMesh, 0.01, 2100, 0.0003)
	if err != nil {
		t.Fatal(err)
	}

	seedMesh := mesh.Ellipsoid(0.35, 0.25, 0.25, 1)
	estimate, err := reconstruct.New(seedMesh, 1.0)
	if err != nil {
		t.Fatal(err)
	}

	dum, err := dynamics.NewDumbbell(100, 100, 0.001)
	if err != nil {
		t.Fatal(err)
	}

	caster := raycast.New(trueMesh)
	head, err := lidar.New([3]float64{-1, 0, 0}, [3]float64{0, 0, 1}, 0.2, 0.2, 3, 0)
	if err != nil {
		t.Fatal(err)
	}

	store := archive.NewMemStore()
	cfg := config.Default()
	cfg.Phases.ExploreHorizon = 3
	cfg.Phases.RefineHorizon = 2
	cfg.Phases.LandHorizon = 2

	p0 := [3]float64{1.5, 0, 0}
	v0 := [3]float64{0, 0.08, 0}
	x0 := dynamics.NewState(p0, v0, attitude.Identity3(), [3]float64{})

	candidates := [][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {-1, 0, 0}}
	site := [3]float64{0.3, -0.02, 0.2}

	m := New(trueAst, estimate, dum, caster, head, store, cfg, site, candidates, x0, nil)
	return m, store
}

func TestRunAdvancesThroughAllPhasesToDone(t *testing.T) {
	m, store := testMission(t)
	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if m.Phase() != PhaseDone {
		t.Fatalf("phase after Run = %v, want PhaseDone", m.Phase())
	}
	wantTicks := 3 + 2 + 2
	if len(store.Ticks) != wantTicks {
		t.Fatalf("archived %d ticks, want %d", len(store.Ticks), wantTicks)
	}
	if store.Params.AsteroidName != "test-body" {
		t.Fatalf("archived params asteroid name = %q, want test-body", store.Params.AsteroidName)
	}
}

func TestRunRecordsPhaseLabelsInOrder(t *testing.T) {
	m, store := testMission(t)
	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	wantPhases := []string{"explore", "explore", "explore", "refine", "refine", "land", "land"}
	if len(store.Ticks) != len(wantPhases) {
		t.Fatalf("archived %d ticks, want %d", len(store.Ticks), len(wantPhases))
	}
	for i, want := range wantPhases {
		if store.Ticks[i].Mode != want {
			t.Fatalf("tick %d phase = %q, want %q", i, store.Ticks[i].Mode, want)
		}
	}
}

func TestRunAdvancesMissionClock(t *testing.T) {
	m, _ := testMission(t)
	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if m.T() != 7 {
		t.Fatalf("mission clock after Run = %f, want 7", m.T())
	}
}
