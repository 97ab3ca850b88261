package lidar

import (
	"math"
	"testing"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"gonum.org/v1/gonum/floats"
)

func TestNewReorthogonalizesUpAxis(t *testing.T) {
	view := [3]float64{1, 0, 0}
	up := [3]float64{1, 1, 0} // not perpendicular to view
	h, err := New(view, up, math.Pi/6, math.Pi/6, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if d := attitude.Dot(h.ViewAxis, h.UpAxis); math.Abs(d) > 1e-9 {
		t.Fatalf("view . up = %e, want 0", d)
	}
	if n := attitude.Norm(h.UpAxis); !floats.EqualWithinAbs(n, 1, 1e-9) {
		t.Fatalf("up axis not unit length: %f", n)
	}
}

func TestNewRejectsParallelAxes(t *testing.T) {
	if _, err := New([3]float64{0, 0, 1}, [3]float64{0, 0, 2}, 0.1, 0.1, 2, 0); err == nil {
		t.Fatal("expected error for parallel view/up axes")
	}
}

func TestDirectionsAreUnitAndSymmetric(t *testing.T) {
	h, err := New([3]float64{0, 0, 1}, [3]float64{0, 1, 0}, math.Pi/4, math.Pi/4, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	dirs := h.Directions()
	if len(dirs) != 16 {
		t.Fatalf("expected 16 directions, got %d", len(dirs))
	}
	for _, d := range dirs {
		if n := attitude.Norm(d); !floats.EqualWithinAbs(n, 1, 1e-9) {
			t.Fatalf("direction %v not unit length", d)
		}
	}
	// The middle entry of the flattened grid (row n/2, first column) should
	// still be close to the view axis.
	center := dirs[len(dirs)/2]
	if attitude.Dot(center, h.ViewAxis) < 0.9 {
		t.Fatalf("center direction %v not close to view axis %v", center, h.ViewAxis)
	}
}

func TestDefineTargetsAlongViewAxis(t *testing.T) {
	h, err := New([3]float64{1, 0, 0}, [3]float64{0, 0, 1}, 0, 0, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	p := [3]float64{5, 0, 0}
	targets := h.DefineTargets(p, attitude.Identity3(), 2.0)
	want := [3]float64{7, 0, 0}
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(targets[0][i], want[i], 1e-9) {
			t.Fatalf("target = %v, want %v", targets[0], want)
		}
	}
}

func TestSampleNoOpWithoutNoise(t *testing.T) {
	h, err := New([3]float64{1, 0, 0}, [3]float64{0, 0, 1}, 0.1, 0.1, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	pts := [][3]float64{{1, 0, 0}, {2, 0, 0}}
	out := h.Sample([3]float64{}, pts)
	for i := range pts {
		if out[i] != pts[i] {
			t.Fatalf("Sample mutated points with no noise configured: %v vs %v", out[i], pts[i])
		}
	}
}

func TestSampleWithNoisePerturbsAlongLineOfSight(t *testing.T) {
	h, err := New([3]float64{1, 0, 0}, [3]float64{0, 0, 1}, 0.1, 0.1, 2, 1e-3)
	if err != nil {
		t.Fatal(err)
	}
	origin := [3]float64{0, 0, 0}
	pts := [][3]float64{{10, 0, 0}}
	out := h.Sample(origin, pts)
	dir := attitude.Unit(attitude.Sub(pts[0], origin))
	noisyDir := attitude.Unit(attitude.Sub(out[0], origin))
	if attitude.Dot(dir, noisyDir) < 0.999 {
		t.Fatalf("noisy point %v strayed off line of sight %v", out[0], dir)
	}
}
