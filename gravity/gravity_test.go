package gravity

import (
	"math"
	"testing"

	"github.com/BlenderCN-Org/asteroid-dumbbell/mesh"
)

// unitCube returns a 2x2x2 cube centered at the origin, faces wound so
// every normal points outward.
func unitCube(t *testing.T) *mesh.Mesh {
	t.Helper()
	v := [][3]float64{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	f := [][3]int{
		{0, 2, 1}, {0, 3, 2}, // bottom z=-1, outward -z
		{4, 5, 6}, {4, 6, 7}, // top z=1, outward +z
		{0, 1, 5}, {0, 5, 4}, // front y=-1, outward -y
		{1, 2, 6}, {1, 6, 5}, // right x=1, outward +x
		{2, 3, 7}, {2, 7, 6}, // back y=1, outward +y
		{3, 0, 4}, {3, 4, 7}, // left x=-1, outward -x
	}
	m := mesh.New(v, f)
	if err := m.Build(); err != nil {
		t.Fatal(err)
	}
	if ec := m.EulerCharacteristic(); ec != 2 {
		t.Fatalf("cube Euler characteristic = %d, want 2", ec)
	}
	return m
}

// TestLaplacianOutsideIsZero checks §8 invariant 3 (outside branch).
func TestLaplacianOutsideIsZero(t *testing.T) {
	m := unitCube(t)
	fl, err := New(m, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	res := fl.Evaluate([3]float64{100, 0, 0})
	if math.Abs(res.Laplacian) > 1e-6 {
		t.Fatalf("Laplacian outside = %e, want ~0", res.Laplacian)
	}
}

// TestLaplacianInsideIsMinusFourPiGRho checks §8 invariant 3 (inside
// branch): ∇²U = −4πGρ inside, ±1e-3.
func TestLaplacianInsideIsMinusFourPiGRho(t *testing.T) {
	m := unitCube(t)
	g, rho := 1.0, 2.0
	fl, err := New(m, g, rho)
	if err != nil {
		t.Fatal(err)
	}
	res := fl.Evaluate([3]float64{0, 0, 0})
	want := -4 * math.Pi * g * rho
	if math.Abs(res.Laplacian-want) > 1e-3 {
		t.Fatalf("Laplacian inside = %f, want %f", res.Laplacian, want)
	}
}

// TestGradientPointsInward is a sanity check: gravity at a point outside
// the body should pull back toward the body (negative radial component).
func TestGradientPointsInward(t *testing.T) {
	m := unitCube(t)
	fl, err := New(m, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	r := [3]float64{5, 0, 0}
	res := fl.Evaluate(r)
	if res.Grad[0] >= 0 {
		t.Fatalf("gradient x-component = %f, want negative (attractive)", res.Grad[0])
	}
}

// TestEvaluateSurvivesOnVertex exercises the §7 perturb-and-retry path: a
// field point placed exactly on a vertex must not panic or hang.
func TestEvaluateSurvivesOnVertex(t *testing.T) {
	m := unitCube(t)
	fl, err := New(m, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	res := fl.Evaluate(m.Vertices[0])
	if math.IsNaN(res.U) || math.IsInf(res.U, 0) {
		t.Fatalf("U at vertex = %v, want finite", res.U)
	}
}
