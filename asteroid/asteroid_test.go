package asteroid

import (
	"math"
	"testing"

	"github.com/BlenderCN-Org/asteroid-dumbbell/mesh"
	"gonum.org/v1/gonum/floats"
)

func TestNewRejectsOpenMesh(t *testing.T) {
	v := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	f := [][3]int{{0, 1, 2}} // a single triangle, not closed
	m := mesh.New(v, f)
	if _, err := New("open", m, 1, 1, 0); err == nil {
		t.Fatal("expected error constructing an asteroid from a non-closed mesh")
	}
}

func TestRotationAtMatchesR3(t *testing.T) {
	m := mesh.Ellipsoid(1, 1, 1, 0)
	a, err := New("sphere", m, 1, 1, math.Pi/10)
	if err != nil {
		t.Fatal(err)
	}
	r := a.RotationAt(5.0)
	v := [3]float64{1, 0, 0}
	got := r.MulVec(v)
	theta := a.Omega * 5.0
	want := [3]float64{math.Cos(theta), math.Sin(theta), 0}
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(got[i], want[i], 1e-9) {
			t.Fatalf("RotationAt(5) * x = %v, want %v", got, want)
		}
	}
}

func TestAxesOfEllipsoid(t *testing.T) {
	m := mesh.Ellipsoid(2, 1, 0.5, 2)
	a, err := New("ellipsoid", m, 1, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	x, y, z := a.Axes()
	if !floats.EqualWithinAbs(x, 2, 0.05) || !floats.EqualWithinAbs(y, 1, 0.05) || !floats.EqualWithinAbs(z, 0.5, 0.05) {
		t.Fatalf("Axes() = (%f,%f,%f), want close to (2,1,0.5)", x, y, z)
	}
}

// TestNewScalesGravityCoefficientByVolume pins the regression this package
// is most at risk of: gravity.Field wants g such that g*rho == G*rho, and
// since the polyhedron sum integrates mesh geometry to a mass of
// rho*Volume, g must be mu/(rho*Volume), not mu/rho. A cube of side 2
// (Volume=8) with an arbitrary mu/rho split should produce the same
// interior Laplacian as gravity.New called directly with g=mu/(rho*8).
func TestNewScalesGravityCoefficientByVolume(t *testing.T) {
	v := [][3]float64{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	f := [][3]int{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{1, 2, 6}, {1, 6, 5},
		{2, 3, 7}, {2, 7, 6},
		{3, 0, 4}, {3, 4, 7},
	}
	m := mesh.New(v, f)

	const mu, rho = 40.0, 5.0
	a, err := New("cube", m, mu, rho, 0)
	if err != nil {
		t.Fatal(err)
	}
	res := a.Field.Evaluate([3]float64{0, 0, 0})
	want := -4 * math.Pi * (mu / 8.0) // g*rho == mu/Volume regardless of the mu/rho split
	if !floats.EqualWithinAbs(res.Laplacian, want, 1e-3) {
		t.Fatalf("interior Laplacian = %f, want %f", res.Laplacian, want)
	}
}

func TestSeedParamsForUnknownName(t *testing.T) {
	if _, err := SeedParamsFor("not-a-real-asteroid"); err == nil {
		t.Fatal("expected error for unknown catalog name")
	}
}

func TestMaxAngleMatchesSurfAreaFormula(t *testing.T) {
	p, err := SeedParamsFor("castalia")
	if err != nil {
		t.Fatal(err)
	}
	a := 1.2
	want := math.Sqrt(p.SurfArea) / a
	if got := p.MaxAngle(a); !floats.EqualWithinAbs(got, want, 1e-12) {
		t.Fatalf("MaxAngle = %f, want %f", got, want)
	}
}
