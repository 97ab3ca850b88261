package guidance

import (
	"math"
	"testing"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"github.com/BlenderCN-Org/asteroid-dumbbell/dynamics"
	"gonum.org/v1/gonum/floats"
)

func TestCircumnavigateStaysOnCircle(t *testing.T) {
	params := Params{Mode: Circumnavigate, Tf: 3600, Loops: 1, P0: [3]float64{1.5, 0, 0}}
	for _, frac := range []float64{0, 0.25, 0.5, 0.75} {
		d := Generate(params, nil, [3]float64{}, frac*params.Tf)
		r := attitude.Norm(d.P)
		if !floats.EqualWithinAbs(r, 1.5, 1e-9) {
			t.Fatalf("at frac=%f, |p_d|=%f, want 1.5", frac, r)
		}
	}
}

func TestCircumnavigateCompletesLoopsAfterTf(t *testing.T) {
	params := Params{Mode: Circumnavigate, Tf: 3600, Loops: 2, P0: [3]float64{1.5, 0, 0}}
	start := Generate(params, nil, [3]float64{}, 0)
	end := Generate(params, nil, [3]float64{}, params.Tf)
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(start.P[i], end.P[i], 1e-6) {
			t.Fatalf("position after integer number of loops should return to start: %v vs %v", start.P, end.P)
		}
	}
}

func TestLandReachesSiteAtHorizonEnd(t *testing.T) {
	params := Params{
		Mode: Land, T0: 0, Tf: 100,
		Handoff: [3]float64{2, 0, 0},
		Site:    [3]float64{0.485, -0.02, 0.378},
	}
	d := Generate(params, nil, [3]float64{}, 100)
	want := attitude.Norm(params.Site)
	got := attitude.Norm(d.P)
	if !floats.EqualWithinAbs(got, want, 1e-6) {
		t.Fatalf("|p_d| at t=Tf = %f, want %f", got, want)
	}
}

func TestLandRadiusIsMonotonicallyDecreasing(t *testing.T) {
	params := Params{
		Mode: Land, T0: 0, Tf: 100,
		Handoff: [3]float64{2, 0, 0},
		Site:    [3]float64{0.485, -0.02, 0.378},
	}
	prev := math.Inf(1)
	for tt := 0.0; tt <= 100; tt += 10 {
		d := Generate(params, nil, [3]float64{}, tt)
		r := attitude.Norm(d.P)
		if r > prev+1e-9 {
			t.Fatalf("radial distance increased at t=%f: %f > %f", tt, r, prev)
		}
		prev = r
	}
}

func TestControlCancelsGravityOnTarget(t *testing.T) {
	dum, err := dynamics.NewDumbbell(100, 100, 0.001)
	if err != nil {
		t.Fatal(err)
	}
	p := [3]float64{1.5, 0, 0}
	v := [3]float64{0, 0.02, 0}
	r := attitude.Identity3()
	omega := [3]float64{0.001, 0, 0.002}
	x := dynamics.NewState(p, v, r, omega)

	d := Desired{P: p, V: v, A: [3]float64{}, R: r, Omega: omega, Alpha: [3]float64{}}
	gravityForce := [3]float64{-0.5, 0.1, -0.2}

	c := Controller{Gains: DefaultGains(dum.Mass(), dum.J[1][1])}
	u := c.Control(dum, x, d, gravityForce)

	want := attitude.Scale(-1, gravityForce)
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(u.Force[i], want[i], 1e-9) {
			t.Fatalf("u_f = %v, want %v (exact gravity cancellation on target)", u.Force, want)
		}
	}
	gyroscopic := attitude.Cross(omega, dum.J.MulVec(omega))
	for i := 0; i < 3; i++ {
		if !floats.EqualWithinAbs(u.Torque[i], gyroscopic[i], 1e-9) {
			t.Fatalf("u_m = %v, want omega x J omega = %v", u.Torque, gyroscopic)
		}
	}
}

func TestAttitudeFromPointingIsOrthonormal(t *testing.T) {
	r := AttitudeFromPointing([3]float64{1, 1, 1})
	diff := r.T().Mul(r).Sub(attitude.Identity3())
	if n := diff.FrobeniusNorm(); n > 1e-9 {
		t.Fatalf("AttitudeFromPointing result not orthonormal: residual %e", n)
	}
}
