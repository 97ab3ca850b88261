package guidance

import (
	"math"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
)

// WeightedPoints is the minimal view Explore needs of the estimate mesh:
// per-vertex position and uncertainty weight. reconstruct.Mesh satisfies
// this structurally.
type WeightedPoints interface {
	NumVertices() int
	VertexPosition(i int) [3]float64
	Weight(i int) float64
}

// Generate dispatches once per tick on params.Mode (§9's tagged-variant
// controller), given the current inertial position p and time t. estimate
// is only read by Explore; callers may pass nil for the other modes.
func Generate(params Params, estimate WeightedPoints, p [3]float64, t float64) Desired {
	switch params.Mode {
	case Circumnavigate:
		return circumnavigate(params, t)
	case Lissajous:
		return lissajousYZ(params, t)
	case Explore:
		return explore(params, estimate, p)
	case Refine:
		return refine(params)
	case Land:
		return land(params, t)
	default:
		return Desired{P: p, R: attitude.Identity3()}
	}
}

func circumnavigate(params Params, t float64) Desired {
	radius := attitude.Norm(params.P0)
	rate := 2 * math.Pi * params.Loops / params.Tf
	theta := rate * (t - params.T0)
	c, s := math.Cos(theta), math.Sin(theta)
	pd := [3]float64{radius * c, radius * s, 0}
	vd := [3]float64{-radius * rate * s, radius * rate * c, 0}
	ad := [3]float64{-radius * rate * rate * c, -radius * rate * rate * s, 0}
	return Desired{P: pd, V: vd, A: ad, R: AttitudeFromPointing(attitude.Scale(-1, pd))}
}

func lissajousYZ(params Params, t float64) Desired {
	radius := attitude.Norm(params.P0)
	rate := 2 * math.Pi * params.Loops / params.Tf
	theta := t - params.T0
	const fy, fz = 3.0, 2.0
	y := radius * math.Sin(fy*rate*theta+math.Pi/2)
	z := radius * math.Sin(fz*rate*theta)
	vy := radius * fy * rate * math.Cos(fy*rate*theta+math.Pi/2)
	vz := radius * fz * rate * math.Cos(fz*rate*theta)
	ay := -radius * fy * fy * rate * rate * math.Sin(fy*rate*theta+math.Pi/2)
	az := -radius * fz * fz * rate * rate * math.Sin(fz*rate*theta)
	pd := [3]float64{params.P0[0], y, z}
	vd := [3]float64{0, vy, vz}
	ad := [3]float64{0, ay, az}
	return Desired{P: pd, V: vd, A: ad, R: AttitudeFromPointing(attitude.Scale(-1, pd))}
}

// explore samples candidate shell points (unit directions in Params.
// Candidates, scaled to the current orbital radius) and picks the one
// maximizing the sum of estimate weights within the sensor cone, minus a
// translational-effort penalty (§4.7).
func explore(params Params, estimate WeightedPoints, p [3]float64) Desired {
	radius := attitude.Norm(p)
	bestScore := math.Inf(-1)
	best := p
	for _, dir := range params.Candidates {
		cand := attitude.Scale(radius, attitude.Unit(dir))
		score := coneWeightSum(estimate, cand, params.ConeHalfAngle) - params.Lambda*distSq(cand, p)
		if score > bestScore {
			bestScore, best = score, cand
		}
	}
	return Desired{P: best, R: AttitudeFromPointing(attitude.Scale(-1, best))}
}

func coneWeightSum(estimate WeightedPoints, origin [3]float64, halfAngle float64) float64 {
	if estimate == nil {
		return 0
	}
	axis := attitude.Unit(attitude.Scale(-1, origin)) // sensor points toward the body
	var sum float64
	for i := 0; i < estimate.NumVertices(); i++ {
		v := estimate.VertexPosition(i)
		dir := attitude.Sub(v, origin)
		if attitude.Norm(dir) < 1e-12 {
			continue
		}
		dir = attitude.Unit(dir)
		angle := math.Acos(clampUnit(attitude.Dot(axis, dir)))
		if angle <= halfAngle {
			sum += estimate.Weight(i)
		}
	}
	return sum
}

// refine hovers on the outward body-fixed normal above the landing site,
// at a height chosen so the site's vicinity stays inside the sensor cone
// (§4.7: "a radius scaled to keep the site in sensor cone").
func refine(params Params) Desired {
	n := attitude.Unit(params.Site)
	height := 4 * attitude.Norm(params.Site) / math.Tan(params.StandoffAngle)
	pd := attitude.Add(params.Site, attitude.Scale(height, n))
	return Desired{P: pd, R: AttitudeFromPointing(attitude.Scale(-1, n))}
}

// land interpolates linearly from the handoff position to the site in the
// rotating frame: radius is interpolated linearly (monotonically
// decreasing by construction) while direction is normalized-interpolated,
// so the descent never re-increases altitude (§4.7).
func land(params Params, t float64) Desired {
	frac := clamp01((t - params.T0) / params.Tf)
	rHandoff := attitude.Norm(params.Handoff)
	rSite := attitude.Norm(params.Site)
	r := rHandoff + frac*(rSite-rHandoff)
	dirHandoff := attitude.Unit(params.Handoff)
	dirSite := attitude.Unit(params.Site)
	dir := attitude.Unit(attitude.Add(attitude.Scale(1-frac, dirHandoff), attitude.Scale(frac, dirSite)))
	pd := attitude.Scale(r, dir)

	const eps = 1e-3
	fracAhead := clamp01(((t+eps) - params.T0) / params.Tf)
	rAhead := rHandoff + fracAhead*(rSite-rHandoff)
	dirAhead := attitude.Unit(attitude.Add(attitude.Scale(1-fracAhead, dirHandoff), attitude.Scale(fracAhead, dirSite)))
	pdAhead := attitude.Scale(rAhead, dirAhead)
	vd := attitude.Scale(1/eps, attitude.Sub(pdAhead, pd))

	return Desired{P: pd, V: vd, R: AttitudeFromPointing(attitude.Scale(-1, dir))}
}

func distSq(a, b [3]float64) float64 {
	d := attitude.Sub(a, b)
	return attitude.Dot(d, d)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func clampUnit(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}
