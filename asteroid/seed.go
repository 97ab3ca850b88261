package asteroid

import (
	"fmt"
	"math"
)

// SeedParams is the per-asteroid estimate-seed catalog carried over from
// the original simulation's `initialize_asteroid` (§8 supplemented
// features): it sizes the seed ellipsoid's sampling cone, the landing
// refinement radius, and the exploration search shell. MaxAngle is
// computed by the caller from SurfArea and the true asteroid's first
// semi-axis, matching `max_angle = sqrt(surf_area / a^2)`.
type SeedParams struct {
	SurfArea    float64 // target triangle area, km^2, used to derive MaxAngle
	MinAngle    float64 // degrees
	MaxRadius   float64 // km, landing-site refinement cone radius
	MaxDistance float64 // km, exploration candidate-shell cap
}

// catalog mirrors the original's per-name if/elif ladder in
// initialize_asteroid.
var catalog = map[string]SeedParams{
	"castalia":   {SurfArea: 0.01, MinAngle: 10, MaxRadius: 0.03, MaxDistance: 0.5},
	"itokawa":    {SurfArea: 0.01, MinAngle: 10, MaxRadius: 0.03, MaxDistance: 0.5},
	"golevka":    {SurfArea: 0.01, MinAngle: 10, MaxRadius: 0.035, MaxDistance: 0.5},
	"geographos": {SurfArea: 0.05, MinAngle: 10, MaxRadius: 0.05, MaxDistance: 0.5},
	"bacchus":    {SurfArea: 0.01, MinAngle: 10, MaxRadius: 0.02, MaxDistance: 0.5},
	"phobos":     {SurfArea: 0.1, MinAngle: 10, MaxRadius: 0.006, MaxDistance: 0.1},
	"lutetia":    {SurfArea: 1, MinAngle: 10, MaxRadius: 1, MaxDistance: 1},
	"eros":       {SurfArea: 0.1, MinAngle: 10, MaxRadius: 0.2, MaxDistance: 0.01},
}

// SeedParamsFor looks up the catalog entry for a known asteroid name. The
// CLI (§6) rejects unknown names with exit code 1 using this error.
func SeedParamsFor(name string) (SeedParams, error) {
	p, ok := catalog[name]
	if !ok {
		return SeedParams{}, fmt.Errorf("asteroid: unknown catalog name %q", name)
	}
	return p, nil
}

// MaxAngle computes max_angle = sqrt(surf_area / a^2) for the true
// asteroid's first semi-axis a, as in the original `initialize_asteroid`.
func (p SeedParams) MaxAngle(a float64) float64 {
	if a == 0 {
		return 0
	}
	return math.Sqrt(p.SurfArea) / a
}
