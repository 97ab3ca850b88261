package dynamics

import (
	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"github.com/BlenderCN-Org/asteroid-dumbbell/gravity"
)

// PointMass is the §8 invariant 2 / scenario S1 fallback gravity field: a
// classical μ/r point-mass potential substituted for the polyhedron field
// to validate the EOM's energy-conservation behavior independent of the
// mesh machinery.
type PointMass struct {
	Mu float64
}

// Evaluate satisfies GravityField with U=-μ/r, gradient pointing inward
// (same sign convention as gravity.Field.Evaluate), and the analytic
// Laplacian (zero everywhere off the origin, matching the polyhedron
// field's outside branch).
func (p PointMass) Evaluate(r [3]float64) gravity.Result {
	dist := attitude.Norm(r)
	if dist < 1e-12 {
		dist = 1e-12
	}
	u := -p.Mu / dist
	grad := attitude.Scale(-p.Mu/(dist*dist*dist), r)
	return gravity.Result{U: u, Grad: grad, Laplacian: 0}
}

var _ GravityField = PointMass{}
