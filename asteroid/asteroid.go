// Package asteroid wraps a closed mesh and its precomputed polyhedron
// gravity field into the rotating body the dumbbell orbits (§3, §4.10).
package asteroid

import (
	"fmt"
	"math"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"github.com/BlenderCN-Org/asteroid-dumbbell/gravity"
	"github.com/BlenderCN-Org/asteroid-dumbbell/mesh"
)

// Asteroid is the constant-per-simulation true (or estimate-seed) body:
// its mesh, spin rate about body z, and gravitational field.
type Asteroid struct {
	Mesh  *mesh.Mesh
	Field *gravity.Field
	Omega float64 // spin rate, rad/s, about body-fixed z
	Mu    float64 // G*mass, km^3/s^2
	Rho   float64 // bulk density, kg/km^3
	Name  string
}

// New builds an Asteroid from a closed mesh, gravitational parameter mu
// (G*mass), bulk density rho, and spin rate. gravity.New wants the
// coefficient g such that g*rho equals the field's G*rho product (§4.2);
// since the polyhedron sum already integrates the mesh geometry to a
// mass of rho*Volume, g must satisfy g*rho*Volume = mu, i.e.
// g = mu/(rho*Volume), not mu/rho as if the mesh had unit volume.
func New(name string, m *mesh.Mesh, mu, rho, omega float64) (*Asteroid, error) {
	if ec := m.EulerCharacteristic(); ec != 2 {
		return nil, fmt.Errorf("asteroid: mesh %q has Euler characteristic %d, want 2", name, ec)
	}
	volume := m.Volume()
	if volume <= 0 {
		return nil, fmt.Errorf("asteroid: mesh %q has non-positive volume %g", name, volume)
	}
	g := mu / (rho * volume)
	fl, err := gravity.New(m, g, rho)
	if err != nil {
		return nil, fmt.Errorf("asteroid: %q: %w", name, err)
	}
	return &Asteroid{Mesh: m, Field: fl, Omega: omega, Mu: mu, Rho: rho, Name: name}, nil
}

// RotationAt returns R3(Ωt), the body-to-world rotation at time t (§3:
// "Asteroid rotation is implicit: world(t) = R3(Ωt)·body").
func (a *Asteroid) RotationAt(t float64) attitude.Mat3 {
	return attitude.R3(a.Omega * t)
}

// Axes returns the mesh's semi-axes as the largest absolute offset of any
// vertex from the vertex centroid along body x, y and z, in that order.
// The values are not sorted, and no principal-axis or least-squares fit is
// made. It stands in for the original `true_ast.get_axes()` call used to
// size the estimate seed ellipsoid (§4.10).
func (a *Asteroid) Axes() (x, y, z float64) {
	c := a.Mesh.Centroid()
	var maxX, maxY, maxZ float64
	for _, v := range a.Mesh.Vertices {
		d := attitude.Sub(v, c)
		if m := math.Abs(d[0]); m > maxX {
			maxX = m
		}
		if m := math.Abs(d[1]); m > maxY {
			maxY = m
		}
		if m := math.Abs(d[2]); m > maxZ {
			maxZ = m
		}
	}
	return maxX, maxY, maxZ
}
