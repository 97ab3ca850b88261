// Package lidar implements the LIDAR head (§4.4): an n x n grid of unit
// direction vectors symmetric about a view axis, converted to world-frame
// target points for the ray caster. The head never performs intersection
// itself; it only defines where to look.
package lidar

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Head is the spacecraft-fixed sensor frame: ViewAxis and UpAxis span the
// grid plane, re-orthogonalized on construction (§3's "view axis, up axis
// ... view perp up (re-orthogonalized on set)").
type Head struct {
	ViewAxis, UpAxis, RightAxis [3]float64
	FOVx, FOVy                  float64 // full field of view, radians
	Grid                       int     // n, the n x n target grid
	RangeNoise                 *distmv.Normal
}

// New builds a Head from a view axis and an approximate up axis. up is
// re-orthogonalized against view via Gram-Schmidt, then right = view x up
// completes the frame. rangeSigma is the standard deviation (km) of the
// optional Gaussian ranging noise added by Sample; pass 0 to disable it.
func New(view, up [3]float64, fovx, fovy float64, grid int, rangeSigma float64) (*Head, error) {
	if grid < 1 {
		return nil, fmt.Errorf("lidar: grid resolution must be >= 1, got %d", grid)
	}
	v := attitude.Unit(view)
	u := attitude.Sub(up, attitude.Scale(attitude.Dot(up, v), v))
	if attitude.Norm(u) < 1e-9 {
		return nil, fmt.Errorf("lidar: up axis %v is parallel to view axis %v", up, view)
	}
	u = attitude.Unit(u)
	r := attitude.Unit(attitude.Cross(v, u))

	h := &Head{ViewAxis: v, UpAxis: u, RightAxis: r, FOVx: fovx, FOVy: fovy, Grid: grid}
	if rangeSigma > 0 {
		seed := rand.New(rand.NewSource(time.Now().UnixNano()))
		noise, ok := distmv.NewNormal([]float64{0}, mat.NewSymDense(1, []float64{rangeSigma * rangeSigma}), seed)
		if !ok {
			panic("lidar: range noise covariance is not positive semi-definite")
		}
		h.RangeNoise = noise
	}
	return h, nil
}

// Directions returns the Grid x Grid unit direction vectors in the head's
// own (view, up, right) frame, spanning ±FOVx/2 in the view-right plane and
// ±FOVy/2 in the view-up plane (§4.4). The grid is flattened row-major.
func (h *Head) Directions() [][3]float64 {
	n := h.Grid
	out := make([][3]float64, 0, n*n)
	if n == 1 {
		out = append(out, h.ViewAxis)
		return out
	}
	for i := 0; i < n; i++ {
		ay := -h.FOVy/2 + h.FOVy*float64(i)/float64(n-1)
		for j := 0; j < n; j++ {
			ax := -h.FOVx/2 + h.FOVx*float64(j)/float64(n-1)
			d := attitude.Add(h.ViewAxis,
				attitude.Add(attitude.Scale(math.Tan(ax), h.RightAxis), attitude.Scale(math.Tan(ay), h.UpAxis)))
			out = append(out, attitude.Unit(d))
		}
	}
	return out
}

// DefineTargets returns the world-frame target points p + d*R*(grid
// rotation into body frame) for a spacecraft at position p with
// body-to-inertial attitude r and sensor range d (§4.4).
func (h *Head) DefineTargets(p [3]float64, r attitude.Mat3, d float64) [][3]float64 {
	dirs := h.Directions()
	out := make([][3]float64, len(dirs))
	for i, dir := range dirs {
		world := r.MulVec(dir)
		out[i] = attitude.Add(p, attitude.Scale(d, world))
	}
	return out
}

// Sample adds zero-mean Gaussian ranging noise (drawn via
// gonum.org/v1/gonum/stat/distmv) to a batch of measured intersection
// points, perturbing each point along its own line of sight. Returns the
// points unchanged if the head was built with rangeSigma == 0.
func (h *Head) Sample(origin [3]float64, points [][3]float64) [][3]float64 {
	if h.RangeNoise == nil {
		return points
	}
	out := make([][3]float64, len(points))
	for i, pt := range points {
		los := attitude.Sub(pt, origin)
		rng := attitude.Norm(los)
		if rng < 1e-12 {
			out[i] = pt
			continue
		}
		dir := attitude.Scale(1/rng, los)
		noisy := rng + h.RangeNoise.Rand(nil)[0]
		out[i] = attitude.Add(origin, attitude.Scale(noisy, dir))
	}
	return out
}
