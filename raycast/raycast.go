// Package raycast implements the LIDAR ray caster: Möller-Trumbore
// ray-triangle intersection of a batch of rays against the current mesh,
// returning the nearest forward hit per ray or a sentinel miss (§4.3).
package raycast

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"github.com/BlenderCN-Org/asteroid-dumbbell/mesh"
)

const (
	eps = 1e-9
	inf = math.MaxFloat64
)

// Caster holds the mutable, exclusively-owned snapshot of the currently
// rotated mesh (§5) and its acceleration structure.
type Caster struct {
	vertices [][3]float64
	faces    [][3]int
	root     *bvhNode
}

// New builds a Caster over the given mesh.
func New(m *mesh.Mesh) *Caster {
	c := &Caster{}
	c.UpdateMesh(m)
	return c
}

// UpdateMesh rebuilds the acceleration structure for a new or rotated mesh
// snapshot (§4.3's `update_mesh`). Called once per tick by the
// orchestrator with the asteroid rotated to world(t) = R3(Ωt)·body (§3).
func (c *Caster) UpdateMesh(m *mesh.Mesh) {
	c.vertices = m.Vertices
	c.faces = m.Faces
	boxes := make([]aabb, len(c.faces))
	centers := make([][3]float64, len(c.faces))
	idx := make([]int, len(c.faces))
	for i, f := range c.faces {
		b := emptyAABB()
		b = b.extend(c.vertices[f[0]])
		b = b.extend(c.vertices[f[1]])
		b = b.extend(c.vertices[f[2]])
		boxes[i] = b
		centers[i] = attitude.Scale(1.0/3.0, attitude.Add(attitude.Add(c.vertices[f[0]], c.vertices[f[1]]), c.vertices[f[2]]))
		idx[i] = i
	}
	if len(idx) == 0 {
		c.root = nil
		return
	}
	c.root = buildBVH(centers, boxes, idx)
}

// Hit is the result of casting a single ray: Point is the nearest forward
// intersection, or the ray origin (sentinel, §4.3) on a miss. FaceIndex is
// -1 on a miss.
type Hit struct {
	Point     [3]float64
	FaceIndex int
}

// Miss reports whether h is the §4.3 sentinel (magnitude of Point-origin
// below 1e-9, detected here directly via FaceIndex since the caller may not
// retain the origin).
func (h Hit) Miss() bool { return h.FaceIndex < 0 }

// Cast intersects one ray (origin o, direction toward target t) against
// the current mesh and returns the nearest forward hit.
func (c *Caster) Cast(o, target [3]float64) Hit {
	d := attitude.Sub(target, o)
	return c.castDir(o, d)
}

func (c *Caster) castDir(o, d [3]float64) Hit {
	if c.root == nil {
		return Hit{Point: o, FaceIndex: -1}
	}
	invD := [3]float64{safeInv(d[0]), safeInv(d[1]), safeInv(d[2])}
	var candidates []int
	c.root.visit(o, invD, inf, &candidates)

	best := inf
	bestFace := -1
	for _, fi := range candidates {
		face := c.faces[fi]
		t, ok := mollerTrumbore(o, d, c.vertices[face[0]], c.vertices[face[1]], c.vertices[face[2]])
		if ok && t > eps && t < best {
			best = t
			bestFace = fi
		}
	}
	if bestFace < 0 {
		return Hit{Point: o, FaceIndex: -1}
	}
	return Hit{Point: attitude.Add(o, attitude.Scale(best, d)), FaceIndex: bestFace}
}

func safeInv(x float64) float64 {
	if x == 0 {
		return inf
	}
	return 1 / x
}

// mollerTrumbore returns the ray parameter t (o + t*d hits the triangle)
// and whether an intersection exists with barycentric u,v in [0,1], u+v<=1
// (§4.3), using ε=1e-9.
func mollerTrumbore(o, d, v0, v1, v2 [3]float64) (float64, bool) {
	e1 := attitude.Sub(v1, v0)
	e2 := attitude.Sub(v2, v0)
	h := attitude.Cross(d, e2)
	a := attitude.Dot(e1, h)
	if math.Abs(a) < eps {
		return 0, false
	}
	f := 1 / a
	s := attitude.Sub(o, v0)
	u := f * attitude.Dot(s, h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := attitude.Cross(s, e1)
	v := f * attitude.Dot(d, q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := f * attitude.Dot(e2, q)
	return t, true
}

// Batch is the per-tick measurement batch of §3: world-frame intersection
// points, one per ray, with the sentinel for misses.
type Batch struct {
	Points     [][3]float64
	FaceIndex  []int
}

// CastBatch intersects N rays in parallel (§5's embarrassingly
// data-parallel opportunity), one worker pool sized to GOMAXPROCS. ctx
// allows the orchestrator to cancel an in-flight batch at a tick boundary.
func (c *Caster) CastBatch(ctx context.Context, o [3]float64, targets [][3]float64) Batch {
	n := len(targets)
	out := Batch{Points: make([][3]float64, n), FaceIndex: make([]int, n)}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i, t := range targets {
			h := c.Cast(o, t)
			out.Points[i], out.FaceIndex[i] = h.Point, h.FaceIndex
		}
		return out
	}
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, (w+1)*chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				h := c.Cast(o, targets[i])
				out.Points[i], out.FaceIndex[i] = h.Point, h.FaceIndex
			}
		}(lo, hi)
	}
	wg.Wait()
	return out
}
