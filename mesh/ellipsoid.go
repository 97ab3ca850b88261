package mesh

import (
	"math"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
)

// Ellipsoid generates a closed triangular mesh approximating the ellipsoid
// of semi-axes (a,b,c), by subdividing a regular icosahedron subdiv times
// and mapping each unit-sphere vertex onto the ellipsoid surface by scaling
// its coordinates by (a,b,c) (§8
// supplemented features: a direct analytic constructor in place of an
// external CGAL mesher, which has no Go binding).
func Ellipsoid(a, b, c float64, subdiv int) *Mesh {
	v, f := icosahedron()
	for i := 0; i < subdiv; i++ {
		v, f = subdivide(v, f)
	}
	out := make([][3]float64, len(v))
	for i, p := range v {
		u := attitude.Unit(p)
		out[i] = [3]float64{a * u[0], b * u[1], c * u[2]}
	}
	m := New(out, f)
	_ = m.Build()
	return m
}

func icosahedron() ([][3]float64, [][3]int) {
	t := (1 + math.Sqrt(5)) / 2
	raw := [][3]float64{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	v := make([][3]float64, len(raw))
	for i, p := range raw {
		v[i] = attitude.Unit(p)
	}
	f := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return v, f
}

// subdivide performs a 1-to-4 split of every triangle, inserting and
// deduplicating edge midpoints, then re-projecting new vertices to the unit
// sphere (the same topological operation used by reconstruct's
// RemeshFacesInView, applied here globally for seed generation).
func subdivide(v [][3]float64, f [][3]int) ([][3]float64, [][3]int) {
	midCache := make(map[Edge]int)
	midpoint := func(a, b int) int {
		e := newEdge(a, b)
		if idx, ok := midCache[e]; ok {
			return idx
		}
		p := attitude.Unit(attitude.Scale(0.5, attitude.Add(v[a], v[b])))
		v = append(v, p)
		idx := len(v) - 1
		midCache[e] = idx
		return idx
	}
	var nf [][3]int
	for _, tri := range f {
		a, b, c := tri[0], tri[1], tri[2]
		ab := midpoint(a, b)
		bc := midpoint(b, c)
		ca := midpoint(c, a)
		nf = append(nf,
			[3]int{a, ab, ca},
			[3]int{b, bc, ab},
			[3]int{c, ca, bc},
			[3]int{ab, bc, ca},
		)
	}
	return v, nf
}
