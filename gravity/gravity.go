// Package gravity implements the Werner-Scheeres closed-form polyhedron
// gravitational potential (§4.2): the dominant per-step cost of the
// simulation. A Field precomputes the mesh's edge and face dyads once;
// Evaluate then costs one pass over every edge and face per query point.
package gravity

import (
	"math"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"github.com/BlenderCN-Org/asteroid-dumbbell/mesh"
)

const denomFloor = 1e-12

// Field holds the precomputed per-mesh quantities of §4.2: outward face
// normals, edge-normal dyads E_e, and face dyads F_f. The dyads are
// computed once by New; a Field does not recompute them if its mesh is
// changed afterwards.
type Field struct {
	m   *mesh.Mesh
	Grho float64 // G * rho, the product this package always needs together

	edges     []edgeTerm
	faces     []faceTerm
}

type edgeTerm struct {
	a, b int // vertex indices (endpoint a is the "r_a" of §4.2)
	e    attitude.Mat3
}

type faceTerm struct {
	v0, v1, v2 int
	f          attitude.Mat3
}

// New builds a Field over m with gravitational parameter G (km^3/kg/s^2,
// typically the standard gravitational constant) and bulk density rho
// (kg/km^3). m must already satisfy §3's closed, outward-oriented,
// Euler-characteristic-2 invariant (enforced at mesh load time).
func New(m *mesh.Mesh, g, rho float64) (*Field, error) {
	if err := m.Build(); err != nil {
		return nil, err
	}
	fl := &Field{m: m, Grho: g * rho}

	seenEdge := make(map[mesh.Edge]bool)
	for fi, face := range m.Faces {
		nf := m.FaceNormal(fi)
		for k := 0; k < 3; k++ {
			a, b := face[k], face[(k+1)%3]
			edge := mesh.Edge{A: a, B: b}
			if edge.A > edge.B {
				edge.A, edge.B = edge.B, edge.A
			}
			if seenEdge[edge] {
				continue
			}
			seenEdge[edge] = true
			adjFaces, ok := m.EdgeFaces(a, b)
			if !ok {
				continue
			}
			var acc attitude.Mat3
			for _, afi := range adjFaces {
				afn := m.FaceNormal(afi)
				aface := m.Faces[afi]
				// Find (a,b) in the adjacent face's winding to get the
				// edge vector oriented consistently with that face, so
				// the edge normal points outward from the triangle.
				var evec [3]float64
				for j := 0; j < 3; j++ {
					if aface[j] == a && aface[(j+1)%3] == b {
						evec = attitude.Sub(m.Vertices[b], m.Vertices[a])
						break
					} else if aface[j] == b && aface[(j+1)%3] == a {
						evec = attitude.Sub(m.Vertices[a], m.Vertices[b])
						break
					}
				}
				edgeNormal := attitude.Unit(attitude.Cross(evec, afn))
				acc = acc.Add(dyad(afn, edgeNormal))
			}
			fl.edges = append(fl.edges, edgeTerm{a: a, b: b, e: acc})
		}
		fl.faces = append(fl.faces, faceTerm{v0: face[0], v1: face[1], v2: face[2], f: dyad(nf, nf)})
	}
	return fl, nil
}

func dyad(a, b [3]float64) attitude.Mat3 {
	var m attitude.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = a[i] * b[j]
		}
	}
	return m
}

// Result bundles the four quantities §4.2 evaluates together, since they
// share the same edge/face summation loops.
type Result struct {
	U         float64
	Grad      [3]float64
	GradMat   attitude.Mat3 // Hessian ∇²U
	Laplacian float64
}

// Evaluate computes the potential, gradient, gradient matrix, and Laplacian
// at external field point r (§4.2). On the numeric underflow condition of
// §7 (a denominator at or below 1e-12, meaning r lies on a vertex, edge, or
// face), it perturbs r by 1e-9 along a fixed axis and retries, up to a
// small bounded number of attempts.
func (fl *Field) Evaluate(r [3]float64) Result {
	for attempt := 0; attempt < 4; attempt++ {
		res, singular := fl.evaluateOnce(r)
		if !singular {
			return res
		}
		r = attitude.Add(r, [3]float64{1e-9 * float64(attempt+1), 0, 0})
	}
	res, _ := fl.evaluateOnce(r)
	return res
}

func (fl *Field) evaluateOnce(r [3]float64) (Result, bool) {
	var sumEdge, sumFace float64
	var gradEdge, gradFace [3]float64
	var hessEdge, hessFace attitude.Mat3
	var laplace float64

	for _, et := range fl.edges {
		ra := attitude.Sub(fl.m.Vertices[et.a], r)
		rb := attitude.Sub(fl.m.Vertices[et.b], r)
		nra, nrb := attitude.Norm(ra), attitude.Norm(rb)
		lab := attitude.Norm(attitude.Sub(fl.m.Vertices[et.a], fl.m.Vertices[et.b]))
		denom := nra + nrb - lab
		if denom <= denomFloor {
			return Result{}, true
		}
		we := math.Log((nra + nrb + lab) / denom)
		quad := attitude.Dot(ra, et.e.MulVec(ra))
		sumEdge += quad * we
		gradEdge = attitude.Add(gradEdge, attitude.Scale(we, et.e.MulVec(ra)))
		hessEdge = hessEdge.Add(et.e.Scale(we))
	}

	for _, ft := range fl.faces {
		r1 := attitude.Sub(fl.m.Vertices[ft.v0], r)
		r2 := attitude.Sub(fl.m.Vertices[ft.v1], r)
		r3 := attitude.Sub(fl.m.Vertices[ft.v2], r)
		n1, n2, n3 := attitude.Norm(r1), attitude.Norm(r2), attitude.Norm(r3)
		num := attitude.Dot(r1, attitude.Cross(r2, r3))
		den := n1*n2*n3 + n1*attitude.Dot(r2, r3) + n2*attitude.Dot(r3, r1) + n3*attitude.Dot(r1, r2)
		if math.Abs(den) <= denomFloor && math.Abs(num) <= denomFloor {
			return Result{}, true
		}
		omega := 2 * math.Atan2(num, den)
		quad := attitude.Dot(r1, ft.f.MulVec(r1))
		sumFace += quad * omega
		gradFace = attitude.Add(gradFace, attitude.Scale(omega, ft.f.MulVec(r1)))
		hessFace = hessFace.Add(ft.f.Scale(omega))
		laplace += omega
	}

	U := 0.5 * fl.Grho * (sumEdge - sumFace)
	grad := attitude.Scale(-fl.Grho, attitude.Sub(gradEdge, gradFace))
	hess := hessEdge.Sub(hessFace).Scale(fl.Grho)
	lap := -fl.Grho * laplace
	return Result{U: U, Grad: grad, GradMat: hess, Laplacian: lap}, false
}
