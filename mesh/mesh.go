// Package mesh implements the closed triangular mesh data structure shared
// by the true asteroid and its reconstructed estimate: vertices, faces, and
// the adjacency (edges, edge→face, vertex→face) and per-face geometry
// (normals, areas, centers) derived from them, per §9's flat-array design.
package mesh

import (
	"fmt"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
)

// Edge is an undirected edge identified by its two (ordered, low-first)
// vertex indices.
type Edge struct {
	A, B int
}

func newEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

// Mesh is a closed, outward-oriented triangular mesh plus its derived
// topology. Faces are stored 0-based internally; the §6 OBJ boundary is
// 1-based.
type Mesh struct {
	Vertices [][3]float64
	Faces    [][3]int

	// Derived, built lazily by Build(). Nothing marks them stale when
	// Vertices or Faces change; callers that mutate the mesh call Build()
	// again.
	built        bool
	edgeFaces    map[Edge][2]int
	vertexFaces  [][]int // CSR-like: per-vertex list of incident face indices
	faceNormals  [][3]float64
	faceAreas    []float64
	faceCenters  [][3]float64
	vertexNbrs   [][]int // 1-ring vertex neighbors, derived from faces
}

// New constructs a Mesh from raw vertex and 0-based face-index slices. The
// caller retains ownership of neither slice; New copies nothing, matching
// the single-owner discipline of §5 (the orchestrator or reconstruct engine
// that creates a Mesh is its sole mutator).
func New(vertices [][3]float64, faces [][3]int) *Mesh {
	return &Mesh{Vertices: vertices, Faces: faces}
}

// NumVertices returns |V|.
func (m *Mesh) NumVertices() int { return len(m.Vertices) }

// NumFaces returns |F|.
func (m *Mesh) NumFaces() int { return len(m.Faces) }

// Clone returns a deep copy, used by refinement operations that must leave
// the original mesh untouched on failure (§7, remesh invariant violation).
func (m *Mesh) Clone() *Mesh {
	v := make([][3]float64, len(m.Vertices))
	copy(v, m.Vertices)
	f := make([][3]int, len(m.Faces))
	copy(f, m.Faces)
	return New(v, f)
}

// Build computes the derived adjacency and per-face geometry. It is cheap
// enough to call after every structural mutation (refinement); most
// queries call it on demand via ensureBuilt.
func (m *Mesh) Build() error {
	m.edgeFaces = make(map[Edge][2]int, 3*len(m.Faces))
	edgeCount := make(map[Edge]int)
	m.vertexFaces = make([][]int, len(m.Vertices))
	m.vertexNbrs = make([][]int, len(m.Vertices))
	nbrSeen := make([]map[int]bool, len(m.Vertices))
	for i := range nbrSeen {
		nbrSeen[i] = make(map[int]bool)
	}
	m.faceNormals = make([][3]float64, len(m.Faces))
	m.faceAreas = make([]float64, len(m.Faces))
	m.faceCenters = make([][3]float64, len(m.Faces))

	for fi, f := range m.Faces {
		for _, vi := range f {
			if vi < 0 || vi >= len(m.Vertices) {
				return fmt.Errorf("mesh: face %d references out-of-range vertex %d", fi, vi)
			}
			m.vertexFaces[vi] = append(m.vertexFaces[vi], fi)
		}
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			e := newEdge(a, b)
			slot := m.edgeFaces[e]
			slot[edgeCount[e]%2] = fi
			m.edgeFaces[e] = slot
			edgeCount[e]++
			if !nbrSeen[a][b] {
				nbrSeen[a][b] = true
				m.vertexNbrs[a] = append(m.vertexNbrs[a], b)
			}
			if !nbrSeen[b][a] {
				nbrSeen[b][a] = true
				m.vertexNbrs[b] = append(m.vertexNbrs[b], a)
			}
		}
		p0, p1, p2 := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		e1 := attitude.Sub(p1, p0)
		e2 := attitude.Sub(p2, p0)
		cr := attitude.Cross(e1, e2)
		area := 0.5 * attitude.Norm(cr)
		m.faceAreas[fi] = area
		if area > 0 {
			m.faceNormals[fi] = attitude.Scale(1/(2*area), cr)
		}
		m.faceCenters[fi] = attitude.Scale(1.0/3.0, attitude.Add(attitude.Add(p0, p1), p2))
	}
	m.built = true
	return nil
}

func (m *Mesh) ensureBuilt() {
	if !m.built {
		_ = m.Build()
	}
}

// FaceNormal returns the outward unit normal of face fi.
func (m *Mesh) FaceNormal(fi int) [3]float64 {
	m.ensureBuilt()
	return m.faceNormals[fi]
}

// FaceArea returns the area of face fi.
func (m *Mesh) FaceArea(fi int) float64 {
	m.ensureBuilt()
	return m.faceAreas[fi]
}

// FaceCenter returns the centroid of face fi.
func (m *Mesh) FaceCenter(fi int) [3]float64 {
	m.ensureBuilt()
	return m.faceCenters[fi]
}

// VertexFaces returns the indices of faces incident to vertex vi.
func (m *Mesh) VertexFaces(vi int) []int {
	m.ensureBuilt()
	return m.vertexFaces[vi]
}

// VertexNeighbors returns the 1-ring of vertex vi.
func (m *Mesh) VertexNeighbors(vi int) []int {
	m.ensureBuilt()
	return m.vertexNbrs[vi]
}

// EdgeFaces returns the (up to two) faces sharing edge (a,b), and whether
// the edge exists in the mesh.
func (m *Mesh) EdgeFaces(a, b int) ([2]int, bool) {
	m.ensureBuilt()
	f, ok := m.edgeFaces[newEdge(a, b)]
	return f, ok
}

// Centroid returns the vertex-averaged centroid of the mesh, used as the
// body-fixed reference point for angular-separation queries in §4.5.
func (m *Mesh) Centroid() [3]float64 {
	var c [3]float64
	for _, v := range m.Vertices {
		c = attitude.Add(c, v)
	}
	if len(m.Vertices) == 0 {
		return c
	}
	return attitude.Scale(1/float64(len(m.Vertices)), c)
}

// EulerCharacteristic returns |V| - |E| + |F|, which must equal 2 for a
// closed genus-0 mesh (§8 invariant used by the refinement scenario S4).
func (m *Mesh) EulerCharacteristic() int {
	m.ensureBuilt()
	return len(m.Vertices) - len(m.edgeFaces) + len(m.Faces)
}

// Volume returns the enclosed volume of a closed, outward-oriented mesh via
// the divergence theorem: summing the signed tetrahedron volume formed by
// the origin and each face (p0.(p1 x p2)/6) over all faces gives the total
// enclosed volume regardless of where the origin sits relative to the
// mesh, since the contributions outside the body cancel.
func (m *Mesh) Volume() float64 {
	var v float64
	for _, f := range m.Faces {
		p0, p1, p2 := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		v += attitude.Dot(p0, attitude.Cross(p1, p2))
	}
	return v / 6
}

// Rotate returns a new Mesh with every vertex mapped through R (world(t) =
// R3(Ωt)·body, §3). Pure: the receiver is unmodified, so the orchestrator
// can rotate-and-upload the true mesh to the raycaster each tick without
// aliasing the body-frame original.
func (m *Mesh) Rotate(r attitude.Mat3) *Mesh {
	v := make([][3]float64, len(m.Vertices))
	for i, p := range m.Vertices {
		v[i] = r.MulVec(p)
	}
	f := make([][3]int, len(m.Faces))
	copy(f, m.Faces)
	return New(v, f)
}
