package reconstruct

import (
	"math"

	"github.com/BlenderCN-Org/asteroid-dumbbell/attitude"
	"github.com/BlenderCN-Org/asteroid-dumbbell/mesh"
)

// maxRemeshPasses bounds the conforming-refinement loop in RemeshFacesInView
// against a pathological target_edge_length that would otherwise never be
// satisfied (e.g. smaller than floating-point resolution).
const maxRemeshPasses = 64

// RemeshFacesInView selects faces whose center lies within half_angle of
// center (as seen from the mesh centroid) and iteratively splits edges
// longer than target_edge_length via conforming refinement (1-to-4 where
// all three edges of a face are split, 1-to-2 or 1-to-3 otherwise), seeding
// new vertices at weight 1.0 (§4.5). The mesh is left unchanged and
// ErrNonManifold is returned if the result fails the closed-mesh check.
func (me *Mesh) RemeshFacesInView(center [3]float64, halfAngle, targetEdgeLength float64) error {
	origMesh := me.M.Clone()
	origWeights := append([]float64(nil), me.Weights...)

	for pass := 0; pass < maxRemeshPasses; pass++ {
		if err := me.M.Build(); err != nil {
			me.M, me.Weights = origMesh, origWeights
			return err
		}
		active := me.activeFaces(center, halfAngle)

		marked := make(map[mesh.Edge]bool)
		for fi := range active {
			face := me.M.Faces[fi]
			for k := 0; k < 3; k++ {
				a, b := face[k], face[(k+1)%3]
				length := attitude.Norm(attitude.Sub(me.M.Vertices[a], me.M.Vertices[b]))
				if length > targetEdgeLength {
					marked[edgeOf(a, b)] = true
				}
			}
		}
		if len(marked) == 0 {
			break
		}
		me.applySplit(marked)
	}

	if err := me.M.Build(); err != nil {
		me.M, me.Weights = origMesh, origWeights
		return err
	}
	if ec := me.M.EulerCharacteristic(); ec != 2 {
		me.M, me.Weights = origMesh, origWeights
		return ErrNonManifold
	}
	return nil
}

func edgeOf(a, b int) mesh.Edge {
	if a > b {
		a, b = b, a
	}
	return mesh.Edge{A: a, B: b}
}

// activeFaces returns the set of face indices whose center lies within
// halfAngle of center, as seen from the mesh centroid.
func (me *Mesh) activeFaces(center [3]float64, halfAngle float64) map[int]bool {
	centroid := me.M.Centroid()
	dir := attitude.Unit(attitude.Sub(center, centroid))
	out := make(map[int]bool)
	for fi := 0; fi < me.M.NumFaces(); fi++ {
		fdir := attitude.Sub(me.M.FaceCenter(fi), centroid)
		if attitude.Norm(fdir) < 1e-12 {
			continue
		}
		fdir = attitude.Unit(fdir)
		angle := math.Acos(clampUnit(attitude.Dot(dir, fdir)))
		if angle <= halfAngle {
			out[fi] = true
		}
	}
	return out
}

// applySplit performs one conforming refinement pass: every face incident
// to a marked edge is retriangulated (1, 2, or 3 of its edges split,
// matching the standard red-green refinement cases), so no edge is ever
// shared between a split and an unsplit face.
func (me *Mesh) applySplit(marked map[mesh.Edge]bool) {
	m := me.M
	newVertices := append([][3]float64(nil), m.Vertices...)
	newWeights := append([]float64(nil), me.Weights...)
	midCache := make(map[mesh.Edge]int)
	midpoint := func(a, b int) int {
		e := edgeOf(a, b)
		if idx, ok := midCache[e]; ok {
			return idx
		}
		p := attitude.Scale(0.5, attitude.Add(m.Vertices[a], m.Vertices[b]))
		newVertices = append(newVertices, p)
		newWeights = append(newWeights, 1.0)
		idx := len(newVertices) - 1
		midCache[e] = idx
		return idx
	}

	var newFaces [][3]int
	for _, face := range m.Faces {
		var mids [3]int
		anyMarked := false
		for k := 0; k < 3; k++ {
			a, b := face[k], face[(k+1)%3]
			if marked[edgeOf(a, b)] {
				mids[k] = midpoint(a, b)
				anyMarked = true
			} else {
				mids[k] = -1
			}
		}
		if !anyMarked {
			newFaces = append(newFaces, face)
			continue
		}
		newFaces = append(newFaces, splitFace(face, mids)...)
	}

	me.M = mesh.New(newVertices, newFaces)
	me.Weights = newWeights
}

// splitFace retriangulates one triangle given, for each of its three edges
// (k, k+1), the midpoint vertex index if that edge is marked or -1
// otherwise. Handles the three red-green refinement cases: one, two, or
// three marked edges.
func splitFace(verts [3]int, mids [3]int) [][3]int {
	count := 0
	for _, m := range mids {
		if m >= 0 {
			count++
		}
	}
	switch count {
	case 3:
		return [][3]int{
			{verts[0], mids[0], mids[2]},
			{verts[1], mids[1], mids[0]},
			{verts[2], mids[2], mids[1]},
			{mids[0], mids[1], mids[2]},
		}
	case 1:
		i := 0
		for mids[i] < 0 {
			i++
		}
		a, b, c := verts[i], verts[(i+1)%3], verts[(i+2)%3]
		mAB := mids[i]
		return [][3]int{
			{a, mAB, c},
			{mAB, b, c},
		}
	case 2:
		i := 0
		for mids[i] >= 0 {
			i++
		}
		// unmarked edge is (verts[i], verts[i+1])
		a, b, c := verts[i], verts[(i+1)%3], verts[(i+2)%3]
		mBC := mids[(i+1)%3]
		mCA := mids[(i+2)%3]
		return [][3]int{
			{mBC, c, mCA},
			{a, b, mBC},
			{a, mBC, mCA},
		}
	default:
		return [][3]int{verts}
	}
}
