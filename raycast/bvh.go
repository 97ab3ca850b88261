package raycast

import "sort"

type aabb struct {
	min, max [3]float64
}

func emptyAABB() aabb {
	return aabb{
		min: [3]float64{inf, inf, inf},
		max: [3]float64{-inf, -inf, -inf},
	}
}

func (b aabb) extend(p [3]float64) aabb {
	for i := 0; i < 3; i++ {
		if p[i] < b.min[i] {
			b.min[i] = p[i]
		}
		if p[i] > b.max[i] {
			b.max[i] = p[i]
		}
	}
	return b
}

func (b aabb) union(o aabb) aabb {
	for i := 0; i < 3; i++ {
		if o.min[i] < b.min[i] {
			b.min[i] = o.min[i]
		}
		if o.max[i] > b.max[i] {
			b.max[i] = o.max[i]
		}
	}
	return b
}

// hit performs the slab test against a ray (o + t*d, t in [tmin, tmax]).
func (b aabb) hit(o, invD [3]float64, tmax float64) bool {
	tmin := 0.0
	for i := 0; i < 3; i++ {
		t0 := (b.min[i] - o[i]) * invD[i]
		t1 := (b.max[i] - o[i]) * invD[i]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmax < tmin {
			return false
		}
	}
	return true
}

// bvhNode is one node of the bounding-volume hierarchy the Caster uses to
// keep a single cast O(log|F|) amortized (§4.3) instead of O(|F|).
type bvhNode struct {
	box         aabb
	left, right *bvhNode
	faces       []int // non-empty only at leaves
}

const leafSize = 8

func buildBVH(centers []([3]float64), boxes []aabb, idx []int) *bvhNode {
	box := emptyAABB()
	for _, i := range idx {
		box = box.union(boxes[i])
	}
	if len(idx) <= leafSize {
		leaf := make([]int, len(idx))
		copy(leaf, idx)
		return &bvhNode{box: box, faces: leaf}
	}
	axis := box.longestAxis()
	sort.Slice(idx, func(i, j int) bool { return centers[idx[i]][axis] < centers[idx[j]][axis] })
	mid := len(idx) / 2
	left := buildBVH(centers, boxes, append([]int(nil), idx[:mid]...))
	right := buildBVH(centers, boxes, append([]int(nil), idx[mid:]...))
	return &bvhNode{box: box, left: left, right: right}
}

func (b aabb) longestAxis() int {
	ext := [3]float64{b.max[0] - b.min[0], b.max[1] - b.min[1], b.max[2] - b.min[2]}
	axis := 0
	if ext[1] > ext[axis] {
		axis = 1
	}
	if ext[2] > ext[axis] {
		axis = 2
	}
	return axis
}

// visit walks the tree collecting candidate leaf face lists for a ray,
// pruning subtrees whose box the ray misses.
func (n *bvhNode) visit(o, invD [3]float64, tmax float64, out *[]int) {
	if n == nil || !n.box.hit(o, invD, tmax) {
		return
	}
	if n.faces != nil {
		*out = append(*out, n.faces...)
		return
	}
	n.left.visit(o, invD, tmax, out)
	n.right.visit(o, invD, tmax, out)
}
