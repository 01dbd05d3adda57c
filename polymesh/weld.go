package polymesh

import (
	"math"

	"github.com/soypat/brep"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Weld merges attributes that differ by at most eps in every component.
// Positions, uvs and normals are welded independently: the earliest index of
// a group is its representative and keeps its value. Face corners are
// rewritten, consecutive corners sharing a position are collapsed, faces left
// with fewer than three corners are dropped and unused attributes removed.
// Welding a welded mesh again with the same eps changes nothing.
func (m *PolygonMesh) Weld(eps float64) {
	eps = math.Max(eps, 0)
	np, nu, nn := len(m.Positions), len(m.UVs), len(m.Normals)
	posRep := weldIndex(vecs3(m.Positions), eps)
	uvRep := weldIndex(vecs2(m.UVs), eps)
	norRep := weldIndex(vecs3(m.Normals), eps)

	faces := make([][]Vertex, 0, len(m.Faces))
	var dropped int
	for _, f := range m.Faces {
		corners := make([]Vertex, 0, len(f))
		for _, v := range f {
			v.Pos = posRep[v.Pos]
			if v.UV >= 0 {
				v.UV = uvRep[v.UV]
			}
			if v.Nor >= 0 {
				v.Nor = norRep[v.Nor]
			}
			if len(corners) > 0 && corners[len(corners)-1].Pos == v.Pos {
				continue
			}
			corners = append(corners, v)
		}
		for len(corners) > 1 && corners[0].Pos == corners[len(corners)-1].Pos {
			corners = corners[:len(corners)-1]
		}
		if len(corners) < 3 {
			dropped++
			continue
		}
		faces = append(faces, corners)
	}
	if dropped > 0 {
		brep.Logger().Warn("dropped degenerate faces while welding", "eps", eps, "dropped", dropped, "faces", len(m.Faces))
	}
	m.Faces = faces

	posMap := make([]int, np)
	uvMap := make([]int, nu)
	norMap := make([]int, nn)
	for i := range posMap {
		posMap[i] = -1
	}
	for i := range uvMap {
		uvMap[i] = -1
	}
	for i := range norMap {
		norMap[i] = -1
	}
	for _, f := range m.Faces {
		for _, v := range f {
			posMap[v.Pos] = 0
			if v.UV >= 0 {
				uvMap[v.UV] = 0
			}
			if v.Nor >= 0 {
				norMap[v.Nor] = 0
			}
		}
	}
	m.Positions = compact(m.Positions, posMap)
	m.UVs = compact(m.UVs, uvMap)
	m.Normals = compact(m.Normals, norMap)
	for _, f := range m.Faces {
		for i := range f {
			f[i].Pos = posMap[f[i].Pos]
			if f[i].UV >= 0 {
				f[i].UV = uvMap[f[i].UV]
			}
			if f[i].Nor >= 0 {
				f[i].Nor = norMap[f[i].Nor]
			}
		}
	}
	m.advance(Welded)
	brep.Logger().Debug("welded mesh", "eps", eps,
		"positions", np, "welded_positions", len(m.Positions),
		"uvs", nu, "welded_uvs", len(m.UVs),
		"normals", nn, "welded_normals", len(m.Normals),
		"faces", len(m.Faces))
}

// compact keeps the attributes whose used entry is not -1, in order, and
// overwrites used with the new index of every kept attribute.
func compact[T any](attrs []T, used []int) []T {
	out := attrs[:0]
	for i, a := range attrs {
		if used[i] < 0 {
			continue
		}
		used[i] = len(out)
		out = append(out, a)
	}
	return out
}

// weldIndex returns the representative index of every point. Points are
// visited in index order; an unclaimed point becomes a representative and
// claims every later unclaimed point within eps of it componentwise.
func weldIndex(pts [][3]float64, eps float64) []int {
	rep := make([]int, len(pts))
	if len(pts) == 0 {
		return rep
	}
	for i := range rep {
		rep[i] = -1
	}
	kd := make(kdPoints, len(pts))
	for i, p := range pts {
		kd[i] = kdPoint{v: p, idx: i}
	}
	tree := kdtree.New(kd, false)
	for i, p := range pts {
		if rep[i] >= 0 {
			continue
		}
		rep[i] = i
		keep := kdtree.NewDistKeeper(3 * eps * eps)
		tree.NearestSet(keep, kdPoint{v: p, idx: i})
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue // Sentinel.
			}
			j := c.Comparable.(kdPoint).idx
			if j > i && rep[j] < 0 && withinBox(p, pts[j], eps) {
				rep[j] = i
			}
		}
	}
	return rep
}

func withinBox(a, b [3]float64, eps float64) bool {
	return math.Abs(a[0]-b[0]) <= eps && math.Abs(a[1]-b[1]) <= eps && math.Abs(a[2]-b[2]) <= eps
}

func vecs3(v []r3.Vec) [][3]float64 {
	out := make([][3]float64, len(v))
	for i, p := range v {
		out[i] = [3]float64{p.X, p.Y, p.Z}
	}
	return out
}

func vecs2(v []r2.Vec) [][3]float64 {
	out := make([][3]float64, len(v))
	for i, p := range v {
		out[i] = [3]float64{p.X, p.Y, 0}
	}
	return out
}

var (
	_ kdtree.Interface  = kdPoints{}
	_ kdtree.Comparable = kdPoint{}
)

// kdPoint is an attribute value tagged with its index in the attribute array.
type kdPoint struct {
	v   [3]float64
	idx int
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
func (a kdPoint) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return a.v[d] - b.(kdPoint).v[d]
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdPoint) Distance(b kdtree.Comparable) float64 {
	q := b.(kdPoint)
	dx, dy, dz := a.v[0]-q.v[0], a.v[1]-q.v[1], a.v[2]-q.v[2]
	return dx*dx + dy*dy + dz*dz
}

type kdPoints []kdPoint

func (k kdPoints) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdPoints) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdPoints) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: d, points: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdPoints) Slice(start, end int) kdtree.Interface { return k[start:end] }

type kdPlane struct {
	dim    kdtree.Dim
	points kdPoints
}

func (p kdPlane) Less(i, j int) bool {
	return p.points[i].v[p.dim] < p.points[j].v[p.dim]
}

func (p kdPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}

func (p kdPlane) Len() int { return len(p.points) }

func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
