package tessellate

import (
	"errors"
	"math"
	"sort"

	"github.com/soypat/brep"
	"github.com/soypat/brep/geom"
	"github.com/soypat/brep/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// planarFace triangulates a flat face by ear clipping its boundary polygon
// in the plane frame, holes bridged into the outer loop first.
func planarFace(f *brep.Face, plane geom.Plane, samples map[*brep.Edge][]r3.Vec) (FaceMesh, error) {
	// Seen from the face normal the frame (u, v) must be right handed.
	u, v := plane.U, plane.V
	normal := plane.Normal()
	if f.IsFlipped() {
		u, v = v, u
		normal = r3.Scale(-1, normal)
	}
	var fm FaceMesh
	var pts []r2.Vec
	var loops [][]int
	for _, w := range f.Boundaries() {
		var loop []int
		for _, oe := range w {
			s := usageSamples(oe, samples)
			for _, p := range s[:len(s)-1] {
				uv := plane.Project(p)
				fm.add(p, normal, uv)
				pts = append(pts, r2.Vec{X: r3.Dot(r3.Sub(p, plane.Origin), u), Y: r3.Dot(r3.Sub(p, plane.Origin), v)})
				loop = append(loop, len(pts)-1)
			}
		}
		if len(loop) < 3 {
			return FaceMesh{}, errors.New("boundary loop has fewer than three samples")
		}
		loops = append(loops, loop)
	}
	if err := checkLoops(pts, loops); err != nil {
		return FaceMesh{}, err
	}
	poly := bridgeHoles(pts, loops)
	tris, err := earClip(pts, poly)
	if err != nil {
		return FaceMesh{}, err
	}
	fm.Triangles = tris
	return fm, nil
}

func loopSet(pts []r2.Vec, loop []int) d2.Set {
	s := make(d2.Set, len(loop))
	for i, k := range loop {
		s[i] = pts[k]
	}
	return s
}

// checkLoops rejects boundaries whose projection is self intersecting or
// wrongly oriented.
func checkLoops(pts []r2.Vec, loops [][]int) error {
	const tol = 1e-12
	sets := make([]d2.Set, len(loops))
	for i, l := range loops {
		sets[i] = loopSet(pts, l)
		area := sets[i].SignedArea()
		switch {
		case i == 0 && area <= 0:
			return errors.New("outer boundary does not run counter clockwise about the face normal")
		case i > 0 && area >= 0:
			return errors.New("hole does not run clockwise about the face normal")
		}
		if selfCrossing(sets[i], tol) {
			return errors.New("projected boundary intersects itself")
		}
	}
	for i := range sets {
		for j := i + 1; j < len(sets); j++ {
			if sets[i].Crosses(sets[j], tol) {
				return errors.New("projected boundaries intersect")
			}
		}
	}
	return nil
}

func selfCrossing(s d2.Set, tol float64) bool {
	n := len(s)
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // Adjacent through the closing segment.
			}
			if d2.SegmentsCross(s[i], s[(i+1)%n], s[j], s[(j+1)%n], tol) {
				return true
			}
		}
	}
	return false
}

// bridgeHoles merges every hole loop into the outer loop through a pair of
// coincident bridge edges, returning a single weakly simple polygon.
// Holes are processed by decreasing rightmost x so bridges never cross.
func bridgeHoles(pts []r2.Vec, loops [][]int) []int {
	poly := append([]int(nil), loops[0]...)
	holes := append([][]int(nil), loops[1:]...)
	rightmost := func(l []int) int {
		best := 0
		for i, k := range l {
			if pts[k].X > pts[l[best]].X {
				best = i
			}
		}
		return best
	}
	sort.SliceStable(holes, func(i, j int) bool {
		return pts[holes[i][rightmost(holes[i])]].X > pts[holes[j][rightmost(holes[j])]].X
	})
	for hi, hole := range holes {
		m := rightmost(hole)
		mp := pts[hole[m]]
		// Closest polygon vertex whose bridge crosses no boundary segment.
		best, bestDist := -1, math.Inf(1)
		for i, k := range poly {
			d := r2.Norm2(r2.Sub(pts[k], mp))
			if d >= bestDist || !visible(pts, mp, pts[k], poly, holes[hi:]) {
				continue
			}
			best, bestDist = i, d
		}
		if best < 0 {
			best = 0
		}
		merged := make([]int, 0, len(poly)+len(hole)+2)
		merged = append(merged, poly[:best+1]...)
		for i := 0; i <= len(hole); i++ {
			merged = append(merged, hole[(m+i)%len(hole)])
		}
		merged = append(merged, poly[best:]...)
		poly = merged
	}
	return poly
}

// visible reports whether segment ab crosses no segment of poly or the loops.
func visible(pts []r2.Vec, a, b r2.Vec, poly []int, loops [][]int) bool {
	const tol = 1e-12
	check := func(l []int) bool {
		for i := range l {
			p, q := pts[l[i]], pts[l[(i+1)%len(l)]]
			if d2.SegmentsCross(a, b, p, q, tol) {
				return false
			}
		}
		return true
	}
	if !check(poly) {
		return false
	}
	for _, l := range loops {
		if !check(l) {
			return false
		}
	}
	return true
}

// earClip triangulates the counter clockwise polygon given by indices into pts.
func earClip(pts []r2.Vec, poly []int) ([][3]int, error) {
	const eps = 1e-14
	remaining := append([]int(nil), poly...)
	tris := make([][3]int, 0, len(poly)-2)
	for len(remaining) > 3 {
		n := len(remaining)
		clipped := false
		for i := 0; i < n; i++ {
			ia, ib, ic := remaining[(i+n-1)%n], remaining[i], remaining[(i+1)%n]
			a, b, c := pts[ia], pts[ib], pts[ic]
			if d2.Orient(a, b, c) <= eps*scale(a, b, c) {
				continue
			}
			if containsOther(pts, remaining, a, b, c) {
				continue
			}
			tris = append(tris, [3]int{ia, ib, ic})
			remaining = append(remaining[:i], remaining[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Only zero area slivers left, such as a bridge.
			if sliversOnly(pts, remaining) {
				return tris, nil
			}
			return nil, errors.New("boundary polygon can not be ear clipped")
		}
	}
	if len(remaining) == 3 {
		a, b, c := pts[remaining[0]], pts[remaining[1]], pts[remaining[2]]
		if d2.Orient(a, b, c) > eps*scale(a, b, c) {
			tris = append(tris, [3]int{remaining[0], remaining[1], remaining[2]})
		}
	}
	if len(tris) == 0 {
		return nil, errors.New("boundary polygon has no area")
	}
	return tris, nil
}

func scale(a, b, c r2.Vec) float64 {
	return r2.Norm2(r2.Sub(b, a)) + r2.Norm2(r2.Sub(c, b))
}

// containsOther reports whether a reflex polygon vertex other than the
// triangle corners lies inside triangle abc.
func containsOther(pts []r2.Vec, poly []int, a, b, c r2.Vec) bool {
	n := len(poly)
	for i, k := range poly {
		p := pts[k]
		if p == a || p == b || p == c {
			continue
		}
		prev, next := pts[poly[(i+n-1)%n]], pts[poly[(i+1)%n]]
		if d2.Orient(prev, p, next) > 0 {
			continue // Convex vertices can not be the only ones inside an ear.
		}
		if d2.InTriangle(p, a, b, c) {
			return true
		}
	}
	return false
}

func sliversOnly(pts []r2.Vec, poly []int) bool {
	return math.Abs(loopSet(pts, poly).SignedArea()) < 1e-14
}
