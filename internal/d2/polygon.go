package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// SignedArea returns the signed area of the closed polygon. The last point
// connects back to the first. Counter clockwise polygons have positive area.
func (a Set) SignedArea() float64 {
	var area float64
	for i := range a {
		area += Cross(a[i], a[(i+1)%len(a)])
	}
	return area / 2
}

// Contains returns true if p lies strictly inside the closed polygon
// using the even-odd rule.
func (a Set) Contains(p r2.Vec) bool {
	inside := false
	for i, j := 0, len(a)-1; i < len(a); j, i = i, i+1 {
		pi, pj := a[i], a[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) &&
			p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
	}
	return inside
}

// InTriangle returns true if p lies inside or on the counter clockwise triangle abc.
func InTriangle(p, a, b, c r2.Vec) bool {
	return Orient(a, b, p) >= 0 && Orient(b, c, p) >= 0 && Orient(c, a, p) >= 0
}

// SegmentsCross returns true if segments p1p2 and q1q2 intersect at a point
// interior to both. Touching at endpoints or collinear overlap within tol
// is not considered a crossing.
func SegmentsCross(p1, p2, q1, q2 r2.Vec, tol float64) bool {
	d1 := Orient(q1, q2, p1)
	d2 := Orient(q1, q2, p2)
	d3 := Orient(p1, p2, q1)
	d4 := Orient(p1, p2, q2)
	scale := math.Max(r2.Norm(r2.Sub(p2, p1)), r2.Norm(r2.Sub(q2, q1)))
	eps := tol * scale
	return ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps))
}

// Crosses returns true if any edge of closed polygon a crosses any edge
// of closed polygon b.
func (a Set) Crosses(b Set, tol float64) bool {
	if !a.Bounds().Overlaps(b.Bounds(), tol) {
		return false
	}
	for i := range a {
		p1, p2 := a[i], a[(i+1)%len(a)]
		for j := range b {
			if SegmentsCross(p1, p2, b[j], b[(j+1)%len(b)], tol) {
				return true
			}
		}
	}
	return false
}
