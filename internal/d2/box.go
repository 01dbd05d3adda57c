package d2

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Box is a 2d bounding box.
type Box r2.Box

// Include enlarges a 2d box to include a point.
func (a Box) Include(v r2.Vec) Box {
	return Box{MinElem(a.Min, v), MaxElem(a.Max, v)}
}

// Size returns the size of a 2d box.
func (a Box) Size() r2.Vec {
	return r2.Sub(a.Max, a.Min)
}

// Overlaps returns true if the boxes share at least one point,
// after enlarging both by tol.
func (a Box) Overlaps(b Box, tol float64) bool {
	return a.Min.X-tol <= b.Max.X && b.Min.X-tol <= a.Max.X &&
		a.Min.Y-tol <= b.Max.Y && b.Min.Y-tol <= a.Max.Y
}

// Contains checks if the 2d box contains the given vector (considering bounds as inside).
func (a Box) Contains(v r2.Vec) bool {
	return a.Min.X <= v.X && a.Min.Y <= v.Y &&
		v.X <= a.Max.X && v.Y <= a.Max.Y
}
