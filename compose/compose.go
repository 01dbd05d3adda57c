// Package compose edits shells built by package builder: drilling inner
// boundaries into planar faces, appending shells and flipping orientation.
// These are the operations needed to stitch separately swept pieces such as
// a bottle body and its neck into one closed shell.
package compose

import (
	"math"

	"github.com/soypat/brep"
	"github.com/soypat/brep/geom"
	"github.com/soypat/brep/internal/d2"
	"github.com/soypat/brep/internal/d3"
)

// curveSegments is the number of chords used to approximate a curved edge
// when checking boundary placement.
const curveSegments = 32

// AddBoundary drills w into face f as an additional inner boundary. w is given
// as seen from the face orientation and must be closed, lie on the face's
// planar surface, run opposite to the outer boundary, sit inside the outer
// boundary and outside every existing hole without crossing any of them.
// Failures are reported as *brep.BoundaryConflictError and leave f unchanged.
func AddBoundary(f *brep.Face, w brep.Wire) error {
	if len(w) == 0 || !w.IsClosed() {
		return conflict("wire is not closed")
	}
	plane, ok := geom.PlaneOf(f.Surface(), geom.Tolerance)
	if !ok {
		return conflict("face surface is not planar")
	}
	existing := f.Boundaries()
	outer3 := loop(existing[0])
	hole3 := loop(w)
	tol := geom.Tolerance * math.Max(1, bounds(outer3).Diameter())
	for _, p := range hole3 {
		if math.Abs(plane.Distance(p)) > tol {
			return conflict("wire does not lie on the face surface")
		}
	}
	outer := project(plane, outer3)
	hole := project(plane, hole3)
	if math.Abs(hole.SignedArea()) < tol*tol {
		return conflict("wire encloses no area")
	}
	if math.Signbit(outer.SignedArea()) == math.Signbit(hole.SignedArea()) {
		return conflict("wire has the same orientation as the outer boundary")
	}
	for _, p := range hole {
		if !outer.Contains(p) {
			return conflict("wire is not inside the outer boundary")
		}
	}
	if hole.Crosses(outer, tol) {
		return conflict("wire crosses the outer boundary")
	}
	for _, b := range existing[1:] {
		other := project(plane, loop(b))
		if hole.Crosses(other, tol) {
			return conflict("wire crosses an existing hole")
		}
		if other.Contains(hole[0]) || hole.Contains(other[0]) {
			return conflict("wire overlaps an existing hole")
		}
	}
	f.AppendBoundary(w)
	brep.Logger().Debug("drilled boundary", "edges", len(w), "holes", len(existing))
	return nil
}

// Concatenate returns a new shell holding the faces of a followed by the
// faces of b. No edges are merged.
func Concatenate(a, b brep.Shell) brep.Shell {
	s := make(brep.Shell, 0, len(a)+len(b))
	s = append(s, a...)
	return append(s, b...)
}

// Invert flips the orientation of f in place.
func Invert(f *brep.Face) { f.Invert() }

// InvertShell flips every face of s in place.
func InvertShell(s brep.Shell) { s.Invert() }

// Glue drills the outer boundary of the first face of neck into the last face
// of body and returns body followed by the rest of neck. The first neck face is
// discarded: its boundary becomes the seam between both shells.
func Glue(body, neck brep.Shell) (brep.Shell, error) {
	if len(body) == 0 || len(neck) == 0 {
		return nil, conflict("glue needs two non empty shells")
	}
	seam := neck[0].Boundaries()[0]
	if err := AddBoundary(body[len(body)-1], seam); err != nil {
		return nil, err
	}
	return Concatenate(body, neck[1:]), nil
}

func conflict(reason string) error {
	return &brep.BoundaryConflictError{Reason: reason}
}

// loop approximates w by a closed polygon. The last point is not repeated.
func loop(w brep.Wire) d3.Set {
	var pts d3.Set
	for _, oe := range w {
		c := oe.Curve()
		n := curveSegments
		if _, ok := c.(geom.Line); ok {
			n = 1
		}
		pts = append(pts, geom.Sample(c, n)[:n]...)
	}
	return pts
}

func bounds(pts d3.Set) d3.Box {
	return d3.Box{Min: pts.Min(), Max: pts.Max()}
}

func project(p geom.Plane, pts d3.Set) d2.Set {
	out := make(d2.Set, len(pts))
	for i, q := range pts {
		out[i] = p.Project(q)
	}
	return out
}
