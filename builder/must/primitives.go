package must

import (
	"math"

	"github.com/soypat/brep"
	"github.com/soypat/brep/geom"
	"github.com/soypat/brep/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vertex returns a new vertex at p.
func Vertex(p r3.Vec) *brep.Vertex {
	if !d3.IsFinite(p) {
		panic("vertex position is not finite")
	}
	return brep.NewVertex(p)
}

// Line returns a straight edge from v0 to v1.
func Line(v0, v1 *brep.Vertex) *brep.Edge {
	if d3.EqualWithin(v0.Point(), v1.Point(), geom.Tolerance) {
		panic(&brep.DegenerateSweepError{Op: "line", Reason: "coincident end points"})
	}
	return edge(v0, v1, geom.Line{P0: v0.Point(), P1: v1.Point()})
}

// CircleArc returns the circular edge from v0 to v1 passing through transit.
func CircleArc(v0, v1 *brep.Vertex, transit r3.Vec) *brep.Edge {
	arc, err := geom.NewArcThrough(v0.Point(), v1.Point(), transit)
	if err != nil {
		panic(err)
	}
	return edge(v0, v1, arc)
}

// AttachPlane returns a planar face bounded by wires, outer boundary first.
// The face normal is chosen so the outer wire runs counter clockwise.
// Every wire must be closed and lie in one plane and holes must run
// opposite to the outer wire.
func AttachPlane(wires []brep.Wire) *brep.Face {
	if len(wires) == 0 {
		panic(&brep.BoundaryConflictError{Reason: "no wires to attach a plane to"})
	}
	loops := make([][]r3.Vec, len(wires))
	for i, w := range wires {
		if !w.IsClosed() {
			panic(&brep.BoundaryConflictError{Reason: "wire is not closed"})
		}
		loops[i] = samplePolygon(w)
	}
	normal := geom.NewellNormal(loops[0])
	area := r3.Norm(normal) / 2
	if area < geom.Tolerance*geom.Tolerance {
		panic(&brep.BoundaryConflictError{Reason: "wire encloses no area"})
	}
	plane := geom.NewPlane(d3.Set(loops[0]).Centroid(), normal)
	bb := d3.EmptyBox()
	for _, p := range loops[0] {
		bb = bb.Include(p)
	}
	tol := geom.Tolerance * math.Max(1, bb.Diameter())
	for i, loop := range loops {
		for _, p := range loop {
			if math.Abs(plane.Distance(p)) > tol {
				panic(&brep.BoundaryConflictError{Reason: "wires do not lie in one plane"})
			}
		}
		if i > 0 && r3.Dot(geom.NewellNormal(loop), normal) >= 0 {
			panic(&brep.BoundaryConflictError{Reason: "hole has the same orientation as the outer wire"})
		}
	}
	return face(wires, plane)
}

// samplePolygon returns points along a closed wire, each edge usage
// contributing its start point and some interior samples.
func samplePolygon(w brep.Wire) []r3.Vec {
	const curved = 16
	var pts []r3.Vec
	for _, oe := range w {
		c := oe.Curve()
		n := curved
		if _, ok := c.(geom.Line); ok {
			n = 1
		}
		pts = append(pts, geom.Sample(c, n)[:n]...)
	}
	return pts
}
