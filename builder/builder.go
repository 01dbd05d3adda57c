// Package builder constructs boundary representation topology: vertices,
// lines and arcs, planar faces and the translational, rotational and
// homotopy sweeps that lift topology by one dimension.
//
// Every function mirrors one of package must and returns modeling errors
// (*brep.DegenerateSweepError, *brep.IncompatibleWiresError,
// *brep.BoundaryConflictError) instead of panicking.
package builder

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/soypat/brep"
	"github.com/soypat/brep/builder/must"
	"github.com/soypat/brep/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

func (s *shapeErr) Unwrap() error {
	err, _ := s.panicObj.(error)
	return err
}

// catch recovers a panic from package must into err. Modeling errors are
// returned as is, anything else is wrapped along with the stack trace.
func catch(err *error) {
	a := recover()
	if a == nil {
		return
	}
	if e, ok := a.(error); ok {
		var rt runtime.Error
		if !errors.As(e, &rt) {
			*err = e
			return
		}
	}
	*err = &shapeErr{
		panicObj: a,
		stack:    string(debug.Stack()),
	}
}

// Vertex returns a new vertex at p.
func Vertex(p r3.Vec) (v *brep.Vertex, err error) {
	defer catch(&err)
	return must.Vertex(p), err
}

// Line returns a straight edge from v0 to v1.
func Line(v0, v1 *brep.Vertex) (e *brep.Edge, err error) {
	defer catch(&err)
	return must.Line(v0, v1), err
}

// CircleArc returns the circular edge from v0 to v1 passing through transit.
func CircleArc(v0, v1 *brep.Vertex, transit r3.Vec) (e *brep.Edge, err error) {
	defer catch(&err)
	return must.CircleArc(v0, v1, transit), err
}

// AttachPlane returns a planar face bounded by wires, outer boundary first.
func AttachPlane(wires ...brep.Wire) (f *brep.Face, err error) {
	defer catch(&err)
	return must.AttachPlane(wires), err
}

// TSweepVertex returns the edge traced by translating v along d.
func TSweepVertex(v *brep.Vertex, d r3.Vec) (e *brep.Edge, err error) {
	defer catch(&err)
	return must.TSweepVertex(v, d), err
}

// TSweepEdge returns the face traced by translating e along d.
func TSweepEdge(e *brep.Edge, d r3.Vec) (f *brep.Face, err error) {
	defer catch(&err)
	return must.TSweepEdge(e, d), err
}

// TSweepWire returns the shell traced by translating w along d.
func TSweepWire(w brep.Wire, d r3.Vec) (s brep.Shell, err error) {
	defer catch(&err)
	return must.TSweepWire(w, d), err
}

// TSweepFace returns the solid traced by translating f along d. The moved copy
// of f is the last face of the solid's shell.
func TSweepFace(f *brep.Face, d r3.Vec) (s *brep.Solid, err error) {
	defer catch(&err)
	return must.TSweepFace(f, d), err
}

// RSweepVertex returns the single edge wire traced by rotating v by angle
// radians about the axis through point with direction axis. If |angle| >= 2π
// the edge is closed on v.
func RSweepVertex(v *brep.Vertex, point, axis r3.Vec, angle float64) (w brep.Wire, err error) {
	defer catch(&err)
	return must.RSweepVertex(v, point, axis, angle), err
}

// RSweepEdge returns the shell traced by rotating e.
func RSweepEdge(e *brep.Edge, point, axis r3.Vec, angle float64) (s brep.Shell, err error) {
	defer catch(&err)
	return must.RSweepEdge(e, point, axis, angle), err
}

// RSweepWire returns the shell traced by rotating w. A full turn of a closed
// wire yields a closed shell.
func RSweepWire(w brep.Wire, point, axis r3.Vec, angle float64) (s brep.Shell, err error) {
	defer catch(&err)
	return must.RSweepWire(w, point, axis, angle), err
}

// RSweepFace returns the solid traced by rotating f.
func RSweepFace(f *brep.Face, point, axis r3.Vec, angle float64) (s *brep.Solid, err error) {
	defer catch(&err)
	return must.RSweepFace(f, point, axis, angle), err
}

// Homotopy returns the ruled face between edges e0 and e1.
func Homotopy(e0, e1 *brep.Edge) (f *brep.Face, err error) {
	defer catch(&err)
	return must.Homotopy(e0, e1), err
}

// HomotopyWire returns the shell of ruled faces between wires a and b.
func HomotopyWire(a, b brep.Wire) (s brep.Shell, err error) {
	defer catch(&err)
	return must.HomotopyWire(a, b), err
}

// Translated returns a copy of s moved by v.
func Translated[T must.Shape](s T, v r3.Vec) (out T, err error) {
	defer catch(&err)
	return must.Translated(s, v), err
}

// Rotated returns a copy of s rotated angle radians about the axis through point.
func Rotated[T must.Shape](s T, point, axis r3.Vec, angle float64) (out T, err error) {
	defer catch(&err)
	return must.Rotated(s, point, axis, angle), err
}

// Transformed returns a copy of s moved by m.
func Transformed[T must.Shape](s T, m geom.Motion) (out T, err error) {
	defer catch(&err)
	return must.Transformed(s, m), err
}
