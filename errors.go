package brep

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrDegenerateSweep   = errors.New("degenerate sweep")
	ErrIncompatibleWires = errors.New("incompatible wires")
	ErrBoundaryConflict  = errors.New("boundary conflict")
	ErrTriangulation     = errors.New("triangulation failed")
	ErrShellNotClosed    = errors.New("shell is not closed")
)

// DegenerateSweepError is returned when a sweep would produce
// zero measure topology or a self-intersecting rotational sweep.
type DegenerateSweepError struct {
	// Op names the sweep, i.e. "tsweep edge".
	Op     string
	Reason string
}

func (e *DegenerateSweepError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *DegenerateSweepError) Unwrap() error { return ErrDegenerateSweep }

// IncompatibleWiresError is returned by homotopy sweeps between wires
// that can not be paired edge by edge.
type IncompatibleWiresError struct {
	Reason string
}

func (e *IncompatibleWiresError) Error() string {
	return "incompatible wires: " + e.Reason
}

func (e *IncompatibleWiresError) Unwrap() error { return ErrIncompatibleWires }

// BoundaryConflictError is returned when a wire can not become a boundary of a face.
type BoundaryConflictError struct {
	Reason string
}

func (e *BoundaryConflictError) Error() string {
	return "boundary conflict: " + e.Reason
}

func (e *BoundaryConflictError) Unwrap() error { return ErrBoundaryConflict }

// TriangulationError names the face, by its index in traversal order,
// that could not be tessellated.
type TriangulationError struct {
	Face   int
	Reason string
}

func (e *TriangulationError) Error() string {
	return fmt.Sprintf("triangulating face %d: %s", e.Face, e.Reason)
}

func (e *TriangulationError) Unwrap() error { return ErrTriangulation }
