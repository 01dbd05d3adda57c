package must

import (
	"github.com/soypat/brep"
	"github.com/soypat/brep/geom"
)

type vertexPair [2]*brep.Vertex

// homotopy builds ruled faces between paired edge usages, sharing the
// straight side edges that join paired vertices.
type homotopy struct {
	sides map[vertexPair]*brep.Edge
	pairs map[*brep.Vertex]*brep.Vertex
}

func (h *homotopy) side(a, b *brep.Vertex) *brep.Edge {
	if prev, ok := h.pairs[a]; ok && prev != b {
		panic(&brep.IncompatibleWiresError{Reason: "endpoints can not be paired consistently"})
	}
	h.pairs[a] = b
	key := vertexPair{a, b}
	e, ok := h.sides[key]
	if !ok {
		if a == b {
			panic(&brep.IncompatibleWiresError{Reason: "wires share a vertex"})
		}
		e = edge(a, b, geom.Line{P0: a.Point(), P1: b.Point()})
		h.sides[key] = e
	}
	return e
}

// face returns the ruled face from usage a to usage b with boundary
// [a, side(back), b⁻¹, side(front)⁻¹].
func (h *homotopy) face(a, b brep.OrientedEdge) *brep.Face {
	wire := brep.Wire{
		a,
		h.side(a.Back(), b.Back()).Forward(),
		b.Inverse(),
		h.side(a.Front(), b.Front()).Backward(),
	}
	return face([]brep.Wire{wire}, geom.Ruled{C0: a.Curve(), C1: b.Curve()})
}

func newHomotopy() *homotopy {
	return &homotopy{
		sides: make(map[vertexPair]*brep.Edge),
		pairs: make(map[*brep.Vertex]*brep.Vertex),
	}
}

// Homotopy returns the ruled face interpolating from edge e0 to edge e1.
// Front is paired with front and back with back.
func Homotopy(e0, e1 *brep.Edge) *brep.Face {
	if e0 == e1 {
		panic(&brep.IncompatibleWiresError{Reason: "homotopy of an edge with itself"})
	}
	return newHomotopy().face(e0.Forward(), e1.Forward())
}

// HomotopyWire returns the shell of ruled faces interpolating wire a into wire b,
// the i'th usage of a paired with the i'th usage of b.
func HomotopyWire(a, b brep.Wire) brep.Shell {
	switch {
	case len(a) == 0 || len(b) == 0:
		panic(&brep.IncompatibleWiresError{Reason: "empty wire"})
	case len(a) != len(b):
		panic(&brep.IncompatibleWiresError{Reason: "edge counts differ"})
	case !a.IsConnected() || !b.IsConnected():
		panic(&brep.IncompatibleWiresError{Reason: "wire is not connected"})
	case a.IsClosed() != b.IsClosed():
		panic(&brep.IncompatibleWiresError{Reason: "one wire is closed and the other open"})
	}
	h := newHomotopy()
	shell := make(brep.Shell, len(a))
	for i := range a {
		shell[i] = h.face(a[i], b[i])
	}
	brep.Logger().Debug("homotopy", "faces", len(shell))
	return shell
}
