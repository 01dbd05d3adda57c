package brep

import (
	"errors"

	"github.com/soypat/brep/geom"
	"github.com/soypat/brep/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vertex is a point of the boundary representation. Vertices are compared by
// identity: two vertices at the same location are distinct unless they are
// the same *Vertex.
type Vertex struct {
	point r3.Vec
}

// NewVertex returns a new Vertex at p.
func NewVertex(p r3.Vec) *Vertex {
	return &Vertex{point: p}
}

// Point returns the location of the vertex.
func (v *Vertex) Point() r3.Vec { return v.point }

// Edge is a curve between two vertices. The curve runs from Front at the start
// of its range to Back at the end of its range. Front and Back are the same
// Vertex for closed edges. Faces share Edges by pointer.
type Edge struct {
	front, back *Vertex
	curve       geom.Curve
}

// NewEdge returns a new Edge from front to back along c. The curve ends
// must coincide with the vertices.
func NewEdge(front, back *Vertex, c geom.Curve) (*Edge, error) {
	if front == nil || back == nil || c == nil {
		return nil, errors.New("nil edge argument")
	}
	p0, p1 := geom.Ends(c)
	if !d3.EqualWithin(p0, front.point, geom.Tolerance) || !d3.EqualWithin(p1, back.point, geom.Tolerance) {
		return nil, errors.New("curve ends do not match edge vertices")
	}
	return &Edge{front: front, back: back, curve: c}, nil
}

func (e *Edge) Front() *Vertex { return e.front }

func (e *Edge) Back() *Vertex { return e.back }

// Curve returns the curve of e in its own forward direction.
func (e *Edge) Curve() geom.Curve { return e.curve }

// IsClosed returns true if the edge starts and ends at the same vertex.
func (e *Edge) IsClosed() bool { return e.front == e.back }

// Forward returns a usage of e in its own direction.
func (e *Edge) Forward() OrientedEdge { return OrientedEdge{Edge: e} }

// Backward returns a usage of e in the opposite direction.
func (e *Edge) Backward() OrientedEdge { return OrientedEdge{Edge: e, Reversed: true} }

// OrientedEdge is an Edge at a usage site, i.e. inside a Wire. The same Edge
// is traversed in opposite directions by the two faces that border it in an
// oriented shell.
type OrientedEdge struct {
	Edge     *Edge
	Reversed bool
}

// Front returns the vertex where the usage starts.
func (o OrientedEdge) Front() *Vertex {
	if o.Reversed {
		return o.Edge.back
	}
	return o.Edge.front
}

// Back returns the vertex where the usage ends.
func (o OrientedEdge) Back() *Vertex {
	if o.Reversed {
		return o.Edge.front
	}
	return o.Edge.back
}

// Inverse returns the usage traversing the edge the other way.
func (o OrientedEdge) Inverse() OrientedEdge {
	return OrientedEdge{Edge: o.Edge, Reversed: !o.Reversed}
}

// Curve returns the edge curve oriented along the usage direction.
func (o OrientedEdge) Curve() geom.Curve {
	if o.Reversed {
		return o.Edge.curve.Reverse()
	}
	return o.Edge.curve
}

// Eval returns the point at fraction t in [0,1] of the usage, from Front at
// t=0 to Back at t=1.
func (o OrientedEdge) Eval(t float64) r3.Vec {
	if o.Reversed {
		t = 1 - t
	}
	t0, t1 := o.Edge.curve.Range()
	return o.Edge.curve.Eval(t0 + t*(t1-t0))
}

// Wire is an ordered sequence of edge usages. In a connected wire
// each usage ends where the next starts.
type Wire []OrientedEdge

// Front returns the first vertex of the wire.
func (w Wire) Front() *Vertex {
	if len(w) == 0 {
		return nil
	}
	return w[0].Front()
}

// Back returns the last vertex of the wire.
func (w Wire) Back() *Vertex {
	if len(w) == 0 {
		return nil
	}
	return w[len(w)-1].Back()
}

// IsConnected returns true if consecutive usages share vertices.
func (w Wire) IsConnected() bool {
	for i := 1; i < len(w); i++ {
		if w[i-1].Back() != w[i].Front() {
			return false
		}
	}
	return true
}

// IsClosed returns true if w is a non-empty connected loop.
func (w Wire) IsClosed() bool {
	return len(w) > 0 && w.IsConnected() && w.Back() == w.Front()
}

// Inverse returns a new wire traversing w backwards.
func (w Wire) Inverse() Wire {
	inv := make(Wire, len(w))
	for i, oe := range w {
		inv[len(w)-1-i] = oe.Inverse()
	}
	return inv
}

// Vertices returns the distinct vertices of w in traversal order.
func (w Wire) Vertices() []*Vertex {
	seen := make(map[*Vertex]bool)
	var verts []*Vertex
	for _, oe := range w {
		for _, v := range [2]*Vertex{oe.Front(), oe.Back()} {
			if !seen[v] {
				seen[v] = true
				verts = append(verts, v)
			}
		}
	}
	return verts
}

// Edges returns the distinct edges of w in traversal order.
func (w Wire) Edges() []*Edge {
	seen := make(map[*Edge]bool)
	var edges []*Edge
	for _, oe := range w {
		if !seen[oe.Edge] {
			seen[oe.Edge] = true
			edges = append(edges, oe.Edge)
		}
	}
	return edges
}
