package must

import (
	"github.com/soypat/brep"
	"github.com/soypat/brep/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Shape is any topological entity.
type Shape interface {
	*brep.Vertex | *brep.Edge | brep.Wire | *brep.Face | brep.Shell | *brep.Solid
}

// Translated returns a copy of s moved by v. The copy shares no entity with s.
func Translated[T Shape](s T, v r3.Vec) T {
	return Transformed(s, geom.Translation(v))
}

// Rotated returns a copy of s rotated angle radians about the axis through point.
func Rotated[T Shape](s T, point, axis r3.Vec, angle float64) T {
	if r3.Norm(axis) < geom.Tolerance {
		panic(&brep.DegenerateSweepError{Op: "rotate", Reason: "zero length rotation axis"})
	}
	return Transformed(s, geom.RotationAbout(point, axis, angle))
}

// Transformed returns a copy of s moved by the rigid motion m. Entities shared
// within s remain shared within the copy.
func Transformed[T Shape](s T, m geom.Motion) T {
	c := copier{
		m:     m,
		verts: make(map[*brep.Vertex]*brep.Vertex),
		edges: make(map[*brep.Edge]*brep.Edge),
	}
	var out any
	switch s := any(s).(type) {
	case *brep.Vertex:
		out = c.vertex(s)
	case *brep.Edge:
		out = c.edge(s)
	case brep.Wire:
		out = c.wire(s)
	case *brep.Face:
		out = c.face(s)
	case brep.Shell:
		out = c.shell(s)
	case *brep.Solid:
		shells := make([]brep.Shell, len(s.Boundaries()))
		for i, sh := range s.Boundaries() {
			shells[i] = c.shell(sh)
		}
		solid, err := brep.NewSolid(shells...)
		if err != nil {
			panic(err)
		}
		out = solid
	}
	return out.(T)
}

type copier struct {
	m     geom.Motion
	verts map[*brep.Vertex]*brep.Vertex
	edges map[*brep.Edge]*brep.Edge
}

func (c *copier) vertex(v *brep.Vertex) *brep.Vertex {
	cv, ok := c.verts[v]
	if !ok {
		cv = brep.NewVertex(c.m.Apply(v.Point()))
		c.verts[v] = cv
	}
	return cv
}

func (c *copier) edge(e *brep.Edge) *brep.Edge {
	ce, ok := c.edges[e]
	if !ok {
		ce = edge(c.vertex(e.Front()), c.vertex(e.Back()), e.Curve().Transform(c.m))
		c.edges[e] = ce
	}
	return ce
}

func (c *copier) wire(w brep.Wire) brep.Wire {
	cw := make(brep.Wire, len(w))
	for i, oe := range w {
		cw[i] = brep.OrientedEdge{Edge: c.edge(oe.Edge), Reversed: oe.Reversed}
	}
	return cw
}

func (c *copier) face(f *brep.Face) *brep.Face {
	raw := rawBoundaries(f)
	for i, w := range raw {
		raw[i] = c.wire(w)
	}
	cf := face(raw, f.Surface().Transform(c.m))
	if f.IsFlipped() {
		cf.Invert()
	}
	return cf
}

func (c *copier) shell(s brep.Shell) brep.Shell {
	cs := make(brep.Shell, len(s))
	for i, f := range s {
		cs[i] = c.face(f)
	}
	return cs
}
