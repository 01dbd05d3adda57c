package must

import (
	"math"

	"github.com/soypat/brep"
	"github.com/soypat/brep/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

const tau = 2 * math.Pi

// sweeper moves topology along a one parameter family of rigid motions and
// memoizes every copy and side entity so that neighbouring faces share them.
type sweeper struct {
	op string
	// end is the motion at the end of the sweep.
	end geom.Motion
	// closed sweeps identify the end copy with the seed.
	closed bool
	// rotation sweeps fix the points of the line through point along axis.
	rotation    bool
	point, axis r3.Vec
	// path returns the curve traced by a point.
	path func(p r3.Vec) geom.Curve
	// surface returns the surface traced by a curve.
	surface func(c geom.Curve) geom.Surface
	// velocity returns the direction a point moves at the start of the sweep.
	velocity func(p r3.Vec) r3.Vec

	vcopy map[*brep.Vertex]*brep.Vertex
	ecopy map[*brep.Edge]*brep.Edge
	side  map[*brep.Vertex]*brep.Edge
}

func newTranslation(op string, d r3.Vec) *sweeper {
	if r3.Norm(d) < geom.Tolerance {
		panic(&brep.DegenerateSweepError{Op: op, Reason: "zero length sweep vector"})
	}
	return &sweeper{
		op:       op,
		end:      geom.Translation(d),
		path:     func(p r3.Vec) geom.Curve { return geom.Line{P0: p, P1: r3.Add(p, d)} },
		surface:  func(c geom.Curve) geom.Surface { return geom.Extrusion{Curve: c, Vector: d} },
		velocity: func(r3.Vec) r3.Vec { return d },
		vcopy:    make(map[*brep.Vertex]*brep.Vertex),
		ecopy:    make(map[*brep.Edge]*brep.Edge),
		side:     make(map[*brep.Vertex]*brep.Edge),
	}
}

func newRotation(op string, point, axis r3.Vec, angle float64) *sweeper {
	if r3.Norm(axis) < geom.Tolerance {
		panic(&brep.DegenerateSweepError{Op: op, Reason: "zero length rotation axis"})
	}
	if math.Abs(angle) < geom.Tolerance {
		panic(&brep.DegenerateSweepError{Op: op, Reason: "zero rotation angle"})
	}
	closed := math.Abs(angle) >= tau
	if closed {
		angle = math.Copysign(tau, angle)
	}
	axis = r3.Unit(axis)
	s := &sweeper{
		op:       op,
		end:      geom.RotationAbout(point, axis, angle),
		closed:   closed,
		rotation: true,
		point:    point,
		axis:     axis,
		path: func(p r3.Vec) geom.Curve {
			return geom.ArcAbout(p, point, axis, angle)
		},
		surface: func(c geom.Curve) geom.Surface {
			return geom.Revolution{Curve: c, Point: point, Axis: axis, Angle: angle}
		},
		velocity: func(p r3.Vec) r3.Vec {
			return r3.Scale(angle, r3.Cross(axis, r3.Sub(p, point)))
		},
		vcopy: make(map[*brep.Vertex]*brep.Vertex),
		ecopy: make(map[*brep.Edge]*brep.Edge),
		side:  make(map[*brep.Vertex]*brep.Edge),
	}
	return s
}

// radial returns the component of p-point perpendicular to the rotation axis.
func (s *sweeper) radial(p r3.Vec) r3.Vec {
	d := r3.Sub(p, s.point)
	return r3.Sub(d, r3.Scale(r3.Dot(d, s.axis), s.axis))
}

// onAxis reports whether the sweep leaves p in place.
func (s *sweeper) onAxis(p r3.Vec) bool {
	return s.rotation && r3.Norm(s.radial(p)) < geom.Tolerance
}

// curveOnAxis reports whether every sample of c lies on the rotation axis.
func (s *sweeper) curveOnAxis(c geom.Curve) bool {
	const samples = 16
	if !s.rotation {
		return false
	}
	t0, t1 := c.Range()
	for i := 0; i <= samples; i++ {
		if !s.onAxis(c.Eval(t0 + (t1-t0)*float64(i)/samples)) {
			return false
		}
	}
	return true
}

func (s *sweeper) vertex(v *brep.Vertex) *brep.Vertex {
	if s.closed || s.onAxis(v.Point()) {
		return v
	}
	c, ok := s.vcopy[v]
	if !ok {
		c = brep.NewVertex(s.end.Apply(v.Point()))
		s.vcopy[v] = c
	}
	return c
}

func (s *sweeper) edge(e *brep.Edge) *brep.Edge {
	if s.closed || s.curveOnAxis(e.Curve()) {
		return e
	}
	c, ok := s.ecopy[e]
	if !ok {
		c = edge(s.vertex(e.Front()), s.vertex(e.Back()), e.Curve().Transform(s.end))
		s.ecopy[e] = c
	}
	return c
}

func (s *sweeper) usage(oe brep.OrientedEdge) brep.OrientedEdge {
	return brep.OrientedEdge{Edge: s.edge(oe.Edge), Reversed: oe.Reversed}
}

// sideEdge returns the edge traced by v.
func (s *sweeper) sideEdge(v *brep.Vertex) *brep.Edge {
	e, ok := s.side[v]
	if ok {
		return e
	}
	if s.onAxis(v.Point()) {
		panic(&brep.DegenerateSweepError{Op: s.op, Reason: "vertex lies on the rotation axis"})
	}
	e = edge(v, s.vertex(v), s.path(v.Point()))
	s.side[v] = e
	return e
}

// sideFace returns the face traced by an edge usage. Its boundary is
// [seed, side(back), copy⁻¹, side(front)⁻¹] and its normal ∂u×∂s.
// Vertices on the rotation axis trace no side edge, so their side is left
// out of the boundary. An edge lying on the axis traces no face and nil is returned.
func (s *sweeper) sideFace(oe brep.OrientedEdge) *brep.Face {
	if s.curveOnAxis(oe.Curve()) {
		return nil
	}
	s.checkCurve(oe.Curve())
	wire := brep.Wire{oe}
	if !s.onAxis(oe.Back().Point()) {
		wire = append(wire, s.sideEdge(oe.Back()).Forward())
	}
	wire = append(wire, s.usage(oe).Inverse())
	if !s.onAxis(oe.Front().Point()) {
		wire = append(wire, s.sideEdge(oe.Front()).Backward())
	}
	return face([]brep.Wire{wire}, s.surface(oe.Curve()))
}

// checkCurve panics if sweeping c would yield a zero area or self
// intersecting face. Only the ends of c may lie on the rotation axis.
func (s *sweeper) checkCurve(c geom.Curve) {
	const samples = 16
	t0, t1 := c.Range()
	var swept bool
	var prev r3.Vec
	for i := 0; i <= samples; i++ {
		t := t0 + (t1-t0)*float64(i)/samples
		p := c.Eval(t)
		if s.rotation {
			r := s.radial(p)
			touches := r3.Norm(r) < geom.Tolerance
			if (touches && i > 0 && i < samples) || r3.Dot(r, prev) < 0 {
				panic(&brep.DegenerateSweepError{Op: s.op, Reason: "curve crosses the rotation axis"})
			}
			prev = r
			if touches {
				continue
			}
		}
		vel := s.velocity(p)
		tangent := c.Derivative(t)
		if r3.Norm(r3.Cross(r3.Unit(tangent), r3.Unit(vel))) > 1e-9 {
			swept = true
		}
	}
	if !swept {
		panic(&brep.DegenerateSweepError{Op: s.op, Reason: "curve is parallel to the sweep direction"})
	}
}

func (s *sweeper) wire(w brep.Wire) brep.Shell {
	if len(w) == 0 {
		panic(&brep.DegenerateSweepError{Op: s.op, Reason: "empty wire"})
	}
	if !w.IsConnected() {
		panic(&brep.DegenerateSweepError{Op: s.op, Reason: "wire is not connected"})
	}
	var shell brep.Shell
	for _, oe := range w {
		if f := s.sideFace(oe); f != nil {
			shell = append(shell, f)
		}
	}
	if len(shell) == 0 {
		panic(&brep.DegenerateSweepError{Op: s.op, Reason: "wire lies on the rotation axis"})
	}
	return shell
}

// copyFace returns the end copy of f keeping its orientation.
func (s *sweeper) copyFace(f *brep.Face) *brep.Face {
	raw := rawBoundaries(f)
	for i, w := range raw {
		moved := make(brep.Wire, len(w))
		for j, oe := range w {
			moved[j] = s.usage(oe)
		}
		raw[i] = moved
	}
	c := face(raw, f.Surface().Transform(s.end))
	if f.IsFlipped() {
		c.Invert()
	}
	return c
}

// solid sweeps face f. The resulting shell is [bottom, sides..., top]
// with the top (the moved copy of f) always last. Closed sweeps have no caps.
func (s *sweeper) solid(f *brep.Face) *brep.Solid {
	outward := s.orientation(f)
	var shell brep.Shell
	if !s.closed {
		bottom := f.Inverse()
		if !outward {
			bottom.Invert()
		}
		shell = append(shell, bottom)
	}
	for _, w := range f.Boundaries() {
		for _, oe := range w {
			side := s.sideFace(oe)
			if side == nil {
				continue
			}
			if !outward {
				side.Invert()
			}
			shell = append(shell, side)
		}
	}
	if !s.closed {
		top := s.copyFace(f)
		if !outward {
			top.Invert()
		}
		shell = append(shell, top)
	}
	solid, err := brep.NewSolid(shell)
	if err != nil {
		panic(err)
	}
	brep.Logger().Debug("swept solid", "op", s.op, "faces", len(shell), "closed", s.closed)
	return solid
}

// orientation returns true if the sweep moves the face towards its normal,
// which means the seed face becomes an inward facing bottom cap.
func (s *sweeper) orientation(f *brep.Face) bool {
	const samples = 16
	u0, u1, v0, v1 := f.Surface().Range()
	n := f.Normal(0.5*(u0+u1), 0.5*(v0+v1))
	if plane, ok := geom.PlaneOf(f.Surface(), geom.Tolerance); ok {
		n = plane.Normal()
		if f.IsFlipped() {
			n = r3.Scale(-1, n)
		}
	}
	var pos, neg bool
	for _, w := range f.Boundaries() {
		for _, oe := range w {
			c := oe.Curve()
			t0, t1 := c.Range()
			for i := 0; i < samples; i++ {
				p := c.Eval(t0 + (t1-t0)*float64(i)/samples)
				vn := r3.Dot(n, s.velocity(p))
				switch {
				case vn > geom.Tolerance:
					pos = true
				case vn < -geom.Tolerance:
					neg = true
				}
			}
		}
	}
	switch {
	case pos && neg:
		panic(&brep.DegenerateSweepError{Op: s.op, Reason: "face crosses the rotation axis"})
	case !pos && !neg:
		panic(&brep.DegenerateSweepError{Op: s.op, Reason: "sweep direction is tangent to the face"})
	}
	return pos
}

// TSweepVertex returns the edge traced by translating v along d.
func TSweepVertex(v *brep.Vertex, d r3.Vec) *brep.Edge {
	return newTranslation("tsweep vertex", d).sideEdge(v)
}

// TSweepEdge returns the face traced by translating e along d. The face
// boundary starts with e itself.
func TSweepEdge(e *brep.Edge, d r3.Vec) *brep.Face {
	return newTranslation("tsweep edge", d).sideFace(e.Forward())
}

// TSweepWire returns the shell traced by translating w along d, one face per edge usage.
func TSweepWire(w brep.Wire, d r3.Vec) brep.Shell {
	return newTranslation("tsweep wire", d).wire(w)
}

// TSweepFace returns the solid traced by translating f along d.
func TSweepFace(f *brep.Face, d r3.Vec) *brep.Solid {
	return newTranslation("tsweep face", d).solid(f)
}

// RSweepVertex returns the wire traced by rotating v by angle radians about the
// axis through point. The wire has a single edge, closed on v when |angle| >= 2π.
func RSweepVertex(v *brep.Vertex, point, axis r3.Vec, angle float64) brep.Wire {
	e := newRotation("rsweep vertex", point, axis, angle).sideEdge(v)
	return brep.Wire{e.Forward()}
}

// RSweepEdge returns the single face shell traced by rotating e. An end of e on
// the axis collapses that side of the face to a point.
func RSweepEdge(e *brep.Edge, point, axis r3.Vec, angle float64) brep.Shell {
	return newRotation("rsweep edge", point, axis, angle).wire(brep.Wire{e.Forward()})
}

// RSweepWire returns the shell traced by rotating w.
func RSweepWire(w brep.Wire, point, axis r3.Vec, angle float64) brep.Shell {
	return newRotation("rsweep wire", point, axis, angle).wire(w)
}

// RSweepFace returns the solid traced by rotating f.
func RSweepFace(f *brep.Face, point, axis r3.Vec, angle float64) *brep.Solid {
	return newRotation("rsweep face", point, axis, angle).solid(f)
}

func edge(front, back *brep.Vertex, c geom.Curve) *brep.Edge {
	e, err := brep.NewEdge(front, back, c)
	if err != nil {
		panic(err)
	}
	return e
}

func face(boundaries []brep.Wire, s geom.Surface) *brep.Face {
	f, err := brep.NewFace(boundaries, s)
	if err != nil {
		panic(err)
	}
	return f
}

// rawBoundaries returns the boundaries of f in the orientation of its surface.
func rawBoundaries(f *brep.Face) []brep.Wire {
	b := f.Boundaries()
	if f.IsFlipped() {
		for i := range b {
			b[i] = b[i].Inverse()
		}
	}
	return b
}
