package geom

import (
	"errors"
	"math"

	"github.com/soypat/brep/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Curve is a parametric curve in 3D space. Edges carry a Curve parametrized
// from their front vertex at t0 to their back vertex at t1.
type Curve interface {
	// Eval returns the point at parameter t.
	Eval(t float64) r3.Vec
	// Derivative returns the derivative of Eval with respect to t.
	Derivative(t float64) r3.Vec
	// Range returns the parameter domain of the curve.
	Range() (t0, t1 float64)
	// Transform returns a copy of the curve moved by m.
	Transform(m Motion) Curve
	// Reverse returns a copy of the curve traversed in the opposite
	// direction over the same range.
	Reverse() Curve
}

var (
	_ Curve = Line{}
	_ Curve = Arc{}
)

// Line is the straight segment from P0 at t=0 to P1 at t=1.
type Line struct {
	P0, P1 r3.Vec
}

func (l Line) Eval(t float64) r3.Vec { return d3.Lerp(l.P0, l.P1, t) }

func (l Line) Derivative(float64) r3.Vec { return r3.Sub(l.P1, l.P0) }

func (l Line) Range() (t0, t1 float64) { return 0, 1 }

func (l Line) Transform(m Motion) Curve {
	return Line{P0: m.Apply(l.P0), P1: m.Apply(l.P1)}
}

func (l Line) Reverse() Curve { return Line{P0: l.P1, P1: l.P0} }

// Length returns the length of the segment.
func (l Line) Length() float64 { return r3.Norm(r3.Sub(l.P1, l.P0)) }

// Arc is a circular arc. The point at parameter t in [0,1] is Start rotated
// about Axis by t*Angle radians, offset by Center. Axis is a unit vector
// and Start is perpendicular to it. An Angle of ±2π describes a full circle.
type Arc struct {
	Center r3.Vec
	Axis   r3.Vec
	Start  r3.Vec
	Angle  float64
}

// ArcAbout returns the arc described by point p rotating angle radians about
// the axis through point with direction axis. The arc has zero radius when p is
// on the axis.
func ArcAbout(p, point, axis r3.Vec, angle float64) Arc {
	axis = r3.Unit(axis)
	rel := r3.Sub(p, point)
	center := r3.Add(point, r3.Scale(r3.Dot(rel, axis), axis))
	return Arc{
		Center: center,
		Axis:   axis,
		Start:  r3.Sub(p, center),
		Angle:  angle,
	}
}

// NewArcThrough returns the circular arc that starts at p0, passes through
// transit and ends at p1. It fails if the three points are collinear.
func NewArcThrough(p0, p1, transit r3.Vec) (Arc, error) {
	a := r3.Sub(p0, p1)
	b := r3.Sub(transit, p1)
	axb := r3.Cross(a, b)
	den := 2 * r3.Norm2(axb)
	if den < Tolerance*Tolerance {
		return Arc{}, errors.New("arc points are collinear")
	}
	num := r3.Cross(r3.Sub(r3.Scale(r3.Norm2(a), b), r3.Scale(r3.Norm2(b), a)), axb)
	center := r3.Add(p1, r3.Scale(1/den, num))
	// p0, transit, p1 turn counter clockwise about n.
	n := r3.Unit(r3.Cross(r3.Sub(transit, p0), r3.Sub(p1, transit)))
	u := r3.Sub(p0, center)
	w := r3.Sub(p1, center)
	angle := math.Atan2(r3.Dot(n, r3.Cross(u, w)), r3.Dot(u, w))
	if angle <= 0 {
		angle += 2 * math.Pi
	}
	return Arc{Center: center, Axis: n, Start: u, Angle: angle}, nil
}

func (a Arc) Eval(t float64) r3.Vec {
	return r3.Add(a.Center, rotate(a.Start, a.Axis, t*a.Angle))
}

func (a Arc) Derivative(t float64) r3.Vec {
	r := rotate(a.Start, a.Axis, t*a.Angle)
	return r3.Scale(a.Angle, r3.Cross(a.Axis, r))
}

func (a Arc) Range() (t0, t1 float64) { return 0, 1 }

func (a Arc) Transform(m Motion) Curve {
	return Arc{
		Center: m.Apply(a.Center),
		Axis:   m.ApplyDir(a.Axis),
		Start:  m.ApplyDir(a.Start),
		Angle:  a.Angle,
	}
}

func (a Arc) Reverse() Curve {
	return Arc{
		Center: a.Center,
		Axis:   r3.Scale(-1, a.Axis),
		Start:  rotate(a.Start, a.Axis, a.Angle),
		Angle:  a.Angle,
	}
}

// Radius returns the distance from the arc to its center.
func (a Arc) Radius() float64 { return r3.Norm(a.Start) }

// IsFull reports whether the arc describes a full turn.
func (a Arc) IsFull() bool { return math.Abs(a.Angle) >= 2*math.Pi-1e-12 }

// rotate rotates v about the unit axis k by theta radians (Rodrigues).
func rotate(v, k r3.Vec, theta float64) r3.Vec {
	sin, cos := math.Sincos(theta)
	return r3.Add(
		r3.Add(r3.Scale(cos, v), r3.Scale(sin, r3.Cross(k, v))),
		r3.Scale(r3.Dot(k, v)*(1-cos), k),
	)
}

// IsClosed reports whether the curve starts and ends at the same point.
func IsClosed(c Curve) bool {
	t0, t1 := c.Range()
	return d3.EqualWithin(c.Eval(t0), c.Eval(t1), Tolerance)
}

// Ends returns the start and end points of c.
func Ends(c Curve) (front, back r3.Vec) {
	t0, t1 := c.Range()
	return c.Eval(t0), c.Eval(t1)
}
