package geom

import (
	"math"

	"github.com/soypat/brep/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Surface is a parametric surface in 3D space. The positive normal of the
// surface is the direction of ∂u×∂v.
type Surface interface {
	// Eval returns the point at parameters (u,v).
	Eval(u, v float64) r3.Vec
	// Partials returns the partial derivatives ∂/∂u and ∂/∂v at (u,v).
	Partials(u, v float64) (du, dv r3.Vec)
	// Range returns the parameter domain of the surface.
	Range() (u0, u1, v0, v1 float64)
	// Transform returns a copy of the surface moved by m.
	Transform(m Motion) Surface
}

var (
	_ Surface = Plane{}
	_ Surface = Extrusion{}
	_ Surface = Revolution{}
	_ Surface = Ruled{}
)

// Normal returns the unit normal of s at (u,v). Where the partial derivatives
// are parallel (poles of a revolution) the normal is estimated from a
// nearby interior point.
func Normal(s Surface, u, v float64) r3.Vec {
	du, dv := s.Partials(u, v)
	n := r3.Cross(du, dv)
	if r3.Norm2(n) > 1e-24 {
		return r3.Unit(n)
	}
	u0, u1, v0, v1 := s.Range()
	const nudge = 1e-4
	u += nudge * (0.5*(u0+u1) - u)
	v += nudge * (0.5*(v0+v1) - v)
	du, dv = s.Partials(u, v)
	n = r3.Cross(du, dv)
	if r3.Norm2(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Plane is the flat surface Origin + u*U + v*V. U and V are expected
// to be orthonormal when the plane is used to project points.
type Plane struct {
	Origin r3.Vec
	U, V   r3.Vec
}

// NewPlane returns the plane through origin with the given normal.
func NewPlane(origin, normal r3.Vec) Plane {
	u, v := d3.Orthonormal(normal)
	return Plane{Origin: origin, U: u, V: v}
}

func (p Plane) Eval(u, v float64) r3.Vec {
	return r3.Add(p.Origin, r3.Add(r3.Scale(u, p.U), r3.Scale(v, p.V)))
}

func (p Plane) Partials(u, v float64) (du, dv r3.Vec) { return p.U, p.V }

func (p Plane) Range() (u0, u1, v0, v1 float64) { return 0, 1, 0, 1 }

func (p Plane) Transform(m Motion) Surface {
	return Plane{Origin: m.Apply(p.Origin), U: m.ApplyDir(p.U), V: m.ApplyDir(p.V)}
}

// Normal returns the unit normal of the plane.
func (p Plane) Normal() r3.Vec { return r3.Unit(r3.Cross(p.U, p.V)) }

// Project returns the plane coordinates of the orthogonal projection of q.
func (p Plane) Project(q r3.Vec) r2.Vec { return d3.Project(q, p.Origin, p.U, p.V) }

// Distance returns the signed distance from q to the plane.
func (p Plane) Distance(q r3.Vec) float64 {
	return r3.Dot(r3.Sub(q, p.Origin), p.Normal())
}

// Extrusion is the surface swept by Curve translated along Vector:
// Curve(u) + v*Vector with v in [0,1].
type Extrusion struct {
	Curve  Curve
	Vector r3.Vec
}

func (e Extrusion) Eval(u, v float64) r3.Vec {
	return r3.Add(e.Curve.Eval(u), r3.Scale(v, e.Vector))
}

func (e Extrusion) Partials(u, v float64) (du, dv r3.Vec) {
	return e.Curve.Derivative(u), e.Vector
}

func (e Extrusion) Range() (u0, u1, v0, v1 float64) {
	u0, u1 = e.Curve.Range()
	return u0, u1, 0, 1
}

func (e Extrusion) Transform(m Motion) Surface {
	return Extrusion{Curve: e.Curve.Transform(m), Vector: m.ApplyDir(e.Vector)}
}

// Revolution is the surface swept by Curve rotating v*Angle radians about
// the axis through Point with direction Axis, v in [0,1].
type Revolution struct {
	Curve Curve
	Point r3.Vec
	Axis  r3.Vec
	Angle float64
}

func (r Revolution) motion(v float64) Motion {
	return RotationAbout(r.Point, r.Axis, v*r.Angle)
}

func (r Revolution) Eval(u, v float64) r3.Vec {
	return r.motion(v).Apply(r.Curve.Eval(u))
}

func (r Revolution) Partials(u, v float64) (du, dv r3.Vec) {
	m := r.motion(v)
	p := m.Apply(r.Curve.Eval(u))
	du = m.ApplyDir(r.Curve.Derivative(u))
	dv = r3.Scale(r.Angle, r3.Cross(r3.Unit(r.Axis), r3.Sub(p, r.Point)))
	return du, dv
}

func (r Revolution) Range() (u0, u1, v0, v1 float64) {
	u0, u1 = r.Curve.Range()
	return u0, u1, 0, 1
}

func (r Revolution) Transform(m Motion) Surface {
	return Revolution{
		Curve: r.Curve.Transform(m),
		Point: m.Apply(r.Point),
		Axis:  m.ApplyDir(r.Axis),
		Angle: r.Angle,
	}
}

// Ruled is the surface interpolating linearly between two curves,
// (1-v)*C0(u) + v*C1(u), where both curve ranges are mapped onto u in [0,1].
type Ruled struct {
	C0, C1 Curve
}

func mapParam(c Curve, u float64) (t, scale float64) {
	t0, t1 := c.Range()
	return t0 + u*(t1-t0), t1 - t0
}

func (r Ruled) Eval(u, v float64) r3.Vec {
	t0, _ := mapParam(r.C0, u)
	t1, _ := mapParam(r.C1, u)
	return d3.Lerp(r.C0.Eval(t0), r.C1.Eval(t1), v)
}

func (r Ruled) Partials(u, v float64) (du, dv r3.Vec) {
	t0, s0 := mapParam(r.C0, u)
	t1, s1 := mapParam(r.C1, u)
	du = r3.Add(
		r3.Scale((1-v)*s0, r.C0.Derivative(t0)),
		r3.Scale(v*s1, r.C1.Derivative(t1)),
	)
	dv = r3.Sub(r.C1.Eval(t1), r.C0.Eval(t0))
	return du, dv
}

func (r Ruled) Range() (u0, u1, v0, v1 float64) { return 0, 1, 0, 1 }

func (r Ruled) Transform(m Motion) Surface {
	return Ruled{C0: r.C0.Transform(m), C1: r.C1.Transform(m)}
}

// PlaneOf returns the plane containing surface s if every sample of s lies
// within tol of it. The returned plane normal agrees with the normal of s.
func PlaneOf(s Surface, tol float64) (Plane, bool) {
	if p, ok := s.(Plane); ok {
		return NewPlane(p.Origin, p.Normal()), true
	}
	const n = 6
	u0, u1, v0, v1 := s.Range()
	samples := make(d3.Set, 0, n*n)
	for i := 0; i < n; i++ {
		u := u0 + (u1-u0)*float64(i)/(n-1)
		for j := 0; j < n; j++ {
			v := v0 + (v1-v0)*float64(j)/(n-1)
			samples = append(samples, s.Eval(u, v))
		}
	}
	origin := samples.Centroid()
	normal := Normal(s, 0.5*(u0+u1), 0.5*(v0+v1))
	if normal == (r3.Vec{}) {
		return Plane{}, false
	}
	plane := NewPlane(origin, normal)
	for _, q := range samples {
		if math.Abs(plane.Distance(q)) > tol {
			return Plane{}, false
		}
	}
	return plane, true
}

// NewellNormal returns the area weighted normal of the closed polygon
// given by points. Its length is twice the polygon area.
func NewellNormal(points []r3.Vec) r3.Vec {
	var n r3.Vec
	for i, p := range points {
		q := points[(i+1)%len(points)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	return n
}
