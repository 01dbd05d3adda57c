package geom

import (
	"github.com/soypat/brep/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tolerance is the distance under which two points are considered coincident.
const Tolerance = 1e-6

// Motion is a rigid motion of space: a rotation followed by a translation.
// The zero value is the identity motion.
type Motion struct {
	t d3.Transform
}

// Translation returns the Motion that moves every point by v.
func Translation(v r3.Vec) Motion {
	return Motion{t: d3.Transform{}.Translate(v)}
}

// RotationAbout returns the Motion that rotates space by angle radians about the
// axis passing through point with direction axis. Positive angles rotate counter
// clockwise when looking from the tip of axis towards point.
func RotationAbout(point, axis r3.Vec, angle float64) Motion {
	return Motion{t: d3.RotateAbout(point, axis, angle)}
}

// Apply moves point p.
func (m Motion) Apply(p r3.Vec) r3.Vec { return m.t.Transform(p) }

// ApplyDir rotates the free vector d. Translation does not affect it.
func (m Motion) ApplyDir(d r3.Vec) r3.Vec { return m.t.Direction(d) }

// Then returns the Motion that applies m and then next.
func (m Motion) Then(next Motion) Motion {
	return Motion{t: next.t.Mul(m.t)}
}

// IsIdentity reports whether m leaves space unchanged.
func (m Motion) IsIdentity() bool { return m.t == (d3.Transform{}) }
