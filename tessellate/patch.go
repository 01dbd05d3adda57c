package tessellate

import (
	"errors"
	"fmt"

	"github.com/soypat/brep"
	"github.com/soypat/brep/geom"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sides of the parameter rectangle of a patch, in boundary order.
const (
	bottom = iota // v=0, u increasing
	right         // u=1, v increasing
	top           // v=1, u decreasing
	left          // u=0, v decreasing
)

// patch maps the usages of a swept face boundary onto the sides of its
// parameter rectangle. Sides that collapse to a point, such as the side
// traced by a vertex on a rotation axis, have no usage and hold -1.
type patch struct {
	w     brep.Wire
	sides [4]int
}

func (p patch) usage(side int) (brep.OrientedEdge, bool) {
	if p.sides[side] < 0 {
		return brep.OrientedEdge{}, false
	}
	return p.w[p.sides[side]], true
}

// patchOf returns the patch layout of a curved face bounded by a single wire
// of two to four usages. Plane faces are never patches.
func patchOf(f *brep.Face) (patch, bool) {
	if _, isPlane := f.Surface().(geom.Plane); isPlane {
		return patch{}, false
	}
	raw := rawBoundaries(f)
	if len(raw) != 1 || len(raw[0]) < 2 || len(raw[0]) > 4 {
		return patch{}, false
	}
	p := patch{w: raw[0], sides: [4]int{0, 1, 2, 3}}
	if len(p.w) == 4 {
		return p, true
	}
	s := f.Surface()
	u0, u1, v0, v1 := s.Range()
	collapsed := [4]bool{
		bottom: isPoint(func(t float64) r3.Vec { return s.Eval(t, v0) }, u0, u1),
		right:  isPoint(func(t float64) r3.Vec { return s.Eval(u1, t) }, v0, v1),
		top:    isPoint(func(t float64) r3.Vec { return s.Eval(t, v1) }, u0, u1),
		left:   isPoint(func(t float64) r3.Vec { return s.Eval(u0, t) }, v0, v1),
	}
	next := 0
	for side, c := range collapsed {
		if c {
			p.sides[side] = -1
			continue
		}
		if next == len(p.w) {
			return patch{}, false
		}
		p.sides[side] = next
		next++
	}
	if next != len(p.w) || (collapsed[bottom] && collapsed[top]) {
		return patch{}, false
	}
	return p, true
}

// isPoint reports whether f maps all of [t0,t1] to a single point.
func isPoint(f func(float64) r3.Vec, t0, t1 float64) bool {
	const samples = 8
	p0 := f(t0)
	for i := 1; i <= samples; i++ {
		if r3.Norm(r3.Sub(f(t0+(t1-t0)*float64(i)/samples), p0)) > geom.Tolerance {
			return false
		}
	}
	return true
}

// gridPatch triangulates a patch on a structured (u,v) grid. The samples of
// its boundary usages become the grid border. Collapsed sides become a single
// grid vertex and the triangles degenerating on them are left out.
func gridPatch(f *brep.Face, p patch, samples map[*brep.Edge][]r3.Vec, opts Options) (FaceMesh, error) {
	var border [4][]r3.Vec
	for side := range border {
		if oe, ok := p.usage(side); ok {
			border[side] = usageSamples(oe, samples)
		}
	}
	s := f.Surface()
	u0, u1, v0, v1 := s.Range()
	nu, nv := len(border[bottom])-1, len(border[right])-1
	if border[bottom] == nil {
		nu = len(border[top]) - 1
	}
	if border[right] == nil {
		nv = len(border[left]) - 1
	}
	if border[right] == nil && border[left] == nil {
		// Both ends of the seed lie on the axis: nothing but the surface sets nv.
		_, nv = geom.IsoDivisions(s, opts.Tolerance, opts.MinDivisions, opts.MaxDivisions)
		um := 0.5 * (u0 + u1)
		if r3.Norm(r3.Sub(s.Eval(um, v0), s.Eval(um, v1))) < geom.Tolerance {
			nv = max(nv, 3)
		}
	}
	switch {
	case nu < 1 || nv < 1:
		return FaceMesh{}, errors.New("patch side without samples")
	case border[top] != nil && border[bottom] != nil && len(border[top])-1 != nu:
		return FaceMesh{}, fmt.Errorf("opposite patch sides sampled %d and %d times", nu, len(border[top])-1)
	case border[left] != nil && border[right] != nil && len(border[left])-1 != nv:
		return FaceMesh{}, fmt.Errorf("opposite patch sides sampled %d and %d times", nv, len(border[left])-1)
	}
	param := func(i, j int) (u, v float64) {
		return u0 + (u1-u0)*float64(i)/float64(nu), v0 + (v1-v0)*float64(j)/float64(nv)
	}

	var fm FaceMesh
	poles := [4]int{-1, -1, -1, -1}
	// pole returns the single grid vertex of a collapsed side.
	pole := func(side int) int {
		if poles[side] >= 0 {
			return poles[side]
		}
		var pt r3.Vec
		switch side {
		case bottom:
			pt = corner(border[left], nv, border[right], 0)
		case right:
			pt = corner(border[bottom], nu, border[top], 0)
		case top:
			pt = corner(border[right], nv, border[left], 0)
		case left:
			pt = corner(border[top], nu, border[bottom], 0)
		}
		// Average the normals along the side, which may not be defined at the point itself.
		var n r3.Vec
		along := nu
		if side == left || side == right {
			along = nv
		}
		for k := 0; k <= along; k++ {
			var u, v float64
			switch side {
			case bottom:
				u, v = param(k, 0)
			case right:
				u, v = param(nu, k)
			case top:
				u, v = param(k, nv)
			case left:
				u, v = param(0, k)
			}
			n = r3.Add(n, f.Normal(u, v))
		}
		if r3.Norm(n) > 0 {
			n = r3.Unit(n)
		}
		var uv r2.Vec
		switch side {
		case bottom, top:
			uv.X, uv.Y = 0.5*(u0+u1), v0
			if side == top {
				uv.Y = v1
			}
		default:
			uv.X, uv.Y = u0, 0.5*(v0+v1)
			if side == right {
				uv.X = u1
			}
		}
		poles[side] = fm.add(pt, n, uv)
		return poles[side]
	}

	idx := make([][]int, nu+1)
	for i := 0; i <= nu; i++ {
		idx[i] = make([]int, nv+1)
		for j := 0; j <= nv; j++ {
			u, v := param(i, j)
			switch {
			case i == 0 && border[left] == nil:
				idx[i][j] = pole(left)
				continue
			case i == nu && border[right] == nil:
				idx[i][j] = pole(right)
				continue
			case j == 0 && border[bottom] == nil:
				idx[i][j] = pole(bottom)
				continue
			case j == nv && border[top] == nil:
				idx[i][j] = pole(top)
				continue
			}
			var pt r3.Vec
			switch {
			case j == 0:
				pt = border[bottom][i]
			case j == nv:
				pt = border[top][nu-i]
			case i == 0:
				pt = border[left][nv-j]
			case i == nu:
				pt = border[right][j]
			default:
				pt = s.Eval(u, v)
			}
			idx[i][j] = fm.add(pt, f.Normal(u, v), r2.Vec{X: u, Y: v})
		}
	}
	flip := f.IsFlipped()
	emit := func(a, b, c int) {
		if a == b || b == c || c == a {
			return
		}
		if flip {
			a, c = c, a
		}
		fm.Triangles = append(fm.Triangles, [3]int{a, b, c})
	}
	for i := 0; i < nu; i++ {
		for j := 0; j < nv; j++ {
			a, b, c, d := idx[i][j], idx[i+1][j], idx[i+1][j+1], idx[i][j+1]
			emit(a, b, c)
			emit(a, c, d)
		}
	}
	return fm, nil
}

// corner returns the shared end of two sides adjacent to a collapsed side:
// sample at of a if a is present, otherwise sample bt of b.
func corner(a []r3.Vec, at int, b []r3.Vec, bt int) r3.Vec {
	if a != nil {
		return a[at]
	}
	return b[bt]
}
