package geom

import (
	"github.com/soypat/brep/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Divisions returns the smallest number of equal parameter segments, clamped
// to [min, max], such that the chord of each segment deviates at most tol from
// the curve at the segment's parameter midpoint. Closed curves use at least
// three segments.
func Divisions(c Curve, tol float64, min, max int) int {
	t0, t1 := c.Range()
	if IsClosed(c) && min < 3 {
		min = 3
	}
	return divisions(c.Eval, t0, t1, tol, min, max)
}

// IsoDivisions returns the number of divisions needed along u and along v
// so that iso-parameter lines of s sampled at several fixed parameters
// deviate at most tol from their chords.
func IsoDivisions(s Surface, tol float64, min, max int) (nu, nv int) {
	const lines = 5
	u0, u1, v0, v1 := s.Range()
	nu, nv = min, min
	for i := 0; i < lines; i++ {
		f := float64(i) / (lines - 1)
		v := v0 + f*(v1-v0)
		u := u0 + f*(u1-u0)
		alongU := func(t float64) r3.Vec { return s.Eval(t, v) }
		alongV := func(t float64) r3.Vec { return s.Eval(u, t) }
		if n := divisions(alongU, u0, u1, tol, min, max); n > nu {
			nu = n
		}
		if n := divisions(alongV, v0, v1, tol, min, max); n > nv {
			nv = n
		}
	}
	return nu, nv
}

func divisions(f func(float64) r3.Vec, t0, t1, tol float64, min, max int) int {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	ok := func(n int) bool {
		return chordDeviation(f, t0, t1, n) <= tol
	}
	if ok(min) {
		return min
	}
	// Grow geometrically then bisect between last failing and first passing counts.
	lo, hi := min, min
	for {
		lo = hi
		hi *= 2
		if hi >= max {
			hi = max
			if !ok(max) {
				return max
			}
			break
		}
		if ok(hi) {
			break
		}
	}
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if ok(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

func chordDeviation(f func(float64) r3.Vec, t0, t1 float64, n int) float64 {
	var dev float64
	dt := (t1 - t0) / float64(n)
	prev := f(t0)
	for i := 1; i <= n; i++ {
		next := f(t0 + float64(i)*dt)
		mid := f(t0 + (float64(i)-0.5)*dt)
		dev = maxf(dev, r3.Norm(r3.Sub(mid, d3.Lerp(prev, next, 0.5))))
		prev = next
	}
	return dev
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Sample returns n+1 points of c at equally spaced parameters from t0 to t1.
func Sample(c Curve, n int) []r3.Vec {
	t0, t1 := c.Range()
	pts := make([]r3.Vec, n+1)
	for i := range pts {
		pts[i] = c.Eval(t0 + (t1-t0)*float64(i)/float64(n))
	}
	return pts
}
