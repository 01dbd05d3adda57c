package brep

import (
	"errors"
	"fmt"

	"github.com/soypat/brep/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Face is a region of a surface bounded by one outer wire and zero or more
// inner wires (holes). Boundaries are stored in the orientation of the
// surface; a flipped face reports its boundaries inverted and its normal
// negated without copying any edge.
type Face struct {
	boundaries []Wire
	surface    geom.Surface
	flipped    bool
}

// NewFace returns a face of surface s bounded by the closed wires given,
// outer boundary first. Wires must be counter clockwise when seen from the
// positive side of s, holes clockwise.
func NewFace(boundaries []Wire, s geom.Surface) (*Face, error) {
	if len(boundaries) == 0 {
		return nil, errors.New("face needs at least one boundary")
	}
	if s == nil {
		return nil, errors.New("nil surface")
	}
	for i, w := range boundaries {
		if !w.IsClosed() {
			return nil, fmt.Errorf("boundary %d is not a closed wire", i)
		}
	}
	return &Face{
		boundaries: append([]Wire(nil), boundaries...),
		surface:    s,
	}, nil
}

// Boundaries returns the boundary wires as seen from the face orientation,
// outer wire first. The returned slice may be modified freely.
func (f *Face) Boundaries() []Wire {
	out := make([]Wire, len(f.boundaries))
	for i, w := range f.boundaries {
		if f.flipped {
			out[i] = w.Inverse()
		} else {
			out[i] = append(Wire(nil), w...)
		}
	}
	return out
}

// AppendBoundary adds w, given as seen from the face orientation, as an
// inner boundary. No geometric validation is performed; see package compose.
func (f *Face) AppendBoundary(w Wire) {
	if f.flipped {
		w = w.Inverse()
	}
	f.boundaries = append(f.boundaries, w)
}

// Surface returns the surface carrying the face. Its normal points out of the
// face unless the face is flipped.
func (f *Face) Surface() geom.Surface { return f.surface }

// IsFlipped reports whether the face normal opposes its surface normal.
func (f *Face) IsFlipped() bool { return f.flipped }

// Normal returns the unit normal of the face at surface parameters (u,v).
func (f *Face) Normal(u, v float64) r3.Vec {
	n := geom.Normal(f.surface, u, v)
	if f.flipped {
		return r3.Scale(-1, n)
	}
	return n
}

// Invert flips the face orientation in place.
func (f *Face) Invert() { f.flipped = !f.flipped }

// Inverse returns a new face with opposite orientation sharing edges and surface with f.
func (f *Face) Inverse() *Face {
	return &Face{
		boundaries: append([]Wire(nil), f.boundaries...),
		surface:    f.surface,
		flipped:    !f.flipped,
	}
}

// Edges returns the distinct edges of all boundaries in traversal order.
func (f *Face) Edges() []*Edge {
	seen := make(map[*Edge]bool)
	var edges []*Edge
	for _, w := range f.boundaries {
		for _, e := range w.Edges() {
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	return edges
}
