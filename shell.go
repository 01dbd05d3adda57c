package brep

import "fmt"

// ShellCondition classifies the connectivity of a shell or mesh by how many
// times each edge is used and in which direction. Higher values imply every
// property of the lower ones.
type ShellCondition uint8

const (
	// Irregular shells have an edge used by more than two faces.
	Irregular ShellCondition = iota
	// Disoriented shells are manifold but two faces traverse a shared edge
	// in the same direction.
	Disoriented
	// Oriented shells are manifold and consistently oriented but have
	// boundary edges used by a single face.
	Oriented
	// Closed shells are oriented and every edge is used by exactly two faces.
	Closed
)

func (c ShellCondition) String() string {
	switch c {
	case Irregular:
		return "irregular"
	case Disoriented:
		return "disoriented"
	case Oriented:
		return "oriented"
	case Closed:
		return "closed"
	}
	return fmt.Sprintf("ShellCondition(%d)", uint8(c))
}

// IsOriented returns true for oriented and closed shells.
func (c ShellCondition) IsOriented() bool { return c >= Oriented }

// IsClosed returns true for closed shells.
func (c ShellCondition) IsClosed() bool { return c == Closed }

// EdgeUses counts the traversals of one edge in its forward and backward directions.
type EdgeUses struct {
	Forward, Backward int
}

// Classify derives the ShellCondition from the edge usage counts of a shell.
// An empty usage map is Irregular.
func Classify[K comparable](uses map[K]EdgeUses) ShellCondition {
	if len(uses) == 0 {
		return Irregular
	}
	cond := Closed
	for _, u := range uses {
		switch {
		case u.Forward+u.Backward > 2:
			return Irregular
		case u.Forward > 1 || u.Backward > 1:
			cond = min(cond, Disoriented)
		case u.Forward+u.Backward == 1:
			cond = min(cond, Oriented)
		}
	}
	return cond
}

// Shell is an ordered collection of faces joined along shared edges.
type Shell []*Face

// Condition computes the ShellCondition of s from its edge usages.
// It is recomputed on every call.
func (s Shell) Condition() ShellCondition {
	uses := make(map[*Edge]EdgeUses)
	for _, f := range s {
		for _, w := range f.Boundaries() {
			for _, oe := range w {
				u := uses[oe.Edge]
				if oe.Reversed {
					u.Backward++
				} else {
					u.Forward++
				}
				uses[oe.Edge] = u
			}
		}
	}
	return Classify(uses)
}

// Invert flips every face of s in place.
func (s Shell) Invert() {
	for _, f := range s {
		f.Invert()
	}
}

// Edges returns the distinct edges of s in traversal order.
func (s Shell) Edges() []*Edge {
	seen := make(map[*Edge]bool)
	var edges []*Edge
	for _, f := range s {
		for _, e := range f.Edges() {
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	return edges
}

// Vertices returns the distinct vertices of s in traversal order.
func (s Shell) Vertices() []*Vertex {
	seen := make(map[*Vertex]bool)
	var verts []*Vertex
	for _, e := range s.Edges() {
		for _, v := range [2]*Vertex{e.front, e.back} {
			if !seen[v] {
				seen[v] = true
				verts = append(verts, v)
			}
		}
	}
	return verts
}

// EulerCharacteristic returns V - E + F of the shell. A closed shell
// homeomorphic to a sphere has characteristic 2.
func (s Shell) EulerCharacteristic() int {
	return len(s.Vertices()) - len(s.Edges()) + len(s)
}

// Solid is a region of space bounded by an outer shell and zero or
// more inner shells (cavities).
type Solid struct {
	boundaries []Shell
}

// NewSolid returns a solid bounded by the shells given, outer shell first.
// Every shell must be closed.
func NewSolid(shells ...Shell) (*Solid, error) {
	if len(shells) == 0 {
		return nil, fmt.Errorf("solid needs a boundary: %w", ErrShellNotClosed)
	}
	for i, s := range shells {
		if c := s.Condition(); c != Closed {
			return nil, fmt.Errorf("shell %d is %s: %w", i, c, ErrShellNotClosed)
		}
	}
	return &Solid{boundaries: append([]Shell(nil), shells...)}, nil
}

// Boundaries returns the shells of the solid, outer shell first.
func (s *Solid) Boundaries() []Shell { return s.boundaries }

// Faces returns the faces of every boundary shell in order.
func (s *Solid) Faces() []*Face {
	var faces []*Face
	for _, sh := range s.boundaries {
		faces = append(faces, sh...)
	}
	return faces
}

// Edges returns the distinct edges of the solid in traversal order.
func (s *Solid) Edges() []*Edge { return Shell(s.Faces()).Edges() }

// Vertices returns the distinct vertices of the solid in traversal order.
func (s *Solid) Vertices() []*Vertex { return Shell(s.Faces()).Vertices() }
