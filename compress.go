package brep

import (
	"fmt"

	"github.com/soypat/brep/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Compressed is the arena form of a set of shells. Entities are stored in
// flat slices and reference each other by index, which makes the topology
// trivial to walk and serialize. Indices follow first-visit order of
// shells, faces, boundaries and edges.
type Compressed struct {
	Vertices []r3.Vec
	Edges    []CompressedEdge
	Faces    []CompressedFace
	// Shells lists face indices of each shell, outer shell first for solids.
	Shells [][]int
}

// CompressedEdge references its vertices by index into Compressed.Vertices.
type CompressedEdge struct {
	Front, Back int
	Curve       geom.Curve
}

// CompressedFace stores boundaries in surface orientation, as Face does.
type CompressedFace struct {
	Boundaries [][]EdgeIndex
	Surface    geom.Surface
	Flipped    bool
}

// EdgeIndex is an edge usage referencing Compressed.Edges.
type EdgeIndex struct {
	Index    int
	Reversed bool
}

// Compress returns the arena form of s.
func (s Shell) Compress() *Compressed {
	return compress([]Shell{s})
}

// Compress returns the arena form of the solid boundaries.
func (s *Solid) Compress() *Compressed {
	return compress(s.boundaries)
}

func compress(shells []Shell) *Compressed {
	var (
		c         Compressed
		vertexIdx = make(map[*Vertex]int)
		edgeIdx   = make(map[*Edge]int)
		faceIdx   = make(map[*Face]int)
	)
	vertex := func(v *Vertex) int {
		i, ok := vertexIdx[v]
		if !ok {
			i = len(c.Vertices)
			vertexIdx[v] = i
			c.Vertices = append(c.Vertices, v.point)
		}
		return i
	}
	edge := func(e *Edge) int {
		i, ok := edgeIdx[e]
		if !ok {
			i = len(c.Edges)
			edgeIdx[e] = i
			c.Edges = append(c.Edges, CompressedEdge{Front: vertex(e.front), Back: vertex(e.back), Curve: e.curve})
		}
		return i
	}
	for _, sh := range shells {
		faces := make([]int, 0, len(sh))
		for _, f := range sh {
			fi, ok := faceIdx[f]
			if !ok {
				cf := CompressedFace{Surface: f.surface, Flipped: f.flipped}
				for _, w := range f.boundaries {
					cw := make([]EdgeIndex, len(w))
					for i, oe := range w {
						cw[i] = EdgeIndex{Index: edge(oe.Edge), Reversed: oe.Reversed}
					}
					cf.Boundaries = append(cf.Boundaries, cw)
				}
				fi = len(c.Faces)
				faceIdx[f] = fi
				c.Faces = append(c.Faces, cf)
			}
			faces = append(faces, fi)
		}
		c.Shells = append(c.Shells, faces)
	}
	return &c
}

// Extract rebuilds shared topology from the arena form. Entities referenced
// by the same index become the same pointer.
func (c *Compressed) Extract() ([]Shell, error) {
	verts := make([]*Vertex, len(c.Vertices))
	for i, p := range c.Vertices {
		verts[i] = NewVertex(p)
	}
	edges := make([]*Edge, len(c.Edges))
	for i, ce := range c.Edges {
		if ce.Front < 0 || ce.Front >= len(verts) || ce.Back < 0 || ce.Back >= len(verts) {
			return nil, fmt.Errorf("edge %d: vertex index out of range", i)
		}
		e, err := NewEdge(verts[ce.Front], verts[ce.Back], ce.Curve)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		edges[i] = e
	}
	faces := make([]*Face, len(c.Faces))
	for i, cf := range c.Faces {
		wires := make([]Wire, len(cf.Boundaries))
		for j, cw := range cf.Boundaries {
			w := make(Wire, len(cw))
			for k, ei := range cw {
				if ei.Index < 0 || ei.Index >= len(edges) {
					return nil, fmt.Errorf("face %d boundary %d: edge index out of range", i, j)
				}
				w[k] = OrientedEdge{Edge: edges[ei.Index], Reversed: ei.Reversed}
			}
			wires[j] = w
		}
		f, err := NewFace(wires, cf.Surface)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		f.flipped = cf.Flipped
		faces[i] = f
	}
	shells := make([]Shell, len(c.Shells))
	for i, idx := range c.Shells {
		sh := make(Shell, len(idx))
		for j, fi := range idx {
			if fi < 0 || fi >= len(faces) {
				return nil, fmt.Errorf("shell %d: face index out of range", i)
			}
			sh[j] = faces[fi]
		}
		shells[i] = sh
	}
	return shells, nil
}

// ExtractSolid rebuilds a Solid from the arena form.
func (c *Compressed) ExtractSolid() (*Solid, error) {
	shells, err := c.Extract()
	if err != nil {
		return nil, err
	}
	return NewSolid(shells...)
}
