// Package polymesh holds the polygon mesh produced by triangulating a solid
// and the operations that prepare it for export: welding coincident
// attributes, classifying the resulting shell and generating normals.
package polymesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/brep"
	"github.com/soypat/brep/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vertex is a face corner. Each field indexes the attribute array of the
// same name in PolygonMesh; -1 marks an absent attribute.
type Vertex struct {
	Pos, UV, Nor int
}

// State is the preparation stage of a mesh.
type State int

const (
	// RawTriangulated meshes come straight from a triangulator or a file
	// and may hold duplicate attributes.
	RawTriangulated State = iota
	// Welded meshes have had coincident attributes merged.
	Welded
	// Normaled meshes have had normals generated.
	Normaled
)

func (s State) String() string {
	switch s {
	case RawTriangulated:
		return "raw"
	case Welded:
		return "welded"
	case Normaled:
		return "normaled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// PolygonMesh is a flat attribute store plus faces referencing it by index.
// Faces may have any number of corners greater than two.
type PolygonMesh struct {
	Positions []r3.Vec
	UVs       []r2.Vec
	Normals   []r3.Vec
	Faces     [][]Vertex

	state State
}

// State returns the preparation stage reached by m.
func (m *PolygonMesh) State() State { return m.state }

func (m *PolygonMesh) advance(s State) {
	if s > m.state {
		m.state = s
	}
}

// Validate checks that every face has at least three corners and that every
// index is in range.
func (m *PolygonMesh) Validate() error {
	for i, f := range m.Faces {
		if len(f) < 3 {
			return fmt.Errorf("face %d has %d corners", i, len(f))
		}
		for j, v := range f {
			switch {
			case v.Pos < 0 || v.Pos >= len(m.Positions):
				return fmt.Errorf("face %d corner %d: position index %d out of range", i, j, v.Pos)
			case v.UV < -1 || v.UV >= len(m.UVs):
				return fmt.Errorf("face %d corner %d: uv index %d out of range", i, j, v.UV)
			case v.Nor < -1 || v.Nor >= len(m.Normals):
				return fmt.Errorf("face %d corner %d: normal index %d out of range", i, j, v.Nor)
			}
		}
	}
	return nil
}

// Triangles returns the faces of m split into triangle fans.
func (m *PolygonMesh) Triangles() [][3]Vertex {
	var tris [][3]Vertex
	for _, f := range m.Faces {
		for i := 2; i < len(f); i++ {
			tris = append(tris, [3]Vertex{f[0], f[i-1], f[i]})
		}
	}
	return tris
}

// BoundingBox returns the axis aligned box containing every position.
// An empty mesh returns the zero box.
func (m *PolygonMesh) BoundingBox() r3.Box {
	if len(m.Positions) == 0 {
		return r3.Box{}
	}
	s := d3.Set(m.Positions)
	return r3.Box{Min: s.Min(), Max: s.Max()}
}

// Diameter returns the length of the bounding box diagonal.
func (m *PolygonMesh) Diameter() float64 {
	return d3.Box(m.BoundingBox()).Diameter()
}

// Transform replaces every position p with f(p). Normals are not modified.
func (m *PolygonMesh) Transform(f func(r3.Vec) r3.Vec) {
	for i, p := range m.Positions {
		m.Positions[i] = f(p)
	}
}

// Normalize scales and moves m so its bounding box is centered at the origin
// with its largest side of length 2.
func (m *PolygonMesh) Normalize() error {
	bb := d3.Box(m.BoundingBox())
	side := d3.Max(bb.Size())
	if side == 0 || math.IsNaN(side) {
		return errors.New("mesh has no extent to normalize")
	}
	center := bb.Center()
	m.Transform(func(p r3.Vec) r3.Vec {
		return r3.Scale(2/side, r3.Sub(p, center))
	})
	return nil
}

// ShellCondition classifies the mesh surface from the use counts of the
// edges joining consecutive face corners. It is recomputed on every call.
func (m *PolygonMesh) ShellCondition() brep.ShellCondition {
	uses := make(map[[2]int]brep.EdgeUses)
	for _, f := range m.Faces {
		for i, v := range f {
			a, b := v.Pos, f[(i+1)%len(f)].Pos
			key := [2]int{a, b}
			if a > b {
				key = [2]int{b, a}
			}
			u := uses[key]
			if a < b {
				u.Forward++
			} else {
				u.Backward++
			}
			uses[key] = u
		}
	}
	return brep.Classify(uses)
}
