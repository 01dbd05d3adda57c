package polymesh

import (
	"bytes"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/soypat/brep"
	"github.com/soypat/brep/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// cubeQuads lists the corners of the unit cube faces, counter clockwise
// seen from outside. Corner i sits at (i&1, i>>1&1, i>>2&1).
var cubeQuads = [6][4]int{
	{0, 4, 6, 2}, {1, 3, 7, 5},
	{0, 1, 5, 4}, {2, 6, 7, 3},
	{0, 2, 3, 1}, {4, 5, 7, 6},
}

func corner(i int) r3.Vec {
	return r3.Vec{X: float64(i & 1), Y: float64(i >> 1 & 1), Z: float64(i >> 2 & 1)}
}

// rawCube returns a cube mesh as a triangulator would emit it: every face
// owns its positions and uvs.
func rawCube() *PolygonMesh {
	m := &PolygonMesh{}
	uvs := [4]r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	for _, q := range cubeQuads {
		var f []Vertex
		for k, c := range q {
			f = append(f, Vertex{Pos: len(m.Positions), UV: len(m.UVs), Nor: -1})
			m.Positions = append(m.Positions, corner(c))
			m.UVs = append(m.UVs, uvs[k])
		}
		m.Faces = append(m.Faces, f)
	}
	return m
}

func clone(m *PolygonMesh) *PolygonMesh {
	c := &PolygonMesh{
		Positions: append([]r3.Vec(nil), m.Positions...),
		UVs:       append([]r2.Vec(nil), m.UVs...),
		Normals:   append([]r3.Vec(nil), m.Normals...),
		state:     m.state,
	}
	for _, f := range m.Faces {
		c.Faces = append(c.Faces, append([]Vertex(nil), f...))
	}
	return c
}

func TestWeldCube(t *testing.T) {
	m := rawCube()
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if c := m.ShellCondition(); c != brep.Oriented {
		t.Errorf("raw cube got %s. want oriented", c)
	}
	m.Weld(1e-9)
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(m.Positions) != 8 {
		t.Errorf("positions got %d. want 8", len(m.Positions))
	}
	if len(m.UVs) != 4 {
		t.Errorf("uvs got %d. want 4", len(m.UVs))
	}
	if c := m.ShellCondition(); c != brep.Closed {
		t.Errorf("welded cube got %s. want closed", c)
	}
	if m.State() != Welded {
		t.Errorf("state got %s. want welded", m.State())
	}
	// Representatives keep first appearance order.
	if m.Positions[0] != corner(0) || m.Positions[1] != corner(4) {
		t.Errorf("unexpected position order %v", m.Positions[:2])
	}
}

func TestWeldIdempotent(t *testing.T) {
	const eps = 1e-3
	m := rawCube()
	// Jitter below eps so welding has to pick representatives.
	for i := range m.Positions {
		m.Positions[i].X += 0.4 * eps * float64(i%3)
	}
	m.Weld(eps)
	once := clone(m)
	m.Weld(eps)
	if !reflect.DeepEqual(once, m) {
		t.Error("second weld changed the mesh")
	}
}

func TestWeldChain(t *testing.T) {
	// Welding is not transitive: c is within eps of b but not of a.
	const eps = 1.0
	m := &PolygonMesh{
		Positions: []r3.Vec{{}, {X: 0.6}, {X: 1.2}, {Y: 5}, {Z: 5}},
		Faces: [][]Vertex{
			{{Pos: 0, UV: -1, Nor: -1}, {Pos: 3, UV: -1, Nor: -1}, {Pos: 4, UV: -1, Nor: -1}},
			{{Pos: 1, UV: -1, Nor: -1}, {Pos: 3, UV: -1, Nor: -1}, {Pos: 2, UV: -1, Nor: -1}},
		},
	}
	m.Weld(eps)
	want := []r3.Vec{{}, {X: 1.2}, {Y: 5}, {Z: 5}}
	if !reflect.DeepEqual(m.Positions, want) {
		t.Errorf("positions got %v. want %v", m.Positions, want)
	}
	if m.Faces[1][0].Pos != 0 {
		t.Errorf("b not welded onto a: %v", m.Faces[1])
	}
}

func TestWeldDropsDegenerate(t *testing.T) {
	m := &PolygonMesh{
		Positions: []r3.Vec{{}, {X: 1}, {X: 1e-12}, {Y: 1}, {X: 1, Y: 1}},
		Normals:   []r3.Vec{{Z: 1}, {Z: 1}},
		Faces: [][]Vertex{
			{{Pos: 0, UV: -1, Nor: 0}, {Pos: 2, UV: -1, Nor: 0}, {Pos: 1, UV: -1, Nor: 0}},
			{{Pos: 1, UV: -1, Nor: 1}, {Pos: 4, UV: -1, Nor: 1}, {Pos: 3, UV: -1, Nor: 1}, {Pos: 0, UV: -1, Nor: 1}},
		},
	}
	var buf bytes.Buffer
	brep.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	defer brep.SetLogger(nil)
	m.Weld(1e-9)
	if len(m.Faces) != 1 {
		t.Fatalf("faces got %d. want 1", len(m.Faces))
	}
	if log := buf.String(); !strings.Contains(log, "level=WARN") || !strings.Contains(log, "dropped=1") {
		t.Errorf("missing warning for the dropped face, got log %q", log)
	}
	if len(m.Positions) != 4 || len(m.Normals) != 1 {
		t.Errorf("got %d positions %d normals. want 4 and 1", len(m.Positions), len(m.Normals))
	}
	if err := m.Validate(); err != nil {
		t.Error(err)
	}
}

func TestShellCondition(t *testing.T) {
	v := func(p ...int) []Vertex {
		f := make([]Vertex, len(p))
		for i := range p {
			f[i] = Vertex{Pos: p[i], UV: -1, Nor: -1}
		}
		return f
	}
	pos := make([]r3.Vec, 5)
	for _, test := range []struct {
		name  string
		faces [][]Vertex
		want  brep.ShellCondition
	}{
		{"empty", nil, brep.Irregular},
		{"fan", [][]Vertex{v(0, 1, 2), v(0, 2, 3)}, brep.Oriented},
		{"flipped neighbour", [][]Vertex{v(0, 1, 2), v(0, 3, 2)}, brep.Disoriented},
		{"book", [][]Vertex{v(0, 1, 2), v(1, 0, 3), v(0, 1, 4)}, brep.Irregular},
		{"tetrahedron", [][]Vertex{v(0, 2, 1), v(0, 1, 3), v(1, 2, 3), v(0, 3, 2)}, brep.Closed},
	} {
		m := &PolygonMesh{Positions: pos, Faces: test.faces}
		if got := m.ShellCondition(); got != test.want {
			t.Errorf("%s: got %s. want %s", test.name, got, test.want)
		}
	}
}

func TestNaiveNormals(t *testing.T) {
	m := rawCube()
	m.AddNaiveNormals(false)
	if m.State() != Normaled {
		t.Errorf("state got %s", m.State())
	}
	// Unwelded faces own their positions so every corner sees its face normal.
	center := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	for fi, f := range m.Faces {
		c := r3.Sub(m.Positions[f[0].Pos], center)
		for _, v := range f {
			n := m.Normals[v.Nor]
			if math.Abs(r3.Norm(n)-1) > 1e-12 || r3.Dot(n, c) <= 0 {
				t.Errorf("face %d: bad normal %v", fi, n)
			}
		}
	}
	m.AddNaiveNormals(true)
	if n := m.Normals[m.Faces[5][0].Nor]; !d3.EqualWithin(n, r3.Vec{Z: -1}, 1e-12) {
		t.Errorf("flipped top normal got %v", n)
	}
	// Welded positions are shared: the last face using a position wins.
	m = rawCube()
	m.Weld(1e-9)
	m.AddNaiveNormals(false)
	if len(m.Normals) != len(m.Positions) {
		t.Fatalf("normals got %d. want %d", len(m.Normals), len(m.Positions))
	}
	top := m.Faces[5]
	for _, v := range top {
		if !d3.EqualWithin(m.Normals[v.Nor], r3.Vec{Z: 1}, 1e-12) {
			t.Errorf("last face normal got %v. want +z", m.Normals[v.Nor])
		}
	}
}

func TestSmoothNormals(t *testing.T) {
	m := rawCube()
	m.Weld(1e-9)
	m.AddSmoothNormals(math.Pi/3, false)
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	// Cube faces meet at right angles so no two faces share a normal.
	if len(m.Normals) != 24 {
		t.Errorf("normals got %d. want 24", len(m.Normals))
	}
	for fi, f := range m.Faces {
		want := unit(m.faceNormal(f))
		for _, v := range f {
			if !d3.EqualWithin(m.Normals[v.Nor], want, 1e-12) {
				t.Errorf("face %d normal got %v. want %v", fi, m.Normals[v.Nor], want)
			}
		}
	}

	m.AddSmoothNormals(math.Pi, true)
	if len(m.Normals) != 8 {
		t.Errorf("normals got %d. want 8", len(m.Normals))
	}
	center := r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	for _, f := range m.Faces {
		for _, v := range f {
			want := r3.Unit(r3.Sub(center, m.Positions[v.Pos]))
			if !d3.EqualWithin(m.Normals[v.Nor], want, 1e-12) {
				t.Errorf("smooth corner normal got %v. want %v", m.Normals[v.Nor], want)
			}
		}
	}
}

func TestSmoothNormalsAreaWeighted(t *testing.T) {
	const theta = 20 * math.Pi / 180
	// A sliver and a large triangle share the edge from the origin to +x.
	// The large one is tilted theta about that edge.
	m := &PolygonMesh{
		Positions: []r3.Vec{
			{}, {X: 1}, {X: 0.5, Y: 0.1},
			{X: 0.5, Y: -10 * math.Cos(theta), Z: 10 * math.Sin(theta)},
		},
		Faces: [][]Vertex{
			{{Pos: 0, UV: -1, Nor: -1}, {Pos: 1, UV: -1, Nor: -1}, {Pos: 2, UV: -1, Nor: -1}},
			{{Pos: 1, UV: -1, Nor: -1}, {Pos: 0, UV: -1, Nor: -1}, {Pos: 3, UV: -1, Nor: -1}},
		},
	}
	small := r3.Vec{Z: 1}
	large := r3.Vec{Y: math.Sin(theta), Z: math.Cos(theta)}
	m.AddSmoothNormals(math.Pi/4, false)
	if len(m.Normals) != 4 {
		t.Fatalf("normals got %d. want 4", len(m.Normals))
	}
	weighted := r3.Unit(r3.Add(r3.Scale(0.05, small), r3.Scale(5, large)))
	mean := r3.Unit(r3.Add(small, large))
	for _, f := range m.Faces {
		for _, v := range f {
			if v.Pos > 1 {
				continue
			}
			got := m.Normals[v.Nor]
			if !d3.EqualWithin(got, weighted, 1e-12) {
				t.Errorf("shared corner normal got %v. want area weighted %v", got, weighted)
			}
			if d3.EqualWithin(got, mean, 1e-3) {
				t.Errorf("shared corner normal %v is the unweighted mean", got)
			}
		}
	}
	if got := m.Normals[m.Faces[0][2].Nor]; !d3.EqualWithin(got, small, 1e-12) {
		t.Errorf("sliver tip normal got %v. want %v", got, small)
	}
	if got := m.Normals[m.Faces[1][2].Nor]; !d3.EqualWithin(got, large, 1e-12) {
		t.Errorf("large tip normal got %v. want %v", got, large)
	}
}

func TestBoundsAndNormalize(t *testing.T) {
	m := rawCube()
	m.Transform(func(p r3.Vec) r3.Vec { return r3.Add(r3.Scale(4, p), r3.Vec{X: 10}) })
	bb := m.BoundingBox()
	if bb.Min != (r3.Vec{X: 10}) || bb.Max != (r3.Vec{X: 14, Y: 4, Z: 4}) {
		t.Errorf("bounding box got %v", bb)
	}
	if d := m.Diameter(); math.Abs(d-4*math.Sqrt(3)) > 1e-12 {
		t.Errorf("diameter got %g", d)
	}
	if err := m.Normalize(); err != nil {
		t.Fatal(err)
	}
	bb = m.BoundingBox()
	if !d3.EqualWithin(bb.Min, r3.Vec{X: -1, Y: -1, Z: -1}, 1e-12) || !d3.EqualWithin(bb.Max, r3.Vec{X: 1, Y: 1, Z: 1}, 1e-12) {
		t.Errorf("normalized box got %v", bb)
	}
	if err := (&PolygonMesh{}).Normalize(); err == nil {
		t.Error("expected error normalizing empty mesh")
	}
	if n := len(m.Triangles()); n != 12 {
		t.Errorf("triangles got %d. want 12", n)
	}
	m.Faces[0][0].UV = 99
	if err := m.Validate(); err == nil {
		t.Error("expected uv index error")
	}
}
