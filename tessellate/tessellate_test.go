package tessellate_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/soypat/brep"
	"github.com/soypat/brep/builder"
	"github.com/soypat/brep/compose"
	"github.com/soypat/brep/geom"
	"github.com/soypat/brep/polymesh"
	"github.com/soypat/brep/tessellate"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestCube(t *testing.T) {
	solid := cube(t, 2)
	set, err := tessellate.Solid(solid, tessellate.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(set) != 6 {
		t.Fatalf("face meshes got %d. want 6", len(set))
	}
	for i, fm := range set {
		if len(fm.Triangles) != 2 {
			t.Errorf("face %d: triangles got %d. want 2", i, len(fm.Triangles))
		}
	}
	m := set.Merge()
	if len(m.Faces) != 12 || len(m.Positions) != 24 {
		t.Errorf("merged mesh got %d faces %d positions. want 12 and 24", len(m.Faces), len(m.Positions))
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	m.Weld(1e-9)
	if len(m.Positions) != 8 {
		t.Errorf("welded positions got %d. want 8", len(m.Positions))
	}
	if c := m.ShellCondition(); c != brep.Closed {
		t.Errorf("got %s. want closed", c)
	}
	if vol := volume(m); math.Abs(vol-8) > 1e-9 {
		t.Errorf("volume got %g. want 8", vol)
	}
	box, err := sdf.Box3D(v3.Vec{X: 2, Y: 2, Z: 2}, 0)
	if err != nil {
		t.Fatal(err)
	}
	box = sdf.Transform3D(box, sdf.Translate3d(v3.Vec{X: 1, Y: 1, Z: 1}))
	for _, p := range m.Positions {
		if d := box.Evaluate(v3.Vec(p)); math.Abs(d) > 1e-9 {
			t.Errorf("vertex %v off the box surface by %g", p, d)
		}
	}
}

func TestCylinder(t *testing.T) {
	const tol = 1e-3
	solid := cylinder(t)
	set, err := tessellate.Solid(solid, tessellate.Options{Tolerance: tol})
	if err != nil {
		t.Fatal(err)
	}
	for i, fm := range set {
		for _, tri := range fm.Triangles {
			a, b, c := fm.Positions[tri[0]], fm.Positions[tri[1]], fm.Positions[tri[2]]
			n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
			if r3.Dot(n, fm.Normals[tri[0]]) <= 0 {
				t.Fatalf("face %d: triangle winding disagrees with normal", i)
			}
		}
	}
	m := set.Merge()
	m.Weld(1e-9)
	if c := m.ShellCondition(); c != brep.Closed {
		t.Fatalf("got %s. want closed", c)
	}
	vol := volume(m)
	if vol > 2*math.Pi || vol < 2*math.Pi*0.99 {
		t.Errorf("volume got %g. want slightly less than %g", vol, 2*math.Pi)
	}
	oracle, err := sdf.Cylinder3D(2, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range m.Positions {
		if d := oracle.Evaluate(v3.Vec(p)); math.Abs(d) > 1e-9 {
			t.Errorf("vertex %v off the cylinder surface by %g", p, d)
		}
	}
	for _, tri := range m.Triangles() {
		c := r3.Scale(1./3, r3.Add(m.Positions[tri[0].Pos], r3.Add(m.Positions[tri[1].Pos], m.Positions[tri[2].Pos])))
		if d := oracle.Evaluate(v3.Vec(c)); d > 1e-9 || d < -2*tol {
			t.Errorf("triangle centroid %v deviates %g from the cylinder", c, d)
		}
	}
}

func TestTorus(t *testing.T) {
	v, _ := builder.Vertex(r3.Vec{Z: 1})
	circle, err := builder.RSweepVertex(v, r3.Vec{Y: 0.5, Z: 1}, r3.Vec{X: 1}, 7)
	if err != nil {
		t.Fatal(err)
	}
	torus, err := builder.RSweepWire(circle, r3.Vec{}, r3.Vec{Y: 1}, 7)
	if err != nil {
		t.Fatal(err)
	}
	set, err := tessellate.Shell(torus, tessellate.Options{Tolerance: 1e-3})
	if err != nil {
		t.Fatal(err)
	}
	m := set.Merge()
	m.Weld(1e-9)
	if c := m.ShellCondition(); c != brep.Closed {
		t.Fatalf("got %s. want closed", c)
	}
	for _, p := range m.Positions {
		q := math.Hypot(math.Hypot(p.X, p.Z)-1, p.Y-0.5) - 0.5
		if math.Abs(q) > 1e-9 {
			t.Fatalf("vertex %v off the torus by %g", p, q)
		}
	}
	want := math.Pi * math.Pi / 2
	if vol := math.Abs(volume(m)); vol > want || vol < 0.99*want {
		t.Errorf("volume got %g. want slightly less than %g", vol, want)
	}
}

func TestLathe(t *testing.T) {
	const tol = 1e-3
	// Unit square in the xz plane with its left side on the z axis.
	o, _ := builder.Vertex(r3.Vec{})
	e, err := builder.TSweepVertex(o, r3.Vec{X: 1})
	if err != nil {
		t.Fatal(err)
	}
	square, err := builder.TSweepEdge(e, r3.Vec{Z: 1})
	if err != nil {
		t.Fatal(err)
	}
	solid, err := builder.RSweepFace(square, r3.Vec{}, r3.Vec{Z: 1}, 2*math.Pi)
	if err != nil {
		t.Fatal(err)
	}
	set, err := tessellate.Solid(solid, tessellate.Options{Tolerance: tol})
	if err != nil {
		t.Fatal(err)
	}
	for i, fm := range set {
		for _, tri := range fm.Triangles {
			a, b, c := fm.Positions[tri[0]], fm.Positions[tri[1]], fm.Positions[tri[2]]
			n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
			if r3.Norm(n) == 0 {
				t.Fatalf("face %d: degenerate triangle at %v", i, a)
			}
			if r3.Dot(n, fm.Normals[tri[1]]) <= 0 {
				t.Fatalf("face %d: triangle winding disagrees with normal", i)
			}
		}
	}
	m := set.Merge()
	m.Weld(1e-9)
	if c := m.ShellCondition(); c != brep.Closed {
		t.Fatalf("got %s. want closed", c)
	}
	if vol := volume(m); vol > math.Pi || vol < 0.99*math.Pi {
		t.Errorf("volume got %g. want slightly less than %g", vol, math.Pi)
	}
	oracle, err := sdf.Cylinder3D(1, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	oracle = sdf.Transform3D(oracle, sdf.Translate3d(v3.Vec{Z: 0.5}))
	for _, p := range m.Positions {
		if d := oracle.Evaluate(v3.Vec(p)); math.Abs(d) > 1e-9 {
			t.Errorf("vertex %v off the cylinder surface by %g", p, d)
		}
	}
}

func TestSphere(t *testing.T) {
	const tol = 1e-3
	south, _ := builder.Vertex(r3.Vec{Z: -1})
	north, _ := builder.Vertex(r3.Vec{Z: 1})
	arc, err := builder.CircleArc(south, north, r3.Vec{X: 1})
	if err != nil {
		t.Fatal(err)
	}
	axis, err := builder.Line(north, south)
	if err != nil {
		t.Fatal(err)
	}
	half, err := builder.AttachPlane(brep.Wire{arc.Forward(), axis.Forward()})
	if err != nil {
		t.Fatal(err)
	}
	solid, err := builder.RSweepFace(half, r3.Vec{}, r3.Vec{Z: 1}, 2*math.Pi)
	if err != nil {
		t.Fatal(err)
	}
	faces := solid.Faces()
	if len(faces) != 1 || len(faces[0].Boundaries()[0]) != 2 {
		t.Fatalf("sphere got %d faces. want a single face bounded by the seed arc twice", len(faces))
	}
	set, err := tessellate.Solid(solid, tessellate.Options{Tolerance: tol})
	if err != nil {
		t.Fatal(err)
	}
	m := set.Merge()
	m.Weld(1e-9)
	if c := m.ShellCondition(); c != brep.Closed {
		t.Fatalf("got %s. want closed", c)
	}
	want := 4 * math.Pi / 3
	if vol := volume(m); vol > want || vol < 0.99*want {
		t.Errorf("volume got %g. want slightly less than %g", vol, want)
	}
	oracle, err := sdf.Sphere3D(1)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range m.Positions {
		if d := oracle.Evaluate(v3.Vec(p)); math.Abs(d) > 1e-9 {
			t.Errorf("vertex %v off the sphere by %g", p, d)
		}
	}
	// Pole normals point along the axis.
	for i, p := range set[0].Positions {
		if math.Abs(math.Abs(p.Z)-1) < 1e-12 {
			n := set[0].Normals[i]
			if math.Abs(n.Z*p.Z-1) > 1e-6 {
				t.Errorf("pole %v normal got %v", p, n)
			}
		}
	}
}

func TestBottle(t *testing.T) {
	solid := bottle(t, 1.4, 1.0, 0.6)
	set, err := tessellate.Solid(solid, tessellate.Options{Tolerance: 0.01})
	if err != nil {
		t.Fatal(err)
	}
	m := set.Merge()
	m.Weld(1e-9)
	if c := m.ShellCondition(); c != brep.Closed {
		t.Fatalf("got %s. want closed", c)
	}
	if vol := volume(m); vol <= 0 || vol > 1.4*1.0*0.6 {
		t.Errorf("volume got %g", vol)
	}
}

func TestWorkersDeterministic(t *testing.T) {
	solid := cylinder(t)
	one, err := tessellate.Solid(solid, tessellate.Options{Tolerance: 1e-2, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	many, err := tessellate.Solid(solid, tessellate.Options{Tolerance: 1e-2, Workers: 8})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(one, many) {
		t.Error("result depends on worker count")
	}
}

func TestDivisionsClamped(t *testing.T) {
	solid := cylinder(t)
	set, err := tessellate.Solid(solid, tessellate.Options{Tolerance: 1e-9, MaxDivisions: 16})
	if err != nil {
		t.Fatal(err)
	}
	// The disk is bounded by 16 samples of the circle.
	if n := len(set[0].Positions); n != 16 {
		t.Errorf("bottom positions got %d. want 16", n)
	}
	if _, err := tessellate.Solid(solid, tessellate.Options{Tolerance: -1}); err == nil {
		t.Error("expected error for negative tolerance")
	}
}

func TestTriangulationError(t *testing.T) {
	good := cube(t, 1).Faces()[0]
	// Bow tie: the boundary crosses itself.
	pts := []r3.Vec{{}, {X: 1, Y: 1}, {X: 1}, {Y: 1}}
	verts := make([]*brep.Vertex, len(pts))
	for i, p := range pts {
		verts[i], _ = builder.Vertex(p)
	}
	var w brep.Wire
	for i := range verts {
		e, err := builder.Line(verts[i], verts[(i+1)%len(verts)])
		if err != nil {
			t.Fatal(err)
		}
		w = append(w, e.Forward())
	}
	bowtie, err := brep.NewFace([]brep.Wire{w}, geom.NewPlane(r3.Vec{}, r3.Vec{Z: 1}))
	if err != nil {
		t.Fatal(err)
	}
	set, err := tessellate.Shell(brep.Shell{good, bowtie}, tessellate.Options{})
	var terr *brep.TriangulationError
	if !errors.As(err, &terr) || terr.Face != 1 {
		t.Fatalf("got %v. want *TriangulationError for face 1", err)
	}
	if set != nil {
		t.Error("partial result returned with error")
	}
}

// volume returns the signed volume enclosed by the mesh triangles.
func volume(m *polymesh.PolygonMesh) float64 {
	var vol float64
	for _, tri := range m.Triangles() {
		a, b, c := m.Positions[tri[0].Pos], m.Positions[tri[1].Pos], m.Positions[tri[2].Pos]
		vol += r3.Dot(a, r3.Cross(b, c))
	}
	return vol / 6
}

func cube(t *testing.T, side float64) *brep.Solid {
	t.Helper()
	v, _ := builder.Vertex(r3.Vec{})
	e, err := builder.TSweepVertex(v, r3.Vec{Z: side})
	if err != nil {
		t.Fatal(err)
	}
	f, err := builder.TSweepEdge(e, r3.Vec{X: side})
	if err != nil {
		t.Fatal(err)
	}
	s, err := builder.TSweepFace(f, r3.Vec{Y: side})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// cylinder returns the unit radius cylinder about the z axis spanning z in [-1, 1].
func cylinder(t *testing.T) *brep.Solid {
	t.Helper()
	v, _ := builder.Vertex(r3.Vec{X: 1, Z: -1})
	circle, err := builder.RSweepVertex(v, r3.Vec{Z: -1}, r3.Vec{Z: 1}, 2*math.Pi)
	if err != nil {
		t.Fatal(err)
	}
	disk, err := builder.AttachPlane(circle)
	if err != nil {
		t.Fatal(err)
	}
	s, err := builder.TSweepFace(disk, r3.Vec{Z: 2})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func neck(t *testing.T, bottom, height, radius float64) brep.Shell {
	t.Helper()
	v, _ := builder.Vertex(r3.Vec{Y: bottom, Z: radius})
	circle, err := builder.RSweepVertex(v, r3.Vec{}, r3.Vec{Y: 1}, 7)
	if err != nil {
		t.Fatal(err)
	}
	disk, err := builder.AttachPlane(circle)
	if err != nil {
		t.Fatal(err)
	}
	s, err := builder.TSweepFace(disk, r3.Vec{Y: height})
	if err != nil {
		t.Fatal(err)
	}
	return s.Boundaries()[0]
}

func body(t *testing.T, bottom, height, width, thickness float64) brep.Shell {
	t.Helper()
	v0, _ := builder.Vertex(r3.Vec{X: -width / 2, Y: bottom, Z: thickness / 4})
	v1, _ := builder.Vertex(r3.Vec{X: width / 2, Y: bottom, Z: thickness / 4})
	arc0, err := builder.CircleArc(v0, v1, r3.Vec{Y: bottom, Z: thickness / 2})
	if err != nil {
		t.Fatal(err)
	}
	arc1, err := builder.Rotated(arc0, r3.Vec{}, r3.Vec{Y: 1}, math.Pi)
	if err != nil {
		t.Fatal(err)
	}
	faces, err := builder.HomotopyWire(brep.Wire{arc0.Forward()}, brep.Wire{arc1.Backward()})
	if err != nil {
		t.Fatal(err)
	}
	s, err := builder.TSweepFace(faces[0], r3.Vec{Y: height})
	if err != nil {
		t.Fatal(err)
	}
	return s.Boundaries()[0]
}

func bottle(t *testing.T, height, width, thickness float64) *brep.Solid {
	t.Helper()
	outer, err := compose.Glue(body(t, -height/2, height, width, thickness), neck(t, height/2, height/10, thickness/4))
	if err != nil {
		t.Fatal(err)
	}
	eps := height / 50
	inner, err := compose.Glue(
		body(t, -height/2+eps, height-2*eps, width-2*eps, thickness-2*eps),
		neck(t, height/2-eps, height/10+eps, thickness/4-eps),
	)
	if err != nil {
		t.Fatal(err)
	}
	compose.InvertShell(inner)
	ceiling := inner[len(inner)-1]
	if err := compose.AddBoundary(outer[len(outer)-1], ceiling.Boundaries()[0]); err != nil {
		t.Fatal(err)
	}
	solid, err := brep.NewSolid(compose.Concatenate(outer, inner[:len(inner)-1]))
	if err != nil {
		t.Fatal(err)
	}
	return solid
}
