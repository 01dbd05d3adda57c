package brep_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/soypat/brep"
	"github.com/soypat/brep/builder"
	"github.com/soypat/brep/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestClassify(t *testing.T) {
	for _, test := range []struct {
		name string
		uses map[int]brep.EdgeUses
		want brep.ShellCondition
	}{
		{name: "empty", uses: map[int]brep.EdgeUses{}, want: brep.Irregular},
		{name: "closed", uses: map[int]brep.EdgeUses{0: {Forward: 1, Backward: 1}, 1: {Forward: 1, Backward: 1}}, want: brep.Closed},
		{name: "open", uses: map[int]brep.EdgeUses{0: {Forward: 1, Backward: 1}, 1: {Forward: 0, Backward: 1}}, want: brep.Oriented},
		{name: "same direction", uses: map[int]brep.EdgeUses{0: {Forward: 2, Backward: 0}, 1: {Forward: 0, Backward: 1}}, want: brep.Disoriented},
		{name: "book", uses: map[int]brep.EdgeUses{0: {Forward: 2, Backward: 1}, 1: {Forward: 2, Backward: 0}}, want: brep.Irregular},
	} {
		t.Run(test.name, func(t *testing.T) {
			if got := brep.Classify(test.uses); got != test.want {
				t.Errorf("got %s. want %s", got, test.want)
			}
		})
	}
	if !brep.Closed.IsOriented() || !brep.Closed.IsClosed() || brep.Oriented.IsClosed() || brep.Disoriented.IsOriented() {
		t.Error("condition predicates disagree with ordering")
	}
}

func TestEdgeAndWire(t *testing.T) {
	a, b, c := brep.NewVertex(r3.Vec{}), brep.NewVertex(r3.Vec{X: 1}), brep.NewVertex(r3.Vec{Y: 1})
	if _, err := brep.NewEdge(a, b, geom.Line{P0: r3.Vec{}, P1: r3.Vec{X: 2}}); err == nil {
		t.Error("expected error for curve not ending at back vertex")
	}
	if _, err := brep.NewEdge(a, nil, geom.Line{}); err == nil {
		t.Error("expected error for nil vertex")
	}
	ab := mustEdge(t, a, b)
	bc := mustEdge(t, b, c)
	ca := mustEdge(t, c, a)
	w := brep.Wire{ab.Forward(), bc.Forward(), ca.Forward()}
	if !w.IsClosed() {
		t.Fatal("triangle wire not closed")
	}
	if open := w[:2]; open.IsClosed() || !open.IsConnected() {
		t.Error("open wire misclassified")
	}
	inv := w.Inverse()
	if !inv.IsClosed() || inv.Front() != a || inv[0].Edge != ca || !inv[0].Reversed {
		t.Error("inverse wire does not traverse backwards")
	}
	if got := inv[0].Curve().Eval(0); got != a.Point() {
		t.Errorf("reversed usage curve starts at %v. want %v", got, a.Point())
	}
	if got := inv[1].Eval(0.25); r3.Norm(r3.Sub(got, r3.Vec{X: 0.25, Y: 0.75})) > 1e-12 {
		t.Errorf("usage eval got %v", got)
	}
	if got := w.Vertices(); len(got) != 3 || got[0] != a || got[2] != c {
		t.Error("wire vertices not in traversal order")
	}
	if got := (brep.Wire{ab.Forward(), ab.Backward()}).Edges(); len(got) != 1 {
		t.Errorf("distinct edges got %d. want 1", len(got))
	}
}

func TestFaceFlip(t *testing.T) {
	a, b, c := brep.NewVertex(r3.Vec{}), brep.NewVertex(r3.Vec{X: 1}), brep.NewVertex(r3.Vec{Y: 1})
	w := brep.Wire{mustEdge(t, a, b).Forward(), mustEdge(t, b, c).Forward(), mustEdge(t, c, a).Forward()}
	if _, err := brep.NewFace([]brep.Wire{w[:2]}, geom.NewPlane(r3.Vec{}, r3.Vec{Z: 1})); err == nil {
		t.Error("expected error for open boundary")
	}
	f, err := brep.NewFace([]brep.Wire{w}, geom.NewPlane(r3.Vec{}, r3.Vec{Z: 1}))
	if err != nil {
		t.Fatal(err)
	}
	if n := f.Normal(0.2, 0.2); r3.Norm(r3.Sub(n, r3.Vec{Z: 1})) > 1e-12 {
		t.Errorf("normal got %v", n)
	}
	inv := f.Inverse()
	if f.IsFlipped() || !inv.IsFlipped() {
		t.Fatal("Inverse modified the receiver")
	}
	if n := inv.Normal(0.2, 0.2); r3.Norm(r3.Sub(n, r3.Vec{Z: -1})) > 1e-12 {
		t.Errorf("inverse normal got %v", n)
	}
	got := inv.Boundaries()[0]
	if got[0].Edge != w[2].Edge || !got[0].Reversed {
		t.Error("flipped boundary not reported inverted")
	}
	cond := brep.Shell{f, inv}.Condition()
	if cond != brep.Closed {
		t.Errorf("face and its inverse got %s. want closed", cond)
	}
	f.Invert()
	if !f.IsFlipped() {
		t.Error("Invert did not flip")
	}
}

func TestCompressExtract(t *testing.T) {
	cube := cube(t)
	c := cube.Compress()
	if len(c.Vertices) != 8 || len(c.Edges) != 12 || len(c.Faces) != 6 || len(c.Shells) != 1 {
		t.Fatalf("compressed counts got %d/%d/%d/%d", len(c.Vertices), len(c.Edges), len(c.Faces), len(c.Shells))
	}
	solid, err := c.ExtractSolid()
	if err != nil {
		t.Fatal(err)
	}
	if got := len(solid.Edges()); got != 12 {
		t.Errorf("extracted edges got %d. want 12", got)
	}
	if got := len(solid.Vertices()); got != 8 {
		t.Errorf("extracted vertices got %d. want 8", got)
	}
	for i, f := range solid.Faces() {
		if f == cube.Faces()[i] {
			t.Fatal("extract returned original faces")
		}
	}
	if got := solid.Boundaries()[0].EulerCharacteristic(); got != 2 {
		t.Errorf("euler characteristic got %d. want 2", got)
	}
	again := solid.Compress()
	if len(again.Edges) != len(c.Edges) || len(again.Faces) != len(c.Faces) {
		t.Error("compress after extract changed counts")
	}

	c.Faces[0].Boundaries[0][0].Index = 99
	if _, err := c.Extract(); err == nil {
		t.Error("expected error for edge index out of range")
	}
}

func TestNewSolid(t *testing.T) {
	cube := cube(t)
	open := brep.Shell(cube.Faces()[:5])
	if _, err := brep.NewSolid(open); !errors.Is(err, brep.ErrShellNotClosed) {
		t.Errorf("got %v. want ErrShellNotClosed", err)
	}
	if _, err := brep.NewSolid(); !errors.Is(err, brep.ErrShellNotClosed) {
		t.Errorf("got %v. want ErrShellNotClosed", err)
	}
	if got := open.Condition(); got != brep.Oriented {
		t.Errorf("open box got %s. want oriented", got)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	brep.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer brep.SetLogger(nil)
	cube(t)
	if !strings.Contains(buf.String(), "level=DEBUG") {
		t.Error("no debug records logged while building")
	}
	brep.SetLogger(nil)
	if brep.Logger() == nil || brep.Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger must be silent and non-nil")
	}
}

func mustEdge(t *testing.T, a, b *brep.Vertex) *brep.Edge {
	t.Helper()
	e, err := brep.NewEdge(a, b, geom.Line{P0: a.Point(), P1: b.Point()})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func cube(t *testing.T) *brep.Solid {
	t.Helper()
	v, _ := builder.Vertex(r3.Vec{})
	e, err := builder.TSweepVertex(v, r3.Vec{X: 1})
	if err != nil {
		t.Fatal(err)
	}
	f, err := builder.TSweepEdge(e, r3.Vec{Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	s, err := builder.TSweepFace(f, r3.Vec{Z: 1})
	if err != nil {
		t.Fatal(err)
	}
	return s
}
