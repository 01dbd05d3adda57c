package brepjson_test

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/soypat/brep"
	"github.com/soypat/brep/brepjson"
	"github.com/soypat/brep/builder"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRoundTrip(t *testing.T) {
	v, _ := builder.Vertex(r3.Vec{X: 1})
	circle, err := builder.RSweepVertex(v, r3.Vec{}, r3.Vec{Z: 1}, 7)
	if err != nil {
		t.Fatal(err)
	}
	disk, err := builder.AttachPlane(circle)
	if err != nil {
		t.Fatal(err)
	}
	cylinder, err := builder.TSweepFace(disk, r3.Vec{Z: 2})
	if err != nil {
		t.Fatal(err)
	}
	torus, err := builder.RSweepWire(circle, r3.Vec{X: 3}, r3.Vec{Y: 1}, 7)
	if err != nil {
		t.Fatal(err)
	}
	v0, _ := builder.Vertex(r3.Vec{X: -1, Z: 0.25})
	v1, _ := builder.Vertex(r3.Vec{X: 1, Z: 0.25})
	arc0, err := builder.CircleArc(v0, v1, r3.Vec{Z: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	arc1, err := builder.Rotated(arc0, r3.Vec{}, r3.Vec{Y: 1}, math.Pi)
	if err != nil {
		t.Fatal(err)
	}
	ruled, err := builder.HomotopyWire(brep.Wire{arc0.Forward()}, brep.Wire{arc1.Backward()})
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		name string
		c    *brep.Compressed
	}{
		{name: "cylinder", c: cylinder.Compress()},
		{name: "torus", c: torus.Compress()},
		{name: "ruled", c: ruled.Compress()},
	} {
		t.Run(test.name, func(t *testing.T) {
			data, err := brepjson.Marshal(test.c)
			if err != nil {
				t.Fatal(err)
			}
			got, err := brepjson.Unmarshal(data)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, test.c) {
				t.Fatalf("round trip mismatch:\n%s", data)
			}
			shells, err := got.Extract()
			if err != nil {
				t.Fatal(err)
			}
			want, _ := test.c.Extract()
			if len(shells) != len(want) {
				t.Fatalf("shells got %d. want %d", len(shells), len(want))
			}
			for i := range shells {
				if len(shells[i]) != len(want[i]) || shells[i].Condition() != want[i].Condition() {
					t.Errorf("shell %d differs after round trip", i)
				}
			}
		})
	}
}

func TestUnmarshalErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		data string
	}{
		{name: "syntax", data: `{"vertices":`},
		{name: "unknown curve", data: `{"edges":[{"front":0,"back":0,"curve":{"type":"spline"}}]}`},
		{name: "missing payload", data: `{"edges":[{"front":0,"back":0,"curve":{"type":"line"}}]}`},
		{name: "unknown surface", data: `{"faces":[{"boundaries":[],"surface":{"type":"nurbs"}}]}`},
		{name: "bad surface curve", data: `{"faces":[{"boundaries":[],"surface":{"type":"ruled","ruled":{"c0":{"type":"arc"}}}}]}`},
	} {
		t.Run(test.name, func(t *testing.T) {
			if _, err := brepjson.Unmarshal([]byte(test.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := brepjson.Marshal(nil); err == nil {
		t.Error("expected error marshalling nil")
	}
}

func TestTaggedRecords(t *testing.T) {
	v, _ := builder.Vertex(r3.Vec{})
	e, err := builder.TSweepVertex(v, r3.Vec{X: 1})
	if err != nil {
		t.Fatal(err)
	}
	f, err := builder.TSweepEdge(e, r3.Vec{Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	data, err := brepjson.Marshal(brep.Shell{f}.Compress())
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"type":"line"`, `"type":"extrusion"`, `"shells":[[0]]`} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %s in %s", want, s)
		}
	}
}
