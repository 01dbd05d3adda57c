// Package brepjson encodes the compressed form of B-rep shells as JSON.
// Curves and surfaces are written as records tagged with their type so
// they can be decoded back into their concrete geom types.
package brepjson

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/soypat/brep"
	"github.com/soypat/brep/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

type document struct {
	Vertices []r3.Vec  `json:"vertices"`
	Edges    []edgeRec `json:"edges"`
	Faces    []faceRec `json:"faces"`
	Shells   [][]int   `json:"shells"`
}

type edgeRec struct {
	Front int      `json:"front"`
	Back  int      `json:"back"`
	Curve curveRec `json:"curve"`
}

type faceRec struct {
	Boundaries [][]usageRec `json:"boundaries"`
	Surface    surfaceRec   `json:"surface"`
	Flipped    bool         `json:"flipped,omitempty"`
}

type usageRec struct {
	Edge     int  `json:"edge"`
	Reversed bool `json:"reversed,omitempty"`
}

type curveRec struct {
	Type string     `json:"type"`
	Line *geom.Line `json:"line,omitempty"`
	Arc  *geom.Arc  `json:"arc,omitempty"`
}

type surfaceRec struct {
	Type       string         `json:"type"`
	Plane      *geom.Plane    `json:"plane,omitempty"`
	Extrusion  *extrusionRec  `json:"extrusion,omitempty"`
	Revolution *revolutionRec `json:"revolution,omitempty"`
	Ruled      *ruledRec      `json:"ruled,omitempty"`
}

type extrusionRec struct {
	Curve  curveRec `json:"curve"`
	Vector r3.Vec   `json:"vector"`
}

type revolutionRec struct {
	Curve curveRec `json:"curve"`
	Point r3.Vec   `json:"point"`
	Axis  r3.Vec   `json:"axis"`
	Angle float64  `json:"angle"`
}

type ruledRec struct {
	C0 curveRec `json:"c0"`
	C1 curveRec `json:"c1"`
}

const (
	typeLine       = "line"
	typeArc        = "arc"
	typePlane      = "plane"
	typeExtrusion  = "extrusion"
	typeRevolution = "revolution"
	typeRuled      = "ruled"
)

// Marshal returns the JSON encoding of c.
func Marshal(c *brep.Compressed) ([]byte, error) {
	if c == nil {
		return nil, errors.New("nil compressed shells")
	}
	doc := document{
		Vertices: c.Vertices,
		Edges:    make([]edgeRec, len(c.Edges)),
		Faces:    make([]faceRec, len(c.Faces)),
		Shells:   c.Shells,
	}
	var err error
	for i, e := range c.Edges {
		doc.Edges[i] = edgeRec{Front: e.Front, Back: e.Back}
		doc.Edges[i].Curve, err = encodeCurve(e.Curve)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	for i, f := range c.Faces {
		rec := faceRec{Flipped: f.Flipped, Boundaries: make([][]usageRec, len(f.Boundaries))}
		for j, w := range f.Boundaries {
			rec.Boundaries[j] = make([]usageRec, len(w))
			for k, u := range w {
				rec.Boundaries[j][k] = usageRec{Edge: u.Index, Reversed: u.Reversed}
			}
		}
		rec.Surface, err = encodeSurface(f.Surface)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		doc.Faces[i] = rec
	}
	return json.Marshal(doc)
}

// Unmarshal decodes the JSON encoding of compressed shells. Index ranges
// are not checked here; they are checked by Compressed.Extract.
func Unmarshal(data []byte) (*brep.Compressed, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	c := &brep.Compressed{
		Vertices: doc.Vertices,
		Edges:    make([]brep.CompressedEdge, len(doc.Edges)),
		Faces:    make([]brep.CompressedFace, len(doc.Faces)),
		Shells:   doc.Shells,
	}
	var err error
	for i, e := range doc.Edges {
		c.Edges[i] = brep.CompressedEdge{Front: e.Front, Back: e.Back}
		c.Edges[i].Curve, err = e.Curve.decode()
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	for i, f := range doc.Faces {
		cf := brep.CompressedFace{Flipped: f.Flipped, Boundaries: make([][]brep.EdgeIndex, len(f.Boundaries))}
		for j, w := range f.Boundaries {
			cf.Boundaries[j] = make([]brep.EdgeIndex, len(w))
			for k, u := range w {
				cf.Boundaries[j][k] = brep.EdgeIndex{Index: u.Edge, Reversed: u.Reversed}
			}
		}
		cf.Surface, err = f.Surface.decode()
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		c.Faces[i] = cf
	}
	return c, nil
}

func encodeCurve(c geom.Curve) (curveRec, error) {
	switch c := c.(type) {
	case geom.Line:
		return curveRec{Type: typeLine, Line: &c}, nil
	case geom.Arc:
		return curveRec{Type: typeArc, Arc: &c}, nil
	}
	return curveRec{}, fmt.Errorf("unsupported curve type %T", c)
}

func (r curveRec) decode() (geom.Curve, error) {
	switch {
	case r.Type == typeLine && r.Line != nil:
		return *r.Line, nil
	case r.Type == typeArc && r.Arc != nil:
		return *r.Arc, nil
	}
	return nil, fmt.Errorf("bad curve record of type %q", r.Type)
}

func encodeSurface(s geom.Surface) (rec surfaceRec, err error) {
	switch s := s.(type) {
	case geom.Plane:
		return surfaceRec{Type: typePlane, Plane: &s}, nil
	case geom.Extrusion:
		ext := &extrusionRec{Vector: s.Vector}
		ext.Curve, err = encodeCurve(s.Curve)
		return surfaceRec{Type: typeExtrusion, Extrusion: ext}, err
	case geom.Revolution:
		rev := &revolutionRec{Point: s.Point, Axis: s.Axis, Angle: s.Angle}
		rev.Curve, err = encodeCurve(s.Curve)
		return surfaceRec{Type: typeRevolution, Revolution: rev}, err
	case geom.Ruled:
		ruled := &ruledRec{}
		if ruled.C0, err = encodeCurve(s.C0); err != nil {
			return rec, err
		}
		ruled.C1, err = encodeCurve(s.C1)
		return surfaceRec{Type: typeRuled, Ruled: ruled}, err
	}
	return rec, fmt.Errorf("unsupported surface type %T", s)
}

func (r surfaceRec) decode() (geom.Surface, error) {
	switch {
	case r.Type == typePlane && r.Plane != nil:
		return *r.Plane, nil
	case r.Type == typeExtrusion && r.Extrusion != nil:
		c, err := r.Extrusion.Curve.decode()
		if err != nil {
			return nil, err
		}
		return geom.Extrusion{Curve: c, Vector: r.Extrusion.Vector}, nil
	case r.Type == typeRevolution && r.Revolution != nil:
		c, err := r.Revolution.Curve.decode()
		if err != nil {
			return nil, err
		}
		rev := r.Revolution
		return geom.Revolution{Curve: c, Point: rev.Point, Axis: rev.Axis, Angle: rev.Angle}, nil
	case r.Type == typeRuled && r.Ruled != nil:
		c0, err := r.Ruled.C0.decode()
		if err != nil {
			return nil, err
		}
		c1, err := r.Ruled.C1.decode()
		if err != nil {
			return nil, err
		}
		return geom.Ruled{C0: c0, C1: c1}, nil
	}
	return nil, fmt.Errorf("bad surface record of type %q", r.Type)
}
