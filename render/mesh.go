package render

import (
	"errors"
	"io"

	"github.com/soypat/brep/polymesh"
	"gonum.org/v1/gonum/spatial/r3"
)

type meshRenderer struct {
	m         *polymesh.PolygonMesh
	face      int
	unwritten triangle3Buffer
}

// NewMeshRenderer returns a Renderer over the faces of m. Polygons are split
// into triangle fans in face order. The mesh must not be modified while
// triangles are being read.
func NewMeshRenderer(m *polymesh.PolygonMesh) (Renderer, error) {
	if m == nil {
		return nil, errors.New("nil mesh")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &meshRenderer{
		m:         m,
		unwritten: triangle3Buffer{buf: make([]Triangle3, 0, 64)},
	}, nil
}

// ReadTriangles writes triangles of the mesh into dst.
func (mr *meshRenderer) ReadTriangles(dst []Triangle3) (n int, err error) {
	if len(dst) == 0 {
		return 0, errors.New("cannot write to empty triangle slice")
	}
	for n < len(dst) {
		if mr.unwritten.Len() == 0 {
			if mr.face >= len(mr.m.Faces) {
				return n, io.EOF
			}
			mr.fan(mr.m.Faces[mr.face])
			mr.face++
			continue
		}
		n += mr.unwritten.Read(dst[n:])
	}
	return n, nil
}

// Remaining returns the number of triangles not yet read.
func (mr *meshRenderer) Remaining() int {
	n := mr.unwritten.Len()
	for _, f := range mr.m.Faces[mr.face:] {
		n += len(f) - 2
	}
	return n
}

func (mr *meshRenderer) fan(face []polymesh.Vertex) {
	p := mr.m.Positions
	for i := 1; i+1 < len(face); i++ {
		mr.unwritten.Write(Triangle3{V: [3]r3.Vec{
			p[face[0].Pos], p[face[i].Pos], p[face[i+1].Pos],
		}})
	}
}
