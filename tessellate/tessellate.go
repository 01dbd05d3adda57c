// Package tessellate approximates the faces of a B-rep shell or solid with
// triangles whose deviation from the exact surfaces is bounded by a
// tolerance.
//
// Every edge is sampled once and the samples are shared by both faces using
// it, so the per-face meshes meet exactly along their common edges and weld
// into a watertight mesh.
package tessellate

import (
	"errors"
	"runtime"

	"github.com/soypat/brep"
	"github.com/soypat/brep/geom"
	"github.com/soypat/brep/polymesh"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Options configures triangulation. Zero fields take the value of
// DefaultOptions.
type Options struct {
	// Tolerance is the largest distance allowed between a curve or surface
	// and its chords. Must not be negative.
	Tolerance float64
	// MinDivisions and MaxDivisions clamp the number of segments an edge
	// or a surface iso-line is split into.
	MinDivisions, MaxDivisions int
	// Workers is the number of faces triangulated concurrently.
	Workers int
}

// DefaultOptions returns the options used for zero valued fields.
func DefaultOptions() Options {
	return Options{
		Tolerance:    0.01,
		MinDivisions: 1,
		MaxDivisions: 256,
		Workers:      runtime.GOMAXPROCS(0),
	}
}

func (o Options) withDefaults() (Options, error) {
	def := DefaultOptions()
	if o.Tolerance < 0 {
		return o, errors.New("negative triangulation tolerance")
	}
	if o.Tolerance == 0 {
		o.Tolerance = def.Tolerance
	}
	if o.MinDivisions <= 0 {
		o.MinDivisions = def.MinDivisions
	}
	if o.MaxDivisions <= 0 {
		o.MaxDivisions = def.MaxDivisions
	}
	if o.MaxDivisions < o.MinDivisions {
		return o, errors.New("MaxDivisions less than MinDivisions")
	}
	if o.Workers <= 0 {
		o.Workers = def.Workers
	}
	return o, nil
}

// FaceMesh is the triangulation of a single face. Positions, Normals and
// UVs are parallel arrays; UVs hold surface parameters. Triangles index
// into them and wind counter clockwise seen from the face normal.
type FaceMesh struct {
	Positions []r3.Vec
	Normals   []r3.Vec
	UVs       []r2.Vec
	Triangles [][3]int
}

func (fm *FaceMesh) add(p, n r3.Vec, uv r2.Vec) int {
	fm.Positions = append(fm.Positions, p)
	fm.Normals = append(fm.Normals, n)
	fm.UVs = append(fm.UVs, uv)
	return len(fm.Positions) - 1
}

// PerFaceMeshSet holds one FaceMesh per face, in face order.
type PerFaceMeshSet []FaceMesh

// Merge concatenates the face meshes in order into one polygon mesh. No
// attributes are shared between faces; see polymesh.PolygonMesh.Weld.
func (set PerFaceMeshSet) Merge() *polymesh.PolygonMesh {
	m := &polymesh.PolygonMesh{}
	for _, fm := range set {
		off := len(m.Positions)
		m.Positions = append(m.Positions, fm.Positions...)
		m.Normals = append(m.Normals, fm.Normals...)
		m.UVs = append(m.UVs, fm.UVs...)
		for _, t := range fm.Triangles {
			m.Faces = append(m.Faces, []polymesh.Vertex{
				{Pos: off + t[0], UV: off + t[0], Nor: off + t[0]},
				{Pos: off + t[1], UV: off + t[1], Nor: off + t[1]},
				{Pos: off + t[2], UV: off + t[2], Nor: off + t[2]},
			})
		}
	}
	return m
}

// Solid triangulates every face of s, outer shell first.
func Solid(s *brep.Solid, opts Options) (PerFaceMeshSet, error) {
	return Shell(s.Faces(), opts)
}

// Shell triangulates every face of s. Faces are processed concurrently by
// opts.Workers goroutines. If any face fails the first failing face in shell
// order is reported as a *brep.TriangulationError and no meshes are returned.
func Shell(s brep.Shell, opts Options) (PerFaceMeshSet, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	samples := sampleEdges(s, opts)
	set := make(PerFaceMeshSet, len(s))
	errs := make([]error, len(s))
	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i, f := range s {
		g.Go(func() error {
			fm, err := triangulateFace(f, samples, opts)
			if err != nil {
				errs[i] = &brep.TriangulationError{Face: i, Reason: err.Error()}
				return nil
			}
			set[i] = fm
			return nil
		})
	}
	g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	var ntri int
	for _, fm := range set {
		ntri += len(fm.Triangles)
	}
	brep.Logger().Debug("triangulated shell", "faces", len(s), "edges", len(samples), "triangles", ntri, "tolerance", opts.Tolerance)
	return set, nil
}

func triangulateFace(f *brep.Face, samples map[*brep.Edge][]r3.Vec, opts Options) (FaceMesh, error) {
	if p, ok := patchOf(f); ok {
		return gridPatch(f, p, samples, opts)
	}
	plane, ok := geom.PlaneOf(f.Surface(), opts.Tolerance)
	if !ok {
		return FaceMesh{}, errors.New("curved face is not a swept patch")
	}
	return planarFace(f, plane, samples)
}

// rawBoundaries returns the boundaries of f in the orientation of its surface.
func rawBoundaries(f *brep.Face) []brep.Wire {
	b := f.Boundaries()
	if f.IsFlipped() {
		for i := range b {
			b[i] = b[i].Inverse()
		}
	}
	return b
}

// usageSamples returns the samples of oe from its front to its back vertex.
func usageSamples(oe brep.OrientedEdge, samples map[*brep.Edge][]r3.Vec) []r3.Vec {
	s := samples[oe.Edge]
	if !oe.Reversed {
		return s
	}
	rev := make([]r3.Vec, len(s))
	for i := range s {
		rev[i] = s[len(s)-1-i]
	}
	return rev
}
