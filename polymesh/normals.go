package polymesh

import (
	"math"

	"github.com/soypat/brep"
	"github.com/soypat/brep/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// faceNormal returns the Newell normal of face f. Its length is twice the
// face area.
func (m *PolygonMesh) faceNormal(f []Vertex) r3.Vec {
	pts := make([]r3.Vec, len(f))
	for i, v := range f {
		pts[i] = m.Positions[v.Pos]
	}
	return geom.NewellNormal(pts)
}

// AddNaiveNormals gives every position one normal, the unit normal of the
// last face in order that uses it. Corners reference the normal of their
// position. flip reverses every normal.
func (m *PolygonMesh) AddNaiveNormals(flip bool) {
	m.Normals = make([]r3.Vec, len(m.Positions))
	for _, f := range m.Faces {
		n := unit(m.faceNormal(f))
		if flip {
			n = r3.Scale(-1, n)
		}
		for i := range f {
			m.Normals[f[i].Pos] = n
			f[i].Nor = f[i].Pos
		}
	}
	m.advance(Normaled)
}

type normalCluster struct {
	sum   r3.Vec
	index int
}

// AddSmoothNormals generates normals that are shared across faces meeting at
// an angle of at most threshold radians. For every position the faces using
// it are visited in order. A face joins the first cluster of that position
// whose area weighted mean normal is within threshold of the face normal,
// otherwise it starts a new cluster. Each cluster produces one normal, its
// area weighted mean, which every corner in the cluster references.
// flip reverses every normal.
func (m *PolygonMesh) AddSmoothNormals(threshold float64, flip bool) {
	normals := make([]r3.Vec, len(m.Faces))
	for i, f := range m.Faces {
		normals[i] = m.faceNormal(f)
	}
	cosThreshold := math.Cos(threshold)
	clusters := make([][]normalCluster, len(m.Positions))
	corner := make([][]int, len(m.Faces))
	for fi, f := range m.Faces {
		corner[fi] = make([]int, len(f))
		n := normals[fi]
		for ci, v := range f {
			cl := clusters[v.Pos]
			k := -1
			for j := range cl {
				if r3.Norm2(n) == 0 || r3.Norm2(cl[j].sum) == 0 || r3.Cos(n, cl[j].sum) >= cosThreshold {
					k = j
					break
				}
			}
			if k < 0 {
				cl = append(cl, normalCluster{})
				k = len(cl) - 1
			}
			cl[k].sum = r3.Add(cl[k].sum, n)
			clusters[v.Pos] = cl
			corner[fi][ci] = k
		}
	}
	m.Normals = m.Normals[:0]
	for p := range clusters {
		for j := range clusters[p] {
			n := unit(clusters[p][j].sum)
			if flip {
				n = r3.Scale(-1, n)
			}
			clusters[p][j].index = len(m.Normals)
			m.Normals = append(m.Normals, n)
		}
	}
	for fi, f := range m.Faces {
		for ci := range f {
			f[ci].Nor = clusters[f[ci].Pos][corner[fi][ci]].index
		}
	}
	m.advance(Normaled)
	brep.Logger().Debug("smoothed normals", "threshold", threshold, "normals", len(m.Normals))
}

func unit(v r3.Vec) r3.Vec {
	if r3.Norm2(v) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(v)
}
