package tessellate

import (
	"github.com/soypat/brep"
	"github.com/soypat/brep/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// unionFind groups edges whose sample counts must agree.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(i int) int {
	for uf.parent[i] != i {
		uf.parent[i] = uf.parent[uf.parent[i]]
		i = uf.parent[i]
	}
	return i
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[rb] = ra
	}
}

// sampleEdges samples every edge of s. Opposite sides of every curved patch
// that are not collapsed to a point share a division count so its parameter grid lines up with the edge samples
// of all neighbouring faces. End samples are the exact vertex positions.
func sampleEdges(s brep.Shell, opts Options) map[*brep.Edge][]r3.Vec {
	edges := s.Edges()
	index := make(map[*brep.Edge]int, len(edges))
	count := make([]int, len(edges))
	for i, e := range edges {
		index[e] = i
		count[i] = geom.Divisions(e.Curve(), opts.Tolerance, opts.MinDivisions, opts.MaxDivisions)
	}
	uf := newUnionFind(len(edges))
	type isoDemand struct{ edge, n int }
	var demands []isoDemand
	var patches int
	for _, f := range s {
		p, ok := patchOf(f)
		if !ok {
			continue
		}
		patches++
		nu, nv := geom.IsoDivisions(f.Surface(), opts.Tolerance, opts.MinDivisions, opts.MaxDivisions)
		for _, pair := range [2][2]int{{bottom, top}, {right, left}} {
			a, aok := p.usage(pair[0])
			b, bok := p.usage(pair[1])
			if aok && bok {
				uf.union(index[a.Edge], index[b.Edge])
			} else if !aok {
				a = b
			}
			if !aok && !bok {
				continue
			}
			n := nu
			if pair[0] == right {
				n = nv
			}
			demands = append(demands, isoDemand{index[a.Edge], n})
		}
	}
	classCount := make(map[int]int)
	for i, n := range count {
		r := uf.find(i)
		classCount[r] = max(classCount[r], n)
	}
	for _, d := range demands {
		r := uf.find(d.edge)
		classCount[r] = max(classCount[r], d.n)
	}
	samples := make(map[*brep.Edge][]r3.Vec, len(edges))
	for i, e := range edges {
		n := classCount[uf.find(i)]
		pts := geom.Sample(e.Curve(), n)
		pts[0] = e.Front().Point()
		pts[n] = e.Back().Point()
		samples[e] = pts
	}
	brep.Logger().Debug("sampled edges", "edges", len(edges), "patches", patches)
	return samples
}
