// Package obj reads and writes polygon meshes in the Wavefront OBJ format.
// Only geometry is supported: v, vt, vn and f statements. Other statements
// are skipped when reading.
package obj

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soypat/brep/polymesh"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Write writes m to w. Attributes are written in array order and faces in
// face order so that reading the output back yields an identical mesh.
func Write(w io.Writer, m *polymesh.PolygonMesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, p := range m.Positions {
		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(p.X), ftoa(p.Y), ftoa(p.Z))
	}
	for _, uv := range m.UVs {
		fmt.Fprintf(bw, "vt %s %s\n", ftoa(uv.X), ftoa(uv.Y))
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %s %s %s\n", ftoa(n.X), ftoa(n.Y), ftoa(n.Z))
	}
	for _, f := range m.Faces {
		bw.WriteString("f")
		for _, v := range f {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(v.Pos + 1))
			switch {
			case v.UV >= 0 && v.Nor >= 0:
				fmt.Fprintf(bw, "/%d/%d", v.UV+1, v.Nor+1)
			case v.UV >= 0:
				fmt.Fprintf(bw, "/%d", v.UV+1)
			case v.Nor >= 0:
				fmt.Fprintf(bw, "//%d", v.Nor+1)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// Read parses an OBJ document. Face indices may be negative, counting back
// from the last attribute defined before the face.
func Read(r io.Reader) (*polymesh.PolygonMesh, error) {
	m := &polymesh.PolygonMesh{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		ident, val := fields[0], fields[1:]
		var err error
		switch ident {
		case "v", "vn":
			var v []float64
			v, err = parseFloats(val, 3)
			if err != nil {
				break
			}
			p := r3.Vec{X: v[0], Y: v[1], Z: v[2]}
			if ident == "v" {
				m.Positions = append(m.Positions, p)
			} else {
				m.Normals = append(m.Normals, p)
			}
		case "vt":
			var v []float64
			v, err = parseFloats(val, 2)
			if err == nil {
				m.UVs = append(m.UVs, r2.Vec{X: v[0], Y: v[1]})
			}
		case "f":
			var f []polymesh.Vertex
			f, err = parseFace(val, m)
			if err == nil {
				m.Faces = append(m.Faces, f)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("obj line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// parseFloats parses the first n fields. Extra fields such as a vertex
// weight are ignored.
func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d coordinates, got %d", n, len(fields))
	}
	v := make([]float64, n)
	for i := range v {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		v[i] = f
	}
	return v, nil
}

func parseFace(fields []string, m *polymesh.PolygonMesh) ([]polymesh.Vertex, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face has %d corners", len(fields))
	}
	f := make([]polymesh.Vertex, len(fields))
	for i, s := range fields {
		idx := strings.Split(s, "/")
		if len(idx) > 3 {
			return nil, fmt.Errorf("bad face corner %q", s)
		}
		v := polymesh.Vertex{UV: -1, Nor: -1}
		var err error
		v.Pos, err = parseIndex(idx[0], len(m.Positions))
		if err != nil {
			return nil, err
		}
		if len(idx) > 1 && idx[1] != "" {
			if v.UV, err = parseIndex(idx[1], len(m.UVs)); err != nil {
				return nil, err
			}
		}
		if len(idx) > 2 && idx[2] != "" {
			if v.Nor, err = parseIndex(idx[2], len(m.Normals)); err != nil {
				return nil, err
			}
		}
		f[i] = v
	}
	return f, nil
}

// parseIndex converts a one based or negative relative OBJ index to a zero
// based index into an attribute array of length n.
func parseIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	switch {
	case err != nil:
		return 0, err
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, fmt.Errorf("index %d out of range [1,%d]", i, n)
}
