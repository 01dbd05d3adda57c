package render

import "io"

// RenderAll drains r and returns every triangle it produced, such as the
// triangle fans of a mesh from NewMeshRenderer. Reaching io.EOF is not an
// error. Renderers that know how many triangles remain have the result
// allocated up front.
func RenderAll(r Renderer) ([]Triangle3, error) {
	size := 1 << 12
	if c, ok := r.(interface{ Remaining() int }); ok {
		size = c.Remaining()
	}
	model := make([]Triangle3, 0, size)
	buf := make([]Triangle3, min(1024, max(size, 1)))
	for {
		n, err := r.ReadTriangles(buf)
		model = append(model, buf[:n]...)
		if err == io.EOF {
			return model, nil
		} else if err != nil {
			return model, err
		}
	}
}

// triangle3Buffer queues triangles produced ahead of a ReadTriangles call.
type triangle3Buffer struct {
	buf []Triangle3
}

func (b *triangle3Buffer) Read(t []Triangle3) int {
	n := copy(t, b.buf)
	b.buf = b.buf[n:]
	return n
}

func (b *triangle3Buffer) Write(t ...Triangle3) {
	b.buf = append(b.buf, t...)
}

func (b *triangle3Buffer) Len() int { return len(b.buf) }
