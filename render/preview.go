package render

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"gonum.org/v1/gonum/spatial/r3"
)

// View configures the camera and output size of a preview. The model is fit
// in a bi-unit cube centered at the origin before being drawn, so Eye and
// LookAt are given in that normalized space. Zero fields take the values of
// DefaultView.
type View struct {
	// LookAt is the point the camera looks at.
	LookAt r3.Vec
	// Up is the camera's up direction.
	Up r3.Vec
	// Eye is where the camera is located.
	Eye       r3.Vec
	Near, Far float64
	// FovY is the vertical field of view in degrees.
	FovY float64
	// Width and Height of the output image in pixels.
	Width, Height int
	// Supersample renders at Supersample times the output size and
	// downscales the result for antialiasing.
	Supersample int
	// Color of the model and Background as hex strings, i.e: "#468966".
	Color, Background string
}

// DefaultView returns a view looking at the origin from (3,3,3) with z up.
func DefaultView() View {
	return View{
		Up:          r3.Vec{Z: 1},
		Eye:         r3.Vec{X: 3, Y: 3, Z: 3},
		Near:        1,
		Far:         10,
		FovY:        30,
		Width:       640,
		Height:      480,
		Supersample: 2,
		Color:       "#468966",
		Background:  "#FFF8E3",
	}
}

func (v View) withDefaults() View {
	def := DefaultView()
	if v.Up == (r3.Vec{}) {
		v.Up = def.Up
	}
	if v.Eye == (r3.Vec{}) {
		v.Eye = def.Eye
	}
	if v.Near == 0 {
		v.Near = def.Near
	}
	if v.Far == 0 {
		v.Far = def.Far
	}
	if v.FovY == 0 {
		v.FovY = def.FovY
	}
	if v.Width == 0 || v.Height == 0 {
		v.Width, v.Height = def.Width, def.Height
	}
	if v.Supersample == 0 {
		v.Supersample = def.Supersample
	}
	if v.Color == "" {
		v.Color = def.Color
	}
	if v.Background == "" {
		v.Background = def.Background
	}
	return v
}

// Image rasterizes model off-screen with a phong shader as seen from view.
func Image(model []Triangle3, view View) (image.Image, error) {
	if len(model) == 0 {
		return nil, errors.New("empty triangle slice")
	}
	view = view.withDefaults()
	if view.Width < 0 || view.Height < 0 || view.Supersample < 0 {
		return nil, errors.New("negative image size")
	}
	if view.Near >= view.Far {
		return nil, errors.New("near clipping plane must be closer than far plane")
	}
	triangles := make([]*fauxgl.Triangle, 0, len(model))
	for _, t := range model {
		triangles = append(triangles, fauxgl.NewTriangleForPoints(vec(t.V[0]), vec(t.V[1]), vec(t.V[2])))
	}
	mesh := fauxgl.NewTriangleMesh(triangles)
	mesh.BiUnitCube()

	var (
		width  = view.Width * view.Supersample
		height = view.Height * view.Supersample
		eye    = vec(view.Eye)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		aspect = float64(view.Width) / float64(view.Height)
	)
	context := fauxgl.NewContext(width, height)
	context.ClearColorBufferWith(fauxgl.HexColor(view.Background))
	matrix := fauxgl.LookAt(eye, vec(view.LookAt), vec(view.Up)).Perspective(view.FovY, aspect, view.Near, view.Far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor(view.Color)
	context.Shader = shader
	context.DrawMesh(mesh)
	img := context.Image()
	if view.Supersample > 1 {
		img = resize.Resize(uint(view.Width), uint(view.Height), img, resize.Bilinear)
	}
	return img, nil
}

// PNG rasterizes model like Image and encodes the result to w.
func PNG(w io.Writer, model []Triangle3, view View) error {
	img, err := Image(model, view)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func vec(v r3.Vec) fauxgl.Vector {
	return fauxgl.V(v.X, v.Y, v.Z)
}
