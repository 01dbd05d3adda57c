// Package matter compensates meshes for the dimensional change of material
// during fabrication.
package matter

import (
	"errors"

	"github.com/soypat/brep/polymesh"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// PLA (polylactic acid) is the most widely used plastic filament material in 3D printing.
	PLA = ViscousMaterial{shrink: 0.2e-2, pullShrink: .45} // 0.2% shrinkage
)

type ViscousMaterial struct {
	// shrink is the thermal contraction shrinkage of a material once the material
	// cools to room temperature after the heated bed is turned off.
	shrink float64
	// pullShrink takes into account viscoelastic shrinkage.
	pullShrink float64
}

// Scale enlarges the mesh about center so the printed part matches the
// modelled dimensions after cooling. Normals are unchanged by a uniform scale.
func (m ViscousMaterial) Scale(mesh *polymesh.PolygonMesh, center r3.Vec) error {
	if mesh == nil {
		return errors.New("nil mesh")
	}
	k := 1 / (1 - m.shrink)
	mesh.Transform(func(p r3.Vec) r3.Vec {
		return r3.Add(center, r3.Scale(k, r3.Sub(p, center)))
	})
	return nil
}

// InternalDimScale returns the dimension to model so that an internal
// feature such as a hole measures real once printed.
func (m ViscousMaterial) InternalDimScale(real float64) float64 {
	if real <= 0 {
		panic("InternalDimScale only works for non-zero dimensions")
	}
	return real*(m.shrink+1) + m.pullShrink
}
