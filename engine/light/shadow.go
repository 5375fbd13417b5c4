package light

import (
	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultShadowMapSize is the default width and height in texels of each shadow map layer.
const DefaultShadowMapSize = 2048

// DefaultShadowHalfExtent is the default orthographic half-extent (in world units)
// of the directional light shadow box.
const DefaultShadowHalfExtent float32 = 40.0

// DefaultShadowNear is the default near plane of the directional light's
// orthographic shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane of the directional light's
// orthographic shadow projection.
const DefaultShadowFar float32 = 200.0

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.001

// ShadowBox is the fixed world-space volume every directional shadow map covers. The box is
// centered on Center and extends HalfExtent across the light direction and from Near to Far
// along it.
type ShadowBox struct {
	Center     mgl32.Vec3
	HalfExtent float32
	Near       float32
	Far        float32
}

// DefaultShadowBox returns the origin-centered box built from the default shadow constants.
//
// Returns:
//   - ShadowBox: the default shadow box
func DefaultShadowBox() ShadowBox {
	return ShadowBox{
		HalfExtent: DefaultShadowHalfExtent,
		Near:       DefaultShadowNear,
		Far:        DefaultShadowFar,
	}
}

// ViewProjection computes the light view-projection of a directional light. The eye sits behind
// the box center, opposite the light direction, looking at the center through an orthographic
// projection with a [0, 1] depth range.
//
// Parameters:
//   - direction: the unit direction the light travels in
//
// Returns:
//   - mgl32.Mat4: the world to light clip-space matrix
func (b ShadowBox) ViewProjection(direction mgl32.Vec3) mgl32.Mat4 {
	eye := b.Center.Sub(direction.Mul(b.Far * 0.5))

	// Choose an up vector that isn't parallel to the light direction.
	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(direction.Y()) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}

	view := mgl32.LookAtV(eye, b.Center, up)
	proj := common.OrthoZO(-b.HalfExtent, b.HalfExtent, -b.HalfExtent, b.HalfExtent, b.Near, b.Far)
	return proj.Mul4(view)
}
