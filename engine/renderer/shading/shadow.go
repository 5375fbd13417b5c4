package shading

import "github.com/go-gl/mathgl/mgl32"

// DepthSampler returns the depth stored in a shadow-map layer at texture coordinates (u, v).
type DepthSampler func(u, v float32) float32

// ShadowVisibility is the comparison a shadowed light performs: 0 when the stored depth is nearer than
// the fragment and 1 otherwise, including everywhere outside the map.
func ShadowVisibility(shadowCoord mgl32.Vec4, stored DepthSampler, bias float32) float32 {
	p := shadowCoord.Vec3().Mul(1 / shadowCoord[3])
	if p[0] < 0 || p[0] > 1 || p[1] < 0 || p[1] > 1 || p[2] < 0 || p[2] > 1 {
		return 1
	}
	if p[2]-bias <= stored(p[0], p[1]) {
		return 1
	}
	return 0
}
