package shading

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// EncodeNormal maps a unit view-space normal into [0, 1]^2 with the spheremap (Lambert azimuthal)
// projection. Only the normal pointing straight away from the viewer is not representable.
func EncodeNormal(n mgl32.Vec3) mgl32.Vec2 {
	f := math32.Max(math32.Sqrt(8*n[2]+8), 1e-6)
	return mgl32.Vec2{n[0]/f + 0.5, n[1]/f + 0.5}
}

// DecodeNormal inverts EncodeNormal.
func DecodeNormal(enc mgl32.Vec2) mgl32.Vec3 {
	fenc := mgl32.Vec2{enc[0]*4 - 2, enc[1]*4 - 2}
	f := fenc.Dot(fenc)
	g := math32.Sqrt(math32.Max(1-f/4, 0))
	return mgl32.Vec3{fenc[0] * g, fenc[1] * g, 1 - f/2}.Normalize()
}

// EncodeGBuffer packs a surface into the RGBA8 G-buffer texel: encoded normal in rg, shading
// parameters in ba. Phong shininess is stored divided by 256.
func EncodeGBuffer(model LightModel, s Surface) mgl32.Vec4 {
	params := s.Shading
	if model == LightModelPhong {
		params[1] /= 256
	}
	enc := EncodeNormal(s.Normal)
	return mgl32.Vec4{enc[0], enc[1], clamp(params[0], 0, 1), clamp(params[1], 0, 1)}
}

// DecodeGBuffer unpacks the normal and shading parameters of a G-buffer texel.
func DecodeGBuffer(model LightModel, texel mgl32.Vec4) (normal mgl32.Vec3, params mgl32.Vec2) {
	params = mgl32.Vec2{texel[2], texel[3]}
	if model == LightModelPhong {
		params[1] *= 256
	}
	return DecodeNormal(mgl32.Vec2{texel[0], texel[1]}), params
}

// Quantize rounds every channel to the nearest 8-bit step, the way an RGBA8 attachment stores it.
func Quantize(v mgl32.Vec4) mgl32.Vec4 {
	for i := range v {
		v[i] = math32.Floor(clamp(v[i], 0, 1)*255+0.5) / 255
	}
	return v
}

// ViewPosition reconstructs the view-space position of a pixel from its stored depth. pixel is in
// framebuffer coordinates with the origin at the top left.
func ViewPosition(pixel, viewport mgl32.Vec2, depth float32, inverseProjection mgl32.Mat4) mgl32.Vec3 {
	u, v := pixel[0]/viewport[0], pixel[1]/viewport[1]
	p := inverseProjection.Mul4x1(mgl32.Vec4{u*2 - 1, 1 - v*2, depth, 1})
	return p.Vec3().Mul(1 / p[3])
}

// ProjectDepth returns the pixel and stored depth a view-space position lands on. It is the inverse
// of ViewPosition.
func ProjectDepth(position mgl32.Vec3, viewport mgl32.Vec2, projection mgl32.Mat4) (pixel mgl32.Vec2, depth float32) {
	c := projection.Mul4x1(position.Vec4(1))
	ndc := c.Vec3().Mul(1 / c[3])
	pixel = mgl32.Vec2{(ndc[0] + 1) / 2 * viewport[0], (1 - ndc[1]) / 2 * viewport[1]}
	return pixel, ndc[2]
}
