// Package shading is a CPU reference of the engine's WGSL lighting functions. Every function mirrors
// the shader routine of the same name so frame results can be predicted without a GPU.
package shading

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightModel selects the surface response a program is linked with.
type LightModel int

const (
	LightModelPhong LightModel = iota
	LightModelPBR
)

func (m LightModel) String() string {
	switch m {
	case LightModelPhong:
		return "phong"
	case LightModelPBR:
		return "pbr"
	default:
		return fmt.Sprintf("LightModel(%d)", int(m))
	}
}

// Surface is a material sampled at one fragment. Shading holds (gloss, shininess) for Phong and
// (roughness, metalness) for PBR.
type Surface struct {
	Albedo    mgl32.Vec4
	Emissive  mgl32.Vec3
	Occlusion float32
	Normal    mgl32.Vec3
	Shading   mgl32.Vec2
}

// Incident is one light arriving at a fragment.
type Incident struct {
	// L is the unit vector from the fragment towards the light.
	L     mgl32.Vec3
	Color mgl32.Vec3
	// Scale multiplies both terms: shadow visibility or point attenuation.
	Scale float32
}

const pi = 3.14159265

// PhongTerms returns the Lambert diffuse and Phong specular factors for unit vectors.
func PhongTerms(n, l, v mgl32.Vec3, shininess, gloss float32) (diffuse, specular float32) {
	ndl := n.Dot(l)
	if ndl <= 0 {
		return 0, 0
	}
	r := reflect(l.Mul(-1), n)
	return ndl, math32.Pow(math32.Max(r.Dot(v), 0), math32.Max(shininess, 1)) * gloss
}

// GGXTerms returns the diffuse and specular factors of a Cook-Torrance BRDF with a GGX distribution,
// Schlick-Smith geometry and a Schlick Fresnel on a scalar F0.
func GGXTerms(n, l, v mgl32.Vec3, roughness, metalness float32) (diffuse, specular float32) {
	ndl := n.Dot(l)
	if ndl <= 0 {
		return 0, 0
	}
	ndv := math32.Max(n.Dot(v), 1e-4)
	h := l.Add(v).Normalize()
	ndh := math32.Max(n.Dot(h), 0)
	vdh := math32.Max(v.Dot(h), 0)

	a := math32.Max(roughness*roughness, 1e-3)
	a2 := a * a
	dd := ndh*ndh*(a2-1) + 1
	d := a2 / (pi * dd * dd)

	k := (roughness + 1) * (roughness + 1) / 8
	g := (ndl / (ndl*(1-k) + k)) * (ndv / (ndv*(1-k) + k))

	f0 := mix(0.04, 1, metalness)
	f := f0 + (1-f0)*math32.Pow(1-vdh, 5)

	specular = d * g * f / (4 * ndl * ndv) * ndl
	diffuse = (1 - f) * (1 - metalness) * ndl
	return diffuse, specular
}

// Terms evaluates the light model for one light direction.
func Terms(model LightModel, s Surface, l, v mgl32.Vec3) (diffuse, specular float32) {
	if model == LightModelPBR {
		return GGXTerms(s.Normal, l, v, s.Shading[0], s.Shading[1])
	}
	return PhongTerms(s.Normal, l, v, s.Shading[1], s.Shading[0])
}

// PointAttenuation falls from 1 at the light to exactly 0 at the radius.
func PointAttenuation(distance, radius float32) float32 {
	if radius <= 0 {
		return 0
	}
	x := clamp(1-(distance*distance)/(radius*radius), 0, 1)
	return x * x
}

// Luminance returns the Rec. 709 luminance of a linear color.
func Luminance(c mgl32.Vec3) float32 {
	return c.Dot(mgl32.Vec3{0.2126, 0.7152, 0.0722})
}

// Forward returns the lit color of the forward pass for one fragment. v is the unit vector towards the eye.
func Forward(model LightModel, s Surface, v, ambient mgl32.Vec3, lights []Incident) mgl32.Vec4 {
	var diffuse, specular mgl32.Vec3
	for _, in := range lights {
		if in.Color.Dot(in.Color) == 0 {
			continue
		}
		d, sp := Terms(model, s, in.L, v)
		diffuse = diffuse.Add(in.Color.Mul(d * in.Scale))
		specular = specular.Add(in.Color.Mul(sp * in.Scale))
	}
	lit := ambient.Mul(s.Occlusion).Add(diffuse)
	rgb := mul3(s.Albedo.Vec3(), lit).Add(specular).Add(s.Emissive)
	return rgb.Vec4(s.Albedo[3])
}

// Accumulate returns one light's contribution to the light buffer: diffuse light in rgb and
// luminance-weighted specular in a.
func Accumulate(model LightModel, s Surface, position mgl32.Vec3, in Incident) mgl32.Vec4 {
	d, sp := Terms(model, s, in.L, position.Mul(-1).Normalize())
	d *= in.Scale
	sp *= in.Scale
	return in.Color.Mul(d).Vec4(sp * Luminance(in.Color))
}

// Compose returns the composition pass color of a fragment given its accumulated light.
func Compose(s Surface, ambient mgl32.Vec3, light mgl32.Vec4) mgl32.Vec4 {
	lit := ambient.Mul(s.Occlusion).Add(light.Vec3())
	rgb := mul3(s.Albedo.Vec3(), lit).Add(mgl32.Vec3{light[3], light[3], light[3]}).Add(s.Emissive)
	return rgb.Vec4(s.Albedo[3])
}

func reflect(i, n mgl32.Vec3) mgl32.Vec3 {
	return i.Sub(n.Mul(2 * n.Dot(i)))
}

func mix(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

func clamp(x, lo, hi float32) float32 {
	return math32.Min(math32.Max(x, lo), hi)
}

func mul3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
