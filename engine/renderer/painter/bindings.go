package painter

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-shade/engine/model"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// fallbackMaterial supplies the factors of primitives drawn without any material.
var fallbackMaterial = material.NewMaterial(material.WithName("fallback"))

func orFallback(m material.Material) material.Material {
	if m == nil {
		return fallbackMaterial
	}
	return m
}

// parallax returns the height map scale and bias of a material. Both are zero without a height map so
// the neutral height never shifts texture coordinates.
func parallax(m material.Material) (scale, bias float32) {
	if m == nil || m.Texture(material.MapHeight) == nil {
		return 0, 0
	}
	return m.ParallaxScale(), m.ParallaxBias()
}

// BindNode binds modelMatrix and normalMatrix to a node scope.
//
// Parameters:
//   - b: the node binding
//
// Returns:
//   - error: an error if a name is present with an incompatible type
func BindNode(b shader.Binding[NodeState]) error {
	return errors.Join(
		shader.IgnoreUnknown(b.SetUniform("modelMatrix", shader.Mat4(func(s NodeState) mgl32.Mat4 { return s.Model }))),
		shader.IgnoreUnknown(b.SetUniform("normalMatrix", shader.Mat3(func(s NodeState) mgl32.Mat3 { return s.Normal }))),
	)
}

// BindGeometry binds every standard vertex stream the program reads to the geometry buffer of the same name.
//
// Parameters:
//   - b: the geometry binding
//
// Returns:
//   - error: an error if a stream is already bound
func BindGeometry(b shader.Binding[model.Geometry]) error {
	var errs []error
	for _, name := range []string{model.AttributePosition, model.AttributeNormal, model.AttributeTangent, model.AttributeCoord, model.AttributeColor} {
		errs = append(errs, shader.IgnoreUnknown(b.SetAttribute(name, func(g model.Geometry) shader.Attribute {
			return shader.Attribute{Buffer: g.Buffer(name)}
		})))
	}
	return errors.Join(errs...)
}

// BindMaterial binds the material factors and maps the program reads. Each map is named after its slot
// with a "Map" suffix, e.g. albedoMap.
//
// Parameters:
//   - b: the material binding
//   - neutral: the fallback textures, may be nil
//
// Returns:
//   - error: an error if a name is present with an incompatible type
func BindMaterial(b shader.Binding[material.Material], neutral material.NeutralTextures) error {
	errs := []error{
		shader.IgnoreUnknown(b.SetUniform("albedoFactor", shader.Vec4(func(m material.Material) mgl32.Vec4 {
			return orFallback(m).AlbedoFactor()
		}))),
		shader.IgnoreUnknown(b.SetUniform("emissiveFactor", shader.Vec4(func(m material.Material) mgl32.Vec4 {
			return orFallback(m).EmissiveFactor().Vec4(1)
		}))),
		shader.IgnoreUnknown(b.SetUniform("glossFactor", shader.Float(func(m material.Material) float32 {
			return orFallback(m).GlossFactor()
		}))),
		shader.IgnoreUnknown(b.SetUniform("shininess", shader.Float(func(m material.Material) float32 {
			return orFallback(m).Shininess()
		}))),
		shader.IgnoreUnknown(b.SetUniform("metalnessStrength", shader.Float(func(m material.Material) float32 {
			return orFallback(m).MetalnessStrength()
		}))),
		shader.IgnoreUnknown(b.SetUniform("roughnessStrength", shader.Float(func(m material.Material) float32 {
			return orFallback(m).RoughnessStrength()
		}))),
		shader.IgnoreUnknown(b.SetUniform("parallaxScale", shader.Float(func(m material.Material) float32 {
			scale, _ := parallax(m)
			return scale
		}))),
		shader.IgnoreUnknown(b.SetUniform("parallaxBias", shader.Float(func(m material.Material) float32 {
			_, bias := parallax(m)
			return bias
		}))),
	}

	for slot := material.MapAlbedo; slot <= material.MapEmissive; slot++ {
		errs = append(errs, shader.IgnoreUnknown(b.SetUniform(slot.String()+"Map", shader.Texture(func(m material.Material) resource.Texture {
			if neutral != nil {
				return neutral.Resolve(m, slot)
			}
			if m == nil {
				return nil
			}
			return m.Texture(slot)
		}))))
	}
	return errors.Join(errs...)
}
