package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithAlbedoFactor is an option builder that sets the RGBA color multiplied into the albedo map.
//
// Parameters:
//   - color: the albedo factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the albedo factor to a material
func WithAlbedoFactor(color mgl32.Vec4) MaterialBuilderOption {
	return func(m *material) {
		m.albedoFactor = color
	}
}

// WithEmissiveFactor is an option builder that sets the RGB color multiplied into the emissive map.
// Without an emissive map the material emits nothing regardless of this factor.
//
// Parameters:
//   - color: the emissive factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the emissive factor to a material
func WithEmissiveFactor(color mgl32.Vec3) MaterialBuilderOption {
	return func(m *material) {
		m.emissiveFactor = color
	}
}

// WithGloss is an option builder that sets the Phong specular strength and exponent.
//
// Parameters:
//   - factor: the specular strength, 0 disables specular highlights
//   - shininess: the specular exponent
//
// Returns:
//   - MaterialBuilderOption: a function that applies the gloss settings to a material
func WithGloss(factor, shininess float32) MaterialBuilderOption {
	return func(m *material) {
		m.glossFactor = factor
		m.shininess = shininess
	}
}

// WithMetalnessRoughness is an option builder that sets the physically based surface strengths.
//
// Parameters:
//   - metalness: 0 for a dielectric, 1 for a metal
//   - roughness: 0 for a mirror, 1 for a fully rough surface
//
// Returns:
//   - MaterialBuilderOption: a function that applies the strengths to a material
func WithMetalnessRoughness(metalness, roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.metalnessStrength = metalness
		m.roughnessStrength = roughness
	}
}

// WithParallax is an option builder that sets the height map scale and bias of parallax mapping. Both are
// ignored while the material has no height map.
//
// Parameters:
//   - scale: the height scale
//   - bias: the height bias
//
// Returns:
//   - MaterialBuilderOption: a function that applies the parallax settings to a material
func WithParallax(scale, bias float32) MaterialBuilderOption {
	return func(m *material) {
		m.parallaxScale = scale
		m.parallaxBias = bias
	}
}

// WithMap is an option builder that sets one texture map of the material.
//
// Parameters:
//   - slot: the map slot
//   - tex: the texture
//
// Returns:
//   - MaterialBuilderOption: a function that applies the map to a material
func WithMap(slot Map, tex resource.Texture) MaterialBuilderOption {
	if slot < 0 || slot >= mapCount {
		panic(fmt.Sprintf("material: invalid map slot %d", slot))
	}
	return func(m *material) {
		m.maps[slot] = tex
	}
}
