package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// Map identifies one optional texture slot of a material.
type Map int

const (
	MapAlbedo Map = iota
	MapNormal
	MapHeight
	MapGloss
	MapMetalness
	MapRoughness
	MapOcclusion
	MapEmissive

	mapCount
)

func (m Map) String() string {
	switch m {
	case MapAlbedo:
		return "albedo"
	case MapNormal:
		return "normal"
	case MapHeight:
		return "height"
	case MapGloss:
		return "gloss"
	case MapMetalness:
		return "metalness"
	case MapRoughness:
		return "roughness"
	case MapOcclusion:
		return "occlusion"
	case MapEmissive:
		return "emissive"
	default:
		return fmt.Sprintf("map(%d)", int(m))
	}
}

// material is the implementation of the Material interface.
type material struct {
	name              string
	albedoFactor      mgl32.Vec4
	emissiveFactor    mgl32.Vec3
	glossFactor       float32
	shininess         float32
	metalnessStrength float32
	roughnessStrength float32
	parallaxScale     float32
	parallaxBias      float32
	maps              [mapCount]resource.Texture
}

// Material is an immutable bundle of surface factors and optional texture maps. A material may be shared by
// any number of primitives.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// AlbedoFactor retrieves the RGBA color multiplied into the albedo map.
	//
	// Returns:
	//   - mgl32.Vec4: the albedo factor
	AlbedoFactor() mgl32.Vec4

	// EmissiveFactor retrieves the RGB color multiplied into the emissive map.
	//
	// Returns:
	//   - mgl32.Vec3: the emissive factor
	EmissiveFactor() mgl32.Vec3

	// GlossFactor retrieves the specular strength of the Phong light model.
	//
	// Returns:
	//   - float32: the gloss factor
	GlossFactor() float32

	// Shininess retrieves the Phong specular exponent.
	//
	// Returns:
	//   - float32: the shininess exponent
	Shininess() float32

	// MetalnessStrength retrieves the factor multiplied into the metalness map.
	//
	// Returns:
	//   - float32: the metalness strength
	MetalnessStrength() float32

	// RoughnessStrength retrieves the factor multiplied into the roughness map.
	//
	// Returns:
	//   - float32: the roughness strength
	RoughnessStrength() float32

	// ParallaxScale retrieves the height map scale of parallax mapping.
	//
	// Returns:
	//   - float32: the parallax scale
	ParallaxScale() float32

	// ParallaxBias retrieves the height map bias of parallax mapping.
	//
	// Returns:
	//   - float32: the parallax bias
	ParallaxBias() float32

	// Texture retrieves one of the material's maps.
	//
	// Parameters:
	//   - m: the map slot
	//
	// Returns:
	//   - resource.Texture: the texture, or nil when the material has none for this slot
	Texture(m Map) resource.Texture
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		albedoFactor:      mgl32.Vec4{1, 1, 1, 1},
		emissiveFactor:    mgl32.Vec3{1, 1, 1},
		glossFactor:       1,
		shininess:         30,
		metalnessStrength: 0,
		roughnessStrength: 0.5,
		parallaxScale:     0.04,
		parallaxBias:      -0.02,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) AlbedoFactor() mgl32.Vec4 {
	return m.albedoFactor
}

func (m *material) EmissiveFactor() mgl32.Vec3 {
	return m.emissiveFactor
}

func (m *material) GlossFactor() float32 {
	return m.glossFactor
}

func (m *material) Shininess() float32 {
	return m.shininess
}

func (m *material) MetalnessStrength() float32 {
	return m.metalnessStrength
}

func (m *material) RoughnessStrength() float32 {
	return m.roughnessStrength
}

func (m *material) ParallaxScale() float32 {
	return m.parallaxScale
}

func (m *material) ParallaxBias() float32 {
	return m.parallaxBias
}

func (m *material) Texture(slot Map) resource.Texture {
	if slot < 0 || slot >= mapCount {
		return nil
	}
	return m.maps[slot]
}
