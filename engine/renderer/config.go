package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shading"
)

// Config selects the features a renderer links its programs with. Each boolean disables a shader
// feature at link time.
type Config struct {
	// MaxDirectionalLights is the number of directional lights shaded per frame. Later lights are dropped.
	MaxDirectionalLights int

	// MaxPointLights is the number of point lights shaded per frame. Later lights are dropped.
	MaxPointLights int

	// LightModel selects Phong or PBR surface response.
	LightModel shading.LightModel

	NoShadow    bool
	NoNormalMap bool
	NoHeightMap bool

	// ShadowMapSize is the edge length in texels of each directional shadow map layer.
	ShadowMapSize uint32

	// ShadowHalfExtent is half the width and height of the orthographic shadow box.
	ShadowHalfExtent float32

	// ShadowNear and ShadowFar bound the shadow box along the light direction.
	ShadowNear float32
	ShadowFar  float32

	// ShadowBias is subtracted from the fragment depth before the shadow comparison.
	ShadowBias float32
}

// DefaultConfig returns a Phong configuration with shadows, normal maps and height maps enabled.
//
// Returns:
//   - Config: the default configuration
func DefaultConfig() Config {
	return Config{
		MaxDirectionalLights: 4,
		MaxPointLights:       16,
		LightModel:           shading.LightModelPhong,
		ShadowMapSize:        light.DefaultShadowMapSize,
		ShadowHalfExtent:     light.DefaultShadowHalfExtent,
		ShadowNear:           light.DefaultShadowNear,
		ShadowFar:            light.DefaultShadowFar,
		ShadowBias:           light.DefaultShadowBias,
	}
}

func (c Config) validate() error {
	switch {
	case c.MaxDirectionalLights < 0 || c.MaxPointLights < 0:
		return fmt.Errorf("renderer: negative light maxima %d/%d", c.MaxDirectionalLights, c.MaxPointLights)
	case c.LightModel != shading.LightModelPhong && c.LightModel != shading.LightModelPBR:
		return fmt.Errorf("renderer: unknown light model %s", c.LightModel)
	case c.shadows() && c.ShadowMapSize == 0:
		return fmt.Errorf("renderer: shadows enabled with a zero shadow map size")
	case c.shadows() && (c.ShadowHalfExtent <= 0 || c.ShadowNear >= c.ShadowFar):
		return fmt.Errorf("renderer: invalid shadow box (half extent %g, near %g, far %g)", c.ShadowHalfExtent, c.ShadowNear, c.ShadowFar)
	}
	return nil
}

// shadows reports whether any light can cast a shadow under this configuration.
func (c Config) shadows() bool {
	return !c.NoShadow && c.MaxDirectionalLights > 0
}

func (c Config) shadowBox() light.ShadowBox {
	return light.ShadowBox{HalfExtent: c.ShadowHalfExtent, Near: c.ShadowNear, Far: c.ShadowFar}
}

// surfaceDirectives are the flags every program that samples materials is linked with.
func (c Config) surfaceDirectives() shader.Directives {
	return shader.Directives{
		"LIGHT_MODEL":    int(c.LightModel),
		"USE_NORMAL_MAP": !c.NoNormalMap,
		"USE_HEIGHT_MAP": !c.NoHeightMap,
	}
}

func (c Config) forwardDirectives() shader.Directives {
	d := c.surfaceDirectives()
	d["MAX_DIRECTIONAL_LIGHTS"] = c.MaxDirectionalLights
	d["MAX_POINT_LIGHTS"] = c.MaxPointLights
	d["HAS_SHADOW"] = c.shadows()
	return d
}

func (c Config) lightDirectives(lightType light.LightType) shader.Directives {
	return shader.Directives{
		"LIGHT_MODEL": int(c.LightModel),
		"LIGHT_TYPE":  int(lightType),
		"HAS_SHADOW":  c.shadows() && lightType == light.LightTypeDirectional,
	}
}
