package scene

import (
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene.
type SceneBuilderOption func(*scene)

// WithAmbient sets the ambient light color.
//
// Parameters:
//   - r, g, b: the ambient color components
//
// Returns:
//   - SceneBuilderOption: functional option to set the ambient color
func WithAmbient(r, g, b float32) SceneBuilderOption {
	return func(s *scene) {
		s.ambient = mgl32.Vec3{r, g, b}
	}
}

// WithLights appends lights to the scene in order.
//
// Parameters:
//   - lights: the lights to add
//
// Returns:
//   - SceneBuilderOption: functional option to add the lights
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = append(s.lights, lights...)
	}
}
