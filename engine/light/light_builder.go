package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption configures a light before NewLight returns it.
type LightBuilderOption func(*lightImpl)

// WithPosition places a point light. Directional lights ignore it.
//
// Parameters:
//   - x, y, z: the world-space position
//
// Returns:
//   - LightBuilderOption: a function that sets the position
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = mgl32.Vec3{x, y, z}
	}
}

// WithDirection aims a directional light. The vector is the direction light travels in, not the
// direction towards the source, and is stored normalized.
//
// Parameters:
//   - x, y, z: the travel direction
//
// Returns:
//   - LightBuilderOption: a function that sets the direction
func WithDirection(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.direction = normalize(mgl32.Vec3{x, y, z})
	}
}

// WithColor sets the linear RGB color. Components above 1 are allowed.
//
// Parameters:
//   - r, g, b: the color components
//
// Returns:
//   - LightBuilderOption: a function that sets the color
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = mgl32.Vec3{r, g, b}
	}
}

// WithIntensity scales the color into the radiance the shaders receive. Negative values are
// treated as 0.
//
// Parameters:
//   - intensity: the scale
//
// Returns:
//   - LightBuilderOption: a function that sets the intensity
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = max(intensity, 0)
	}
}

// WithRadius sets the distance at which a point light's attenuation reaches zero. It also sizes the
// light's billboard and culling sphere in the deferred light pass.
//
// Parameters:
//   - radius: the influence radius, negative values are treated as 0
//
// Returns:
//   - LightBuilderOption: a function that sets the radius
func WithRadius(radius float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.radius = max(radius, 0)
	}
}

// WithEnabled creates the light switched on or off. Disabled lights keep their slot in the scene
// but never reach a light State.
//
// Parameters:
//   - enabled: the initial switch state
//
// Returns:
//   - LightBuilderOption: a function that sets the switch state
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}

// WithCastsShadows requests a shadow map layer for a directional light.
//
// Parameters:
//   - castsShadows: whether the light casts shadows
//
// Returns:
//   - LightBuilderOption: a function that sets shadow casting
func WithCastsShadows(castsShadows bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castsShadows = castsShadows
	}
}

// normalize leaves a zero vector unchanged.
func normalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return v
	}
	return v.Normalize()
}
