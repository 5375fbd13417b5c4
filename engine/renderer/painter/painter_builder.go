package painter

import "github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"

// config collects the PainterBuilderOption values before the painter is built.
type config struct {
	defaultMaterial material.Material
	neutral         material.NeutralTextures
	standard        bool
}

// PainterBuilderOption is a functional option used to configure a Painter during construction.
type PainterBuilderOption func(*config)

// WithDefaultMaterial sets the material applied to primitives that carry none.
//
// Parameters:
//   - m: the fallback material
//
// Returns:
//   - PainterBuilderOption: a function that sets the default material
func WithDefaultMaterial(m material.Material) PainterBuilderOption {
	return func(c *config) {
		c.defaultMaterial = m
	}
}

// WithStandardBindings binds the node, material and geometry scopes by the engine's naming convention.
// Material maps a material does not carry resolve through neutral; with a nil neutral set they fail
// the draw with a *shader.MissingBindingError.
//
// Parameters:
//   - neutral: the fallback textures, may be nil
//
// Returns:
//   - PainterBuilderOption: a function that enables the standard bindings
func WithStandardBindings(neutral material.NeutralTextures) PainterBuilderOption {
	return func(c *config) {
		c.standard = true
		c.neutral = neutral
	}
}
