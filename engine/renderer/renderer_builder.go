package renderer

import (
	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// options collects the RendererBuilderOption values before the renderer links its programs.
type options struct {
	label           string
	sources         shader.SourceProvider
	validate        bool
	clearColor      mgl32.Vec4
	defaultMaterial material.Material
}

func defaultOptions() options {
	return options{
		label:      "renderer",
		sources:    shader.NewEmbeddedSourceProvider(),
		clearColor: mgl32.Vec4{0, 0, 0, 1},
	}
}

// RendererBuilderOption is a functional option applied to a renderer during construction.
type RendererBuilderOption func(*options)

// WithLabel sets the label prefixed to program names in errors and logs. An empty label keeps the
// default.
//
// Parameters:
//   - label: the renderer label
//
// Returns:
//   - RendererBuilderOption: a function that sets the label
func WithLabel(label string) RendererBuilderOption {
	return func(o *options) {
		o.label = common.Coalesce(label, o.label)
	}
}

// WithSourceProvider replaces the shader sources the renderer links. Overlay it on
// shader.NewEmbeddedSourceProvider to override individual files.
//
// Parameters:
//   - sources: the shader source provider
//
// Returns:
//   - RendererBuilderOption: a function that sets the source provider
func WithSourceProvider(sources shader.SourceProvider) RendererBuilderOption {
	return func(o *options) {
		if sources != nil {
			o.sources = sources
		}
	}
}

// WithValidation validates every pre-processed stage with naga before it reaches the device.
//
// Parameters:
//   - enabled: whether to validate
//
// Returns:
//   - RendererBuilderOption: a function that sets validation
func WithValidation(enabled bool) RendererBuilderOption {
	return func(o *options) {
		o.validate = enabled
	}
}

// WithClearColor sets the color the output is cleared to before each frame.
//
// Parameters:
//   - color: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that sets the clear color
func WithClearColor(color mgl32.Vec4) RendererBuilderOption {
	return func(o *options) {
		o.clearColor = color
	}
}

// WithDefaultMaterial sets the material drawn on primitives that carry none. Without it such
// primitives use the material defaults with neutral maps.
//
// Parameters:
//   - m: the fallback material
//
// Returns:
//   - RendererBuilderOption: a function that sets the default material
func WithDefaultMaterial(m material.Material) RendererBuilderOption {
	return func(o *options) {
		o.defaultMaterial = m
	}
}
