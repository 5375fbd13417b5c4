package pipeline

import "fmt"

// BlendMode selects how fragment colors combine with the attachment contents.
type BlendMode int

const (
	// BlendNone overwrites the attachment with the fragment color.
	BlendNone BlendMode = iota

	// BlendAdditive adds the fragment color to the attachment (src + dst), used for light accumulation.
	BlendAdditive

	// BlendAlpha blends by source alpha (src*a + dst*(1-a)).
	BlendAlpha
)

// CullMode selects which triangle faces are discarded before rasterization.
type CullMode int

const (
	// CullNone keeps both faces.
	CullNone CullMode = iota

	// CullFront discards front-facing triangles.
	CullFront

	// CullBack discards back-facing triangles.
	CullBack
)

// FrontFace selects the winding order that counts as front-facing.
type FrontFace int

const (
	// FrontFaceCCW treats counter-clockwise triangles as front-facing.
	FrontFaceCCW FrontFace = iota

	// FrontFaceCW treats clockwise triangles as front-facing.
	FrontFaceCW
)

// pipeline is the implementation of the Pipeline interface.
// It is immutable after construction so it can be shared between renderers and used as a cache key.
type pipeline struct {
	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	blendMode           BlendMode
	cullMode            CullMode
	frontFace           FrontFace
	colorWriteEnabled   bool

	key string
}

// Pipeline describes the fixed-function render state applied to every draw issued while it is bound:
// depth testing and writing, depth bias, blending, face culling and color writes.
// It carries no GPU objects; backends translate it into their native pipeline state and cache the result by Key.
type Pipeline interface {
	// Key returns a stable string that identifies this render state, used by backends for pipeline caching.
	//
	// Returns:
	//   - string: the unique key for this render state
	Key() string

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthBias returns the constant depth bias configured for this pipeline.
	//
	// Returns:
	//   - int32: the depth bias value for this pipeline
	DepthBias() int32

	// DepthBiasSlopeScale returns the depth bias slope scale configured for this pipeline.
	//
	// Returns:
	//   - float32: the depth bias slope scale for this pipeline
	DepthBiasSlopeScale() float32

	// BlendMode returns the color blend mode configured for this pipeline.
	//
	// Returns:
	//   - BlendMode: the blend mode for this pipeline
	BlendMode() BlendMode

	// CullMode returns the face culling mode configured for this pipeline.
	//
	// Returns:
	//   - CullMode: the cull mode for this pipeline
	CullMode() CullMode

	// FrontFace returns the winding order treated as front-facing.
	//
	// Returns:
	//   - FrontFace: the front face winding for this pipeline
	FrontFace() FrontFace

	// ColorWriteEnabled returns whether fragment colors are written to the color attachments.
	//
	// Returns:
	//   - bool: true if color writes are enabled, false otherwise
	ColorWriteEnabled() bool
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a new Pipeline with the provided options.
// Defaults are depth test and depth write on, no blending, back-face culling, counter-clockwise front faces
// and color writes enabled.
//
// Parameters:
//   - options: variadic list of PipelineBuilderOption functions to configure the Pipeline
//
// Returns:
//   - Pipeline: the newly created Pipeline instance
func NewPipeline(options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendMode:         BlendNone,
		cullMode:          CullBack,
		frontFace:         FrontFaceCCW,
		colorWriteEnabled: true,
	}

	for _, opt := range options {
		opt(p)
	}

	p.key = fmt.Sprintf("dt%t|dw%t|db%d|ds%g|bl%d|cu%d|ff%d|cw%t",
		p.depthTestEnabled, p.depthWriteEnabled, p.depthBias, p.depthBiasSlopeScale,
		p.blendMode, p.cullMode, p.frontFace, p.colorWriteEnabled)

	return p
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendMode() BlendMode {
	return p.blendMode
}

func (p *pipeline) CullMode() CullMode {
	return p.cullMode
}

func (p *pipeline) FrontFace() FrontFace {
	return p.frontFace
}

func (p *pipeline) ColorWriteEnabled() bool {
	return p.colorWriteEnabled
}
