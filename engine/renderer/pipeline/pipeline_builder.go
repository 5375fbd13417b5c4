package pipeline

// PipelineBuilderOption is a functional option applied by NewPipeline. The defaults are an opaque,
// depth-tested, back-face-culled surface pass.
type PipelineBuilderOption func(*pipeline)

// WithDepthTestEnabled toggles the less-than depth comparison. Full-screen light passes turn it off.
//
// Parameters:
//   - enabled: whether fragments are depth tested
//
// Returns:
//   - PipelineBuilderOption: a function that sets depth testing
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled toggles writes to the depth attachment.
//
// Parameters:
//   - enabled: whether passing fragments write their depth
//
// Returns:
//   - PipelineBuilderOption: a function that sets depth writes
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthBias offsets rasterized depth. The shadow pass pushes casters away from the light with it.
//
// Parameters:
//   - bias: the constant offset in depth units
//   - slopeScale: the offset scaled by the polygon's depth slope
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithBlendMode selects how fragments combine with the color attachments.
//
// Parameters:
//   - mode: BlendNone, BlendAdditive or BlendAlpha
//
// Returns:
//   - PipelineBuilderOption: a function that sets blending
func WithBlendMode(mode BlendMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendMode = mode
	}
}

// WithCullMode selects the discarded faces.
//
// Parameters:
//   - mode: CullNone, CullFront or CullBack
//
// Returns:
//   - PipelineBuilderOption: a function that sets culling
func WithCullMode(mode CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithFrontFace selects the front-facing winding.
//
// Parameters:
//   - face: FrontFaceCCW or FrontFaceCW
//
// Returns:
//   - PipelineBuilderOption: a function that sets the winding
func WithFrontFace(face FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = face
	}
}

// WithColorWriteEnabled toggles writes to the color attachments. Depth-only passes turn it off.
//
// Parameters:
//   - enabled: whether colors are written
//
// Returns:
//   - PipelineBuilderOption: a function that sets color writes
func WithColorWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.colorWriteEnabled = enabled
	}
}
