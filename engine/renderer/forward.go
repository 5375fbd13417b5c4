package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/painter"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shade/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// forwardFrame is the per-pass state of the forward lit pass. The light arrays are refilled in place
// every frame, so the target binding is invalidated before each pass.
type forwardFrame struct {
	scene      sceneUniforms
	lights     *light.State
	shadowBias float32
	shadowMap  resource.Texture
}

// forwardRenderer shades every fragment against every light in one lit pass after the shadow pass.
type forwardRenderer struct {
	*core
	lit      painter.Painter[forwardFrame]
	pipeline pipeline.Pipeline
}

var _ Renderer = &forwardRenderer{}

// NewForwardLightingRenderer links the forward lit program for the configured light model and
// maxima. Each frame renders the shadow maps of the first shadow-casting directional lights, then
// draws every object once with all lights applied.
//
// Parameters:
//   - dev: the backend to render with
//   - output: the render target frames are drawn into
//   - cfg: the feature configuration
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the forward renderer
//   - error: a wrapped *shader.CompileError or *shader.LinkError, or a configuration error
func NewForwardLightingRenderer(dev backend.Backend, output resource.RenderTarget, cfg Config, options ...RendererBuilderOption) (Renderer, error) {
	c, err := newCore(dev, output, cfg, options)
	if err != nil {
		return nil, err
	}

	r := &forwardRenderer{core: c, pipeline: pipeline.NewPipeline()}
	if err := r.link(); err != nil {
		c.release()
		return nil, err
	}

	common.Logger().Info("forward renderer created",
		"label", c.opts.label,
		"lightModel", cfg.LightModel.String(),
		"maxDirectional", cfg.MaxDirectionalLights,
		"maxPoint", cfg.MaxPointLights,
		"shadows", cfg.shadows(),
	)
	return r, nil
}

func (r *forwardRenderer) link() error {
	p, err := r.declare("forward", "surface_vertex", "forward_fragment", r.cfg.forwardDirectives())
	if err != nil {
		return err
	}
	if r.lit, err = surfacePainter[forwardFrame](r.core, p); err != nil {
		return err
	}

	b := r.lit.Target()
	if err := errors.Join(
		bindScene(b, func(f forwardFrame) sceneUniforms { return f.scene }),
		shader.IgnoreUnknown(b.SetUniform("directionalLightColor", shader.Vec4Array(func(f forwardFrame) []mgl32.Vec4 {
			return f.lights.DirectionalColors
		}))),
		shader.IgnoreUnknown(b.SetUniform("directionalLightDirection", shader.Vec4Array(func(f forwardFrame) []mgl32.Vec4 {
			return f.lights.DirectionalDirections
		}))),
		shader.IgnoreUnknown(b.SetUniform("directionalLightShadowMatrix", shader.Mat4Array(func(f forwardFrame) []mgl32.Mat4 {
			return f.lights.DirectionalShadowMatrices
		}))),
		shader.IgnoreUnknown(b.SetUniform("shadowBias", shader.Float(func(f forwardFrame) float32 { return f.shadowBias }))),
		shader.IgnoreUnknown(b.SetUniform("pointLightColor", shader.Vec4Array(func(f forwardFrame) []mgl32.Vec4 {
			return f.lights.PointColors
		}))),
		shader.IgnoreUnknown(b.SetUniform("pointLightPosition", shader.Vec4Array(func(f forwardFrame) []mgl32.Vec4 {
			return f.lights.PointPositions
		}))),
		shader.IgnoreUnknown(b.SetUniform("shadowMap", shader.Texture(func(f forwardFrame) resource.Texture { return f.shadowMap }))),
	); err != nil {
		return err
	}
	return p.CheckBindings()
}

func (r *forwardRenderer) Render(s scene.Scene) error {
	if err := r.prepare(s); err != nil {
		return err
	}

	var errs []error
	if err := r.renderShadows(); err != nil {
		errs = append(errs, err)
	}

	frame := forwardFrame{scene: sceneUniformsOf(s), lights: r.lights, shadowBias: r.cfg.ShadowBias}
	if r.shadow != nil {
		frame.shadowMap = r.shadow.texture()
	}

	clearColor, depth := r.opts.clearColor, float32(1)
	r.output.Clear(&clearColor, &depth)
	r.dev.SetPipeline(r.pipeline)
	r.lit.Target().Invalidate()
	draws, err := r.lit.Paint(r.output, frame, r.subjects)
	if err != nil {
		errs = append(errs, err)
	}

	common.Logger().Debug("forward frame",
		"draws", draws,
		"directional", r.lights.DirectionalCount,
		"point", r.lights.PointCount,
		"dropped", r.lights.Dropped,
	)
	return r.endFrame(errs)
}

func (r *forwardRenderer) Resize(width, height uint32) error {
	if err := r.resize(width, height); err != nil {
		return err
	}
	r.lit.Invalidate()
	return nil
}

func (r *forwardRenderer) Dispose() {
	r.release()
}
