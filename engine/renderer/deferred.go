package renderer

import (
	"errors"
	"fmt"

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

// pointVertexStride is the size of one streamed point-light billboard vertex: corner, world
// position, color and radius.
const pointVertexStride = 36

// quadCorners are the corners of a full-screen quad in clip space.
var quadCorners = []mgl32.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

type geometryFrame struct {
	scene sceneUniforms
}

type compositionFrame struct {
	scene       sceneUniforms
	lightBuffer resource.Texture
}

// lightFrame is the per-pass state of both light accumulation programs.
type lightFrame struct {
	projection        mgl32.Mat4
	inverseProjection mgl32.Mat4
	view              mgl32.Mat4
	viewport          mgl32.Vec2
	shadowBias        float32
	gbuffer           resource.Texture
	depth             resource.Texture
	shadowMap         resource.Texture
}

// directionalLight is one directional light of the light pass. shadowMatrix maps view space into the
// light's shadow texture space.
type directionalLight struct {
	color        mgl32.Vec4
	direction    mgl32.Vec4
	shadowMatrix mgl32.Mat4
	layer        int32
}

// deferredRenderer renders surfaces into a G-buffer, accumulates light from it and composes the
// result with a second surface pass.
type deferredRenderer struct {
	*core

	gbuffer     resource.RenderTarget
	lightTarget resource.RenderTarget
	lightBuffer resource.Texture

	geometry    painter.Painter[geometryFrame]
	composition painter.Painter[compositionFrame]

	directionalProgram  shader.Program
	directionalFrame    shader.Binding[lightFrame]
	directionalLight    shader.Binding[directionalLight]
	directionalGeometry shader.Binding[resource.Buffer]

	pointProgram  shader.Program
	pointFrame    shader.Binding[lightFrame]
	pointGeometry shader.Binding[resource.Buffer]

	quad         resource.Buffer
	quadIndices  resource.Buffer
	pointStream  resource.Buffer
	pointIndices resource.Buffer

	geometryPipeline    pipeline.Pipeline
	lightPipeline       pipeline.Pipeline
	compositionPipeline pipeline.Pipeline

	vertexScratch []byte
	indexScratch  []uint32
}

var _ Renderer = &deferredRenderer{}

// NewDeferredShadingRenderer creates the G-buffer and light buffer at the output size and links the
// geometry, light accumulation and composition programs. Each frame runs the passes strictly in the
// order geometry, light, composition.
//
// Parameters:
//   - dev: the backend to render with
//   - output: the render target the composition pass draws into
//   - cfg: the feature configuration
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the deferred renderer
//   - error: a wrapped *shader.CompileError, *shader.LinkError or *resource.IncompleteFramebufferError
func NewDeferredShadingRenderer(dev backend.Backend, output resource.RenderTarget, cfg Config, options ...RendererBuilderOption) (Renderer, error) {
	c, err := newCore(dev, output, cfg, options)
	if err != nil {
		return nil, err
	}

	r := &deferredRenderer{
		core:             c,
		geometryPipeline: pipeline.NewPipeline(),
		lightPipeline: pipeline.NewPipeline(
			pipeline.WithDepthTestEnabled(false),
			pipeline.WithDepthWriteEnabled(false),
			pipeline.WithBlendMode(pipeline.BlendAdditive),
			pipeline.WithCullMode(pipeline.CullNone),
		),
		compositionPipeline: pipeline.NewPipeline(),
	}
	if err := errors.Join(r.createTargets(), r.createBuffers()); err != nil {
		r.Dispose()
		return nil, err
	}
	if err := r.link(); err != nil {
		r.Dispose()
		return nil, err
	}

	common.Logger().Info("deferred renderer created",
		"label", c.opts.label,
		"lightModel", cfg.LightModel.String(),
		"maxDirectional", cfg.MaxDirectionalLights,
		"maxPoint", cfg.MaxPointLights,
		"shadows", cfg.shadows(),
	)
	return r, nil
}

func (r *deferredRenderer) createTargets() error {
	w, h := r.output.Width(), r.output.Height()

	r.gbuffer = r.track(resource.NewRenderTarget(r.dev, r.opts.label+" gbuffer", w, h))
	if _, err := r.gbuffer.SetupColorTexture(backend.FormatRGBA8); err != nil {
		return fmt.Errorf("renderer: gbuffer: %w", err)
	}
	if _, err := r.gbuffer.SetupDepthTexture(backend.FormatDepth32Float); err != nil {
		return fmt.Errorf("renderer: gbuffer: %w", err)
	}

	r.lightTarget = r.track(resource.NewRenderTarget(r.dev, r.opts.label+" light buffer", w, h))
	tex, err := r.lightTarget.SetupColorTexture(backend.FormatRGBA8)
	if err != nil {
		return fmt.Errorf("renderer: light buffer: %w", err)
	}
	r.lightBuffer = tex
	return nil
}

func (r *deferredRenderer) createBuffers() error {
	var corners []byte
	for _, c := range quadCorners {
		corners = common.AppendVec2(corners, c)
	}

	var err error
	var errs []error
	r.quad, err = resource.NewBuffer(r.dev, backend.BufferKindVertex, corners, backend.BufferUsageStatic,
		resource.WithBufferLabel(r.opts.label+" quad"))
	errs = append(errs, err)
	r.quadIndices, err = resource.NewBuffer(r.dev, backend.BufferKindIndex, common.Uint16sToBytes([]uint16{0, 1, 2, 0, 2, 3}), backend.BufferUsageStatic,
		resource.WithBufferLabel(r.opts.label+" quad indices"))
	errs = append(errs, err)

	lights := uint64(max(r.cfg.MaxPointLights, 1))
	r.pointStream, err = resource.NewBuffer(r.dev, backend.BufferKindVertex, nil, backend.BufferUsageDynamic,
		resource.WithBufferLabel(r.opts.label+" point lights"), resource.WithCapacity(lights*4*pointVertexStride))
	errs = append(errs, err)
	r.pointIndices, err = resource.NewBuffer(r.dev, backend.BufferKindIndex, nil, backend.BufferUsageDynamic,
		resource.WithBufferLabel(r.opts.label+" point light indices"), resource.WithCapacity(lights*6*4))
	errs = append(errs, err)
	return errors.Join(errs...)
}

func (r *deferredRenderer) link() error {
	surface := r.cfg.surfaceDirectives()

	geometry, err := r.declare("geometry", "surface_vertex", "geometry_fragment", surface)
	if err != nil {
		return err
	}
	if r.geometry, err = surfacePainter[geometryFrame](r.core, geometry); err != nil {
		return err
	}
	if err := bindScene(r.geometry.Target(), func(f geometryFrame) sceneUniforms { return f.scene }); err != nil {
		return err
	}

	composition, err := r.declare("composition", "surface_vertex", "composition_fragment", surface)
	if err != nil {
		return err
	}
	if r.composition, err = surfacePainter[compositionFrame](r.core, composition); err != nil {
		return err
	}
	if err := errors.Join(
		bindScene(r.composition.Target(), func(f compositionFrame) sceneUniforms { return f.scene }),
		r.composition.Target().SetUniform("lightBuffer", shader.Texture(func(f compositionFrame) resource.Texture { return f.lightBuffer })),
	); err != nil {
		return err
	}

	if err := r.linkDirectional(); err != nil {
		return err
	}
	if err := r.linkPoint(); err != nil {
		return err
	}
	return errors.Join(
		geometry.CheckBindings(),
		composition.CheckBindings(),
		r.directionalProgram.CheckBindings(),
		r.pointProgram.CheckBindings(),
	)
}

// bindLightFrame binds the uniforms and textures both light programs share.
func bindLightFrame(b shader.Binding[lightFrame]) error {
	return errors.Join(
		b.SetUniform("projectionMatrix", shader.Mat4(func(f lightFrame) mgl32.Mat4 { return f.projection })),
		b.SetUniform("inverseProjectionMatrix", shader.Mat4(func(f lightFrame) mgl32.Mat4 { return f.inverseProjection })),
		b.SetUniform("viewMatrix", shader.Mat4(func(f lightFrame) mgl32.Mat4 { return f.view })),
		b.SetUniform("viewportSize", shader.Vec2(func(f lightFrame) mgl32.Vec2 { return f.viewport })),
		b.SetUniform("shadowBias", shader.Float(func(f lightFrame) float32 { return f.shadowBias })),
		b.SetUniform("gbuffer", shader.Texture(func(f lightFrame) resource.Texture { return f.gbuffer })),
		b.SetUniform("gbufferDepth", shader.Texture(func(f lightFrame) resource.Texture { return f.depth })),
		shader.IgnoreUnknown(b.SetUniform("shadowMap", shader.Texture(func(f lightFrame) resource.Texture { return f.shadowMap }))),
	)
}

func (r *deferredRenderer) linkDirectional() error {
	p, err := r.declare("directional light", "light_vertex", "light_fragment", r.cfg.lightDirectives(light.LightTypeDirectional))
	if err != nil {
		return err
	}
	r.directionalProgram = p
	r.directionalFrame = shader.DeclareBinding[lightFrame](p, shader.ScopeTarget)
	r.directionalLight = shader.DeclareBinding[directionalLight](p, shader.ScopeNode)
	r.directionalGeometry = shader.DeclareBinding[resource.Buffer](p, shader.ScopeGeometry)

	l := r.directionalLight
	return errors.Join(
		bindLightFrame(r.directionalFrame),
		l.SetUniform("lightColor", shader.Vec4(func(d directionalLight) mgl32.Vec4 { return d.color })),
		l.SetUniform("lightDirection", shader.Vec4(func(d directionalLight) mgl32.Vec4 { return d.direction })),
		shader.IgnoreUnknown(l.SetUniform("lightShadowMatrix", shader.Mat4(func(d directionalLight) mgl32.Mat4 { return d.shadowMatrix }))),
		shader.IgnoreUnknown(l.SetUniform("lightShadowLayer", shader.Int(func(d directionalLight) int32 { return d.layer }))),
		r.directionalGeometry.SetAttribute("corner", func(b resource.Buffer) shader.Attribute {
			return shader.Attribute{Buffer: b}
		}),
	)
}

func (r *deferredRenderer) linkPoint() error {
	p, err := r.declare("point light", "light_vertex", "light_fragment", r.cfg.lightDirectives(light.LightTypePoint))
	if err != nil {
		return err
	}
	r.pointProgram = p
	r.pointFrame = shader.DeclareBinding[lightFrame](p, shader.ScopeTarget)
	r.pointGeometry = shader.DeclareBinding[resource.Buffer](p, shader.ScopeGeometry)

	errs := []error{bindLightFrame(r.pointFrame)}
	for _, field := range []struct {
		name   string
		offset uint64
	}{
		{"corner", 0},
		{"position", 8},
		{"color", 20},
		{"radius", 32},
	} {
		errs = append(errs, r.pointGeometry.SetAttribute(field.name, func(b resource.Buffer) shader.Attribute {
			return shader.Attribute{Buffer: b, Stride: pointVertexStride, Offset: field.offset}
		}))
	}
	return errors.Join(errs...)
}

func (r *deferredRenderer) Render(s scene.Scene) error {
	if err := r.prepare(s); err != nil {
		return err
	}

	var errs []error
	if err := r.renderShadows(); err != nil {
		errs = append(errs, err)
	}

	cam := s.Camera()
	su := sceneUniformsOf(s)
	depth := float32(1)

	// geometry
	empty := mgl32.Vec4{0.5, 0.5, 0, 0}
	r.gbuffer.Clear(&empty, &depth)
	r.dev.SetPipeline(r.geometryPipeline)
	draws, err := r.geometry.Paint(r.gbuffer, geometryFrame{scene: su}, r.subjects)
	if err != nil {
		errs = append(errs, fmt.Errorf("geometry pass: %w", err))
	}

	// light
	black := mgl32.Vec4{}
	r.lightTarget.Clear(&black, nil)
	r.dev.SetPipeline(r.lightPipeline)
	frame := lightFrame{
		projection:        su.projection,
		inverseProjection: cam.InverseProjectionMatrix(),
		view:              su.view,
		viewport:          mgl32.Vec2{float32(r.lightTarget.Width()), float32(r.lightTarget.Height())},
		shadowBias:        r.cfg.ShadowBias,
		gbuffer:           r.gbuffer.ColorAttachments()[0],
		depth:             r.gbuffer.DepthAttachment(),
	}
	if r.shadow != nil {
		frame.shadowMap = r.shadow.texture()
	}
	directional, err := r.drawDirectional(frame)
	if err != nil {
		errs = append(errs, err)
	}
	points, err := r.drawPoints(frame, cam.Frustum())
	if err != nil {
		errs = append(errs, err)
	}

	// composition
	clearColor := r.opts.clearColor
	r.output.Clear(&clearColor, &depth)
	r.dev.SetPipeline(r.compositionPipeline)
	if _, err := r.composition.Paint(r.output, compositionFrame{scene: su, lightBuffer: r.lightBuffer}, r.subjects); err != nil {
		errs = append(errs, fmt.Errorf("composition pass: %w", err))
	}

	common.Logger().Debug("deferred frame", "draws", draws, "directional", directional, "point", points, "dropped", r.lights.Dropped)
	return r.endFrame(errs)
}

// drawDirectional draws one full-screen quad per directional light.
func (r *deferredRenderer) drawDirectional(frame lightFrame) (int, error) {
	state := r.lights
	if state.DirectionalCount == 0 {
		return 0, nil
	}

	inverseView := frame.view.Inv()
	for i := 0; i < state.DirectionalCount; i++ {
		d := directionalLight{
			color:        state.DirectionalColors[i],
			direction:    state.DirectionalDirections[i],
			shadowMatrix: state.DirectionalShadowMatrices[i].Mul4(inverseView),
			layer:        int32(i),
		}
		if err := errors.Join(
			r.directionalFrame.Apply(frame),
			r.directionalLight.Apply(d),
			r.directionalGeometry.Apply(r.quad),
		); err != nil {
			return i, fmt.Errorf("directional light %d: %w", i, err)
		}
		r.lightTarget.DrawIndexed(r.quadIndices, backend.IndexUint16, 6)
	}
	return state.DirectionalCount, nil
}

// drawPoints streams one camera-facing billboard per point light whose sphere intersects the view
// frustum and draws them all at once.
func (r *deferredRenderer) drawPoints(frame lightFrame, frustum common.Frustum) (int, error) {
	state := r.lights
	r.vertexScratch = r.vertexScratch[:0]
	r.indexScratch = r.indexScratch[:0]

	count := 0
	for i := 0; i < state.PointCount; i++ {
		slot := state.Point[i]
		if !frustum.ContainsSphere(slot.Position, slot.Radius) {
			continue
		}
		base := uint32(count * 4)
		for _, corner := range quadCorners {
			r.vertexScratch = common.AppendVec2(r.vertexScratch, corner)
			r.vertexScratch = common.AppendVec3(r.vertexScratch, slot.Position)
			r.vertexScratch = common.AppendVec3(r.vertexScratch, slot.Radiance)
			r.vertexScratch = common.AppendFloat32(r.vertexScratch, slot.Radius)
		}
		r.indexScratch = append(r.indexScratch, base, base+1, base+2, base, base+2, base+3)
		count++
	}
	if count == 0 {
		return 0, nil
	}

	if err := errors.Join(
		r.pointStream.Update(0, r.vertexScratch),
		r.pointIndices.Update(0, common.Uint32sToBytes(r.indexScratch)),
	); err != nil {
		return 0, fmt.Errorf("point lights: %w", err)
	}

	r.pointGeometry.Invalidate()
	if err := errors.Join(r.pointFrame.Apply(frame), r.pointGeometry.Apply(r.pointStream)); err != nil {
		return 0, fmt.Errorf("point lights: %w", err)
	}
	r.lightTarget.DrawIndexed(r.pointIndices, backend.IndexUint32, uint32(len(r.indexScratch)))
	return count, nil
}

func (r *deferredRenderer) Resize(width, height uint32) error {
	if err := r.resize(width, height); err != nil {
		return err
	}
	r.geometry.Invalidate()
	r.composition.Invalidate()
	r.directionalFrame.Invalidate()
	r.pointFrame.Invalidate()
	return nil
}

func (r *deferredRenderer) Dispose() {
	for _, b := range []resource.Buffer{r.quad, r.quadIndices, r.pointStream, r.pointIndices} {
		if b != nil {
			b.Release()
		}
	}
	r.quad, r.quadIndices, r.pointStream, r.pointIndices = nil, nil, nil, nil
	r.release()
}
