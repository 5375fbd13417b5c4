// Package renderer draws scenes with multi-pass lighting: a forward renderer with per-light shadow
// maps and a deferred renderer with a spheremap G-buffer and additive light accumulation.
package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/game_object"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/painter"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shade/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Renderer draws a scene into its output render target once per Render call.
type Renderer interface {
	// Append adds an object to the draw set.
	//
	// Parameters:
	//   - obj: the object to draw
	//
	// Returns:
	//   - Handle: the handle that moves or removes the object
	Append(obj game_object.GameObject) Handle

	// Render draws one frame of the scene. Draws that lack a binding are skipped and reported; the rest
	// of the frame is still drawn.
	//
	// Parameters:
	//   - s: the scene providing the camera, ambient color and lights
	//
	// Returns:
	//   - error: the joined draw and device errors of the frame, or nil
	Render(s scene.Scene) error

	// Resize resizes the output and every internal render target, preserving attachment order and identity.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: an error if a target cannot be resized
	Resize(width, height uint32) error

	// Output returns the render target frames are drawn into.
	Output() resource.RenderTarget

	// Config returns the configuration the renderer was linked with.
	Config() Config

	// Dispose releases the programs and render targets the renderer created. Appended objects and the
	// output target are not released.
	Dispose()
}

// Handle is the renderer's reference to one appended object.
type Handle interface {
	// Object returns the appended object.
	Object() game_object.GameObject

	// Transform returns the world transform the object is drawn with.
	Transform() mgl32.Mat4

	// SetTransform overrides the world transform the object is drawn with.
	//
	// Parameters:
	//   - m: the world transform
	SetTransform(m mgl32.Mat4)

	// Remove takes the object out of the draw set. Removing twice is a no-op.
	Remove()
}

// handle is the implementation of the Handle interface.
type handle struct {
	set *objectSet
	obj game_object.GameObject
}

var _ Handle = &handle{}

func (h *handle) Object() game_object.GameObject {
	return h.obj
}

func (h *handle) Transform() mgl32.Mat4 {
	return h.obj.Transform()
}

func (h *handle) SetTransform(m mgl32.Mat4) {
	h.obj.SetTransform(m)
}

func (h *handle) Remove() {
	h.set.remove(h)
}

// objectSet is the renderer's draw set in append order.
type objectSet struct {
	mu      sync.Mutex
	handles []*handle
}

func (s *objectSet) add(obj game_object.GameObject) *handle {
	if obj == nil {
		panic("renderer: nil object")
	}
	h := &handle{set: s, obj: obj}
	s.mu.Lock()
	s.handles = append(s.handles, h)
	s.mu.Unlock()
	return h
}

func (s *objectSet) remove(h *handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, other := range s.handles {
		if other == h {
			s.handles = append(s.handles[:i], s.handles[i+1:]...)
			return
		}
	}
}

// subjects appends the enabled objects that have a mesh. With shadowOnly set, objects that do not
// cast shadows are left out.
func (s *objectSet) subjects(dst []painter.Subject, shadowOnly bool) []painter.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()

	dst = dst[:0]
	for _, h := range s.handles {
		if !h.obj.Enabled() || (shadowOnly && !h.obj.CastsShadow()) {
			continue
		}
		mesh := h.obj.Mesh()
		if mesh == nil {
			continue
		}
		dst = append(dst, painter.Subject{Transform: h.obj.Transform(), Mesh: mesh})
	}
	return dst
}

// sceneUniforms is the camera and ambient state shared by every surface program.
type sceneUniforms struct {
	projection mgl32.Mat4
	view       mgl32.Mat4
	ambient    mgl32.Vec4
}

func sceneUniformsOf(s scene.Scene) sceneUniforms {
	cam := s.Camera()
	return sceneUniforms{
		projection: cam.ProjectionMatrix(),
		view:       cam.ViewMatrix(),
		ambient:    s.Ambient().Vec4(1),
	}
}

// bindScene binds the scene block of a surface program to the sceneUniforms of a pass state.
func bindScene[T comparable](b shader.Binding[T], get func(T) sceneUniforms) error {
	return errors.Join(
		b.SetUniform("projectionMatrix", shader.Mat4(func(s T) mgl32.Mat4 { return get(s).projection })),
		b.SetUniform("viewMatrix", shader.Mat4(func(s T) mgl32.Mat4 { return get(s).view })),
		shader.IgnoreUnknown(b.SetUniform("ambientLightColor", shader.Vec4(func(s T) mgl32.Vec4 { return get(s).ambient }))),
	)
}

// core holds the state both renderers share.
type core struct {
	dev     backend.Backend
	output  resource.RenderTarget
	cfg     Config
	opts    options
	objects objectSet
	neutral material.NeutralTextures
	lights  *light.State
	shadow  *shadowPass

	programs []shader.Program
	targets  []resource.RenderTarget

	subjects       []painter.Subject
	shadowSubjects []painter.Subject
	disposed       bool
}

func newCore(dev backend.Backend, output resource.RenderTarget, cfg Config, options []RendererBuilderOption) (*core, error) {
	if dev == nil {
		panic("renderer: nil backend")
	}
	if output == nil {
		panic("renderer: nil output target")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &core{
		dev:    dev,
		output: output,
		cfg:    cfg,
		opts:   defaultOptions(),
		lights: light.NewState(cfg.MaxDirectionalLights, cfg.MaxPointLights),
	}
	for _, opt := range options {
		opt(&c.opts)
	}

	neutral, err := material.NewNeutralTextures(dev)
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to create neutral textures: %w", err)
	}
	c.neutral = neutral

	if cfg.shadows() {
		c.shadow, err = newShadowPass(c)
		if err != nil {
			c.release()
			return nil, err
		}
	}
	return c, nil
}

// declare loads, links and tracks one program.
func (c *core) declare(name, vertex, fragment string, directives shader.Directives) (shader.Program, error) {
	vs, err := c.opts.sources.Source(vertex)
	if err != nil {
		return nil, fmt.Errorf("renderer: %s: %w", name, err)
	}
	fs, err := c.opts.sources.Source(fragment)
	if err != nil {
		return nil, fmt.Errorf("renderer: %s: %w", name, err)
	}
	p, err := shader.Declare(c.dev, vs, fs, directives,
		shader.WithLabel(c.opts.label+" "+name),
		shader.WithIncludes(c.opts.sources),
		shader.WithValidation(c.opts.validate),
	)
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to link %s program: %w", name, err)
	}
	c.programs = append(c.programs, p)
	return p, nil
}

// surfacePainter creates a painter with the standard node, material and geometry bindings.
func surfacePainter[T comparable](c *core, p shader.Program) (painter.Painter[T], error) {
	options := []painter.PainterBuilderOption{painter.WithStandardBindings(c.neutral)}
	if c.opts.defaultMaterial != nil {
		options = append(options, painter.WithDefaultMaterial(c.opts.defaultMaterial))
	}
	pt, err := painter.NewPainter[T](p, options...)
	if err != nil {
		return nil, fmt.Errorf("renderer: %s: %w", p.Label(), err)
	}
	return pt, nil
}

func (c *core) track(rt resource.RenderTarget) resource.RenderTarget {
	c.targets = append(c.targets, rt)
	return rt
}

// prepare refills the light state and the draw sets for one frame.
func (c *core) prepare(s scene.Scene) error {
	if c.disposed {
		return errors.New("renderer: render after dispose")
	}
	if s == nil || s.Camera() == nil {
		return errors.New("renderer: scene without a camera")
	}

	c.lights.Fill(s.Lights(), s.Camera().ViewMatrix(), c.cfg.shadowBox(), c.shadow != nil)
	if c.lights.Dropped > 0 {
		common.Logger().Debug("lights truncated", "renderer", c.opts.label, "dropped", c.lights.Dropped)
	}

	c.subjects = c.objects.subjects(c.subjects, false)
	if c.shadow != nil {
		c.shadowSubjects = c.objects.subjects(c.shadowSubjects, true)
	}
	return nil
}

// renderShadows draws the shadow maps of the prepared frame.
func (c *core) renderShadows() error {
	if c.shadow == nil {
		return nil
	}
	return c.shadow.render(c.lights, c.shadowSubjects)
}

// endFrame joins the frame's draw errors with the device's deferred errors.
func (c *core) endFrame(errs []error) error {
	if err := c.dev.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("renderer: device: %w", err))
	}
	return errors.Join(errs...)
}

func (c *core) resize(width, height uint32) error {
	if err := c.output.Resize(width, height); err != nil {
		return err
	}
	for _, rt := range c.targets {
		if err := rt.Resize(width, height); err != nil {
			return err
		}
	}
	common.Logger().Info("renderer resized", "renderer", c.opts.label, "width", width, "height", height)
	return nil
}

func (c *core) release() {
	if c.disposed {
		return
	}
	c.disposed = true
	if c.shadow != nil {
		c.shadow.release()
	}
	for _, rt := range c.targets {
		rt.Release()
	}
	for _, p := range c.programs {
		p.Release()
	}
	if c.neutral != nil {
		c.neutral.Release()
	}
	c.targets, c.programs = nil, nil
}

func (c *core) Append(obj game_object.GameObject) Handle {
	return c.objects.add(obj)
}

func (c *core) Output() resource.RenderTarget {
	return c.output
}

func (c *core) Config() Config {
	return c.cfg
}
