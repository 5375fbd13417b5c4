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
	"github.com/go-gl/mathgl/mgl32"
)

// shadowState is the per-light state of the shadow pass.
type shadowState struct {
	viewProjection mgl32.Mat4
}

// shadowPass renders one depth layer per shadow-casting directional light slot.
type shadowPass struct {
	maps     resource.Texture
	targets  []resource.RenderTarget
	painter  painter.Painter[shadowState]
	pipeline pipeline.Pipeline
	casters  []int
}

func newShadowPass(c *core) (*shadowPass, error) {
	size := c.cfg.ShadowMapSize
	layers := uint32(c.cfg.MaxDirectionalLights)

	maps, err := resource.NewTexture(c.dev, backend.TextureDesc{
		Label:      c.opts.label + " shadow maps",
		Type:       backend.Texture2DArray,
		Width:      size,
		Height:     size,
		Layers:     layers,
		Format:     backend.FormatDepth32Float,
		Renderable: true,
		Sampleable: true,
		Sampler: backend.SamplerDesc{
			MinFilter: backend.FilterLinear,
			MagFilter: backend.FilterLinear,
			AddressU:  backend.AddressClampToEdge,
			AddressV:  backend.AddressClampToEdge,
			Compare:   backend.CompareLessEqual,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: failed to create shadow maps: %w", err)
	}

	s := &shadowPass{
		maps: maps,
		pipeline: pipeline.NewPipeline(
			pipeline.WithCullMode(pipeline.CullFront),
			pipeline.WithDepthBias(2, 2),
			pipeline.WithColorWriteEnabled(false),
		),
	}
	for i := range layers {
		rt := resource.NewRenderTarget(c.dev, fmt.Sprintf("%s shadow %d", c.opts.label, i), size, size)
		s.targets = append(s.targets, rt)
		if err := rt.AttachDepth(maps, i); err != nil {
			s.release()
			return nil, fmt.Errorf("renderer: shadow layer %d: %w", i, err)
		}
	}

	p, err := c.declare("shadow", "shadow_vertex", "shadow_fragment", nil)
	if err != nil {
		s.release()
		return nil, err
	}
	s.painter, err = painter.NewPainter[shadowState](p)
	if err == nil {
		err = errors.Join(
			s.painter.Target().SetUniform("lightViewProjection", shader.Mat4(func(st shadowState) mgl32.Mat4 { return st.viewProjection })),
			painter.BindNode(s.painter.Node()),
			painter.BindGeometry(s.painter.Geometry()),
		)
	}
	if err != nil {
		s.release()
		return nil, fmt.Errorf("renderer: shadow bindings: %w", err)
	}
	return s, nil
}

// render clears the layer of every shadow-casting slot and draws the casters into it.
func (s *shadowPass) render(state *light.State, subjects []painter.Subject) error {
	s.casters = state.ShadowCasters(s.casters)
	if len(s.casters) == 0 {
		return nil
	}

	var errs []error
	depth := float32(1)
	for _, slot := range s.casters {
		rt := s.targets[slot]
		rt.Clear(nil, &depth)
		s.painter.Program().Device().SetPipeline(s.pipeline)
		if _, err := s.painter.Paint(rt, shadowState{viewProjection: state.Directional[slot].ViewProjection}, subjects); err != nil {
			errs = append(errs, fmt.Errorf("shadow layer %d: %w", slot, err))
		}
	}
	common.Logger().Debug("shadow pass", "layers", len(s.casters), "casters", len(subjects))
	return errors.Join(errs...)
}

// texture returns the layered shadow map, one layer per directional slot.
func (s *shadowPass) texture() resource.Texture {
	return s.maps
}

func (s *shadowPass) release() {
	for _, rt := range s.targets {
		rt.Release()
	}
	s.targets = nil
	if s.maps != nil {
		s.maps.Release()
		s.maps = nil
	}
}
