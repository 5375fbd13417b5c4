// Package painter draws meshes through a program's scoped bindings: one target apply per pass, one
// node apply per node, one material and geometry apply and one indexed draw per primitive.
package painter

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/model"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// NodeState is the state the node scope reads: the composed world transform of one node and the
// matching normal matrix.
type NodeState struct {
	Model  mgl32.Mat4
	Normal mgl32.Mat3
}

// Subject is a mesh placed in the world by an object transform.
type Subject struct {
	Transform mgl32.Mat4
	Mesh      model.Mesh
}

// painter is the implementation of the Painter interface.
type painter[T comparable] struct {
	program  shader.Program
	target   shader.Binding[T]
	node     shader.Binding[NodeState]
	material shader.Binding[material.Material]
	geometry shader.Binding[model.Geometry]

	defaultMaterial material.Material
	neutral         material.NeutralTextures
	standard        bool

	world []mgl32.Mat4
}

// Painter walks meshes and issues their draws through one program.
type Painter[T comparable] interface {
	// Program returns the program the painter draws with.
	Program() shader.Program

	// Target returns the binding of the per-pass scope.
	Target() shader.Binding[T]

	// Node returns the binding of the per-node scope.
	Node() shader.Binding[NodeState]

	// Material returns the binding of the per-primitive material scope.
	Material() shader.Binding[material.Material]

	// Geometry returns the binding of the per-primitive geometry scope.
	Geometry() shader.Binding[model.Geometry]

	// Paint composes the node transforms of every subject and draws each primitive into rt. A primitive
	// whose draw lacks a buffer or texture is skipped; the remaining draws continue.
	//
	// Parameters:
	//   - rt: the render target to draw into
	//   - state: the per-pass state
	//   - subjects: the meshes to draw
	//
	// Returns:
	//   - int: the number of draws issued
	//   - error: the joined *shader.MissingBindingError values of the skipped draws, or nil
	Paint(rt resource.RenderTarget, state T, subjects []Subject) (int, error)

	// Invalidate forces every scope to be pushed again on the next Paint.
	Invalidate()
}

var _ Painter[int] = &painter[int]{}

// NewPainter declares the four binding scopes on a program. With WithStandardBindings the node, material
// and geometry scopes are bound to the engine's naming convention; the target scope is always left to
// the caller.
//
// Parameters:
//   - p: the linked program
//   - options: variadic list of PainterBuilderOption functions
//
// Returns:
//   - Painter[T]: the painter
//   - error: an error if a standard binding does not match the program's declaration
func NewPainter[T comparable](p shader.Program, options ...PainterBuilderOption) (Painter[T], error) {
	if p == nil {
		panic("painter: nil program")
	}
	var cfg config
	for _, opt := range options {
		opt(&cfg)
	}

	pt := &painter[T]{
		program:         p,
		target:          shader.DeclareBinding[T](p, shader.ScopeTarget),
		node:            shader.DeclareBinding[NodeState](p, shader.ScopeNode),
		material:        shader.DeclareBinding[material.Material](p, shader.ScopeMaterial),
		geometry:        shader.DeclareBinding[model.Geometry](p, shader.ScopeGeometry),
		defaultMaterial: cfg.defaultMaterial,
		neutral:         cfg.neutral,
		standard:        cfg.standard,
	}
	if pt.standard {
		if err := errors.Join(
			BindNode(pt.node),
			BindMaterial(pt.material, pt.neutral),
			BindGeometry(pt.geometry),
		); err != nil {
			return nil, err
		}
	}
	return pt, nil
}

func (p *painter[T]) Program() shader.Program {
	return p.program
}

func (p *painter[T]) Target() shader.Binding[T] {
	return p.target
}

func (p *painter[T]) Node() shader.Binding[NodeState] {
	return p.node
}

func (p *painter[T]) Material() shader.Binding[material.Material] {
	return p.material
}

func (p *painter[T]) Geometry() shader.Binding[model.Geometry] {
	return p.geometry
}

func (p *painter[T]) Paint(rt resource.RenderTarget, state T, subjects []Subject) (int, error) {
	if err := p.target.Apply(state); err != nil {
		return 0, err
	}

	var errs []error
	draws := 0
	for _, s := range subjects {
		if s.Mesh == nil {
			continue
		}
		p.world = s.Mesh.WorldTransforms(s.Transform, p.world)
		for i := range p.world {
			node := s.Mesh.Node(int32(i))
			if len(node.Primitives) == 0 {
				continue
			}
			world := p.world[i]
			if err := p.node.Apply(NodeState{Model: world, Normal: common.NormalMatrix(world)}); err != nil {
				errs = append(errs, err)
				continue
			}
			for _, prim := range node.Primitives {
				if prim.Geometry == nil {
					continue
				}
				if err := p.drawPrimitive(rt, prim); err != nil {
					errs = append(errs, err)
					continue
				}
				draws++
			}
		}
	}

	if len(errs) > 0 {
		common.Logger().Warn("painter: draws skipped", "program", p.program.Label(), "skipped", len(errs), "drawn", draws)
		return draws, errors.Join(errs...)
	}
	return draws, nil
}

func (p *painter[T]) drawPrimitive(rt resource.RenderTarget, prim model.Primitive) error {
	geo := prim.Geometry
	if geo.Indices() == nil {
		return &shader.MissingBindingError{Program: p.program.Label(), Kind: "geometry", Name: "indices"}
	}
	mat := prim.Material
	if mat == nil {
		mat = p.defaultMaterial
	}
	if err := p.material.Apply(mat); err != nil {
		return err
	}
	if err := p.geometry.Apply(geo); err != nil {
		return err
	}
	rt.DrawIndexed(geo.Indices(), geo.IndexFormat(), geo.IndexCount())
	return nil
}

func (p *painter[T]) Invalidate() {
	p.target.Invalidate()
	p.node.Invalidate()
	p.material.Invalidate()
	p.geometry.Invalidate()
}
