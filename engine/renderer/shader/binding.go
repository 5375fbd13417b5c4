package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
)

// Scope groups bindings by how often their values change. Texture units are laid out in scope order.
type Scope int

const (
	// ScopeTarget holds per-pass values such as camera matrices, lights and shadow maps.
	ScopeTarget Scope = iota
	// ScopeNode holds per-draw transforms.
	ScopeNode
	// ScopeMaterial holds surface parameters and maps.
	ScopeMaterial
	// ScopeGeometry holds vertex buffers.
	ScopeGeometry

	scopeCount
)

func (s Scope) String() string {
	switch s {
	case ScopeTarget:
		return "target"
	case ScopeNode:
		return "node"
	case ScopeMaterial:
		return "material"
	case ScopeGeometry:
		return "geometry"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// Attribute is the vertex buffer region feeding one vertex input. A zero Stride means tightly packed.
type Attribute struct {
	Buffer resource.Buffer
	Stride uint64
	Offset uint64
}

type attributeBinding[T comparable] struct {
	info AttributeInfo
	get  func(T) Attribute
}

type uniformBinding[T comparable] struct {
	info UniformInfo
	acc  Accessor[T]
}

type textureBinding[T comparable] struct {
	info TextureInfo
	// slot is the unit index within the scope.
	slot uint32
	acc  Accessor[T]
}

// binding is the implementation of the Binding interface.
type binding[T comparable] struct {
	prog  Program
	reg   *bindingRegistry
	scope Scope

	attributes []attributeBinding[T]
	uniforms   []uniformBinding[T]
	textures   []textureBinding[T]

	applied bool
	epoch   uint64
	last    T
	scratch []byte
}

// Binding maps the values of one host state type onto the attributes and uniforms of a program.
// Apply skips all device work when the state equals the last applied state and nothing has touched the
// program's device state since.
type Binding[T comparable] interface {
	// Scope returns the scope the binding was declared in.
	Scope() Scope

	// SetAttribute binds a vertex input to a buffer region derived from the state.
	//
	// Parameters:
	//   - name: the vertex input name
	//   - get: returns the buffer region for a state
	//
	// Returns:
	//   - error: *UnknownBindingError if the program has no such input, or an error if the input is already bound
	SetAttribute(name string, get func(T) Attribute) error

	// SetUniform binds a uniform or texture to a value derived from the state.
	//
	// Parameters:
	//   - name: the uniform member or texture name
	//   - acc: the accessor producing the value
	//
	// Returns:
	//   - error: *UnknownBindingError if the program has no such uniform, or an error if the accessor does
	//     not match the uniform's type or the uniform is already bound
	SetUniform(name string, acc Accessor[T]) error

	// Apply makes the program current and pushes the values derived from state to the device.
	//
	// Parameters:
	//   - state: the host state
	//
	// Returns:
	//   - error: *MissingBindingError if a required buffer or texture is nil
	Apply(state T) error

	// Invalidate forces the next Apply to push every value. Callers whose state carries pointers to
	// data they mutate in place call it after each mutation.
	Invalidate()
}

var _ Binding[int] = &binding[int]{}

// DeclareBinding creates a Binding on a program for one scope.
//
// Parameters:
//   - p: the program
//   - scope: the scope the values belong to
//
// Returns:
//   - Binding[T]: the binding
func DeclareBinding[T comparable](p Program, scope Scope) Binding[T] {
	if scope < 0 || scope >= scopeCount {
		panic(fmt.Sprintf("shader: invalid binding scope %d", scope))
	}
	return &binding[T]{prog: p, reg: p.registry(), scope: scope}
}

func (b *binding[T]) Scope() Scope {
	return b.scope
}

func (b *binding[T]) SetAttribute(name string, get func(T) Attribute) error {
	info, ok := b.prog.Attribute(name)
	if !ok {
		return &UnknownBindingError{Program: b.prog.Label(), Kind: "attribute", Name: name}
	}
	if b.reg.attributes[name] {
		return fmt.Errorf("shader %q: attribute %q is already bound", b.prog.Label(), name)
	}
	b.reg.attributes[name] = true
	b.attributes = append(b.attributes, attributeBinding[T]{info: info, get: get})
	b.applied = false
	return nil
}

func (b *binding[T]) SetUniform(name string, acc Accessor[T]) error {
	if info, ok := b.prog.Texture(name); ok {
		if acc.texture == nil {
			return fmt.Errorf("shader %q: %q is a texture but the accessor produces %s", b.prog.Label(), name, acc.kind)
		}
		if b.reg.textures[name] {
			return fmt.Errorf("shader %q: texture %q is already bound", b.prog.Label(), name)
		}
		b.reg.textures[name] = true
		b.textures = append(b.textures, textureBinding[T]{info: info, slot: b.reg.units[b.scope], acc: acc})
		b.reg.units[b.scope]++
		// every later scope's units shifted
		b.reg.epoch++
		return nil
	}

	info, ok := b.prog.Uniform(name)
	if !ok {
		return &UnknownBindingError{Program: b.prog.Label(), Kind: "uniform", Name: name}
	}
	if acc.value == nil || !acc.accepts(info.Type) {
		return fmt.Errorf("shader %q: uniform %q is %s but the accessor produces %s", b.prog.Label(), name, info.Type, acc.kind)
	}
	if b.reg.uniforms[name] {
		return fmt.Errorf("shader %q: uniform %q is already bound", b.prog.Label(), name)
	}
	b.reg.uniforms[name] = true
	b.uniforms = append(b.uniforms, uniformBinding[T]{info: info, acc: acc})
	b.applied = false
	return nil
}

func (b *binding[T]) Apply(state T) error {
	b.prog.Use()
	if b.applied && b.epoch == b.reg.epoch && b.last == state {
		return nil
	}

	dev := b.prog.Device()
	for _, a := range b.attributes {
		attr := a.get(state)
		if attr.Buffer == nil {
			b.applied = false
			return &MissingBindingError{Program: b.prog.Label(), Kind: "attribute", Name: a.info.Name}
		}
		stride := attr.Stride
		if stride == 0 {
			stride = a.info.Format.Size()
		}
		dev.SetVertexAttribute(a.info.Location, backend.VertexAttribute{
			Buffer: attr.Buffer.ID(),
			Format: a.info.Format,
			Stride: stride,
			Offset: attr.Offset,
		})
	}

	for _, u := range b.uniforms {
		b.scratch = u.acc.value(b.scratch[:0], state)
		data := b.scratch
		switch size := int(u.info.Size); {
		case len(data) > size:
			data = data[:size]
		case len(data) < size:
			data = append(data, make([]byte, size-len(data))...)
			b.scratch = data
		}
		dev.SetUniform(backend.UniformLocation{Group: u.info.Group, Binding: u.info.Binding, Offset: u.info.Offset}, data)
	}

	base := b.reg.unitBase(b.scope)
	for _, t := range b.textures {
		tex := t.acc.texture(state)
		if tex == nil {
			b.applied = false
			return &MissingBindingError{Program: b.prog.Label(), Kind: "texture", Name: t.info.Name}
		}
		unit := base + t.slot
		dev.SetTextureUnit(backend.BindingKey{Group: t.info.Group, Binding: t.info.Binding}, unit)
		dev.BindTexture(unit, tex.ID())
	}

	b.applied = true
	b.epoch = b.reg.epoch
	b.last = state
	return nil
}

func (b *binding[T]) Invalidate() {
	b.applied = false
}
