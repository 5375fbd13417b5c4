package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIncludes = MapSourceProvider{
	"common.wgsl": `
struct Frame {
    viewMatrix: mat4x4f,
    tint: vec4f,
    colors: array<vec4f, 3>,
}

struct Node {
    modelMatrix: mat4x4f,
}

struct Out {
    @builtin(position) clip: vec4f,
    @location(0) coord: vec2f,
}

@group(0) @binding(0) var<uniform> frame: Frame;
`,
}

const testVertex = `#include <common>
struct In {
    @location(0) position: vec3f,
    @location(1) coord: vec2f,
}

@group(1) @binding(0) var<uniform> node: Node;

@vertex
fn vs_main(in: In) -> Out {
    var out: Out;
    out.clip = frame.viewMatrix * node.modelMatrix * vec4f(in.position, 1.0);
    out.coord = in.coord;
    return out;
}
`

const testFragment = `#include <common>
@group(0) @binding(1) var envMap: texture_2d<f32>;
@group(0) @binding(2) var envMapSampler: sampler;
@group(2) @binding(0) var albedoMap: texture_2d<f32>;
@group(2) @binding(1) var albedoMapSampler: sampler;
@group(2) @binding(2) var detailMap: texture_2d<f32>;
@group(2) @binding(3) var detailMapSampler: sampler;

@fragment
fn fs_main(in: Out) -> @location(0) vec4f {
    let env = textureSample(envMap, envMapSampler, in.coord);
    let detail = textureSample(detailMap, detailMapSampler, in.coord);
    return textureSample(albedoMap, albedoMapSampler, in.coord) * detail * env * frame.tint;
}
`

// countingBackend counts the state writes that reach the device.
type countingBackend struct {
	*backend.Headless
	uniforms, attributes, textures, programs int
}

func (c *countingBackend) UseProgram(id backend.ProgramID) {
	c.programs++
	c.Headless.UseProgram(id)
}

func (c *countingBackend) SetUniform(loc backend.UniformLocation, data []byte) {
	c.uniforms++
	c.Headless.SetUniform(loc, data)
}

func (c *countingBackend) SetVertexAttribute(location uint32, attr backend.VertexAttribute) {
	c.attributes++
	c.Headless.SetVertexAttribute(location, attr)
}

func (c *countingBackend) BindTexture(unit uint32, id backend.TextureID) {
	c.textures++
	c.Headless.BindTexture(unit, id)
}

type frameState struct {
	view   mgl32.Mat4
	tint   mgl32.Vec4
	colors *[]mgl32.Vec4
	env    resource.Texture
}

type nodeState struct {
	model mgl32.Mat4
}

type materialState struct {
	albedo, detail resource.Texture
}

type geometryState struct {
	positions, coords resource.Buffer
}

type fixture struct {
	dev      *countingBackend
	program  Program
	frame    Binding[frameState]
	node     Binding[nodeState]
	material Binding[materialState]
	geometry Binding[geometryState]
	indices  resource.Buffer
}

func newTexture(t *testing.T, dev backend.Backend, label string) resource.Texture {
	t.Helper()
	tex, err := resource.NewTexture(dev, backend.TextureDesc{
		Label: label, Type: backend.Texture2D, Width: 4, Height: 4, Format: backend.FormatRGBA8, Sampleable: true,
	})
	require.NoError(t, err)
	return tex
}

func newVertexBuffer(t *testing.T, dev backend.Backend, floats int) resource.Buffer {
	t.Helper()
	buf, err := resource.NewBuffer(dev, backend.BufferKindVertex, make([]byte, floats*4), backend.BufferUsageStatic)
	require.NoError(t, err)
	return buf
}

// newFixture declares the material scope before the target scope so texture unit offsets have to be
// recomputed after the fact.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	dev := &countingBackend{Headless: backend.NewHeadless(64, 64)}
	p, err := Declare(dev, testVertex, testFragment, nil, WithLabel("test"), WithIncludes(testIncludes))
	require.NoError(t, err)

	f := &fixture{
		dev:      dev,
		program:  p,
		frame:    DeclareBinding[frameState](p, ScopeTarget),
		node:     DeclareBinding[nodeState](p, ScopeNode),
		material: DeclareBinding[materialState](p, ScopeMaterial),
		geometry: DeclareBinding[geometryState](p, ScopeGeometry),
	}

	require.NoError(t, f.material.SetUniform("albedoMap", Texture(func(s materialState) resource.Texture { return s.albedo })))
	require.NoError(t, f.material.SetUniform("detailMap", Texture(func(s materialState) resource.Texture { return s.detail })))
	require.NoError(t, f.frame.SetUniform("viewMatrix", Mat4(func(s frameState) mgl32.Mat4 { return s.view })))
	require.NoError(t, f.frame.SetUniform("tint", Vec4(func(s frameState) mgl32.Vec4 { return s.tint })))
	require.NoError(t, f.frame.SetUniform("colors", Vec4Array(func(s frameState) []mgl32.Vec4 { return *s.colors })))
	require.NoError(t, f.frame.SetUniform("envMap", Texture(func(s frameState) resource.Texture { return s.env })))
	require.NoError(t, f.node.SetUniform("modelMatrix", Mat4(func(s nodeState) mgl32.Mat4 { return s.model })))
	require.NoError(t, f.geometry.SetAttribute("position", func(s geometryState) Attribute { return Attribute{Buffer: s.positions} }))
	require.NoError(t, f.geometry.SetAttribute("coord", func(s geometryState) Attribute { return Attribute{Buffer: s.coords} }))

	f.indices, err = resource.NewBuffer(dev, backend.BufferKindIndex, make([]byte, 6), backend.BufferUsageStatic)
	require.NoError(t, err)
	return f
}

func TestBindingTextureUnitsDoNotCollide(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.program.CheckBindings())

	env := newTexture(t, f.dev, "env")
	albedo := newTexture(t, f.dev, "albedo")
	detail := newTexture(t, f.dev, "detail")
	colors := []mgl32.Vec4{{1, 0, 0, 1}}

	require.NoError(t, f.frame.Apply(frameState{view: mgl32.Ident4(), tint: mgl32.Vec4{1, 1, 1, 1}, colors: &colors, env: env}))
	require.NoError(t, f.node.Apply(nodeState{model: mgl32.Ident4()}))
	require.NoError(t, f.material.Apply(materialState{albedo: albedo, detail: detail}))
	require.NoError(t, f.geometry.Apply(geometryState{positions: newVertexBuffer(t, f.dev, 9), coords: newVertexBuffer(t, f.dev, 6)}))
	f.dev.DrawIndexed(f.indices.ID(), backend.IndexUint16, 3)
	require.NoError(t, f.dev.Flush())

	draws := f.dev.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, env.ID(), draws[0].Textures[backend.BindingKey{Group: 0, Binding: 1}])
	assert.Equal(t, albedo.ID(), draws[0].Textures[backend.BindingKey{Group: 2, Binding: 0}])
	assert.Equal(t, detail.ID(), draws[0].Textures[backend.BindingKey{Group: 2, Binding: 2}])

	reg := f.program.registry()
	assert.Equal(t, uint32(0), reg.unitBase(ScopeTarget))
	assert.Equal(t, uint32(1), reg.unitBase(ScopeMaterial))
}

func TestBindingAppliesOnlyChangedScopes(t *testing.T) {
	f := newFixture(t)
	env := newTexture(t, f.dev, "env")
	colors := []mgl32.Vec4{{1, 0, 0, 1}}
	frame := frameState{view: mgl32.Ident4(), colors: &colors, env: env}

	require.NoError(t, f.frame.Apply(frame))
	require.NoError(t, f.node.Apply(nodeState{model: mgl32.Ident4()}))
	uniforms, textures := f.dev.uniforms, f.dev.textures

	require.NoError(t, f.frame.Apply(frame))
	require.NoError(t, f.node.Apply(nodeState{model: mgl32.Ident4()}))
	assert.Equal(t, uniforms, f.dev.uniforms)
	assert.Equal(t, textures, f.dev.textures)

	require.NoError(t, f.node.Apply(nodeState{model: mgl32.Translate3D(1, 0, 0)}))
	assert.Equal(t, uniforms+1, f.dev.uniforms)
	assert.Equal(t, textures, f.dev.textures)

	// state mutated behind a pointer is only picked up after Invalidate
	colors[0] = mgl32.Vec4{0, 1, 0, 1}
	require.NoError(t, f.frame.Apply(frame))
	assert.Equal(t, uniforms+1, f.dev.uniforms)
	f.frame.Invalidate()
	require.NoError(t, f.frame.Apply(frame))
	assert.Equal(t, uniforms+4, f.dev.uniforms)
}

func TestBindingProgramSwitchInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	other, err := Declare(f.dev, testVertex, testFragment, nil, WithLabel("other"), WithIncludes(testIncludes))
	require.NoError(t, err)

	node := nodeState{model: mgl32.Ident4()}
	require.NoError(t, f.node.Apply(node))
	programs, uniforms := f.dev.programs, f.dev.uniforms

	other.Use()
	require.NoError(t, f.node.Apply(node))
	assert.Equal(t, programs+2, f.dev.programs)
	assert.Equal(t, uniforms+1, f.dev.uniforms)

	require.NoError(t, f.node.Apply(node))
	assert.Equal(t, programs+2, f.dev.programs)
	assert.Equal(t, uniforms+1, f.dev.uniforms)
}

func TestBindingUniformArraysArePaddedAndTruncated(t *testing.T) {
	f := newFixture(t)
	env := newTexture(t, f.dev, "env")
	albedo := newTexture(t, f.dev, "albedo")
	positions, coords := newVertexBuffer(t, f.dev, 9), newVertexBuffer(t, f.dev, 6)
	u, ok := f.program.Uniform("colors")
	require.True(t, ok)

	for _, colors := range [][]mgl32.Vec4{
		{{1, 2, 3, 4}},
		{{1, 1, 1, 1}, {2, 2, 2, 2}, {3, 3, 3, 3}, {4, 4, 4, 4}},
	} {
		f.frame.Invalidate()
		require.NoError(t, f.frame.Apply(frameState{colors: &colors, env: env}))
		require.NoError(t, f.node.Apply(nodeState{}))
		require.NoError(t, f.material.Apply(materialState{albedo: albedo, detail: albedo}))
		require.NoError(t, f.geometry.Apply(geometryState{positions: positions, coords: coords}))
		f.dev.DrawIndexed(f.indices.ID(), backend.IndexUint16, 3)
	}
	require.NoError(t, f.dev.Flush())

	draws := f.dev.Draws()
	require.Len(t, draws, 2)

	padded := common.BytesToFloat32s(draws[0].Uniform(u.Group, u.Binding, u.Offset, u.Size))
	assert.Equal(t, []float32{1, 2, 3, 4, 0, 0, 0, 0, 0, 0, 0, 0}, padded)

	truncated := common.BytesToFloat32s(draws[1].Uniform(u.Group, u.Binding, u.Offset, u.Size))
	assert.Equal(t, []float32{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3}, truncated)
}

func TestBindingDeclarationErrors(t *testing.T) {
	f := newFixture(t)

	var unknown *UnknownBindingError
	err := f.geometry.SetAttribute("normal", func(geometryState) Attribute { return Attribute{} })
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "attribute", unknown.Kind)

	err = f.frame.SetUniform("ambientLightColor", Vec4(func(frameState) mgl32.Vec4 { return mgl32.Vec4{} }))
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "uniform", unknown.Kind)
	assert.Equal(t, "test", unknown.Program)

	node := DeclareBinding[nodeState](f.program, ScopeNode)
	err = node.SetUniform("modelMatrix", Mat4(func(s nodeState) mgl32.Mat4 { return s.model }))
	assert.ErrorContains(t, err, "already bound")
	assert.NotErrorAs(t, err, &unknown)

	err = f.geometry.SetAttribute("position", func(geometryState) Attribute { return Attribute{} })
	assert.ErrorContains(t, err, "already bound")

	other, err := Declare(f.dev, testVertex, testFragment, nil, WithIncludes(testIncludes))
	require.NoError(t, err)
	b := DeclareBinding[nodeState](other, ScopeNode)
	assert.ErrorContains(t, b.SetUniform("modelMatrix", Vec4(func(nodeState) mgl32.Vec4 { return mgl32.Vec4{} })), "mat4x4f")
	assert.ErrorContains(t, b.SetUniform("albedoMap", Mat4(func(nodeState) mgl32.Mat4 { return mgl32.Mat4{} })), "is a texture")

	assert.Panics(t, func() { DeclareBinding[nodeState](other, Scope(7)) })
}

func TestBindingMissingResources(t *testing.T) {
	f := newFixture(t)
	albedo := newTexture(t, f.dev, "albedo")

	var missing *MissingBindingError
	err := f.material.Apply(materialState{albedo: albedo})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "texture", missing.Kind)
	assert.Equal(t, "detailMap", missing.Name)

	err = f.geometry.Apply(geometryState{positions: newVertexBuffer(t, f.dev, 9)})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "attribute", missing.Kind)
	assert.Equal(t, "coord", missing.Name)

	// a failed apply is retried in full
	textures := f.dev.textures
	require.NoError(t, f.material.Apply(materialState{albedo: albedo, detail: albedo}))
	assert.Equal(t, textures+2, f.dev.textures)
}

func TestCheckBindingsReportsUndeclaredInputs(t *testing.T) {
	dev := backend.NewHeadless(64, 64)
	p, err := Declare(dev, testVertex, testFragment, nil, WithIncludes(testIncludes))
	require.NoError(t, err)

	var missing *MissingBindingError
	require.ErrorAs(t, p.CheckBindings(), &missing)
	assert.Equal(t, "position", missing.Name)

	g := DeclareBinding[geometryState](p, ScopeGeometry)
	require.NoError(t, g.SetAttribute("position", func(s geometryState) Attribute { return Attribute{Buffer: s.positions} }))
	require.NoError(t, g.SetAttribute("coord", func(s geometryState) Attribute { return Attribute{Buffer: s.coords} }))
	require.ErrorAs(t, p.CheckBindings(), &missing)
	assert.Equal(t, "envMap", missing.Name)
}
