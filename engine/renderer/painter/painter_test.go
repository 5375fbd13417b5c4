package painter

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/model"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sceneState struct {
	projection, view mgl32.Mat4
	ambient          mgl32.Vec4
}

type fixture struct {
	dev     *backend.Headless
	program shader.Program
	painter Painter[sceneState]
	screen  resource.RenderTarget
	neutral material.NeutralTextures
}

func newFixture(t *testing.T, withNeutral bool, options ...PainterBuilderOption) *fixture {
	t.Helper()

	dev := backend.NewHeadless(32, 32)
	src := shader.NewEmbeddedSourceProvider()
	vs, err := src.Source("surface_vertex")
	require.NoError(t, err)
	fs, err := src.Source("forward_fragment")
	require.NoError(t, err)
	p, err := shader.Declare(dev, vs, fs, nil, shader.WithLabel("surface"))
	require.NoError(t, err)

	f := &fixture{dev: dev, program: p, screen: resource.NewScreenTarget(dev, 32, 32)}
	if withNeutral {
		f.neutral, err = material.NewNeutralTextures(dev)
		require.NoError(t, err)
	}

	f.painter, err = NewPainter[sceneState](p, append([]PainterBuilderOption{WithStandardBindings(f.neutral)}, options...)...)
	require.NoError(t, err)
	target := f.painter.Target()
	require.NoError(t, target.SetUniform("projectionMatrix", shader.Mat4(func(s sceneState) mgl32.Mat4 { return s.projection })))
	require.NoError(t, target.SetUniform("viewMatrix", shader.Mat4(func(s sceneState) mgl32.Mat4 { return s.view })))
	require.NoError(t, target.SetUniform("ambientLightColor", shader.Vec4(func(s sceneState) mgl32.Vec4 { return s.ambient })))
	return f
}

func (f *fixture) geometry(t *testing.T, data model.GeometryData) model.Geometry {
	t.Helper()
	g, err := model.NewGeometry(f.dev, data)
	require.NoError(t, err)
	return g
}

func (f *fixture) uniform(t *testing.T, draw backend.DrawRecord, name string) []float32 {
	t.Helper()
	u, ok := f.program.Uniform(name)
	require.True(t, ok, name)
	return common.BytesToFloat32s(draw.Uniform(u.Group, u.Binding, u.Offset, u.Size))
}

func identityScene() sceneState {
	return sceneState{projection: mgl32.Ident4(), view: mgl32.Ident4(), ambient: mgl32.Vec4{0.2, 0.2, 0.2, 1}}
}

func TestPaintComposesNodeTransforms(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.program.CheckBindings())

	cube := f.geometry(t, model.Cube(1))
	mesh := model.NewMesh()
	root := mesh.AddNode("root", -1, mgl32.Translate3D(1, 0, 0), model.Primitive{Geometry: cube})
	mesh.AddNode("child", root, mgl32.Translate3D(0, 2, 0), model.Primitive{Geometry: cube})

	object := mgl32.Translate3D(0, 0, -5)
	draws, err := f.painter.Paint(f.screen, identityScene(), []Subject{{Transform: object, Mesh: mesh}})
	require.NoError(t, err)
	assert.Equal(t, 2, draws)
	require.NoError(t, f.dev.Flush())

	records := f.dev.Draws()
	require.Len(t, records, 2)
	want := object.Mul4(mgl32.Translate3D(1, 0, 0)).Mul4(mgl32.Translate3D(0, 2, 0))
	assert.Equal(t, want[:], f.uniform(t, records[1], "modelMatrix"))
	assert.Equal(t, cube.IndexCount(), records[1].Count)
	assert.Equal(t, []float32{0.2, 0.2, 0.2, 1}, f.uniform(t, records[0], "ambientLightColor"))

	// a material without maps samples the neutral white albedo texture
	albedo, ok := f.program.Texture("albedoMap")
	require.True(t, ok)
	assert.Equal(t, f.neutral.Neutral(material.MapAlbedo).ID(), records[0].Textures[backend.BindingKey{Group: albedo.Group, Binding: albedo.Binding}])
}

func TestPaintSkipsDrawsMissingBindings(t *testing.T) {
	f := newFixture(t, true)

	noNormals := model.Cube(1)
	noNormals.Normals = nil
	noNormals.Tangents = nil
	broken := f.geometry(t, noNormals)
	good := f.geometry(t, model.Quad(1))

	mesh := model.NewMesh(model.WithPrimitive(broken, nil), model.WithPrimitive(good, nil))
	draws, err := f.painter.Paint(f.screen, identityScene(), []Subject{{Transform: mgl32.Ident4(), Mesh: mesh}})
	assert.Equal(t, 1, draws)

	var missing *shader.MissingBindingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "attribute", missing.Kind)
	assert.Equal(t, "normal", missing.Name)

	require.NoError(t, f.dev.Flush())
	assert.Len(t, f.dev.Draws(), 1)
}

func TestPaintWithoutNeutralTexturesFailsLoudly(t *testing.T) {
	f := newFixture(t, false)
	cube := f.geometry(t, model.Cube(1))
	mesh := model.NewMesh(model.WithPrimitive(cube, material.NewMaterial()))

	draws, err := f.painter.Paint(f.screen, identityScene(), []Subject{{Transform: mgl32.Ident4(), Mesh: mesh}})
	assert.Zero(t, draws)

	var missing *shader.MissingBindingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "texture", missing.Kind)
	assert.Equal(t, "albedoMap", missing.Name)
}

func TestPaintAppliesDefaultMaterial(t *testing.T) {
	fallback := material.NewMaterial(material.WithAlbedoFactor(mgl32.Vec4{0.5, 0.25, 1, 1}))
	f := newFixture(t, true, WithDefaultMaterial(fallback))

	cube := f.geometry(t, model.Cube(1))
	explicit := material.NewMaterial(material.WithAlbedoFactor(mgl32.Vec4{1, 0, 0, 1}))
	mesh := model.NewMesh(model.WithPrimitive(cube, nil), model.WithPrimitive(cube, explicit))

	draws, err := f.painter.Paint(f.screen, identityScene(), []Subject{{Transform: mgl32.Ident4(), Mesh: mesh}})
	require.NoError(t, err)
	assert.Equal(t, 2, draws)
	require.NoError(t, f.dev.Flush())

	records := f.dev.Draws()
	require.Len(t, records, 2)
	assert.Equal(t, []float32{0.5, 0.25, 1, 1}, f.uniform(t, records[0], "albedoFactor"))
	assert.Equal(t, []float32{1, 0, 0, 1}, f.uniform(t, records[1], "albedoFactor"))
}

func TestPaintSkipsEmptySubjectsAndPrimitivesWithoutGeometry(t *testing.T) {
	f := newFixture(t, true)
	mesh := model.NewMesh()
	mesh.AddNode("empty", -1, mgl32.Ident4(), model.Primitive{})
	mesh.AddNode("marker", -1, mgl32.Ident4(), model.Primitive{Material: material.NewMaterial()}, model.Primitive{Geometry: f.geometry(t, model.Quad(1))})

	draws, err := f.painter.Paint(f.screen, identityScene(), []Subject{{Mesh: nil}, {Transform: mgl32.Ident4(), Mesh: mesh}})
	require.NoError(t, err, "primitives without geometry are skipped, not failed")
	assert.Equal(t, 1, draws)
	require.NoError(t, f.dev.Flush())
	assert.Len(t, f.dev.Draws(), 1)
}
