package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shading"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeferred(t *testing.T, h *harness, cfg Config) *deferredRenderer {
	t.Helper()
	r, err := NewDeferredShadingRenderer(h.dev, h.output, cfg)
	require.NoError(t, err)
	t.Cleanup(r.Dispose)
	return r.(*deferredRenderer)
}

// passes returns the program labels of the recorded draws with consecutive repeats collapsed.
func passes(h *harness) []string {
	var out []string
	for _, d := range h.dev.Draws() {
		if len(out) == 0 || out[len(out)-1] != d.ProgramLabel {
			out = append(out, d.ProgramLabel)
		}
	}
	return out
}

func float32At(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

func TestDeferredAmbientOnlyScene(t *testing.T) {
	h := newHarness(t)
	r := newDeferred(t, h, DefaultConfig())
	r.Append(h.object())

	require.NoError(t, r.Render(newTestScene(0.3)))

	assert.Equal(t, []string{"renderer geometry", "renderer composition"}, passes(h))
	assert.Empty(t, h.draws("renderer shadow"))

	var lightClears int
	for _, c := range h.dev.Clears() {
		if c.Framebuffer != r.lightTarget.Framebuffer() {
			continue
		}
		require.NotNil(t, c.Color)
		assert.Equal(t, mgl32.Vec4{}, *c.Color)
		assert.Nil(t, c.Depth)
		lightClears++
	}
	assert.Equal(t, 1, lightClears)

	compose := h.draws("renderer composition")
	require.Len(t, compose, 1)
	assert.Equal(t, h.output.Framebuffer(), compose[0].Framebuffer)
	p := r.composition.Program()
	info, ok := p.Texture("lightBuffer")
	require.True(t, ok)
	assert.Equal(t, r.lightBuffer.ID(), compose[0].Textures[backend.BindingKey{Group: info.Group, Binding: info.Binding}])

	// the cleared light buffer leaves ambient times albedo
	got := shading.Compose(surfaceOf(t, h, p, compose[0]), mgl32.Vec3{0.3, 0.3, 0.3}, mgl32.Vec4{})
	assert.InDeltaSlice(t, []float32{0.3, 0.3, 0.3, 1}, got[:], 1e-6)
}

func TestDeferredPassOrder(t *testing.T) {
	h := newHarness(t)
	r := newDeferred(t, h, DefaultConfig())
	r.Append(h.object())
	r.Append(h.object())

	s := newTestScene(0.1,
		light.NewDirectional(light.WithCastsShadows(true)),
		light.NewDirectional(light.WithDirection(1, -1, 0)),
		light.NewPoint(light.WithPosition(0, 2, 0), light.WithRadius(3)),
		light.NewPoint(light.WithPosition(0, -2, 0), light.WithRadius(3)),
	)
	require.NoError(t, r.Render(s))

	assert.Equal(t, []string{
		"renderer shadow",
		"renderer geometry",
		"renderer directional light",
		"renderer point light",
		"renderer composition",
	}, passes(h))
	assert.Len(t, h.draws("renderer geometry"), 2)
	assert.Len(t, h.draws("renderer directional light"), 2)
	assert.Len(t, h.draws("renderer composition"), 2)

	points := h.draws("renderer point light")
	require.Len(t, points, 1, "every visible point light is drawn in one batch")
	assert.Equal(t, uint32(12), points[0].Count)
	assert.Equal(t, backend.IndexUint32, points[0].IndexFormat)

	directional := h.draws("renderer directional light")
	for i, d := range directional {
		assert.Equal(t, r.lightTarget.Framebuffer(), d.Framebuffer)
		assert.Equal(t, uint32(6), d.Count)

		p := r.directionalProgram
		gbuffer, ok := p.Texture("gbuffer")
		require.True(t, ok)
		assert.Equal(t, r.gbuffer.ColorAttachments()[0].ID(), d.Textures[backend.BindingKey{Group: gbuffer.Group, Binding: gbuffer.Binding}])

		layer, ok := p.Uniform("lightShadowLayer")
		require.True(t, ok)
		assert.Equal(t, int32(i), int32(binary.LittleEndian.Uint32(d.Uniform(layer.Group, layer.Binding, layer.Offset, layer.Size))))
	}

	// the light pass reads view-space positions, so the shadow matrix absorbs the inverse view
	var shadowMatrix mgl32.Mat4
	copy(shadowMatrix[:], uniformFloats(t, r.directionalProgram, directional[0], "lightShadowMatrix"))
	want := r.lights.DirectionalShadowMatrices[0].Mul4(s.Camera().ViewMatrix().Inv())
	assert.InDeltaSlice(t, want[:], shadowMatrix[:], 1e-4)
}

func TestDeferredPointBillboardExcludesDistantGeometry(t *testing.T) {
	h := newHarness(t)
	cfg := DefaultConfig()
	cfg.NoShadow = true
	r := newDeferred(t, h, cfg)
	r.Append(h.object())

	s := newTestScene(0.1, light.NewPoint(light.WithPosition(3, 0, 0), light.WithRadius(1)))
	require.NoError(t, r.Render(s))

	points := h.draws("renderer point light")
	require.Len(t, points, 1)
	assert.Equal(t, uint32(6), points[0].Count)

	stream, ok := h.dev.BufferData(r.pointStream.ID())
	require.True(t, ok)
	require.GreaterOrEqual(t, len(stream), 4*pointVertexStride)
	for v := 0; v < 4; v++ {
		base := v * pointVertexStride
		assert.Equal(t, quadCorners[v], mgl32.Vec2{float32At(stream, base), float32At(stream, base+4)})
		assert.Equal(t, mgl32.Vec3{3, 0, 0}, mgl32.Vec3{float32At(stream, base+8), float32At(stream, base+12), float32At(stream, base+16)})
		assert.Equal(t, float32(1), float32At(stream, base+32))
	}

	cam := s.Camera()
	bounds := shading.BillboardBounds(cam.ViewMatrix(), cam.ProjectionMatrix(), mgl32.Vec3{3, 0, 0}, 1)
	require.False(t, bounds.FullScreen)

	viewProjection := cam.ViewProjectionMatrix()
	for _, x := range []float32{-0.5, 0.5} {
		for _, y := range []float32{-0.5, 0.5} {
			for _, z := range []float32{-0.5, 0.5} {
				clip := viewProjection.Mul4x1(mgl32.Vec4{x, y, z, 1})
				assert.False(t, bounds.Contains(mgl32.Vec2{clip[0] / clip[3], clip[1] / clip[3]}), "cube corner (%g, %g, %g)", x, y, z)
			}
		}
	}

	// the nearest cube point is farther from the light than its radius
	assert.Equal(t, float32(0), shading.PointAttenuation(2.5, 1))
}

func TestDeferredCullsPointLightsOutsideTheFrustum(t *testing.T) {
	h := newHarness(t)
	cfg := DefaultConfig()
	cfg.NoShadow = true
	r := newDeferred(t, h, cfg)
	r.Append(h.object())

	s := newTestScene(0.1, light.NewPoint(light.WithPosition(0, 0, 10), light.WithRadius(1)))
	require.NoError(t, r.Render(s))

	assert.Empty(t, h.draws("renderer point light"))
	assert.Equal(t, 1, r.lights.PointCount, "culling happens after truncation")
}

func TestDeferredResizeResizesAttachments(t *testing.T) {
	h := newHarness(t)
	r := newDeferred(t, h, DefaultConfig())
	r.Append(h.object())
	s := newTestScene(0.2, light.NewDirectional())
	require.NoError(t, r.Render(s))

	color := r.gbuffer.ColorAttachments()[0]
	depth := r.gbuffer.DepthAttachment()
	lightBuffer := r.lightBuffer

	require.NoError(t, r.Resize(100, 50))
	assert.Same(t, color, r.gbuffer.ColorAttachments()[0])
	assert.Same(t, depth, r.gbuffer.DepthAttachment())
	assert.Same(t, lightBuffer, r.lightTarget.ColorAttachments()[0])
	for _, tex := range []interface{ Width() uint32 }{color, depth, lightBuffer} {
		assert.Equal(t, uint32(100), tex.Width())
	}
	assert.Equal(t, uint32(50), color.Height())

	h.dev.ResetCommands()
	require.NoError(t, r.Render(s))

	compose := h.draws("renderer composition")
	require.Len(t, compose, 1)
	info, ok := r.composition.Program().Texture("lightBuffer")
	require.True(t, ok)
	assert.Equal(t, r.lightBuffer.ID(), compose[0].Textures[backend.BindingKey{Group: info.Group, Binding: info.Binding}])

	directional := h.draws("renderer directional light")
	require.Len(t, directional, 1)
	assert.Equal(t, []float32{100, 50}, uniformFloats(t, r.directionalProgram, directional[0], "viewportSize"))
}

func TestDeferredWithoutLightSlots(t *testing.T) {
	h := newHarness(t)
	cfg := DefaultConfig()
	cfg.MaxDirectionalLights = 0
	cfg.MaxPointLights = 0
	r := newDeferred(t, h, cfg)
	r.Append(h.object())

	s := newTestScene(0.2, light.NewDirectional(), light.NewPoint())
	require.NoError(t, r.Render(s))
	assert.Equal(t, []string{"renderer geometry", "renderer composition"}, passes(h))
	assert.Equal(t, 2, r.lights.Dropped)
}
