package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/game_object"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shading"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newForward(t *testing.T, h *harness, cfg Config) *forwardRenderer {
	t.Helper()
	r, err := NewForwardLightingRenderer(h.dev, h.output, cfg)
	require.NoError(t, err)
	t.Cleanup(r.Dispose)
	return r.(*forwardRenderer)
}

func TestForwardAmbientOnlyCube(t *testing.T) {
	h := newHarness(t)
	cfg := DefaultConfig()
	cfg.NoShadow = true
	r := newForward(t, h, cfg)
	r.Append(h.object())

	s := newTestScene(0.2, light.NewDirectional(light.WithIntensity(0)))
	require.NoError(t, r.Render(s))

	assert.Empty(t, h.draws("renderer shadow"))
	lit := h.draws("renderer forward")
	require.Len(t, lit, 1)
	assert.Equal(t, h.output.Framebuffer(), lit[0].Framebuffer)

	p := r.lit.Program()
	assert.InDeltaSlice(t, []float32{0.2, 0.2, 0.2}, uniformFloats(t, p, lit[0], "ambientLightColor")[:3], 1e-6)
	assert.Equal(t, []float32{1, 1, 1, 1}, uniformFloats(t, p, lit[0], "albedoFactor"))
	colors := uniformFloats(t, p, lit[0], "directionalLightColor")
	want := make([]float32, 4*cfg.MaxDirectionalLights)
	want[3] = 1 // filled slots carry w=1, unused slots stay zero
	assert.Equal(t, want, colors)

	surface := surfaceOf(t, h, p, lit[0])
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, surface.Albedo, "the neutral albedo map is white")

	// the zero-radiance light contributes nothing, so the front face is exactly ambient
	incidents := []shading.Incident{{L: mgl32.Vec3{0, 1, 0}, Color: mgl32.Vec3{colors[0], colors[1], colors[2]}, Scale: 1}}
	got := shading.Forward(cfg.LightModel, surface, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0.2, 0.2, 0.2}, incidents)
	assert.InDeltaSlice(t, []float32{0.2, 0.2, 0.2, 1}, got[:], 1e-6)
}

func TestForwardTruncatesLightsInInputOrder(t *testing.T) {
	h := newHarness(t)
	cfg := DefaultConfig()
	cfg.NoShadow = true
	cfg.MaxDirectionalLights = 2
	cfg.MaxPointLights = 2
	r := newForward(t, h, cfg)
	r.Append(h.object())

	s := newTestScene(0.1,
		light.NewDirectional(light.WithColor(1, 1, 1), light.WithEnabled(false)),
		light.NewDirectional(light.WithColor(1, 0, 0)),
		light.NewPoint(light.WithColor(0.5, 0, 0), light.WithPosition(1, 0, 0)),
		light.NewDirectional(light.WithColor(0, 1, 0)),
		light.NewDirectional(light.WithColor(0, 0, 1)),
		light.NewPoint(light.WithColor(0, 0.5, 0), light.WithPosition(2, 0, 0)),
		light.NewPoint(light.WithColor(0, 0, 0.5), light.WithPosition(3, 0, 0)),
	)
	require.NoError(t, r.Render(s))

	lit := h.draws("renderer forward")
	require.Len(t, lit, 1)
	p := r.lit.Program()
	assert.Equal(t, []float32{1, 0, 0, 1, 0, 1, 0, 1}, uniformFloats(t, p, lit[0], "directionalLightColor"))
	assert.Equal(t, []float32{0.5, 0, 0, 1, 0, 0.5, 0, 1}, uniformFloats(t, p, lit[0], "pointLightColor"))
	assert.Equal(t, 2, r.lights.Dropped, "the disabled light is skipped, not dropped")

	view := s.Camera().ViewMatrix()
	positions := uniformFloats(t, p, lit[0], "pointLightPosition")
	want := view.Mul4x1(mgl32.Vec4{2, 0, 0, 1})
	assert.InDeltaSlice(t, []float32{want[0], want[1], want[2]}, positions[4:7], 1e-5)
	assert.Equal(t, float32(10), positions[7], "default radius")
}

func TestForwardShadowRoundTrip(t *testing.T) {
	h := newHarness(t)
	cfg := DefaultConfig()
	r := newForward(t, h, cfg)

	r.Append(h.object(
		game_object.WithPosition(0, -1, 0),
		game_object.WithScale(10, 0.2, 10),
		game_object.WithCastsShadow(false),
	))
	r.Append(h.object(game_object.WithPosition(0, 1, 0)))

	direction := mgl32.Vec3{0, -1, 0}
	s := newTestScene(0.1, light.NewDirectional(light.WithDirection(0, -1, 0), light.WithCastsShadows(true)))
	require.NoError(t, r.Render(s))

	// only the occluder renders into the first layer
	shadows := h.draws("renderer shadow")
	require.Len(t, shadows, 1)
	assert.Equal(t, r.shadow.targets[0].Framebuffer(), shadows[0].Framebuffer)
	viewProjection := light.DefaultShadowBox().ViewProjection(direction)
	assert.InDeltaSlice(t, viewProjection[:], uniformFloats(t, r.shadow.painter.Program(), shadows[0], "lightViewProjection"), 1e-5)

	lit := h.draws("renderer forward")
	require.Len(t, lit, 2)
	p := r.lit.Program()
	info, ok := p.Texture("shadowMap")
	require.True(t, ok)
	assert.Equal(t, r.shadow.maps.ID(), lit[0].Textures[backend.BindingKey{Group: info.Group, Binding: info.Binding}])
	assert.Equal(t, float32(1), uniformFloats(t, p, lit[0], "directionalLightDirection")[3], "the light is flagged as shadowed")

	var shadowMatrix mgl32.Mat4
	copy(shadowMatrix[:], uniformFloats(t, p, lit[0], "directionalLightShadowMatrix")[:16])
	wantShadow := common.NDCToTexture().Mul4(viewProjection)
	assert.InDeltaSlice(t, wantShadow[:], shadowMatrix[:], 1e-5)

	// Front faces are culled in the shadow pass, so the occluder stores the depth of its bottom face
	// across its footprint.
	lo := shadowMatrix.Mul4x1(mgl32.Vec4{-0.5, 0.5, -0.5, 1})
	hi := shadowMatrix.Mul4x1(mgl32.Vec4{0.5, 0.5, 0.5, 1})
	minU, maxU := min(lo[0], hi[0]), max(lo[0], hi[0])
	minV, maxV := min(lo[1], hi[1]), max(lo[1], hi[1])
	stored := func(u, v float32) float32 {
		if u >= minU && u <= maxU && v >= minV && v <= maxV {
			return lo[2]
		}
		return 1
	}

	under := shadowMatrix.Mul4x1(mgl32.Vec4{0, -0.9, 0, 1})
	open := shadowMatrix.Mul4x1(mgl32.Vec4{3, -0.9, 0, 1})
	assert.Equal(t, float32(0), shading.ShadowVisibility(under, stored, cfg.ShadowBias), "ground under the occluder")
	assert.Equal(t, float32(1), shading.ShadowVisibility(open, stored, cfg.ShadowBias), "ground beside the occluder")
	assert.Equal(t, float32(1), shading.ShadowVisibility(shadowMatrix.Mul4x1(mgl32.Vec4{0, 1.5, 0, 1}), stored, cfg.ShadowBias),
		"the occluder's top face is lit")
}

func TestForwardShadowOnlyForShadowCasters(t *testing.T) {
	h := newHarness(t)
	r := newForward(t, h, DefaultConfig())
	r.Append(h.object())

	s := newTestScene(0.1,
		light.NewDirectional(light.WithCastsShadows(false)),
		light.NewDirectional(light.WithCastsShadows(true)),
	)
	require.NoError(t, r.Render(s))

	shadows := h.draws("renderer shadow")
	require.Len(t, shadows, 1)
	assert.Equal(t, r.shadow.targets[1].Framebuffer(), shadows[0].Framebuffer, "the second slot renders into the second layer")

	var depthClears int
	for _, c := range h.dev.Clears() {
		if c.Framebuffer == r.shadow.targets[1].Framebuffer() {
			require.NotNil(t, c.Depth)
			assert.Equal(t, float32(1), *c.Depth)
			depthClears++
		}
	}
	assert.Equal(t, 1, depthClears)
}

func TestForwardResizeKeepsRendering(t *testing.T) {
	h := newHarness(t)
	r := newForward(t, h, DefaultConfig())
	r.Append(h.object())
	s := newTestScene(0.2, light.NewDirectional(light.WithCastsShadows(true)))
	require.NoError(t, r.Render(s))

	require.NoError(t, r.Resize(128, 96))
	assert.Equal(t, uint32(128), r.Output().Width())
	assert.Equal(t, uint32(96), r.Output().Height())

	h.dev.ResetCommands()
	require.NoError(t, r.Render(s))
	lit := h.draws("renderer forward")
	require.Len(t, lit, 1)
	assert.Equal(t, [2]uint32{128, 96}, lit[0].Viewport)
}

func TestForwardMissingHeightMapKeepsCoordinates(t *testing.T) {
	h := newHarness(t)
	cfg := DefaultConfig()
	cfg.NoShadow = true
	require.False(t, cfg.NoHeightMap)
	require.False(t, cfg.NoNormalMap)
	r := newForward(t, h, cfg)

	height := h.solidTexture(t, 4, 4, [4]byte{128, 128, 128, 255})
	r.Append(h.objectWith(material.NewMaterial()))
	r.Append(h.objectWith(material.NewMaterial(material.WithParallax(0, 0))))
	r.Append(h.objectWith(material.NewMaterial(material.WithMap(material.MapHeight, height))))
	require.NoError(t, r.Render(newTestScene(0.2)))

	lit := h.draws("renderer forward")
	require.Len(t, lit, 3)
	p := r.lit.Program()
	offset := func(d backend.DrawRecord) float32 {
		sample := textureTexel(t, h, p, d, "heightMap")[0]
		return sample*uniformFloats(t, p, d, "parallaxScale")[0] + uniformFloats(t, p, d, "parallaxBias")[0]
	}

	assert.Zero(t, offset(lit[0]), "no height map leaves texture coordinates in place")
	assert.Equal(t, offset(lit[1]), offset(lit[0]), "matches parallax turned off")

	defaults := material.NewMaterial()
	assert.Equal(t, defaults.ParallaxScale(), uniformFloats(t, p, lit[2], "parallaxScale")[0])
	assert.Equal(t, defaults.ParallaxBias(), uniformFloats(t, p, lit[2], "parallaxBias")[0])
}

func TestForwardNoAlbedoMapMatchesWhiteAlbedoMap(t *testing.T) {
	h := newHarness(t)
	cfg := DefaultConfig()
	cfg.NoShadow = true
	r := newForward(t, h, cfg)

	white := h.solidTexture(t, 16, 16, [4]byte{255, 255, 255, 255})
	factor := material.WithAlbedoFactor(mgl32.Vec4{0.8, 0.4, 0.2, 1})
	r.Append(h.objectWith(material.NewMaterial(factor)))
	r.Append(h.objectWith(material.NewMaterial(factor, material.WithMap(material.MapAlbedo, white))))

	s := newTestScene(0.2, light.NewDirectional(light.WithDirection(0, 0, -1), light.WithColor(1, 0.9, 0.8)))
	require.NoError(t, r.Render(s))

	lit := h.draws("renderer forward")
	require.Len(t, lit, 2)
	p := r.lit.Program()

	info, ok := p.Texture("albedoMap")
	require.True(t, ok)
	for _, d := range lit {
		data, ok := h.dev.TextureData(d.Textures[backend.BindingKey{Group: info.Group, Binding: info.Binding}], 0)
		require.True(t, ok)
		for i := 0; i < len(data); i += 4 {
			require.Equal(t, []byte{255, 255, 255, 255}, data[i:i+4], "texel %d", i/4)
		}
	}

	bare, mapped := surfaceOf(t, h, p, lit[0]), surfaceOf(t, h, p, lit[1])
	assert.Equal(t, bare, mapped)

	colors := uniformFloats(t, p, lit[0], "directionalLightColor")
	incidents := []shading.Incident{{L: mgl32.Vec3{0, 0, 1}, Color: mgl32.Vec3{colors[0], colors[1], colors[2]}, Scale: 1}}
	v, ambient := mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0.2, 0.2, 0.2}
	assert.Equal(t,
		shading.Forward(cfg.LightModel, bare, v, ambient, incidents),
		shading.Forward(cfg.LightModel, mapped, v, ambient, incidents))
}
