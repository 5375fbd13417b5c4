package light

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLightDefaultsAndSetters(t *testing.T) {
	l := NewDirectional(WithDirection(0, 0, -2), WithColor(1, 0.5, 0), WithIntensity(2), WithCastsShadows(true))
	assert.Equal(t, LightTypeDirectional, l.Type())
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, l.Direction())
	assert.Equal(t, mgl32.Vec3{2, 1, 0}, l.Radiance())
	assert.True(t, l.Enabled())
	assert.True(t, l.CastsShadows())

	p := NewPoint(WithPosition(1, 2, 3), WithRadius(4), WithCastsShadows(true))
	assert.Equal(t, "point", p.Type().String())
	assert.Equal(t, float32(4), p.Radius())
	assert.False(t, p.CastsShadows(), "point lights never cast shadows")

	p.SetDirection(mgl32.Vec3{})
	assert.Equal(t, mgl32.Vec3{}, p.Direction())
	p.SetPosition(mgl32.Vec3{5, 0, 0})
	p.SetColor(mgl32.Vec3{0, 1, 0})
	p.SetIntensity(3)
	p.SetRadius(1)
	assert.Equal(t, mgl32.Vec3{0, 3, 0}, p.Radiance())
	assert.Equal(t, mgl32.Vec3{5, 0, 0}, p.Position())
}

func TestStateKeepsFirstLightsInOrder(t *testing.T) {
	var lights []Light
	for i := 0; i < 5; i++ {
		lights = append(lights, NewDirectional(WithColor(float32(i+1), 0, 0)))
		lights = append(lights, NewPoint(WithColor(0, float32(i+1), 0)))
	}

	s := NewState(3, 2)
	s.Fill(lights, mgl32.Ident4(), DefaultShadowBox(), false)

	require.Equal(t, 3, s.DirectionalCount)
	require.Equal(t, 2, s.PointCount)
	assert.Equal(t, 5, s.Dropped)
	for i := 0; i < 3; i++ {
		assert.Same(t, lights[2*i], s.Directional[i].Light)
		assert.Equal(t, float32(i+1), s.DirectionalColors[i].X())
	}
	for i := 0; i < 2; i++ {
		assert.Same(t, lights[2*i+1], s.Point[i].Light)
		assert.Equal(t, float32(i+1), s.PointColors[i].Y())
	}
}

func TestStateZeroesUnusedSlotsOnRefill(t *testing.T) {
	s := NewState(2, 2)
	s.Fill([]Light{
		NewDirectional(), NewDirectional(),
		NewPoint(), NewPoint(),
	}, mgl32.Ident4(), DefaultShadowBox(), false)
	require.Equal(t, 2, s.DirectionalCount)

	disabled := NewDirectional(WithEnabled(false))
	s.Fill([]Light{disabled, NewPoint(WithRadius(3))}, mgl32.Ident4(), DefaultShadowBox(), false)

	assert.Equal(t, 0, s.DirectionalCount)
	assert.Equal(t, 1, s.PointCount)
	assert.Equal(t, 0, s.Dropped)
	assert.Len(t, s.DirectionalColors, 2)
	assert.Equal(t, mgl32.Vec4{}, s.DirectionalColors[0])
	assert.Equal(t, mgl32.Vec4{}, s.DirectionalDirections[1])
	assert.Equal(t, mgl32.Vec4{}, s.PointColors[1])
	assert.Nil(t, s.Point[1].Light)
	assert.Equal(t, float32(3), s.PointPositions[0].W())
}

func TestStateTransformsIntoViewSpace(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	view = view.Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(90)))

	s := NewState(1, 1)
	s.Fill([]Light{
		NewDirectional(WithDirection(1, 0, 0)),
		NewPoint(WithPosition(0, 0, 0), WithRadius(2)),
	}, view, DefaultShadowBox(), true)

	expected := view.Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3().Normalize()
	assert.InDelta(t, 0, s.DirectionalDirections[0].Vec3().Sub(expected).Len(), 1e-5)
	assert.Equal(t, float32(0), s.DirectionalDirections[0].W(), "no shadow flag without a caster")
	assert.InDelta(t, 0, s.PointPositions[0].Vec3().Sub(mgl32.Vec3{0, 0, -5}).Len(), 1e-5)
	assert.Equal(t, float32(2), s.PointPositions[0].W())
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, s.Point[0].Position)
}

func TestStateShadowMatrices(t *testing.T) {
	box := ShadowBox{Center: mgl32.Vec3{1, 0, 0}, HalfExtent: 10, Near: 0.1, Far: 100}
	caster := NewDirectional(WithDirection(0, -1, 0), WithCastsShadows(true))
	plain := NewDirectional(WithDirection(0, -1, 0))

	s := NewState(3, 0)
	s.Fill([]Light{plain, caster}, mgl32.Ident4(), box, true)
	assert.Equal(t, []int{1}, s.ShadowCasters(nil))
	assert.Equal(t, float32(1), s.DirectionalDirections[1].W())
	assert.Equal(t, mgl32.Mat4{}, s.DirectionalShadowMatrices[0])

	// the box center lands in the middle of the map, halfway through the depth range
	c := s.DirectionalShadowMatrices[1].Mul4x1(box.Center.Vec4(1))
	c = c.Mul(1 / c.W())
	assert.InDelta(t, 0.5, c.X(), 1e-5)
	assert.InDelta(t, 0.5, c.Y(), 1e-5)
	assert.InDelta(t, (50-0.1)/(100-0.1), c.Z(), 1e-4)

	// a point higher along the light path is nearer to the light
	above := s.DirectionalShadowMatrices[1].Mul4x1(mgl32.Vec4{1, 5, 0, 1})
	assert.Less(t, above.Z(), c.Z())

	expected := common.NDCToTexture().Mul4(box.ViewProjection(caster.Direction()))
	assert.InDeltaSlice(t, expected[:], s.DirectionalShadowMatrices[1][:], 1e-5)

	s.Fill([]Light{caster}, mgl32.Ident4(), box, false)
	assert.Empty(t, s.ShadowCasters(nil), "shadows disabled for the frame")
}
