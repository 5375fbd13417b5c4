package game_object

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTransformComposition(t *testing.T) {
	obj := NewGameObject(WithPosition(1, 2, 3), WithScale(2, 2, 2), WithRotation(0, float32(math.Pi/2), 0))

	p := obj.Transform().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 0, p.Sub(mgl32.Vec4{1, 2, 1, 1}).Len(), 1e-5, "%v", p)
	assert.True(t, obj.Enabled())
	assert.True(t, obj.CastsShadow())

	obj.SetTransform(mgl32.Translate3D(9, 0, 0))
	assert.Equal(t, mgl32.Translate3D(9, 0, 0), obj.Transform())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, obj.Position())

	obj.SetScale(mgl32.Vec3{1, 1, 1})
	p = obj.Transform().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, p.Sub(mgl32.Vec4{1, 2, 3, 1}).Len(), 1e-5, "override replaced by the next change")
}

func TestAdvanceRotatesAndMovesLight(t *testing.T) {
	bulb := light.NewPoint()
	obj := NewGameObject(WithPosition(0, 5, 0), WithRotationSpeed(0, 1, 0), WithLight(bulb))
	assert.Equal(t, mgl32.Vec3{0, 5, 0}, bulb.Position())

	obj.Advance(0.5)
	assert.InDelta(t, 0.5, obj.Rotation().Y(), 1e-6)

	obj.SetPosition(mgl32.Vec3{1, 1, 1})
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, bulb.Position())

	obj.SetTransform(mgl32.Translate3D(4, 0, 0))
	assert.Equal(t, mgl32.Vec3{4, 0, 0}, bulb.Position())
}

func TestIdentityAndFlags(t *testing.T) {
	mesh := model.NewMesh(model.WithName("m"))
	a := NewGameObject(WithMesh(mesh), WithCastsShadow(false), WithEnabled(false))
	b := NewGameObject()

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Same(t, mesh, a.Mesh())
	assert.False(t, a.CastsShadow())
	assert.False(t, a.Enabled())

	a.SetEnabled(true)
	a.SetCastsShadow(true)
	a.SetMesh(nil)
	assert.True(t, a.Enabled())
	assert.True(t, a.CastsShadow())
	assert.Nil(t, a.Mesh())
}
