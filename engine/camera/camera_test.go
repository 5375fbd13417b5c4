package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraMatrices(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, 5), WithLookAt(0, 0, 0), WithNear(1), WithFar(11), WithAspect(2))

	origin := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, origin.Sub(mgl32.Vec4{0, 0, -5, 1}).Len(), 1e-5, "%v", origin)

	near := c.ProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	far := c.ProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, -11, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-5)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-5)

	identity, roundTrip := mgl32.Ident4(), c.InverseProjectionMatrix().Mul4(c.ProjectionMatrix())
	assert.InDeltaSlice(t, identity[:], roundTrip[:], 1e-5)
	viewProjection, composed := c.ViewProjectionMatrix(), c.ProjectionMatrix().Mul4(c.ViewMatrix())
	assert.InDeltaSlice(t, composed[:], viewProjection[:], 1e-5)

	f := c.Frustum()
	assert.True(t, f.ContainsSphere(mgl32.Vec3{}, 0.1))
	assert.False(t, f.ContainsSphere(mgl32.Vec3{0, 0, 20}, 1))

	c.SetAspect(1)
	assert.Equal(t, float32(1), c.Aspect())
	assert.InDelta(t, c.ProjectionMatrix()[0], c.ProjectionMatrix()[5], 1e-6)
}

func TestCameraFollowsController(t *testing.T) {
	ctrl := NewCameraController(WithOrbit(4, 0, 0), WithTarget(mgl32.Vec3{1, 0, 0}))
	c := NewCamera(WithController(ctrl))

	assert.InDelta(t, 0, c.Position().Sub(mgl32.Vec3{1, 0, 4}).Len(), 1e-5, "%v", c.Position())
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, c.Target())

	ctrl.Orbit(float32(math.Pi/2), 0)
	c.Update()
	assert.InDelta(t, 0, c.Position().Sub(mgl32.Vec3{5, 0, 0}).Len(), 1e-5, "%v", c.Position())

	c.LookAt(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{})
	c.SetUp(mgl32.Vec3{0, 0, -1})
	assert.Equal(t, mgl32.Vec3{0, 10, 0}, c.Position())
	c.Update()
	assert.InDelta(t, 0, c.Position().Sub(mgl32.Vec3{5, 0, 0}).Len(), 1e-5, "controller wins on update")
}

func TestControllerClampsAndPans(t *testing.T) {
	ctrl := NewCameraController(
		WithOrbit(5, 0, 0.3),
		WithRadiusBounds(2, 8),
		WithElevationBounds(-0.5, 0.5),
		WithSensitivity(2, 1),
		WithAutoOrbit(1),
	)

	ctrl.Zoom(10)
	assert.Equal(t, float32(2), ctrl.Radius())
	ctrl.SetRadius(100)
	assert.Equal(t, float32(8), ctrl.Radius())

	ctrl.Orbit(0, 3)
	assert.Equal(t, float32(0.5), ctrl.Elevation())

	before := ctrl.Azimuth()
	ctrl.Advance(0.25)
	assert.InDelta(t, before+0.25, ctrl.Azimuth(), 1e-6)

	offset := ctrl.Position().Sub(ctrl.Target())
	ctrl.Pan(1, 2, 3)
	assert.InDelta(t, 0, ctrl.Position().Sub(ctrl.Target()).Sub(offset).Len(), 1e-5, "pan keeps the orbit offset")
	assert.InDelta(t, math.Sqrt(1+4+9), ctrl.Target().Len(), 1e-4)
}
