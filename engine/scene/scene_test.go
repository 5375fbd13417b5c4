package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shade/engine/camera"
	"github.com/Carmen-Shannon/oxy-shade/engine/game_object"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLightsOrderAndAttachedLights(t *testing.T) {
	sun := light.NewDirectional()
	lamp := light.NewPoint()
	s := NewScene("test", camera.NewCamera(), WithAmbient(0.2, 0.2, 0.2), WithLights(sun, lamp))

	bulb := light.NewPoint()
	carrier := game_object.NewGameObject(game_object.WithLight(bulb), game_object.WithPosition(0, 3, 0))
	hidden := game_object.NewGameObject(game_object.WithLight(light.NewPoint()), game_object.WithEnabled(false))
	s.AddObject(carrier)
	s.AddObject(hidden)

	assert.Equal(t, mgl32.Vec3{0.2, 0.2, 0.2}, s.Ambient())
	assert.Equal(t, []light.Light{sun, lamp, bulb}, s.Lights())

	assert.True(t, s.RemoveLight(sun))
	assert.False(t, s.RemoveLight(sun))
	assert.Equal(t, []light.Light{lamp, bulb}, s.Lights())

	assert.True(t, s.RemoveObject(carrier))
	assert.Equal(t, []light.Light{lamp}, s.Lights())
}

func TestAdvanceMovesObjectsAndCamera(t *testing.T) {
	ctrl := camera.NewCameraController(camera.WithOrbit(5, 0, 0), camera.WithAutoOrbit(1))
	cam := camera.NewCamera(camera.WithController(ctrl))
	s := NewScene("test", cam)

	spinner := game_object.NewGameObject(game_object.WithRotationSpeed(0, 2, 0))
	s.AddObject(spinner)

	before := cam.Position()
	s.Advance(0.5)
	assert.InDelta(t, 1.0, spinner.Rotation().Y(), 1e-6)
	assert.InDelta(t, 0.5, ctrl.Azimuth(), 1e-6)
	assert.NotEqual(t, before, cam.Position())
	assert.Equal(t, ctrl.Position(), cam.Position())
}

func TestNewSceneRequiresCamera(t *testing.T) {
	require.Panics(t, func() { NewScene("x", nil) })
}
