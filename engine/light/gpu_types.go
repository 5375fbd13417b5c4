package light

import (
	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DirectionalSlot is one directional light copied into a State.
type DirectionalSlot struct {
	// Light is the source light.
	Light Light

	// Radiance is the color scaled by intensity.
	Radiance mgl32.Vec3

	// Direction is the unit world-space travel direction.
	Direction mgl32.Vec3

	// ViewDirection is Direction rotated into view space.
	ViewDirection mgl32.Vec3

	// Shadow is set when the light renders into the shadow map layer of its slot.
	Shadow bool

	// ViewProjection maps world space into the light's clip space for the shadow pass.
	ViewProjection mgl32.Mat4
}

// PointSlot is one point light copied into a State.
type PointSlot struct {
	// Light is the source light.
	Light Light

	// Radiance is the color scaled by intensity.
	Radiance mgl32.Vec3

	// Position is the world-space position.
	Position mgl32.Vec3

	// ViewPosition is Position transformed into view space.
	ViewPosition mgl32.Vec3

	// Radius is the influence radius.
	Radius float32
}

// State is a fixed-capacity light set refilled every frame. Its slices never change length, so
// shader arrays sized to the capacities can be uploaded from it directly; unused slots are zero.
type State struct {
	// Directional holds the first DirectionalCount enabled directional lights in input order.
	Directional []DirectionalSlot

	// Point holds the first PointCount enabled point lights in input order.
	Point []PointSlot

	// DirectionalCount is the number of filled directional slots.
	DirectionalCount int

	// PointCount is the number of filled point slots.
	PointCount int

	// Dropped is the number of enabled lights that did not fit.
	Dropped int

	// Uniform arrays, one element per slot, in the layout the lighting shaders declare.
	DirectionalColors         []mgl32.Vec4
	DirectionalDirections     []mgl32.Vec4
	DirectionalShadowMatrices []mgl32.Mat4
	PointColors               []mgl32.Vec4
	PointPositions            []mgl32.Vec4
}

// NewState allocates a State with the given capacities.
//
// Parameters:
//   - maxDirectional: the number of directional slots
//   - maxPoint: the number of point slots
//
// Returns:
//   - *State: the empty state
func NewState(maxDirectional, maxPoint int) *State {
	return &State{
		Directional:               make([]DirectionalSlot, maxDirectional),
		Point:                     make([]PointSlot, maxPoint),
		DirectionalColors:         make([]mgl32.Vec4, maxDirectional),
		DirectionalDirections:     make([]mgl32.Vec4, maxDirectional),
		DirectionalShadowMatrices: make([]mgl32.Mat4, maxDirectional),
		PointColors:               make([]mgl32.Vec4, maxPoint),
		PointPositions:            make([]mgl32.Vec4, maxPoint),
	}
}

// Fill clears the state and copies the enabled lights into it. Lights beyond the capacity of
// their type are dropped; the kept lights are always the first ones in input order.
//
// Parameters:
//   - lights: the frame's lights
//   - view: the camera view matrix
//   - box: the shadow box shadow-casting directional lights project into
//   - shadows: whether shadow-casting lights get a shadow map this frame
func (s *State) Fill(lights []Light, view mgl32.Mat4, box ShadowBox, shadows bool) {
	clear(s.Directional)
	clear(s.Point)
	clear(s.DirectionalColors)
	clear(s.DirectionalDirections)
	clear(s.DirectionalShadowMatrices)
	clear(s.PointColors)
	clear(s.PointPositions)
	s.DirectionalCount, s.PointCount, s.Dropped = 0, 0, 0

	toTexture := common.NDCToTexture()
	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		switch l.Type() {
		case LightTypeDirectional:
			if s.DirectionalCount == len(s.Directional) {
				s.Dropped++
				continue
			}
			i := s.DirectionalCount
			slot := DirectionalSlot{
				Light:         l,
				Radiance:      l.Radiance(),
				Direction:     l.Direction(),
				ViewDirection: common.TransformDirection(view, l.Direction()),
				Shadow:        shadows && l.CastsShadows(),
			}
			var shadowFlag float32
			if slot.Shadow {
				slot.ViewProjection = box.ViewProjection(slot.Direction)
				s.DirectionalShadowMatrices[i] = toTexture.Mul4(slot.ViewProjection)
				shadowFlag = 1
			}
			s.Directional[i] = slot
			s.DirectionalColors[i] = slot.Radiance.Vec4(1)
			s.DirectionalDirections[i] = slot.ViewDirection.Vec4(shadowFlag)
			s.DirectionalCount++
		case LightTypePoint:
			if s.PointCount == len(s.Point) {
				s.Dropped++
				continue
			}
			i := s.PointCount
			slot := PointSlot{
				Light:        l,
				Radiance:     l.Radiance(),
				Position:     l.Position(),
				ViewPosition: view.Mul4x1(l.Position().Vec4(1)).Vec3(),
				Radius:       l.Radius(),
			}
			s.Point[i] = slot
			s.PointColors[i] = slot.Radiance.Vec4(1)
			s.PointPositions[i] = slot.ViewPosition.Vec4(slot.Radius)
			s.PointCount++
		}
	}
	if s.Dropped > 0 {
		common.Logger().Debug("lights truncated", "dropped", s.Dropped,
			"maxDirectional", len(s.Directional), "maxPoint", len(s.Point))
	}
}

// ShadowCasters returns the indices of the filled directional slots that render a shadow map.
// The index of a slot is also its shadow map layer.
//
// Parameters:
//   - dst: reused when it has enough capacity
//
// Returns:
//   - []int: the slot indices in ascending order
func (s *State) ShadowCasters(dst []int) []int {
	dst = dst[:0]
	for i := 0; i < s.DirectionalCount; i++ {
		if s.Directional[i].Shadow {
			dst = append(dst, i)
		}
	}
	return dst
}
