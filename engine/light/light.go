package light

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// LightType selects the lighting model and the light State slot array a light is copied into.
type LightType int

const (
	// LightTypeDirectional is a light at infinity, described by its travel direction alone.
	// Used for large distant sources like the sun. Affects all fragments
	// uniformly with no distance attenuation and may cast shadows.
	LightTypeDirectional LightType = iota

	// LightTypePoint radiates from a position in every direction.
	// Its contribution falls to zero at the influence radius. Point lights never cast shadows.
	LightTypePoint
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	default:
		return fmt.Sprintf("LightType(%d)", int(t))
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType    LightType
	position     mgl32.Vec3
	direction    mgl32.Vec3
	color        mgl32.Vec3
	intensity    float32
	radius       float32
	enabled      bool
	castsShadows bool
}

// Light is a directional or point light source.
//
// Lights are per-frame inputs: the host owns them and passes them to the renderer each frame,
// which copies what it needs into a State. Type-specific properties return zero values when
// not applicable.
type Light interface {
	// Type returns whether the light is directional or a point light.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Position returns the world-space position of a point light.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Direction returns the unit world-space direction a directional light travels in.
	//
	// Returns:
	//   - mgl32.Vec3: the normalized direction
	Direction() mgl32.Vec3

	// Color returns the linear RGB color before intensity scaling.
	//
	// Returns:
	//   - mgl32.Vec3: the color
	Color() mgl32.Vec3

	// Intensity returns the factor Radiance scales the color by.
	//
	// Returns:
	//   - float32: the scale
	Intensity() float32

	// Radiance returns the color scaled by the intensity, the value shaders receive.
	//
	// Returns:
	//   - mgl32.Vec3: the radiance
	Radiance() mgl32.Vec3

	// Radius returns the influence radius of a point light. Beyond it the light contributes zero energy.
	//
	// Returns:
	//   - float32: the radius
	Radius() float32

	// Enabled reports whether the light is switched on.
	// Disabled lights are skipped before truncation.
	//
	// Returns:
	//   - bool: the switch state
	Enabled() bool

	// CastsShadows returns whether a directional light renders into a shadow map.
	//
	// Returns:
	//   - bool: true for a shadow-casting directional light
	CastsShadows() bool

	// SetPosition moves a point light.
	//
	// Parameters:
	//   - position: the position
	SetPosition(position mgl32.Vec3)

	// SetDirection re-aims a directional light.
	//
	// Parameters:
	//   - direction: the direction, normalized before storing
	SetDirection(direction mgl32.Vec3)

	// SetColor changes the linear RGB color.
	//
	// Parameters:
	//   - color: the color
	SetColor(color mgl32.Vec3)

	// SetIntensity changes the factor Radiance scales the color by.
	//
	// Parameters:
	//   - intensity: the scale, negative values are treated as 0
	SetIntensity(intensity float32)

	// SetRadius sets the influence radius of a point light.
	//
	// Parameters:
	//   - radius: the radius
	SetRadius(radius float32)

	// SetEnabled switches the light on or off. The change applies from the next rendered frame.
	//
	// Parameters:
	//   - enabled: the switch state
	SetEnabled(enabled bool)

	// SetCastsShadows sets whether a directional light renders into a shadow map.
	//
	// Parameters:
	//   - castsShadows: whether the light casts shadows
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied. Defaults are a white, enabled light of intensity 1 pointing down
// -Y with a radius of 10.
//
// Parameters:
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions
//
// Returns:
//   - Light: the light
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		direction: mgl32.Vec3{0, -1, 0},
		color:     mgl32.Vec3{1, 1, 1},
		intensity: 1,
		radius:    10,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewDirectional creates a directional light.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions
//
// Returns:
//   - Light: a new directional Light
func NewDirectional(opts ...LightBuilderOption) Light {
	return NewLight(LightTypeDirectional, opts...)
}

// NewPoint creates a point light.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions
//
// Returns:
//   - Light: a new point Light
func NewPoint(opts ...LightBuilderOption) Light {
	return NewLight(LightTypePoint, opts...)
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Radiance() mgl32.Vec3 {
	return l.color.Mul(l.intensity)
}

func (l *lightImpl) Radius() float32 {
	return l.radius
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.lightType == LightTypeDirectional && l.castsShadows
}

func (l *lightImpl) SetPosition(position mgl32.Vec3) {
	l.position = position
}

func (l *lightImpl) SetDirection(direction mgl32.Vec3) {
	l.direction = normalize(direction)
}

func (l *lightImpl) SetColor(color mgl32.Vec3) {
	l.color = color
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = max(intensity, 0)
}

func (l *lightImpl) SetRadius(radius float32) {
	l.radius = max(radius, 0)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}
