package game_object

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/Carmen-Shannon/oxy-shade/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// nextID hands out object identifiers.
var nextID atomic.Uint64

type gameObject struct {
	id            uint64
	enabled       atomic.Bool
	castsShadow   bool
	mesh          model.Mesh
	attachedLight light.Light

	position      mgl32.Vec3
	rotation      mgl32.Vec3
	rotationSpeed mgl32.Vec3
	scale         mgl32.Vec3
	transform     mgl32.Mat4
}

// GameObject is a scene entity pairing a mesh with a world transform. The transform is composed
// from position, Euler rotation and scale, or set directly with SetTransform.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object is drawn.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// CastsShadow returns whether this object is rendered into shadow maps.
	//
	// Returns:
	//   - bool: false for shadow-excluded objects
	CastsShadow() bool

	// Mesh returns the mesh drawn for this object, or nil if not set.
	//
	// Returns:
	//   - model.Mesh: the mesh or nil
	Mesh() model.Mesh

	// Position returns the world-space position of the object.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Rotation returns the Euler rotation in radians, applied X then Y then Z.
	//
	// Returns:
	//   - mgl32.Vec3: the rotation angles
	Rotation() mgl32.Vec3

	// RotationSpeed returns the rotation applied per second by Advance.
	//
	// Returns:
	//   - mgl32.Vec3: radians per second around each axis
	RotationSpeed() mgl32.Vec3

	// Scale returns the per-axis scale.
	//
	// Returns:
	//   - mgl32.Vec3: the scale
	Scale() mgl32.Vec3

	// Transform returns the object to world transform.
	//
	// Returns:
	//   - mgl32.Mat4: the world transform
	Transform() mgl32.Mat4

	// Light returns the light attached to this object, or nil.
	//
	// Returns:
	//   - light.Light: the attached light
	Light() light.Light

	// SetEnabled enables or disables drawing.
	//
	// Parameters:
	//   - enabled: true to draw the object
	SetEnabled(enabled bool)

	// SetCastsShadow includes or excludes the object from shadow maps.
	//
	// Parameters:
	//   - castsShadow: true to render into shadow maps
	SetCastsShadow(castsShadow bool)

	// SetMesh replaces the mesh drawn for this object.
	//
	// Parameters:
	//   - m: the new mesh
	SetMesh(m model.Mesh)

	// SetPosition sets the world-space position and recomposes the transform.
	//
	// Parameters:
	//   - position: the position
	SetPosition(position mgl32.Vec3)

	// SetRotation sets the Euler rotation and recomposes the transform.
	//
	// Parameters:
	//   - rotation: radians around X, Y and Z
	SetRotation(rotation mgl32.Vec3)

	// SetRotationSpeed sets the rotation applied per second by Advance.
	//
	// Parameters:
	//   - speed: radians per second around each axis
	SetRotationSpeed(speed mgl32.Vec3)

	// SetScale sets the per-axis scale and recomposes the transform.
	//
	// Parameters:
	//   - scale: the scale
	SetScale(scale mgl32.Vec3)

	// SetTransform overrides the world transform directly. Position, rotation and scale keep their
	// values and replace the override on their next change.
	//
	// Parameters:
	//   - m: the world transform
	SetTransform(m mgl32.Mat4)

	// SetLight attaches a light that follows the object's position.
	//
	// Parameters:
	//   - l: the light, or nil to detach
	SetLight(l light.Light)

	// Advance applies the rotation speed for an elapsed time and moves the attached light to the
	// object's position.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Advance(dt float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new, enabled, shadow-casting GameObject at the origin with unit scale.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		id:          nextID.Add(1),
		castsShadow: true,
		scale:       mgl32.Vec3{1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	obj.compose()
	obj.syncLight()
	return obj
}

// compose rebuilds the transform as translation * rotation * scale.
func (g *gameObject) compose() {
	rotation := mgl32.HomogRotate3DZ(g.rotation[2]).
		Mul4(mgl32.HomogRotate3DY(g.rotation[1])).
		Mul4(mgl32.HomogRotate3DX(g.rotation[0]))
	g.transform = mgl32.Translate3D(g.position[0], g.position[1], g.position[2]).
		Mul4(rotation).
		Mul4(mgl32.Scale3D(g.scale[0], g.scale[1], g.scale[2]))
}

func (g *gameObject) syncLight() {
	if g.attachedLight != nil {
		g.attachedLight.SetPosition(g.transform.Col(3).Vec3())
	}
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) CastsShadow() bool {
	return g.castsShadow
}

func (g *gameObject) Mesh() model.Mesh {
	return g.mesh
}

func (g *gameObject) Position() mgl32.Vec3 {
	return g.position
}

func (g *gameObject) Rotation() mgl32.Vec3 {
	return g.rotation
}

func (g *gameObject) RotationSpeed() mgl32.Vec3 {
	return g.rotationSpeed
}

func (g *gameObject) Scale() mgl32.Vec3 {
	return g.scale
}

func (g *gameObject) Transform() mgl32.Mat4 {
	return g.transform
}

func (g *gameObject) Light() light.Light {
	return g.attachedLight
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetCastsShadow(castsShadow bool) {
	g.castsShadow = castsShadow
}

func (g *gameObject) SetMesh(m model.Mesh) {
	g.mesh = m
}

func (g *gameObject) SetPosition(position mgl32.Vec3) {
	g.position = position
	g.compose()
	g.syncLight()
}

func (g *gameObject) SetRotation(rotation mgl32.Vec3) {
	g.rotation = rotation
	g.compose()
}

func (g *gameObject) SetRotationSpeed(speed mgl32.Vec3) {
	g.rotationSpeed = speed
}

func (g *gameObject) SetScale(scale mgl32.Vec3) {
	g.scale = scale
	g.compose()
}

func (g *gameObject) SetTransform(m mgl32.Mat4) {
	g.transform = m
	g.syncLight()
}

func (g *gameObject) SetLight(l light.Light) {
	g.attachedLight = l
	g.syncLight()
}

func (g *gameObject) Advance(dt float32) {
	if g.rotationSpeed != (mgl32.Vec3{}) {
		g.rotation = g.rotation.Add(g.rotationSpeed.Mul(dt))
		g.compose()
	}
	g.syncLight()
}
