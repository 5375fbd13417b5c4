package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController owns the positional state of a camera. Orbit methods move the eye on a sphere
// around the target using spherical coordinates (radius, azimuth, elevation); Pan translates eye
// and target together along the camera's local axes, preserving the orbit relationship.
type CameraController interface {
	// Position returns the eye in world space.
	//
	// Returns:
	//   - mgl32.Vec3: world-space camera position
	Position() mgl32.Vec3

	// Target returns the pivot the eye orbits and looks at.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target position
	Target() mgl32.Vec3

	// SetTarget moves the pivot. The eye follows, keeping its orbit offset.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target mgl32.Vec3)

	// Orbit rotates the eye around the target. Elevation is clamped to its bounds.
	//
	// Parameters:
	//   - dAzimuth: change of the horizontal angle in radians
	//   - dElevation: change of the vertical angle in radians
	Orbit(dAzimuth, dElevation float32)

	// Zoom adjusts the distance to the target, clamped to the radius bounds.
	// Positive delta moves the eye closer.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Pan translates eye and target along the camera's local axes.
	//
	// Parameters:
	//   - right: movement along the local right axis
	//   - up: movement along the local up axis
	//   - forward: movement toward the target
	Pan(right, up, forward float32)

	// Advance applies the automatic orbit for an elapsed time.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Advance(dt float32)

	// Radius returns the eye distance from the pivot.
	//
	// Returns:
	//   - float32: the orbit radius
	Radius() float32

	// SetRadius moves the eye to a distance from the pivot, clamped to the radius bounds.
	//
	// Parameters:
	//   - radius: the orbit radius
	SetRadius(radius float32)

	// Azimuth returns the orbit angle around +Y.
	//
	// Returns:
	//   - float32: azimuth in radians
	Azimuth() float32

	// Elevation returns the orbit angle above the horizontal plane.
	//
	// Returns:
	//   - float32: elevation in radians
	Elevation() float32
}
