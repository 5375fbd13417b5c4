package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption configures an orbit controller before its first eye position is computed.
type CameraControllerOption func(*orbitController)

// WithOrbit places the eye on the orbit sphere. Azimuth 0 looks down -Z from the +Z side; positive
// elevation raises the eye above the target.
//
// Parameters:
//   - radius: the eye distance from the target
//   - azimuth: the angle around +Y in radians
//   - elevation: the angle above the horizontal plane in radians
//
// Returns:
//   - CameraControllerOption: a function that sets the orbit
func WithOrbit(radius, azimuth, elevation float32) CameraControllerOption {
	return func(c *orbitController) {
		c.orbit = orbit{radius: radius, azimuth: azimuth, elevation: elevation}
	}
}

// WithTarget sets the point the controller orbits around.
//
// Parameters:
//   - target: the world-space pivot
//
// Returns:
//   - CameraControllerOption: a function that sets the pivot
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(c *orbitController) {
		c.target = target
	}
}

// WithRadiusBounds limits how close and how far Zoom and SetRadius can move the eye.
//
// Parameters:
//   - lo, hi: the radius range
//
// Returns:
//   - CameraControllerOption: a function that sets the radius range
func WithRadiusBounds(lo, hi float32) CameraControllerOption {
	return func(c *orbitController) {
		c.radiusRange = [2]float32{lo, hi}
	}
}

// WithElevationBounds limits the vertical orbit angle. Keep both ends inside (-pi/2, pi/2) so the view
// never flips over the pole.
//
// Parameters:
//   - lo, hi: the elevation range in radians
//
// Returns:
//   - CameraControllerOption: a function that sets the elevation range
func WithElevationBounds(lo, hi float32) CameraControllerOption {
	return func(c *orbitController) {
		c.elevationRange = [2]float32{lo, hi}
	}
}

// WithSensitivity scales the input of Zoom and Pan.
//
// Parameters:
//   - zoom: the Zoom multiplier
//   - pan: the Pan multiplier
//
// Returns:
//   - CameraControllerOption: a function that sets the input scales
func WithSensitivity(zoom, pan float32) CameraControllerOption {
	return func(c *orbitController) {
		c.zoomScale, c.panScale = zoom, pan
	}
}

// WithAutoOrbit turns the eye around the target while the scene advances.
//
// Parameters:
//   - speed: radians of azimuth per second, 0 disables it
//
// Returns:
//   - CameraControllerOption: a function that sets the automatic orbit speed
func WithAutoOrbit(speed float32) CameraControllerOption {
	return func(c *orbitController) {
		c.spin = speed
	}
}
