package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption configures a camera before its first matrices are built.
type CameraBuilderOption func(*cameraImpl)

// WithPosition places the eye. A controller overrides it.
//
// Parameters:
//   - x, y, z: the eye in world space
//
// Returns:
//   - CameraBuilderOption: a function that places the eye
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = mgl32.Vec3{x, y, z}
	}
}

// WithLookAt sets the point at the center of the view. A controller overrides it.
//
// Parameters:
//   - x, y, z: the focus point in world space
//
// Returns:
//   - CameraBuilderOption: a function that sets the focus point
func WithLookAt(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = mgl32.Vec3{x, y, z}
	}
}

// WithUp sets the world direction that appears upward on screen. The default is +Y.
//
// Parameters:
//   - x, y, z: the up direction
//
// Returns:
//   - CameraBuilderOption: a function that sets the up direction
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = mgl32.Vec3{x, y, z}
	}
}

// WithFov sets the vertical opening angle of the perspective projection.
//
// Parameters:
//   - fov: the angle in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the opening angle
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithAspect sets the viewport width divided by its height. The engine keeps it in sync with the
// window after creation.
//
// Parameters:
//   - aspect: the width to height ratio
//
// Returns:
//   - CameraBuilderOption: a function that sets the ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.aspect = aspect
	}
}

// WithNear sets the view distance that maps to depth 0.
//
// Parameters:
//   - near: a positive distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the near plane
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
	}
}

// WithFar sets the view distance that maps to depth 1. Geometry and point lights beyond it are culled.
//
// Parameters:
//   - far: a distance greater than the near plane
//
// Returns:
//   - CameraBuilderOption: a function that sets the far plane
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.far = far
	}
}

// WithController hands the eye and focus point to a controller. The camera copies them from it on
// creation and on every Update.
//
// Parameters:
//   - ctrl: the controller
//
// Returns:
//   - CameraBuilderOption: a function that attaches the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
