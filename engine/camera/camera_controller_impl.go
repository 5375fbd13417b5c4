package camera

import (
	"math"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// orbit is a point on a sphere around a pivot.
type orbit struct {
	radius    float32
	azimuth   float32
	elevation float32
}

// offset returns the eye position relative to the pivot.
func (o orbit) offset() mgl32.Vec3 {
	ce, se := math32.Cos(o.elevation), math32.Sin(o.elevation)
	ca, sa := math32.Cos(o.azimuth), math32.Sin(o.azimuth)
	return mgl32.Vec3{ce * sa, se, ce * ca}.Mul(o.radius)
}

// orbitController is the implementation of the CameraController interface.
type orbitController struct {
	mu sync.Mutex

	orbit  orbit
	target mgl32.Vec3
	eye    mgl32.Vec3

	radiusRange    [2]float32
	elevationRange [2]float32

	zoomScale float32
	panScale  float32
	spin      float32
}

var _ CameraController = &orbitController{}

// NewCameraController creates an orbit controller. Without options the eye sits 10 units from the
// origin, 30 degrees above the horizontal plane on the +Z side.
//
// Parameters:
//   - options: variadic list of CameraControllerOption functions
//
// Returns:
//   - CameraController: the controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	const pole = math.Pi/2 - 0.05
	c := &orbitController{
		orbit:          orbit{radius: 10, elevation: math.Pi / 6},
		radiusRange:    [2]float32{0.5, 500},
		elevationRange: [2]float32{-pole, pole},
		zoomScale:      1,
		panScale:       1,
	}
	for _, opt := range options {
		opt(c)
	}
	c.orbit.radius = clamp(c.orbit.radius, c.radiusRange)
	c.orbit.elevation = clamp(c.orbit.elevation, c.elevationRange)
	c.place()
	return c
}

// place moves the eye to the orbit point. c.mu must be held.
func (c *orbitController) place() {
	c.eye = c.target.Add(c.orbit.offset())
}

// basis returns the eye's right, up and forward axes for a +Y world up, matching mgl32.LookAtV.
// All three are zero when the eye sits on the target. c.mu must be held.
func (c *orbitController) basis() (right, up, forward mgl32.Vec3) {
	back := c.eye.Sub(c.target)
	if back.Len() < 1e-8 {
		return
	}
	back = back.Normalize()
	forward = back.Mul(-1)
	right = mgl32.Vec3{0, 1, 0}.Cross(back)
	if right.Len() < 1e-8 {
		return mgl32.Vec3{}, mgl32.Vec3{}, forward
	}
	right = right.Normalize()
	return right, back.Cross(right), forward
}

func (c *orbitController) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *orbitController) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *orbitController) SetTarget(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.place()
}

func (c *orbitController) Orbit(dAzimuth, dElevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orbit.azimuth += dAzimuth
	c.orbit.elevation = clamp(c.orbit.elevation+dElevation, c.elevationRange)
	c.place()
}

func (c *orbitController) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orbit.radius = clamp(c.orbit.radius-delta*c.zoomScale, c.radiusRange)
	c.place()
}

func (c *orbitController) Pan(right, up, forward float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, u, f := c.basis()
	move := r.Mul(right).Add(u.Mul(up)).Add(f.Mul(forward)).Mul(c.panScale)
	c.target = c.target.Add(move)
	c.eye = c.eye.Add(move)
}

func (c *orbitController) Advance(dt float32) {
	if c.spin != 0 {
		c.Orbit(c.spin*dt, 0)
	}
}

func (c *orbitController) Radius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orbit.radius
}

func (c *orbitController) SetRadius(radius float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orbit.radius = clamp(radius, c.radiusRange)
	c.place()
}

func (c *orbitController) Azimuth() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orbit.azimuth
}

func (c *orbitController) Elevation() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orbit.elevation
}

func clamp(v float32, bounds [2]float32) float32 {
	return max(bounds[0], min(v, bounds[1]))
}
