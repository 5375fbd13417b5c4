package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-shade/engine/camera"
	"github.com/Carmen-Shannon/oxy-shade/engine/game_object"
	"github.com/Carmen-Shannon/oxy-shade/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

type scene struct {
	mu *sync.RWMutex

	name    string
	cam     camera.Camera
	ambient mgl32.Vec3
	lights  []light.Light
	objects []game_object.GameObject

	frameLights []light.Light // reused by Lights
}

// Scene is the per-frame input of a renderer: the camera, the ambient light and the light list.
// It also tracks objects whose motion it advances and whose attached lights join the light list.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Camera returns the camera the scene is viewed through.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// Ambient returns the ambient light color added to every lit surface.
	//
	// Returns:
	//   - mgl32.Vec3: the ambient color
	Ambient() mgl32.Vec3

	// SetAmbient sets the ambient light color.
	//
	// Parameters:
	//   - color: the ambient color
	SetAmbient(color mgl32.Vec3)

	// AddLight appends a light to the scene. Order matters: renderers keep the first lights of each
	// type when there are more than they support.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// RemoveLight removes a light, preserving the order of the remaining lights.
	//
	// Parameters:
	//   - l: the light to remove
	//
	// Returns:
	//   - bool: true if the light was present
	RemoveLight(l light.Light) bool

	// AddObject registers an object for Advance. Its attached light, if any, joins the light list
	// after the explicit lights.
	//
	// Parameters:
	//   - obj: the object to track
	AddObject(obj game_object.GameObject)

	// RemoveObject stops tracking an object.
	//
	// Parameters:
	//   - obj: the object to remove
	//
	// Returns:
	//   - bool: true if the object was tracked
	RemoveObject(obj game_object.GameObject) bool

	// Lights returns the frame's lights: the explicit lights in insertion order followed by the
	// lights attached to enabled tracked objects. The slice is reused by the next call.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// Advance moves tracked objects and the camera controller forward in time and refreshes the
	// camera matrices.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Advance(dt float32)
}

var _ Scene = &scene{}

// NewScene creates a new Scene viewed through cam. NewScene panics if cam is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	s := &scene{
		mu:   &sync.RWMutex{},
		name: name,
		cam:  cam,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) Ambient() mgl32.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ambient
}

func (s *scene) SetAmbient(color mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambient = color
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.lights {
		if existing == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return true
		}
	}
	return false
}

func (s *scene) AddObject(obj game_object.GameObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, obj)
}

func (s *scene) RemoveObject(obj game_object.GameObject) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.objects {
		if existing == obj {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			return true
		}
	}
	return false
}

func (s *scene) Lights() []light.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameLights = append(s.frameLights[:0], s.lights...)
	for _, obj := range s.objects {
		if l := obj.Light(); l != nil && obj.Enabled() {
			s.frameLights = append(s.frameLights, l)
		}
	}
	return s.frameLights
}

func (s *scene) Advance(dt float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obj := range s.objects {
		obj.Advance(dt)
	}
	if ctrl := s.cam.Controller(); ctrl != nil {
		ctrl.Advance(dt)
	}
	s.cam.Update()
}
