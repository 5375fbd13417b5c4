// Package engine runs a renderer against a window: it owns the WebGPU backend, advances the scene at a
// fixed tick rate and renders and presents one frame per message loop iteration.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/profiler"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/wgpu_backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/scene"
	"github.com/Carmen-Shannon/oxy-shade/engine/window"
)

// maxTicksPerFrame bounds the catch-up ticks after a stall.
const maxTicksPerFrame = 8

// RendererFactory creates the engine's renderer once the backend and screen target exist.
type RendererFactory func(dev backend.Backend, output resource.RenderTarget) (renderer.Renderer, error)

// engine implements the Engine interface.
type engine struct {
	tickRateChannel chan time.Duration

	quitChannel chan struct{}
	quitOnce    sync.Once

	window         window.Window
	backendOptions []wgpu_backend.WGPUBackendBuilderOption
	dev            wgpu_backend.WGPUBackend
	output         resource.RenderTarget
	renderer       renderer.Renderer

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate   time.Duration
	renderFrameLimit time.Duration
	tickCallback     func(deltaTime float32)
	renderCallback   func(deltaTime float32)

	scene       scene.Scene
	lastFrame   time.Time
	accumulator time.Duration
}

// Engine drives a renderer in a window.
type Engine interface {
	// Window returns the window the engine renders into.
	//
	// Returns:
	//   - window.Window: the window
	Window() window.Window

	// Backend returns the GPU backend.
	//
	// Returns:
	//   - backend.Backend: the backend
	Backend() backend.Backend

	// Renderer returns the renderer created by the factory.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// SetScene sets the scene that is advanced and rendered each frame. Nil renders nothing.
	//
	// Parameters:
	//   - s: the scene
	SetScene(s scene.Scene)

	// Scene returns the current scene.
	//
	// Returns:
	//   - scene.Scene: the scene, or nil
	Scene() scene.Scene

	// EnableProfiler enables frame statistics in the log.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// SetTickRate sets the fixed update rate. It is safe to call from any goroutine.
	//
	// Parameters:
	//   - fps: ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers a function called after every fixed scene update.
	//
	// Parameters:
	//   - callback: function receiving the tick length in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers a function called after every presented frame.
	//
	// Parameters:
	//   - callback: function receiving the frame time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the frame rate.
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run runs the message loop on the calling goroutine until the window closes or Quit is called, then
	// disposes the renderer, the backend and the window.
	//
	// Returns:
	//   - error: an error if releasing the window fails
	Run() error

	// Quit stops Run at the next frame. Safe to call more than once and from any goroutine.
	Quit()
}

var _ Engine = &engine{}

// NewEngine opens the window (unless one is supplied), creates the WebGPU backend on its surface and
// builds the renderer with factory. NewEngine must be called on the goroutine that will call Run.
//
// Parameters:
//   - factory: creates the renderer drawing into the screen target
//   - options: variadic list of EngineBuilderOption functions
//
// Returns:
//   - Engine: the engine
//   - error: an error if the backend or the renderer cannot be created
func NewEngine(factory RendererFactory, options ...EngineBuilderOption) (Engine, error) {
	if factory == nil {
		panic("engine: nil renderer factory")
	}
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.window == nil {
		e.window = window.NewWindow()
	}

	width, height := e.window.Size()
	dev, err := wgpu_backend.NewWGPUBackend(e.window.SurfaceDescriptor(), width, height, e.backendOptions...)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.dev = dev
	e.output = resource.NewScreenTarget(dev, width, height)

	r, err := factory(dev, e.output)
	if err != nil {
		dev.Release()
		return nil, fmt.Errorf("engine: renderer: %w", err)
	}
	e.renderer = r

	if e.scene != nil {
		e.SetScene(e.scene)
	}
	e.window.SetResizeCallback(e.resize)
	e.window.SetUpdateCallback(e.frame)
	common.Logger().Info("engine created", "width", width, "height", height, "tick_rate", e.engineTickRate)
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Backend() backend.Backend {
	return e.dev
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) SetScene(s scene.Scene) {
	e.scene = s
	if s != nil {
		width, height := e.window.Size()
		s.Camera().SetAspect(float32(width) / float32(max(height, 1)))
	}
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Run() error {
	e.lastFrame = time.Now()
	e.window.ProcessMessages()

	e.renderer.Dispose()
	e.dev.Release()
	err := e.window.Close()
	common.Logger().Info("engine stopped")
	return err
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// resize resizes the renderer, which reconfigures the surface through its screen target. It runs inside
// event processing, between frames.
func (e *engine) resize(width, height uint32) {
	if err := e.renderer.Resize(width, height); err != nil {
		common.Logger().Error("engine: resize", "width", width, "height", height, "error", err)
		e.Quit()
		return
	}
	if e.scene != nil {
		e.scene.Camera().SetAspect(float32(width) / float32(height))
	}
	common.Logger().Info("engine resized", "width", width, "height", height)
}

// frame runs the fixed-rate updates due since the last frame, then renders and presents.
func (e *engine) frame() {
	select {
	case <-e.quitChannel:
		e.window.RequestClose()
		return
	case rate := <-e.tickRateChannel:
		e.engineTickRate = rate
	default:
	}

	now := time.Now()
	elapsed := now.Sub(e.lastFrame)
	e.lastFrame = now

	e.accumulator += elapsed
	step := float32(e.engineTickRate.Seconds())
	for ticks := 0; e.accumulator >= e.engineTickRate; ticks++ {
		if ticks == maxTicksPerFrame {
			common.Logger().Debug("engine: dropping tick backlog", "backlog", e.accumulator)
			e.accumulator = 0
			break
		}
		if e.scene != nil {
			e.scene.Advance(step)
		}
		if e.tickCallback != nil {
			e.tickCallback(step)
		}
		e.accumulator -= e.engineTickRate
	}

	if e.scene != nil {
		if err := e.renderer.Render(e.scene); err != nil {
			e.reportRenderError(err)
		}
	}
	if err := e.dev.Present(); err != nil {
		common.Logger().Warn("engine: present", "error", err)
	}

	if e.renderCallback != nil {
		e.renderCallback(float32(elapsed.Seconds()))
	}
	if e.profilingEnabled {
		e.profiler.Tick()
	}
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// reportRenderError logs a failed frame. Draws skipped on a missing binding leave the rest of the frame
// intact and are logged at a lower level than device errors.
func (e *engine) reportRenderError(err error) {
	var missing *shader.MissingBindingError
	if errors.As(err, &missing) {
		common.Logger().Warn("engine: frame rendered with skipped draws", "error", err)
		return
	}
	common.Logger().Error("engine: render", "error", err)
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	rate := tickInterval(fps)
	// replace a pending update rather than block
	select {
	case e.tickRateChannel <- rate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- rate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameInterval(fps)
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
