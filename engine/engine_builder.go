package engine

import (
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/wgpu_backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/scene"
	"github.com/Carmen-Shannon/oxy-shade/engine/window"
)

// EngineBuilderOption configures an engine before its window and backend are created.
type EngineBuilderOption func(*engine)

// WithProfiling starts the engine with the profiler logging frame statistics.
//
// Parameters:
//   - enabled: whether statistics are logged
//
// Returns:
//   - EngineBuilderOption: a function that sets profiling
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the fixed update rate. Values <= 0 select 60 ticks per second.
//
// Parameters:
//   - fps: scene advances per second
//
// Returns:
//   - EngineBuilderOption: a function that sets the tick rate
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(fps)
	}
}

// WithRenderFrameLimit sleeps after each presented frame so that at most fps frames are drawn per second.
// Values <= 0 draw as fast as presentation allows.
//
// Parameters:
//   - fps: the frame cap
//
// Returns:
//   - EngineBuilderOption: a function that sets the frame cap
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameInterval(fps)
	}
}

// WithWindow renders into a window the caller opened. The engine closes it when Run returns.
//
// Parameters:
//   - w: the open window
//
// Returns:
//   - EngineBuilderOption: a function that sets the window
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene sets the scene the first frame advances and renders.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - EngineBuilderOption: a function that sets the scene
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithBackendOptions forwards options to the WebGPU backend the engine creates.
//
// Parameters:
//   - options: backend options, e.g. wgpu_backend.WithVSync
//
// Returns:
//   - EngineBuilderOption: a function that appends backend options
func WithBackendOptions(options ...wgpu_backend.WGPUBackendBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.backendOptions = append(e.backendOptions, options...)
	}
}
