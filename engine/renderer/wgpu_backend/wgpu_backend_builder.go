package wgpu_backend

import "github.com/cogentcore/webgpu/wgpu"

// WGPUBackendBuilderOption is a functional option used to configure the WebGPU backend during construction.
type WGPUBackendBuilderOption func(*wgpuBackend)

// WithVSync selects FIFO presentation when enabled and immediate presentation otherwise.
//
// Parameters:
//   - enabled: whether presentation waits for vertical blank
//
// Returns:
//   - WGPUBackendBuilderOption: a function that sets the present mode
func WithVSync(enabled bool) WGPUBackendBuilderOption {
	return func(b *wgpuBackend) {
		if enabled {
			b.presentMode = wgpu.PresentModeFifo
		} else {
			b.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithForceFallbackAdapter requests the software fallback adapter.
//
// Parameters:
//   - force: whether to force the fallback adapter
//
// Returns:
//   - WGPUBackendBuilderOption: a function that sets the adapter preference
func WithForceFallbackAdapter(force bool) WGPUBackendBuilderOption {
	return func(b *wgpuBackend) {
		b.forceFallback = force
	}
}

// WithUniformChunkSize sets the size of each uniform arena chunk. Values smaller than the largest uniform
// block of a program make its draws fail.
//
// Parameters:
//   - size: the chunk size in bytes
//
// Returns:
//   - WGPUBackendBuilderOption: a function that sets the chunk size
func WithUniformChunkSize(size uint64) WGPUBackendBuilderOption {
	return func(b *wgpuBackend) {
		b.chunkSize = size
	}
}
