package material

import (
	"io/fs"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
)

// LibraryBuilderOption is a function that configures a library instance during construction.
type LibraryBuilderOption func(*library)

// WithFS is an option builder that sets the file system texture paths are resolved against. The default is
// the working directory.
//
// Parameters:
//   - fsys: the file system
//
// Returns:
//   - LibraryBuilderOption: a function that applies the file system to a library
func WithFS(fsys fs.FS) LibraryBuilderOption {
	return func(l *library) {
		l.fsys = fsys
	}
}

// WithWorkers is an option builder that sets how many images Preload decodes concurrently.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - LibraryBuilderOption: a function that applies the worker count to a library
func WithWorkers(n int) LibraryBuilderOption {
	return func(l *library) {
		l.workers = n
	}
}

// WithSampler is an option builder that sets the sampler of every loaded texture.
//
// Parameters:
//   - desc: the sampler description
//
// Returns:
//   - LibraryBuilderOption: a function that applies the sampler to a library
func WithSampler(desc backend.SamplerDesc) LibraryBuilderOption {
	return func(l *library) {
		l.sampler = desc
	}
}

// WithSRGB is an option builder that uploads loaded textures as sRGB-encoded color.
//
// Parameters:
//   - srgb: whether textures are sRGB encoded
//
// Returns:
//   - LibraryBuilderOption: a function that applies the color encoding to a library
func WithSRGB(srgb bool) LibraryBuilderOption {
	return func(l *library) {
		l.srgb = srgb
	}
}
