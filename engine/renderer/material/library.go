package material

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
)

// library is the implementation of the Library interface.
type library struct {
	dev     backend.Backend
	fsys    fs.FS
	workers int
	sampler backend.SamplerDesc
	srgb    bool

	mu        sync.Mutex
	textures  map[string]resource.Texture
	materials map[string]Material
	pool      worker.DynamicWorkerPool
}

// Library loads and caches textures by path and materials by name so that repeated requests share one
// instance.
type Library interface {
	// Texture returns the texture at path, decoding and uploading it on first use.
	//
	// Parameters:
	//   - path: the image path inside the library's file system
	//
	// Returns:
	//   - resource.Texture: the cached texture
	//   - error: an error if the image cannot be read, decoded or uploaded
	Texture(path string) (resource.Texture, error)

	// Preload decodes every uncached path in parallel and uploads the results. Paths that fail are reported
	// together and the remaining paths are still cached.
	//
	// Parameters:
	//   - paths: the image paths to load
	//
	// Returns:
	//   - error: the joined errors of all failed paths
	Preload(paths ...string) error

	// Material returns the material registered under name, building it on first use.
	//
	// Parameters:
	//   - name: the material name
	//   - build: creates the material options; it may call Texture on the library
	//
	// Returns:
	//   - Material: the cached material
	//   - error: an error returned by build
	Material(name string, build func(Library) ([]MaterialBuilderOption, error)) (Material, error)

	// Release frees every cached texture. Cached materials must not be used afterwards.
	Release()
}

var _ Library = &library{}

// NewLibrary creates a new Library uploading to the given device.
//
// Parameters:
//   - dev: the backend textures are created on
//   - options: variadic list of LibraryBuilderOption functions to configure the library
//
// Returns:
//   - Library: a new Library instance
func NewLibrary(dev backend.Backend, options ...LibraryBuilderOption) Library {
	l := &library{
		dev:     dev,
		fsys:    os.DirFS("."),
		workers: runtime.NumCPU(),
		sampler: backend.SamplerDesc{
			MinFilter: backend.FilterLinear,
			MagFilter: backend.FilterLinear,
			AddressU:  backend.AddressRepeat,
			AddressV:  backend.AddressRepeat,
		},
		textures:  make(map[string]resource.Texture),
		materials: make(map[string]Material),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *library) Texture(path string) (resource.Texture, error) {
	l.mu.Lock()
	tex, ok := l.textures[path]
	l.mu.Unlock()
	if ok {
		return tex, nil
	}
	img, err := l.decode(path)
	if err != nil {
		return nil, err
	}
	return l.upload(path, img)
}

func (l *library) Preload(paths ...string) error {
	pending := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	l.mu.Lock()
	for _, p := range paths {
		if _, ok := l.textures[p]; !ok && !seen[p] {
			seen[p] = true
			pending = append(pending, p)
		}
	}
	l.mu.Unlock()
	if len(pending) == 0 {
		return nil
	}

	images := make([]common.ImageData, len(pending))
	errs := make([]error, len(pending))
	pool := l.workerPool()
	var wg sync.WaitGroup
	for i, p := range pending {
		wg.Add(1)
		idx, path := i, p
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				images[idx], errs[idx] = l.decode(path)
				return nil, errs[idx]
			},
		})
	}
	wg.Wait()

	// Uploads stay on the calling goroutine since backends are not safe for concurrent use.
	for i, p := range pending {
		if errs[i] != nil {
			continue
		}
		if _, err := l.upload(p, images[i]); err != nil {
			errs[i] = err
		}
	}
	return errors.Join(errs...)
}

func (l *library) Material(name string, build func(Library) ([]MaterialBuilderOption, error)) (Material, error) {
	l.mu.Lock()
	m, ok := l.materials[name]
	l.mu.Unlock()
	if ok {
		return m, nil
	}
	opts, err := build(l)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", name, err)
	}
	m = NewMaterial(append([]MaterialBuilderOption{WithName(name)}, opts...)...)

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.materials[name]; ok {
		return existing, nil
	}
	l.materials[name] = m
	return m, nil
}

func (l *library) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for path, tex := range l.textures {
		tex.Release()
		delete(l.textures, path)
	}
	clear(l.materials)
}

func (l *library) workerPool() worker.DynamicWorkerPool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pool == nil {
		l.pool = worker.NewDynamicWorkerPool(max(l.workers, 1), 256, time.Second)
	}
	return l.pool
}

func (l *library) decode(path string) (common.ImageData, error) {
	f, err := l.fsys.Open(path)
	if err != nil {
		return common.ImageData{}, fmt.Errorf("texture %q: %w", path, err)
	}
	defer f.Close()
	img, err := common.DecodeImage(f)
	if err != nil {
		return common.ImageData{}, fmt.Errorf("texture %q: %w", path, err)
	}
	return img, nil
}

func (l *library) upload(path string, img common.ImageData) (resource.Texture, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if tex, ok := l.textures[path]; ok {
		return tex, nil
	}
	format := backend.FormatRGBA8
	if l.srgb {
		format = backend.FormatRGBA8SRGB
	}
	tex, err := resource.NewTexture(l.dev, backend.TextureDesc{
		Label:      path,
		Type:       backend.Texture2D,
		Width:      img.Width,
		Height:     img.Height,
		Format:     format,
		Sampler:    l.sampler,
		Sampleable: true,
	}, img.Pixels)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", path, err)
	}
	common.Logger().Debug("texture loaded", "path", path, "width", img.Width, "height", img.Height)
	l.textures[path] = tex
	return tex, nil
}
