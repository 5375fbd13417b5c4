// Package wgpu_backend implements the immediate-mode backend verbs on WebGPU.
package wgpu_backend

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	defaultChunkSize = 1 << 20
	uniformAlignment = 256
	screenDepth      = wgpu.TextureFormatDepth24Plus
)

type wgpuBuffer struct {
	buf  *wgpu.Buffer
	kind backend.BufferKind
	size uint64
}

type wgpuTexture struct {
	desc    backend.TextureDesc
	tex     *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
	// nearest replaces sampler where a depth texture is read through a non-filtering binding.
	nearest *wgpu.Sampler
	layers  map[uint32]*wgpu.TextureView
}

type wgpuFramebuffer struct {
	desc   backend.FramebufferDesc
	colors []*wgpu.TextureView
	depth  *wgpu.TextureView
	// formats of the color attachments followed by the depth format, if any
	colorFormats []wgpu.TextureFormat
	depthFormat  wgpu.TextureFormat
}

type wgpuShader struct {
	label  string
	stage  backend.ShaderStage
	module *wgpu.ShaderModule
}

// uniformBlock is the CPU copy of one uniform block of a program and where it was last staged.
type uniformBlock struct {
	info   backend.UniformBlock
	data   []byte
	dirty  bool
	chunk  *uniformChunk
	offset uint32
	// arena generation the chunk belongs to
	generation uint64
}

type wgpuProgram struct {
	desc      backend.ProgramDesc
	vertex    *wgpuShader
	fragment  *wgpuShader
	groups    []bind_group_provider.BindGroupProvider
	layout    *wgpu.PipelineLayout
	uniforms  map[backend.BindingKey]*uniformBlock
	units     map[backend.BindingKey]uint32
	pipelines map[pipelineKey]*wgpu.RenderPipeline
}

// wgpuBackend is the implementation of the WGPUBackend interface.
type wgpuBackend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	presentMode   wgpu.PresentMode
	forceFallback bool
	chunkSize     uint64

	surfaceFormat wgpu.TextureFormat
	width, height uint32
	depthTexture  *wgpu.Texture
	depthView     *wgpu.TextureView

	nextID       uint32
	buffers      map[backend.BufferID]*wgpuBuffer
	textures     map[backend.TextureID]*wgpuTexture
	framebuffers map[backend.FramebufferID]*wgpuFramebuffer
	shaders      map[backend.ShaderID]*wgpuShader
	programs     map[backend.ProgramID]*wgpuProgram

	// global state
	framebuffer backend.FramebufferID
	viewport    [2]uint32
	pipeline    pipeline.Pipeline
	program     backend.ProgramID
	attributes  map[uint32]backend.VertexAttribute
	units       map[uint32]backend.TextureID

	// frame state
	encoder       *wgpu.CommandEncoder
	pass          *wgpu.RenderPassEncoder
	passTarget    backend.FramebufferID
	frameTexture  *wgpu.Texture
	frameView     *wgpu.TextureView
	arena         *uniformArena

	errs []error
}

// WGPUBackend is a backend.Backend drawing through a WebGPU device into a window surface.
type WGPUBackend interface {
	backend.Backend

	// Device returns the WebGPU device.
	Device() *wgpu.Device

	// Release frees every resource, the surface and the device.
	Release()
}

var _ WGPUBackend = &wgpuBackend{}

// NewWGPUBackend requests an adapter and device compatible with the surface and configures the surface
// at the given size.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, for example from wgpuglfw.GetSurfaceDescriptor
//   - width, height: the initial surface size in pixels
//   - options: variadic list of WGPUBackendBuilderOption functions
//
// Returns:
//   - WGPUBackend: the backend
//   - error: an error if no adapter or device is available
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height uint32, options ...WGPUBackendBuilderOption) (WGPUBackend, error) {
	runtime.LockOSThread()

	b := &wgpuBackend{
		mu:           &sync.Mutex{},
		presentMode:  wgpu.PresentModeFifo,
		chunkSize:    defaultChunkSize,
		buffers:      make(map[backend.BufferID]*wgpuBuffer),
		textures:     make(map[backend.TextureID]*wgpuTexture),
		framebuffers: make(map[backend.FramebufferID]*wgpuFramebuffer),
		shaders:      make(map[backend.ShaderID]*wgpuShader),
		programs:     make(map[backend.ProgramID]*wgpuProgram),
		pipeline:     pipeline.NewPipeline(),
		attributes:   make(map[uint32]backend.VertexAttribute),
		units:        make(map[uint32]backend.TextureID),
	}
	for _, opt := range options {
		opt(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallback,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("wgpu backend: request adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "oxy-shade device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("wgpu backend: request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()
	b.arena = newUniformArena(device, b.chunkSize)

	b.configure(width, height)
	common.Logger().Info("wgpu backend created", "width", width, "height", height, "format", b.surfaceFormat)
	return b, nil
}

func (b *wgpuBackend) id() uint32 {
	b.nextID++
	return b.nextID
}

func (b *wgpuBackend) fail(format string, args ...any) {
	err := fmt.Errorf(format, args...)
	common.Logger().Warn("wgpu backend: deferred error", "error", err)
	b.errs = append(b.errs, err)
}

func (b *wgpuBackend) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuBackend) CreateBuffer(label string, kind backend.BufferKind, usage backend.BufferUsage, size uint64) (backend.BufferID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	flags := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	if kind == backend.BufferKindIndex {
		flags = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  align(max(size, 4), 4),
		Usage: flags,
	})
	if err != nil {
		return 0, fmt.Errorf("buffer %q: %w", label, err)
	}
	id := backend.BufferID(b.id())
	b.buffers[id] = &wgpuBuffer{buf: buf, kind: kind, size: size}
	return id, nil
}

func (b *wgpuBackend) WriteBuffer(id backend.BufferID, offset uint64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, ok := b.buffers[id]
	if !ok {
		return fmt.Errorf("write to unknown buffer %d", id)
	}
	if offset+uint64(len(data)) > buf.size {
		return fmt.Errorf("write of %d bytes at %d overflows buffer %d of %d bytes", len(data), offset, id, buf.size)
	}
	if offset%4 != 0 {
		return fmt.Errorf("write to buffer %d at unaligned offset %d", id, offset)
	}
	if len(data)%4 != 0 {
		padded := make([]byte, align(uint64(len(data)), 4))
		copy(padded, data)
		data = padded
	}
	b.queue.WriteBuffer(buf.buf, offset, data)
	return nil
}

func (b *wgpuBackend) ReleaseBuffer(id backend.BufferID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buf, ok := b.buffers[id]; ok {
		buf.buf.Release()
		delete(b.buffers, id)
	}
}

func (b *wgpuBackend) CreateTexture(desc backend.TextureDesc) (backend.TextureID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if desc.Width == 0 || desc.Height == 0 {
		return 0, fmt.Errorf("texture %q: zero size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	desc.Layers = desc.LayerCount()

	var usage wgpu.TextureUsage
	if desc.Sampleable {
		usage |= wgpu.TextureUsageTextureBinding
	}
	if desc.Renderable {
		usage |= wgpu.TextureUsageRenderAttachment
	}
	if !desc.Format.IsDepth() {
		usage |= wgpu.TextureUsageCopyDst
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     usage,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: desc.Layers,
		},
		Format:        textureFormat(desc.Format),
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return 0, fmt.Errorf("texture %q: %w", desc.Label, err)
	}

	t := &wgpuTexture{desc: desc, tex: tex, layers: make(map[uint32]*wgpu.TextureView)}
	if desc.Sampleable {
		if t.view, err = tex.CreateView(&wgpu.TextureViewDescriptor{
			Label:           desc.Label,
			Format:          textureFormat(desc.Format),
			Dimension:       viewDimension(desc.Type),
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  0,
			ArrayLayerCount: desc.Layers,
			Aspect:          wgpu.TextureAspectAll,
		}); err != nil {
			b.releaseTexture(t)
			return 0, fmt.Errorf("texture %q: view: %w", desc.Label, err)
		}
		if t.sampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
			Label:         desc.Label,
			AddressModeU:  addressMode(desc.Sampler.AddressU),
			AddressModeV:  addressMode(desc.Sampler.AddressV),
			AddressModeW:  wgpu.AddressModeClampToEdge,
			MagFilter:     filterMode(desc.Sampler.MagFilter),
			MinFilter:     filterMode(desc.Sampler.MinFilter),
			MipmapFilter:  wgpu.MipmapFilterModeNearest,
			LodMinClamp:   0,
			LodMaxClamp:   32,
			MaxAnisotropy: 1,
			Compare:       compareFunction(desc.Sampler.Compare),
		}); err != nil {
			b.releaseTexture(t)
			return 0, fmt.Errorf("texture %q: sampler: %w", desc.Label, err)
		}
	}

	id := backend.TextureID(b.id())
	b.textures[id] = t
	return id, nil
}

func (b *wgpuBackend) WriteTexture(id backend.TextureID, layer uint32, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.textures[id]
	if !ok {
		return fmt.Errorf("write to unknown texture %d", id)
	}
	if t.desc.Format.IsDepth() {
		return fmt.Errorf("texture %q: depth textures cannot be written", t.desc.Label)
	}
	if layer >= t.desc.Layers {
		return fmt.Errorf("texture %q: layer %d out of %d", t.desc.Label, layer, t.desc.Layers)
	}
	bpt := uint32(t.desc.Format.BytesPerTexel())
	if want := int(t.desc.Width * t.desc.Height * bpt); len(data) != want {
		return fmt.Errorf("texture %q: %d bytes for a %dx%d layer, want %d", t.desc.Label, len(data), t.desc.Width, t.desc.Height, want)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{Z: layer},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  t.desc.Width * bpt,
			RowsPerImage: t.desc.Height,
		},
		&wgpu.Extent3D{
			Width:              t.desc.Width,
			Height:             t.desc.Height,
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

func (b *wgpuBackend) ReleaseTexture(id backend.TextureID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.textures[id]; ok {
		if b.encoder != nil {
			b.submit()
		}
		b.releaseTexture(t)
		delete(b.textures, id)
		for unit, bound := range b.units {
			if bound == id {
				delete(b.units, unit)
			}
		}
		// bind groups may still reference the freed views
		for _, p := range b.programs {
			for _, g := range p.groups {
				g.Invalidate()
			}
		}
	}
}

func (b *wgpuBackend) releaseTexture(t *wgpuTexture) {
	for _, v := range t.layers {
		v.Release()
	}
	clear(t.layers)
	for _, s := range []*wgpu.Sampler{t.sampler, t.nearest} {
		if s != nil {
			s.Release()
		}
	}
	if t.view != nil {
		t.view.Release()
	}
	t.tex.Release()
}

// layerView returns the single-layer 2D view a framebuffer attaches.
func (b *wgpuBackend) layerView(t *wgpuTexture, layer uint32) (*wgpu.TextureView, error) {
	if v, ok := t.layers[layer]; ok {
		return v, nil
	}
	v, err := t.tex.CreateView(&wgpu.TextureViewDescriptor{
		Label:           fmt.Sprintf("%s layer %d", t.desc.Label, layer),
		Format:          textureFormat(t.desc.Format),
		Dimension:       wgpu.TextureViewDimension2D,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  layer,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspectAll,
	})
	if err != nil {
		return nil, err
	}
	t.layers[layer] = v
	return v, nil
}

// nearestSampler returns a sampler with the texture's addressing and nearest filtering.
func (b *wgpuBackend) nearestSampler(t *wgpuTexture) (*wgpu.Sampler, error) {
	if t.nearest != nil {
		return t.nearest, nil
	}
	s, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         t.desc.Label + " nearest",
		AddressModeU:  addressMode(t.desc.Sampler.AddressU),
		AddressModeV:  addressMode(t.desc.Sampler.AddressV),
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, err
	}
	t.nearest = s
	return s, nil
}

func (b *wgpuBackend) CreateFramebuffer(desc backend.FramebufferDesc) (backend.FramebufferID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	lookup := func(id backend.TextureID) (backend.TextureDesc, bool) {
		t, ok := b.textures[id]
		if !ok {
			return backend.TextureDesc{}, false
		}
		return t.desc, true
	}
	if err := backend.ValidateFramebuffer(desc, lookup); err != nil {
		return 0, err
	}

	fb := &wgpuFramebuffer{desc: desc}
	for _, a := range desc.Color {
		t := b.textures[a.Texture]
		v, err := b.layerView(t, a.Layer)
		if err != nil {
			return 0, fmt.Errorf("framebuffer %q: %w", desc.Label, err)
		}
		fb.colors = append(fb.colors, v)
		fb.colorFormats = append(fb.colorFormats, textureFormat(t.desc.Format))
	}
	if desc.Depth != nil {
		t := b.textures[desc.Depth.Texture]
		v, err := b.layerView(t, desc.Depth.Layer)
		if err != nil {
			return 0, fmt.Errorf("framebuffer %q: %w", desc.Label, err)
		}
		fb.depth = v
		fb.depthFormat = textureFormat(t.desc.Format)
	}

	id := backend.FramebufferID(b.id())
	b.framebuffers[id] = fb
	return id, nil
}

func (b *wgpuBackend) ReleaseFramebuffer(id backend.FramebufferID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.passTarget == id && b.pass != nil {
		b.endPass()
	}
	delete(b.framebuffers, id)
	if b.framebuffer == id {
		b.framebuffer = backend.ScreenFramebuffer
	}
}

func (b *wgpuBackend) CompileShader(label string, stage backend.ShaderStage, source string) (backend.ShaderID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("%s shader %q: %w", stage, label, err)
	}
	id := backend.ShaderID(b.id())
	b.shaders[id] = &wgpuShader{label: label, stage: stage, module: module}
	return id, nil
}

func (b *wgpuBackend) ReleaseShader(id backend.ShaderID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.shaders[id]; ok {
		s.module.Release()
		delete(b.shaders, id)
	}
}

func (b *wgpuBackend) LinkProgram(desc backend.ProgramDesc) (backend.ProgramID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vs, ok := b.shaders[desc.Vertex]
	if !ok || vs.stage != backend.StageVertex {
		return 0, fmt.Errorf("program %q: missing vertex stage", desc.Label)
	}
	fs, ok := b.shaders[desc.Fragment]
	if !ok || fs.stage != backend.StageFragment {
		return 0, fmt.Errorf("program %q: missing fragment stage", desc.Label)
	}

	p := &wgpuProgram{
		desc:      desc,
		vertex:    vs,
		fragment:  fs,
		uniforms:  make(map[backend.BindingKey]*uniformBlock, len(desc.Uniforms)),
		units:     make(map[backend.BindingKey]uint32, len(desc.Textures)),
		pipelines: make(map[pipelineKey]*wgpu.RenderPipeline),
	}
	for _, u := range desc.Uniforms {
		if uint64(u.Size) > b.chunkSize {
			return 0, fmt.Errorf("program %q: uniform block @group(%d) @binding(%d) of %d bytes exceeds the arena chunk", desc.Label, u.Group, u.Binding, u.Size)
		}
		p.uniforms[backend.BindingKey{Group: u.Group, Binding: u.Binding}] = &uniformBlock{
			info:  u,
			data:  make([]byte, u.Size),
			dirty: true,
		}
	}

	entries := layoutEntries(desc)
	groupCount := uint32(0)
	for g := range entries {
		groupCount = max(groupCount, g+1)
	}

	layouts := make([]*wgpu.BindGroupLayout, groupCount)
	for g := uint32(0); g < groupCount; g++ {
		provider, err := bind_group_provider.NewBindGroupProvider(b.device, entries[g],
			bind_group_provider.WithLabel(fmt.Sprintf("%s group %d", desc.Label, g)),
			bind_group_provider.WithGroup(g),
		)
		if err != nil {
			p.release()
			return 0, fmt.Errorf("program %q: %w", desc.Label, err)
		}
		p.groups = append(p.groups, provider)
		layouts[g] = provider.Layout()
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		p.release()
		return 0, fmt.Errorf("program %q: pipeline layout: %w", desc.Label, err)
	}
	p.layout = layout

	id := backend.ProgramID(b.id())
	b.programs[id] = p
	return id, nil
}

func (p *wgpuProgram) release() {
	for _, rp := range p.pipelines {
		rp.Release()
	}
	clear(p.pipelines)
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
	for _, g := range p.groups {
		g.Release()
	}
	p.groups = nil
}

func (b *wgpuBackend) ReleaseProgram(id backend.ProgramID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.programs[id]; ok {
		if b.pass != nil {
			// recorded draws reference the program's bind groups
			b.submit()
		}
		p.release()
		delete(b.programs, id)
	}
	if b.program == id {
		b.program = 0
	}
}

func (b *wgpuBackend) ConfigureSurface(width, height uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.configure(width, height)
}

func (b *wgpuBackend) configure(width, height uint32) {
	width, height = max(width, 1), max(height, 1)
	if b.pass != nil || b.encoder != nil {
		b.submit()
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.depthView != nil {
		b.depthView.Release()
		b.depthTexture.Release()
	}
	depth, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "screen depth",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        screenDepth,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		b.fail("screen depth texture: %w", err)
		return
	}
	view, err := depth.CreateView(nil)
	if err != nil {
		depth.Release()
		b.fail("screen depth view: %w", err)
		return
	}
	b.depthTexture, b.depthView = depth, view
	b.width, b.height = width, height
}

func (b *wgpuBackend) SurfaceSize() (uint32, uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.width, b.height
}

func (b *wgpuBackend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.encoder != nil {
		b.endPass()
		b.encoder.Release()
		b.encoder = nil
	}
	b.releaseFrameTexture()
	for id, p := range b.programs {
		p.release()
		delete(b.programs, id)
	}
	for id, s := range b.shaders {
		s.module.Release()
		delete(b.shaders, id)
	}
	clear(b.framebuffers)
	for id, t := range b.textures {
		b.releaseTexture(t)
		delete(b.textures, id)
	}
	for id, buf := range b.buffers {
		buf.buf.Release()
		delete(b.buffers, id)
	}
	if b.arena != nil {
		b.arena.release()
	}
	if b.depthView != nil {
		b.depthView.Release()
		b.depthTexture.Release()
		b.depthView, b.depthTexture = nil, nil
	}
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
	b.queue, b.device, b.adapter, b.surface, b.instance = nil, nil, nil, nil, nil
}

// takeErrors returns and clears the deferred errors.
func (b *wgpuBackend) takeErrors() error {
	err := errors.Join(b.errs...)
	b.errs = b.errs[:0]
	return err
}
