package wgpu_backend

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// pipelineKey identifies one render pipeline of a program.
type pipelineKey struct {
	state  string
	colors string
	depth  wgpu.TextureFormat
	vertex string
}

// uniformChunk is one uniform buffer of the arena and its CPU mirror.
type uniformChunk struct {
	buf  *wgpu.Buffer
	data []byte
	used uint64
}

// uniformArena hands out aligned regions for uniform block snapshots. Every draw reads its uniforms from
// its own region, so values written between draws of one submission stay distinct. The mirrors are
// written to the GPU in one batch right before the frame is submitted.
type uniformArena struct {
	device     *wgpu.Device
	size       uint64
	chunks     []*uniformChunk
	current    int
	generation uint64
}

func newUniformArena(device *wgpu.Device, size uint64) *uniformArena {
	return &uniformArena{device: device, size: size}
}

func (a *uniformArena) alloc(data []byte) (*uniformChunk, uint32, error) {
	need := uint64(len(data))
	for {
		if a.current < len(a.chunks) {
			c := a.chunks[a.current]
			off := align(c.used, uniformAlignment)
			if off+need <= a.size {
				copy(c.data[off:], data)
				c.used = off + need
				return c, uint32(off), nil
			}
			a.current++
			continue
		}
		buf, err := a.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("uniform arena %d", len(a.chunks)),
			Size:  a.size,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("uniform arena: %w", err)
		}
		a.chunks = append(a.chunks, &uniformChunk{buf: buf, data: make([]byte, a.size)})
	}
}

func (a *uniformArena) writes() []bind_group_provider.BufferWrite {
	var out []bind_group_provider.BufferWrite
	for _, c := range a.chunks {
		if c.used == 0 {
			continue
		}
		out = append(out, bind_group_provider.BufferWrite{Buffer: c.buf, Offset: 0, Data: c.data[:align(c.used, 4)]})
	}
	return out
}

func (a *uniformArena) reset() {
	for _, c := range a.chunks {
		c.used = 0
	}
	a.current = 0
	a.generation++
}

func (a *uniformArena) release() {
	for _, c := range a.chunks {
		c.buf.Release()
	}
	a.chunks = nil
}

func (b *wgpuBackend) BindFramebuffer(id backend.FramebufferID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.framebuffers[id]; !ok && id != backend.ScreenFramebuffer {
		b.fail("bind of unknown framebuffer %d", id)
		return
	}
	b.framebuffer = id
}

func (b *wgpuBackend) Viewport(width, height uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.viewport = [2]uint32{width, height}
}

func (b *wgpuBackend) Clear(color *mgl32.Vec4, depth *float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.beginPass(color, depth)
}

func (b *wgpuBackend) SetPipeline(p pipeline.Pipeline) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pipeline = p
}

func (b *wgpuBackend) UseProgram(id backend.ProgramID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.programs[id]; !ok {
		b.fail("use of unknown program %d", id)
		return
	}
	b.program = id
}

func (b *wgpuBackend) SetUniform(loc backend.UniformLocation, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[b.program]
	if !ok {
		b.fail("uniform write with no program in use")
		return
	}
	block, ok := p.uniforms[backend.BindingKey{Group: loc.Group, Binding: loc.Binding}]
	if !ok {
		b.fail("program %q has no uniform block @group(%d) @binding(%d)", p.desc.Label, loc.Group, loc.Binding)
		return
	}
	if int(loc.Offset)+len(data) > len(block.data) {
		b.fail("program %q: uniform write at %d overflows block of %d bytes", p.desc.Label, loc.Offset, len(block.data))
		return
	}
	copy(block.data[loc.Offset:], data)
	block.dirty = true
}

func (b *wgpuBackend) SetTextureUnit(slot backend.BindingKey, unit uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[b.program]
	if !ok {
		b.fail("texture unit assignment with no program in use")
		return
	}
	p.units[slot] = unit
}

func (b *wgpuBackend) BindTexture(unit uint32, id backend.TextureID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.textures[id]; !ok {
		b.fail("bind of unknown texture %d to unit %d", id, unit)
		return
	}
	b.units[unit] = id
}

func (b *wgpuBackend) SetVertexAttribute(location uint32, attr backend.VertexAttribute) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.attributes[location] = attr
}

func (b *wgpuBackend) DrawIndexed(indices backend.BufferID, format backend.IndexFormat, count uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, ok := b.buffers[indices]
	if !ok || buf.kind != backend.BufferKindIndex {
		b.fail("draw with invalid index buffer %d", indices)
		return
	}
	if uint64(count)*format.Size() > buf.size {
		b.fail("draw of %d indices overruns index buffer %d", count, indices)
		return
	}
	pass, ok := b.prepareDraw()
	if !ok {
		return
	}
	pass.SetIndexBuffer(buf.buf, indexFormat(format), 0, wgpu.WholeSize)
	pass.DrawIndexed(count, 1, 0, 0, 0)
}

func (b *wgpuBackend) Draw(count uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pass, ok := b.prepareDraw()
	if !ok {
		return
	}
	pass.Draw(count, 1, 0, 0)
}

// prepareDraw opens a pass on the bound framebuffer and sets the pipeline, bind groups, vertex buffers
// and viewport of the current state. Failures are deferred and skip the draw.
func (b *wgpuBackend) prepareDraw() (*wgpu.RenderPassEncoder, bool) {
	p, ok := b.programs[b.program]
	if !ok {
		b.fail("draw with no program in use")
		return nil, false
	}

	colorFormats, depthFormat, hasDepth := b.targetFormats()
	if len(colorFormats) != p.desc.ColorOutputs {
		b.fail("program %q writes %d color outputs into a framebuffer with %d", p.desc.Label, p.desc.ColorOutputs, len(colorFormats))
		return nil, false
	}

	buffers := make([]*wgpuBuffer, len(p.desc.Attributes))
	for i, in := range p.desc.Attributes {
		attr, ok := b.attributes[in.Location]
		if !ok {
			b.fail("program %q: vertex input %d is not bound", p.desc.Label, in.Location)
			return nil, false
		}
		buf, ok := b.buffers[attr.Buffer]
		if !ok || buf.kind != backend.BufferKindVertex {
			b.fail("program %q: vertex input %d reads invalid buffer %d", p.desc.Label, in.Location, attr.Buffer)
			return nil, false
		}
		if attr.Format != in.Format {
			b.fail("program %q: vertex input %d format mismatch", p.desc.Label, in.Location)
			return nil, false
		}
		buffers[i] = buf
	}

	if err := b.assignGroups(p); err != nil {
		b.fail("program %q: %w", p.desc.Label, err)
		return nil, false
	}

	pass, ok := b.ensurePass()
	if !ok {
		return nil, false
	}

	layouts := vertexLayouts(p.desc.Attributes, b.attributes)
	rp, err := b.renderPipeline(p, layouts, colorFormats, depthFormat, hasDepth)
	if err != nil {
		b.fail("program %q: %w", p.desc.Label, err)
		return nil, false
	}
	pass.SetPipeline(rp)

	for _, g := range p.groups {
		bg, err := g.BindGroup(b.device)
		if err != nil {
			b.fail("program %q: %w", p.desc.Label, err)
			return nil, false
		}
		var offsets []uint32
		for _, binding := range g.DynamicBindings() {
			offsets = append(offsets, p.uniforms[backend.BindingKey{Group: g.Group(), Binding: binding}].offset)
		}
		pass.SetBindGroup(g.Group(), bg, offsets)
	}

	for i, in := range p.desc.Attributes {
		attr := b.attributes[in.Location]
		pass.SetVertexBuffer(uint32(i), buffers[i].buf, attr.Offset, wgpu.WholeSize)
	}
	pass.SetViewport(0, 0, float32(b.viewport[0]), float32(b.viewport[1]), 0, 1)
	return pass, true
}

// assignGroups stages the program's uniform blocks and assigns the bound textures to its bind groups.
func (b *wgpuBackend) assignGroups(p *wgpuProgram) error {
	attached := b.attachedTextures()

	for key, block := range p.uniforms {
		if block.dirty || block.chunk == nil || block.generation != b.arena.generation {
			chunk, off, err := b.arena.alloc(block.data)
			if err != nil {
				return err
			}
			block.chunk, block.offset, block.generation, block.dirty = chunk, off, b.arena.generation, false
		}
		p.groups[key.Group].SetBuffer(key.Binding, block.chunk.buf, uint64(block.info.Size))
	}

	for _, slot := range p.desc.Textures {
		key := backend.BindingKey{Group: slot.Group, Binding: slot.Binding}
		unit := p.units[key]
		id, ok := b.units[unit]
		if !ok {
			return fmt.Errorf("texture @group(%d) @binding(%d) samples empty unit %d", slot.Group, slot.Binding, unit)
		}
		t := b.textures[id]
		if t.view == nil {
			return fmt.Errorf("texture %q is not sampleable", t.desc.Label)
		}
		if _, ok := attached[id]; ok {
			return fmt.Errorf("texture %q is sampled while attached to the bound framebuffer", t.desc.Label)
		}
		if t.desc.Type != slot.Dimension || t.desc.Format.IsDepth() != (slot.SampleKind == backend.SampleDepth) {
			return fmt.Errorf("texture %q does not match @group(%d) @binding(%d)", t.desc.Label, slot.Group, slot.Binding)
		}
		group := p.groups[slot.Group]
		group.SetTextureView(slot.Binding, t.view)
		if !slot.HasSampler {
			continue
		}
		sampler := t.sampler
		if slot.SampleKind == backend.SampleDepth && !slot.Comparison {
			s, err := b.nearestSampler(t)
			if err != nil {
				return err
			}
			sampler = s
		} else if slot.Comparison && t.desc.Sampler.Compare == backend.CompareNone {
			return fmt.Errorf("texture %q has no comparison sampler", t.desc.Label)
		}
		group.SetSampler(slot.SamplerBinding, sampler)
	}
	return nil
}

func (b *wgpuBackend) attachedTextures() map[backend.TextureID]struct{} {
	out := make(map[backend.TextureID]struct{})
	fb, ok := b.framebuffers[b.framebuffer]
	if !ok {
		return out
	}
	for _, a := range fb.desc.Color {
		out[a.Texture] = struct{}{}
	}
	if fb.desc.Depth != nil {
		out[fb.desc.Depth.Texture] = struct{}{}
	}
	return out
}

func (b *wgpuBackend) targetFormats() ([]wgpu.TextureFormat, wgpu.TextureFormat, bool) {
	if b.framebuffer == backend.ScreenFramebuffer {
		return []wgpu.TextureFormat{b.surfaceFormat}, screenDepth, true
	}
	fb := b.framebuffers[b.framebuffer]
	return fb.colorFormats, fb.depthFormat, fb.depth != nil
}

func (b *wgpuBackend) renderPipeline(p *wgpuProgram, layouts []wgpu.VertexBufferLayout, colorFormats []wgpu.TextureFormat, depthFormat wgpu.TextureFormat, hasDepth bool) (*wgpu.RenderPipeline, error) {
	state := b.pipeline
	key := pipelineKey{
		state:  state.Key(),
		colors: fmt.Sprint(colorFormats),
		vertex: layoutKey(layouts),
	}
	if hasDepth {
		key.depth = depthFormat
	}
	if rp, ok := p.pipelines[key]; ok {
		return rp, nil
	}

	mask := wgpu.ColorWriteMaskAll
	if !state.ColorWriteEnabled() {
		mask = wgpu.ColorWriteMask(0)
	}
	targets := make([]wgpu.ColorTargetState, len(colorFormats))
	for i, f := range colorFormats {
		targets[i] = wgpu.ColorTargetState{
			Format:    f,
			Blend:     blendState(state.BlendMode()),
			WriteMask: mask,
		}
	}

	var depthStencil *wgpu.DepthStencilState
	if hasDepth {
		compare := wgpu.CompareFunctionLess
		if !state.DepthTestEnabled() {
			compare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:              depthFormat,
			DepthWriteEnabled:   state.DepthWriteEnabled(),
			DepthCompare:        compare,
			DepthBias:           state.DepthBias(),
			DepthBiasSlopeScale: state.DepthBiasSlopeScale(),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	rp, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.desc.Label + " " + state.Key(),
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.vertex.module,
			EntryPoint: p.desc.VertexEntry,
			Buffers:    layouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.fragment.module,
			EntryPoint: p.desc.FragmentEntry,
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: frontFace(state.FrontFace()),
			CullMode:  cullMode(state.CullMode()),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return nil, fmt.Errorf("render pipeline: %w", err)
	}
	p.pipelines[key] = rp
	return rp, nil
}

// ensurePass returns the open pass if it targets the bound framebuffer and begins a loading pass otherwise.
func (b *wgpuBackend) ensurePass() (*wgpu.RenderPassEncoder, bool) {
	if b.pass != nil && b.passTarget == b.framebuffer {
		return b.pass, true
	}
	return b.beginPass(nil, nil)
}

// beginPass ends the open pass and begins one on the bound framebuffer, clearing the aspects given.
func (b *wgpuBackend) beginPass(color *mgl32.Vec4, depth *float32) (*wgpu.RenderPassEncoder, bool) {
	b.endPass()

	colors, depthView, err := b.targetViews()
	if err != nil {
		b.fail("framebuffer %d: %w", b.framebuffer, err)
		return nil, false
	}
	if b.encoder == nil {
		enc, err := b.device.CreateCommandEncoder(nil)
		if err != nil {
			b.fail("command encoder: %w", err)
			return nil, false
		}
		b.encoder = enc
	}

	desc := &wgpu.RenderPassDescriptor{}
	for _, v := range colors {
		a := wgpu.RenderPassColorAttachment{
			View:    v,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}
		if color != nil {
			a.LoadOp = wgpu.LoadOpClear
			a.ClearValue = wgpu.Color{R: float64(color[0]), G: float64(color[1]), B: float64(color[2]), A: float64(color[3])}
		}
		desc.ColorAttachments = append(desc.ColorAttachments, a)
	}
	if depthView != nil {
		d := &wgpu.RenderPassDepthStencilAttachment{
			View:         depthView,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		}
		if depth != nil {
			d.DepthLoadOp = wgpu.LoadOpClear
			d.DepthClearValue = *depth
		}
		desc.DepthStencilAttachment = d
	}

	b.pass = b.encoder.BeginRenderPass(desc)
	b.passTarget = b.framebuffer
	return b.pass, true
}

// targetViews returns the attachments of the bound framebuffer, acquiring the frame's surface texture
// on the first use of the screen.
func (b *wgpuBackend) targetViews() ([]*wgpu.TextureView, *wgpu.TextureView, error) {
	if b.framebuffer != backend.ScreenFramebuffer {
		fb := b.framebuffers[b.framebuffer]
		return fb.colors, fb.depth, nil
	}
	if b.frameView == nil {
		tex, err := b.surface.GetCurrentTexture()
		if err != nil {
			return nil, nil, fmt.Errorf("surface texture: %w", err)
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			tex.Release()
			return nil, nil, fmt.Errorf("surface view: %w", err)
		}
		b.frameTexture, b.frameView = tex, view
	}
	return []*wgpu.TextureView{b.frameView}, b.depthView, nil
}

func (b *wgpuBackend) endPass() {
	if b.pass == nil {
		return
	}
	b.pass.End()
	b.pass = nil
}

// submit writes the staged uniforms, submits the recorded commands and recycles the frame resources.
func (b *wgpuBackend) submit() {
	b.endPass()
	bind_group_provider.Apply(b.queue, b.arena.writes())

	if b.encoder != nil {
		cmd, err := b.encoder.Finish(nil)
		if err != nil {
			b.fail("finish commands: %w", err)
		} else {
			b.queue.Submit(cmd)
			cmd.Release()
		}
		b.encoder.Release()
		b.encoder = nil
	}

	for _, p := range b.programs {
		for _, g := range p.groups {
			g.ReleaseRetired()
		}
	}
	b.arena.reset()
}

func (b *wgpuBackend) releaseFrameTexture() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameTexture != nil {
		b.frameTexture.Release()
		b.frameTexture = nil
	}
}

func (b *wgpuBackend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.submit()
	return b.takeErrors()
}

func (b *wgpuBackend) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.submit()
	if b.frameTexture != nil {
		b.surface.Present()
		b.releaseFrameTexture()
	}
	return b.takeErrors()
}
