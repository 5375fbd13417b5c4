package backend

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
)

// CommandKind identifies a recorded command.
type CommandKind int

const (
	CommandClear CommandKind = iota
	CommandDraw
	CommandPresent
)

// ClearRecord captures one Clear call.
type ClearRecord struct {
	Framebuffer FramebufferID
	Color       *mgl32.Vec4
	Depth       *float32
}

// DrawRecord captures the complete state consumed by one draw call.
type DrawRecord struct {
	Framebuffer  FramebufferID
	Viewport     [2]uint32
	Program      ProgramID
	ProgramLabel string
	Pipeline     pipeline.Pipeline
	// Uniforms holds a copy of every uniform block of the program at draw time.
	Uniforms map[BindingKey][]byte
	// Textures maps each texture binding of the program to the texture it sampled.
	Textures    map[BindingKey]TextureID
	Attributes  map[uint32]VertexAttribute
	Indexed     bool
	IndexBuffer BufferID
	IndexFormat IndexFormat
	Count       uint32
}

// Uniform returns size bytes of a uniform block captured by the draw, or nil if out of range.
func (d DrawRecord) Uniform(group, binding, offset, size uint32) []byte {
	block := d.Uniforms[BindingKey{Group: group, Binding: binding}]
	if int(offset+size) > len(block) {
		return nil
	}
	return block[offset : offset+size]
}

// Command is one recorded command. Exactly one of Clear and Draw is set for the matching kinds.
type Command struct {
	Kind  CommandKind
	Clear *ClearRecord
	Draw  *DrawRecord
}

// ResourceCounts reports the number of live objects of each kind.
type ResourceCounts struct {
	Buffers      int
	Textures     int
	Framebuffers int
	Shaders      int
	Programs     int
}

type headlessBuffer struct {
	label string
	kind  BufferKind
	usage BufferUsage
	data  []byte
}

type headlessTexture struct {
	desc   TextureDesc
	layers [][]byte
}

type headlessShader struct {
	stage  ShaderStage
	source string
}

type headlessProgram struct {
	desc     ProgramDesc
	uniforms map[BindingKey][]byte
	units    map[BindingKey]uint32
}

// Headless is a Backend that executes no GPU work. It validates every command the way a driver would,
// keeps resource contents in memory and records clears and draws with a snapshot of their state.
type Headless struct {
	mu *sync.Mutex

	nextID uint32

	buffers      map[BufferID]*headlessBuffer
	textures     map[TextureID]*headlessTexture
	framebuffers map[FramebufferID]FramebufferDesc
	shaders      map[ShaderID]headlessShader
	programs     map[ProgramID]*headlessProgram

	surfaceWidth, surfaceHeight uint32

	framebuffer FramebufferID
	viewport    [2]uint32
	pipeline    pipeline.Pipeline
	program     ProgramID
	attributes  map[uint32]VertexAttribute
	units       map[uint32]TextureID

	commands []Command
	errs     []error
}

var _ Backend = &Headless{}

// NewHeadless creates a recording backend with a presentation surface of the given size.
//
// Parameters:
//   - width, height: the surface size in pixels
//
// Returns:
//   - *Headless: the recording backend
func NewHeadless(width, height uint32) *Headless {
	return &Headless{
		mu:            &sync.Mutex{},
		buffers:       make(map[BufferID]*headlessBuffer),
		textures:      make(map[TextureID]*headlessTexture),
		framebuffers:  make(map[FramebufferID]FramebufferDesc),
		shaders:       make(map[ShaderID]headlessShader),
		programs:      make(map[ProgramID]*headlessProgram),
		surfaceWidth:  width,
		surfaceHeight: height,
		viewport:      [2]uint32{width, height},
		pipeline:      pipeline.NewPipeline(),
		attributes:    make(map[uint32]VertexAttribute),
		units:         make(map[uint32]TextureID),
	}
}

func (h *Headless) id() uint32 {
	h.nextID++
	return h.nextID
}

func (h *Headless) fail(format string, args ...any) {
	err := fmt.Errorf(format, args...)
	common.Logger().Warn("headless backend: deferred error", "error", err)
	h.errs = append(h.errs, err)
}

func (h *Headless) CreateBuffer(label string, kind BufferKind, usage BufferUsage, size uint64) (BufferID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if size == 0 {
		return 0, fmt.Errorf("buffer %q: size must be greater than zero", label)
	}
	id := BufferID(h.id())
	h.buffers[id] = &headlessBuffer{label: label, kind: kind, usage: usage, data: make([]byte, size)}
	return id, nil
}

func (h *Headless) WriteBuffer(id BufferID, offset uint64, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf, ok := h.buffers[id]
	if !ok {
		return fmt.Errorf("buffer %d does not exist", id)
	}
	if offset+uint64(len(data)) > uint64(len(buf.data)) {
		return fmt.Errorf("buffer %q: write of %d bytes at %d exceeds size %d", buf.label, len(data), offset, len(buf.data))
	}
	copy(buf.data[offset:], data)
	return nil
}

func (h *Headless) ReleaseBuffer(id BufferID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.buffers[id]; !ok {
		common.Logger().Warn("headless backend: release of unknown buffer", "id", id)
		return
	}
	delete(h.buffers, id)
}

func (h *Headless) CreateTexture(desc TextureDesc) (TextureID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if desc.Width == 0 || desc.Height == 0 {
		return 0, fmt.Errorf("texture %q: size %dx%d is empty", desc.Label, desc.Width, desc.Height)
	}
	if desc.Type == TextureCube && desc.Width != desc.Height {
		return 0, fmt.Errorf("texture %q: cube faces must be square, got %dx%d", desc.Label, desc.Width, desc.Height)
	}

	layers := make([][]byte, desc.LayerCount())
	for i := range layers {
		layers[i] = make([]byte, int(desc.Width)*int(desc.Height)*desc.Format.BytesPerTexel())
	}
	id := TextureID(h.id())
	h.textures[id] = &headlessTexture{desc: desc, layers: layers}
	return id, nil
}

func (h *Headless) WriteTexture(id TextureID, layer uint32, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	tex, ok := h.textures[id]
	if !ok {
		return fmt.Errorf("texture %d does not exist", id)
	}
	if int(layer) >= len(tex.layers) {
		return fmt.Errorf("texture %q: layer %d out of range", tex.desc.Label, layer)
	}
	if len(data) != len(tex.layers[layer]) {
		return fmt.Errorf("texture %q: expected %d bytes, got %d", tex.desc.Label, len(tex.layers[layer]), len(data))
	}
	copy(tex.layers[layer], data)
	return nil
}

func (h *Headless) ReleaseTexture(id TextureID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.textures[id]; !ok {
		common.Logger().Warn("headless backend: release of unknown texture", "id", id)
		return
	}
	delete(h.textures, id)
	for unit, bound := range h.units {
		if bound == id {
			delete(h.units, unit)
		}
	}
}

func (h *Headless) CreateFramebuffer(desc FramebufferDesc) (FramebufferID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := ValidateFramebuffer(desc, func(id TextureID) (TextureDesc, bool) {
		tex, ok := h.textures[id]
		if !ok {
			return TextureDesc{}, false
		}
		return tex.desc, true
	})
	if err != nil {
		return 0, err
	}

	desc.Color = append([]Attachment(nil), desc.Color...)
	id := FramebufferID(h.id())
	h.framebuffers[id] = desc
	return id, nil
}

func (h *Headless) ReleaseFramebuffer(id FramebufferID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.framebuffers, id)
	if h.framebuffer == id {
		h.framebuffer = ScreenFramebuffer
	}
}

func (h *Headless) CompileShader(label string, stage ShaderStage, source string) (ShaderID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	marker := "@vertex"
	if stage == StageFragment {
		marker = "@fragment"
	}
	if !strings.Contains(source, marker) {
		return 0, fmt.Errorf("%s: no %s entry point", label, marker)
	}
	if strings.Count(source, "{") != strings.Count(source, "}") {
		return 0, fmt.Errorf("%s: unbalanced braces", label)
	}

	id := ShaderID(h.id())
	h.shaders[id] = headlessShader{stage: stage, source: source}
	return id, nil
}

func (h *Headless) ReleaseShader(id ShaderID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.shaders, id)
}

func (h *Headless) LinkProgram(desc ProgramDesc) (ProgramID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	vs, ok := h.shaders[desc.Vertex]
	if !ok || vs.stage != StageVertex {
		return 0, fmt.Errorf("program %q: missing vertex stage", desc.Label)
	}
	fs, ok := h.shaders[desc.Fragment]
	if !ok || fs.stage != StageFragment {
		return 0, fmt.Errorf("program %q: missing fragment stage", desc.Label)
	}

	p := &headlessProgram{
		desc:     desc,
		uniforms: make(map[BindingKey][]byte, len(desc.Uniforms)),
		units:    make(map[BindingKey]uint32, len(desc.Textures)),
	}
	for _, u := range desc.Uniforms {
		p.uniforms[BindingKey{Group: u.Group, Binding: u.Binding}] = make([]byte, u.Size)
	}

	id := ProgramID(h.id())
	h.programs[id] = p
	return id, nil
}

func (h *Headless) ReleaseProgram(id ProgramID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.programs, id)
	if h.program == id {
		h.program = 0
	}
}

func (h *Headless) ConfigureSurface(width, height uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.surfaceWidth, h.surfaceHeight = width, height
}

func (h *Headless) SurfaceSize() (uint32, uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.surfaceWidth, h.surfaceHeight
}

func (h *Headless) BindFramebuffer(id FramebufferID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.framebuffers[id]; !ok && id != ScreenFramebuffer {
		h.fail("bind of unknown framebuffer %d", id)
		return
	}
	h.framebuffer = id
}

func (h *Headless) Viewport(width, height uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.viewport = [2]uint32{width, height}
}

func (h *Headless) Clear(color *mgl32.Vec4, depth *float32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec := &ClearRecord{Framebuffer: h.framebuffer}
	if color != nil {
		c := *color
		rec.Color = &c
	}
	if depth != nil {
		d := *depth
		rec.Depth = &d
	}
	h.commands = append(h.commands, Command{Kind: CommandClear, Clear: rec})
}

func (h *Headless) SetPipeline(p pipeline.Pipeline) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.pipeline = p
}

func (h *Headless) UseProgram(id ProgramID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.programs[id]; !ok {
		h.fail("use of unknown program %d", id)
		return
	}
	h.program = id
}

func (h *Headless) SetUniform(loc UniformLocation, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.programs[h.program]
	if !ok {
		h.fail("uniform write with no program in use")
		return
	}
	block, ok := p.uniforms[BindingKey{Group: loc.Group, Binding: loc.Binding}]
	if !ok {
		h.fail("program %q has no uniform block @group(%d) @binding(%d)", p.desc.Label, loc.Group, loc.Binding)
		return
	}
	if int(loc.Offset)+len(data) > len(block) {
		h.fail("program %q: uniform write at %d overflows block of %d bytes", p.desc.Label, loc.Offset, len(block))
		return
	}
	copy(block[loc.Offset:], data)
}

func (h *Headless) SetTextureUnit(slot BindingKey, unit uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.programs[h.program]
	if !ok {
		h.fail("texture unit assignment with no program in use")
		return
	}
	p.units[slot] = unit
}

func (h *Headless) BindTexture(unit uint32, id TextureID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.textures[id]; !ok {
		h.fail("bind of unknown texture %d to unit %d", id, unit)
		return
	}
	h.units[unit] = id
}

func (h *Headless) SetVertexAttribute(location uint32, attr VertexAttribute) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.attributes[location] = attr
}

func (h *Headless) DrawIndexed(indices BufferID, format IndexFormat, count uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf, ok := h.buffers[indices]
	if !ok || buf.kind != BufferKindIndex {
		h.fail("draw with invalid index buffer %d", indices)
		return
	}
	if uint64(count)*format.Size() > uint64(len(buf.data)) {
		h.fail("draw of %d indices overruns index buffer %q", count, buf.label)
		return
	}

	rec, ok := h.snapshot()
	if !ok {
		return
	}
	rec.Indexed = true
	rec.IndexBuffer = indices
	rec.IndexFormat = format
	rec.Count = count
	h.commands = append(h.commands, Command{Kind: CommandDraw, Draw: rec})
}

func (h *Headless) Draw(count uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, ok := h.snapshot()
	if !ok {
		return
	}
	rec.Count = count
	h.commands = append(h.commands, Command{Kind: CommandDraw, Draw: rec})
}

// snapshot validates the current state against the program's interface and copies it into a DrawRecord.
func (h *Headless) snapshot() (*DrawRecord, bool) {
	p, ok := h.programs[h.program]
	if !ok {
		h.fail("draw with no program in use")
		return nil, false
	}

	rec := &DrawRecord{
		Framebuffer:  h.framebuffer,
		Viewport:     h.viewport,
		Program:      h.program,
		ProgramLabel: p.desc.Label,
		Pipeline:     h.pipeline,
		Uniforms:     make(map[BindingKey][]byte, len(p.uniforms)),
		Textures:     make(map[BindingKey]TextureID, len(p.desc.Textures)),
		Attributes:   make(map[uint32]VertexAttribute, len(p.desc.Attributes)),
	}

	for _, in := range p.desc.Attributes {
		attr, ok := h.attributes[in.Location]
		if !ok {
			h.fail("program %q: vertex input @location(%d) is not bound", p.desc.Label, in.Location)
			return nil, false
		}
		buf, ok := h.buffers[attr.Buffer]
		if !ok || buf.kind != BufferKindVertex {
			h.fail("program %q: vertex input @location(%d) points at invalid buffer %d", p.desc.Label, in.Location, attr.Buffer)
			return nil, false
		}
		if attr.Format != in.Format {
			h.fail("program %q: vertex input @location(%d) format mismatch", p.desc.Label, in.Location)
			return nil, false
		}
		rec.Attributes[in.Location] = attr
	}

	written := h.attachedTextures()
	for _, slot := range p.desc.Textures {
		key := BindingKey{Group: slot.Group, Binding: slot.Binding}
		unit := p.units[key]
		texID, ok := h.units[unit]
		if !ok {
			h.fail("program %q: texture @group(%d) @binding(%d) samples empty unit %d", p.desc.Label, slot.Group, slot.Binding, unit)
			return nil, false
		}
		tex := h.textures[texID]
		if tex.desc.Type != slot.Dimension {
			h.fail("program %q: texture @group(%d) @binding(%d) dimension mismatch", p.desc.Label, slot.Group, slot.Binding)
			return nil, false
		}
		if (slot.SampleKind == SampleDepth) != tex.desc.Format.IsDepth() {
			h.fail("program %q: texture @group(%d) @binding(%d) sample type mismatch", p.desc.Label, slot.Group, slot.Binding)
			return nil, false
		}
		if slot.Comparison && tex.desc.Sampler.Compare == CompareNone {
			h.fail("program %q: texture @group(%d) @binding(%d) needs a comparison sampler", p.desc.Label, slot.Group, slot.Binding)
			return nil, false
		}
		if _, feedback := written[texID]; feedback {
			h.fail("program %q: texture %q is sampled while attached to the bound framebuffer", p.desc.Label, tex.desc.Label)
			return nil, false
		}
		rec.Textures[key] = texID
	}

	for key, block := range p.uniforms {
		rec.Uniforms[key] = append([]byte(nil), block...)
	}
	return rec, true
}

func (h *Headless) attachedTextures() map[TextureID]struct{} {
	out := make(map[TextureID]struct{})
	fb, ok := h.framebuffers[h.framebuffer]
	if !ok {
		return out
	}
	for _, a := range fb.Color {
		out[a.Texture] = struct{}{}
	}
	if fb.Depth != nil {
		out[fb.Depth.Texture] = struct{}{}
	}
	return out
}

func (h *Headless) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := errors.Join(h.errs...)
	h.errs = nil
	return err
}

func (h *Headless) Present() error {
	err := h.Flush()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.commands = append(h.commands, Command{Kind: CommandPresent})
	return err
}

// Commands returns a copy of the recorded command list.
func (h *Headless) Commands() []Command {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]Command(nil), h.commands...)
}

// Draws returns the recorded draw calls in order.
func (h *Headless) Draws() []DrawRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []DrawRecord
	for _, c := range h.commands {
		if c.Kind == CommandDraw {
			out = append(out, *c.Draw)
		}
	}
	return out
}

// Clears returns the recorded clears in order.
func (h *Headless) Clears() []ClearRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	var out []ClearRecord
	for _, c := range h.commands {
		if c.Kind == CommandClear {
			out = append(out, *c.Clear)
		}
	}
	return out
}

// ResetCommands discards the recorded command list.
func (h *Headless) ResetCommands() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.commands = nil
}

// BufferData returns a copy of a buffer's contents.
func (h *Headless) BufferData(id BufferID) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	buf, ok := h.buffers[id]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), buf.data...), true
}

// TextureDesc returns the description of a live texture.
func (h *Headless) TextureDesc(id TextureID) (TextureDesc, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tex, ok := h.textures[id]
	if !ok {
		return TextureDesc{}, false
	}
	return tex.desc, true
}

// TextureData returns a copy of one layer of a texture.
func (h *Headless) TextureData(id TextureID, layer uint32) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tex, ok := h.textures[id]
	if !ok || int(layer) >= len(tex.layers) {
		return nil, false
	}
	return append([]byte(nil), tex.layers[layer]...), true
}

// Framebuffer returns the attachment set of a live framebuffer.
func (h *Headless) Framebuffer(id FramebufferID) (FramebufferDesc, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	desc, ok := h.framebuffers[id]
	return desc, ok
}

// Live returns the number of live objects of each kind.
func (h *Headless) Live() ResourceCounts {
	h.mu.Lock()
	defer h.mu.Unlock()

	return ResourceCounts{
		Buffers:      len(h.buffers),
		Textures:     len(h.textures),
		Framebuffers: len(h.framebuffers),
		Shaders:      len(h.shaders),
		Programs:     len(h.programs),
	}
}
