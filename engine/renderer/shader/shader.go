package shader

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/gogpu/naga"
)

// Directives are compile-time flags baked into both stages before compilation. A true bool defines the
// name as 1, a false bool leaves it undefined and an integer defines it as its value.
type Directives map[string]any

// AttributeInfo is a vertex input resolved at link time.
type AttributeInfo struct {
	Name     string
	Location uint32
	Type     string
	Format   backend.VertexFormat
}

// UniformInfo is a uniform value resolved at link time: a member of a var<uniform> struct, or a whole
// var<uniform> of non-struct type.
type UniformInfo struct {
	Name    string
	Group   uint32
	Binding uint32
	Offset  uint32
	Size    uint32
	Type    string
}

// TextureInfo is a texture uniform resolved at link time together with its paired "<name>Sampler" binding.
type TextureInfo struct {
	Name           string
	Group          uint32
	Binding        uint32
	HasSampler     bool
	SamplerBinding uint32
	Type           string
	Dimension      backend.TextureType
	Depth          bool
	Comparison     bool
}

// bindingRegistry is the per-program bookkeeping shared by every Binding declared on it.
type bindingRegistry struct {
	units      [scopeCount]uint32
	attributes map[string]bool
	uniforms   map[string]bool
	textures   map[string]bool
	// epoch changes whenever cached binding state may no longer match the device.
	epoch uint64
}

// unitBase returns the first texture unit of a scope: units are laid out target, node, material, geometry.
func (r *bindingRegistry) unitBase(scope Scope) uint32 {
	base := uint32(0)
	for s := Scope(0); s < scope; s++ {
		base += r.units[s]
	}
	return base
}

// deviceState tracks the program currently in use on a device and how many linked programs share it.
type deviceState struct {
	current  *program
	programs int
}

var (
	deviceMu     sync.Mutex
	deviceStates = make(map[backend.Backend]*deviceState)
)

// deviceStateFor returns the state of a device, or nil once its last program is released.
func deviceStateFor(dev backend.Backend) *deviceState {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	return deviceStates[dev]
}

func acquireDevice(dev backend.Backend) {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	st, ok := deviceStates[dev]
	if !ok {
		st = &deviceState{}
		deviceStates[dev] = st
	}
	st.programs++
}

// releaseDevice drops p from its device and forgets the device with its last program.
func releaseDevice(p *program) {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	st, ok := deviceStates[p.dev]
	if !ok {
		return
	}
	if st.current == p {
		st.current = nil
	}
	if st.programs--; st.programs <= 0 {
		delete(deviceStates, p.dev)
	}
}

// program is the implementation of the Program interface.
type program struct {
	dev   backend.Backend
	label string

	includes SourceProvider
	validate bool

	id               backend.ProgramID
	vertex, fragment backend.ShaderID
	sources          [2]string

	attributes   map[string]AttributeInfo
	uniforms     map[string]UniformInfo
	textures     map[string]TextureInfo
	colorOutputs int

	reg *bindingRegistry
}

// Program is a linked vertex+fragment program together with the names it exposes to bindings.
type Program interface {
	// Label returns the debug label of the program.
	Label() string

	// ID returns the backend program.
	ID() backend.ProgramID

	// Device returns the backend the program was linked on.
	Device() backend.Backend

	// Source returns the pre-processed source of one stage.
	//
	// Parameters:
	//   - stage: the stage
	//
	// Returns:
	//   - string: the WGSL that was compiled
	Source(stage backend.ShaderStage) string

	// Attribute looks up a vertex input by name.
	//
	// Parameters:
	//   - name: the vertex input struct field name
	//
	// Returns:
	//   - AttributeInfo: the resolved input
	//   - bool: false if the program has no such input
	Attribute(name string) (AttributeInfo, bool)

	// Uniform looks up a non-texture uniform by name.
	//
	// Parameters:
	//   - name: the uniform struct member name
	//
	// Returns:
	//   - UniformInfo: the resolved uniform
	//   - bool: false if the program has no such uniform
	Uniform(name string) (UniformInfo, bool)

	// Texture looks up a texture uniform by name.
	//
	// Parameters:
	//   - name: the texture variable name
	//
	// Returns:
	//   - TextureInfo: the resolved texture
	//   - bool: false if the program has no such texture
	Texture(name string) (TextureInfo, bool)

	// Attributes returns every vertex input ordered by location.
	Attributes() []AttributeInfo

	// Uniforms returns every non-texture uniform ordered by group, binding and offset.
	Uniforms() []UniformInfo

	// Textures returns every texture uniform ordered by group and binding.
	Textures() []TextureInfo

	// ColorOutputs returns the number of fragment color outputs.
	ColorOutputs() int

	// Use makes this the current program of its device. Switching programs invalidates the cached state
	// of every binding declared on this program.
	Use()

	// CheckBindings verifies that every vertex input and texture of the program has a declared binding.
	//
	// Returns:
	//   - error: a *MissingBindingError for the first undeclared input or texture, or nil
	CheckBindings() error

	// Release frees the program and its stages.
	Release()

	registry() *bindingRegistry
}

var _ Program = &program{}

// Declare pre-processes, compiles and links a program. Directives are injected as defines before the
// sources are expanded; reflection of the expanded WGSL resolves every attribute and uniform name.
//
// Parameters:
//   - dev: the backend to link on
//   - vertexSource: WGSL source containing the @vertex entry point
//   - fragmentSource: WGSL source containing the @fragment entry point
//   - directives: compile-time flags and values
//   - options: variadic list of ProgramBuilderOption functions
//
// Returns:
//   - Program: the linked program
//   - error: a *CompileError or *LinkError
func Declare(dev backend.Backend, vertexSource, fragmentSource string, directives Directives, options ...ProgramBuilderOption) (Program, error) {
	if dev == nil {
		panic("shader: nil backend")
	}

	p := &program{
		dev:      dev,
		label:    "program",
		includes: NewEmbeddedSourceProvider(),
		reg: &bindingRegistry{
			attributes: make(map[string]bool),
			uniforms:   make(map[string]bool),
			textures:   make(map[string]bool),
		},
	}
	for _, opt := range options {
		opt(p)
	}

	defines, err := directives.defines()
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", p.label, err)
	}

	stages := [2]backend.ShaderStage{backend.StageVertex, backend.StageFragment}
	raw := [2]string{vertexSource, fragmentSource}
	for i, stage := range stages {
		out, err := NewPreProcessor(defines, p.includes).Process(raw[i])
		if err != nil {
			return nil, &CompileError{Program: p.label, Stage: stage, Log: err.Error(), Err: err}
		}
		if p.validate {
			if _, err := naga.Compile(out); err != nil {
				return nil, &CompileError{Program: p.label, Stage: stage, Log: err.Error(), Err: err}
			}
		}
		p.sources[i] = out
	}

	desc, err := p.link(reflectStage(p.sources[0], backend.StageVertex), reflectStage(p.sources[1], backend.StageFragment))
	if err != nil {
		return nil, err
	}

	if p.vertex, err = dev.CompileShader(p.label+" vertex", backend.StageVertex, p.sources[0]); err != nil {
		return nil, &CompileError{Program: p.label, Stage: backend.StageVertex, Log: err.Error(), Err: err}
	}
	if p.fragment, err = dev.CompileShader(p.label+" fragment", backend.StageFragment, p.sources[1]); err != nil {
		dev.ReleaseShader(p.vertex)
		return nil, &CompileError{Program: p.label, Stage: backend.StageFragment, Log: err.Error(), Err: err}
	}

	desc.Vertex, desc.Fragment = p.vertex, p.fragment
	if p.id, err = dev.LinkProgram(desc); err != nil {
		dev.ReleaseShader(p.vertex)
		dev.ReleaseShader(p.fragment)
		return nil, &LinkError{Program: p.label, Reason: err.Error(), Err: err}
	}
	acquireDevice(dev)

	common.Logger().Debug("shader program linked",
		"label", p.label, "attributes", len(p.attributes), "uniforms", len(p.uniforms), "textures", len(p.textures))
	return p, nil
}

// defines converts directives into pre-processor defines.
func (d Directives) defines() (map[string]string, error) {
	out := make(map[string]string, len(d))
	for name, v := range d {
		switch val := v.(type) {
		case bool:
			if val {
				out[name] = "1"
			}
		case int:
			out[name] = strconv.Itoa(val)
		case int32:
			out[name] = strconv.FormatInt(int64(val), 10)
		case int64:
			out[name] = strconv.FormatInt(val, 10)
		case uint32:
			out[name] = strconv.FormatUint(uint64(val), 10)
		case uint:
			out[name] = strconv.FormatUint(uint64(val), 10)
		default:
			return nil, fmt.Errorf("directive %q has unsupported type %T", name, v)
		}
	}
	return out, nil
}

type mergedResource struct {
	decl  resourceDecl
	stage *stageReflection
}

type samplerDecl struct {
	binding    uint32
	comparison bool
}

// link checks that the two stages agree and resolves every name of the program's interface.
func (p *program) link(vs, fs *stageReflection) (backend.ProgramDesc, error) {
	fail := func(format string, args ...any) (backend.ProgramDesc, error) {
		return backend.ProgramDesc{}, &LinkError{Program: p.label, Reason: fmt.Sprintf(format, args...)}
	}

	if vs.entry == "" {
		return fail("vertex source has no @vertex entry point")
	}
	if fs.entry == "" {
		return fail("fragment source has no @fragment entry point")
	}

	produced := make(map[int]varying, len(vs.outputs))
	for _, out := range vs.outputs {
		produced[out.location] = out
	}
	for _, in := range fs.inputs {
		out, ok := produced[in.location]
		if !ok {
			return fail("fragment input %q at @location(%d) is not written by the vertex stage", in.name, in.location)
		}
		if out.typeName != in.typeName {
			return fail("@location(%d) is %s in the vertex stage but %s in the fragment stage", in.location, out.typeName, in.typeName)
		}
	}

	merged := make(map[backend.BindingKey]mergedResource)
	for _, stage := range []*stageReflection{vs, fs} {
		for _, decl := range stage.resources {
			key := backend.BindingKey{Group: decl.group, Binding: decl.binding}
			prev, ok := merged[key]
			if !ok {
				merged[key] = mergedResource{decl: decl, stage: stage}
				continue
			}
			if prev.decl.typeName != decl.typeName || prev.decl.addressSpace != decl.addressSpace {
				return fail("@group(%d) @binding(%d) is %q in the vertex stage but %q in the fragment stage",
					decl.group, decl.binding, prev.decl.typeName, decl.typeName)
			}
		}
	}
	keys := make([]backend.BindingKey, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b backend.BindingKey) int {
		return cmp.Or(cmp.Compare(a.Group, b.Group), cmp.Compare(a.Binding, b.Binding))
	})

	desc := backend.ProgramDesc{
		Label:         p.label,
		VertexEntry:   vs.entry,
		FragmentEntry: fs.entry,
		ColorOutputs:  len(fs.outputs),
	}
	p.attributes = make(map[string]AttributeInfo, len(vs.inputs))
	p.uniforms = make(map[string]UniformInfo)
	p.textures = make(map[string]TextureInfo)
	p.colorOutputs = len(fs.outputs)

	for _, in := range vs.inputs {
		format, ok := wgslVertexFormatMap[in.typeName]
		if !ok {
			return fail("vertex input %q has unsupported type %s", in.name, in.typeName)
		}
		p.attributes[in.name] = AttributeInfo{Name: in.name, Location: uint32(in.location), Type: in.typeName, Format: format}
		desc.Attributes = append(desc.Attributes, backend.VertexInput{Location: uint32(in.location), Format: format})
	}

	samplers := make(map[uint32]map[string]samplerDecl)
	var textures []resourceDecl
	for _, key := range keys {
		res := merged[key]
		decl := res.decl
		switch {
		case decl.addressSpace == "uniform":
			size, err := p.resolveUniformBlock(decl, res.stage)
			if err != nil {
				return backend.ProgramDesc{}, err
			}
			desc.Uniforms = append(desc.Uniforms, backend.UniformBlock{Group: decl.group, Binding: decl.binding, Size: size})
		case decl.addressSpace != "":
			return fail("%s %q: only uniform buffers are supported", decl.addressSpace, decl.name)
		case decl.typeName == "sampler" || decl.typeName == "sampler_comparison":
			if samplers[decl.group] == nil {
				samplers[decl.group] = make(map[string]samplerDecl)
			}
			samplers[decl.group][decl.name] = samplerDecl{binding: decl.binding, comparison: decl.typeName == "sampler_comparison"}
		case strings.HasPrefix(decl.typeName, "texture_"):
			textures = append(textures, decl)
		default:
			return fail("resource %q has unsupported type %s", decl.name, decl.typeName)
		}
	}

	for _, decl := range textures {
		base, _ := splitTypeParams(decl.typeName)
		dim, ok := wgslTextureDimensionMap[base]
		if !ok {
			return fail("texture %q has unsupported type %s", decl.name, decl.typeName)
		}
		info := TextureInfo{
			Name:      decl.name,
			Group:     decl.group,
			Binding:   decl.binding,
			Type:      decl.typeName,
			Dimension: dim,
			Depth:     strings.HasPrefix(base, "texture_depth_"),
		}
		if s, ok := samplers[decl.group][decl.name+"Sampler"]; ok {
			info.HasSampler = true
			info.SamplerBinding = s.binding
			info.Comparison = s.comparison
		}
		if _, dup := p.uniforms[decl.name]; dup {
			return fail("uniform %q is declared twice", decl.name)
		}
		p.textures[decl.name] = info

		kind := backend.SampleFloat
		if info.Depth {
			kind = backend.SampleDepth
		}
		desc.Textures = append(desc.Textures, backend.TextureSlot{
			Group:          info.Group,
			Binding:        info.Binding,
			HasSampler:     info.HasSampler,
			SamplerBinding: info.SamplerBinding,
			Dimension:      info.Dimension,
			SampleKind:     kind,
			Comparison:     info.Comparison,
		})
	}

	return desc, nil
}

// resolveUniformBlock registers the members of one var<uniform> and returns the block size.
func (p *program) resolveUniformBlock(decl resourceDecl, stage *stageReflection) (uint32, error) {
	add := func(info UniformInfo) error {
		if _, dup := p.uniforms[info.Name]; dup {
			return &LinkError{Program: p.label, Reason: fmt.Sprintf("uniform %q is declared twice", info.Name)}
		}
		p.uniforms[info.Name] = info
		return nil
	}

	if ps, ok := stage.structs[decl.typeName]; ok {
		layout, fields, ok := computeStructLayout(ps, stage.layouts)
		if !ok {
			return 0, &LinkError{Program: p.label, Reason: fmt.Sprintf("uniform block %q has a member of unsupported type", decl.name)}
		}
		for _, f := range fields {
			err := add(UniformInfo{
				Name:    f.name,
				Group:   decl.group,
				Binding: decl.binding,
				Offset:  uint32(f.offset),
				Size:    uint32(f.size),
				Type:    f.typeName,
			})
			if err != nil {
				return 0, err
			}
		}
		return uint32(common.AlignUp(16, layout.size)), nil
	}

	layout, ok := resolveTypeLayout(decl.typeName, stage.layouts)
	if !ok {
		return 0, &LinkError{Program: p.label, Reason: fmt.Sprintf("uniform %q has unsupported type %s", decl.name, decl.typeName)}
	}
	err := add(UniformInfo{Name: decl.name, Group: decl.group, Binding: decl.binding, Size: uint32(layout.size), Type: decl.typeName})
	return uint32(common.AlignUp(16, layout.size)), err
}

func (p *program) Label() string {
	return p.label
}

func (p *program) ID() backend.ProgramID {
	return p.id
}

func (p *program) Device() backend.Backend {
	return p.dev
}

func (p *program) Source(stage backend.ShaderStage) string {
	if stage == backend.StageFragment {
		return p.sources[1]
	}
	return p.sources[0]
}

func (p *program) Attribute(name string) (AttributeInfo, bool) {
	info, ok := p.attributes[name]
	return info, ok
}

func (p *program) Uniform(name string) (UniformInfo, bool) {
	info, ok := p.uniforms[name]
	return info, ok
}

func (p *program) Texture(name string) (TextureInfo, bool) {
	info, ok := p.textures[name]
	return info, ok
}

func (p *program) Attributes() []AttributeInfo {
	out := make([]AttributeInfo, 0, len(p.attributes))
	for _, a := range p.attributes {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b AttributeInfo) int { return cmp.Compare(a.Location, b.Location) })
	return out
}

func (p *program) Uniforms() []UniformInfo {
	out := make([]UniformInfo, 0, len(p.uniforms))
	for _, u := range p.uniforms {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b UniformInfo) int {
		return cmp.Or(cmp.Compare(a.Group, b.Group), cmp.Compare(a.Binding, b.Binding), cmp.Compare(a.Offset, b.Offset))
	})
	return out
}

func (p *program) Textures() []TextureInfo {
	out := make([]TextureInfo, 0, len(p.textures))
	for _, t := range p.textures {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b TextureInfo) int {
		return cmp.Or(cmp.Compare(a.Group, b.Group), cmp.Compare(a.Binding, b.Binding))
	})
	return out
}

func (p *program) ColorOutputs() int {
	return p.colorOutputs
}

func (p *program) Use() {
	st := deviceStateFor(p.dev)
	if st == nil || st.current == p {
		return
	}
	st.current = p
	p.dev.UseProgram(p.id)
	p.reg.epoch++
}

func (p *program) CheckBindings() error {
	for _, a := range p.Attributes() {
		if !p.reg.attributes[a.Name] {
			return &MissingBindingError{Program: p.label, Kind: "attribute", Name: a.Name}
		}
	}
	for _, t := range p.Textures() {
		if !p.reg.textures[t.Name] {
			return &MissingBindingError{Program: p.label, Kind: "texture", Name: t.Name}
		}
	}
	return nil
}

func (p *program) Release() {
	if p.id == 0 {
		return
	}
	releaseDevice(p)
	p.dev.ReleaseProgram(p.id)
	p.dev.ReleaseShader(p.vertex)
	p.dev.ReleaseShader(p.fragment)
	p.id = 0
}

func (p *program) registry() *bindingRegistry {
	return p.reg
}
