package bind_group_provider

import (
	"fmt"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// resourceSlot is the resource currently assigned to one binding of the group.
type resourceSlot struct {
	buffer  *wgpu.Buffer
	size    uint64
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
}

// bindGroupProvider is the implementation of the BindGroupProvider interface.
type bindGroupProvider struct {
	label   string
	group   uint32
	entries []wgpu.BindGroupLayoutEntry
	layout  *wgpu.BindGroupLayout

	slots     map[uint32]resourceSlot
	dirty     bool
	bindGroup *wgpu.BindGroup
	retired   []*wgpu.BindGroup
}

// BindGroupProvider owns the layout of one bind group of a linked program and the bind group built from
// the resources currently assigned to it. Assigning a different resource marks the group dirty; the next
// BindGroup call rebuilds it and retires the previous one until the commands using it are submitted.
type BindGroupProvider interface {
	// Label returns the debug label of the provider.
	Label() string

	// Group returns the bind group index the provider serves.
	Group() uint32

	// Layout returns the bind group layout.
	Layout() *wgpu.BindGroupLayout

	// Entries returns the layout entries sorted by binding.
	Entries() []wgpu.BindGroupLayoutEntry

	// DynamicBindings returns the bindings with a dynamic offset in the order SetBindGroup expects
	// their offsets.
	//
	// Returns:
	//   - []uint32: the binding indices in ascending order
	DynamicBindings() []uint32

	// SetBuffer assigns a uniform buffer region to a binding. The region starts at the dynamic offset
	// given to SetBindGroup.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer
	//   - size: the bound size in bytes
	SetBuffer(binding uint32, buf *wgpu.Buffer, size uint64)

	// SetTextureView assigns a texture view to a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - view: the texture view
	SetTextureView(binding uint32, view *wgpu.TextureView)

	// SetSampler assigns a sampler to a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler
	SetSampler(binding uint32, s *wgpu.Sampler)

	// BindGroup returns the bind group for the assigned resources, building it if the assignment changed.
	//
	// Parameters:
	//   - device: the device to build the bind group on
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group
	//   - error: an error naming the first unassigned binding, or the device error
	BindGroup(device *wgpu.Device) (*wgpu.BindGroup, error)

	// Invalidate forces the next BindGroup call to rebuild, used after an assigned resource is released.
	Invalidate()

	// ReleaseRetired releases the bind groups replaced since the previous call. Call it once the commands
	// recorded with them have been submitted.
	ReleaseRetired()

	// Release frees the layout and every bind group.
	Release()
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates the bind group layout of one group on the device.
//
// Parameters:
//   - device: the device to create the layout on
//   - entries: the layout entries of the group
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: the provider
//   - error: the layout creation error
func NewBindGroupProvider(device *wgpu.Device, entries []wgpu.BindGroupLayoutEntry, options ...BindGroupProviderOption) (BindGroupProvider, error) {
	p := &bindGroupProvider{
		label:   "bind group",
		entries: slices.Clone(entries),
		slots:   make(map[uint32]resourceSlot, len(entries)),
		dirty:   true,
	}
	for _, opt := range options {
		opt(p)
	}
	slices.SortFunc(p.entries, func(a, b wgpu.BindGroupLayoutEntry) int {
		return int(a.Binding) - int(b.Binding)
	})

	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   p.label,
		Entries: p.entries,
	})
	if err != nil {
		return nil, fmt.Errorf("bind group %d layout: %w", p.group, err)
	}
	p.layout = layout
	return p, nil
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Group() uint32 {
	return p.group
}

func (p *bindGroupProvider) Layout() *wgpu.BindGroupLayout {
	return p.layout
}

func (p *bindGroupProvider) Entries() []wgpu.BindGroupLayoutEntry {
	return p.entries
}

func (p *bindGroupProvider) DynamicBindings() []uint32 {
	var out []uint32
	for _, e := range p.entries {
		if e.Buffer.HasDynamicOffset {
			out = append(out, e.Binding)
		}
	}
	return out
}

func (p *bindGroupProvider) assign(binding uint32, slot resourceSlot) {
	if p.slots[binding] != slot {
		p.slots[binding] = slot
		p.dirty = true
	}
}

func (p *bindGroupProvider) SetBuffer(binding uint32, buf *wgpu.Buffer, size uint64) {
	p.assign(binding, resourceSlot{buffer: buf, size: size})
}

func (p *bindGroupProvider) SetTextureView(binding uint32, view *wgpu.TextureView) {
	p.assign(binding, resourceSlot{view: view})
}

func (p *bindGroupProvider) SetSampler(binding uint32, s *wgpu.Sampler) {
	p.assign(binding, resourceSlot{sampler: s})
}

func (p *bindGroupProvider) BindGroup(device *wgpu.Device) (*wgpu.BindGroup, error) {
	if !p.dirty && p.bindGroup != nil {
		return p.bindGroup, nil
	}

	entries := make([]wgpu.BindGroupEntry, len(p.entries))
	for i, e := range p.entries {
		slot, ok := p.slots[e.Binding]
		if !ok {
			return nil, fmt.Errorf("%s: @group(%d) @binding(%d) has no resource", p.label, p.group, e.Binding)
		}
		entries[i] = wgpu.BindGroupEntry{
			Binding:     e.Binding,
			Buffer:      slot.buffer,
			Size:        slot.size,
			TextureView: slot.view,
			Sampler:     slot.sampler,
		}
	}

	bg, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.label,
		Layout:  p.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.label, err)
	}
	if p.bindGroup != nil {
		p.retired = append(p.retired, p.bindGroup)
	}
	p.bindGroup = bg
	p.dirty = false
	return bg, nil
}

func (p *bindGroupProvider) Invalidate() {
	p.dirty = true
}

func (p *bindGroupProvider) ReleaseRetired() {
	for _, bg := range p.retired {
		bg.Release()
	}
	p.retired = p.retired[:0]
}

func (p *bindGroupProvider) Release() {
	p.ReleaseRetired()
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
	clear(p.slots)
}
