package resource

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
)

// buffer is the implementation of the Buffer interface.
type buffer struct {
	dev   backend.Backend
	label string
	kind  backend.BufferKind
	usage backend.BufferUsage

	id       backend.BufferID
	capacity uint64
	size     uint64

	// shadow mirrors the GPU contents of dynamic buffers so a reallocation can carry the written prefix over.
	shadow []byte
}

// Buffer is a GPU vertex or index buffer. The handle stays valid across reallocations; ID reports the
// GPU object currently backing it.
type Buffer interface {
	// ID returns the backend buffer currently backing this handle.
	//
	// Returns:
	//   - backend.BufferID: the current GPU buffer
	ID() backend.BufferID

	// Kind returns whether this is a vertex or index buffer.
	//
	// Returns:
	//   - backend.BufferKind: the buffer kind
	Kind() backend.BufferKind

	// Usage returns the static or dynamic usage hint.
	//
	// Returns:
	//   - backend.BufferUsage: the usage hint
	Usage() backend.BufferUsage

	// Capacity returns the allocated size in bytes.
	//
	// Returns:
	//   - uint64: the capacity in bytes
	Capacity() uint64

	// Size returns the number of bytes written so far (the highest written offset).
	//
	// Returns:
	//   - uint64: the written size in bytes
	Size() uint64

	// Update writes data at offset. Writes that fit the capacity happen in place. A dynamic buffer grows
	// by doubling when the write exceeds its capacity, keeping previously written bytes; a static buffer
	// returns an error instead.
	//
	// Parameters:
	//   - offset: destination offset in bytes
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: an error if the write cannot be performed
	Update(offset uint64, data []byte) error

	// Resize reallocates the buffer to exactly capacity bytes. Dynamic buffers keep the written prefix that
	// still fits; static buffers lose their contents.
	//
	// Parameters:
	//   - capacity: the new capacity in bytes
	//
	// Returns:
	//   - error: an error if the reallocation fails
	Resize(capacity uint64) error

	// Release frees the GPU buffer. The handle must not be used afterwards.
	Release()
}

var _ Buffer = &buffer{}

// NewBuffer creates a buffer initialized with data. The initial capacity is len(data) unless
// WithCapacity requests more.
//
// Parameters:
//   - dev: the backend that owns the buffer
//   - kind: vertex or index
//   - data: initial contents, may be empty when a capacity is given
//   - usage: static or dynamic
//   - options: variadic list of BufferBuilderOption functions
//
// Returns:
//   - Buffer: the new buffer
//   - error: an error if the allocation or initial upload fails
func NewBuffer(dev backend.Backend, kind backend.BufferKind, data []byte, usage backend.BufferUsage, options ...BufferBuilderOption) (Buffer, error) {
	if dev == nil {
		panic("resource: nil backend")
	}

	b := &buffer{
		dev:   dev,
		label: fmt.Sprintf("%s buffer", kind),
		kind:  kind,
		usage: usage,
	}
	for _, opt := range options {
		opt(b)
	}

	capacity := max(b.capacity, uint64(len(data)), 4)
	if err := b.allocate(common.AlignUp(4, capacity)); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := b.Update(0, data); err != nil {
			b.Release()
			return nil, err
		}
	}
	return b, nil
}

func (b *buffer) allocate(capacity uint64) error {
	id, err := b.dev.CreateBuffer(b.label, b.kind, b.usage, capacity)
	if err != nil {
		return fmt.Errorf("resource: failed to allocate %q (%d bytes): %w", b.label, capacity, err)
	}
	b.id = id
	b.capacity = capacity
	if b.usage == backend.BufferUsageDynamic {
		grown := make([]byte, capacity)
		copy(grown, b.shadow)
		b.shadow = grown
	}
	return nil
}

func (b *buffer) ID() backend.BufferID {
	return b.id
}

func (b *buffer) Kind() backend.BufferKind {
	return b.kind
}

func (b *buffer) Usage() backend.BufferUsage {
	return b.usage
}

func (b *buffer) Capacity() uint64 {
	return b.capacity
}

func (b *buffer) Size() uint64 {
	return b.size
}

func (b *buffer) Update(offset uint64, data []byte) error {
	end := offset + uint64(len(data))
	if end > b.capacity {
		if b.usage != backend.BufferUsageDynamic {
			return fmt.Errorf("resource: write of %d bytes at %d exceeds static %q capacity %d", len(data), offset, b.label, b.capacity)
		}
		grown := common.AlignUp(4, common.GrowCapacity(b.capacity, end))
		common.Logger().Debug("growing dynamic buffer", "label", b.label, "from", b.capacity, "to", grown)
		if err := b.reallocate(grown); err != nil {
			return err
		}
	}

	if err := b.dev.WriteBuffer(b.id, offset, data); err != nil {
		return fmt.Errorf("resource: failed to write %q: %w", b.label, err)
	}
	if b.shadow != nil {
		copy(b.shadow[offset:], data)
	}
	b.size = max(b.size, end)
	return nil
}

func (b *buffer) Resize(capacity uint64) error {
	capacity = common.AlignUp(4, max(capacity, 4))
	if capacity == b.capacity {
		return nil
	}
	if b.shadow != nil && uint64(len(b.shadow)) > capacity {
		b.shadow = b.shadow[:capacity]
	}
	if err := b.reallocate(capacity); err != nil {
		return err
	}
	if b.shadow == nil {
		b.size = 0
	}
	return nil
}

// reallocate replaces the GPU buffer and re-uploads the retained prefix of dynamic buffers.
func (b *buffer) reallocate(capacity uint64) error {
	old := b.id
	if err := b.allocate(capacity); err != nil {
		return err
	}
	b.dev.ReleaseBuffer(old)

	if b.shadow == nil {
		return nil
	}
	b.size = min(b.size, capacity)
	if b.size > 0 {
		if err := b.dev.WriteBuffer(b.id, 0, b.shadow[:b.size]); err != nil {
			return fmt.Errorf("resource: failed to restore %q after reallocation: %w", b.label, err)
		}
	}
	return nil
}

func (b *buffer) Release() {
	if b.id == 0 {
		return
	}
	b.dev.ReleaseBuffer(b.id)
	b.id = 0
	b.capacity = 0
	b.size = 0
	b.shadow = nil
}
