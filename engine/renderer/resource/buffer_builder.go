package resource

// BufferBuilderOption is a functional option used to configure a Buffer during construction.
type BufferBuilderOption func(*buffer)

// WithBufferLabel sets the debug label of the buffer.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - BufferBuilderOption: a function that sets the label
func WithBufferLabel(label string) BufferBuilderOption {
	return func(b *buffer) {
		b.label = label
	}
}

// WithCapacity reserves at least capacity bytes at creation.
//
// Parameters:
//   - capacity: the minimum initial capacity in bytes
//
// Returns:
//   - BufferBuilderOption: a function that sets the initial capacity
func WithCapacity(capacity uint64) BufferBuilderOption {
	return func(b *buffer) {
		b.capacity = capacity
	}
}
