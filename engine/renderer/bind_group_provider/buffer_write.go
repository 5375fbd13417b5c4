package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BufferWrite is a staged queue write of Data into Buffer at Offset. Uniform values are staged during a
// frame and written in one batch before the frame's commands are submitted.
type BufferWrite struct {
	Buffer *wgpu.Buffer
	Offset uint64
	Data   []byte
}

// Apply writes every staged write through the queue in order.
//
// Parameters:
//   - queue: the device queue
//   - writes: the staged writes
func Apply(queue *wgpu.Queue, writes []BufferWrite) {
	for _, w := range writes {
		if w.Buffer == nil || len(w.Data) == 0 {
			continue
		}
		queue.WriteBuffer(w.Buffer, w.Offset, w.Data)
	}
}
