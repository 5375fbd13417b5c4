package model

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/go-gl/mathgl/mgl32"
)

// encodeVec2s packs texture coordinates tightly as float32x2.
func encodeVec2s(values []mgl32.Vec2) []byte {
	buf := make([]byte, 0, len(values)*8)
	for _, v := range values {
		buf = common.AppendVec2(buf, v)
	}
	return buf
}

// encodeVec3s packs vectors tightly as float32x3 without the 16-byte padding uniform blocks use.
func encodeVec3s(values []mgl32.Vec3) []byte {
	buf := make([]byte, 0, len(values)*12)
	for _, v := range values {
		buf = common.AppendVec3(buf, v)
	}
	return buf
}

// encodeVec4s packs colors tightly as float32x4.
func encodeVec4s(values []mgl32.Vec4) []byte {
	buf := make([]byte, 0, len(values)*16)
	for _, v := range values {
		buf = common.AppendVec4(buf, v)
	}
	return buf
}

// encodeIndices picks the narrowest index format able to address vertexCount vertices and packs the indices,
// padding the data to a multiple of 4 bytes for buffer copy alignment.
func encodeIndices(indices []uint32, vertexCount int) (backend.IndexFormat, []byte) {
	if vertexCount > math.MaxUint16 {
		return backend.IndexUint32, common.Uint32sToBytes(indices)
	}
	buf := make([]byte, common.AlignUp(4, uint64(len(indices))*2))
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(idx))
	}
	return backend.IndexUint16, buf
}
