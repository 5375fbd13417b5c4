package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AppendFloat32 appends the little-endian bytes of a float32 to dst.
func AppendFloat32(dst []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
}

// AppendInt32 appends the little-endian bytes of an int32 to dst.
func AppendInt32(dst []byte, v int32) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(v))
}

// AppendVec2 appends the 8 bytes of a vec2<f32> to dst.
func AppendVec2(dst []byte, v mgl32.Vec2) []byte {
	return AppendFloat32(AppendFloat32(dst, v[0]), v[1])
}

// AppendVec3 appends the 12 bytes of a vec3<f32> to dst. Padding to the 16-byte WGSL
// alignment is the caller's concern.
func AppendVec3(dst []byte, v mgl32.Vec3) []byte {
	for _, c := range v {
		dst = AppendFloat32(dst, c)
	}
	return dst
}

// AppendVec4 appends the 16 bytes of a vec4<f32> to dst.
func AppendVec4(dst []byte, v mgl32.Vec4) []byte {
	for _, c := range v {
		dst = AppendFloat32(dst, c)
	}
	return dst
}

// AppendMat4 appends a column-major mat4x4<f32> (64 bytes) to dst.
func AppendMat4(dst []byte, m mgl32.Mat4) []byte {
	for _, c := range m {
		dst = AppendFloat32(dst, c)
	}
	return dst
}

// AppendMat3 appends a mat3x3<f32> using the WGSL uniform layout, where every column is
// padded to 16 bytes (48 bytes total).
func AppendMat3(dst []byte, m mgl32.Mat3) []byte {
	for col := 0; col < 3; col++ {
		dst = AppendVec3(dst, m.Col(col))
		dst = AppendFloat32(dst, 0)
	}
	return dst
}

// Uint32sToBytes encodes a uint32 slice as little-endian bytes.
//
// Parameters:
//   - values: the integers to encode
//
// Returns:
//   - []byte: 4 bytes per value
func Uint32sToBytes(values []uint32) []byte {
	out := make([]byte, 0, len(values)*4)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	return out
}

// Uint16sToBytes encodes a uint16 slice as little-endian bytes.
//
// Parameters:
//   - values: the integers to encode
//
// Returns:
//   - []byte: 2 bytes per value
func Uint16sToBytes(values []uint16) []byte {
	out := make([]byte, 0, len(values)*2)
	for _, v := range values {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return out
}

// BytesToFloat32s decodes little-endian bytes into float32 values. Trailing bytes that do
// not form a full value are ignored.
//
// Parameters:
//   - data: the encoded bytes
//
// Returns:
//   - []float32: the decoded values
func BytesToFloat32s(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
