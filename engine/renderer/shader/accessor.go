package shader

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// Accessor derives one uniform value from a host state. Build one with the typed constructors below.
type Accessor[T any] struct {
	kind    string
	accepts func(wgslType string) bool
	value   func(dst []byte, state T) []byte
	texture func(state T) resource.Texture
}

func exactly(types ...string) func(string) bool {
	return func(t string) bool {
		for _, want := range types {
			if t == want {
				return true
			}
		}
		return false
	}
}

func arrayOf(elem string) func(string) bool {
	return func(t string) bool {
		return strings.HasPrefix(t, "array<"+elem+",")
	}
}

// Float binds an f32 uniform.
func Float[T any](get func(T) float32) Accessor[T] {
	return Accessor[T]{kind: "f32", accepts: exactly("f32"), value: func(dst []byte, s T) []byte {
		return common.AppendFloat32(dst, get(s))
	}}
}

// Int binds an i32 or u32 uniform.
func Int[T any](get func(T) int32) Accessor[T] {
	return Accessor[T]{kind: "i32", accepts: exactly("i32", "u32"), value: func(dst []byte, s T) []byte {
		return common.AppendInt32(dst, get(s))
	}}
}

// Vec2 binds a vec2f uniform.
func Vec2[T any](get func(T) mgl32.Vec2) Accessor[T] {
	return Accessor[T]{kind: "vec2f", accepts: exactly("vec2f"), value: func(dst []byte, s T) []byte {
		return common.AppendVec2(dst, get(s))
	}}
}

// Vec3 binds a vec3f uniform.
func Vec3[T any](get func(T) mgl32.Vec3) Accessor[T] {
	return Accessor[T]{kind: "vec3f", accepts: exactly("vec3f"), value: func(dst []byte, s T) []byte {
		return common.AppendVec3(dst, get(s))
	}}
}

// Vec4 binds a vec4f uniform.
func Vec4[T any](get func(T) mgl32.Vec4) Accessor[T] {
	return Accessor[T]{kind: "vec4f", accepts: exactly("vec4f"), value: func(dst []byte, s T) []byte {
		return common.AppendVec4(dst, get(s))
	}}
}

// Mat3 binds a mat3x3f uniform. Columns are padded to 16 bytes.
func Mat3[T any](get func(T) mgl32.Mat3) Accessor[T] {
	return Accessor[T]{kind: "mat3x3f", accepts: exactly("mat3x3f"), value: func(dst []byte, s T) []byte {
		return common.AppendMat3(dst, get(s))
	}}
}

// Mat4 binds a mat4x4f uniform.
func Mat4[T any](get func(T) mgl32.Mat4) Accessor[T] {
	return Accessor[T]{kind: "mat4x4f", accepts: exactly("mat4x4f"), value: func(dst []byte, s T) []byte {
		return common.AppendMat4(dst, get(s))
	}}
}

// Vec4Array binds an array<vec4f, N> uniform. Extra elements are dropped, missing ones are zero.
func Vec4Array[T any](get func(T) []mgl32.Vec4) Accessor[T] {
	return Accessor[T]{kind: "array<vec4f>", accepts: arrayOf("vec4f"), value: func(dst []byte, s T) []byte {
		for _, v := range get(s) {
			dst = common.AppendVec4(dst, v)
		}
		return dst
	}}
}

// Mat4Array binds an array<mat4x4f, N> uniform. Extra elements are dropped, missing ones are zero.
func Mat4Array[T any](get func(T) []mgl32.Mat4) Accessor[T] {
	return Accessor[T]{kind: "array<mat4x4f>", accepts: arrayOf("mat4x4f"), value: func(dst []byte, s T) []byte {
		for _, m := range get(s) {
			dst = common.AppendMat4(dst, m)
		}
		return dst
	}}
}

// Texture binds a texture uniform and its paired sampler.
func Texture[T any](get func(T) resource.Texture) Accessor[T] {
	return Accessor[T]{kind: "texture", texture: get}
}
