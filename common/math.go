package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ndcToTexture maps WebGPU normalized device coordinates (x, y in [-1, 1], z in [0, 1]) to
// texture space (u, v in [0, 1] with v pointing down, depth unchanged).
var ndcToTexture = mgl32.Mat4{
	0.5, 0, 0, 0,
	0, -0.5, 0, 0,
	0, 0, 1, 0,
	0.5, 0.5, 0, 1,
}

// NDCToTexture returns the fixed matrix converting clip-space positions (after the
// perspective divide) into shadow-map texture coordinates.
//
// Returns:
//   - mgl32.Mat4: the NDC to texture-space conversion matrix
func NDCToTexture() mgl32.Mat4 {
	return ndcToTexture
}

// PerspectiveZO creates a right-handed perspective projection matrix that maps view-space
// depth into the WebGPU clip-space range [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// OrthoZO creates a right-handed orthographic projection matrix compatible with WebGPU's
// clip-space convention: X/Y in [-1, 1], Z in [0, 1].
//
// Parameters:
//   - left, right: horizontal extent of the view volume
//   - bottom, top: vertical extent of the view volume
//   - near, far: depth extent of the view volume
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func OrthoZO(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	rl := right - left
	tb := top - bottom
	fn := far - near

	out := mgl32.Ident4()
	out[0] = 2.0 / rl
	out[5] = 2.0 / tb
	out[10] = -1.0 / fn
	out[12] = -(right + left) / rl
	out[13] = -(top + bottom) / tb
	out[14] = -near / fn
	return out
}

// NormalMatrix returns the inverse-transpose of the upper 3x3 of a model-view matrix, used to
// carry normals into view space under non-uniform scale. A singular input returns its
// upper 3x3 unchanged.
//
// Parameters:
//   - modelView: the combined model-view matrix
//
// Returns:
//   - mgl32.Mat3: the normal matrix
func NormalMatrix(modelView mgl32.Mat4) mgl32.Mat3 {
	m := modelView.Mat3()
	if m.Det() == 0 {
		return m
	}
	return m.Inv().Transpose()
}

// TransformDirection rotates a direction by the upper 3x3 of m and normalizes the result.
// A zero-length result is returned as-is.
//
// Parameters:
//   - m: the transform to apply
//   - dir: the direction to transform
//
// Returns:
//   - mgl32.Vec3: the transformed unit direction
func TransformDirection(m mgl32.Mat4, dir mgl32.Vec3) mgl32.Vec3 {
	out := m.Mul4x1(dir.Vec4(0)).Vec3()
	if out.Len() == 0 {
		return out
	}
	return out.Normalize()
}
