package shading

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is a screen rectangle in normalized device coordinates.
type Bounds struct {
	Min, Max mgl32.Vec2
	// FullScreen is set when the camera is inside or too close to the light's sphere.
	FullScreen bool
}

// Contains reports whether an NDC point lies inside the rectangle.
func (b Bounds) Contains(p mgl32.Vec2) bool {
	if b.FullScreen {
		return true
	}
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] && p[1] >= b.Min[1] && p[1] <= b.Max[1]
}

// BillboardBounds returns the screen rectangle a point light's billboard covers. The billboard sits
// at the light's view depth and is sized to the silhouette of its influence sphere on that plane.
func BillboardBounds(view, projection mgl32.Mat4, position mgl32.Vec3, radius float32) Bounds {
	center := view.Mul4x1(position.Vec4(1)).Vec3()
	near := projection.At(2, 3) / projection.At(2, 2)
	d2 := center.Dot(center)
	r2 := radius * radius
	if d2 <= r2 || center[2]+radius > -near {
		return Bounds{Min: mgl32.Vec2{-1, -1}, Max: mgl32.Vec2{1, 1}, FullScreen: true}
	}

	half := radius * math32.Sqrt(d2/(d2-r2))
	lo := projection.Mul4x1(mgl32.Vec4{center[0] - half, center[1] - half, center[2], 1})
	hi := projection.Mul4x1(mgl32.Vec4{center[0] + half, center[1] + half, center[2], 1})
	return Bounds{
		Min: mgl32.Vec2{lo[0] / lo[3], lo[1] / lo[3]},
		Max: mgl32.Vec2{hi[0] / hi[3], hi[1] / hi[3]},
	}
}
