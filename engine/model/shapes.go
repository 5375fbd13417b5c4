package model

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sphere generates a UV sphere centered on the origin. The poles are single vertices and the stacks-1 rings
// between them repeat the seam vertex so texture coordinates wrap from u=0 to u=1.
//
// Parameters:
//   - slices: the number of segments around the Y axis, at least 2
//   - stacks: the number of segments from pole to pole, at least 2
//   - radius: the sphere radius
//
// Returns:
//   - GeometryData: positions, normals, tangents, coordinates and counter-clockwise indices
//   - error: an error if slices or stacks is below 2
func Sphere(slices, stacks int, radius float32) (GeometryData, error) {
	if slices < 2 || stacks < 2 {
		return GeometryData{}, fmt.Errorf("model: sphere needs slices and stacks >= 2, got %d and %d", slices, stacks)
	}
	count := 2 + (stacks-1)*(slices+1)
	d := GeometryData{
		Positions: make([]mgl32.Vec3, 0, count),
		Normals:   make([]mgl32.Vec3, 0, count),
		Coords:    make([]mgl32.Vec2, 0, count),
		Indices:   make([]uint32, 0, 6*slices*(stacks-1)),
	}
	vertex := func(n mgl32.Vec3, u, v float32) {
		d.Positions = append(d.Positions, n.Mul(radius))
		d.Normals = append(d.Normals, n)
		d.Coords = append(d.Coords, mgl32.Vec2{u, v})
	}

	vertex(mgl32.Vec3{0, 1, 0}, 0.5, 0)
	for i := 0; i < stacks-1; i++ {
		a := float32(i+1) * math32.Pi / float32(stacks)
		for j := 0; j <= slices; j++ {
			b := float32(j) * 2 * math32.Pi / float32(slices)
			n := mgl32.Vec3{math32.Cos(b) * math32.Sin(a), math32.Cos(a), math32.Sin(b) * math32.Sin(a)}
			vertex(n, float32(j)/float32(slices), float32(i+1)/float32(stacks))
		}
	}
	vertex(mgl32.Vec3{0, -1, 0}, 0.5, 1)

	tri := func(a, b, c int) {
		d.Indices = append(d.Indices, uint32(a), uint32(b), uint32(c))
	}
	ring := slices + 1
	for i := 0; i < slices; i++ {
		tri(1+i+1, 1+i, 0)
	}
	for i := 0; i < stacks-2; i++ {
		shift := 1 + i*ring
		for j := 0; j < slices; j++ {
			tri(shift+j, shift+j+1, shift+j+ring)
			tri(shift+j+ring, shift+j+1, shift+j+ring+1)
		}
	}
	bottom := 1 + (stacks-1)*ring
	shift := 1 + (stacks-2)*ring
	for i := 0; i < slices; i++ {
		tri(bottom, shift+i, shift+i+1)
	}

	d.Tangents = GenerateTangents(d)
	return d, nil
}

// cubeFace describes one face of a cube by its outward normal and the axes along increasing u and v, with
// u cross v equal to the normal.
type cubeFace struct {
	normal, u, v mgl32.Vec3
}

var cubeFaces = [6]cubeFace{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
}

// appendFace appends a square face of half-size h centered at center.
func appendFace(d *GeometryData, f cubeFace, center mgl32.Vec3, h float32) {
	base := uint32(len(d.Positions))
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, c := range corners {
		p := center.Add(f.u.Mul(c[0] * h)).Add(f.v.Mul(c[1] * h))
		d.Positions = append(d.Positions, p)
		d.Normals = append(d.Normals, f.normal)
		d.Tangents = append(d.Tangents, f.u)
		d.Coords = append(d.Coords, mgl32.Vec2{(c[0] + 1) / 2, (1 - c[1]) / 2})
	}
	d.Indices = append(d.Indices, base, base+1, base+2, base, base+2, base+3)
}

// Cube generates an origin-centered cube with 4 vertices per face so every face has its own normal and
// full [0, 1] texture coordinates.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - GeometryData: the cube geometry
func Cube(size float32) GeometryData {
	h := size / 2
	var d GeometryData
	for _, f := range cubeFaces {
		appendFace(&d, f, f.normal.Mul(h), h)
	}
	return d
}

// Quad generates a square in the XY plane facing +Z.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - GeometryData: the quad geometry
func Quad(size float32) GeometryData {
	var d GeometryData
	appendFace(&d, cubeFaces[4], mgl32.Vec3{}, size/2)
	return d
}

// GenerateTangents computes per-vertex tangents along increasing u from positions, normals and texture
// coordinates. Triangle tangents are accumulated per vertex and orthogonalized against the normal. Vertices
// whose triangles have degenerate coordinates get an arbitrary tangent perpendicular to the normal.
//
// Parameters:
//   - d: geometry data with positions, normals, coordinates and indices
//
// Returns:
//   - []mgl32.Vec3: one unit tangent per vertex, or nil when normals or coordinates are missing
func GenerateTangents(d GeometryData) []mgl32.Vec3 {
	if len(d.Normals) != len(d.Positions) || len(d.Coords) != len(d.Positions) {
		return nil
	}
	acc := make([]mgl32.Vec3, len(d.Positions))
	for t := 0; t+2 < len(d.Indices); t += 3 {
		i0, i1, i2 := d.Indices[t], d.Indices[t+1], d.Indices[t+2]
		e1 := d.Positions[i1].Sub(d.Positions[i0])
		e2 := d.Positions[i2].Sub(d.Positions[i0])
		du1, dv1 := d.Coords[i1][0]-d.Coords[i0][0], d.Coords[i1][1]-d.Coords[i0][1]
		du2, dv2 := d.Coords[i2][0]-d.Coords[i0][0], d.Coords[i2][1]-d.Coords[i0][1]
		det := du1*dv2 - du2*dv1
		if math32.Abs(det) < 1e-12 {
			continue
		}
		tangent := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(1 / det)
		for _, i := range [3]uint32{i0, i1, i2} {
			acc[i] = acc[i].Add(tangent)
		}
	}

	out := make([]mgl32.Vec3, len(acc))
	for i, t := range acc {
		n := d.Normals[i]
		t = t.Sub(n.Mul(n.Dot(t)))
		if t.Len() < 1e-6 {
			t = perpendicular(n)
		}
		out[i] = t.Normalize()
	}
	return out
}

// perpendicular returns a unit vector orthogonal to n.
func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if math32.Abs(n[0]) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return axis.Sub(n.Mul(n.Dot(axis))).Normalize()
}
