package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex attribute names shared by geometry buffers and shader vertex inputs.
const (
	AttributePosition = "position"
	AttributeNormal   = "normal"
	AttributeTangent  = "tangent"
	AttributeCoord    = "coord"
	AttributeColor    = "color"
)

// GeometryData holds the CPU-side vertex streams and triangle indices of one geometry. Every non-empty stream
// has one element per vertex.
type GeometryData struct {
	// Positions are the model-space vertex positions.
	Positions []mgl32.Vec3

	// Normals are the unit vertex normals.
	Normals []mgl32.Vec3

	// Tangents are the unit tangents along increasing u, used by normal and height mapping.
	Tangents []mgl32.Vec3

	// Coords are the texture coordinates.
	Coords []mgl32.Vec2

	// Colors are optional per-vertex RGBA colors.
	Colors []mgl32.Vec4

	// Indices are counter-clockwise triangles.
	Indices []uint32
}

// Validate checks that every stream matches the vertex count and that indices form whole triangles inside
// the vertex range.
//
// Returns:
//   - error: the first inconsistency found, or nil
func (d GeometryData) Validate() error {
	n := len(d.Positions)
	if n == 0 {
		return errors.New("model: geometry has no positions")
	}
	streams := []struct {
		name string
		len  int
	}{
		{AttributeNormal, len(d.Normals)},
		{AttributeTangent, len(d.Tangents)},
		{AttributeCoord, len(d.Coords)},
		{AttributeColor, len(d.Colors)},
	}
	for _, s := range streams {
		if s.len != 0 && s.len != n {
			return fmt.Errorf("model: %s stream has %d elements, want %d", s.name, s.len, n)
		}
	}
	if len(d.Indices) == 0 || len(d.Indices)%3 != 0 {
		return fmt.Errorf("model: index count %d is not a positive multiple of 3", len(d.Indices))
	}
	for i, idx := range d.Indices {
		if int(idx) >= n {
			return fmt.Errorf("model: index %d at position %d is out of range for %d vertices", idx, i, n)
		}
	}
	return nil
}

// Primitive pairs a geometry with the material it is drawn with. Material may be nil, in which case the
// renderer's default material applies.
type Primitive struct {
	Geometry Geometry
	Material material.Material
}

// Node is one element of a mesh's node arena.
type Node struct {
	// Name is the node identifier.
	Name string

	// Parent is the index of the parent node, -1 for roots. A parent always precedes its children.
	Parent int32

	// Children are the indices of the direct child nodes.
	Children []int32

	// Local is the transform relative to the parent node.
	Local mgl32.Mat4

	// Primitives are drawn with the node's world transform.
	Primitives []Primitive
}
