package model

import (
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithName is an option builder that sets the name of the Mesh.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithPrimitive is an option builder that adds a root node with an identity transform drawing one geometry.
//
// Parameters:
//   - geo: the geometry to draw
//   - mat: the material to draw it with, may be nil
//
// Returns:
//   - MeshBuilderOption: a function that adds the node to a mesh
func WithPrimitive(geo Geometry, mat material.Material) MeshBuilderOption {
	return func(m *mesh) {
		m.AddNode(geo.Label(), -1, mgl32.Ident4(), Primitive{Geometry: geo, Material: mat})
	}
}

// GeometryBuilderOption is a functional option for configuring a Geometry via NewGeometry.
type GeometryBuilderOption func(*geometry)

// WithGeometryLabel is an option builder that sets the label of the Geometry and its buffers.
//
// Parameters:
//   - label: the geometry identifier
//
// Returns:
//   - GeometryBuilderOption: a function that applies the label option to a geometry
func WithGeometryLabel(label string) GeometryBuilderOption {
	return func(g *geometry) {
		g.label = label
	}
}
