package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
)

// geometry is the implementation of the Geometry interface.
type geometry struct {
	label          string
	buffers        map[string]resource.Buffer
	indices        resource.Buffer
	indexFormat    backend.IndexFormat
	indexCount     uint32
	vertexCount    uint32
	boundingRadius float32
}

// Geometry is a set of static vertex attribute buffers plus an index buffer, uploaded once and drawn by any
// number of primitives.
type Geometry interface {
	// Label retrieves the geometry identifier.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Buffer retrieves the vertex buffer of a named attribute.
	//
	// Parameters:
	//   - name: one of the Attribute* names
	//
	// Returns:
	//   - resource.Buffer: the buffer, or nil when the geometry has no such stream
	Buffer(name string) resource.Buffer

	// Indices retrieves the index buffer.
	//
	// Returns:
	//   - resource.Buffer: the index buffer
	Indices() resource.Buffer

	// IndexFormat retrieves the element type of the index buffer.
	//
	// Returns:
	//   - backend.IndexFormat: uint16 when every vertex is addressable with 16 bits, uint32 otherwise
	IndexFormat() backend.IndexFormat

	// IndexCount retrieves the number of indices to draw.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// VertexCount retrieves the number of vertices.
	//
	// Returns:
	//   - uint32: the vertex count
	VertexCount() uint32

	// BoundingRadius retrieves the radius of the origin-centered sphere enclosing every position.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// Release frees every buffer of the geometry.
	Release()
}

var _ Geometry = &geometry{}

// NewGeometry validates and uploads geometry data to static buffers.
//
// Parameters:
//   - dev: the backend that owns the buffers
//   - data: the vertex streams and indices
//   - options: variadic list of GeometryBuilderOption functions to configure the geometry
//
// Returns:
//   - Geometry: the uploaded geometry
//   - error: an error if the data is inconsistent or an upload fails
func NewGeometry(dev backend.Backend, data GeometryData, options ...GeometryBuilderOption) (Geometry, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	g := &geometry{
		label:       "geometry",
		buffers:     make(map[string]resource.Buffer, 5),
		indexCount:  uint32(len(data.Indices)),
		vertexCount: uint32(len(data.Positions)),
	}
	for _, opt := range options {
		opt(g)
	}
	for _, p := range data.Positions {
		g.boundingRadius = max(g.boundingRadius, p.Len())
	}

	streams := []struct {
		name string
		data []byte
	}{
		{AttributePosition, encodeVec3s(data.Positions)},
		{AttributeNormal, encodeVec3s(data.Normals)},
		{AttributeTangent, encodeVec3s(data.Tangents)},
		{AttributeCoord, encodeVec2s(data.Coords)},
		{AttributeColor, encodeVec4s(data.Colors)},
	}
	for _, s := range streams {
		if len(s.data) == 0 {
			continue
		}
		buf, err := resource.NewBuffer(dev, backend.BufferKindVertex, s.data, backend.BufferUsageStatic,
			resource.WithBufferLabel(g.label+" "+s.name))
		if err != nil {
			g.Release()
			return nil, fmt.Errorf("model: geometry %q: %w", g.label, err)
		}
		g.buffers[s.name] = buf
	}

	format, indexData := encodeIndices(data.Indices, len(data.Positions))
	indices, err := resource.NewBuffer(dev, backend.BufferKindIndex, indexData, backend.BufferUsageStatic,
		resource.WithBufferLabel(g.label+" indices"))
	if err != nil {
		g.Release()
		return nil, fmt.Errorf("model: geometry %q: %w", g.label, err)
	}
	g.indices = indices
	g.indexFormat = format
	return g, nil
}

func (g *geometry) Label() string {
	return g.label
}

func (g *geometry) Buffer(name string) resource.Buffer {
	return g.buffers[name]
}

func (g *geometry) Indices() resource.Buffer {
	return g.indices
}

func (g *geometry) IndexFormat() backend.IndexFormat {
	return g.indexFormat
}

func (g *geometry) IndexCount() uint32 {
	return g.indexCount
}

func (g *geometry) VertexCount() uint32 {
	return g.vertexCount
}

func (g *geometry) BoundingRadius() float32 {
	return g.boundingRadius
}

func (g *geometry) Release() {
	for name, buf := range g.buffers {
		buf.Release()
		delete(g.buffers, name)
	}
	if g.indices != nil {
		g.indices.Release()
		g.indices = nil
	}
}
