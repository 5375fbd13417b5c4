package model

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name  string
	nodes []Node
	roots []int32
}

// Mesh is a tree of nodes stored as an arena. Nodes are addressed by index, a parent always has a lower
// index than its children and a mesh owns its nodes exclusively.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// AddNode appends a node to the arena.
	//
	// Parameters:
	//   - name: the node identifier
	//   - parent: the index of an existing node, or -1 for a root node
	//   - local: the transform relative to the parent
	//   - primitives: the primitives drawn at this node
	//
	// Returns:
	//   - int32: the index of the new node
	AddNode(name string, parent int32, local mgl32.Mat4, primitives ...Primitive) int32

	// Node retrieves a node by index.
	//
	// Parameters:
	//   - index: the node index
	//
	// Returns:
	//   - *Node: the node, mutable in place for animation
	Node(index int32) *Node

	// NodeCount retrieves the number of nodes in the arena.
	//
	// Returns:
	//   - int: the node count
	NodeCount() int

	// Roots retrieves the indices of the nodes without a parent.
	//
	// Returns:
	//   - []int32: the root indices in insertion order
	Roots() []int32

	// FindNode retrieves the index of the first node with the given name.
	//
	// Parameters:
	//   - name: the node identifier
	//
	// Returns:
	//   - int32: the node index, or -1 when no node has that name
	FindNode(name string) int32

	// WorldTransforms composes every node's local transform with its ancestors, root to leaf, in one
	// forward pass over the arena.
	//
	// Parameters:
	//   - object: the transform applied above every root
	//   - dst: reused when it has enough capacity
	//
	// Returns:
	//   - []mgl32.Mat4: one world transform per node, indexed like the arena
	WorldTransforms(object mgl32.Mat4, dst []mgl32.Mat4) []mgl32.Mat4

	// PrimitiveCount retrieves the total number of primitives over all nodes.
	//
	// Returns:
	//   - int: the primitive count
	PrimitiveCount() int

	// Release frees every distinct geometry referenced by the mesh. Materials are not owned by the mesh.
	Release()
}

var _ Mesh = &mesh{}

// NewMesh creates a new, empty Mesh configured with the provided options.
//
// Parameters:
//   - options: variadic list of MeshBuilderOption functions to configure the mesh
//
// Returns:
//   - Mesh: a new Mesh instance
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) AddNode(name string, parent int32, local mgl32.Mat4, primitives ...Primitive) int32 {
	index := int32(len(m.nodes))
	if parent < -1 || parent >= index {
		panic(fmt.Sprintf("model: node %q has parent %d outside [-1, %d)", name, parent, index))
	}
	m.nodes = append(m.nodes, Node{
		Name:       name,
		Parent:     parent,
		Local:      local,
		Primitives: primitives,
	})
	if parent < 0 {
		m.roots = append(m.roots, index)
	} else {
		m.nodes[parent].Children = append(m.nodes[parent].Children, index)
	}
	return index
}

func (m *mesh) Node(index int32) *Node {
	return &m.nodes[index]
}

func (m *mesh) NodeCount() int {
	return len(m.nodes)
}

func (m *mesh) Roots() []int32 {
	return m.roots
}

func (m *mesh) FindNode(name string) int32 {
	for i := range m.nodes {
		if m.nodes[i].Name == name {
			return int32(i)
		}
	}
	return -1
}

func (m *mesh) WorldTransforms(object mgl32.Mat4, dst []mgl32.Mat4) []mgl32.Mat4 {
	if cap(dst) < len(m.nodes) {
		dst = make([]mgl32.Mat4, len(m.nodes))
	}
	dst = dst[:len(m.nodes)]
	for i := range m.nodes {
		n := &m.nodes[i]
		if n.Parent < 0 {
			dst[i] = object.Mul4(n.Local)
		} else {
			dst[i] = dst[n.Parent].Mul4(n.Local)
		}
	}
	return dst
}

func (m *mesh) PrimitiveCount() int {
	count := 0
	for i := range m.nodes {
		count += len(m.nodes[i].Primitives)
	}
	return count
}

func (m *mesh) Release() {
	released := make(map[Geometry]bool)
	for i := range m.nodes {
		for _, p := range m.nodes[i].Primitives {
			if p.Geometry == nil || released[p.Geometry] {
				continue
			}
			released[p.Geometry] = true
			p.Geometry.Release()
		}
	}
}
