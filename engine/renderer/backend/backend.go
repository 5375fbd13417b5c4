// Package backend defines the immediate-mode GPU verb set the rendering core is written against,
// plus a GPU-free recording implementation used for tests and headless runs.
package backend

import (
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/pipeline"
	"github.com/go-gl/mathgl/mgl32"
)

// Backend is an immediate-mode GPU device. Resource verbs return errors directly; state and draw verbs
// follow the GL convention of deferring errors, which are collected and returned by the next Flush.
//
// State model: the bound framebuffer, viewport, render state, vertex attributes and texture units are
// global. Uniform values and texture unit assignments belong to a program and persist across UseProgram calls.
type Backend interface {
	// CreateBuffer allocates a buffer of the given size in bytes.
	//
	// Parameters:
	//   - label: debug label
	//   - kind: vertex or index
	//   - usage: static or dynamic
	//   - size: capacity in bytes
	//
	// Returns:
	//   - BufferID: the new buffer
	//   - error: an error if the allocation fails
	CreateBuffer(label string, kind BufferKind, usage BufferUsage, size uint64) (BufferID, error)

	// WriteBuffer copies data into a buffer starting at offset. The write must fit the buffer's size.
	//
	// Parameters:
	//   - id: the buffer to write
	//   - offset: destination offset in bytes
	//   - data: the bytes to copy
	//
	// Returns:
	//   - error: an error if the buffer is unknown or the write is out of range
	WriteBuffer(id BufferID, offset uint64, data []byte) error

	// ReleaseBuffer frees a buffer. Releasing an unknown buffer is a no-op.
	//
	// Parameters:
	//   - id: the buffer to free
	ReleaseBuffer(id BufferID)

	// CreateTexture allocates a texture and its sampler.
	//
	// Parameters:
	//   - desc: the texture description
	//
	// Returns:
	//   - TextureID: the new texture
	//   - error: an error if the description is invalid or the allocation fails
	CreateTexture(desc TextureDesc) (TextureID, error)

	// WriteTexture uploads tightly packed texels into one layer (or cube face) of a texture.
	//
	// Parameters:
	//   - id: the texture to write
	//   - layer: the layer or cube face index
	//   - data: width*height*BytesPerTexel bytes
	//
	// Returns:
	//   - error: an error if the texture is unknown or the data size does not match
	WriteTexture(id TextureID, layer uint32, data []byte) error

	// ReleaseTexture frees a texture. Releasing an unknown texture is a no-op.
	//
	// Parameters:
	//   - id: the texture to free
	ReleaseTexture(id TextureID)

	// CreateFramebuffer validates an attachment set and creates a framebuffer from it.
	//
	// Parameters:
	//   - desc: the attachments in slot order
	//
	// Returns:
	//   - FramebufferID: the new framebuffer
	//   - error: an *AttachmentError if the attachment set is incomplete
	CreateFramebuffer(desc FramebufferDesc) (FramebufferID, error)

	// ReleaseFramebuffer frees a framebuffer without releasing its attachments.
	//
	// Parameters:
	//   - id: the framebuffer to free
	ReleaseFramebuffer(id FramebufferID)

	// CompileShader compiles one shader stage from WGSL source.
	//
	// Parameters:
	//   - label: debug label
	//   - stage: the stage the source is compiled for
	//   - source: preprocessed WGSL source
	//
	// Returns:
	//   - ShaderID: the compiled stage
	//   - error: the compiler diagnostic if compilation fails
	CompileShader(label string, stage ShaderStage, source string) (ShaderID, error)

	// ReleaseShader frees a compiled stage.
	//
	// Parameters:
	//   - id: the stage to free
	ReleaseShader(id ShaderID)

	// LinkProgram links a vertex and fragment stage with the resource interface described by desc.
	//
	// Parameters:
	//   - desc: the stages and their reflected uniforms, textures and attributes
	//
	// Returns:
	//   - ProgramID: the linked program
	//   - error: an error if linking fails
	LinkProgram(desc ProgramDesc) (ProgramID, error)

	// ReleaseProgram frees a linked program.
	//
	// Parameters:
	//   - id: the program to free
	ReleaseProgram(id ProgramID)

	// ConfigureSurface sets the presentation surface size.
	//
	// Parameters:
	//   - width, height: the surface size in pixels
	ConfigureSurface(width, height uint32)

	// SurfaceSize returns the presentation surface size in pixels.
	//
	// Returns:
	//   - uint32, uint32: the width and height
	SurfaceSize() (uint32, uint32)

	// BindFramebuffer makes a framebuffer the destination of subsequent Clear and Draw calls.
	//
	// Parameters:
	//   - id: the framebuffer, or ScreenFramebuffer
	BindFramebuffer(id FramebufferID)

	// Viewport sets the viewport of subsequent draws, anchored at the origin.
	//
	// Parameters:
	//   - width, height: the viewport size in pixels
	Viewport(width, height uint32)

	// Clear clears the bound framebuffer. Nil values leave that aspect untouched.
	//
	// Parameters:
	//   - color: the clear color for every color attachment, or nil
	//   - depth: the clear depth, or nil
	Clear(color *mgl32.Vec4, depth *float32)

	// SetPipeline sets the fixed-function render state of subsequent draws.
	//
	// Parameters:
	//   - p: the render state
	SetPipeline(p pipeline.Pipeline)

	// UseProgram makes a program current for uniform writes and draws.
	//
	// Parameters:
	//   - id: the program
	UseProgram(id ProgramID)

	// SetUniform writes bytes into a uniform block of the current program.
	//
	// Parameters:
	//   - loc: the block and byte offset
	//   - data: the encoded value
	SetUniform(loc UniformLocation, data []byte)

	// SetTextureUnit assigns a texture unit to a texture binding of the current program.
	//
	// Parameters:
	//   - slot: the texture binding
	//   - unit: the texture unit it samples
	SetTextureUnit(slot BindingKey, unit uint32)

	// BindTexture binds a texture to a texture unit.
	//
	// Parameters:
	//   - unit: the texture unit
	//   - id: the texture
	BindTexture(unit uint32, id TextureID)

	// SetVertexAttribute points a vertex input location at a vertex buffer region.
	//
	// Parameters:
	//   - location: the vertex input location
	//   - attr: the buffer, format, stride and offset
	SetVertexAttribute(location uint32, attr VertexAttribute)

	// DrawIndexed draws indexed triangles with the current state.
	//
	// Parameters:
	//   - indices: the index buffer
	//   - format: the index element type
	//   - count: the number of indices to draw
	DrawIndexed(indices BufferID, format IndexFormat, count uint32)

	// Draw draws non-indexed triangles with the current state.
	//
	// Parameters:
	//   - count: the number of vertices to draw
	Draw(count uint32)

	// Flush submits all recorded commands and returns the errors deferred since the previous Flush.
	//
	// Returns:
	//   - error: the joined deferred errors, or nil
	Flush() error

	// Present flushes and presents the screen framebuffer.
	//
	// Returns:
	//   - error: the flush or presentation error, or nil
	Present() error
}
