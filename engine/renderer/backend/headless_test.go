package backend

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testVertexSource   = "@vertex fn vs_main() -> @builtin(position) vec4f { return vec4f(0.0); }"
	testFragmentSource = "@fragment fn fs_main() -> @location(0) vec4f { return vec4f(1.0); }"
)

func linkTestProgram(t *testing.T, h *Headless, desc ProgramDesc) ProgramID {
	t.Helper()

	vs, err := h.CompileShader("vs", StageVertex, testVertexSource)
	require.NoError(t, err)
	fs, err := h.CompileShader("fs", StageFragment, testFragmentSource)
	require.NoError(t, err)

	desc.Vertex, desc.Fragment = vs, fs
	id, err := h.LinkProgram(desc)
	require.NoError(t, err)
	return id
}

func TestHeadlessBufferWrites(t *testing.T) {
	h := NewHeadless(64, 64)

	id, err := h.CreateBuffer("vb", BufferKindVertex, BufferUsageDynamic, 8)
	require.NoError(t, err)

	require.NoError(t, h.WriteBuffer(id, 4, []byte{1, 2, 3, 4}))
	data, ok := h.BufferData(id)
	require.True(t, ok)
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 2, 3, 4}, data)

	assert.Error(t, h.WriteBuffer(id, 6, []byte{1, 2, 3}))

	h.ReleaseBuffer(id)
	assert.Equal(t, 0, h.Live().Buffers)
}

func TestHeadlessCompileRejectsMissingEntryPoint(t *testing.T) {
	h := NewHeadless(64, 64)

	_, err := h.CompileShader("fs", StageFragment, testVertexSource)
	assert.ErrorContains(t, err, "@fragment")
}

func TestValidateFramebuffer(t *testing.T) {
	h := NewHeadless(64, 64)

	color, err := h.CreateTexture(TextureDesc{Label: "color", Width: 32, Height: 32, Format: FormatRGBA8, Renderable: true})
	require.NoError(t, err)
	depth, err := h.CreateTexture(TextureDesc{Label: "depth", Width: 32, Height: 32, Format: FormatDepth16, Renderable: true})
	require.NoError(t, err)
	small, err := h.CreateTexture(TextureDesc{Label: "small", Width: 16, Height: 16, Format: FormatRGBA8, Renderable: true})
	require.NoError(t, err)
	sampleOnly, err := h.CreateTexture(TextureDesc{Label: "albedo", Width: 32, Height: 32, Format: FormatRGBA8, Sampleable: true})
	require.NoError(t, err)

	_, err = h.CreateFramebuffer(FramebufferDesc{Color: []Attachment{{Texture: color}}, Depth: &Attachment{Texture: depth}})
	require.NoError(t, err)

	tests := []struct {
		name       string
		desc       FramebufferDesc
		attachment string
	}{
		{"empty", FramebufferDesc{}, "none"},
		{"size mismatch", FramebufferDesc{Color: []Attachment{{Texture: color}, {Texture: small}}}, "color1"},
		{"depth in color slot", FramebufferDesc{Color: []Attachment{{Texture: depth}}}, "color0"},
		{"color in depth slot", FramebufferDesc{Color: []Attachment{{Texture: color}}, Depth: &Attachment{Texture: color}}, "depth"},
		{"not renderable", FramebufferDesc{Color: []Attachment{{Texture: sampleOnly}}}, "color0"},
		{"layer out of range", FramebufferDesc{Depth: &Attachment{Texture: depth, Layer: 1}}, "depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.CreateFramebuffer(tt.desc)
			var attErr *AttachmentError
			require.True(t, errors.As(err, &attErr))
			assert.Equal(t, tt.attachment, attErr.Attachment)
		})
	}
}

func TestHeadlessDrawSnapshotsState(t *testing.T) {
	h := NewHeadless(64, 64)

	prog := linkTestProgram(t, h, ProgramDesc{
		Label:      "test",
		Uniforms:   []UniformBlock{{Group: 0, Binding: 0, Size: 16}},
		Textures:   []TextureSlot{{Group: 0, Binding: 1, HasSampler: true, SamplerBinding: 2, Dimension: Texture2D}},
		Attributes: []VertexInput{{Location: 0, Format: VertexFloat32x3}},
	})
	vb, err := h.CreateBuffer("positions", BufferKindVertex, BufferUsageStatic, 36)
	require.NoError(t, err)
	ib, err := h.CreateBuffer("indices", BufferKindIndex, BufferUsageStatic, 12)
	require.NoError(t, err)
	tex, err := h.CreateTexture(TextureDesc{Label: "albedo", Width: 1, Height: 1, Format: FormatRGBA8, Sampleable: true})
	require.NoError(t, err)

	h.UseProgram(prog)
	h.SetUniform(UniformLocation{Group: 0, Binding: 0, Offset: 4}, []byte{9, 9, 9, 9})
	h.SetTextureUnit(BindingKey{Group: 0, Binding: 1}, 3)
	h.BindTexture(3, tex)
	h.SetVertexAttribute(0, VertexAttribute{Buffer: vb, Format: VertexFloat32x3, Stride: 12})
	h.DrawIndexed(ib, IndexUint32, 3)

	// Later writes must not leak into the earlier snapshot.
	h.SetUniform(UniformLocation{Group: 0, Binding: 0, Offset: 4}, []byte{1, 1, 1, 1})
	require.NoError(t, h.Flush())

	draws := h.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, []byte{9, 9, 9, 9}, draws[0].Uniform(0, 0, 4, 4))
	assert.Equal(t, tex, draws[0].Textures[BindingKey{Group: 0, Binding: 1}])
	assert.Equal(t, uint32(3), draws[0].Count)
	assert.True(t, draws[0].Indexed)
}

func TestHeadlessDrawDefersErrors(t *testing.T) {
	h := NewHeadless(64, 64)

	prog := linkTestProgram(t, h, ProgramDesc{
		Label:      "test",
		Attributes: []VertexInput{{Location: 0, Format: VertexFloat32x3}},
	})
	h.UseProgram(prog)
	h.Draw(3)

	assert.Empty(t, h.Draws())
	assert.ErrorContains(t, h.Flush(), "@location(0)")
	assert.NoError(t, h.Flush(), "flush clears deferred errors")
}

func TestHeadlessRejectsFeedbackLoop(t *testing.T) {
	h := NewHeadless(64, 64)

	prog := linkTestProgram(t, h, ProgramDesc{
		Label:    "test",
		Textures: []TextureSlot{{Group: 0, Binding: 0, SamplerBinding: 1, Dimension: Texture2D}},
	})
	target, err := h.CreateTexture(TextureDesc{Label: "target", Width: 8, Height: 8, Format: FormatRGBA8, Renderable: true, Sampleable: true})
	require.NoError(t, err)
	fb, err := h.CreateFramebuffer(FramebufferDesc{Color: []Attachment{{Texture: target}}})
	require.NoError(t, err)

	h.BindFramebuffer(fb)
	h.UseProgram(prog)
	h.BindTexture(0, target)
	h.Draw(3)

	assert.ErrorContains(t, h.Flush(), "sampled while attached")
}

func TestHeadlessClearRecordsFramebuffer(t *testing.T) {
	h := NewHeadless(64, 64)

	color := mgl32.Vec4{0.1, 0.2, 0.3, 1}
	depth := float32(1)
	h.Clear(&color, &depth)
	color[0] = 0.9

	clears := h.Clears()
	require.Len(t, clears, 1)
	assert.Equal(t, ScreenFramebuffer, clears[0].Framebuffer)
	assert.Equal(t, float32(0.1), clears[0].Color[0])
	assert.Equal(t, float32(1), *clears[0].Depth)
}
