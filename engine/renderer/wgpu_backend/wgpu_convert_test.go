package wgpu_backend

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutEntries(t *testing.T) {
	desc := backend.ProgramDesc{
		Label: "entries",
		Uniforms: []backend.UniformBlock{
			{Group: 0, Binding: 0, Size: 64},
			{Group: 1, Binding: 0, Size: 16},
		},
		Textures: []backend.TextureSlot{
			{Group: 1, Binding: 1, HasSampler: true, SamplerBinding: 2, Dimension: backend.Texture2D, SampleKind: backend.SampleFloat},
			{Group: 1, Binding: 3, HasSampler: true, SamplerBinding: 4, Dimension: backend.Texture2DArray, SampleKind: backend.SampleDepth, Comparison: true},
			{Group: 1, Binding: 5, HasSampler: true, SamplerBinding: 6, Dimension: backend.Texture2D, SampleKind: backend.SampleDepth},
		},
	}

	groups := layoutEntries(desc)
	require.Len(t, groups, 2)
	require.Len(t, groups[0], 1)
	require.Len(t, groups[1], 7)

	u := groups[0][0]
	assert.Equal(t, wgpu.BufferBindingTypeUniform, u.Buffer.Type)
	assert.True(t, u.Buffer.HasDynamicOffset)
	assert.Equal(t, uint64(64), u.Buffer.MinBindingSize)

	byBinding := make(map[uint32]wgpu.BindGroupLayoutEntry)
	for _, e := range groups[1] {
		byBinding[e.Binding] = e
	}
	assert.Equal(t, wgpu.TextureSampleTypeFloat, byBinding[1].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, byBinding[2].Sampler.Type)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, byBinding[3].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2DArray, byBinding[3].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, byBinding[4].Sampler.Type)
	assert.Equal(t, wgpu.SamplerBindingTypeNonFiltering, byBinding[6].Sampler.Type)
}

func TestVertexLayoutsUseOneSlotPerAttribute(t *testing.T) {
	inputs := []backend.VertexInput{
		{Location: 0, Format: backend.VertexFloat32x3},
		{Location: 2, Format: backend.VertexFloat32x2},
	}
	attrs := map[uint32]backend.VertexAttribute{
		0: {Buffer: 1, Format: backend.VertexFloat32x3, Stride: 32, Offset: 12},
		2: {Buffer: 1, Format: backend.VertexFloat32x2},
	}

	layouts := vertexLayouts(inputs, attrs)
	require.Len(t, layouts, 2)
	assert.Equal(t, uint64(32), layouts[0].ArrayStride)
	assert.Equal(t, uint64(8), layouts[1].ArrayStride, "tightly packed without a stride")
	assert.Equal(t, uint32(2), layouts[1].Attributes[0].ShaderLocation)
	assert.Equal(t, uint64(0), layouts[0].Attributes[0].Offset)

	attrs[0] = backend.VertexAttribute{Buffer: 1, Format: backend.VertexFloat32x3}
	assert.NotEqual(t, layoutKey(layouts), layoutKey(vertexLayouts(inputs, attrs)))
}

func TestBlendState(t *testing.T) {
	assert.Nil(t, blendState(pipeline.BlendNone))

	add := blendState(pipeline.BlendAdditive)
	require.NotNil(t, add)
	assert.Equal(t, wgpu.BlendFactorOne, add.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOne, add.Color.DstFactor)

	alpha := blendState(pipeline.BlendAlpha)
	require.NotNil(t, alpha)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, alpha.Color.DstFactor)
}

func TestConversions(t *testing.T) {
	assert.Equal(t, wgpu.TextureFormatDepth32Float, textureFormat(backend.FormatDepth32Float))
	assert.Equal(t, wgpu.TextureViewDimensionCube, viewDimension(backend.TextureCube))
	assert.Equal(t, wgpu.CompareFunctionUndefined, compareFunction(backend.CompareNone))
	assert.Equal(t, wgpu.CompareFunctionLessEqual, compareFunction(backend.CompareLessEqual))
	assert.Equal(t, wgpu.IndexFormatUint16, indexFormat(backend.IndexUint16))
	assert.Equal(t, wgpu.CullModeFront, cullMode(pipeline.CullFront))
	assert.Equal(t, wgpu.FrontFaceCW, frontFace(pipeline.FrontFaceCW))
}

func TestUniformArenaAlignment(t *testing.T) {
	a := &uniformArena{size: 1024, chunks: []*uniformChunk{{data: make([]byte, 1024)}}}

	_, first, err := a.alloc(make([]byte, 80))
	require.NoError(t, err)
	_, second, err := a.alloc([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	assert.Equal(t, uint32(0), first)
	assert.Equal(t, uint32(uniformAlignment), second)
	assert.Equal(t, byte(3), a.chunks[0].data[second+2])

	writes := a.writes()
	require.Len(t, writes, 1)
	assert.Len(t, writes[0].Data, uniformAlignment+4)

	gen := a.generation
	a.reset()
	assert.Equal(t, gen+1, a.generation)
	assert.Empty(t, a.writes())
}
