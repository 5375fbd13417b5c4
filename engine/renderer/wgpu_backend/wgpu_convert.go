package wgpu_backend

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

func textureFormat(f backend.TextureFormat) wgpu.TextureFormat {
	switch f {
	case backend.FormatRGBA8SRGB:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case backend.FormatDepth16:
		return wgpu.TextureFormatDepth16Unorm
	case backend.FormatDepth24Plus:
		return wgpu.TextureFormatDepth24Plus
	case backend.FormatDepth32Float:
		return wgpu.TextureFormatDepth32Float
	default:
		return wgpu.TextureFormatRGBA8Unorm
	}
}

func viewDimension(t backend.TextureType) wgpu.TextureViewDimension {
	switch t {
	case backend.TextureCube:
		return wgpu.TextureViewDimensionCube
	case backend.Texture2DArray:
		return wgpu.TextureViewDimension2DArray
	default:
		return wgpu.TextureViewDimension2D
	}
}

func filterMode(f backend.FilterMode) wgpu.FilterMode {
	if f == backend.FilterNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func addressMode(a backend.AddressMode) wgpu.AddressMode {
	switch a {
	case backend.AddressClampToEdge:
		return wgpu.AddressModeClampToEdge
	case backend.AddressMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

func compareFunction(c backend.CompareFunction) wgpu.CompareFunction {
	switch c {
	case backend.CompareLess:
		return wgpu.CompareFunctionLess
	case backend.CompareLessEqual:
		return wgpu.CompareFunctionLessEqual
	case backend.CompareGreater:
		return wgpu.CompareFunctionGreater
	case backend.CompareAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionUndefined
	}
}

func vertexFormat(f backend.VertexFormat) wgpu.VertexFormat {
	switch f {
	case backend.VertexFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case backend.VertexFloat32x3:
		return wgpu.VertexFormatFloat32x3
	case backend.VertexFloat32x4:
		return wgpu.VertexFormatFloat32x4
	default:
		return wgpu.VertexFormatFloat32
	}
}

func indexFormat(f backend.IndexFormat) wgpu.IndexFormat {
	if f == backend.IndexUint16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

func cullMode(c pipeline.CullMode) wgpu.CullMode {
	switch c {
	case pipeline.CullFront:
		return wgpu.CullModeFront
	case pipeline.CullBack:
		return wgpu.CullModeBack
	default:
		return wgpu.CullModeNone
	}
}

func frontFace(f pipeline.FrontFace) wgpu.FrontFace {
	if f == pipeline.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

// blendState returns nil for BlendNone.
func blendState(m pipeline.BlendMode) *wgpu.BlendState {
	switch m {
	case pipeline.BlendAdditive:
		add := wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
		}
		return &wgpu.BlendState{Color: add, Alpha: add}
	case pipeline.BlendAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorZero,
			},
		}
	default:
		return nil
	}
}

// vertexLayouts gives every attribute of a program its own vertex buffer slot, in program order. The
// attribute offset is applied when the buffer is bound.
func vertexLayouts(inputs []backend.VertexInput, attrs map[uint32]backend.VertexAttribute) []wgpu.VertexBufferLayout {
	layouts := make([]wgpu.VertexBufferLayout, len(inputs))
	for i, in := range inputs {
		stride := in.Format.Size()
		if a, ok := attrs[in.Location]; ok && a.Stride != 0 {
			stride = a.Stride
		}
		layouts[i] = wgpu.VertexBufferLayout{
			ArrayStride: stride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{{
				Format:         vertexFormat(in.Format),
				Offset:         0,
				ShaderLocation: in.Location,
			}},
		}
	}
	return layouts
}

// layoutKey identifies the vertex layouts of a draw for the pipeline cache.
func layoutKey(layouts []wgpu.VertexBufferLayout) string {
	var sb strings.Builder
	for _, l := range layouts {
		fmt.Fprintf(&sb, "%d:%d;", l.ArrayStride, l.Attributes[0].Format)
	}
	return sb.String()
}

// layoutEntries translates the reflected resource interface of a program into bind group layout entries
// keyed by group. Uniform blocks use dynamic offsets into the frame's uniform arena.
func layoutEntries(desc backend.ProgramDesc) map[uint32][]wgpu.BindGroupLayoutEntry {
	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	groups := make(map[uint32][]wgpu.BindGroupLayoutEntry)

	for _, u := range desc.Uniforms {
		e := wgpu.BindGroupLayoutEntry{Binding: u.Binding, Visibility: visibility}
		e.Buffer.Type = wgpu.BufferBindingTypeUniform
		e.Buffer.HasDynamicOffset = true
		e.Buffer.MinBindingSize = uint64(u.Size)
		groups[u.Group] = append(groups[u.Group], e)
	}
	for _, t := range desc.Textures {
		e := wgpu.BindGroupLayoutEntry{Binding: t.Binding, Visibility: visibility}
		e.Texture.ViewDimension = viewDimension(t.Dimension)
		e.Texture.SampleType = wgpu.TextureSampleTypeFloat
		if t.SampleKind == backend.SampleDepth {
			e.Texture.SampleType = wgpu.TextureSampleTypeDepth
		}
		groups[t.Group] = append(groups[t.Group], e)

		if !t.HasSampler {
			continue
		}
		s := wgpu.BindGroupLayoutEntry{Binding: t.SamplerBinding, Visibility: visibility}
		switch {
		case t.Comparison:
			s.Sampler.Type = wgpu.SamplerBindingTypeComparison
		case t.SampleKind == backend.SampleDepth:
			s.Sampler.Type = wgpu.SamplerBindingTypeNonFiltering
		default:
			s.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		}
		groups[t.Group] = append(groups[t.Group], s)
	}
	return groups
}

func align(n, to uint64) uint64 {
	return (n + to - 1) / to * to
}
