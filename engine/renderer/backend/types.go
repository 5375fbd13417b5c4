package backend

import "fmt"

// BufferID identifies a GPU buffer created by a Backend. The zero value is never a valid buffer.
type BufferID uint32

// TextureID identifies a GPU texture created by a Backend. The zero value is never a valid texture.
type TextureID uint32

// FramebufferID identifies an off-screen framebuffer. ScreenFramebuffer (zero) is the presentation surface.
type FramebufferID uint32

// ShaderID identifies a compiled shader stage.
type ShaderID uint32

// ProgramID identifies a linked vertex+fragment program.
type ProgramID uint32

// ScreenFramebuffer is the default framebuffer backed by the presentation surface.
const ScreenFramebuffer FramebufferID = 0

// BufferKind selects the role of a buffer in draw calls.
type BufferKind int

const (
	// BufferKindVertex marks a buffer holding vertex attribute data.
	BufferKindVertex BufferKind = iota

	// BufferKindIndex marks a buffer holding index data.
	BufferKindIndex
)

func (k BufferKind) String() string {
	switch k {
	case BufferKindVertex:
		return "vertex"
	case BufferKindIndex:
		return "index"
	default:
		return fmt.Sprintf("BufferKind(%d)", int(k))
	}
}

// BufferUsage hints how often a buffer's contents change.
type BufferUsage int

const (
	// BufferUsageStatic is written once at creation.
	BufferUsageStatic BufferUsage = iota

	// BufferUsageDynamic is rewritten every frame.
	BufferUsageDynamic
)

// TextureType selects the dimensionality of a texture.
type TextureType int

const (
	// Texture2D is a single 2D image.
	Texture2D TextureType = iota

	// TextureCube is six square faces in the order +X, -X, +Y, -Y, +Z, -Z.
	TextureCube

	// Texture2DArray is a stack of 2D layers sampled with a layer index.
	Texture2DArray
)

// TextureFormat is the texel format of a texture.
type TextureFormat int

const (
	// FormatRGBA8 is 8-bit linear RGBA.
	FormatRGBA8 TextureFormat = iota

	// FormatRGBA8SRGB is 8-bit sRGB-encoded RGBA.
	FormatRGBA8SRGB

	// FormatDepth16 is 16-bit normalized depth, the default depth format.
	FormatDepth16

	// FormatDepth24Plus is at least 24-bit depth.
	FormatDepth24Plus

	// FormatDepth32Float is 32-bit floating point depth.
	FormatDepth32Float
)

// IsDepth reports whether the format stores depth.
func (f TextureFormat) IsDepth() bool {
	return f == FormatDepth16 || f == FormatDepth24Plus || f == FormatDepth32Float
}

// BytesPerTexel returns the size of one texel in bytes for CPU uploads.
func (f TextureFormat) BytesPerTexel() int {
	switch f {
	case FormatDepth16:
		return 2
	default:
		return 4
	}
}

func (f TextureFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatRGBA8SRGB:
		return "rgba8-srgb"
	case FormatDepth16:
		return "depth16"
	case FormatDepth24Plus:
		return "depth24plus"
	case FormatDepth32Float:
		return "depth32float"
	default:
		return fmt.Sprintf("TextureFormat(%d)", int(f))
	}
}

// FilterMode selects texel filtering.
type FilterMode int

const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// AddressMode selects how coordinates outside [0, 1] are resolved.
type AddressMode int

const (
	AddressRepeat AddressMode = iota
	AddressClampToEdge
	AddressMirrorRepeat
)

// CompareFunction selects the depth comparison of a comparison sampler. CompareNone marks a regular sampler.
type CompareFunction int

const (
	CompareNone CompareFunction = iota
	CompareLess
	CompareLessEqual
	CompareGreater
	CompareAlways
)

// SamplerDesc describes the sampler owned by a texture.
type SamplerDesc struct {
	MinFilter FilterMode
	MagFilter FilterMode
	AddressU  AddressMode
	AddressV  AddressMode
	Compare   CompareFunction
}

// TextureDesc describes a texture allocation.
type TextureDesc struct {
	Label  string
	Type   TextureType
	Width  uint32
	Height uint32
	// Layers is the array layer count for Texture2DArray. It is forced to 6 for cubes and 1 for 2D textures.
	Layers  uint32
	Format  TextureFormat
	Sampler SamplerDesc
	// Renderable allows the texture to be attached to a framebuffer.
	Renderable bool
	// Sampleable allows the texture to be read by shaders.
	Sampleable bool
}

// LayerCount returns the normalized number of layers for the texture type.
func (d TextureDesc) LayerCount() uint32 {
	switch d.Type {
	case TextureCube:
		return 6
	case Texture2DArray:
		return max(d.Layers, 1)
	default:
		return 1
	}
}

// Attachment names one layer of a texture bound to a framebuffer slot.
type Attachment struct {
	Texture TextureID
	Layer   uint32
}

// FramebufferDesc lists the color attachments in slot order and the optional depth attachment.
type FramebufferDesc struct {
	Label string
	Color []Attachment
	Depth *Attachment
}

// ShaderStage identifies a programmable stage.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderStage(%d)", int(s))
	}
}

// VertexFormat is the component layout of one vertex attribute.
type VertexFormat int

const (
	VertexFloat32 VertexFormat = iota
	VertexFloat32x2
	VertexFloat32x3
	VertexFloat32x4
)

// Size returns the attribute size in bytes.
func (f VertexFormat) Size() uint64 {
	return uint64(f+1) * 4
}

// IndexFormat is the element type of an index buffer.
type IndexFormat int

const (
	IndexUint16 IndexFormat = iota
	IndexUint32
)

// Size returns the index element size in bytes.
func (f IndexFormat) Size() uint64 {
	if f == IndexUint16 {
		return 2
	}
	return 4
}

// BindingKey addresses a resource binding by group and binding index.
type BindingKey struct {
	Group   uint32
	Binding uint32
}

// UniformBlock declares a uniform buffer binding of a program.
type UniformBlock struct {
	Group   uint32
	Binding uint32
	Size    uint32
}

// UniformLocation addresses a value inside a uniform block.
type UniformLocation struct {
	Group   uint32
	Binding uint32
	Offset  uint32
}

// TextureSampleKind is the sample type a program expects from a texture binding.
type TextureSampleKind int

const (
	SampleFloat TextureSampleKind = iota
	SampleDepth
)

// TextureSlot declares a texture binding of a program and its paired sampler binding, if any.
type TextureSlot struct {
	Group          uint32
	Binding        uint32
	HasSampler     bool
	SamplerBinding uint32
	Dimension      TextureType
	SampleKind     TextureSampleKind
	Comparison     bool
}

// VertexInput declares one vertex attribute a program consumes.
type VertexInput struct {
	Location uint32
	Format   VertexFormat
}

// ProgramDesc describes the resource interface of a program to link.
type ProgramDesc struct {
	Label         string
	Vertex        ShaderID
	Fragment      ShaderID
	VertexEntry   string
	FragmentEntry string
	Uniforms      []UniformBlock
	Textures      []TextureSlot
	Attributes    []VertexInput
	// ColorOutputs is the number of fragment color outputs.
	ColorOutputs int
}

// VertexAttribute points a vertex input location at a region of a vertex buffer.
type VertexAttribute struct {
	Buffer BufferID
	Format VertexFormat
	Stride uint64
	Offset uint64
}
