package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func declareForward(t *testing.T, dev backend.Backend, directives Directives) Program {
	t.Helper()

	provider := NewEmbeddedSourceProvider()
	vs, err := provider.Source("surface_vertex")
	require.NoError(t, err)
	fs, err := provider.Source("forward_fragment")
	require.NoError(t, err)

	p, err := Declare(dev, vs, fs, directives, WithLabel("forward"))
	require.NoError(t, err)
	return p
}

func TestDeclareForwardReflection(t *testing.T) {
	dev := backend.NewHeadless(64, 64)
	p := declareForward(t, dev, Directives{
		"MAX_DIRECTIONAL_LIGHTS": 2,
		"MAX_POINT_LIGHTS":       1,
		"HAS_SHADOW":             true,
		"USE_NORMAL_MAP":         true,
		"USE_HEIGHT_MAP":         false,
	})

	names := make([]string, 0, 4)
	for _, a := range p.Attributes() {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"position", "normal", "tangent", "coord"}, names)
	coord, ok := p.Attribute("coord")
	require.True(t, ok)
	assert.Equal(t, uint32(3), coord.Location)
	assert.Equal(t, backend.VertexFloat32x2, coord.Format)

	tests := []struct {
		name    string
		group   uint32
		binding uint32
		offset  uint32
		size    uint32
	}{
		{"projectionMatrix", 0, 0, 0, 64},
		{"viewMatrix", 0, 0, 64, 64},
		{"ambientLightColor", 0, 0, 128, 16},
		{"modelMatrix", 1, 0, 0, 64},
		{"normalMatrix", 1, 0, 64, 48},
		{"directionalLightColor", 0, 1, 0, 32},
		{"directionalLightDirection", 0, 1, 32, 32},
		{"directionalLightShadowMatrix", 0, 1, 64, 128},
		{"shadowBias", 0, 1, 192, 4},
		{"pointLightColor", 0, 1, 208, 16},
		{"pointLightPosition", 0, 1, 224, 16},
		{"albedoFactor", 2, 0, 0, 16},
		{"glossFactor", 2, 0, 32, 4},
		{"shininess", 2, 0, 36, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := p.Uniform(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.group, u.Group)
			assert.Equal(t, tt.binding, u.Binding)
			assert.Equal(t, tt.offset, u.Offset)
			assert.Equal(t, tt.size, u.Size)
		})
	}

	shadow, ok := p.Texture("shadowMap")
	require.True(t, ok)
	assert.True(t, shadow.Depth)
	assert.True(t, shadow.Comparison)
	assert.True(t, shadow.HasSampler)
	assert.Equal(t, backend.Texture2DArray, shadow.Dimension)
	assert.Equal(t, uint32(3), shadow.SamplerBinding)

	albedo, ok := p.Texture("albedoMap")
	require.True(t, ok)
	assert.False(t, albedo.Depth)
	assert.False(t, albedo.Comparison)
	assert.Equal(t, uint32(2), albedo.SamplerBinding)

	_, ok = p.Texture("normalMap")
	assert.True(t, ok)
	_, ok = p.Texture("heightMap")
	assert.False(t, ok)
	_, ok = p.Texture("metalnessMap")
	assert.False(t, ok)
	assert.Equal(t, 1, p.ColorOutputs())
}

func TestDeclareBindingFollowsDirectives(t *testing.T) {
	dev := backend.NewHeadless(64, 64)

	tests := []struct {
		name       string
		directives Directives
		present    []string
		absent     []string
	}{
		{
			name:       "phong without lights",
			directives: Directives{"LIGHT_MODEL": 0},
			present:    []string{"glossFactor", "shininess", "glossMap", "albedoMap"},
			absent:     []string{"directionalLightColor", "pointLightColor", "metalnessStrength", "shadowMap", "parallaxScale"},
		},
		{
			name:       "pbr with points and height map",
			directives: Directives{"LIGHT_MODEL": 1, "MAX_POINT_LIGHTS": 4, "USE_HEIGHT_MAP": true, "USE_NORMAL_MAP": true},
			present:    []string{"metalnessStrength", "roughnessMap", "pointLightPosition", "parallaxScale", "heightMap"},
			absent:     []string{"glossFactor", "directionalLightColor", "shadowBias"},
		},
		{
			name:       "shadow needs directional lights",
			directives: Directives{"HAS_SHADOW": true, "MAX_POINT_LIGHTS": 1},
			present:    []string{"pointLightColor"},
			absent:     []string{"shadowMap", "directionalLightShadowMatrix"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := declareForward(t, dev, tt.directives)
			defer p.Release()

			b := DeclareBinding[struct{}](p, ScopeTarget)
			for _, name := range tt.present {
				err := b.SetUniform(name, anyAccessor(p, name))
				assert.NoError(t, err, name)
			}
			for _, name := range tt.absent {
				err := b.SetUniform(name, Float(func(struct{}) float32 { return 0 }))
				var unknown *UnknownBindingError
				require.ErrorAs(t, err, &unknown, name)
				assert.Equal(t, name, unknown.Name)
				assert.Equal(t, "uniform", unknown.Kind)
			}
		})
	}
}

// anyAccessor builds a zero-valued accessor matching the reflected type of a uniform.
func anyAccessor(p Program, name string) Accessor[struct{}] {
	if _, ok := p.Texture(name); ok {
		return Texture(func(struct{}) resource.Texture { return nil })
	}
	u, _ := p.Uniform(name)
	switch {
	case u.Type == "f32":
		return Float(func(struct{}) float32 { return 0 })
	case u.Type == "vec4f":
		return Vec4(func(struct{}) mgl32.Vec4 { return mgl32.Vec4{} })
	default:
		return Vec4Array(func(struct{}) []mgl32.Vec4 { return nil })
	}
}

func TestDeclareLinkErrors(t *testing.T) {
	const out = "struct Out { @builtin(position) clip: vec4f, @location(0) uv: vec2f, }\n"
	const vertex = out + "@vertex fn vs_main() -> Out { var o: Out; return o; }"

	tests := []struct {
		name     string
		vertex   string
		fragment string
		reason   string
	}{
		{
			name:     "missing vertex entry point",
			vertex:   out,
			fragment: "@fragment fn fs_main() -> @location(0) vec4f { return vec4f(1.0); }",
			reason:   "no @vertex entry point",
		},
		{
			name:     "varying type mismatch",
			vertex:   vertex,
			fragment: "@fragment fn fs_main(@location(0) uv: vec3<f32>) -> @location(0) vec4f { return vec4f(uv, 1.0); }",
			reason:   "vec2f in the vertex stage but vec3f",
		},
		{
			name:     "varying not written",
			vertex:   vertex,
			fragment: "@fragment fn fs_main(@location(1) n: vec3f) -> @location(0) vec4f { return vec4f(n, 1.0); }",
			reason:   "@location(1) is not written",
		},
		{
			name:     "binding disagrees across stages",
			vertex:   "@group(0) @binding(0) var<uniform> a: vec4f;\n" + vertex,
			fragment: "@group(0) @binding(0) var<uniform> a: mat4x4f;\n@fragment fn fs_main() -> @location(0) vec4f { return a[0]; }",
			reason:   "@group(0) @binding(0)",
		},
		{
			name:     "storage buffers",
			vertex:   "@group(0) @binding(0) var<storage, read> data: array<f32>;\n" + vertex,
			fragment: "@fragment fn fs_main() -> @location(0) vec4f { return vec4f(1.0); }",
			reason:   "only uniform buffers",
		},
		{
			name: "duplicate uniform member",
			vertex: "struct A { color: vec4f, }\nstruct B { color: vec4f, }\n" +
				"@group(0) @binding(0) var<uniform> a: A;\n@group(0) @binding(1) var<uniform> b: B;\n" + vertex,
			fragment: "@fragment fn fs_main() -> @location(0) vec4f { return vec4f(1.0); }",
			reason:   `uniform "color" is declared twice`,
		},
		{
			name:     "unsupported vertex input",
			vertex:   out + "@vertex fn vs_main(@location(0) id: vec4u) -> Out { var o: Out; return o; }",
			fragment: "@fragment fn fs_main() -> @location(0) vec4f { return vec4f(1.0); }",
			reason:   "unsupported type vec4u",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := backend.NewHeadless(64, 64)
			_, err := Declare(dev, tt.vertex, tt.fragment, nil, WithLabel("broken"))

			var linkErr *LinkError
			require.ErrorAs(t, err, &linkErr)
			assert.Equal(t, "broken", linkErr.Program)
			assert.Contains(t, linkErr.Reason, tt.reason)
			assert.Zero(t, dev.Live().Programs)
		})
	}
}

func TestDeclareCompileErrors(t *testing.T) {
	dev := backend.NewHeadless(64, 64)
	const vertex = "@vertex fn vs_main() -> @builtin(position) vec4f { return vec4f(0.0); }"

	_, err := Declare(dev, vertex, "#if\n@fragment fn fs_main() {}", nil)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, backend.StageFragment, compileErr.Stage)
	assert.Contains(t, compileErr.Log, "line 1")

	_, err = Declare(dev, "#include <missing>\n"+vertex, "@fragment fn fs_main() {}", nil, WithIncludes(MapSourceProvider{}))
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, backend.StageVertex, compileErr.Stage)

	_, err = Declare(dev, "@vertex fn vs_main( {", "@fragment fn fs_main() {}", nil, WithValidation(true))
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, backend.StageVertex, compileErr.Stage)
	assert.NotEmpty(t, compileErr.Log)
}

func TestDirectivesRejectUnsupportedValues(t *testing.T) {
	dev := backend.NewHeadless(64, 64)

	_, err := Declare(dev, "", "", Directives{"SCALE": 0.5})
	assert.ErrorContains(t, err, `directive "SCALE" has unsupported type float64`)

	defines, err := Directives{"ON": true, "OFF": false, "N": 3, "U": uint32(7)}.defines()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ON": "1", "N": "3", "U": "7"}, defines)
}

func TestProgramReleaseClearsCurrent(t *testing.T) {
	dev := backend.NewHeadless(64, 64)
	p := declareForward(t, dev, nil)
	other := declareForward(t, dev, nil)

	p.Use()
	require.NotNil(t, deviceStateFor(dev))
	assert.Same(t, p.(*program), deviceStateFor(dev).current)
	assert.Equal(t, 2, deviceStateFor(dev).programs)

	p.Release()
	require.NotNil(t, deviceStateFor(dev), "the other program keeps the device tracked")
	assert.Nil(t, deviceStateFor(dev).current)

	other.Release()
	other.Release()
	assert.Nil(t, deviceStateFor(dev), "the device is forgotten with its last program")
	assert.Zero(t, dev.Live().Programs)
	assert.Zero(t, dev.Live().Shaders)

	assert.NoError(t, dev.Flush())
}
