package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
)

// wgslVertexFormatMap maps WGSL type names to their backend vertex format
var wgslVertexFormatMap = map[string]backend.VertexFormat{
	"f32":   backend.VertexFloat32,
	"vec2f": backend.VertexFloat32x2,
	"vec3f": backend.VertexFloat32x3,
	"vec4f": backend.VertexFloat32x4,
}

// wgslTextureDimensionMap maps WGSL texture base names to the texture type they sample
var wgslTextureDimensionMap = map[string]backend.TextureType{
	"texture_2d":             backend.Texture2D,
	"texture_2d_array":       backend.Texture2DArray,
	"texture_cube":           backend.TextureCube,
	"texture_depth_2d":       backend.Texture2D,
	"texture_depth_2d_array": backend.Texture2DArray,
	"texture_depth_cube":     backend.TextureCube,
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// attributeRegex matches any @name or @name(...) attribute
	attributeRegex = regexp.MustCompile(`@\w+(?:\([^)]*\))?`)

	// fieldRegex matches a struct field or parameter: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// entryRegex matches the head of a @vertex or @fragment function up to its opening parenthesis
	entryRegex = regexp.MustCompile(`@(vertex|fragment)\s+fn\s+(\w+)\s*\(`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> scene: SceneUniforms;
	// or handle types: @group(2) @binding(0) var albedoMap: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)

	// shorthandVectorRegex matches vecN<T> for the scalar types that have a one-letter suffix alias
	shorthandVectorRegex = regexp.MustCompile(`(vec[234]|mat[234]x[234])<(f32|i32|u32)>`)
)

// reflectStage parses one pre-processed WGSL module for the entry point of the given stage.
//
// Parameters:
//   - source: the pre-processed WGSL source
//   - stage: the stage whose entry point is reflected
//
// Returns:
//   - *stageReflection: the entry point, its inputs and outputs, the module's resources and struct layouts
func reflectStage(source string, stage backend.ShaderStage) *stageReflection {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)

	r := &stageReflection{
		structs: make(map[string]parsedStruct, len(structs)),
		layouts: computeStructSizes(structs),
	}
	for _, ps := range structs {
		r.structs[ps.name] = ps
	}

	want := "vertex"
	if stage == backend.StageFragment {
		want = "fragment"
	}
	for _, m := range entryRegex.FindAllStringSubmatchIndex(cleaned, -1) {
		if cleaned[m[2]:m[3]] != want {
			continue
		}
		r.entry = cleaned[m[4]:m[5]]
		params, ret := splitSignature(cleaned[m[1]:])
		r.inputs = r.varyings(params)
		r.outputs = r.varyings(splitAtTopLevelCommas(ret))
		break
	}

	r.resources = parseResources(cleaned)
	return r
}

// splitSignature returns the parameter list and return type of a function whose text starts right after
// the opening parenthesis of its parameter list.
func splitSignature(rest string) ([]string, string) {
	depth := 1
	end := -1
	for i := 0; i < len(rest) && end < 0; i++ {
		switch rest[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i
			}
		}
	}
	if end < 0 {
		return nil, ""
	}

	params := splitAtTopLevelCommas(rest[:end])
	tail := rest[end+1:]
	if body := strings.IndexByte(tail, '{'); body >= 0 {
		tail = tail[:body]
	}
	ret := ""
	if _, after, ok := strings.Cut(tail, "->"); ok {
		ret = strings.TrimSpace(after)
	}
	return params, ret
}

// varyings resolves parameters or a return type into location-addressed values. Struct-typed entries are
// flattened into their @location fields; builtins are dropped.
func (r *stageReflection) varyings(parts []string) []varying {
	var out []varying
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || builtinRegex.MatchString(part) {
			continue
		}

		if loc := locationRegex.FindStringSubmatch(part); loc != nil {
			n, _ := strconv.Atoi(loc[1])
			name := ""
			typeName := strings.TrimSpace(attributeRegex.ReplaceAllString(part, ""))
			if fm := fieldRegex.FindStringSubmatch(part); fm != nil {
				name, typeName = fm[1], strings.TrimSpace(fm[2])
			}
			out = append(out, varying{name: name, location: n, typeName: normalizeType(typeName)})
			continue
		}

		typeName := part
		if fm := fieldRegex.FindStringSubmatch(part); fm != nil {
			typeName = strings.TrimSpace(fm[2])
		}
		ps, ok := r.structs[strings.TrimSpace(attributeRegex.ReplaceAllString(typeName, ""))]
		if !ok {
			continue
		}
		for _, f := range ps.fields {
			if f.isBuiltin || f.location < 0 {
				continue
			}
			out = append(out, varying{name: f.name, location: f.location, typeName: normalizeType(f.typeName)})
		}
	}
	return out
}

// parseResources extracts all @group(N) @binding(M) declarations from comment-free WGSL source.
func parseResources(cleaned string) []resourceDecl {
	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)
	out := make([]resourceDecl, 0, len(matches))
	for _, match := range matches {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		out = append(out, resourceDecl{
			group:        uint32(group),
			binding:      uint32(binding),
			addressSpace: strings.TrimSpace(match[3]),
			name:         strings.TrimSpace(match[4]),
			typeName:     normalizeType(match[5]),
		})
	}
	return out
}

// parseStructBlocks collects every struct declaration of a comment-free module.
func parseStructBlocks(source string) []parsedStruct {
	var structs []parsedStruct
	for _, m := range structBlockRegex.FindAllStringSubmatch(source, -1) {
		structs = append(structs, parsedStruct{name: m[1], fields: parseStructFields(m[2])})
	}
	return structs
}

// parseStructFields splits a struct body into members. Members keep their @location index, or -1,
// and whether they are a @builtin.
func parseStructFields(body string) []parsedField {
	var fields []parsedField
	for _, member := range splitAtTopLevelCommas(body) {
		member = strings.TrimSpace(member)
		m := fieldRegex.FindStringSubmatch(member)
		if member == "" || m == nil {
			continue
		}
		f := parsedField{
			name:      m[1],
			typeName:  normalizeType(m[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(member),
		}
		if loc := locationRegex.FindStringSubmatch(member); loc != nil {
			if n, err := strconv.Atoi(loc[1]); err == nil {
				f.location = n
			}
		}
		fields = append(fields, f)
	}
	return fields
}

// normalizeType rewrites a WGSL type into one canonical spelling so types can be compared across stages:
// whitespace is removed and vecN<f32>-style types use their suffix aliases (vec3f, mat4x4f, vec2i).
func normalizeType(typeName string) string {
	t := strings.Join(strings.Fields(typeName), "")
	return shorthandVectorRegex.ReplaceAllStringFunc(t, func(m string) string {
		sub := shorthandVectorRegex.FindStringSubmatch(m)
		return sub[1] + sub[2][:1]
	})
}

// splitTypeParams separates "texture_2d<f32>" into "texture_2d" and "f32". Types without parameters
// come back whole with empty params.
func splitTypeParams(typeName string) (base string, params string) {
	base, params, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return base, strings.TrimSpace(strings.TrimSuffix(params, ">"))
}

// stripComments blanks out line comments and nestable block comments in one pass. Newlines are kept
// so offsets into the result still line up with the source's lines.
func stripComments(source string) string {
	out := make([]byte, 0, len(source))
	nested, inLine := 0, false
	for i := 0; i < len(source); i++ {
		c := source[i]
		var next byte
		if i+1 < len(source) {
			next = source[i+1]
		}
		switch {
		case inLine:
			if c == '\n' {
				inLine = false
				out = append(out, c)
			}
		case c == '/' && next == '*':
			nested++
			i++
		case nested > 0 && c == '*' && next == '/':
			nested--
			i++
		case nested > 0:
			if c == '\n' {
				out = append(out, c)
			}
		case c == '/' && next == '/':
			inLine = true
			i++
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

// splitAtTopLevelCommas splits a parameter or member list. Commas inside <...> or (...), as in
// array<vec4f, 4> or @interpolate(flat, either), do not split.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	nesting, from := 0, 0
	for i, c := range s {
		switch c {
		case '<', '(':
			nesting++
		case '>', ')':
			nesting = max(nesting-1, 0)
		case ',':
			if nesting == 0 {
				parts = append(parts, s[from:i])
				from = i + 1
			}
		}
	}
	return append(parts, s[from:])
}
