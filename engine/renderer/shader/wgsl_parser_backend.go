package shader

import (
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-shade/common"
)

// wgslPrimitiveLayoutMap holds the size and alignment of the host-shareable scalar, vector and matrix
// types, keyed by their normalized spelling.
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"bool": {4, 4},

	"vec2f": {8, 8},
	"vec3f": {12, 16},
	"vec4f": {16, 16},
	"vec2i": {8, 8},
	"vec3i": {12, 16},
	"vec4i": {16, 16},
	"vec2u": {8, 8},
	"vec3u": {12, 16},
	"vec4u": {16, 16},

	// matCxR: C columns of vecR, stride = roundUp(align(vecR), size(vecR))
	"mat2x2f": {16, 8},
	"mat3x3f": {48, 16},
	"mat4x4f": {64, 16},
}

// resolveTypeLayout looks up the layout of a normalized type such as "f32", "SceneUniforms" or
// "array<vec4f,4>". Struct types must already be in knownTypes. Runtime-sized arrays and unknown types
// report false.
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	elemType, count, ok := splitArrayType(typeName)
	if !ok || count == 0 {
		return wgslTypeLayout{}, false
	}
	elemLayout, ok := resolveTypeLayout(elemType, knownTypes)
	if !ok {
		return wgslTypeLayout{}, false
	}
	// uniform address space arrays have a 16-byte aligned stride
	align := max(elemLayout.align, 16)
	stride := common.AlignUp(align, elemLayout.size)
	return wgslTypeLayout{count * stride, align}, true
}

// splitArrayType splits array<T,N> into its element type and count. A runtime-sized array yields a count of 0.
func splitArrayType(typeName string) (string, uint64, bool) {
	if !strings.HasPrefix(typeName, "array<") || !strings.HasSuffix(typeName, ">") {
		return "", 0, false
	}
	inner := typeName[6 : len(typeName)-1]
	cut := strings.LastIndexByte(inner, ',')
	if cut < 0 {
		return inner, 0, true
	}
	count, err := strconv.ParseUint(strings.TrimSpace(inner[cut+1:]), 10, 64)
	if err != nil {
		return "", 0, false
	}
	return strings.TrimSpace(inner[:cut]), count, true
}

// computeStructLayout places the members of a struct by the host-shareable layout rules: every member
// starts at the next multiple of its alignment and the struct is padded to its largest alignment.
// @builtin members carry no storage and are skipped. It reports false when a member type is unknown.
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, []fieldOffset, bool) {
	var end uint64
	align := uint64(1)
	members := make([]fieldOffset, 0, len(ps.fields))
	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		l, ok := resolveTypeLayout(f.typeName, knownTypes)
		if !ok {
			return wgslTypeLayout{}, nil, false
		}
		at := common.AlignUp(l.align, end)
		members = append(members, fieldOffset{name: f.name, typeName: f.typeName, offset: at, size: l.size})
		end = at + l.size
		align = max(align, l.align)
	}
	return wgslTypeLayout{size: common.AlignUp(align, end), align: align}, members, true
}

// computeStructSizes lays out every struct of a module. Structs may nest other structs in any
// declaration order; structs that cannot be laid out, including recursive ones, are left out.
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	byName := make(map[string]parsedStruct, len(structs))
	for _, ps := range structs {
		byName[ps.name] = ps
	}
	layouts := make(map[string]wgslTypeLayout, len(structs))
	visiting := make(map[string]bool)

	var resolve func(name string)
	resolve = func(name string) {
		if _, done := layouts[name]; done || visiting[name] {
			return
		}
		visiting[name] = true
		defer delete(visiting, name)

		ps := byName[name]
		for _, f := range ps.fields {
			elem := f.typeName
			for {
				inner, _, ok := splitArrayType(elem)
				if !ok {
					break
				}
				elem = inner
			}
			if _, isStruct := byName[elem]; isStruct {
				resolve(elem)
			}
		}
		if l, _, ok := computeStructLayout(ps, layouts); ok {
			layouts[name] = l
		}
	}
	for _, ps := range structs {
		resolve(ps.name)
	}
	return layouts
}
