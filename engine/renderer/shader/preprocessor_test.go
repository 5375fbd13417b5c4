package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func TestPreProcessorConditionals(t *testing.T) {
	src := `#ifdef HAS_SHADOW
shadow
#else
noshadow
#endif
#if MAX_LIGHTS > 2 && !defined(SKIP)
many
#elif MAX_LIGHTS > 0
few
#else
none
#endif`

	tests := []struct {
		name    string
		defines map[string]string
		want    []string
	}{
		{"nothing defined", nil, []string{"noshadow", "none"}},
		{"shadow and few lights", map[string]string{"HAS_SHADOW": "1", "MAX_LIGHTS": "2"}, []string{"shadow", "few"}},
		{"many lights", map[string]string{"MAX_LIGHTS": "4"}, []string{"noshadow", "many"}},
		{"skip forces elif", map[string]string{"MAX_LIGHTS": "4", "SKIP": ""}, []string{"noshadow", "few"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewPreProcessor(tt.defines, nil).Process(src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lines(out))
		})
	}
}

func TestPreProcessorMacroSubstitution(t *testing.T) {
	src := `#define COUNT MAX_LIGHTS
var<uniform> colors: array<vec4f, COUNT>;
let MAX_LIGHTS_EXTRA = 1;`

	out, err := NewPreProcessor(map[string]string{"MAX_LIGHTS": "3"}, nil).Process(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"var<uniform> colors: array<vec4f, 3>;", "let MAX_LIGHTS_EXTRA = 1;"}, lines(out))
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	includes := MapSourceProvider{
		"common.wgsl": "struct Common { x: f32, }",
		"a.wgsl":      "#include <common>\nfn a() {}",
	}
	src := "#include <common>\n#include \"a\"\nfn main() {}"

	out, err := NewPreProcessor(nil, includes).Process(src)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "struct Common"))
	assert.Contains(t, out, "fn a() {}")
}

func TestPreProcessorDefinesDoNotLeakBetweenRuns(t *testing.T) {
	pp := NewPreProcessor(map[string]string{"A": "1"}, nil)

	_, err := pp.Process("#undef A\n#define B 2")
	require.NoError(t, err)

	out, err := pp.Process("#if A && !defined(B)\nok\n#endif")
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, lines(out))
}

func TestPreProcessorErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{"unterminated", "#if 1\nx", "unterminated"},
		{"stray endif", "#endif", "line 1: #endif without #if"},
		{"else twice", "#if 1\n#else\n#else\n#endif", "line 3: duplicate #else"},
		{"unknown directive", "#pragma once", "unknown directive #pragma"},
		{"bad condition", "#if (1\n#endif", "missing ')'"},
		{"missing include", "#include <nope>", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPreProcessor(nil, MapSourceProvider{}).Process(tt.source)
			assert.ErrorContains(t, err, tt.message)
		})
	}
}

func TestPreProcessorIncludeErrorNamesFile(t *testing.T) {
	includes := MapSourceProvider{"broken.wgsl": "ok\n#elif 1"}

	_, err := NewPreProcessor(nil, includes).Process("#include <broken>")
	assert.ErrorContains(t, err, "broken:2")
}

func TestEvaluateCondition(t *testing.T) {
	defines := map[string]string{
		"LIGHT_MODEL":     "LIGHT_MODEL_PBR",
		"LIGHT_MODEL_PBR": "1",
		"FLAG":            "",
		"COUNT":           "4",
	}
	tests := []struct {
		expr string
		want bool
	}{
		{"LIGHT_MODEL == 1", true},
		{"LIGHT_MODEL == LIGHT_MODEL_PBR", true},
		{"FLAG", true},
		{"UNDEFINED", false},
		{"!UNDEFINED", true},
		{"defined FLAG && COUNT - 4 == 0", true},
		{"COUNT > 2 || UNDEFINED", true},
		{"-COUNT + 4", false},
		{"(COUNT >= 4) && (COUNT <= 3)", false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := evaluateCondition(tt.expr, defines)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := evaluateCondition("COUNT $ 2", defines)
	assert.Error(t, err)
	_, err = evaluateCondition("", defines)
	assert.Error(t, err)
}
