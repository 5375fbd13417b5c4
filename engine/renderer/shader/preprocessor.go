// preprocessor.go implements the directive pre-processor applied to every WGSL stage before compilation.
// WGSL has no pre-processor of its own, so feature flags and light counts are baked in here with
// C-style directives:
//
//	#define NAME [value]    #undef NAME
//	#ifdef NAME             #ifndef NAME
//	#if <expr>              #elif <expr>
//	#else                   #endif
//	#include <name>
//
// Code lines outside a directive get macro substitution on whole identifiers. Each include is expanded at
// most once per Process call, so shared struct declarations can be included from several files.
package shader

import (
	"fmt"
	"regexp"
	"strings"
)

var identifierRegex = regexp.MustCompile(`\b[A-Za-z_]\w*\b`)

// maxSubstitutionDepth bounds recursive macro expansion.
const maxSubstitutionDepth = 16

// condFrame tracks one #if/#ifdef block.
type condFrame struct {
	parentActive bool
	taken        bool
	active       bool
	sawElse      bool
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	defines  map[string]string
	includes SourceProvider
	included map[string]bool
}

// PreProcessor expands directives, includes and macros in WGSL source.
type PreProcessor interface {
	// Process expands source. The define table starts from the values given at construction on every call;
	// #define and #undef inside the source only affect the remainder of that call.
	//
	// Parameters:
	//   - source: the raw shader source
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: an error naming the line of a malformed directive, an unknown include or an unbalanced block
	Process(source string) (string, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with an initial define table and an include provider.
//
// Parameters:
//   - defines: macro names and their replacement text
//   - includes: resolves #include names, may be nil when the source has no includes
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor(defines map[string]string, includes SourceProvider) PreProcessor {
	return &preProcessor{defines: defines, includes: includes}
}

func (p *preProcessor) Process(source string) (string, error) {
	defines := make(map[string]string, len(p.defines))
	for k, v := range p.defines {
		defines[k] = v
	}
	p.included = make(map[string]bool)

	var out strings.Builder
	if err := p.process("", source, defines, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (p *preProcessor) process(file, source string, defines map[string]string, out *strings.Builder) error {
	var stack []condFrame
	active := func() bool {
		return len(stack) == 0 || stack[len(stack)-1].active
	}
	where := func(line int) string {
		if file == "" {
			return fmt.Sprintf("line %d", line)
		}
		return fmt.Sprintf("%s:%d", file, line)
	}

	for i, line := range strings.Split(source, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			if active() {
				out.WriteString(substitute(line, defines))
			}
			out.WriteByte('\n')
			continue
		}

		directive, rest, _ := strings.Cut(trimmed[1:], " ")
		directive = strings.TrimSpace(directive)
		rest = strings.TrimSpace(rest)

		switch directive {
		case "define":
			if !active() {
				break
			}
			name, value, _ := strings.Cut(rest, " ")
			if !identifierRegex.MatchString(name) {
				return fmt.Errorf("%s: malformed #define %q", where(lineNo), rest)
			}
			defines[name] = strings.TrimSpace(value)
		case "undef":
			if active() {
				delete(defines, rest)
			}
		case "ifdef", "ifndef":
			if rest == "" {
				return fmt.Errorf("%s: #%s needs a name", where(lineNo), directive)
			}
			_, ok := defines[rest]
			cond := ok == (directive == "ifdef")
			stack = append(stack, condFrame{parentActive: active(), taken: cond, active: active() && cond})
		case "if":
			cond, err := evaluateCondition(rest, defines)
			if err != nil {
				return fmt.Errorf("%s: %w", where(lineNo), err)
			}
			stack = append(stack, condFrame{parentActive: active(), taken: cond, active: active() && cond})
		case "elif":
			if len(stack) == 0 {
				return fmt.Errorf("%s: #elif without #if", where(lineNo))
			}
			top := &stack[len(stack)-1]
			if top.sawElse {
				return fmt.Errorf("%s: #elif after #else", where(lineNo))
			}
			if top.taken || !top.parentActive {
				top.active = false
				break
			}
			cond, err := evaluateCondition(rest, defines)
			if err != nil {
				return fmt.Errorf("%s: %w", where(lineNo), err)
			}
			top.taken = cond
			top.active = cond
		case "else":
			if len(stack) == 0 {
				return fmt.Errorf("%s: #else without #if", where(lineNo))
			}
			top := &stack[len(stack)-1]
			if top.sawElse {
				return fmt.Errorf("%s: duplicate #else", where(lineNo))
			}
			top.sawElse = true
			top.active = top.parentActive && !top.taken
			top.taken = true
		case "endif":
			if len(stack) == 0 {
				return fmt.Errorf("%s: #endif without #if", where(lineNo))
			}
			stack = stack[:len(stack)-1]
		case "include":
			if !active() {
				break
			}
			name := strings.Trim(rest, `<>"`)
			if name == "" {
				return fmt.Errorf("%s: malformed #include %q", where(lineNo), rest)
			}
			if p.included[name] {
				break
			}
			if p.includes == nil {
				return fmt.Errorf("%s: #include %q with no source provider", where(lineNo), name)
			}
			src, err := p.includes.Source(name)
			if err != nil {
				return fmt.Errorf("%s: %w", where(lineNo), err)
			}
			p.included[name] = true
			if err := p.process(name, src, defines, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: unknown directive #%s", where(lineNo), directive)
		}
		out.WriteByte('\n')
	}

	if len(stack) != 0 {
		return fmt.Errorf("%s: %d unterminated conditional block(s)", where(strings.Count(source, "\n")+1), len(stack))
	}
	return nil
}

// substitute replaces defined identifiers with their values until no defined identifier remains.
func substitute(line string, defines map[string]string) string {
	if len(defines) == 0 {
		return line
	}
	for range maxSubstitutionDepth {
		changed := false
		line = identifierRegex.ReplaceAllStringFunc(line, func(id string) string {
			if v, ok := defines[id]; ok && v != id {
				changed = true
				return v
			}
			return id
		})
		if !changed {
			break
		}
	}
	return line
}
