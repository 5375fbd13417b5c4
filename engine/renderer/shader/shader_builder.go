package shader

import "github.com/Carmen-Shannon/oxy-shade/common"

// ProgramBuilderOption is a functional option used to configure a Program during Declare.
type ProgramBuilderOption func(*program)

// WithLabel sets the debug label used in errors and logs. An empty label keeps "program".
//
// Parameters:
//   - label: the program label
//
// Returns:
//   - ProgramBuilderOption: a function that sets the label
func WithLabel(label string) ProgramBuilderOption {
	return func(p *program) {
		p.label = common.Coalesce(label, p.label)
	}
}

// WithIncludes sets the SourceProvider that resolves #include directives. Defaults to the embedded sources.
//
// Parameters:
//   - provider: the include resolver
//
// Returns:
//   - ProgramBuilderOption: a function that sets the include provider
func WithIncludes(provider SourceProvider) ProgramBuilderOption {
	return func(p *program) {
		p.includes = provider
	}
}

// WithValidation enables WGSL validation of both pre-processed stages with naga before they reach the device.
// Validation failures are reported as a *CompileError carrying the naga diagnostic.
//
// Parameters:
//   - enabled: whether to validate
//
// Returns:
//   - ProgramBuilderOption: a function that sets validation
func WithValidation(enabled bool) ProgramBuilderOption {
	return func(p *program) {
		p.validate = enabled
	}
}
