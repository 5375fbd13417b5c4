package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
)

// CompileError reports that one stage failed to pre-process, validate or compile.
type CompileError struct {
	Program string
	Stage   backend.ShaderStage
	// Log is the compiler or pre-processor diagnostic.
	Log string
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("shader %q: %s stage failed to compile: %s", e.Program, e.Stage, e.Log)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// LinkError reports that the two stages of a program are incompatible or that the device refused to link them.
type LinkError struct {
	Program string
	Reason  string
	Err     error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("shader %q: link failed: %s", e.Program, e.Reason)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// UnknownBindingError is returned when a binding names an attribute or uniform the linked program does not have.
// This happens legitimately when a directive compiled the uniform out.
type UnknownBindingError struct {
	Program string
	// Kind is "attribute" or "uniform".
	Kind string
	Name string
}

func (e *UnknownBindingError) Error() string {
	return fmt.Sprintf("shader %q: no %s named %q", e.Program, e.Kind, e.Name)
}

// MissingBindingError is returned when a draw lacks a buffer or texture the program requires.
type MissingBindingError struct {
	Program string
	// Kind is "attribute" or "texture".
	Kind string
	Name string
}

func (e *MissingBindingError) Error() string {
	return fmt.Sprintf("shader %q: draw is missing %s %q", e.Program, e.Kind, e.Name)
}

// IgnoreUnknown returns nil for an *UnknownBindingError and err otherwise. Bindings for names a
// directive may compile out are declared through it.
//
// Parameters:
//   - err: the error returned by SetAttribute or SetUniform
//
// Returns:
//   - error: err, unless it reports an unknown name
func IgnoreUnknown(err error) error {
	var unknown *UnknownBindingError
	if errors.As(err, &unknown) {
		return nil
	}
	return err
}
