package resource

import (
	"fmt"
)

// IncompleteFramebufferError is returned when an attachment change leaves a render target with an attachment
// set the device rejects. The target keeps its previous, complete attachment set.
type IncompleteFramebufferError struct {
	// Target is the label of the render target.
	Target string
	// Attachment names the offending slot ("color0".."colorN" or "depth").
	Attachment string
	Err        error
}

func (e *IncompleteFramebufferError) Error() string {
	return fmt.Sprintf("render target %q: incomplete framebuffer at %s: %v", e.Target, e.Attachment, e.Err)
}

func (e *IncompleteFramebufferError) Unwrap() error {
	return e.Err
}
