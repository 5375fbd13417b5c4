package backend

import "fmt"

// AttachmentError reports why an attachment set cannot form a complete framebuffer.
type AttachmentError struct {
	// Attachment names the offending slot, "color0".."colorN" or "depth".
	Attachment string
	Reason     string
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attachment %s: %s", e.Attachment, e.Reason)
}

// ValidateFramebuffer checks an attachment set for completeness: every attachment exists and is renderable,
// color slots hold color formats, the depth slot holds a depth format, layers are in range and all
// attachments share one size.
//
// Parameters:
//   - desc: the attachment set
//   - lookup: resolves a texture ID to its description
//
// Returns:
//   - error: an *AttachmentError naming the first offending attachment, or nil
func ValidateFramebuffer(desc FramebufferDesc, lookup func(TextureID) (TextureDesc, bool)) error {
	if len(desc.Color) == 0 && desc.Depth == nil {
		return &AttachmentError{Attachment: "none", Reason: "framebuffer has no attachments"}
	}

	var width, height uint32
	sized := false

	check := func(name string, a Attachment, wantDepth bool) error {
		td, ok := lookup(a.Texture)
		if !ok {
			return &AttachmentError{Attachment: name, Reason: fmt.Sprintf("texture %d does not exist", a.Texture)}
		}
		if !td.Renderable {
			return &AttachmentError{Attachment: name, Reason: fmt.Sprintf("texture %q is not renderable", td.Label)}
		}
		if td.Format.IsDepth() != wantDepth {
			return &AttachmentError{Attachment: name, Reason: fmt.Sprintf("format %s is not valid for this slot", td.Format)}
		}
		if a.Layer >= td.LayerCount() {
			return &AttachmentError{Attachment: name, Reason: fmt.Sprintf("layer %d out of range (%d layers)", a.Layer, td.LayerCount())}
		}
		if !sized {
			width, height, sized = td.Width, td.Height, true
		} else if td.Width != width || td.Height != height {
			return &AttachmentError{
				Attachment: name,
				Reason:     fmt.Sprintf("size %dx%d does not match %dx%d", td.Width, td.Height, width, height),
			}
		}
		return nil
	}

	for i, a := range desc.Color {
		if err := check(fmt.Sprintf("color%d", i), a, false); err != nil {
			return err
		}
	}
	if desc.Depth != nil {
		if err := check("depth", *desc.Depth, true); err != nil {
			return err
		}
	}
	return nil
}
