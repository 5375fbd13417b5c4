package resource

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/go-gl/mathgl/mgl32"
)

type attachment struct {
	texture Texture
	layer   uint32
	owned   bool
}

// renderTarget is the implementation of the RenderTarget interface.
type renderTarget struct {
	dev    backend.Backend
	label  string
	screen bool

	width, height uint32

	framebuffer backend.FramebufferID
	color       []attachment
	depth       *attachment
}

// RenderTarget is a destination for draws: either the presentation surface (no attachments) or an off-screen
// framebuffer with ordered color attachments and at most one depth attachment, all of one size.
type RenderTarget interface {
	// Label returns the debug label of the target.
	Label() string

	// Width returns the viewport width in pixels.
	Width() uint32

	// Height returns the viewport height in pixels.
	Height() uint32

	// Framebuffer returns the backend framebuffer, or backend.ScreenFramebuffer for the surface.
	//
	// Returns:
	//   - backend.FramebufferID: the framebuffer draws are issued into
	Framebuffer() backend.FramebufferID

	// ColorAttachments returns the color attachments in slot order.
	//
	// Returns:
	//   - []Texture: the color attachments
	ColorAttachments() []Texture

	// DepthAttachment returns the depth attachment, or nil if there is none.
	//
	// Returns:
	//   - Texture: the depth attachment
	DepthAttachment() Texture

	// SetupColorTexture creates a sampleable color texture at the target size and attaches it to the next color slot.
	//
	// Parameters:
	//   - format: the color format
	//
	// Returns:
	//   - Texture: the attached texture, owned by the target
	//   - error: an *IncompleteFramebufferError or allocation error
	SetupColorTexture(format backend.TextureFormat) (Texture, error)

	// SetupColorRenderbuffer creates a write-only color attachment at the target size.
	//
	// Parameters:
	//   - format: the color format
	//
	// Returns:
	//   - Texture: the attached renderbuffer, owned by the target
	//   - error: an *IncompleteFramebufferError or allocation error
	SetupColorRenderbuffer(format backend.TextureFormat) (Texture, error)

	// SetupDepthTexture creates a sampleable depth texture at the target size and attaches it.
	//
	// Parameters:
	//   - format: the depth format
	//
	// Returns:
	//   - Texture: the attached texture, owned by the target
	//   - error: an *IncompleteFramebufferError or allocation error
	SetupDepthTexture(format backend.TextureFormat) (Texture, error)

	// SetupDepthRenderbuffer creates a write-only depth attachment at the target size.
	//
	// Parameters:
	//   - format: the depth format
	//
	// Returns:
	//   - Texture: the attached renderbuffer, owned by the target
	//   - error: an *IncompleteFramebufferError or allocation error
	SetupDepthRenderbuffer(format backend.TextureFormat) (Texture, error)

	// AttachColor attaches an existing texture to the next color slot. The caller keeps ownership.
	//
	// Parameters:
	//   - tex: the texture to attach
	//
	// Returns:
	//   - error: an *IncompleteFramebufferError if the new set is incomplete
	AttachColor(tex Texture) error

	// AttachDepth attaches one layer of an existing depth texture. The caller keeps ownership.
	//
	// Parameters:
	//   - tex: the depth texture
	//   - layer: the array layer to render into
	//
	// Returns:
	//   - error: an *IncompleteFramebufferError if the new set is incomplete
	AttachDepth(tex Texture, layer uint32) error

	// Bind makes this target the destination of subsequent backend draws and sets the viewport to its size.
	Bind()

	// Clear binds the target and clears it. Nil values leave that aspect untouched.
	//
	// Parameters:
	//   - color: the clear color, or nil
	//   - depth: the clear depth, or nil
	Clear(color *mgl32.Vec4, depth *float32)

	// DrawIndexed binds the target and issues an indexed draw with the current device state.
	//
	// Parameters:
	//   - indices: the index buffer
	//   - format: the index element type
	//   - count: the number of indices
	DrawIndexed(indices Buffer, format backend.IndexFormat, count uint32)

	// Draw binds the target and issues a non-indexed draw with the current device state.
	//
	// Parameters:
	//   - count: the number of vertices
	Draw(count uint32)

	// Resize resizes every attachment to the new size, preserving attachment order and identity. Textures
	// attached with AttachColor or AttachDepth are resized too, so targets sharing one must be resized
	// together. If any attachment fails, the ones already resized return to the old size.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: an error if an attachment cannot be reallocated
	Resize(width, height uint32) error

	// Release frees the framebuffer and every attachment the target created.
	Release()
}

var _ RenderTarget = &renderTarget{}

// NewRenderTarget creates an off-screen render target with no attachments yet.
//
// Parameters:
//   - dev: the backend that owns the target
//   - label: debug label, used in errors
//   - width, height: the target size in pixels
//
// Returns:
//   - RenderTarget: the new render target
func NewRenderTarget(dev backend.Backend, label string, width, height uint32) RenderTarget {
	if dev == nil {
		panic("resource: nil backend")
	}
	if width == 0 || height == 0 {
		panic(fmt.Sprintf("resource: render target %q has zero size %dx%d", label, width, height))
	}
	return &renderTarget{dev: dev, label: label, width: width, height: height}
}

// NewScreenTarget creates the render target of the presentation surface and configures the surface size.
//
// Parameters:
//   - dev: the backend that owns the surface
//   - width, height: the surface size in pixels
//
// Returns:
//   - RenderTarget: the screen render target
func NewScreenTarget(dev backend.Backend, width, height uint32) RenderTarget {
	if dev == nil {
		panic("resource: nil backend")
	}
	dev.ConfigureSurface(width, height)
	return &renderTarget{dev: dev, label: "screen", screen: true, width: width, height: height}
}

func (r *renderTarget) Label() string {
	return r.label
}

func (r *renderTarget) Width() uint32 {
	return r.width
}

func (r *renderTarget) Height() uint32 {
	return r.height
}

func (r *renderTarget) Framebuffer() backend.FramebufferID {
	return r.framebuffer
}

func (r *renderTarget) ColorAttachments() []Texture {
	out := make([]Texture, len(r.color))
	for i, a := range r.color {
		out[i] = a.texture
	}
	return out
}

func (r *renderTarget) DepthAttachment() Texture {
	if r.depth == nil {
		return nil
	}
	return r.depth.texture
}

func (r *renderTarget) SetupColorTexture(format backend.TextureFormat) (Texture, error) {
	return r.setup(format, true, false)
}

func (r *renderTarget) SetupColorRenderbuffer(format backend.TextureFormat) (Texture, error) {
	return r.setup(format, false, false)
}

func (r *renderTarget) SetupDepthTexture(format backend.TextureFormat) (Texture, error) {
	return r.setup(format, true, true)
}

func (r *renderTarget) SetupDepthRenderbuffer(format backend.TextureFormat) (Texture, error) {
	return r.setup(format, false, true)
}

func (r *renderTarget) setup(format backend.TextureFormat, sampleable, depth bool) (Texture, error) {
	if r.screen {
		return nil, fmt.Errorf("resource: the screen target cannot take attachments")
	}

	slot := fmt.Sprintf("color%d", len(r.color))
	if depth {
		slot = "depth"
	}
	desc := backend.TextureDesc{
		Label:      fmt.Sprintf("%s %s", r.label, slot),
		Type:       backend.Texture2D,
		Width:      r.width,
		Height:     r.height,
		Format:     format,
		Renderable: true,
		Sampleable: sampleable,
		Sampler: backend.SamplerDesc{
			MinFilter: backend.FilterNearest,
			MagFilter: backend.FilterNearest,
			AddressU:  backend.AddressClampToEdge,
			AddressV:  backend.AddressClampToEdge,
		},
	}
	tex, err := NewTexture(r.dev, desc)
	if err != nil {
		return nil, err
	}

	a := attachment{texture: tex, owned: true}
	if depth {
		err = r.setDepth(&a)
	} else {
		err = r.addColor(a)
	}
	if err != nil {
		tex.Release()
		return nil, err
	}
	return tex, nil
}

func (r *renderTarget) AttachColor(tex Texture) error {
	if r.screen {
		return fmt.Errorf("resource: the screen target cannot take attachments")
	}
	return r.addColor(attachment{texture: tex})
}

func (r *renderTarget) AttachDepth(tex Texture, layer uint32) error {
	if r.screen {
		return fmt.Errorf("resource: the screen target cannot take attachments")
	}
	return r.setDepth(&attachment{texture: tex, layer: layer})
}

func (r *renderTarget) addColor(a attachment) error {
	r.color = append(r.color, a)
	if err := r.rebuild(); err != nil {
		r.color = r.color[:len(r.color)-1]
		return err
	}
	return nil
}

func (r *renderTarget) setDepth(a *attachment) error {
	prev := r.depth
	r.depth = a
	if err := r.rebuild(); err != nil {
		r.depth = prev
		return err
	}
	if prev != nil && prev.owned {
		prev.texture.Release()
	}
	return nil
}

// rebuild recreates the framebuffer from the current attachment set and validates completeness.
func (r *renderTarget) rebuild() error {
	desc := backend.FramebufferDesc{Label: r.label}
	for _, a := range r.color {
		desc.Color = append(desc.Color, backend.Attachment{Texture: a.texture.ID(), Layer: a.layer})
	}
	if r.depth != nil {
		desc.Depth = &backend.Attachment{Texture: r.depth.texture.ID(), Layer: r.depth.layer}
	}

	id, err := r.dev.CreateFramebuffer(desc)
	if err != nil {
		incomplete := &IncompleteFramebufferError{Target: r.label, Attachment: "unknown", Err: err}
		var attErr *backend.AttachmentError
		if errors.As(err, &attErr) {
			incomplete.Attachment = attErr.Attachment
		}
		return incomplete
	}

	if r.framebuffer != 0 {
		r.dev.ReleaseFramebuffer(r.framebuffer)
	}
	r.framebuffer = id
	return nil
}

func (r *renderTarget) Bind() {
	r.dev.BindFramebuffer(r.framebuffer)
	r.dev.Viewport(r.width, r.height)
}

func (r *renderTarget) Clear(color *mgl32.Vec4, depth *float32) {
	r.Bind()
	r.dev.Clear(color, depth)
}

func (r *renderTarget) DrawIndexed(indices Buffer, format backend.IndexFormat, count uint32) {
	r.Bind()
	r.dev.DrawIndexed(indices.ID(), format, count)
}

func (r *renderTarget) Draw(count uint32) {
	r.Bind()
	r.dev.Draw(count)
}

func (r *renderTarget) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("resource: render target %q cannot be resized to %dx%d", r.label, width, height)
	}
	if r.screen {
		r.width, r.height = width, height
		r.dev.ConfigureSurface(width, height)
		return nil
	}

	attached := r.all()
	for i, a := range attached {
		if err := a.texture.Resize(width, height); err != nil {
			return r.rollbackResize(attached[:i], err)
		}
	}
	r.width, r.height = width, height
	if len(r.color) == 0 && r.depth == nil {
		return nil
	}
	common.Logger().Debug("render target resized", "label", r.label, "width", width, "height", height)
	return r.rebuild()
}

// rollbackResize returns already resized attachments to the current target size so the set stays complete.
func (r *renderTarget) rollbackResize(resized []attachment, cause error) error {
	errs := []error{cause}
	for _, a := range resized {
		errs = append(errs, a.texture.Resize(r.width, r.height))
	}
	if len(resized) > 0 {
		errs = append(errs, r.rebuild())
	}
	return fmt.Errorf("resource: render target %q kept %dx%d: %w", r.label, r.width, r.height, errors.Join(errs...))
}

func (r *renderTarget) all() []attachment {
	out := append([]attachment(nil), r.color...)
	if r.depth != nil {
		out = append(out, *r.depth)
	}
	return out
}

func (r *renderTarget) Release() {
	if r.framebuffer != 0 {
		r.dev.ReleaseFramebuffer(r.framebuffer)
		r.framebuffer = 0
	}
	for _, a := range r.all() {
		if a.owned {
			a.texture.Release()
		}
	}
	r.color = nil
	r.depth = nil
}
