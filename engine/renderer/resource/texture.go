package resource

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
)

// texture is the implementation of the Texture interface.
type texture struct {
	dev  backend.Backend
	desc backend.TextureDesc
	id   backend.TextureID
}

// Texture is a 2D, cube or 2D-array texture with its sampler. The handle stays valid across Resize;
// ID reports the GPU object currently backing it.
type Texture interface {
	// ID returns the backend texture currently backing this handle.
	//
	// Returns:
	//   - backend.TextureID: the current GPU texture
	ID() backend.TextureID

	// Desc returns the current description, including the size.
	//
	// Returns:
	//   - backend.TextureDesc: the texture description
	Desc() backend.TextureDesc

	// Width returns the width in texels.
	Width() uint32

	// Height returns the height in texels.
	Height() uint32

	// Write uploads tightly packed texels into one layer or cube face.
	//
	// Parameters:
	//   - layer: the layer or cube face (+X, -X, +Y, -Y, +Z, -Z)
	//   - data: width*height*BytesPerTexel bytes
	//
	// Returns:
	//   - error: an error if the upload fails
	Write(layer uint32, data []byte) error

	// Resize reallocates the texture storage at a new size. Contents are lost.
	//
	// Parameters:
	//   - width, height: the new size in texels
	//
	// Returns:
	//   - error: an error if the reallocation fails
	Resize(width, height uint32) error

	// Release frees the GPU texture. The handle must not be used afterwards.
	Release()
}

var _ Texture = &texture{}

// NewTexture creates a texture and uploads one data slice per layer. Cube textures take either no data or
// all six faces in the order +X, -X, +Y, -Y, +Z, -Z.
//
// Parameters:
//   - dev: the backend that owns the texture
//   - desc: the texture description
//   - data: optional initial contents, one slice per layer
//
// Returns:
//   - Texture: the new texture
//   - error: an error if the description or data is invalid or the allocation fails
func NewTexture(dev backend.Backend, desc backend.TextureDesc, data ...[]byte) (Texture, error) {
	if dev == nil {
		panic("resource: nil backend")
	}
	if desc.Type == backend.TextureCube && len(data) != 0 && len(data) != 6 {
		return nil, fmt.Errorf("resource: cube texture %q needs 6 faces, got %d", desc.Label, len(data))
	}
	if uint32(len(data)) > desc.LayerCount() {
		return nil, fmt.Errorf("resource: texture %q has %d layers, got %d data slices", desc.Label, desc.LayerCount(), len(data))
	}

	t := &texture{dev: dev, desc: desc}
	if err := t.allocate(); err != nil {
		return nil, err
	}
	for layer, pixels := range data {
		if err := t.Write(uint32(layer), pixels); err != nil {
			t.Release()
			return nil, err
		}
	}
	return t, nil
}

func (t *texture) allocate() error {
	id, err := t.dev.CreateTexture(t.desc)
	if err != nil {
		return fmt.Errorf("resource: failed to create texture %q: %w", t.desc.Label, err)
	}
	t.id = id
	return nil
}

func (t *texture) ID() backend.TextureID {
	return t.id
}

func (t *texture) Desc() backend.TextureDesc {
	return t.desc
}

func (t *texture) Width() uint32 {
	return t.desc.Width
}

func (t *texture) Height() uint32 {
	return t.desc.Height
}

func (t *texture) Write(layer uint32, data []byte) error {
	if err := t.dev.WriteTexture(t.id, layer, data); err != nil {
		return fmt.Errorf("resource: failed to write texture %q layer %d: %w", t.desc.Label, layer, err)
	}
	return nil
}

func (t *texture) Resize(width, height uint32) error {
	if width == t.desc.Width && height == t.desc.Height {
		return nil
	}
	old := t.id
	prev := t.desc
	t.desc.Width, t.desc.Height = width, height
	if err := t.allocate(); err != nil {
		t.desc = prev
		return err
	}
	t.dev.ReleaseTexture(old)
	return nil
}

func (t *texture) Release() {
	if t.id == 0 {
		return
	}
	t.dev.ReleaseTexture(t.id)
	t.id = 0
}
