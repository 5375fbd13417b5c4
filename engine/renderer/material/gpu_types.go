package material

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-shade/common"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-shade/engine/renderer/resource"
)

// neutralSize is the edge length of the neutral textures. Sampling a constant texture yields the same value
// at any size.
const neutralSize = 4

var (
	neutralWhite = [4]byte{255, 255, 255, 255}
	neutralFlat  = [4]byte{128, 128, 255, 255}
	neutralBlack = [4]byte{0, 0, 0, 255}
)

// neutralColor returns the texel an absent map falls back to: white for multiplicative maps, a flat
// tangent-space normal for normal maps and black for additive maps.
func neutralColor(slot Map) [4]byte {
	switch slot {
	case MapNormal:
		return neutralFlat
	case MapHeight, MapEmissive:
		return neutralBlack
	default:
		return neutralWhite
	}
}

// neutralTextures is the implementation of the NeutralTextures interface.
type neutralTextures struct {
	white, flat, black resource.Texture
}

// NeutralTextures holds the constant textures substituted for absent material maps so shaders never sample an
// unbound texture unit.
type NeutralTextures interface {
	// Resolve returns the material's texture for a slot, or the neutral texture of that slot when the
	// material is nil or has none.
	//
	// Parameters:
	//   - m: the material, may be nil
	//   - slot: the map slot
	//
	// Returns:
	//   - resource.Texture: the texture to bind
	Resolve(m Material, slot Map) resource.Texture

	// Neutral returns the fallback texture of a slot.
	//
	// Parameters:
	//   - slot: the map slot
	//
	// Returns:
	//   - resource.Texture: the neutral texture
	Neutral(slot Map) resource.Texture

	// Release frees the neutral textures.
	Release()
}

var _ NeutralTextures = &neutralTextures{}

// NewNeutralTextures uploads the neutral textures to a device.
//
// Parameters:
//   - dev: the backend to upload to
//
// Returns:
//   - NeutralTextures: the neutral texture set
//   - error: an error if a texture cannot be created
func NewNeutralTextures(dev backend.Backend) (NeutralTextures, error) {
	n := &neutralTextures{}
	var errs []error
	create := func(label string, texel [4]byte) resource.Texture {
		img := common.SolidImage(neutralSize, neutralSize, texel)
		tex, err := resource.NewTexture(dev, backend.TextureDesc{
			Label:      label,
			Type:       backend.Texture2D,
			Width:      img.Width,
			Height:     img.Height,
			Format:     backend.FormatRGBA8,
			Sampler:    backend.SamplerDesc{AddressU: backend.AddressRepeat, AddressV: backend.AddressRepeat},
			Sampleable: true,
		}, img.Pixels)
		if err != nil {
			errs = append(errs, fmt.Errorf("material: neutral %s texture: %w", label, err))
		}
		return tex
	}
	n.white = create("neutral white", neutralWhite)
	n.flat = create("neutral flat normal", neutralFlat)
	n.black = create("neutral black", neutralBlack)
	if err := errors.Join(errs...); err != nil {
		n.Release()
		return nil, err
	}
	return n, nil
}

func (n *neutralTextures) Resolve(m Material, slot Map) resource.Texture {
	if m != nil {
		if tex := m.Texture(slot); tex != nil {
			return tex
		}
	}
	return n.Neutral(slot)
}

func (n *neutralTextures) Neutral(slot Map) resource.Texture {
	switch neutralColor(slot) {
	case neutralFlat:
		return n.flat
	case neutralBlack:
		return n.black
	default:
		return n.white
	}
}

func (n *neutralTextures) Release() {
	for _, tex := range []resource.Texture{n.white, n.flat, n.black} {
		if tex != nil {
			tex.Release()
		}
	}
}
