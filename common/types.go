// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageData holds decoded RGBA pixel data pending GPU upload.
type ImageData struct {
	// Pixels is the RGBA pixel data, 4 bytes per pixel, row-major from the top-left corner.
	Pixels []byte
	// Width is the width of the image in pixels.
	Width uint32
	// Height is the height of the image in pixels.
	Height uint32
}

// SolidImage returns a width x height image filled with one RGBA color.
//
// Parameters:
//   - width, height: image size in pixels
//   - rgba: the fill color
//
// Returns:
//   - ImageData: the filled image
func SolidImage(width, height uint32, rgba [4]byte) ImageData {
	pixels := make([]byte, int(width)*int(height)*4)
	for i := 0; i < len(pixels); i += 4 {
		copy(pixels[i:i+4], rgba[:])
	}
	return ImageData{Pixels: pixels, Width: width, Height: height}
}

// DecodeImage decodes a PNG, JPEG, BMP, TIFF or WebP stream into RGBA pixel data.
//
// Parameters:
//   - r: the encoded image stream
//
// Returns:
//   - ImageData: the decoded pixels and dimensions
//   - error: an error if the stream could not be decoded
func DecodeImage(r io.Reader) (ImageData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return ImageData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}
