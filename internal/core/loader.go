package core

import (
	"fmt"
	"image"

	// Registered so image.Decode recognizes PNG structural layers; the
	// object format itself is just a plain raster, same as the original's
	// bitmap-backed ObjectDefinition.
	_ "image/png"
	"io"
)

// PixelGrid is the object builder's view of a decoded structural layer: a
// width x height raster with (0, 0) at the lower-left corner, matching
// spec.md §4.2's coordinate convention. RGB must be safe for repeated
// random-access reads.
type PixelGrid struct {
	Width, Height int
	RGB           func(x, y int) [3]byte
}

// DecodeStructuralLayer decodes a PNG (or any image/ registered format) into
// a PixelGrid, flipping the image's top-left row order to the builder's
// bottom-left convention.
func DecodeStructuralLayer(r io.Reader) (PixelGrid, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return PixelGrid{}, fmt.Errorf("core: decode structural layer: %w", err)
	}
	return FromImage(img), nil
}

// FromImage adapts a decoded image.Image into a PixelGrid.
func FromImage(img image.Image) PixelGrid {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	return PixelGrid{
		Width:  w,
		Height: h,
		RGB: func(x, y int) [3]byte {
			// Flip: grid row 0 is the image's bottom row.
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+h-1-y).RGBA()
			return [3]byte{byte(r >> 8), byte(g >> 8), byte(b >> 8)}
		},
	}
}
