package recolor

import "fmt"

// Channels is the number of interleaved channels in an Image.
const Channels = 3

// Image is a dense, row-major pixel buffer with interleaved R, G, B bytes.
//
// Pixel (x, y) occupies Pix[(y*Width+x)*3 : (y*Width+x)*3+3].
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewImage allocates a zeroed width x height image.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}
}

// At returns the color of pixel (x, y).
func (img *Image) At(x, y int) RGB {
	i := (y*img.Width + x) * Channels
	return RGB{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
}

// Set writes the color of pixel (x, y).
func (img *Image) Set(x, y int, c RGB) {
	i := (y*img.Width + x) * Channels
	img.Pix[i], img.Pix[i+1], img.Pix[i+2] = c.R, c.G, c.B
}

// ValidateImage fails with ErrInvalidImage unless img is a non-empty dense
// 3-channel buffer.
func ValidateImage(img *Image) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, img.Width, img.Height)
	}
	if want := img.Width * img.Height * Channels; len(img.Pix) != want {
		return fmt.Errorf("%w: %d bytes for %dx%d, want %d",
			ErrInvalidImage, len(img.Pix), img.Width, img.Height, want)
	}
	return nil
}
