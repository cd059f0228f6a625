package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/facade-recolor/internal/recolor"
)

// ToBuffer flattens img into an RGB recolor.Image. Alpha is dropped; the
// result always starts at (0,0).
func ToBuffer(img image.Image) *recolor.Image {
	src := imaging.Clone(img) // *image.NRGBA anchored at (0,0)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := recolor.NewImage(w, h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			copy(out.Pix[(y*w+x)*recolor.Channels:], row[x*4:x*4+3])
		}
	}
	return out
}

// FromBuffer converts a recolor.Image into an opaque *image.NRGBA.
func FromBuffer(buf *recolor.Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, buf.Width, buf.Height))
	for i := 0; i < buf.Width*buf.Height; i++ {
		copy(out.Pix[i*4:i*4+3], buf.Pix[i*recolor.Channels:i*recolor.Channels+3])
		out.Pix[i*4+3] = 0xff
	}
	return out
}

// MaskFromImage reads a mask image as an 8-bit single-channel recolor mask.
// Color inputs are reduced to luma first.
func MaskFromImage(img image.Image) *recolor.RawMask {
	b := img.Bounds()
	vals := make([]uint8, b.Dx()*b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			vals[i] = color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			i++
		}
	}
	return recolor.NewByteMask(b.Dx(), b.Dy(), vals)
}

// MaskToImage renders a normalized mask as an 8-bit grayscale image.
func MaskToImage(m *recolor.Mask) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Values {
		out.Pix[i] = uint8(v*255 + 0.5)
	}
	return out
}
