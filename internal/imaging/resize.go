package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// FitMaxSide shrinks img so that its longest side is at most maxSide,
// keeping the aspect ratio. Images already within the limit, and maxSide <= 0,
// return img unchanged. Downscaling uses a box filter, which averages source
// pixels the way an area resampler does and avoids moire on brick and siding.
func FitMaxSide(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	side := max(w, h)
	if maxSide <= 0 || side <= maxSide {
		return img
	}

	scale := float64(maxSide) / float64(side)
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))
	return imaging.Resize(img, nw, nh, imaging.Box)
}
