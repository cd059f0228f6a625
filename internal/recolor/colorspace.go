package recolor

import (
	"github.com/lucasb-eyer/go-colorful"
)

const (
	// LMax is the largest representable lightness in CIE L*a*b*.
	LMax = 100.0

	// ChromaMin and ChromaMax bound the a* and b* channels.
	ChromaMin = -128.0
	ChromaMax = 127.0

	// go-colorful reports L in [0,1] and a/b scaled by 1/100.
	labScale = 100.0
)

// LabPixel is a single CIE L*a*b* value.
type LabPixel struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// LabImage is a planar L*a*b* image. Each plane has Width*Height entries.
type LabImage struct {
	Width  int
	Height int
	L      []float64
	A      []float64
	B      []float64
}

func newLabImage(width, height int) *LabImage {
	n := width * height
	return &LabImage{
		Width:  width,
		Height: height,
		L:      make([]float64, n),
		A:      make([]float64, n),
		B:      make([]float64, n),
	}
}

// ColorToLab converts an sRGB color to L*a*b* (D65).
func ColorToLab(c RGB) LabPixel {
	l, a, b := colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Lab()
	return LabPixel{L: l * labScale, A: a * labScale, B: b * labScale}
}

// LabToColor converts an L*a*b* value back to sRGB, clamping out-of-gamut
// results.
func LabToColor(p LabPixel) RGB {
	r, g, b := colorful.Lab(p.L/labScale, p.A/labScale, p.B/labScale).Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// ImageToLab converts every pixel of img to L*a*b*. img is not modified.
func ImageToLab(img *Image) *LabImage {
	lab := newLabImage(img.Width, img.Height)
	for i := range lab.L {
		p := img.Pix[i*Channels : i*Channels+Channels]
		v := ColorToLab(RGB{R: p[0], G: p[1], B: p[2]})
		lab.L[i], lab.A[i], lab.B[i] = v.L, v.A, v.B
	}
	return lab
}

// LabToImage converts a planar L*a*b* image back to 8-bit sRGB.
func LabToImage(lab *LabImage) *Image {
	img := NewImage(lab.Width, lab.Height)
	for i := range lab.L {
		c := LabToColor(LabPixel{L: lab.L[i], A: lab.A[i], B: lab.B[i]})
		img.Pix[i*Channels], img.Pix[i*Channels+1], img.Pix[i*Channels+2] = c.R, c.G, c.B
	}
	return img
}
