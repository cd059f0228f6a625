package imaging

import (
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/facade-recolor/internal/recolor"
)

// ColorResult describes one color in the forms a paint picker needs.
//
//   - Hex: "#RRGGBB", accepted as-is by the recolor tools
//   - RGB: 8-bit components
//   - Lab: CIE L*a*b* (D65), the space the recolor engine blends in
type ColorResult struct {
	Hex string           `json:"hex"`
	RGB recolor.RGB      `json:"rgb"`
	Lab recolor.LabPixel `json:"lab"`
}

// NewColorResult builds a ColorResult for c.
func NewColorResult(c recolor.RGB) ColorResult {
	return ColorResult{Hex: c.Hex(), RGB: c, Lab: recolor.ColorToLab(c)}
}

// SampleColor reads the color at (x, y), e.g. to show the current wall color
// next to the chosen paint.
//
// Coordinates are 0-based from the top-left corner of the image bounds.
// Alpha is ignored; 16-bit images are reduced to 8 bits.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	px, py := bounds.Min.X+x, bounds.Min.Y+y
	if !(image.Point{px, py}.In(bounds)) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d", x, y, bounds.Dx(), bounds.Dy())
	}

	r, g, b, _ := img.At(px, py).RGBA()
	res := NewColorResult(recolor.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)})
	return &res, nil
}

// ColorFrequency is a quantized color and the share of pixels it covers.
type ColorFrequency struct {
	Hex        string      `json:"hex"`
	Percentage float64     `json:"percentage"` // 0-100
	RGB        recolor.RGB `json:"rgb"`
}

// DominantColorsResult lists colors by descending frequency.
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`
	// Pixels is the number of pixels that were counted.
	Pixels int `json:"pixels"`
}

// DominantColors returns up to count of the most common colors in img.
//
// When mask is non-nil only pixels whose normalized mask value is above
// recolor.ActivationThreshold are counted, which gives the current color of
// the paintable surface. mask must have the same size as img.
//
// Components are quantized to multiples of 16 before counting, so nearby
// shades fall into one bucket.
func DominantColors(img image.Image, count int, mask *recolor.Mask) (*DominantColorsResult, error) {
	bounds := img.Bounds()
	if mask != nil && (mask.Width != bounds.Dx() || mask.Height != bounds.Dy()) {
		return nil, fmt.Errorf("%w: mask is %dx%d, image is %dx%d", recolor.ErrInvalidMask, mask.Width, mask.Height, bounds.Dx(), bounds.Dy())
	}
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}

	counts := make(map[recolor.RGB]int)
	total := 0
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if mask != nil && mask.Values[y*mask.Width+x] <= recolor.ActivationThreshold {
				continue
			}
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			key := recolor.RGB{
				R: uint8((r >> 8) / 16 * 16),
				G: uint8((g >> 8) / 16 * 16),
				B: uint8((b >> 8) / 16 * 16),
			}
			counts[key]++
			total++
		}
	}

	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		colors = append(colors, ColorFrequency{
			Hex:        c.Hex(),
			Percentage: float64(n) / float64(total) * 100,
			RGB:        c,
		})
	}

	// Hex breaks ties so the order is stable across runs.
	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if len(colors) > count {
		colors = colors[:count]
	}

	return &DominantColorsResult{Colors: colors, Pixels: total}, nil
}
