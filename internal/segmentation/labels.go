package segmentation

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
)

// ErrNotConfigured is returned when no segmentation model is available.
var ErrNotConfigured = errors.New("segmentation model not configured")

// Scene selects which class counts as paintable.
type Scene string

const (
	// SceneAuto paints whichever of wall or building covers more pixels.
	SceneAuto Scene = "auto"
	// SceneInterior paints walls.
	SceneInterior Scene = "interior"
	// SceneExterior paints buildings.
	SceneExterior Scene = "exterior"
)

// ParseScene accepts "auto", "interior" or "exterior" (any case). An empty
// string means SceneAuto.
func ParseScene(s string) (Scene, error) {
	switch Scene(strings.ToLower(strings.TrimSpace(s))) {
	case "", SceneAuto:
		return SceneAuto, nil
	case SceneInterior:
		return SceneInterior, nil
	case SceneExterior:
		return SceneExterior, nil
	}
	return "", fmt.Errorf("unknown scene %q (want auto, interior or exterior)", s)
}

// Classes holds the model's class indices for the paintable surfaces.
type Classes struct {
	Wall     int
	Building int
}

// DefaultClasses returns the ADE20K indices used by the bundled model
// configuration: wall 12, building 2.
func DefaultClasses() Classes {
	return Classes{Wall: 12, Building: 2}
}

// LabelMap is a per-pixel class index map produced by a segmentation model.
type LabelMap struct {
	Width  int
	Height int
	Labels []uint8
}

// LabelMapFromImage reads class indices from the gray value of each pixel.
func LabelMapFromImage(img image.Image) *LabelMap {
	b := img.Bounds()
	lm := &LabelMap{Width: b.Dx(), Height: b.Dy(), Labels: make([]uint8, b.Dx()*b.Dy())}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			lm.Labels[i] = color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			i++
		}
	}
	return lm
}

// Count returns how many pixels carry class.
func (lm *LabelMap) Count(class int) int {
	n := 0
	for _, l := range lm.Labels {
		if int(l) == class {
			n++
		}
	}
	return n
}

// Resize scales the label map to width x height with nearest-neighbour
// sampling, so no new class indices are invented along boundaries.
func (lm *LabelMap) Resize(width, height int) *LabelMap {
	if lm.Width == width && lm.Height == height {
		return lm
	}
	src := &image.Gray{Pix: lm.Labels, Stride: lm.Width, Rect: image.Rect(0, 0, lm.Width, lm.Height)}
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return &LabelMap{Width: width, Height: height, Labels: dst.Pix}
}

// Validate checks that the label buffer matches the declared size.
func (lm *LabelMap) Validate() error {
	if lm.Width <= 0 || lm.Height <= 0 || len(lm.Labels) != lm.Width*lm.Height {
		return fmt.Errorf("label map has %d labels for %dx%d", len(lm.Labels), lm.Width, lm.Height)
	}
	return nil
}

// Segmenter is a semantic segmentation model.
type Segmenter interface {
	Segment(ctx context.Context, img image.Image) (*LabelMap, error)
}

// TargetClass returns the class to paint for scene. For SceneAuto the class
// with the larger area wins; ties go to the wall.
func TargetClass(lm *LabelMap, scene Scene, classes Classes) int {
	switch scene {
	case SceneInterior:
		return classes.Wall
	case SceneExterior:
		return classes.Building
	}
	if lm.Count(classes.Wall) >= lm.Count(classes.Building) {
		return classes.Wall
	}
	return classes.Building
}
