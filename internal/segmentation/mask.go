package segmentation

import (
	"context"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"

	"github.com/ironsheep/facade-recolor/internal/recolor"
)

// FeatherRadius is the Gaussian radius applied to the hard class boundary.
const FeatherRadius = 2.0

// MaskFromLabels builds a feathered byte mask of the paintable class for a
// width x height photo. The label map is resized to the photo first.
// featherRadius <= 0 leaves the edge hard.
func MaskFromLabels(lm *LabelMap, scene Scene, classes Classes, width, height int, featherRadius float64) (*recolor.RawMask, error) {
	if err := lm.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	target := TargetClass(lm, scene, classes)
	scaled := lm.Resize(width, height)

	hard := image.NewGray(image.Rect(0, 0, width, height))
	for i, l := range scaled.Labels {
		if int(l) == target {
			hard.Pix[i] = 255
		}
	}

	vals := hard.Pix
	if featherRadius > 0 {
		soft := blur.Gaussian(hard, featherRadius)
		vals = make([]uint8, width*height)
		for i := range vals {
			// Gray input blurs to equal R, G and B.
			vals[i] = soft.Pix[i*4]
		}
	}

	return recolor.NewByteMask(width, height, vals), nil
}

// MaskSource produces coverage masks for photos using an injected model.
type MaskSource struct {
	Segmenter     Segmenter
	Classes       Classes
	FeatherRadius float64
}

// NewMaskSource returns a MaskSource using seg, which may be nil when no
// model is deployed.
func NewMaskSource(seg Segmenter, classes Classes) *MaskSource {
	return &MaskSource{Segmenter: seg, Classes: classes, FeatherRadius: FeatherRadius}
}

// Mask runs the model on img and returns the paintable mask for scene at the
// size of img.
func (s *MaskSource) Mask(ctx context.Context, img image.Image, scene Scene) (*recolor.RawMask, error) {
	if s == nil || s.Segmenter == nil {
		return nil, ErrNotConfigured
	}
	lm, err := s.Segmenter.Segment(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}
	b := img.Bounds()
	return MaskFromLabels(lm, scene, s.Classes, b.Dx(), b.Dy(), s.FeatherRadius)
}

// FromLabels builds the mask for a label map supplied by the caller instead
// of the model.
func (s *MaskSource) FromLabels(lm *LabelMap, scene Scene, width, height int) (*recolor.RawMask, error) {
	classes, radius := DefaultClasses(), FeatherRadius
	if s != nil {
		classes, radius = s.Classes, s.FeatherRadius
	}
	return MaskFromLabels(lm, scene, classes, width, height, radius)
}
