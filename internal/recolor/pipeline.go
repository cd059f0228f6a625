package recolor

import "fmt"

// Default blend parameters.
const (
	DefaultAlpha       = 0.7
	DefaultMinCoverage = 0.08
)

// Params controls blend strength and the coverage gate.
type Params struct {
	// Alpha is the base blend strength in [0,1].
	Alpha float64
	// MinCoverage is the minimum paintable fraction of the image in [0,1].
	MinCoverage float64
}

// DefaultParams returns Alpha 0.7 and MinCoverage 0.08.
func DefaultParams() Params {
	return Params{Alpha: DefaultAlpha, MinCoverage: DefaultMinCoverage}
}

// Validate fails with ErrInvalidParameter when a field is outside [0,1].
// Out-of-range values are rejected rather than clamped.
func (p Params) Validate() error {
	if !(p.Alpha >= 0 && p.Alpha <= 1) {
		return fmt.Errorf("%w: alpha %v outside [0,1]", ErrInvalidParameter, p.Alpha)
	}
	if !(p.MinCoverage >= 0 && p.MinCoverage <= 1) {
		return fmt.Errorf("%w: min coverage %v outside [0,1]", ErrInvalidParameter, p.MinCoverage)
	}
	return nil
}

// Recolor repaints the masked region of img in the color named by colorHex.
//
// The stages run in order and the first failure is returned, wrapping one of
// the sentinel errors:
//
//	parse color -> validate params -> target to Lab -> validate image ->
//	validate mask -> normalize mask -> check coverage -> image to Lab ->
//	blend -> Lab to RGB
//
// img and mask are never modified. The result is a freshly allocated image
// of the same size; pixels outside the mask are copied unchanged. Identical
// inputs always produce identical output.
func Recolor(img *Image, mask *RawMask, colorHex string, p Params) (*Image, error) {
	target, err := ParseHexColor(colorHex)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	targetLab := ColorToLab(target)

	if err := ValidateImage(img); err != nil {
		return nil, err
	}
	if err := ValidateMask(mask, img); err != nil {
		return nil, err
	}
	norm := NormalizeMask(mask)
	if _, err := CheckCoverage(norm, p.MinCoverage); err != nil {
		return nil, err
	}

	lab := ImageToLab(img)
	blended := Blend(lab, norm, targetLab, p.Alpha)
	return compose(img, blended, norm), nil
}

// compose converts the blended image back to RGB. Pixels with zero mask
// weight are then restored from src so that they come out byte-identical.
func compose(src *Image, lab *LabImage, mask *Mask) *Image {
	out := LabToImage(lab)
	for i, m := range mask.Values {
		if m == 0 {
			copy(out.Pix[i*Channels:i*Channels+Channels], src.Pix[i*Channels:i*Channels+Channels])
		}
	}
	return out
}
