package recolor

import "errors"

var (
	// ErrInvalidColorFormat is returned when a color string is not six hex digits
	// after stripping an optional leading '#'.
	ErrInvalidColorFormat = errors.New("invalid color format")

	// ErrInvalidImage is returned when an image buffer is not a dense 3-channel array.
	ErrInvalidImage = errors.New("invalid image")

	// ErrInvalidMask is returned when a mask is not single-channel or its
	// dimensions differ from the image.
	ErrInvalidMask = errors.New("invalid mask")

	// ErrInsufficientCoverage is returned when too few pixels are marked paintable.
	ErrInsufficientCoverage = errors.New("insufficient mask coverage")

	// ErrInvalidParameter is returned when alpha or minimum coverage is outside [0,1].
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Error kind tags reported by KindOf.
const (
	KindInvalidColorFormat   = "invalid_color_format"
	KindInvalidImage         = "invalid_image"
	KindInvalidMask          = "invalid_mask"
	KindInsufficientCoverage = "insufficient_coverage"
	KindInvalidParameter     = "invalid_parameter"
)

// KindOf returns the tag for the recolor error wrapped by err, or "" if err
// does not wrap one.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidColorFormat):
		return KindInvalidColorFormat
	case errors.Is(err, ErrInvalidImage):
		return KindInvalidImage
	case errors.Is(err, ErrInvalidMask):
		return KindInvalidMask
	case errors.Is(err, ErrInsufficientCoverage):
		return KindInsufficientCoverage
	case errors.Is(err, ErrInvalidParameter):
		return KindInvalidParameter
	}
	return ""
}
