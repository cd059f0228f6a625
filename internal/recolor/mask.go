package recolor

import (
	"fmt"
	"math"
)

// ActivationThreshold is the normalized value above which a mask pixel counts
// toward coverage.
const ActivationThreshold = 0.5

// MaskKind selects which representation a RawMask carries.
type MaskKind int

const (
	// MaskByte masks hold values in [0,255].
	MaskByte MaskKind = iota
	// MaskFloat masks hold values in [0,1].
	MaskFloat
	// MaskBool masks hold paintable/not-paintable flags.
	MaskBool
)

func (k MaskKind) String() string {
	switch k {
	case MaskByte:
		return "byte"
	case MaskFloat:
		return "float"
	case MaskBool:
		return "bool"
	}
	return fmt.Sprintf("MaskKind(%d)", int(k))
}

// RawMask is a coverage mask as supplied by a mask source, before
// normalization. Only the slice matching Kind is read.
type RawMask struct {
	Width    int
	Height   int
	Channels int
	Kind     MaskKind
	Bytes    []uint8
	Floats   []float64
	Bools    []bool
}

// NewByteMask wraps a [0,255] single-channel buffer.
func NewByteMask(width, height int, values []uint8) *RawMask {
	return &RawMask{Width: width, Height: height, Channels: 1, Kind: MaskByte, Bytes: values}
}

// NewFloatMask wraps a [0,1] single-channel buffer.
func NewFloatMask(width, height int, values []float64) *RawMask {
	return &RawMask{Width: width, Height: height, Channels: 1, Kind: MaskFloat, Floats: values}
}

// NewBoolMask wraps a boolean single-channel buffer.
func NewBoolMask(width, height int, values []bool) *RawMask {
	return &RawMask{Width: width, Height: height, Channels: 1, Kind: MaskBool, Bools: values}
}

func (m *RawMask) dataLen() (int, bool) {
	switch m.Kind {
	case MaskByte:
		return len(m.Bytes), true
	case MaskFloat:
		return len(m.Floats), true
	case MaskBool:
		return len(m.Bools), true
	}
	return 0, false
}

// Mask is a normalized coverage mask; every value lies in [0,1].
type Mask struct {
	Width  int
	Height int
	Values []float64
}

// ValidateMask fails with ErrInvalidMask if m is not a single-channel buffer
// with the same dimensions as img.
func ValidateMask(m *RawMask, img *Image) error {
	if m == nil {
		return fmt.Errorf("%w: nil mask", ErrInvalidMask)
	}
	if m.Channels != 1 {
		return fmt.Errorf("%w: %d channels, want 1", ErrInvalidMask, m.Channels)
	}
	if m.Width != img.Width || m.Height != img.Height {
		return fmt.Errorf("%w: mask is %dx%d, image is %dx%d",
			ErrInvalidMask, m.Width, m.Height, img.Width, img.Height)
	}
	n, ok := m.dataLen()
	if !ok {
		return fmt.Errorf("%w: unknown kind %v", ErrInvalidMask, m.Kind)
	}
	if n != m.Width*m.Height {
		return fmt.Errorf("%w: %d %v values for %dx%d", ErrInvalidMask, n, m.Kind, m.Width, m.Height)
	}
	return nil
}

// NormalizeMask maps m onto [0,1]: bytes are divided by 255, booleans become 0
// or 1, floats are taken as-is with out-of-range values clamped and NaN
// treated as 0. m must already have passed ValidateMask.
func NormalizeMask(m *RawMask) *Mask {
	out := &Mask{Width: m.Width, Height: m.Height, Values: make([]float64, m.Width*m.Height)}
	switch m.Kind {
	case MaskByte:
		for i, v := range m.Bytes {
			out.Values[i] = float64(v) / 255.0
		}
	case MaskFloat:
		for i, v := range m.Floats {
			out.Values[i] = clampUnit(v)
		}
	case MaskBool:
		for i, v := range m.Bools {
			if v {
				out.Values[i] = 1
			}
		}
	}
	return out
}

// Coverage returns the fraction of pixels whose value exceeds
// ActivationThreshold.
func Coverage(m *Mask) float64 {
	if len(m.Values) == 0 {
		return 0
	}
	active := 0
	for _, v := range m.Values {
		if v > ActivationThreshold {
			active++
		}
	}
	return float64(active) / float64(len(m.Values))
}

// CheckCoverage returns the coverage ratio of m, failing with
// ErrInsufficientCoverage when it is below minCoverage.
func CheckCoverage(m *Mask, minCoverage float64) (float64, error) {
	ratio := Coverage(m)
	if ratio < minCoverage {
		return ratio, fmt.Errorf("%w: %.4f of pixels paintable, need %.4f",
			ErrInsufficientCoverage, ratio, minCoverage)
	}
	return ratio, nil
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
