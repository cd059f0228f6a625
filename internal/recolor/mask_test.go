package recolor

import (
	"errors"
	"math"
	"testing"
)

// byteMaskWithActive returns a width x height byte mask with the first n
// pixels set to 255.
func byteMaskWithActive(width, height, n int) *RawMask {
	vals := make([]uint8, width*height)
	for i := 0; i < n; i++ {
		vals[i] = 255
	}
	return NewByteMask(width, height, vals)
}

func TestNormalizeMask(t *testing.T) {
	tests := []struct {
		name string
		mask *RawMask
		want []float64
	}{
		{
			"bytes",
			NewByteMask(2, 2, []uint8{0, 51, 255, 128}),
			[]float64{0, 0.2, 1, 128.0 / 255.0},
		},
		{
			"floats clamped",
			NewFloatMask(2, 2, []float64{0.25, -1, 3, math.NaN()}),
			[]float64{0.25, 0, 1, 0},
		},
		{
			"bools",
			NewBoolMask(2, 2, []bool{true, false, false, true}),
			[]float64{1, 0, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeMask(tt.mask)
			if got.Width != 2 || got.Height != 2 {
				t.Fatalf("NormalizeMask dims = %dx%d, want 2x2", got.Width, got.Height)
			}
			for i, want := range tt.want {
				if math.Abs(got.Values[i]-want) > 1e-12 {
					t.Errorf("Values[%d] = %v, want %v", i, got.Values[i], want)
				}
			}
		})
	}
}

func TestValidateMask(t *testing.T) {
	img := NewImage(4, 3)

	tests := []struct {
		name    string
		mask    *RawMask
		wantErr bool
	}{
		{"matching byte mask", NewByteMask(4, 3, make([]uint8, 12)), false},
		{"matching bool mask", NewBoolMask(4, 3, make([]bool, 12)), false},
		{"nil", nil, true},
		{"wrong width", NewByteMask(3, 3, make([]uint8, 9)), true},
		{"wrong height", NewFloatMask(4, 4, make([]float64, 16)), true},
		{"three channels", &RawMask{Width: 4, Height: 3, Channels: 3, Kind: MaskByte, Bytes: make([]uint8, 36)}, true},
		{"short data", NewByteMask(4, 3, make([]uint8, 11)), true},
		{"data in wrong slice", &RawMask{Width: 4, Height: 3, Channels: 1, Kind: MaskFloat, Bytes: make([]uint8, 12)}, true},
		{"unknown kind", &RawMask{Width: 4, Height: 3, Channels: 1, Kind: MaskKind(9)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMask(tt.mask, img)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMask) {
					t.Errorf("ValidateMask error = %v, want ErrInvalidMask", err)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateMask failed: %v", err)
			}
		})
	}
}

func TestCheckCoverage_Gate(t *testing.T) {
	tests := []struct {
		name    string
		active  int
		wantErr bool
	}{
		{"no active pixels", 0, true},
		{"nine active pixels", 9, true},
		{"just below threshold", 799, true},
		{"exactly at threshold", 800, false},
		{"above threshold", 5000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := NormalizeMask(byteMaskWithActive(100, 100, tt.active))
			ratio, err := CheckCoverage(mask, 0.08)
			if tt.wantErr {
				if !errors.Is(err, ErrInsufficientCoverage) {
					t.Errorf("CheckCoverage error = %v, want ErrInsufficientCoverage", err)
				}
			} else if err != nil {
				t.Errorf("CheckCoverage failed: %v", err)
			}
			if want := float64(tt.active) / 10000; ratio != want {
				t.Errorf("ratio = %v, want %v", ratio, want)
			}
		})
	}
}

func TestCoverage_UsesActivationThreshold(t *testing.T) {
	// 0.5 is not above the threshold; 0.51 is.
	mask := NormalizeMask(NewFloatMask(4, 1, []float64{0.5, 0.51, 0.2, 1}))
	if got := Coverage(mask); got != 0.5 {
		t.Errorf("Coverage = %v, want 0.5", got)
	}
}

func TestMaskKind_String(t *testing.T) {
	if MaskByte.String() != "byte" || MaskFloat.String() != "float" || MaskBool.String() != "bool" {
		t.Error("unexpected MaskKind names")
	}
	if MaskKind(7).String() != "MaskKind(7)" {
		t.Errorf("unknown kind = %s", MaskKind(7).String())
	}
}
