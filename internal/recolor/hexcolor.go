package recolor

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a display color with 8-bit components.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex returns the color as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB", case-insensitive.
//
// Surrounding whitespace and a single leading '#' are ignored. Anything other
// than exactly six hex digits fails with ErrInvalidColorFormat; shorthand
// forms such as "#fff" are rejected.
func ParseHexColor(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: %q: expected #RRGGBB", ErrInvalidColorFormat, s)
	}

	var out [3]uint8
	for i := range out {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return RGB{}, fmt.Errorf("%w: %q: %v", ErrInvalidColorFormat, s, err)
		}
		out[i] = uint8(v)
	}

	return RGB{R: out[0], G: out[1], B: out[2]}, nil
}
