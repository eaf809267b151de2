package math

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a linear RGB color with components in [0,1].
type Color struct {
	R, G, B float32
}

// Common editor colors.
var (
	White  = Color{1, 1, 1}
	Red    = Color{1, 0, 0}
	Green  = Color{0, 1, 0}
	Yellow = Color{1, 1, 0}
	Blue   = Color{0.329, 0.541, 0.976}
)

// Lerp blends c towards other by t.
func (c Color) Lerp(other Color, t float32) Color {
	return Color{
		c.R + (other.R-c.R)*t,
		c.G + (other.G-c.G)*t,
		c.B + (other.B-c.B)*t,
	}
}

// HexColor builds a Color from a 0xRRGGBB value.
func HexColor(rgb uint32) Color {
	return Color{
		R: float32((rgb>>16)&0xff) / 255,
		G: float32((rgb>>8)&0xff) / 255,
		B: float32(rgb&0xff) / 255,
	}
}

// Hex packs the color into 0xRRGGBB, rounding each channel.
func (c Color) Hex() uint32 {
	ch := func(v float32) uint32 {
		return uint32(min(max(v, 0), 1)*255 + 0.5)
	}
	return ch(c.R)<<16 | ch(c.G)<<8 | ch(c.B)
}

// String formats the color as #rrggbb.
func (c Color) String() string {
	return fmt.Sprintf("#%06x", c.Hex())
}

// ParseHexColor parses "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return HexColor(uint32(v)), nil
}
