package waydash

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color represents a color with alpha, red, green, and blue components.
// Each component is in the range [0, 1]. Surfaces store pixels as packed
// ARGB8888, the format shared with the compositor.
type Color struct {
	A, R, G, B float64
}

// ARGB creates a color from alpha, red, green, and blue components.
func ARGB(a, r, g, b float64) Color {
	return Color{A: a, R: r, G: g, B: b}
}

// RGB creates an opaque color from red, green, and blue components.
func RGB(r, g, b float64) Color {
	return Color{A: 1, R: r, G: g, B: b}
}

// ARGB8888 packs the color into the 0xAARRGGBB pixel layout used by the
// shared-memory buffers.
func (c Color) ARGB8888() uint32 {
	return uint32(clamp255(c.A*255))<<24 |
		uint32(clamp255(c.R*255))<<16 |
		uint32(clamp255(c.G*255))<<8 |
		uint32(clamp255(c.B*255))
}

// FromARGB8888 unpacks a 0xAARRGGBB pixel into a Color.
func FromARGB8888(p uint32) Color {
	return Color{
		A: float64(p>>24&0xff) / 255,
		R: float64(p>>16&0xff) / 255,
		G: float64(p>>8&0xff) / 255,
		B: float64(p&0xff) / 255,
	}
}

// Blend mixes c toward other by ratio. A ratio of 0 yields c, 1 yields
// other. External glyph rasterizers use this to composite coverage maps
// over the background through View.PutMask.
func (c Color) Blend(other Color, ratio float64) Color {
	if ratio <= 0 {
		return c
	}
	if ratio >= 1 {
		return other
	}
	return Color{
		A: c.A + (other.A-c.A)*ratio,
		R: c.R + (other.R-c.R)*ratio,
		G: c.G + (other.G-c.G)*ratio,
		B: c.B + (other.B-c.B)*ratio,
	}
}

// Color converts to the standard color.Color interface.
func (c Color) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// Hex parses a color from a hex string. Supports "RRGGBB" and
// "RRGGBBAA", with an optional leading '#'.
func Hex(hex string) (Color, error) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 && len(s) != 8 {
		return Color{}, fmt.Errorf("color: malformed hex %q: want RRGGBB or RRGGBBAA", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color: malformed hex %q: %w", hex, err)
	}

	a := uint64(255)
	if len(s) == 8 {
		a = v & 0xff
		v >>= 8
	}
	return Color{
		A: float64(a) / 255,
		R: float64(v>>16&0xff) / 255,
		G: float64(v>>8&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
