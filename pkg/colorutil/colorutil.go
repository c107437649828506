// Package colorutil provides shared color utilities for the labeler application.
package colorutil

import (
	"fmt"
	"image/color"
	"strings"
)

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Palette provides highly saturated default colors for categories, assigned
// round-robin as categories are created.
var Palette = []color.RGBA{
	{255, 0, 0, 255},   // Red
	{0, 255, 0, 255},   // Green
	{0, 0, 255, 255},   // Blue
	{255, 255, 0, 255}, // Yellow
	{255, 0, 255, 255}, // Magenta
	{0, 255, 255, 255}, // Cyan
	{255, 128, 0, 255}, // Orange
	{128, 0, 255, 255}, // Purple
	{0, 255, 128, 255}, // Spring Green
	{255, 0, 128, 255}, // Rose
	{128, 255, 0, 255}, // Lime
	{0, 128, 255, 255}, // Sky Blue
}

// PaletteColor returns the i-th palette color, wrapping around.
func PaletteColor(i int) color.RGBA {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// Brighten returns the color moved toward white by the given fraction
// (0 = unchanged, 1 = white). Used for mask edge outlines.
func Brighten(c color.RGBA, fraction float64) color.RGBA {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	lift := func(v uint8) uint8 {
		return uint8(float64(v) + (255-float64(v))*fraction)
	}
	return color.RGBA{R: lift(c.R), G: lift(c.G), B: lift(c.B), A: c.A}
}

// ParseHex parses "#rrggbb" or "#rrggbbaa" (leading '#' optional) into an
// RGBA color. Alpha defaults to 255.
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b, a uint8 = 0, 0, 0, 255
	switch len(s) {
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
	case 8:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x%02x", &r, &g, &b, &a); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: want 6 or 8 digits", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}

// Hex formats a color as "#rrggbb".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
