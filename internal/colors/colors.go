// Package colors holds the color math used to judge and repair extracted brand palettes:
// hex/RGB conversion, WCAG luminance and contrast, lighten/darken and chromaticity.
package colors

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ChromaThreshold is the HSV saturation above which a color counts as a brand hue.
const ChromaThreshold = 0.15

// DarkThreshold is the relative luminance below which a color counts as dark.
const DarkThreshold = 0.2

// RGB is an 8-bit sRGB triple.
type RGB struct {
	R, G, B int
}

// HexToRGB parses "#rgb" or "#rrggbb" (the leading '#' is optional).
func HexToRGB(hex string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", hex)
	}
	c, err := colorful.Hex("#" + h)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: int(r), G: int(g), B: int(b)}, nil
}

// RGBToHex renders a lowercase "#rrggbb", clamping each channel to [0,255].
func RGBToHex(c RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", clampByte(c.R), clampByte(c.G), clampByte(c.B))
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// IsHex reports whether s parses as a 3- or 6-digit hex color.
func IsHex(s string) bool {
	_, err := HexToRGB(s)
	return err == nil
}

// parse is the lenient form used by the math helpers: anything unparseable is black.
func parse(hex string) colorful.Color {
	rgb, err := HexToRGB(hex)
	if err != nil {
		return colorful.Color{}
	}
	return colorful.Color{R: float64(rgb.R) / 255, G: float64(rgb.G) / 255, B: float64(rgb.B) / 255}
}

func linearize(c float64) float64 {
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// RelativeLuminance is the WCAG 2 relative luminance of hex, in [0,1].
func RelativeLuminance(hex string) float64 {
	c := parse(hex)
	return 0.2126*linearize(c.R) + 0.7152*linearize(c.G) + 0.0722*linearize(c.B)
}

// ContrastRatio is the WCAG contrast ratio between a and b, in [1,21]. It is symmetric.
func ContrastRatio(a, b string) float64 {
	la := RelativeLuminance(a)
	lb := RelativeLuminance(b)
	return (math.Max(la, lb) + 0.05) / (math.Min(la, lb) + 0.05)
}

// Lighten moves every channel of hex toward 255 by amount (0..1).
func Lighten(hex string, amount float64) string {
	return blend(hex, colorful.Color{R: 1, G: 1, B: 1}, amount)
}

// Darken moves every channel of hex toward 0 by amount (0..1).
func Darken(hex string, amount float64) string {
	return blend(hex, colorful.Color{}, amount)
}

func blend(hex string, target colorful.Color, amount float64) string {
	amount = math.Max(0, math.Min(1, amount))
	c := parse(hex).BlendRgb(target, amount).Clamped()
	r, g, b := c.RGB255()
	return RGBToHex(RGB{R: int(r), G: int(g), B: int(b)})
}

// IsDark reports whether hex has relative luminance below DarkThreshold.
func IsDark(hex string) bool {
	return RelativeLuminance(hex) < DarkThreshold
}

// Saturation is (max-min)/max over the RGB channels, 0 for black.
func Saturation(hex string) float64 {
	_, s, _ := parse(hex).Hsv()
	return s
}

// IsChromatic separates brand hues from grays, blacks and whites.
func IsChromatic(hex string) bool {
	return Saturation(hex) > ChromaThreshold
}
