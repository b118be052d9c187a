package colors

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

var numberPattern = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:e[-+]?\d+)?%?`)

// Normalize converts a CSS color (hex, rgb(), hsl(), hwb(), named keywords, color(srgb ...))
// into "#rrggbb". Fully transparent and unrecognised values return false.
func Normalize(css string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(css))
	if v == "" {
		return "", false
	}
	// Chrome reports some computed colors in the color() notation, which the parser does not read.
	if strings.HasPrefix(v, "color(srgb") {
		return normalizeSRGB(strings.TrimPrefix(v, "color(srgb"))
	}
	c, err := csscolorparser.Parse(v)
	if err != nil || c.A <= 0 {
		return "", false
	}
	return RGBToHex(RGB{R: channel(c.R), G: channel(c.G), B: channel(c.B)}), true
}

func channel(f float64) int {
	return int(math.Round(math.Max(0, math.Min(1, f)) * 255))
}

// normalizeSRGB reads "r g b [/ a]" with channels on a 0..1 range.
func normalizeSRGB(v string) (string, bool) {
	nums := numberPattern.FindAllString(v, -1)
	if len(nums) < 3 {
		return "", false
	}
	var ch [3]int
	for i := 0; i < 3; i++ {
		f, ok := parseComponent(nums[i])
		if !ok {
			return "", false
		}
		ch[i] = channel(f)
	}
	if len(nums) >= 4 {
		a, ok := parseComponent(nums[3])
		if !ok || a <= 0 {
			return "", false
		}
	}
	return RGBToHex(RGB{R: ch[0], G: ch[1], B: ch[2]}), true
}

func parseComponent(s string) (float64, bool) {
	pct := strings.HasSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	if pct {
		f /= 100
	}
	return math.Max(0, math.Min(1, f)), true
}
