package extractor

import (
	"regexp"
	"strings"

	"github.com/justsurfingit/brand-theme-generator/internal/colors"
)

// ColorSet is the background/text/border triple sampled for one page role.
type ColorSet struct {
	Background  string `json:"background"`
	Color       string `json:"color"`
	BorderColor string `json:"borderColor,omitempty"`
}

// CTAStyle is one distinct call-to-action button.
type CTAStyle struct {
	Background   string `json:"background"`
	Color        string `json:"color"`
	BorderRadius string `json:"borderRadius"`
}

// StyleBundle is the visual fingerprint of one rendered page. Every color is "#rrggbb".
type StyleBundle struct {
	ComputedColors   map[string]ColorSet `json:"computedColors"`
	ScreenshotBase64 string              `json:"screenshotBase64,omitempty"`
	FontFamilies     []string            `json:"fontFamilies"`
	LoadedFonts      []string            `json:"loadedFonts"`
	CSSVariables     map[string]string   `json:"cssVariables"`
	UniqueColors     []string            `json:"uniqueColors"`
	CTAStyles        []CTAStyle          `json:"ctaStyles"`
	// Steps records best-effort steps and how they went.
	Steps []Outcome `json:"steps,omitempty"`
}

// WithoutScreenshot returns a shallow copy for logging and debug payloads.
func (b StyleBundle) WithoutScreenshot() StyleBundle {
	b.ScreenshotBase64 = ""
	return b
}

// rawProbe is what the in-page probe returns, colors still in browser syntax.
type rawProbe struct {
	ComputedColors map[string]ColorSet `json:"computedColors"`
	FontFamilies   []string            `json:"fontFamilies"`
	LoadedFonts    []string            `json:"loadedFonts"`
	CSSVariables   map[string]string   `json:"cssVariables"`
	AllColors      []string            `json:"allColors"`
	CTAs           []CTAStyle          `json:"ctas"`
}

var iconFontPattern = regexp.MustCompile(`(?i)icon|awesome|etmodule|material|symbol|glyph|icomoon`)

const bodyRole = "body"

// normalize converts a raw probe into a StyleBundle. Roles with no usable color are dropped;
// transparent backgrounds inherit the body's, and a transparent body sits on white canvas.
func normalize(raw rawProbe) StyleBundle {
	b := StyleBundle{
		ComputedColors: make(map[string]ColorSet),
		CSSVariables:   make(map[string]string),
	}

	baseBg, baseFg := "#ffffff", "#000000"
	if body, ok := raw.ComputedColors[bodyRole]; ok {
		if bg, ok := colors.Normalize(body.Background); ok {
			baseBg = bg
		}
		if fg, ok := colors.Normalize(body.Color); ok {
			baseFg = fg
		}
		b.ComputedColors[bodyRole] = ColorSet{Background: baseBg, Color: baseFg, BorderColor: normalizeOptional(body.BorderColor)}
	}

	for role, c := range raw.ComputedColors {
		if role == bodyRole {
			continue
		}
		bg, bgOK := colors.Normalize(c.Background)
		fg, fgOK := colors.Normalize(c.Color)
		if !bgOK && !fgOK {
			continue
		}
		if !bgOK {
			bg = baseBg
		}
		if !fgOK {
			fg = baseFg
		}
		b.ComputedColors[role] = ColorSet{Background: bg, Color: fg, BorderColor: normalizeOptional(c.BorderColor)}
	}

	b.FontFamilies = dedupe(raw.FontFamilies, func(s string) string { return strings.TrimSpace(s) })
	b.LoadedFonts = dedupeFonts(raw.LoadedFonts)

	for name, value := range raw.CSSVariables {
		if v := strings.TrimSpace(value); v != "" {
			b.CSSVariables[name] = v
		}
	}

	var unique []string
	for _, c := range raw.AllColors {
		if hex, ok := colors.Normalize(c); ok && !isNeutral(hex) {
			unique = append(unique, hex)
		}
	}
	b.UniqueColors = dedupe(unique, strings.ToLower)

	seenCTA := make(map[string]bool)
	for _, cta := range raw.CTAs {
		bg, ok := colors.Normalize(cta.Background)
		if !ok || seenCTA[bg] {
			continue
		}
		seenCTA[bg] = true
		fg, ok := colors.Normalize(cta.Color)
		if !ok {
			fg = baseFg
		}
		b.CTAStyles = append(b.CTAStyles, CTAStyle{Background: bg, Color: fg, BorderRadius: strings.TrimSpace(cta.BorderRadius)})
	}

	return b
}

func normalizeOptional(css string) string {
	hex, _ := colors.Normalize(css)
	return hex
}

// isNeutral matches the probe's near-white/near-black filter.
func isNeutral(hex string) bool {
	rgb, err := colors.HexToRGB(hex)
	if err != nil {
		return true
	}
	lo := min(rgb.R, rgb.G, rgb.B)
	hi := max(rgb.R, rgb.G, rgb.B)
	return lo > 240 || hi < 20
}

func dedupe(in []string, key func(string) string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		k := key(s)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func dedupeFonts(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, name := range in {
		clean := strings.TrimSpace(strings.Trim(strings.TrimSpace(name), `"'`))
		k := strings.ToLower(clean)
		if clean == "" || seen[k] || iconFontPattern.MatchString(clean) {
			continue
		}
		seen[k] = true
		out = append(out, clean)
	}
	return out
}
