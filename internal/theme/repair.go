package theme

import (
	"github.com/justsurfingit/brand-theme-generator/internal/colors"
)

// Minimum contrast ratios. Several are deliberately below WCAG cutoffs; the stylesheet
// templates were tuned against these exact numbers.
const (
	MinSurfaceContrast      = 1.3
	MinTextContrast         = 4.5
	MinSecondaryContrast    = 3.0
	MinMutedContrast        = 2.0
	MinBorderContrast       = 1.3
	MinBadgeTextContrast    = 3.0
	MinBadgeSurfaceContrast = 1.1
	surfaceLift             = 0.15
	borderShift             = 0.15
	badgeTextShift          = 0.6
	badgeTintLight          = 0.85
	badgeTintDark           = 0.7
	maxRepairPasses         = 4
)

// Fallback brand palette used when the model returns a gray accent.
const (
	FallbackAccent      = "#4F46E5"
	FallbackAccentHover = "#4338CA"
	FallbackBadgeBg     = "#EEF2FF"
	FallbackBadgeText   = "#4F46E5"
)

// Rule names reported by RepairWithReport.
const (
	RuleNormalize     = "normalize"
	RuleSurface       = "surface-visibility"
	RuleText          = "text-readability"
	RuleTextSecondary = "secondary-text-readability"
	RuleTextMuted     = "muted-text-readability"
	RuleBorder        = "border-visibility"
	RuleBadgeText     = "badge-text-readability"
	RuleAccent        = "accent-chromaticity"
	RuleBadgeSurface  = "badge-surface-separation"
)

var colorKeys = []string{
	BgColor, SurfaceColor, TextColor, TextSecondary, TextMuted, BorderColor,
	AccentColor, AccentColorHover, BadgeBg, BadgeText,
}

type rule struct {
	name  string
	apply func(t DesignTokens) bool
}

var rules = []rule{
	{RuleNormalize, normalizeColors},
	{RuleSurface, fixSurface},
	{RuleText, readableRule(TextColor, MinTextContrast, "#f5f5f5", "#1a1a1a")},
	{RuleTextSecondary, readableRule(TextSecondary, MinSecondaryContrast, "#d1d5db", "#4b5563")},
	{RuleTextMuted, readableRule(TextMuted, MinMutedContrast, "#9ca3af", "#6b7280")},
	{RuleBorder, fixBorder},
	{RuleBadgeText, fixBadgeText},
	{RuleAccent, fixAccent},
	{RuleBadgeSurface, fixBadgeSurface},
}

// Repair returns a copy of tokens in which every contrast and chromaticity rule holds.
// Rules whose fields are absent are skipped. Repair never fails and Repair(Repair(t)) equals Repair(t).
func Repair(tokens DesignTokens) DesignTokens {
	out, _ := RepairWithReport(tokens)
	return out
}

// RepairWithReport is Repair plus the names of the rules that changed something, in rule order.
func RepairWithReport(tokens DesignTokens) (DesignTokens, []string) {
	out := tokens.Clone()
	fired := make(map[string]bool)

	// Later rules can move badgeBg under an earlier rule's feet, so passes repeat until stable.
	for pass := 0; pass < maxRepairPasses; pass++ {
		changed := false
		for _, r := range rules {
			if r.apply(out) {
				fired[r.name] = true
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	var report []string
	for _, r := range rules {
		if fired[r.name] {
			report = append(report, r.name)
		}
	}
	return out, report
}

func has(t DesignTokens, keys ...string) bool {
	for _, k := range keys {
		if t[k] == "" {
			return false
		}
	}
	return true
}

func set(t DesignTokens, key, value string) bool {
	if t[key] == value {
		return false
	}
	t[key] = value
	return true
}

// normalizeColors rewrites rgb()/rgba() style values as hex. Valid hex is left as written.
func normalizeColors(t DesignTokens) bool {
	changed := false
	for _, k := range colorKeys {
		v := t[k]
		if v == "" || colors.IsHex(v) {
			continue
		}
		if hex, ok := colors.Normalize(v); ok {
			changed = set(t, k, hex) || changed
		}
	}
	return changed
}

func fixSurface(t DesignTokens) bool {
	if !has(t, BgColor, SurfaceColor) {
		return false
	}
	bg := t[BgColor]
	if colors.ContrastRatio(bg, t[SurfaceColor]) >= MinSurfaceContrast {
		return false
	}
	if !colors.IsDark(bg) {
		return set(t, SurfaceColor, "#ffffff")
	}
	for amount := surfaceLift; amount < 1; amount += surfaceLift {
		lifted := colors.Lighten(bg, amount)
		if colors.ContrastRatio(bg, lifted) >= MinSurfaceContrast {
			return set(t, SurfaceColor, lifted)
		}
	}
	return set(t, SurfaceColor, "#ffffff")
}

// readableOn picks the light or dark candidate by surface darkness and falls back to
// pure white or black when the candidate misses minRatio.
func readableOn(surface string, minRatio float64, light, dark string) string {
	pick := dark
	if colors.IsDark(surface) {
		pick = light
	}
	if colors.ContrastRatio(pick, surface) >= minRatio {
		return pick
	}
	if colors.ContrastRatio("#ffffff", surface) >= colors.ContrastRatio("#000000", surface) {
		return "#ffffff"
	}
	return "#000000"
}

func readableRule(key string, minRatio float64, light, dark string) func(DesignTokens) bool {
	return func(t DesignTokens) bool {
		if !has(t, key, SurfaceColor) {
			return false
		}
		surface := t[SurfaceColor]
		if colors.ContrastRatio(t[key], surface) >= minRatio {
			return false
		}
		return set(t, key, readableOn(surface, minRatio, light, dark))
	}
}

func fixBorder(t DesignTokens) bool {
	if !has(t, BorderColor, SurfaceColor) {
		return false
	}
	surface := t[SurfaceColor]
	if colors.ContrastRatio(t[BorderColor], surface) >= MinBorderContrast {
		return false
	}
	if colors.IsDark(surface) {
		return set(t, BorderColor, colors.Lighten(surface, borderShift))
	}
	return set(t, BorderColor, colors.Darken(surface, borderShift))
}

func fixBadgeText(t DesignTokens) bool {
	if !has(t, BadgeText, BadgeBg) {
		return false
	}
	bg := t[BadgeBg]
	if colors.ContrastRatio(t[BadgeText], bg) >= MinBadgeTextContrast {
		return false
	}
	if colors.IsDark(bg) {
		return set(t, BadgeText, colors.Lighten(bg, badgeTextShift))
	}
	return set(t, BadgeText, colors.Darken(bg, badgeTextShift))
}

// fixAccent treats a gray accent as a model failure: every brand has some hue and the
// widget needs a distinct call-to-action color.
func fixAccent(t DesignTokens) bool {
	if !has(t, AccentColor) || colors.IsChromatic(t[AccentColor]) {
		return false
	}
	changed := set(t, AccentColor, FallbackAccent)
	changed = set(t, AccentColorHover, FallbackAccentHover) || changed
	changed = set(t, BadgeBg, FallbackBadgeBg) || changed
	changed = set(t, BadgeText, FallbackBadgeText) || changed
	return changed
}

func fixBadgeSurface(t DesignTokens) bool {
	if !has(t, BadgeBg, SurfaceColor, AccentColor) {
		return false
	}
	surface := t[SurfaceColor]
	if colors.ContrastRatio(t[BadgeBg], surface) >= MinBadgeSurfaceContrast {
		return false
	}
	if colors.IsDark(surface) {
		return set(t, BadgeBg, colors.Darken(t[AccentColor], badgeTintDark))
	}
	return set(t, BadgeBg, colors.Lighten(t[AccentColor], badgeTintLight))
}
