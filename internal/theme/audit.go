package theme

import "github.com/justsurfingit/brand-theme-generator/internal/colors"

// Check is one evaluated contrast or chromaticity rule.
type Check struct {
	Rule     string  `json:"rule"`
	Key      string  `json:"key"`
	Against  string  `json:"against,omitempty"`
	Value    float64 `json:"value"`
	Required float64 `json:"required"`
	OK       bool    `json:"ok"`
}

type pairRule struct {
	rule, key, against string
	min                float64
}

var pairRules = []pairRule{
	{RuleSurface, SurfaceColor, BgColor, MinSurfaceContrast},
	{RuleText, TextColor, SurfaceColor, MinTextContrast},
	{RuleTextSecondary, TextSecondary, SurfaceColor, MinSecondaryContrast},
	{RuleTextMuted, TextMuted, SurfaceColor, MinMutedContrast},
	{RuleBorder, BorderColor, SurfaceColor, MinBorderContrast},
	{RuleBadgeText, BadgeText, BadgeBg, MinBadgeTextContrast},
	{RuleBadgeSurface, BadgeBg, SurfaceColor, MinBadgeSurfaceContrast},
}

// Audit measures every rule whose fields are present, without changing anything.
// Contrast values are WCAG ratios; the accent check reports HSV saturation.
func Audit(t DesignTokens) []Check {
	var checks []Check
	for _, r := range pairRules {
		a, b := t[r.key], t[r.against]
		if !colors.IsHex(a) || !colors.IsHex(b) {
			continue
		}
		ratio := colors.ContrastRatio(a, b)
		checks = append(checks, Check{
			Rule: r.rule, Key: r.key, Against: r.against,
			Value: ratio, Required: r.min, OK: ratio >= r.min,
		})
	}
	if accent := t[AccentColor]; colors.IsHex(accent) {
		checks = append(checks, Check{
			Rule: RuleAccent, Key: AccentColor,
			Value: colors.Saturation(accent), Required: colors.ChromaThreshold, OK: colors.IsChromatic(accent),
		})
	}
	return checks
}
