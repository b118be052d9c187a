package services

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/justsurfingit/brand-theme-generator/internal/colors"
	"github.com/justsurfingit/brand-theme-generator/internal/extractor"
	"github.com/justsurfingit/brand-theme-generator/internal/theme"
)

const digestBucketLimit = 12

// buildStyleDigest renders a StyleBundle as the text half of the token-stage prompt.
// Colors are split into chromatic and neutral buckets so the model looks for the brand
// color among the saturated ones.
func buildStyleDigest(b *extractor.StyleBundle) string {
	var sb strings.Builder

	sb.WriteString("### COMPUTED COLORS BY ROLE:\n")
	roles := slices.Sorted(maps.Keys(b.ComputedColors))
	for _, role := range roles {
		c := b.ComputedColors[role]
		fmt.Fprintf(&sb, "- %s: background %s, text %s", role, c.Background, c.Color)
		if c.BorderColor != "" {
			fmt.Fprintf(&sb, ", border %s", c.BorderColor)
		}
		sb.WriteString("\n")
	}
	if len(roles) == 0 {
		sb.WriteString("- none sampled\n")
	}

	sb.WriteString("\n### CTA BUTTONS:\n")
	for _, cta := range b.CTAStyles {
		fmt.Fprintf(&sb, "- background %s, text %s, radius %s\n", cta.Background, cta.Color, orDash(cta.BorderRadius))
	}
	if len(b.CTAStyles) == 0 {
		sb.WriteString("- none found\n")
	}

	fmt.Fprintf(&sb, "\n### FONT FAMILIES (CSS declarations):\n%s\n", joinOrNone(b.FontFamilies))
	fmt.Fprintf(&sb, "\n### FONTS ACTUALLY LOADED (prefer these):\n%s\n", joinOrNone(b.LoadedFonts))

	sb.WriteString("\n### CSS VARIABLES:\n")
	vars := slices.Sorted(maps.Keys(b.CSSVariables))
	for _, name := range vars {
		fmt.Fprintf(&sb, "- %s: %s\n", name, b.CSSVariables[name])
	}
	if len(vars) == 0 {
		sb.WriteString("- none\n")
	}

	chromatic, neutral := colorBuckets(b)
	fmt.Fprintf(&sb, "\n### CHROMATIC COLORS (brand candidates, most saturated first):\n%s\n", joinOrNone(chromatic))
	fmt.Fprintf(&sb, "\n### NEUTRAL COLORS:\n%s\n", joinOrNone(neutral))

	return sb.String()
}

// colorBuckets gathers every color the bundle mentions and splits it by chromaticity.
func colorBuckets(b *extractor.StyleBundle) (chromatic, neutral []string) {
	seen := make(map[string]bool)
	add := func(raw string) {
		hex, ok := colors.Normalize(raw)
		if !ok || seen[hex] {
			return
		}
		seen[hex] = true
		if colors.IsChromatic(hex) {
			chromatic = append(chromatic, hex)
		} else {
			neutral = append(neutral, hex)
		}
	}

	for _, c := range b.CTAStyles {
		add(c.Background)
	}
	for _, c := range b.UniqueColors {
		add(c)
	}
	for _, role := range slices.Sorted(maps.Keys(b.ComputedColors)) {
		c := b.ComputedColors[role]
		add(c.Background)
		add(c.Color)
		add(c.BorderColor)
	}
	for _, name := range slices.Sorted(maps.Keys(b.CSSVariables)) {
		add(b.CSSVariables[name])
	}

	sort.SliceStable(chromatic, func(i, j int) bool {
		return colors.Saturation(chromatic[i]) > colors.Saturation(chromatic[j])
	})
	return truncate(chromatic, digestBucketLimit), truncate(neutral, digestBucketLimit)
}

// formatTokens lists tokens one per line in prompt order.
func formatTokens(t theme.DesignTokens) string {
	var sb strings.Builder
	for _, k := range theme.Keys {
		if v, ok := t[k]; ok {
			fmt.Fprintf(&sb, "- %s (%s): %s\n", k, theme.CSSVariables[k], v)
		}
	}
	return sb.String()
}

func cssVariableList() string {
	var sb strings.Builder
	for _, k := range theme.Keys {
		fmt.Fprintf(&sb, "   %s (%s)\n", theme.CSSVariables[k], k)
	}
	return sb.String()
}

func truncate(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
