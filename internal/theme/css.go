package theme

import (
	"fmt"
	"strings"
)

// CSSVariables maps each token to the custom property the widget stylesheet reads.
var CSSVariables = map[string]string{
	BgColor:          "--ct-bg",
	SurfaceColor:     "--ct-surface",
	TextColor:        "--ct-text",
	TextSecondary:    "--ct-text-secondary",
	TextMuted:        "--ct-text-muted",
	BorderColor:      "--ct-border",
	AccentColor:      "--ct-accent",
	AccentColorHover: "--ct-accent-hover",
	BadgeBg:          "--ct-badge-bg",
	BadgeText:        "--ct-badge-text",
	BorderRadius:     "--ct-radius",
	BorderRadiusSm:   "--ct-radius-sm",
	CardStyle:        "--ct-card",
	ShadowStyle:      "--ct-shadow",
	ShadowLgStyle:    "--ct-shadow-lg",
	FontFamily:       "--ct-font",
}

// RootBlock renders the tokens as a :root rule, in Keys order, skipping absent tokens.
func RootBlock(t DesignTokens) string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, k := range Keys {
		if v := t[k]; v != "" {
			fmt.Fprintf(&b, "  %s: %s;\n", CSSVariables[k], v)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
