// Package theme defines the design-token set produced from a brand's website and the
// deterministic repair pass that makes it safe to render.
package theme

// Token keys understood by the stylesheet generator.
const (
	BgColor          = "bgColor"
	SurfaceColor     = "surfaceColor"
	TextColor        = "textColor"
	TextSecondary    = "textSecondary"
	TextMuted        = "textMuted"
	BorderColor      = "borderColor"
	AccentColor      = "accentColor"
	AccentColorHover = "accentColorHover"
	BadgeBg          = "badgeBg"
	BadgeText        = "badgeText"
	BorderRadius     = "borderRadius"
	BorderRadiusSm   = "borderRadiusSm"
	CardStyle        = "cardStyle"
	ShadowStyle      = "shadowStyle"
	ShadowLgStyle    = "shadowLgStyle"
	FontFamily       = "fontFamily"
)

// Keys lists every token in the order the prompts present them.
var Keys = []string{
	BgColor, SurfaceColor, TextColor, TextSecondary, TextMuted, BorderColor,
	AccentColor, AccentColorHover, BadgeBg, BadgeText,
	BorderRadius, BorderRadiusSm, CardStyle, ShadowStyle, ShadowLgStyle, FontFamily,
}

// RequiredKeys must be present and non-empty in a model-produced token set.
var RequiredKeys = []string{BgColor, SurfaceColor, TextColor, AccentColor}

// DesignTokens maps token keys to raw CSS values. Unknown keys are carried through untouched.
type DesignTokens map[string]string

// Clone returns an independent copy.
func (t DesignTokens) Clone() DesignTokens {
	out := make(DesignTokens, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Missing returns the required keys that are absent or empty.
func (t DesignTokens) Missing() []string {
	var missing []string
	for _, k := range RequiredKeys {
		if t[k] == "" {
			missing = append(missing, k)
		}
	}
	return missing
}
