package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditFlagsFailures(t *testing.T) {
	checks := Audit(DesignTokens{
		BgColor:      "#0a0a0a",
		SurfaceColor: "#0b0b0b",
		TextColor:    "#111111",
		AccentColor:  "#888888",
		BorderRadius: "8px",
	})

	byRule := make(map[string]Check)
	for _, c := range checks {
		byRule[c.Rule] = c
	}
	require.Len(t, byRule, 3)
	assert.False(t, byRule[RuleSurface].OK)
	assert.False(t, byRule[RuleText].OK)
	assert.False(t, byRule[RuleAccent].OK)
	assert.Equal(t, MinTextContrast, byRule[RuleText].Required)
}

func TestAuditPassesAfterRepair(t *testing.T) {
	repaired := Repair(DesignTokens{
		BgColor:       "#0a0a0a",
		SurfaceColor:  "#0b0b0b",
		TextColor:     "#111111",
		TextSecondary: "#222222",
		TextMuted:     "#1a1a1a",
		BorderColor:   "#0b0b0b",
		AccentColor:   "#888888",
		BadgeBg:       "#888888",
		BadgeText:     "#888888",
	})
	checks := Audit(repaired)
	assert.Len(t, checks, len(pairRules)+1)
	for _, c := range checks {
		assert.True(t, c.OK, "%s: %.2f < %.2f", c.Rule, c.Value, c.Required)
	}
}

func TestAuditSkipsNonHex(t *testing.T) {
	assert.Empty(t, Audit(DesignTokens{TextColor: "rgb(0,0,0)", SurfaceColor: "#ffffff"}))
}
