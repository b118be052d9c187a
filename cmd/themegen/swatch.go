package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/justsurfingit/brand-theme-generator/internal/colors"
	"github.com/justsurfingit/brand-theme-generator/internal/theme"
)

var (
	keyStyle  = lipgloss.NewStyle().Width(18)
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// swatch renders a color value on its own background when it is hex.
func swatch(value string) string {
	if !colors.IsHex(value) {
		return value
	}
	fg := "#000000"
	if colors.IsDark(value) {
		fg = "#ffffff"
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(value)).
		Foreground(lipgloss.Color(fg)).
		Padding(0, 1).
		Render(value)
}

// renderTokenDiff lists every token in order with its value before and after repair.
func renderTokenDiff(before, after theme.DesignTokens) string {
	var b strings.Builder
	for _, k := range theme.Keys {
		old, had := before[k]
		cur := after[k]
		if !had && cur == "" {
			continue
		}
		line := keyStyle.Render(k) + swatch(cur)
		if had && old != cur {
			line += dimStyle.Render("  was ") + swatch(old)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func renderChecks(checks []theme.Check) string {
	var b strings.Builder
	for _, c := range checks {
		status := passStyle.Render("pass")
		if !c.OK {
			status = failStyle.Render("FAIL")
		}
		subject := c.Key
		if c.Against != "" {
			subject += " on " + c.Against
		}
		fmt.Fprintf(&b, "%s  %-36s %5.2f (min %.2f)\n", status, subject, c.Value, c.Required)
	}
	return b.String()
}
