package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justsurfingit/brand-theme-generator/internal/theme"
)

const darkGrayTokens = `{
  "bgColor": "#0a0a0a",
  "surfaceColor": "#0b0b0b",
  "textColor": "#111111",
  "textSecondary": "#222222",
  "textMuted": "#1a1a1a",
  "borderColor": "#0b0b0b",
  "accentColor": "#888888",
  "badgeBg": "#888888",
  "badgeText": "#888888",
  "borderRadius": "8px"
}`

const healthyTokens = `{
  "bgColor": "#d1d5db",
  "surfaceColor": "#f3f4f6",
  "textColor": "#111827",
  "accentColor": "#e11d48"
}`

func writeTokens(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRepairCommandPrintsRulesAndChecks(t *testing.T) {
	output, err := execute(t, "", "repair", writeTokens(t, darkGrayTokens))
	require.NoError(t, err)

	assert.Contains(t, output, "Rules applied:")
	assert.Contains(t, output, theme.RuleSurface)
	assert.Contains(t, output, theme.RuleAccent)
	assert.Contains(t, output, theme.FallbackAccent)
	assert.Contains(t, output, "was")
	assert.NotContains(t, output, "FAIL")
}

func TestRepairCommandJSON(t *testing.T) {
	output, err := execute(t, darkGrayTokens, "repair", "--json", "-")
	require.NoError(t, err)

	var got repairOutput
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, theme.FallbackAccent, got.Tokens[theme.AccentColor])
	assert.Contains(t, got.Repairs, theme.RuleText)
	require.NotEmpty(t, got.Checks)
	for _, c := range got.Checks {
		assert.True(t, c.OK, "%s should pass after repair", c.Rule)
	}
}

func TestRepairCommandNoChanges(t *testing.T) {
	output, err := execute(t, healthyTokens, "repair")
	require.NoError(t, err)
	assert.Contains(t, output, "No repairs needed.")
}

func TestRepairCommandRejectsBadInput(t *testing.T) {
	_, err := execute(t, "not json", "repair")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read tokens")

	_, err = execute(t, "", "repair", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestAuditCommand(t *testing.T) {
	output, err := execute(t, healthyTokens, "audit")
	require.NoError(t, err)
	assert.Contains(t, output, "pass")

	output, err = execute(t, darkGrayTokens, "audit")
	require.Error(t, err)
	assert.Contains(t, output, "FAIL")
}
