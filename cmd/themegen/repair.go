package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/justsurfingit/brand-theme-generator/internal/theme"
)

type repairOutput struct {
	Tokens  theme.DesignTokens `json:"designTokens"`
	Repairs []string           `json:"repairs"`
	Checks  []theme.Check      `json:"checks"`
}

func newRepairCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "repair [tokens.json|-]",
		Short: "Apply contrast repair to a design-token file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := readTokens(cmd, args)
			if err != nil {
				return err
			}
			repaired, repairs := theme.RepairWithReport(tokens)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), repairOutput{Tokens: repaired, Repairs: repairs, Checks: theme.Audit(repaired)})
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderTokenDiff(tokens, repaired))
			if len(repairs) == 0 {
				fmt.Fprintln(out, "\nNo repairs needed.")
			} else {
				fmt.Fprintln(out, "\nRules applied:")
				for _, r := range repairs {
					fmt.Fprintf(out, "  - %s\n", r)
				}
			}
			fmt.Fprint(out, "\n"+renderChecks(theme.Audit(repaired)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable output")
	return cmd
}

func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit [tokens.json|-]",
		Short: "Report contrast checks for a design-token file without changing it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := readTokens(cmd, args)
			if err != nil {
				return err
			}
			checks := theme.Audit(tokens)
			fmt.Fprint(cmd.OutOrStdout(), renderChecks(checks))
			for _, c := range checks {
				if !c.OK {
					return fmt.Errorf("%s fails %s", c.Key, c.Rule)
				}
			}
			return nil
		},
	}
}

// readTokens loads a flat JSON object of tokens from a file, or stdin for "-" or no argument.
func readTokens(cmd *cobra.Command, args []string) (theme.DesignTokens, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var tokens theme.DesignTokens
	if err := json.NewDecoder(r).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("read tokens: %w", err)
	}
	return tokens, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
