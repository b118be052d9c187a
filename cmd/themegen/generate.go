package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justsurfingit/brand-theme-generator/internal/browser"
	"github.com/justsurfingit/brand-theme-generator/internal/config"
	"github.com/justsurfingit/brand-theme-generator/internal/extractor"
	"github.com/justsurfingit/brand-theme-generator/internal/services"
)

func newGenerateCmd(flags *rootFlags) *cobra.Command {
	var (
		layout string
		cssOut string
		debug  bool
	)

	cmd := &cobra.Command{
		Use:   "generate <url>",
		Short: "Run the full pipeline for one site and print the template payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.envFile)
			if err != nil {
				return err
			}
			log := newLogger(cmd, flags)
			ctx := cmd.Context()

			pool := browser.NewPool(
				browser.ChromeLauncher(cfg.Pool.ChromePath),
				browser.PoolConfig{MaxPages: cfg.Pool.MaxPages, RetireAfter: cfg.Pool.RetireAfter},
				log,
			)
			defer pool.Shutdown()

			exCfg := extractor.DefaultConfig()
			exCfg.NavTimeout = cfg.Pool.NavTimeout
			llm, err := services.NewLLMServiceFromConfig(ctx, cfg.LLM, log)
			if err != nil {
				return err
			}
			pipeline := services.NewPipeline(extractor.New(pool, exCfg, log), llm, log)

			payload, err := pipeline.Generate(ctx, args[0], layout)
			if err != nil {
				return err
			}
			if !debug {
				payload.Debug = nil
			}

			if cssOut != "" {
				if err := os.WriteFile(cssOut, []byte(payload.CSS), 0o644); err != nil {
					return fmt.Errorf("write stylesheet: %w", err)
				}
			}
			return writeJSON(cmd.OutOrStdout(), payload)
		},
	}

	cmd.Flags().StringVar(&layout, "layout", "", "Widget layout: list, grid or compact")
	cmd.Flags().StringVar(&cssOut, "css-out", "", "Also write the stylesheet to this file")
	cmd.Flags().BoolVar(&debug, "debug", false, "Include extracted styles and raw tokens")
	return cmd
}
