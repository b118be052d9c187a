package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/justsurfingit/brand-theme-generator/internal/browser"
	"github.com/justsurfingit/brand-theme-generator/internal/extractor"
	"github.com/justsurfingit/brand-theme-generator/internal/services"
)

func newExtractCmd(flags *rootFlags) *cobra.Command {
	var (
		chromePath string
		timeout    time.Duration
		screenshot string
	)

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Render a site and print its style bundle as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := services.ValidateURL(args[0])
			if err != nil {
				return err
			}
			log := newLogger(cmd, flags)

			pool := browser.NewPool(browser.ChromeLauncher(chromePath), browser.PoolConfig{}, log)
			defer pool.Shutdown()

			cfg := extractor.DefaultConfig()
			cfg.NavTimeout = timeout
			bundle, err := extractor.New(pool, cfg, log).Extract(cmd.Context(), target.String())
			if err != nil {
				return err
			}

			if screenshot != "" {
				shot, err := base64.StdEncoding.DecodeString(bundle.ScreenshotBase64)
				if err != nil {
					return fmt.Errorf("decode screenshot: %w", err)
				}
				if err := os.WriteFile(screenshot, shot, 0o644); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), bundle.WithoutScreenshot())
		},
	}

	cmd.Flags().StringVar(&chromePath, "chrome-path", os.Getenv("CHROME_PATH"), "Chrome or Chromium binary")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Navigation timeout")
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "Write the viewport JPEG to this file")
	return cmd
}
