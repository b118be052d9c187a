package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/justsurfingit/brand-theme-generator/internal/logger"
)

type rootFlags struct {
	verbose bool
	envFile string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "themegen",
		Short:         "Generate careers-widget themes from a company website",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Environment file to load if present")

	cmd.AddCommand(newRepairCmd())
	cmd.AddCommand(newAuditCmd())
	cmd.AddCommand(newExtractCmd(flags))
	cmd.AddCommand(newGenerateCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// newLogger writes human-readable logs to the command's stderr.
func newLogger(cmd *cobra.Command, flags *rootFlags) zerolog.Logger {
	level := "warn"
	if flags.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true, Writer: cmd.ErrOrStderr()})
	if err != nil {
		return zerolog.Nop()
	}
	return log
}
