package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"plutoshell/internal/shellrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var diagnostic bool
	var development bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Launch the backend and keep it running until interrupted",
		Long: "Launch the Pluto Duck backend on port 8123 and supervise it.\n\n" +
			"The backend is stopped when the shell receives SIGINT or SIGTERM. " +
			"If the backend cannot be launched the shell logs the failure and keeps running.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return shellrun.Run(cmd.Context(), cfg, shellrun.Options{
				LogLevel:    logLevel,
				Development: development,
				Diagnostic:  diagnostic,
			})
		},
	}

	cmd.Flags().BoolVar(&diagnostic, "diagnostic", false, "Write a debug-level JSON log alongside the shell log")
	cmd.Flags().BoolVar(&development, "dev-logs", false, "Include source locations in log output")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	return cmd
}
