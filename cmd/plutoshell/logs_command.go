package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"plutoshell/internal/backend"
	"plutoshell/internal/logtail"
	"plutoshell/internal/paths"
)

var logStreams = map[string]string{
	"stdout": backend.StdoutLogName,
	"stderr": backend.StderrLogName,
	"shell":  "shell.log",
}

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:       "logs [stdout|stderr|shell]",
		Short:     "Print the tail of the backend or shell log",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"stdout", "stderr", "shell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			stream := "stderr"
			if len(args) == 1 {
				stream = args[0]
			}
			resolver, err := ctx.resolver()
			if err != nil {
				return err
			}
			path := filepath.Join(paths.LogDir(resolver.DataRoot()), logStreams[stream])

			out := cmd.OutOrStdout()
			tail, offset, err := logtail.Last(path, lines)
			if err != nil {
				return err
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			followCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			err = logtail.Follow(followCtx, path, offset, 0,
				func(line string) { fmt.Fprintln(out, line) },
				func() { fmt.Fprintf(cmd.ErrOrStderr(), "-- %s truncated (backend relaunched) --\n", filepath.Base(path)) },
			)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing lines as they are written")
	return cmd
}
