package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"plutoshell/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent backend launches",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := ctx.resolver()
			if err != nil {
				return err
			}
			dataRoot := resolver.DataRoot()
			out := cmd.OutOrStdout()

			if _, err := os.Stat(filepath.Join(dataRoot, history.DBFileName)); os.IsNotExist(err) {
				if asJSON {
					return writeJSON(cmd, []history.Entry{})
				}
				fmt.Fprintln(out, "No launches recorded")
				return nil
			}

			store, err := history.Open(dataRoot)
			if err != nil {
				return fmt.Errorf("open launch history: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				if entries == nil {
					entries = []history.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No launches recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Launch", "Status", "PID", "Trigger", "Detail"},
				historyRows(entries),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum launches to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func historyRows(entries []history.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		pid := ""
		if e.PID > 0 {
			pid = strconv.Itoa(e.PID)
		}
		detail := e.Exit
		if e.Status == history.StatusFailed {
			detail = e.ErrorKind
			if e.ErrorMessage != "" {
				detail += ": " + e.ErrorMessage
			}
		} else if e.Forced {
			detail += " (forced)"
		}
		rows = append(rows, []string{
			e.StartedAt.Local().Format(time.DateTime),
			shortLaunchID(e.LaunchID),
			e.Status,
			pid,
			e.Trigger,
			detail,
		})
	}
	return rows
}

func shortLaunchID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
