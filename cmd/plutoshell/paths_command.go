package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"plutoshell/internal/backend"
	"plutoshell/internal/history"
	"plutoshell/internal/paths"
)

type pathsReport struct {
	Mode             string `json:"mode"`
	Binary           string `json:"binary"`
	BinaryExists     bool   `json:"binary_exists"`
	BinaryError      string `json:"binary_error,omitempty"`
	DataRoot         string `json:"data_root"`
	DataRootWritable bool   `json:"data_root_writable"`
	Port             int    `json:"port"`
	StdoutLog        string `json:"stdout_log"`
	StderrLog        string `json:"stderr_log"`
	ShellLog         string `json:"shell_log"`
	LockFile         string `json:"lock_file"`
	HistoryDB        string `json:"history_db"`
}

func newPathsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Show where the backend binary, data root and logs resolve to",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := ctx.resolver()
			if err != nil {
				return err
			}
			report := buildPathsReport(resolver)
			if asJSON {
				return writeJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			if shouldRenderTable(out) {
				fmt.Fprintln(out, renderTable([]string{"Item", "Value"}, report.rows(), nil))
				return nil
			}
			for _, row := range report.rows() {
				fmt.Fprintf(out, "%s: %s\n", row[0], row[1])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func buildPathsReport(resolver *paths.Resolver) pathsReport {
	dataRoot := resolver.DataRoot()
	spec := backend.NewLaunchSpec("", dataRoot)
	report := pathsReport{
		Mode:             string(resolver.Mode()),
		DataRoot:         dataRoot,
		DataRootWritable: dirWritable(dataRoot),
		Port:             backend.Port,
		StdoutLog:        spec.StdoutPath,
		StderrLog:        spec.StderrPath,
		ShellLog:         filepath.Join(paths.LogDir(dataRoot), "shell.log"),
		LockFile:         filepath.Join(dataRoot, "shell.lock"),
		HistoryDB:        filepath.Join(dataRoot, history.DBFileName),
	}
	if candidate, err := resolver.CandidateBinary(); err == nil {
		report.Binary = candidate
	}
	if _, err := resolver.BinaryPath(); err != nil {
		report.BinaryError = err.Error()
	} else {
		report.BinaryExists = true
	}
	return report
}

func (r pathsReport) rows() [][]string {
	binary := r.Binary
	if binary == "" {
		binary = "(unresolved)"
	}
	return [][]string{
		{"mode", r.Mode},
		{"binary", binary},
		{"binary_exists", yesNo(r.BinaryExists)},
		{"data_root", r.DataRoot},
		{"data_root_writable", yesNo(r.DataRootWritable)},
		{"port", fmt.Sprintf("%d", r.Port)},
		{"stdout_log", r.StdoutLog},
		{"stderr_log", r.StderrLog},
		{"shell_log", r.ShellLog},
		{"lock_file", r.LockFile},
		{"history_db", r.HistoryDB},
	}
}

func shouldRenderTable(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
