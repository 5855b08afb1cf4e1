package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"plutoshell/internal/logging"
)

// Launch starts the backend described by spec. Output goes to the log files
// named in spec, which are truncated first. The returned Process is already
// being reaped in the background.
func Launch(spec LaunchSpec, logger *slog.Logger) (*Process, error) {
	logger = logging.NewComponentLogger(logger, "backend")

	info, err := os.Stat(spec.Executable)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w at %s", ErrBinaryNotFound, spec.Executable)
	}

	stdout, err := openLogFile(spec.StdoutPath)
	if err != nil {
		return nil, err
	}
	stderr, err := openLogFile(spec.StderrPath)
	if err != nil {
		_ = stdout.Close()
		return nil, err
	}

	cmd := exec.Command(spec.Executable, spec.Args...) //nolint:gosec
	cmd.Dir = spec.WorkDir
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.Stdin = nil
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	configureProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		_ = stdout.Close()
		_ = stderr.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, spec.Executable, err)
	}

	proc := &Process{
		cmd:       cmd,
		pid:       cmd.Process.Pid,
		startedAt: time.Now(),
		stdout:    stdout,
		stderr:    stderr,
		done:      make(chan struct{}),
		logger:    logger,
	}
	go proc.reap()

	logger.Debug("backend process spawned",
		logging.Int(logging.FieldPID, proc.pid),
		logging.String("binary", spec.Executable),
		logging.String("work_dir", spec.WorkDir),
		logging.Any("args", spec.Args),
		logging.String("stdout_log", spec.StdoutPath),
		logging.String("stderr_log", spec.StderrPath),
	)
	return proc, nil
}

func openLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLogFile, path, err)
	}
	return f, nil
}

// errorKind classifies a launch failure for the history record.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrBinaryNotFound):
		return "binary_not_found"
	case errors.Is(err, ErrLogFile):
		return "log_file"
	case errors.Is(err, ErrSpawn):
		return "spawn"
	case errors.Is(err, ErrHandleClosed):
		return "handle_closed"
	default:
		return "other"
	}
}
