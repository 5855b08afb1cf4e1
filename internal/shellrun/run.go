package shellrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"plutoshell/internal/backend"
	"plutoshell/internal/config"
	"plutoshell/internal/history"
	"plutoshell/internal/logging"
	"plutoshell/internal/paths"
)

const (
	lockFileName    = "shell.lock"
	logPointerName  = "shell.log"
	shellLogPattern = "shell-*.log"
	debugDirName    = "debug"
)

// ErrAlreadyRunning reports that another shell holds the data root lock.
var ErrAlreadyRunning = errors.New("another shell is already running for this data root")

// Options configures a shell run.
type Options struct {
	LogLevel    string
	Development bool
	Diagnostic  bool
	// Quiet keeps shell logs out of stdout; they still go to the run log file.
	Quiet bool
}

// Run launches the backend and keeps it alive until ctx is cancelled or the
// process receives SIGINT/SIGTERM. The backend is stopped on every return
// path. Backend launch failures are logged and the shell keeps running in a
// degraded state; only setup problems are returned.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}

	bootstrap, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	resolver, err := paths.New(cfg, bootstrap)
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	dataRoot := resolver.DataRoot()
	logDir := paths.LogDir(dataRoot)

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(logDir, fmt.Sprintf("shell-%s.log", runID))

	var sessionID, debugLogPath string
	if opts.Diagnostic {
		sessionID = uuid.NewString()
		debugDir := filepath.Join(logDir, debugDirName)
		if err := os.MkdirAll(debugDir, 0o755); err != nil {
			return fmt.Errorf("create debug log directory: %w", err)
		}
		debugLogPath = filepath.Join(debugDir, fmt.Sprintf("shell-%s.log", runID))
	}

	outputs := []string{logPath}
	errorOutputs := []string{logPath}
	if !opts.Quiet {
		outputs = append([]string{"stdout"}, outputs...)
		errorOutputs = append([]string{"stderr"}, errorOutputs...)
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      outputs,
		ErrorOutputPaths: errorOutputs,
		Development:      opts.Development,
		SessionID:        sessionID,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if opts.Diagnostic {
		debugLogger, debugErr := logging.New(logging.Options{
			Level:       "debug",
			Format:      "json",
			OutputPaths: []string{debugLogPath},
			Development: true,
			SessionID:   sessionID,
		})
		if debugErr != nil {
			logger.Warn("unable to initialize debug logger", logging.Error(debugErr))
		} else {
			logger = logging.TeeLogger(logger, debugLogger.Handler())
			if err := logging.UpdatePointer(filepath.Dir(debugLogPath), logPointerName, debugLogPath); err != nil {
				logger.Warn("unable to update debug shell.log link", logging.Error(err))
			}
		}
		logger.Info("diagnostic mode enabled",
			logging.String(logging.FieldEventType, "diagnostic_mode_enabled"),
			logging.String(logging.FieldSessionID, sessionID),
			logging.String("debug_log_path", debugLogPath),
		)
	}

	if err := logging.UpdatePointer(logDir, logPointerName, logPath); err != nil {
		logger.Warn("unable to update shell.log link", logging.Error(err))
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: logDir, Pattern: shellLogPattern, Exclude: []string{logPath}},
		logging.RetentionTarget{Dir: filepath.Join(logDir, debugDirName), Pattern: shellLogPattern, Exclude: []string{debugLogPath}},
	)

	lock := flock.New(filepath.Join(dataRoot, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire shell lock: %w", err)
	}
	if !locked {
		logger.Error("shell already running",
			logging.String(logging.FieldEventType, "shell_lock_held"),
			logging.String("lock", lock.Path()),
		)
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, lock.Path())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release shell lock", logging.Error(err))
		}
	}()

	var observer backend.Observer
	store, err := history.Open(dataRoot)
	if err != nil {
		logging.WarnWithContext(logger, "launch history unavailable", "history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete history.db under the data root if it is corrupt"),
			logging.String(logging.FieldImpact, "launches will not be recorded"),
		)
	} else {
		defer store.Close()
		observer = history.NewObserver(store, logger)
	}

	resolver, err = paths.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	handle := backend.NewHandle(logger, backend.Options{
		StopGrace: time.Duration(cfg.Backend.StopGraceSeconds) * time.Second,
		Observer:  observer,
	})
	supervisor := backend.NewSupervisor(resolver, handle, logger)
	guard := supervisor.Guard()
	defer guard.Close()

	logShellStart(logger, resolver, dataRoot, runID)

	if err := supervisor.Start(); err != nil {
		hint := "check backend-stderr.log under the data root"
		if errors.Is(err, backend.ErrBinaryNotFound) {
			hint = "build the backend into dist/ or set backend.binary"
		}
		logging.ErrorWithContext(logger, "backend launch failed; continuing without backend", "backend_launch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "backend requests will fail until the shell restarts"),
		)
	}

	<-signalCtx.Done()
	logger.Info("shell exiting",
		logging.String(logging.FieldEventType, "shell_exiting"),
		logging.String("cause", exitCause(cmdCtx)),
	)
	supervisor.Shutdown(backend.TriggerExitEvent)
	return nil
}

func logShellStart(logger *slog.Logger, resolver *paths.Resolver, dataRoot, runID string) {
	candidate, candidateErr := resolver.CandidateBinary()
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "shell_starting"),
		logging.String("run_id", runID),
		logging.String("mode", string(resolver.Mode())),
		logging.String("data_root", dataRoot),
		logging.Int("port", backend.Port),
	}
	if candidateErr != nil {
		attrs = append(attrs, logging.String("binary_error", candidateErr.Error()))
	} else {
		attrs = append(attrs, logging.String("binary", candidate))
	}
	logger.Info("shell starting", logging.Args(attrs...)...)
}

func exitCause(cmdCtx context.Context) string {
	if cmdCtx.Err() != nil {
		return "context_cancelled"
	}
	return "signal"
}
