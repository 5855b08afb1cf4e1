package backend

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"plutoshell/internal/logging"
)

// Options tunes how a Handle stops its backend.
type Options struct {
	// StopGrace is how long the backend gets after SIGTERM before SIGKILL.
	// Zero kills immediately.
	StopGrace time.Duration
	Observer  Observer
}

// Handle holds at most one running backend. Once emptied by Take or
// Shutdown it stays closed.
type Handle struct {
	mu     sync.Mutex
	proc   *Process
	closed bool

	grace    time.Duration
	observer Observer
	logger   *slog.Logger
}

// NewHandle returns an empty, open Handle.
func NewHandle(logger *slog.Logger, opts Options) *Handle {
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Handle{
		grace:    opts.StopGrace,
		observer: observer,
		logger:   logging.NewComponentLogger(logger, "supervisor"),
	}
}

// Store parks proc in the slot.
func (h *Handle) Store(proc *Process) error {
	if proc == nil {
		return errors.New("store nil backend process")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHandleClosed
	}
	if h.proc != nil {
		return errors.New("backend handle already holds a process")
	}
	h.proc = proc
	return nil
}

// Take empties and closes the slot, returning what it held.
func (h *Handle) Take() *Process {
	h.mu.Lock()
	defer h.mu.Unlock()
	proc := h.proc
	h.proc = nil
	h.closed = true
	return proc
}

// Running reports whether a backend is parked in the slot.
func (h *Handle) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.proc != nil
}

// PID returns the parked backend's pid, or 0.
func (h *Handle) PID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.proc == nil {
		return 0
	}
	return h.proc.PID()
}

// Shutdown terminates the parked backend, if any. It returns true only for
// the call that actually stopped a child; every later or concurrent call
// finds the slot empty and returns false.
func (h *Handle) Shutdown(trigger string) bool {
	proc := h.Take()
	if proc == nil {
		h.logger.Debug("backend shutdown skipped; nothing running", logging.String("trigger", trigger))
		return false
	}
	h.stop(proc, trigger)
	return true
}

func (h *Handle) stop(proc *Process, trigger string) {
	logger := h.logger.With(logging.String(logging.FieldLaunchID, proc.LaunchID()))
	logger.Info("stopping backend",
		logging.String(logging.FieldEventType, "backend_stopping"),
		logging.String("trigger", trigger),
		logging.Int(logging.FieldPID, proc.PID()),
		logging.Duration("grace", h.grace),
	)

	forced, err := proc.terminate(h.grace)
	if err != nil {
		logging.WarnWithContext(logger, "backend termination reported an error", "backend_stop_error",
			logging.Int(logging.FieldPID, proc.PID()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify the backend process is gone"),
			logging.String(logging.FieldImpact, "a stray backend may still hold the port"),
		)
	}

	exit := proc.ExitDescription()
	logger.Info("backend stopped",
		logging.String(logging.FieldEventType, "backend_stopped"),
		logging.String("trigger", trigger),
		logging.String("exit", exit),
		logging.Bool("forced", forced),
		logging.Duration("uptime", time.Since(proc.StartedAt())),
	)
	h.observer.LaunchStopped(StopRecord{
		LaunchID:  proc.LaunchID(),
		StoppedAt: time.Now(),
		Trigger:   trigger,
		Exit:      exit,
		Forced:    forced,
	})
}
