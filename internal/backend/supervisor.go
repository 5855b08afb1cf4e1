package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"plutoshell/internal/logging"
)

// PathResolver supplies the backend executable and its data root.
type PathResolver interface {
	BinaryPath() (string, error)
	DataRoot() string
}

// Supervisor launches the backend once and stops it through its Handle.
type Supervisor struct {
	resolver PathResolver
	handle   *Handle
	logger   *slog.Logger
	started  atomic.Bool
}

// NewSupervisor wires a Supervisor to resolver and handle.
func NewSupervisor(resolver PathResolver, handle *Handle, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		resolver: resolver,
		handle:   handle,
		logger:   logging.NewComponentLogger(logger, "supervisor"),
	}
}

// Handle returns the slot shared with the Guard.
func (s *Supervisor) Handle() *Handle {
	return s.handle
}

// Guard returns a Guard over the Supervisor's Handle.
func (s *Supervisor) Guard() *Guard {
	return NewGuard(s.handle)
}

// Start resolves, spawns and parks the backend. Failures leave the Handle
// empty and are returned for the caller to log; they are never fatal to the
// shell. Start may only be called once.
func (s *Supervisor) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("backend supervisor already started")
	}

	launchID := uuid.NewString()
	logger := s.logger.With(logging.String(logging.FieldLaunchID, launchID))
	failed := func(binary, dataRoot string, err error) error {
		s.handle.observer.LaunchFailed(FailureRecord{
			LaunchID: launchID,
			At:       time.Now(),
			Kind:     errorKind(err),
			Message:  err.Error(),
			Binary:   binary,
			DataRoot: dataRoot,
		})
		return err
	}

	binary, err := s.resolver.BinaryPath()
	if err != nil {
		return failed("", "", fmt.Errorf("resolve backend binary: %w", err))
	}
	dataRoot := s.resolver.DataRoot()

	spec := NewLaunchSpec(binary, dataRoot)
	proc, err := Launch(spec, logger)
	if err != nil {
		return failed(binary, dataRoot, fmt.Errorf("launch backend: %w", err))
	}
	proc.launchID = launchID

	s.handle.observer.LaunchStarted(LaunchRecord{
		LaunchID:  launchID,
		PID:       proc.PID(),
		Binary:    binary,
		DataRoot:  dataRoot,
		StartedAt: proc.StartedAt(),
	})

	if err := s.handle.Store(proc); err != nil {
		// Shutdown already ran; nothing else will stop this child.
		s.handle.stop(proc, TriggerGuard)
		return fmt.Errorf("park backend: %w", err)
	}

	logger.Info("backend started",
		logging.String(logging.FieldEventType, "backend_started"),
		logging.Int(logging.FieldPID, proc.PID()),
		logging.Int("port", Port),
		logging.String("binary", binary),
		logging.String("data_root", dataRoot),
	)
	return nil
}

// Shutdown stops the backend in response to trigger. It reports whether this
// call performed the termination.
func (s *Supervisor) Shutdown(trigger string) bool {
	return s.handle.Shutdown(trigger)
}
