package backend

import (
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"plutoshell/internal/logging"
)

// Process is a running backend child.
type Process struct {
	cmd       *exec.Cmd
	pid       int
	startedAt time.Time
	launchID  string
	stdout    *os.File
	stderr    *os.File
	logger    *slog.Logger

	done      chan struct{}
	stopping  atomic.Bool
	exitErr   error
	state     *os.ProcessState
	closeOnce sync.Once
}

// PID returns the OS process id.
func (p *Process) PID() int { return p.pid }

// StartedAt returns when the child was spawned.
func (p *Process) StartedAt() time.Time { return p.startedAt }

// LaunchID returns the id assigned by the Supervisor, if any.
func (p *Process) LaunchID() string { return p.launchID }

// Done is closed once the child has exited and been reaped.
func (p *Process) Done() <-chan struct{} { return p.done }

// Exited reports whether the child has been reaped.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// ExitDescription describes how the child ended. Empty while it is running.
func (p *Process) ExitDescription() string {
	if !p.Exited() {
		return ""
	}
	if p.state != nil {
		return p.state.String()
	}
	if p.exitErr != nil {
		return p.exitErr.Error()
	}
	return "exited"
}

// reap is the only caller of cmd.Wait.
func (p *Process) reap() {
	err := p.cmd.Wait()
	p.exitErr = err
	p.state = p.cmd.ProcessState
	p.closeLogs()
	close(p.done)

	if p.stopping.Load() {
		return
	}
	code := -1
	if p.state != nil {
		code = p.state.ExitCode()
	}
	logging.WarnWithContext(p.logger, "backend exited unexpectedly", "backend_exited",
		logging.Int(logging.FieldPID, p.pid),
		logging.Int("exit_code", code),
		logging.Duration("uptime", time.Since(p.startedAt)),
		logging.String(logging.FieldErrorHint, "check backend-stderr.log under the data root"),
		logging.String(logging.FieldImpact, "backend requests will fail until the shell restarts"),
	)
}

func (p *Process) closeLogs() {
	p.closeOnce.Do(func() {
		_ = p.stdout.Close()
		_ = p.stderr.Close()
	})
}

// terminate stops the child and waits for the reaper. A zero grace kills
// immediately; otherwise the group gets SIGTERM first and SIGKILL once grace
// elapses. forced reports whether the hard kill was sent.
func (p *Process) terminate(grace time.Duration) (forced bool, err error) {
	p.stopping.Store(true)
	if p.Exited() {
		return false, nil
	}

	if grace > 0 && supportsGracefulStop {
		if sigErr := p.signalStop(); sigErr != nil && !errors.Is(sigErr, os.ErrProcessDone) {
			err = sigErr
		}
		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-p.done:
			return false, err
		case <-timer.C:
		}
	}

	if killErr := p.kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
		err = errors.Join(err, killErr)
	}
	<-p.done
	return true, err
}
