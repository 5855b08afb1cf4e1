//go:build unix

package backend

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

const supportsGracefulStop = true

// configureProcAttr puts the child in its own process group so helpers it
// forks are signalled along with it.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func (p *Process) signalStop() error {
	return signalGroup(p.pid, unix.SIGTERM)
}

func (p *Process) kill() error {
	return signalGroup(p.pid, unix.SIGKILL)
}

func signalGroup(pgid int, sig unix.Signal) error {
	err := unix.Kill(-pgid, sig)
	if errors.Is(err, unix.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}
