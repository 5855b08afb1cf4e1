//go:build windows

package backend

import "os/exec"

const supportsGracefulStop = false

func configureProcAttr(*exec.Cmd) {}

func (p *Process) signalStop() error {
	return p.cmd.Process.Kill()
}

func (p *Process) kill() error {
	return p.cmd.Process.Kill()
}
