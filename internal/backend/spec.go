package backend

import (
	"path/filepath"
	"strconv"

	"plutoshell/internal/paths"
)

const (
	// Port is the fixed TCP port the backend listens on. The UI assumes it.
	Port        = 8123
	// DataRootEnv tells the backend where its writable data lives.
	DataRootEnv = "PLUTODUCK_DATA_DIR__ROOT"

	StdoutLogName = "backend-stdout.log"
	StderrLogName = "backend-stderr.log"
)

// LaunchSpec describes one backend invocation.
type LaunchSpec struct {
	Executable string
	WorkDir    string
	Env        []string
	Args       []string
	StdoutPath string
	StderrPath string
}

// NewLaunchSpec builds the invocation for binary against dataRoot.
func NewLaunchSpec(binary, dataRoot string) LaunchSpec {
	logDir := paths.LogDir(dataRoot)
	return LaunchSpec{
		Executable: binary,
		WorkDir:    filepath.Dir(binary),
		Env:        []string{DataRootEnv + "=" + dataRoot},
		Args:       []string{"--port", strconv.Itoa(Port), "--data-root", dataRoot},
		StdoutPath: filepath.Join(logDir, StdoutLogName),
		StderrPath: filepath.Join(logDir, StderrLogName),
	}
}
