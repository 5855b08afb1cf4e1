package backend

import (
	"errors"

	"plutoshell/internal/paths"
)

var (
	// ErrBinaryNotFound reports that the backend executable does not exist.
	ErrBinaryNotFound = paths.ErrBinaryNotFound
	// ErrLogFile reports that a backend log file could not be opened.
	ErrLogFile        = errors.New("backend log file unavailable")
	// ErrSpawn reports that the OS refused to start the backend.
	ErrSpawn          = errors.New("backend spawn failed")
	// ErrHandleClosed is returned when storing into a handle that already shut down.
	ErrHandleClosed   = errors.New("backend handle closed")
)
