package backend_test

import (
	"runtime"
	"sync"
	"testing"

	"plutoshell/internal/backend"
	"plutoshell/internal/config"
	"plutoshell/internal/logging"
	"plutoshell/internal/paths"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub backends are /bin/sh scripts")
	}
}

func mustResolver(t *testing.T, cfg *config.Config) *paths.Resolver {
	t.Helper()
	r, err := paths.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("paths.New: %v", err)
	}
	return r
}

type recordingObserver struct {
	mu       sync.Mutex
	started  []backend.LaunchRecord
	stopped  []backend.StopRecord
	failures []backend.FailureRecord
}

func (o *recordingObserver) LaunchStarted(rec backend.LaunchRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, rec)
}

func (o *recordingObserver) LaunchStopped(rec backend.StopRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopped = append(o.stopped, rec)
}

func (o *recordingObserver) LaunchFailed(rec backend.FailureRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, rec)
}

func (o *recordingObserver) snapshot() ([]backend.LaunchRecord, []backend.StopRecord, []backend.FailureRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]backend.LaunchRecord(nil), o.started...),
		append([]backend.StopRecord(nil), o.stopped...),
		append([]backend.FailureRecord(nil), o.failures...)
}
