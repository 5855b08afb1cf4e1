package shellrun_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"plutoshell/internal/backend"
	"plutoshell/internal/history"
	"plutoshell/internal/shellrun"
	"plutoshell/internal/testsupport"
)

func startRun(ctx context.Context, t *testing.T, opts ...testsupport.ConfigOption) (string, <-chan error) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	done := make(chan error, 1)
	go func() {
		done <- shellrun.Run(ctx, cfg, shellrun.Options{Quiet: true})
	}()
	return cfg.Paths.DataRoot, done
}

func waitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("shell run did not return")
		return nil
	}
}

func recentHistory(t *testing.T, dataRoot string) []history.Entry {
	t.Helper()
	store, err := history.Open(dataRoot)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer store.Close()
	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	return entries
}

func TestRunRequiresConfig(t *testing.T) {
	if err := shellrun.Run(context.Background(), nil, shellrun.Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestRunDegradedWhenBackendMissing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dataRoot, done := startRun(ctx, t)

	shellLog := filepath.Join(dataRoot, "logs", "shell.log")
	testsupport.WaitForFileContains(t, shellLog, "backend_launch_failed", 5*time.Second)

	cancel()
	if err := waitRun(t, done); err != nil {
		t.Fatalf("degraded run should exit cleanly, got %v", err)
	}

	entries := recentHistory(t, dataRoot)
	if len(entries) != 1 || entries[0].Status != history.StatusFailed || entries[0].ErrorKind != "binary_not_found" {
		t.Fatalf("expected one binary_not_found failure, got %+v", entries)
	}
}

func TestRunStopsBackendOnExitEvent(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub backends are /bin/sh scripts")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dataRoot, done := startRun(ctx, t, testsupport.WithStubBackend(testsupport.StubSentinelBackend))

	stdoutLog := filepath.Join(dataRoot, "logs", backend.StdoutLogName)
	testsupport.WaitForFileContains(t, stdoutLog, "stdout-sentinel", 5*time.Second)

	cancel()
	if err := waitRun(t, done); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	entries := recentHistory(t, dataRoot)
	if len(entries) != 1 {
		t.Fatalf("expected one launch entry, got %+v", entries)
	}
	if entries[0].Status != history.StatusStopped || entries[0].Trigger != backend.TriggerExitEvent {
		t.Fatalf("expected exit_event stop, got %+v", entries[0])
	}

	shellLog := filepath.Join(dataRoot, "logs", "shell.log")
	testsupport.WaitForFileContains(t, shellLog, "backend_stopped", time.Second)
}

func TestRunRefusesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.DataRoot, 0o755); err != nil {
		t.Fatalf("mkdir data root: %v", err)
	}
	held := flock.New(filepath.Join(cfg.Paths.DataRoot, "shell.lock"))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-lock failed: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	err = shellrun.Run(context.Background(), cfg, shellrun.Options{Quiet: true})
	if !errors.Is(err, shellrun.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}
