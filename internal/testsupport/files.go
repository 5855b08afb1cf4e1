package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Stub backend scripts. Each echoes the sentinels the launch tests look for.
const (
	// StubSentinelBackend prints to both streams then sleeps until killed.
	StubSentinelBackend = `echo "stdout-sentinel root=$PLUTODUCK_DATA_DIR__ROOT args=$*"
echo "cwd=$(pwd)"
echo "stderr-sentinel" >&2
exec sleep 60
`
	// StubGracefulBackend exits cleanly on SIGTERM.
	StubGracefulBackend = `trap 'echo "term-received"; exit 0' TERM
echo "stdout-sentinel"
while :; do sleep 1; done
`
	// StubStubbornBackend ignores SIGTERM so only SIGKILL stops it.
	StubStubbornBackend = `trap '' TERM
echo "stdout-sentinel"
while :; do sleep 1; done
`
	// StubCrashingBackend exits on its own right away.
	StubCrashingBackend = `echo "stderr-sentinel crash" >&2
exit 3
`
)

// WriteStubBackend writes an executable /bin/sh script at path.
func WriteStubBackend(t testing.TB, path, script string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write stub backend %s: %v", path, err)
	}
}

// WaitForFileContains polls path until it contains want or timeout elapses.
func WaitForFileContains(t testing.TB, path, want string, timeout time.Duration) string {
	t.Helper()

	deadline := time.Now().Add(timeout)
	var content []byte
	for {
		data, err := os.ReadFile(path)
		if err == nil {
			content = data
			if strings.Contains(string(content), want) {
				return string(content)
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %q in %s; last content %q", want, path, string(content))
		}
		time.Sleep(20 * time.Millisecond)
	}
}
