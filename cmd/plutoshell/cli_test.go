package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"plutoshell/internal/backend"
	"plutoshell/internal/history"
)

type cliTestEnv struct {
	baseDir    string
	dataRoot   string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"PLUTOSHELL_MODE", "PLUTOSHELL_DATA_ROOT", "PLUTOSHELL_BACKEND_BINARY"} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{
		baseDir:    base,
		dataRoot:   filepath.Join(base, "data"),
		configPath: filepath.Join(base, "plutoshell.toml"),
	}
	content := fmt.Sprintf("[shell]\nmode = \"development\"\n\n[paths]\nsource_root = %q\ndata_root = %q\n",
		filepath.Join(base, "src"), env.dataRoot)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Mode: development")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	out, _, err = runCLI(t, target, "config", "validate")
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[backend]\nstop_grace_seconds = -1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runCLI(t, env.configPath, "config", "validate"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestPathsCommandPlainOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "paths")
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	requireContains(t, out, "mode: development")
	requireContains(t, out, "data_root: "+env.dataRoot)
	requireContains(t, out, "port: 8123")
	requireContains(t, out, "binary_exists: no")
	requireContains(t, out, filepath.Join(env.baseDir, "dist", "pluto-duck-backend", "pluto-duck-backend"))
	requireContains(t, out, filepath.Join(env.dataRoot, "logs", "backend-stdout.log"))

	if _, err := os.Stat(filepath.Join(env.dataRoot, "logs")); err != nil {
		t.Fatalf("expected paths to create the logs directory: %v", err)
	}
}

func TestPathsCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "paths", "--json")
	if err != nil {
		t.Fatalf("paths --json: %v", err)
	}
	var report map[string]any
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v (%q)", err, out)
	}
	if report["port"] != float64(backend.Port) {
		t.Fatalf("unexpected port %v", report["port"])
	}
	if report["data_root_writable"] != true {
		t.Fatalf("expected writable data root, got %v", report["data_root_writable"])
	}
	if report["binary_exists"] != false {
		t.Fatalf("expected missing binary, got %v", report["binary_exists"])
	}
}

func TestHistoryCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env.configPath, "history")
	if err != nil {
		t.Fatalf("history (empty): %v", err)
	}
	requireContains(t, out, "No launches recorded")

	store, err := history.Open(env.dataRoot)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	ctx := context.Background()
	now := time.Now()
	if err := store.RecordFailure(ctx, backend.FailureRecord{
		LaunchID: "aaaaaaaa-1111",
		At:       now.Add(-2 * time.Minute),
		Kind:     "binary_not_found",
		Message:  "backend binary not found",
	}); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if err := store.RecordLaunch(ctx, backend.LaunchRecord{LaunchID: "bbbbbbbb-2222", PID: 777, StartedAt: now.Add(-time.Minute)}); err != nil {
		t.Fatalf("RecordLaunch: %v", err)
	}
	if err := store.RecordStop(ctx, backend.StopRecord{
		LaunchID:  "bbbbbbbb-2222",
		StoppedAt: now,
		Trigger:   backend.TriggerGuard,
		Exit:      "signal: killed",
		Forced:    true,
	}); err != nil {
		t.Fatalf("RecordStop: %v", err)
	}
	_ = store.Close()

	out, _, err = runCLI(t, env.configPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{"bbbbbbbb", "stopped", "777", "guard", "signal: killed (forced)", "aaaaaaaa", "binary_not_found"} {
		requireContains(t, out, want)
	}
	if strings.Index(out, "bbbbbbbb") > strings.Index(out, "aaaaaaaa") {
		t.Fatalf("expected newest launch first:\n%s", out)
	}

	out, _, err = runCLI(t, env.configPath, "history", "--limit", "1", "--json")
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0]["launch_id"] != "bbbbbbbb-2222" {
		t.Fatalf("unexpected json entries: %v", entries)
	}
}

func TestLogsCommandPrintsTail(t *testing.T) {
	env := setupCLITestEnv(t)
	logDir := filepath.Join(env.dataRoot, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(logDir, backend.StderrLogName), []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatalf("write stderr log: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "logs", "-n", "2")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "two\nthree\n" {
		t.Fatalf("unexpected tail %q", out)
	}

	out, _, err = runCLI(t, env.configPath, "logs", "stdout")
	if err != nil {
		t.Fatalf("logs stdout: %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output for missing stdout log, got %q", out)
	}

	if _, _, err := runCLI(t, env.configPath, "logs", "bogus"); err == nil {
		t.Fatal("expected invalid stream to be rejected")
	}
}
