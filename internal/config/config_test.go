package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"plutoshell/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PLUTOSHELL_MODE", "")
	t.Setenv("PLUTOSHELL_DATA_ROOT", "")
	t.Setenv("PLUTOSHELL_BACKEND_BINARY", "")
}

func TestLoadDefaultConfigWithoutFile(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	want := filepath.Join(tempHome, ".config", "plutoshell", "config.toml")
	if resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.Shell.AppID != "plutoduck" {
		t.Fatalf("unexpected app id: %q", cfg.Shell.AppID)
	}
	if cfg.Shell.Mode != "" {
		t.Fatalf("expected empty mode to defer to build default, got %q", cfg.Shell.Mode)
	}
	if cfg.Paths.DataRoot != "" || cfg.Backend.Binary != "" {
		t.Fatalf("expected no path overrides, got data_root=%q binary=%q", cfg.Paths.DataRoot, cfg.Backend.Binary)
	}
	if cfg.Backend.StopGraceSeconds != 0 {
		t.Fatalf("expected immediate kill by default, got grace %d", cfg.Backend.StopGraceSeconds)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadParsesFileAndExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[shell]
app_id = "pluto-test"
mode = "DEV"

[paths]
data_root = "~/duck-data"

[backend]
binary = "~/bin/backend"
stop_grace_seconds = 3

[logging]
format = "JSON"
level = "Debug"
retention_days = 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Shell.AppID != "pluto-test" {
		t.Fatalf("unexpected app id: %q", cfg.Shell.AppID)
	}
	if cfg.Shell.Mode != config.ModeDevelopment {
		t.Fatalf("expected dev alias to normalize to development, got %q", cfg.Shell.Mode)
	}
	if cfg.Paths.DataRoot != filepath.Join(tempHome, "duck-data") {
		t.Fatalf("unexpected data root: %q", cfg.Paths.DataRoot)
	}
	if cfg.Backend.Binary != filepath.Join(tempHome, "bin", "backend") {
		t.Fatalf("unexpected binary: %q", cfg.Backend.Binary)
	}
	if cfg.Backend.StopGraceSeconds != 3 {
		t.Fatalf("unexpected stop grace: %d", cfg.Backend.StopGraceSeconds)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" || cfg.Logging.RetentionDays != 0 {
		t.Fatalf("unexpected logging section: %+v", cfg.Logging)
	}
}

func TestLoadEnvironmentFallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	dataRoot := filepath.Join(t.TempDir(), "root")
	binary := filepath.Join(t.TempDir(), "backend")
	t.Setenv("PLUTOSHELL_DATA_ROOT", dataRoot)
	t.Setenv("PLUTOSHELL_BACKEND_BINARY", binary)
	t.Setenv("PLUTOSHELL_MODE", "packaged")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.DataRoot != dataRoot {
		t.Fatalf("expected data root from env, got %q", cfg.Paths.DataRoot)
	}
	if cfg.Backend.Binary != binary {
		t.Fatalf("expected binary from env, got %q", cfg.Backend.Binary)
	}
	if cfg.Shell.Mode != config.ModePackaged {
		t.Fatalf("expected packaged mode from env, got %q", cfg.Shell.Mode)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "mode", content: "[shell]\nmode = \"staging\"\n", wantErr: "shell.mode"},
		{name: "grace", content: "[backend]\nstop_grace_seconds = -1\n", wantErr: "backend.stop_grace_seconds"},
		{name: "format", content: "[logging]\nformat = \"xml\"\n", wantErr: "logging.format"},
		{name: "retention", content: "[logging]\nretention_days = -2\n", wantErr: "logging.retention_days"},
		{name: "unknown key", content: "[backend]\nport = 9000\n", wantErr: "parse config"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("HOME", t.TempDir())
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected Load to fail")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateSampleLoadsCleanly(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Shell.AppID != "plutoduck" {
		t.Fatalf("sample should keep default app id, got %q", cfg.Shell.AppID)
	}
}
