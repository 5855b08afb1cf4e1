package paths_test

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"plutoshell/internal/config"
	"plutoshell/internal/logging"
	"plutoshell/internal/paths"
)

func newResolver(t *testing.T, mutate func(*config.Config), opts ...paths.Option) *paths.Resolver {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	r, err := paths.New(&cfg, logging.NewNop(), opts...)
	if err != nil {
		t.Fatalf("paths.New: %v", err)
	}
	return r
}

func touchExecutable(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("binary layout assertions assume no .exe suffix")
	}
}

func TestBinaryPathDevelopmentLayout(t *testing.T) {
	skipOnWindows(t)
	base := t.TempDir()
	sourceRoot := filepath.Join(base, "shell")
	want := filepath.Join(base, "dist", "pluto-duck-backend", "pluto-duck-backend")
	touchExecutable(t, want)

	r := newResolver(t, func(c *config.Config) {
		c.Shell.Mode = config.ModeDevelopment
		c.Paths.SourceRoot = sourceRoot
	})

	got, err := r.BinaryPath()
	if err != nil {
		t.Fatalf("BinaryPath returned error: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected binary path: got %q want %q", got, want)
	}
}

func TestBinaryPathPackagedLayout(t *testing.T) {
	skipOnWindows(t)
	resources := t.TempDir()
	want := filepath.Join(resources, "_up_", "_up_", "dist", "pluto-duck-backend", "pluto-duck-backend")
	touchExecutable(t, want)

	r := newResolver(t, func(c *config.Config) {
		c.Shell.Mode = config.ModePackaged
		c.Paths.ResourceDir = resources
	})

	got, err := r.BinaryPath()
	if err != nil {
		t.Fatalf("BinaryPath returned error: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected binary path: got %q want %q", got, want)
	}
}

func TestBinaryPathMissingReportsNotFound(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config, string)
	}{
		{name: "development", mutate: func(c *config.Config, dir string) {
			c.Shell.Mode = config.ModeDevelopment
			c.Paths.SourceRoot = filepath.Join(dir, "shell")
		}},
		{name: "packaged", mutate: func(c *config.Config, dir string) {
			c.Shell.Mode = config.ModePackaged
			c.Paths.ResourceDir = dir
		}},
		{name: "override", mutate: func(c *config.Config, dir string) {
			c.Backend.Binary = filepath.Join(dir, "nope")
		}},
		{name: "directory", mutate: func(c *config.Config, dir string) {
			c.Backend.Binary = dir
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			r := newResolver(t, func(c *config.Config) { tc.mutate(c, dir) })
			_, err := r.BinaryPath()
			if !errors.Is(err, paths.ErrBinaryNotFound) {
				t.Fatalf("expected ErrBinaryNotFound, got %v", err)
			}
		})
	}
}

func TestBinaryOverrideWins(t *testing.T) {
	binary := filepath.Join(t.TempDir(), "custom-backend")
	touchExecutable(t, binary)

	r := newResolver(t, func(c *config.Config) {
		c.Shell.Mode = config.ModeDevelopment
		c.Paths.SourceRoot = t.TempDir()
		c.Backend.Binary = binary
	})

	got, err := r.BinaryPath()
	if err != nil {
		t.Fatalf("BinaryPath returned error: %v", err)
	}
	if got != binary {
		t.Fatalf("expected override %q, got %q", binary, got)
	}
}

func TestDataRootDevelopmentCreatesLogs(t *testing.T) {
	base := t.TempDir()
	r := newResolver(t, func(c *config.Config) {
		c.Shell.Mode = config.ModeDevelopment
		c.Paths.SourceRoot = filepath.Join(base, "shell")
	})

	root := r.DataRoot()
	want := filepath.Join(base, ".dev-data", "backend")
	if root != want {
		t.Fatalf("unexpected data root: got %q want %q", root, want)
	}
	if info, err := os.Stat(paths.LogDir(root)); err != nil || !info.IsDir() {
		t.Fatalf("expected logs dir to exist: %v", err)
	}
}

func TestDataRootPackagedUsesAppDataDir(t *testing.T) {
	appData := t.TempDir()
	var gotID string
	r := newResolver(t, func(c *config.Config) {
		c.Shell.Mode = config.ModePackaged
		c.Shell.AppID = "duck-test"
	}, paths.WithAppDataDir(func(appID string) (string, error) {
		gotID = appID
		return filepath.Join(appData, appID), nil
	}))

	root := r.DataRoot()
	if gotID != "duck-test" {
		t.Fatalf("expected app id to be passed through, got %q", gotID)
	}
	if want := filepath.Join(appData, "duck-test", "backend"); root != want {
		t.Fatalf("unexpected data root: got %q want %q", root, want)
	}
}

func TestDataRootFallsBackToTempDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("TMPDIR does not drive os.TempDir on windows")
	}
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	r := newResolver(t, func(c *config.Config) {
		c.Shell.Mode = config.ModePackaged
	}, paths.WithAppDataDir(func(string) (string, error) {
		return "", errors.New("no home")
	}))

	root := r.DataRoot()
	if want := filepath.Join(tmp, "pluto_duck", "backend"); root != want {
		t.Fatalf("unexpected fallback root: got %q want %q", root, want)
	}
	if _, err := os.Stat(filepath.Join(root, "logs")); err != nil {
		t.Fatalf("expected logs dir under fallback root: %v", err)
	}
}

func TestDataRootIsIdempotent(t *testing.T) {
	override := filepath.Join(t.TempDir(), "root")
	if err := os.MkdirAll(filepath.Join(override, "logs"), 0o755); err != nil {
		t.Fatalf("pre-create: %v", err)
	}
	r := newResolver(t, func(c *config.Config) { c.Paths.DataRoot = override })

	first := r.DataRoot()
	second := r.DataRoot()
	if first != override || second != override {
		t.Fatalf("expected stable override root, got %q then %q", first, second)
	}
}

func TestDataRootCreationFailureStillReturnsPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	override := filepath.Join(blocker, "root")
	r := newResolver(t, func(c *config.Config) { c.Paths.DataRoot = override })

	if got := r.DataRoot(); got != override {
		t.Fatalf("expected path even on failure, got %q", got)
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in      string
		want    paths.Mode
		wantErr bool
	}{
		{in: "", want: paths.BuildMode()},
		{in: "development", want: paths.Development},
		{in: " Packaged ", want: paths.Packaged},
		{in: "debug", wantErr: true},
	}
	for _, tc := range cases {
		got, err := paths.ParseMode(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseMode(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseMode(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}
