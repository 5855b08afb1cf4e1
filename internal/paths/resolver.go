package paths

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"

	"plutoshell/internal/config"
	"plutoshell/internal/logging"
)

const (
	devBinaryPath     = "../dist/pluto-duck-backend/pluto-duck-backend"
	bundledBinaryPath = "_up_/_up_/dist/pluto-duck-backend/pluto-duck-backend"
	devDataPath       = "../.dev-data"
	tempFallbackName  = "pluto_duck"
	backendSubdir     = "backend"

	// LogsDirName is the directory under the data root that receives backend
	// and shell logs.
	LogsDirName = "logs"
)

// ErrBinaryNotFound reports that the resolved backend executable is missing.
var ErrBinaryNotFound = errors.New("backend binary not found")

// AppDataFunc returns the per-user application data directory for appID.
type AppDataFunc func(appID string) (string, error)

// Resolver computes the backend executable path and the writable data root.
type Resolver struct {
	mode             Mode
	appID            string
	sourceRoot       string
	resourceDir      string
	binaryOverride   string
	dataRootOverride string
	appData          AppDataFunc
	logger           *slog.Logger
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithAppDataDir replaces the OS app-data lookup.
func WithAppDataDir(fn AppDataFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.appData = fn
		}
	}
}

// New builds a Resolver from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Resolver, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	mode, err := ParseMode(cfg.Shell.Mode)
	if err != nil {
		return nil, fmt.Errorf("shell.mode: %w", err)
	}
	r := &Resolver{
		mode:             mode,
		appID:            cfg.Shell.AppID,
		sourceRoot:       cfg.Paths.SourceRoot,
		resourceDir:      cfg.Paths.ResourceDir,
		binaryOverride:   cfg.Backend.Binary,
		dataRootOverride: cfg.Paths.DataRoot,
		appData:          xdgAppDataDir,
		logger:           logging.NewComponentLogger(logger, "paths"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Mode returns the resolution mode in effect.
func (r *Resolver) Mode() Mode {
	return r.mode
}

// SourceRoot returns the development root that dist/ and .dev-data/ hang off.
func (r *Resolver) SourceRoot() string {
	if r.sourceRoot != "" {
		return r.sourceRoot
	}
	return moduleRoot()
}

// ResourceDir returns the packaged resources directory.
func (r *Resolver) ResourceDir() (string, error) {
	if r.resourceDir != "" {
		return r.resourceDir, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resource directory unavailable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)
	if runtime.GOOS == "darwin" {
		// <App>.app/Contents/MacOS/<exe> -> <App>.app/Contents/Resources
		return filepath.Clean(filepath.Join(dir, "..", "Resources")), nil
	}
	return dir, nil
}

// BinaryPath returns the backend executable location. The returned error
// wraps ErrBinaryNotFound when nothing exists at the computed path, so the
// caller never attempts to spawn it.
func (r *Resolver) BinaryPath() (string, error) {
	path, err := r.candidateBinary()
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w at %s", ErrBinaryNotFound, path)
		}
		return "", fmt.Errorf("stat backend binary %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w at %s (path is a directory)", ErrBinaryNotFound, path)
	}
	return path, nil
}

// CandidateBinary returns the path BinaryPath checks, without checking it.
func (r *Resolver) CandidateBinary() (string, error) {
	return r.candidateBinary()
}

func (r *Resolver) candidateBinary() (string, error) {
	if r.binaryOverride != "" {
		return r.binaryOverride, nil
	}
	var path string
	switch r.mode {
	case Development:
		path = filepath.Join(r.SourceRoot(), filepath.FromSlash(devBinaryPath))
	default:
		resources, err := r.ResourceDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(resources, filepath.FromSlash(bundledBinaryPath))
	}
	if runtime.GOOS == "windows" && !strings.EqualFold(filepath.Ext(path), ".exe") {
		path += ".exe"
	}
	return path, nil
}

// DataRoot returns the backend data root and makes sure it and its logs
// directory exist. Creation failures are logged, not returned; the path is
// always usable as a value and later file creation reports the real error.
func (r *Resolver) DataRoot() string {
	root := r.dataRootPath()
	logs := filepath.Join(root, LogsDirName)
	if err := os.MkdirAll(logs, 0o755); err != nil {
		logging.ErrorWithContext(r.logger, "failed to create backend data directories", "data_root_create_failed",
			logging.String("data_root", root),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the data root or set paths.data_root"),
		)
	}
	return root
}

func (r *Resolver) dataRootPath() string {
	if r.dataRootOverride != "" {
		return r.dataRootOverride
	}
	var base string
	switch r.mode {
	case Development:
		base = filepath.Join(r.SourceRoot(), filepath.FromSlash(devDataPath))
	default:
		dir, err := r.appData(r.appID)
		if err != nil || strings.TrimSpace(dir) == "" {
			fallback := filepath.Join(os.TempDir(), tempFallbackName)
			logging.WarnWithContext(r.logger, "app data directory unavailable; using temp directory", "data_root_fallback",
				logging.String("fallback", fallback),
				logging.Error(err),
				logging.String(logging.FieldImpact, "backend data may be cleared by the OS"),
			)
			dir = fallback
		}
		base = dir
	}
	return filepath.Clean(filepath.Join(base, backendSubdir))
}

// LogDir returns the logs directory under dataRoot.
func LogDir(dataRoot string) string {
	return filepath.Join(dataRoot, LogsDirName)
}

func xdgAppDataDir(appID string) (string, error) {
	base := strings.TrimSpace(xdg.DataHome)
	if base == "" {
		return "", errors.New("user data directory not set")
	}
	return filepath.Join(base, appID), nil
}

// moduleRoot locates the checkout this package was compiled from.
func moduleRoot() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
