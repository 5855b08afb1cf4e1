package testsupport

import (
	"path/filepath"
	"testing"
	"time"

	"plutoshell/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a development-mode config rooted in a per-test temp
// directory: the source root is <base>/src, so the backend binary is looked
// up at <base>/dist/pluto-duck-backend/pluto-duck-backend, and the data root
// is <base>/data.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Shell.Mode = config.ModeDevelopment
	cfgVal.Paths.SourceRoot = filepath.Join(base, "src")
	cfgVal.Paths.DataRoot = filepath.Join(base, "data")
	cfgVal.Logging.Format = "json"
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStubBackend writes script as the development-layout backend binary.
func WithStubBackend(script string) ConfigOption {
	return func(b *configBuilder) {
		WriteStubBackend(b.t, DevBinaryPath(b.baseDir), script)
	}
}

// WithBackendBinary points backend.binary at path.
func WithBackendBinary(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.Binary = path
	}
}

// WithStopGrace sets backend.stop_grace_seconds.
func WithStopGrace(d time.Duration) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Backend.StopGraceSeconds = int(d / time.Second)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataRoot)
}

// DevBinaryPath is where a development build looks for the backend when the
// source root is <base>/src.
func DevBinaryPath(base string) string {
	return filepath.Join(base, "dist", "pluto-duck-backend", "pluto-duck-backend")
}
