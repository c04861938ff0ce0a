package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mediaprobe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.FFmpeg.Binary = "ffmpeg"
	cfgVal.FFmpeg.ProbeTimeout = 5
	cfgVal.Cache.Dir = filepath.Join(base, "cache")
	cfgVal.Cache.RawEntries = 8
	cfgVal.Cache.ResultEntries = 8

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

// WithPersistentCache enables the SQLite tier with the given entry limit.
func WithPersistentCache(maxEntries int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Persistent = true
		b.cfg.Cache.MaxEntries = maxEntries
	}
}

// WithLogDir routes the JSON log copy into the temp tree.
func WithLogDir() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.Dir = filepath.Join(b.baseDir, "logs")
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		for _, name := range names {
			b.writeStub(name, "#!/bin/sh\nexit 0\n")
		}
	}
}

// WithStubFFmpeg installs an ffmpeg stub that prints report on stderr and
// exits 1, the way a real `ffmpeg -i` without an output file does.
func WithStubFFmpeg(report string) ConfigOption {
	return func(b *configBuilder) {
		script := "#!/bin/sh\ncat >&2 <<'MEDIAPROBE_REPORT'\n" + report + "\nMEDIAPROBE_REPORT\nexit 1\n"
		b.cfg.FFmpeg.Binary = b.writeStub("ffmpeg", script)
	}
}

func (b *configBuilder) writeStub(name, script string) string {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		b.t.Fatalf("set PATH: %v", err)
	}
	b.t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Cache.Dir)
}
