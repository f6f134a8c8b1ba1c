package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"photoreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.AlbumsDir = filepath.Join(base, "albums")
	cfgVal.Paths.ManifestPath = filepath.Join(base, "albums", "albums.json")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Serve.Bind = "127.0.0.1:0"
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return builder.cfg
}

// WithLocalOrigin points the origin at a temp directory.
func WithLocalOrigin() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Origin.Kind = config.OriginLocal
		b.cfg.Origin.LocalDir = filepath.Join(b.baseDir, "origin")
	}
}

// WithThumbnailTool selects the thumbnail tool name.
func WithThumbnailTool(tool string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Thumbnail.Tool = tool
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. Each stub copies its first argument to its last,
// which is enough to stand in for `magick src ... dst`. If names is empty,
// the configured thumbnail tool is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.ThumbnailBinary()}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nfor last; do :; done\ncp \"$1\" \"$last\"\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WithEmptyPath hides every external binary from exec.LookPath.
func WithEmptyPath() ConfigOption {
	return func(b *configBuilder) {
		emptyDir := filepath.Join(b.baseDir, "empty-bin")
		if err := os.MkdirAll(emptyDir, 0o755); err != nil {
			b.t.Fatalf("mkdir empty bin dir: %v", err)
		}
		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", emptyDir); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
