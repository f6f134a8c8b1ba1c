package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photoreel/internal/config"
	"photoreel/internal/testsupport"
	"photoreel/internal/thumbnail"
)

type cliTestEnv struct {
	cfg         *config.Config
	configPath  string
	baseDir     string
	notifyTopic string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("PHOTOREEL_ALBUMS_DIR", "")
	t.Chdir(base)

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithStubbedBinaries()}, opts...)...)
	t.Cleanup(thumbnail.SetRunnerForTests(testsupport.CopyingThumbnailRunner()))

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "config.toml"),
		baseDir:    base,
	}
	env.writeConfig(t)
	return env
}

func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	cfg := e.cfg
	content := fmt.Sprintf(`[paths]
albums_dir = %q
manifest_path = %q
state_dir = %q

[thumbnail]
tool = %q

[origin]
kind = %q
local_dir = %q

[serve]
bind = "127.0.0.1:0"

[gallery]
manifest_url = %q

[notifications]
ntfy_topic = %q

[logging]
level = "error"
`,
		cfg.Paths.AlbumsDir,
		cfg.Paths.ManifestPath,
		cfg.Paths.StateDir,
		cfg.Thumbnail.Tool,
		cfg.Origin.Kind,
		cfg.Origin.LocalDir,
		cfg.Gallery.ManifestURL,
		e.notifyTopic,
	)
	if err := os.WriteFile(e.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) albumDir(folder string) string {
	return filepath.Join(e.cfg.Paths.AlbumsDir, folder)
}

// writeRawAlbum creates a raw album directory holding JPEG sources with the given names.
func (e *cliTestEnv) writeRawAlbum(t *testing.T, dirName string, sources ...string) string {
	t.Helper()
	dir := e.albumDir(dirName)
	for i, name := range sources {
		testsupport.WriteImage(t, filepath.Join(dir, name), 8, 6, uint8(i+1))
	}
	return dir
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	var in io.Reader = strings.NewReader(stdin)
	cmd.SetIn(in)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--config", env.configPath}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func readDirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
