package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the album tree and local state locations.
type Paths struct {
	AlbumsDir    string `toml:"albums_dir"`
	ManifestPath string `toml:"manifest_path"`
	StateDir     string `toml:"state_dir"`
}

// Thumbnail configures the external image scaling tool.
type Thumbnail struct {
	Tool           string `toml:"tool"`
	ScalePercent   int    `toml:"scale_percent"`
	Quality        int    `toml:"quality"`
	Verify         bool   `toml:"verify"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Publish contains defaults applied while publishing raw albums.
type Publish struct {
	DefaultPhotographer string `toml:"default_photographer"`
	Sort                string `toml:"sort"`
}

// S3 holds credentials and addressing for an S3-compatible origin bucket.
type S3 struct {
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	Prefix          string `toml:"prefix"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	UsePathStyle    bool   `toml:"use_path_style"`
}

// Origin selects where published assets are pushed by `photoreel sync`.
type Origin struct {
	Kind           string `toml:"kind"`
	PublicURL      string `toml:"public_url"`
	LocalDir       string `toml:"local_dir"`
	AssetMaxAge    int    `toml:"asset_max_age"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	S3             S3     `toml:"s3"`
}

// Serve configures the built-in origin HTTP server.
type Serve struct {
	Bind           string   `toml:"bind"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Gallery configures the HTTP manifest client.
type Gallery struct {
	ManifestURL    string `toml:"manifest_url"`
	AssetURL       string `toml:"asset_url"`
	Concurrency    int    `toml:"concurrency"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications configures ntfy alerts for publish and sync runs.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for photoreel.
//
// Configuration sections by subsystem:
//   - Paths: album tree, global manifest, local state
//   - Thumbnail: external scaling tool and its parameters
//   - Publish: defaults for the publish prompts
//   - Origin: sync target (local directory or S3 bucket)
//   - Serve: built-in origin server
//   - Gallery: manifest client used by `photoreel albums`
//   - Notifications: ntfy alerts
//   - Logging: log format and level
type Config struct {
	Paths     Paths         `toml:"paths"`
	Thumbnail Thumbnail     `toml:"thumbnail"`
	Publish   Publish       `toml:"publish"`
	Origin    Origin        `toml:"origin"`
	Serve     Serve         `toml:"serve"`
	Gallery   Gallery       `toml:"gallery"`
	Notify    Notifications `toml:"notifications"`
	Logging   Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("photoreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories photoreel writes into.
// The local origin directory is only created when it is the active target.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.AlbumsDir, c.Paths.StateDir, c.LogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Origin.Kind == OriginLocal && strings.TrimSpace(c.Origin.LocalDir) != "" {
		if err := os.MkdirAll(c.Origin.LocalDir, 0o755); err != nil {
			return fmt.Errorf("create origin directory %q: %w", c.Origin.LocalDir, err)
		}
	}
	return nil
}

// LogDir returns the directory holding photoreel log files.
func (c *Config) LogDir() string {
	return filepath.Join(c.Paths.StateDir, "logs")
}

// LockPath returns the advisory lock file guarding album transformations.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.AlbumsDir, ".photoreel.lock")
}

// SyncLedgerPath returns the SQLite database that records synced objects.
func (c *Config) SyncLedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "sync.db")
}

// ThumbnailBinary returns the executable used to produce low-resolution assets.
func (c *Config) ThumbnailBinary() string {
	return c.Thumbnail.Tool
}

// ThumbnailTimeout bounds a single thumbnail invocation.
func (c *Config) ThumbnailTimeout() time.Duration {
	return time.Duration(c.Thumbnail.TimeoutSeconds) * time.Second
}

// GalleryTimeout bounds a single manifest fetch.
func (c *Config) GalleryTimeout() time.Duration {
	return time.Duration(c.Gallery.TimeoutSeconds) * time.Second
}

// NotifyTimeout bounds a single ntfy request.
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Notify.RequestTimeout) * time.Second
}

// OriginTimeout bounds a single origin upload or delete.
func (c *Config) OriginTimeout() time.Duration {
	return time.Duration(c.Origin.TimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the commented sample configuration to path. A non-empty
// albumsDir replaces the sample's paths.albums_dir value.
func CreateSample(path, albumsDir string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	content := sampleConfig
	if albumsDir = strings.TrimSpace(albumsDir); albumsDir != "" {
		content = strings.Replace(content, sampleAlbumsDirLine, fmt.Sprintf("albums_dir = %q", albumsDir), 1)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

const sampleAlbumsDirLine = `albums_dir = "~/photoreel/albums"`
