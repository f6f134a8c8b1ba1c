package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeThumbnail()
	c.normalizePublish()
	if err := c.normalizeOrigin(); err != nil {
		return err
	}
	c.normalizeServe()
	c.normalizeGallery()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("PHOTOREEL_ALBUMS_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.AlbumsDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.AlbumsDir) == "" {
		c.Paths.AlbumsDir = defaultAlbumsDir
	}
	if c.Paths.AlbumsDir, err = expandPath(c.Paths.AlbumsDir); err != nil {
		return fmt.Errorf("paths.albums_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ManifestPath) == "" {
		c.Paths.ManifestPath = filepath.Join(c.Paths.AlbumsDir, defaultManifestName)
	}
	if c.Paths.ManifestPath, err = expandPath(c.Paths.ManifestPath); err != nil {
		return fmt.Errorf("paths.manifest_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeThumbnail() {
	c.Thumbnail.Tool = strings.TrimSpace(c.Thumbnail.Tool)
	if c.Thumbnail.Tool == "" {
		c.Thumbnail.Tool = defaultThumbnailTool
	}
	if c.Thumbnail.ScalePercent == 0 {
		c.Thumbnail.ScalePercent = defaultScalePercent
	}
	if c.Thumbnail.Quality == 0 {
		c.Thumbnail.Quality = defaultQuality
	}
	if c.Thumbnail.TimeoutSeconds <= 0 {
		c.Thumbnail.TimeoutSeconds = defaultThumbnailTimeout
	}
}

func (c *Config) normalizePublish() {
	c.Publish.DefaultPhotographer = strings.TrimSpace(c.Publish.DefaultPhotographer)
	c.Publish.Sort = strings.ToLower(strings.TrimSpace(c.Publish.Sort))
	if c.Publish.Sort == "" {
		c.Publish.Sort = defaultSortOrder
	}
}

func (c *Config) normalizeOrigin() error {
	c.Origin.Kind = strings.ToLower(strings.TrimSpace(c.Origin.Kind))
	if c.Origin.Kind == "" {
		c.Origin.Kind = defaultOriginKind
	}
	c.Origin.PublicURL = strings.TrimRight(strings.TrimSpace(c.Origin.PublicURL), "/")
	if strings.TrimSpace(c.Origin.LocalDir) != "" {
		var err error
		if c.Origin.LocalDir, err = expandPath(c.Origin.LocalDir); err != nil {
			return fmt.Errorf("origin.local_dir: %w", err)
		}
	}
	if c.Origin.TimeoutSeconds <= 0 {
		c.Origin.TimeoutSeconds = defaultOriginTimeout
	}

	s3 := &c.Origin.S3
	s3.Bucket = strings.TrimSpace(s3.Bucket)
	s3.Endpoint = strings.TrimRight(strings.TrimSpace(s3.Endpoint), "/")
	s3.Prefix = strings.Trim(strings.TrimSpace(s3.Prefix), "/")
	s3.Region = strings.TrimSpace(s3.Region)
	if s3.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok {
			s3.Region = strings.TrimSpace(value)
		}
	}
	s3.AccessKeyID = strings.TrimSpace(s3.AccessKeyID)
	if s3.AccessKeyID == "" {
		if value, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok {
			s3.AccessKeyID = strings.TrimSpace(value)
		}
	}
	s3.SecretAccessKey = strings.TrimSpace(s3.SecretAccessKey)
	if s3.SecretAccessKey == "" {
		if value, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok {
			s3.SecretAccessKey = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeServe() {
	c.Serve.Bind = strings.TrimSpace(c.Serve.Bind)
	if c.Serve.Bind == "" {
		c.Serve.Bind = defaultServeBind
	}
	origins := make([]string, 0, len(c.Serve.AllowedOrigins))
	for _, origin := range c.Serve.AllowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	c.Serve.AllowedOrigins = origins
}

func (c *Config) normalizeGallery() {
	c.Gallery.ManifestURL = strings.TrimRight(strings.TrimSpace(c.Gallery.ManifestURL), "/")
	if c.Gallery.ManifestURL == "" {
		c.Gallery.ManifestURL = c.Origin.PublicURL
	}
	c.Gallery.AssetURL = strings.TrimRight(strings.TrimSpace(c.Gallery.AssetURL), "/")
	if c.Gallery.AssetURL == "" {
		c.Gallery.AssetURL = c.Gallery.ManifestURL
	}
	if c.Gallery.Concurrency <= 0 {
		c.Gallery.Concurrency = defaultGalleryConcurrent
	}
	if c.Gallery.TimeoutSeconds <= 0 {
		c.Gallery.TimeoutSeconds = defaultGalleryTimeout
	}
}

func (c *Config) normalizeNotifications() {
	c.Notify.NtfyTopic = strings.TrimSpace(c.Notify.NtfyTopic)
	if c.Notify.RequestTimeout <= 0 {
		c.Notify.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
