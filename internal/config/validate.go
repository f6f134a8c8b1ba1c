package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateThumbnail(); err != nil {
		return err
	}
	if err := c.validatePublish(); err != nil {
		return err
	}
	if err := c.validateOrigin(); err != nil {
		return err
	}
	if err := c.validateGallery(); err != nil {
		return err
	}
	if c.Notify.NtfyTopic != "" {
		if err := validateHTTPURL("notifications.ntfy_topic", c.Notify.NtfyTopic); err != nil {
			return err
		}
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.AlbumsDir) == "" {
		return errors.New("paths.albums_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.ManifestPath != "" && !strings.HasSuffix(c.Paths.ManifestPath, ".json") {
		return fmt.Errorf("paths.manifest_path must name a .json file, got %q", c.Paths.ManifestPath)
	}
	return nil
}

func (c *Config) validateThumbnail() error {
	switch c.Thumbnail.Tool {
	case "magick", "convert", "cwebp":
	default:
		return fmt.Errorf("thumbnail.tool must be one of magick, convert, cwebp (got %q)", c.Thumbnail.Tool)
	}
	if c.Thumbnail.ScalePercent < 1 || c.Thumbnail.ScalePercent > 100 {
		return errors.New("thumbnail.scale_percent must be between 1 and 100")
	}
	if c.Thumbnail.Quality < 1 || c.Thumbnail.Quality > 100 {
		return errors.New("thumbnail.quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validatePublish() error {
	switch c.Publish.Sort {
	case SortNatural, SortLexical:
		return nil
	default:
		return fmt.Errorf("publish.sort must be %q or %q (got %q)", SortNatural, SortLexical, c.Publish.Sort)
	}
}

func (c *Config) validateOrigin() error {
	if c.Origin.AssetMaxAge < 0 {
		return errors.New("origin.asset_max_age must be >= 0")
	}
	if c.Origin.PublicURL != "" {
		if err := validateHTTPURL("origin.public_url", c.Origin.PublicURL); err != nil {
			return err
		}
	}
	switch c.Origin.Kind {
	case OriginNone:
		return nil
	case OriginLocal:
		if strings.TrimSpace(c.Origin.LocalDir) == "" {
			return errors.New("origin.local_dir must be set when origin.kind is \"local\"")
		}
		return nil
	case OriginS3:
		if c.Origin.S3.Bucket == "" {
			return errors.New("origin.s3.bucket must be set when origin.kind is \"s3\"")
		}
		if c.Origin.S3.Region == "" && c.Origin.S3.Endpoint == "" {
			return errors.New("origin.s3.region or origin.s3.endpoint must be set (or set AWS_REGION)")
		}
		if (c.Origin.S3.AccessKeyID == "") != (c.Origin.S3.SecretAccessKey == "") {
			return errors.New("origin.s3.access_key_id and origin.s3.secret_access_key must be set together")
		}
		if c.Origin.S3.Endpoint != "" {
			if err := validateHTTPURL("origin.s3.endpoint", c.Origin.S3.Endpoint); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("origin.kind must be one of none, local, s3 (got %q)", c.Origin.Kind)
	}
}

func (c *Config) validateGallery() error {
	if c.Gallery.ManifestURL != "" {
		if err := validateHTTPURL("gallery.manifest_url", c.Gallery.ManifestURL); err != nil {
			return err
		}
	}
	if c.Gallery.AssetURL != "" {
		if err := validateHTTPURL("gallery.asset_url", c.Gallery.AssetURL); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\" (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}

func validateHTTPURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL (got %q)", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host (got %q)", key, value)
	}
	return nil
}
