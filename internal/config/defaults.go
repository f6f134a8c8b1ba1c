package config

const (
	defaultConfigPath        = "~/.config/photoreel/config.toml"
	defaultAlbumsDir         = "~/photoreel/albums"
	defaultStateDir          = "~/.local/share/photoreel"
	defaultManifestName      = "albums.json"
	defaultThumbnailTool     = "magick"
	defaultScalePercent      = 50
	defaultQuality           = 85
	defaultThumbnailTimeout  = 120
	defaultSortOrder         = SortLexical
	defaultOriginKind        = OriginNone
	defaultAssetMaxAge       = 31536000
	defaultOriginTimeout     = 60
	defaultServeBind         = "127.0.0.1:8787"
	defaultGalleryConcurrent = 8
	defaultGalleryTimeout    = 15
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Origin kinds.
const (
	OriginNone  = "none"
	OriginLocal = "local"
	OriginS3    = "s3"
)

// Source discovery orders.
const (
	SortNatural = "natural"
	SortLexical = "lexical"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			AlbumsDir: defaultAlbumsDir,
			StateDir:  defaultStateDir,
		},
		Thumbnail: Thumbnail{
			Tool:           defaultThumbnailTool,
			ScalePercent:   defaultScalePercent,
			Quality:        defaultQuality,
			Verify:         true,
			TimeoutSeconds: defaultThumbnailTimeout,
		},
		Publish: Publish{
			Sort: defaultSortOrder,
		},
		Origin: Origin{
			Kind:           defaultOriginKind,
			AssetMaxAge:    defaultAssetMaxAge,
			TimeoutSeconds: defaultOriginTimeout,
		},
		Serve: Serve{
			Bind:           defaultServeBind,
			AllowedOrigins: []string{"*"},
		},
		Gallery: Gallery{
			Concurrency:    defaultGalleryConcurrent,
			TimeoutSeconds: defaultGalleryTimeout,
		},
		Notify: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
