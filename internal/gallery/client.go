package gallery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"photoreel/internal/album"
	"photoreel/internal/config"
	"photoreel/internal/logging"
)

const defaultConcurrency = 8

// Summary is one entry of the album listing.
type Summary struct {
	FolderName   string
	Name         string
	Photographer string
	CreatedAt    time.Time
	PhotoCount   int
	CoverURL     string
}

// PhotoView is a photo with its derived URLs.
type PhotoView struct {
	album.Photo
	ThumbnailURL string
	DownloadURL  string
}

// View is the album detail page.
type View struct {
	Album  album.Album
	Photos []PhotoView
}

// Options tunes a Client.
type Options struct {
	// AssetBase prefixes thumbnail and download URLs.
	AssetBase string
	// Concurrency bounds simultaneous album fetches while listing.
	Concurrency int
}

// Client renders the gallery views from a Fetcher.
type Client struct {
	fetcher     Fetcher
	assetBase   string
	concurrency int
	logger      *slog.Logger
}

// New constructs a Client.
func New(fetcher Fetcher, logger *slog.Logger, opts Options) *Client {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Client{
		fetcher:     fetcher,
		assetBase:   strings.TrimRight(opts.AssetBase, "/"),
		concurrency: concurrency,
		logger:      logging.NewComponentLogger(logger, "gallery"),
	}
}

// NewFromConfig builds an HTTP-backed Client from the gallery section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	base := strings.TrimSpace(cfg.Gallery.ManifestURL)
	if base == "" {
		return nil, errors.New("gallery.manifest_url is not set (or set origin.public_url)")
	}
	httpClient := &http.Client{Timeout: cfg.GalleryTimeout()}
	return New(NewHTTPFetcher(base, httpClient), logger, Options{
		AssetBase:   cfg.Gallery.AssetURL,
		Concurrency: cfg.Gallery.Concurrency,
	}), nil
}

// ListAlbums returns every album that loads cleanly, newest first. A missing
// global manifest means no albums. Albums whose metadata fails to load are
// logged and omitted.
func (c *Client) ListAlbums(ctx context.Context) ([]Summary, error) {
	logger := logging.WithContext(logging.WithOperation(ctx, "list_albums"), c.logger)

	folders, err := c.fetcher.FetchGlobalManifest(ctx)
	if err != nil {
		if errors.Is(err, album.ErrNotFound) {
			logger.Info("no global manifest published yet")
			return []Summary{}, nil
		}
		return nil, err
	}

	results := make([]*Summary, len(folders))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, folder := range folders {
		g.Go(func() error {
			a, err := c.fetcher.FetchAlbum(ctx, folder)
			if err == nil && len(a.Photos) == 0 {
				err = album.Wrap(album.ErrSchema, folder, "list", "album has no photos", nil)
			}
			if err != nil {
				logging.WarnWithContext(logger, "album skipped from listing", "album_fetch_failed",
					logging.Album(folder),
					logging.Error(err),
					logging.String(logging.FieldImpact, "album hidden from the gallery listing"),
					logging.String(logging.FieldErrorHint, album.Hint(err)),
				)
				return nil
			}
			summary := c.summarize(a)
			results[i] = &summary
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Summary, 0, len(results))
	for _, s := range results {
		if s != nil {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].FolderName < out[j].FolderName
	})
	logger.Debug("albums listed", logging.Int("listed", len(out)), logging.Int("manifest", len(folders)))
	return out, nil
}

// LoadAlbum returns the detail view for folder. Any fetch or schema failure,
// or an album without photos, is an error.
func (c *Client) LoadAlbum(ctx context.Context, folder string) (View, error) {
	a, err := c.fetcher.FetchAlbum(ctx, folder)
	if err != nil {
		return View{}, fmt.Errorf("load album %s: %w", folder, err)
	}
	if len(a.Photos) == 0 {
		return View{}, album.Wrap(album.ErrSchema, folder, "load album", "album has no photos", nil)
	}
	view := View{Album: a, Photos: make([]PhotoView, 0, len(a.Photos))}
	for _, p := range a.Photos {
		view.Photos = append(view.Photos, PhotoView{
			Photo:        p,
			ThumbnailURL: ThumbnailURL(c.assetBase, folder, p),
			DownloadURL:  DownloadURL(c.assetBase, folder, p),
		})
	}
	return view, nil
}

func (c *Client) summarize(a album.Album) Summary {
	s := Summary{
		FolderName:   a.FolderName,
		Name:         a.Name,
		Photographer: a.Photographer,
		CreatedAt:    a.CreatedAt,
		PhotoCount:   len(a.Photos),
	}
	if cover, ok := a.Cover(); ok {
		s.CoverURL = ThumbnailURL(c.assetBase, a.FolderName, cover)
	}
	return s
}

// ThumbnailURL is {base}/{folder}/low/{webName}.
func ThumbnailURL(base, folder string, p album.Photo) string {
	return joinURL(base, folder, album.LowDir, p.WebName)
}

// DownloadURL is {base}/{folder}/full/{baseName}.{originalExtension}. Legacy
// records carry the web name as their full name, so both URLs share a filename.
func DownloadURL(base, folder string, p album.Photo) string {
	return joinURL(base, folder, album.FullDir, p.FullName())
}

func joinURL(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, segment := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	return b.String()
}
