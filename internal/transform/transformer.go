package transform

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"photoreel/internal/album"
	"photoreel/internal/config"
	"photoreel/internal/logging"
	"photoreel/internal/manifest"
	"photoreel/internal/thumbnail"
)

// Options tunes a Transformer. Zero values select production behaviour.
type Options struct {
	// Sort is config.SortLexical (default) or config.SortNatural.
	Sort string
	// LockPath enables the advisory single-run lock when non-empty.
	LockPath string
	// Now stamps CreatedAt.
	Now func() time.Time
	// Pick returns an index in [0, n) used to choose the cover photo.
	Pick func(n int) int
}

// Transformer implements the raw/published album state machine.
type Transformer struct {
	store    *manifest.Store
	thumbs   thumbnail.Generator
	logger   *slog.Logger
	sort     string
	lockPath string
	now      func() time.Time
	pick     func(int) int
}

// New constructs a Transformer.
func New(store *manifest.Store, thumbs thumbnail.Generator, logger *slog.Logger, opts Options) *Transformer {
	t := &Transformer{
		store:    store,
		thumbs:   thumbs,
		logger:   logging.NewComponentLogger(logger, "transform"),
		sort:     opts.Sort,
		lockPath: opts.LockPath,
		now:      opts.Now,
		pick:     opts.Pick,
	}
	if t.sort == "" {
		t.sort = config.SortLexical
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.pick == nil {
		t.pick = rand.IntN
	}
	return t
}

// NewFromConfig wires a Transformer with the configured store, thumbnail tool,
// sort order, and lock file.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Transformer {
	store := manifest.NewStore(cfg.Paths.AlbumsDir, cfg.Paths.ManifestPath)
	thumbs := thumbnail.NewCLI(thumbnail.Options{
		Tool:         cfg.Thumbnail.Tool,
		ScalePercent: cfg.Thumbnail.ScalePercent,
		Quality:      cfg.Thumbnail.Quality,
		Verify:       cfg.Thumbnail.Verify,
		Timeout:      cfg.ThumbnailTimeout(),
	}, logger)
	return New(store, thumbs, logger, Options{Sort: cfg.Publish.Sort, LockPath: cfg.LockPath()})
}

// Store exposes the manifest store the transformer writes through.
func (t *Transformer) Store() *manifest.Store {
	return t.store
}

// RegenerateGlobalManifest rescans the albums directory and rewrites albums.json
// with every directory holding a metadata file. It is idempotent.
func (t *Transformer) RegenerateGlobalManifest(ctx context.Context) ([]string, error) {
	unlock, err := t.acquire()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return t.regenerate(logging.WithOperation(ctx, "regenerate"))
}

func (t *Transformer) regenerate(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := logging.WithContext(ctx, t.logger)

	dirs, err := t.albumDirs()
	if err != nil {
		return nil, err
	}
	published := make([]string, 0, len(dirs))
	for _, folder := range dirs {
		dir := t.store.AlbumDir(folder)
		ok, err := manifest.HasMetadata(dir)
		if err != nil {
			return nil, fmt.Errorf("inspect %s: %w", folder, err)
		}
		if !ok {
			continue
		}
		if _, err := manifest.LoadAlbumMetadataAt(dir); err != nil {
			logging.WarnWithContext(logger, "published album has unreadable metadata", "album_metadata_invalid",
				logging.Album(folder),
				logging.Error(err),
				logging.String(logging.FieldImpact, "gallery will skip this album"),
				logging.String(logging.FieldErrorHint, album.Hint(err)),
			)
		}
		published = append(published, folder)
	}

	if err := t.store.WriteGlobalManifest(published); err != nil {
		return nil, err
	}
	logger.Info("global manifest regenerated",
		logging.Int("albums", len(published)),
		logging.String("path", t.store.ManifestPath()),
	)
	return published, nil
}

// albumDirs lists candidate album directory names, skipping hidden entries and files.
func (t *Transformer) albumDirs() ([]string, error) {
	entries, err := os.ReadDir(t.store.AlbumsDir())
	if err != nil {
		return nil, album.Wrap(album.ErrNotFound, "", "scan albums", t.store.AlbumsDir(), err)
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if isHidden(name) || !entry.IsDir() {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

func (t *Transformer) acquire() (func(), error) {
	if t.lockPath == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(t.lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(t.lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, album.Wrap(album.ErrLocked, "", "lock", "another photoreel run holds "+t.lockPath, nil)
	}
	return func() { _ = lock.Unlock() }, nil
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
