package origin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"photoreel/internal/album"
	"photoreel/internal/config"
	"photoreel/internal/fileutil"
	"photoreel/internal/logging"
	"photoreel/internal/manifest"
)

// ManifestKey is the object key of the global manifest.
const ManifestKey = "albums.json"

// NoCache is the Cache-Control value for manifests, which change in place.
const NoCache = "no-cache"

// ErrNoOrigin reports that origin.kind is "none".
var ErrNoOrigin = errors.New("no origin configured")

// SyncOptions controls one Sync run.
type SyncOptions struct {
	// Prune deletes remote keys that no longer exist locally.
	Prune bool
	// Force re-uploads every object regardless of the ledger.
	Force bool
	// DryRun reports what would change without touching the target or ledger.
	DryRun bool
}

// Report summarizes a Sync run.
type Report struct {
	Target   string
	Uploaded int
	Skipped  int
	Deleted  int
	Bytes    int64
	Duration time.Duration
}

// Syncer pushes the published album tree to a Target.
type Syncer struct {
	store       *manifest.Store
	target      Target
	ledger      *Ledger
	logger      *slog.Logger
	assetMaxAge int
}

// NewSyncer constructs a Syncer. ledger may be nil, in which case every run
// uploads everything.
func NewSyncer(store *manifest.Store, target Target, ledger *Ledger, logger *slog.Logger, assetMaxAge int) *Syncer {
	return &Syncer{
		store:       store,
		target:      target,
		ledger:      ledger,
		logger:      logging.NewComponentLogger(logger, "origin-sync"),
		assetMaxAge: assetMaxAge,
	}
}

// NewSyncerFromConfig opens the configured target and the sync ledger.
// Callers must Close the returned Syncer.
func NewSyncerFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Syncer, error) {
	target, err := NewTarget(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ledger, err := OpenLedger(ctx, cfg.SyncLedgerPath())
	if err != nil {
		return nil, err
	}
	store := manifest.NewStore(cfg.Paths.AlbumsDir, cfg.Paths.ManifestPath)
	return NewSyncer(store, target, ledger, logger, cfg.Origin.AssetMaxAge), nil
}

// NewTarget builds the Target selected by origin.kind.
func NewTarget(ctx context.Context, cfg *config.Config) (Target, error) {
	switch cfg.Origin.Kind {
	case config.OriginLocal:
		return NewLocalTarget(cfg.Origin.LocalDir)
	case config.OriginS3:
		return NewS3Target(ctx, cfg.Origin.S3)
	case config.OriginNone, "":
		return nil, fmt.Errorf("%w: set origin.kind to \"local\" or \"s3\"", ErrNoOrigin)
	default:
		return nil, fmt.Errorf("unsupported origin kind %q", cfg.Origin.Kind)
	}
}

// Target returns the destination this Syncer writes to.
func (s *Syncer) Target() Target { return s.target }

// Close releases the ledger.
func (s *Syncer) Close() error {
	return s.ledger.Close()
}

// Sync uploads every published object whose content differs from what the
// ledger recorded for the target. Assets go first, then album metadata, then
// albums.json, so a reader never sees a manifest referencing missing files.
func (s *Syncer) Sync(ctx context.Context, opts SyncOptions) (Report, error) {
	start := time.Now()
	ctx = logging.WithOperation(ctx, "sync")
	logger := logging.WithContext(ctx, s.logger).With(logging.Target(s.target.Name()))
	report := Report{Target: s.target.Name()}

	objects, err := s.collect()
	if err != nil {
		return report, err
	}

	local := make(map[string]struct{}, len(objects))
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		local[obj.Key] = struct{}{}

		unchanged, err := s.unchanged(ctx, obj, opts.Force)
		if err != nil {
			return report, err
		}
		if unchanged {
			report.Skipped++
			continue
		}
		if opts.DryRun {
			logger.Info("would upload", logging.Key(obj.Key))
			report.Uploaded++
			continue
		}
		if err := s.target.Put(ctx, obj); err != nil {
			return report, err
		}
		if s.ledger != nil {
			if err := s.ledger.Record(ctx, s.target.Name(), obj.Key, Entry{SHA256: obj.SHA256, Size: obj.Size}); err != nil {
				return report, err
			}
		}
		report.Uploaded++
		report.Bytes += obj.Size
		logger.Debug("object uploaded", logging.Key(obj.Key), logging.Int64("bytes", obj.Size))
	}

	if opts.Prune {
		deleted, err := s.prune(ctx, logger, local, opts.DryRun)
		report.Deleted = deleted
		if err != nil {
			return report, err
		}
	}

	report.Duration = time.Since(start)
	logger.Info("sync complete",
		logging.String(logging.FieldEventType, "sync_complete"),
		logging.Int("uploaded", report.Uploaded),
		logging.Int("skipped", report.Skipped),
		logging.Int("deleted", report.Deleted),
		logging.Int64("bytes", report.Bytes),
		logging.Bool("dry_run", opts.DryRun),
		logging.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Syncer) unchanged(ctx context.Context, obj Object, force bool) (bool, error) {
	if force || s.ledger == nil {
		return false, nil
	}
	entry, ok, err := s.ledger.Lookup(ctx, s.target.Name(), obj.Key)
	if err != nil || !ok {
		return false, err
	}
	return entry.SHA256 == obj.SHA256 && entry.Size == obj.Size, nil
}

// prune deletes remote keys that are no longer published locally. Only keys
// photoreel owns are candidates: gallery-shaped keys that the ledger recorded
// for this target, or any gallery-shaped key when there is no ledger. Other
// files sharing the target, such as a site's own pages, are left alone.
func (s *Syncer) prune(ctx context.Context, logger *slog.Logger, local map[string]struct{}, dryRun bool) (int, error) {
	remote, err := s.target.List(ctx, "")
	if err != nil {
		return 0, err
	}
	sort.Strings(remote)
	deleted := 0
	for _, key := range remote {
		if _, ok := local[key]; ok {
			continue
		}
		owned, err := s.owned(ctx, key)
		if err != nil {
			return deleted, err
		}
		if !owned {
			logger.Debug("keeping foreign object", logging.Key(key))
			continue
		}
		if dryRun {
			logger.Info("would delete", logging.Key(key))
			deleted++
			continue
		}
		if err := s.target.Delete(ctx, key); err != nil {
			return deleted, err
		}
		if s.ledger != nil {
			if err := s.ledger.Forget(ctx, s.target.Name(), key); err != nil {
				return deleted, err
			}
		}
		deleted++
		logger.Debug("object deleted", logging.Key(key))
	}
	return deleted, nil
}

func (s *Syncer) owned(ctx context.Context, key string) (bool, error) {
	if !GalleryKey(key) {
		return false, nil
	}
	if s.ledger == nil {
		return true, nil
	}
	_, ok, err := s.ledger.Lookup(ctx, s.target.Name(), key)
	return ok, err
}

// GalleryKey reports whether key has the shape of a published object:
// albums.json, {folder}/data.json, or {folder}/{low|full}/{file}.
func GalleryKey(key string) bool {
	if !ValidKey(key) {
		return false
	}
	parts := strings.Split(key, "/")
	switch len(parts) {
	case 1:
		return parts[0] == ManifestKey
	case 2:
		return parts[1] == album.MetadataFile
	case 3:
		switch parts[1] {
		case album.LowDir:
			return strings.EqualFold(path.Ext(parts[2]), ".webp")
		case album.FullDir:
			return album.IsSourceImage(parts[2])
		}
	}
	return false
}

// collect lists the local objects of every album in the global manifest,
// ordered assets first and albums.json last.
func (s *Syncer) collect() ([]Object, error) {
	folders, err := s.store.LoadGlobalManifest()
	if err != nil {
		if errors.Is(err, album.ErrNotFound) {
			return nil, fmt.Errorf("%w (run 'photoreel manifest regenerate')", err)
		}
		return nil, err
	}

	var assets, metadata []Object
	for _, folder := range folders {
		dir := s.store.AlbumDir(folder)
		for _, variant := range []string{album.LowDir, album.FullDir} {
			entries, err := os.ReadDir(filepath.Join(dir, variant))
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, fmt.Errorf("read %s/%s: %w", folder, variant, err)
			}
			for _, entry := range entries {
				if !entry.Type().IsRegular() || entry.Name()[0] == '.' {
					continue
				}
				obj, err := s.object(path.Join(folder, variant, entry.Name()), filepath.Join(dir, variant, entry.Name()), s.assetCacheControl())
				if err != nil {
					return nil, err
				}
				assets = append(assets, obj)
			}
		}
		obj, err := s.object(path.Join(folder, album.MetadataFile), filepath.Join(dir, album.MetadataFile), NoCache)
		if err != nil {
			return nil, err
		}
		metadata = append(metadata, obj)
	}
	root, err := s.object(ManifestKey, s.store.ManifestPath(), NoCache)
	if err != nil {
		return nil, err
	}

	objects := make([]Object, 0, len(assets)+len(metadata)+1)
	objects = append(objects, assets...)
	objects = append(objects, metadata...)
	return append(objects, root), nil
}

func (s *Syncer) object(key, filePath, cacheControl string) (Object, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return Object{}, fmt.Errorf("stat %s: %w", key, err)
	}
	sum, err := fileutil.HashFile(filePath)
	if err != nil {
		return Object{}, err
	}
	return Object{
		Key:          key,
		Path:         filePath,
		Size:         info.Size(),
		SHA256:       sum,
		ContentType:  ContentType(key),
		CacheControl: cacheControl,
	}, nil
}

func (s *Syncer) assetCacheControl() string {
	return AssetCacheControl(s.assetMaxAge)
}

// AssetCacheControl is the Cache-Control value for immutable image assets.
func AssetCacheControl(maxAge int) string {
	if maxAge <= 0 {
		return NoCache
	}
	return "public, max-age=" + strconv.Itoa(maxAge)
}

// ContentType maps a key to its MIME type by extension.
func ContentType(key string) string {
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
