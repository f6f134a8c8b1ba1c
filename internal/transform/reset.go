package transform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"photoreel/internal/album"
	"photoreel/internal/fileutil"
	"photoreel/internal/logging"
	"photoreel/internal/manifest"
)

// Reset returns the published album folder to the raw state: archival copies
// move back to the album root under their generated names, low/, full/ and
// data.json are removed, and the global manifest is rewritten.
func (t *Transformer) Reset(ctx context.Context, folder string) error {
	unlock, err := t.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	ctx = logging.WithAlbum(logging.WithOperation(ctx, "reset"), folder)
	logger := logging.WithContext(ctx, t.logger)

	dir := t.store.AlbumDir(folder)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return album.Wrap(album.ErrNotFound, folder, "reset", "album directory does not exist", err)
	}
	published, err := manifest.HasMetadata(dir)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", folder, err)
	}
	if !published {
		return album.Wrap(album.ErrNotPublished, folder, "reset", "no "+album.MetadataFile, nil)
	}

	fullDir := filepath.Join(dir, album.FullDir)
	names, err := archivalFiles(fullDir)
	if err != nil {
		return album.Wrap(album.ErrMissingFullAssets, folder, "reset", "full/ is unreadable", err)
	}
	if len(names) == 0 {
		return album.Wrap(album.ErrMissingFullAssets, folder, "reset", "full/ holds no files", nil)
	}

	meta, err := manifest.LoadAlbumMetadataAt(dir)
	switch {
	case err == nil:
		for _, photo := range meta.Photos {
			if !containsName(names, photo.FullName()) {
				return album.Wrap(album.ErrMissingFullAssets, folder, "reset", "full/"+photo.FullName()+" is missing", nil)
			}
		}
	case errors.Is(err, album.ErrSchema):
		logging.WarnWithContext(logger, "resetting album with unreadable metadata", "album_metadata_invalid",
			logging.Error(err),
			logging.String(logging.FieldImpact, "every file in full/ is restored"),
		)
	default:
		return err
	}

	for _, name := range names {
		ok, err := fileutil.Exists(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if ok {
			return album.Wrap(album.ErrConflict, folder, "reset", name+" already exists in the album root", nil)
		}
	}

	start := time.Now()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fileutil.MoveFile(filepath.Join(fullDir, name), filepath.Join(dir, name)); err != nil {
			return album.Wrap(nil, folder, "reset", "restore "+name, err)
		}
	}

	if err := os.RemoveAll(filepath.Join(dir, album.LowDir)); err != nil {
		return fmt.Errorf("remove low/: %w", err)
	}
	if err := os.RemoveAll(fullDir); err != nil {
		return fmt.Errorf("remove full/: %w", err)
	}
	if err := os.Remove(filepath.Join(dir, album.MetadataFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", album.MetadataFile, err)
	}

	if _, err := t.regenerate(ctx); err != nil {
		return err
	}
	logger.Info("album reset",
		logging.String(logging.FieldEventType, "album_reset"),
		logging.Int("restored", len(names)),
		logging.Duration("duration", time.Since(start)),
	)
	return nil
}

func archivalFiles(fullDir string) ([]string, error) {
	entries, err := os.ReadDir(fullDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
