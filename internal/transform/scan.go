package transform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"photoreel/internal/album"
	"photoreel/internal/fileutil"
	"photoreel/internal/manifest"
)

// Scan classifies every album directory under the albums root.
func (t *Transformer) Scan(ctx context.Context) ([]album.Status, error) {
	dirs, err := t.albumDirs()
	if err != nil {
		return nil, err
	}
	out := make([]album.Status, 0, len(dirs))
	for _, folder := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		status, err := t.inspect(folder)
		if err != nil {
			return nil, err
		}
		out = append(out, status)
	}
	return out, nil
}

// Pending lists albums that Publish would act on: raw albums and directories
// left behind by an interrupted publish.
func (t *Transformer) Pending(ctx context.Context) ([]album.Status, error) {
	statuses, err := t.Scan(ctx)
	if err != nil {
		return nil, err
	}
	pending := statuses[:0]
	for _, status := range statuses {
		if status.State == album.StateRaw || status.Resumable {
			pending = append(pending, status)
		}
	}
	return pending, nil
}

// Status classifies a single album directory.
func (t *Transformer) Status(folder string) (album.Status, error) {
	if info, err := os.Stat(t.store.AlbumDir(folder)); err != nil || !info.IsDir() {
		return album.Status{}, album.Wrap(album.ErrNotFound, folder, "status", "album directory does not exist", err)
	}
	return t.inspect(folder)
}

func (t *Transformer) inspect(folder string) (album.Status, error) {
	dir := t.store.AlbumDir(folder)
	status := album.Status{FolderName: folder}

	sources, err := t.listSources(dir)
	if err != nil {
		return status, err
	}
	status.Sources = len(sources)

	hasMeta, err := manifest.HasMetadata(dir)
	if err != nil {
		return status, fmt.Errorf("inspect %s: %w", folder, err)
	}
	hasLow, err := fileutil.Exists(filepath.Join(dir, album.LowDir))
	if err != nil {
		return status, err
	}
	hasFull, err := fileutil.Exists(filepath.Join(dir, album.FullDir))
	if err != nil {
		return status, err
	}

	switch {
	case hasMeta && hasLow && hasFull:
		meta, err := manifest.LoadAlbumMetadataAt(dir)
		if err != nil {
			status.State = album.StateCorrupt
			status.Detail = err.Error()
			return status, nil
		}
		status.State = album.StatePublished
		status.Photos = len(meta.Photos)
		if missing := missingAssets(dir, meta); missing != "" {
			status.State = album.StateCorrupt
			status.Detail = missing + " is missing"
		}
	case hasMeta:
		status.State = album.StateCorrupt
		status.Detail = "metadata present but low/ or full/ is missing"
	case hasLow || hasFull:
		status.State = album.StateCorrupt
		status.Resumable = true
		status.Detail = "interrupted publish; publish again to resume"
	case status.Sources > 0:
		status.State = album.StateRaw
	default:
		status.State = album.StateEmpty
	}
	return status, nil
}

// missingAssets returns the first derived file referenced by meta that does
// not exist, or "".
func missingAssets(dir string, meta album.Album) string {
	for _, photo := range meta.Photos {
		for _, rel := range []string{
			filepath.Join(album.LowDir, photo.WebName),
			filepath.Join(album.FullDir, photo.FullName()),
		} {
			if ok, err := fileutil.Exists(filepath.Join(dir, rel)); err != nil || !ok {
				return rel
			}
		}
	}
	return ""
}
