package transform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/facette/natsort"

	"photoreel/internal/album"
	"photoreel/internal/config"
	"photoreel/internal/fileutil"
	"photoreel/internal/logging"
	"photoreel/internal/manifest"
	"photoreel/internal/textutil"
)

// Publish turns the raw album at albumDir into a published album named
// displayName, renames the directory to the derived folder name, and rewrites
// the global manifest. Re-running Publish on a directory left behind by an
// interrupted run continues numbering where the previous run stopped.
func (t *Transformer) Publish(ctx context.Context, albumDir, displayName, photographer string) (album.Album, error) {
	unlock, err := t.acquire()
	if err != nil {
		return album.Album{}, err
	}
	defer unlock()

	albumDir = filepath.Clean(albumDir)
	displayName = strings.TrimSpace(displayName)
	photographer = strings.TrimSpace(photographer)
	folder := textutil.FolderName(displayName)

	ctx = logging.WithAlbum(logging.WithOperation(ctx, "publish"), folder)
	logger := logging.WithContext(ctx, t.logger)

	if folder == "" {
		return album.Album{}, album.Wrap(album.ErrInvalidName, "", "publish",
			fmt.Sprintf("display name %q has no letters or digits", displayName), nil)
	}

	info, err := os.Stat(albumDir)
	if err != nil {
		return album.Album{}, album.Wrap(album.ErrNotFound, "", "publish", albumDir, err)
	}
	if !info.IsDir() {
		return album.Album{}, album.Wrap(album.ErrNotFound, "", "publish", albumDir+" is not a directory", nil)
	}
	published, err := manifest.HasMetadata(albumDir)
	if err != nil {
		return album.Album{}, fmt.Errorf("inspect %s: %w", albumDir, err)
	}
	if published {
		return album.Album{}, album.Wrap(album.ErrAlreadyPublished, filepath.Base(albumDir), "publish",
			"reset the album before publishing it again", nil)
	}

	targetDir := filepath.Join(filepath.Dir(albumDir), folder)
	if err := checkTarget(albumDir, info, targetDir); err != nil {
		return album.Album{}, album.Wrap(album.ErrConflict, folder, "publish", err.Error(), nil)
	}

	sources, err := t.listSources(albumDir)
	if err != nil {
		return album.Album{}, err
	}
	existing, err := scanPublishedAssets(albumDir, folder)
	if err != nil {
		return album.Album{}, album.Wrap(album.ErrConflict, folder, "publish", err.Error(), nil)
	}
	if len(sources) == 0 && len(existing) == 0 {
		return album.Album{}, album.Wrap(album.ErrEmptyAlbum, filepath.Base(albumDir), "publish",
			"no .jpg, .jpeg, or .png files found", nil)
	}

	start := time.Now()
	if len(existing) > 0 {
		logger.Info("resuming interrupted publish", logging.Int("existing_photos", len(existing)))
	}
	logger.Info("publish started",
		logging.String("source_dir", albumDir),
		logging.Int("sources", len(sources)),
		logging.String("name", displayName),
	)

	lowDir := filepath.Join(albumDir, album.LowDir)
	fullDir := filepath.Join(albumDir, album.FullDir)
	for _, dir := range []string{lowDir, fullDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return album.Album{}, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	jrnl := openJournal(albumDir)
	photos, archived, err := t.resumeAssets(ctx, albumDir, existing, jrnl)
	if err != nil {
		return album.Album{}, err
	}

	for _, name := range sources {
		if err := ctx.Err(); err != nil {
			return album.Album{}, err
		}
		src := filepath.Join(albumDir, name)

		if fullPath, ok := archived[name]; ok {
			same, err := sameContent(src, fullPath)
			if err != nil {
				return album.Album{}, err
			}
			if same {
				logger.Info("source already archived, removing",
					logging.Source(name),
					logging.String("full", filepath.Base(fullPath)),
				)
				if err := os.Remove(src); err != nil {
					return album.Album{}, fmt.Errorf("remove source %s: %w", name, err)
				}
				continue
			}
		}

		photo := album.NewPhoto(folder, len(photos)+1, album.Extension(name))
		if err := jrnl.record(photo.WebName, name); err != nil {
			return album.Album{}, err
		}
		if err := t.publishPhoto(ctx, src, filepath.Join(fullDir, photo.FullName()), filepath.Join(lowDir, photo.WebName)); err != nil {
			return album.Album{}, err
		}
		photos = append(photos, photo)
		logger.Debug("photo published",
			logging.Source(name),
			logging.Photo(photo.WebName),
		)
	}

	a := album.Album{
		FolderName:   folder,
		Name:         displayName,
		Photographer: photographer,
		CreatedAt:    t.now().UTC().Truncate(time.Millisecond),
		CoverPhoto:   photos[t.pick(len(photos))].WebName,
		Photos:       photos,
	}
	if err := manifest.WriteAlbumMetadataAt(albumDir, a); err != nil {
		return album.Album{}, err
	}
	if err := jrnl.remove(); err != nil {
		return album.Album{}, err
	}

	if !sameDir(albumDir, targetDir) {
		if err := os.Rename(albumDir, targetDir); err != nil {
			return album.Album{}, album.Wrap(nil, folder, "publish", "rename album directory", err)
		}
	}

	if _, err := t.regenerate(ctx); err != nil {
		return album.Album{}, err
	}

	logger.Info("album published",
		logging.String(logging.FieldEventType, "album_published"),
		logging.Int("photos", len(a.Photos)),
		logging.String("cover", a.CoverPhoto),
		logging.String("dir", targetDir),
		logging.Duration("duration", time.Since(start)),
	)
	return a, nil
}

// publishPhoto produces both derived files for one source and removes the
// source once they exist. On failure the source is left in place and the
// partial archival copy is discarded.
func (t *Transformer) publishPhoto(ctx context.Context, src, fullPath, lowPath string) error {
	if err := fileutil.CopyFileVerified(src, fullPath); err != nil {
		return album.Wrap(nil, "", "publish", "archive "+filepath.Base(src), err)
	}
	if err := t.thumbs.Generate(ctx, src, lowPath); err != nil {
		_ = os.Remove(fullPath)
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source %s: %w", filepath.Base(src), err)
	}
	return nil
}

// resumeAssets rebuilds photo records for archival copies left by an
// interrupted run, regenerating missing thumbnails from them. It returns the
// records in index order and, for sources the journal says were already
// archived, the path of their archival copy.
func (t *Transformer) resumeAssets(ctx context.Context, albumDir string, existing []album.Photo, jrnl journal) ([]album.Photo, map[string]string, error) {
	if len(existing) == 0 {
		return nil, nil, nil
	}
	logger := logging.WithContext(ctx, t.logger)
	recorded, err := jrnl.sources()
	if err != nil {
		return nil, nil, err
	}
	archived := make(map[string]string, len(existing))
	for _, photo := range existing {
		fullPath := filepath.Join(albumDir, album.FullDir, photo.FullName())
		lowPath := filepath.Join(albumDir, album.LowDir, photo.WebName)

		ok, err := fileutil.Exists(lowPath)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			logger.Info("regenerating missing thumbnail", logging.Photo(photo.WebName))
			if err := t.thumbs.Generate(ctx, fullPath, lowPath); err != nil {
				return nil, nil, err
			}
		}
		if source, ok := recorded[photo.WebName]; ok {
			archived[source] = fullPath
		}
	}
	return existing, archived, nil
}

// sameContent reports whether two files hold identical bytes.
func sameContent(a, b string) (bool, error) {
	sumA, err := fileutil.HashFile(a)
	if err != nil {
		return false, err
	}
	sumB, err := fileutil.HashFile(b)
	if err != nil {
		return false, err
	}
	return sumA == sumB, nil
}

// listSources returns the raw source image names directly inside albumDir in
// processing order.
func (t *Transformer) listSources(albumDir string) ([]string, error) {
	entries, err := os.ReadDir(albumDir)
	if err != nil {
		return nil, fmt.Errorf("read album directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || isHidden(entry.Name()) {
			continue
		}
		if album.IsSourceImage(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	if t.sort == config.SortNatural {
		natsort.Sort(names)
	}
	return names, nil
}

// scanPublishedAssets parses full/ entries named "{folder}_{n}.{ext}" and
// returns them as photo records ordered by index. Foreign names, gaps in the
// numbering, and thumbnails without an archival copy are reported as errors.
func scanPublishedAssets(albumDir, folder string) ([]album.Photo, error) {
	fullDir := filepath.Join(albumDir, album.FullDir)
	entries, err := os.ReadDir(fullDir)
	if errors.Is(err, fs.ErrNotExist) {
		entries = nil
	} else if err != nil {
		return nil, fmt.Errorf("read %s: %w", fullDir, err)
	}

	byIndex := make(map[int]album.Photo, len(entries))
	for _, entry := range entries {
		index, ext, ok := parseAssetName(entry.Name(), folder)
		if !ok || !entry.Type().IsRegular() {
			return nil, fmt.Errorf("full/%s does not belong to album %q", entry.Name(), folder)
		}
		if _, dup := byIndex[index]; dup {
			return nil, fmt.Errorf("full/ holds two files for index %d", index)
		}
		byIndex[index] = album.NewPhoto(folder, index, ext)
	}

	indices := make([]int, 0, len(byIndex))
	for index := range byIndex {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	photos := make([]album.Photo, 0, len(indices))
	for i, index := range indices {
		if index != i+1 {
			return nil, fmt.Errorf("full/ numbering has a gap before %s", album.PhotoBaseName(folder, index))
		}
		photos = append(photos, byIndex[index])
	}

	lowEntries, err := os.ReadDir(filepath.Join(albumDir, album.LowDir))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read low/: %w", err)
	}
	for _, entry := range lowEntries {
		if !slices.ContainsFunc(photos, func(p album.Photo) bool { return p.WebName == entry.Name() }) {
			return nil, fmt.Errorf("low/%s has no archival copy in full/", entry.Name())
		}
	}
	return photos, nil
}

// parseAssetName splits "{folder}_{n}.{ext}" into n and ext.
func parseAssetName(name, folder string) (int, string, bool) {
	rest, ok := strings.CutPrefix(name, folder+"_")
	if !ok {
		return 0, "", false
	}
	digits, ext, ok := strings.Cut(rest, ".")
	if !ok || !album.IsSourceImage(name) || ext != album.Extension(name) {
		return 0, "", false
	}
	index, err := strconv.Atoi(digits)
	if err != nil || index < 1 || strconv.Itoa(index) != digits {
		return 0, "", false
	}
	return index, ext, true
}

// checkTarget fails when renaming albumDir to targetDir would clobber another
// directory.
func checkTarget(albumDir string, info fs.FileInfo, targetDir string) error {
	target, err := os.Stat(targetDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect %s: %w", targetDir, err)
	}
	if os.SameFile(info, target) {
		return nil
	}
	return fmt.Errorf("%s already exists and is a different album", targetDir)
}

func sameDir(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
