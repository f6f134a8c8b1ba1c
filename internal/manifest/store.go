package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"photoreel/internal/album"
	"photoreel/internal/fileutil"
)

// Store reads and writes manifests for one albums directory.
type Store struct {
	albumsDir    string
	manifestPath string
}

// NewStore returns a Store rooted at albumsDir. An empty manifestPath defaults to
// {albumsDir}/albums.json.
func NewStore(albumsDir, manifestPath string) *Store {
	if manifestPath == "" {
		manifestPath = filepath.Join(albumsDir, "albums.json")
	}
	return &Store{albumsDir: albumsDir, manifestPath: manifestPath}
}

// AlbumsDir returns the directory holding album directories.
func (s *Store) AlbumsDir() string { return s.albumsDir }

// ManifestPath returns the global manifest location.
func (s *Store) ManifestPath() string { return s.manifestPath }

// AlbumDir returns the directory of the named album.
func (s *Store) AlbumDir(folder string) string {
	return filepath.Join(s.albumsDir, folder)
}

// LoadGlobalManifest returns the published folder names. A missing file yields
// ErrNotFound; callers that rebuild the manifest treat that as an empty gallery.
func (s *Store) LoadGlobalManifest() ([]string, error) {
	data, err := os.ReadFile(s.manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, album.Wrap(album.ErrNotFound, "", "load global manifest", s.manifestPath, err)
		}
		return nil, fmt.Errorf("read global manifest: %w", err)
	}
	return DecodeGlobalManifest(data)
}

// WriteGlobalManifest replaces the global manifest with folders. Call it only with
// the result of a fresh directory scan; there is no incremental update path.
func (s *Store) WriteGlobalManifest(folders []string) error {
	data, err := EncodeGlobalManifest(folders)
	if err != nil {
		return fmt.Errorf("encode global manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.manifestPath), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("write global manifest: %w", err)
	}
	return nil
}

// LoadAlbumMetadata reads data.json of the named album. A raw album yields ErrNotFound.
func (s *Store) LoadAlbumMetadata(folder string) (album.Album, error) {
	return LoadAlbumMetadataAt(s.AlbumDir(folder))
}

// WriteAlbumMetadata writes data.json into the directory named by a.FolderName.
func (s *Store) WriteAlbumMetadata(a album.Album) error {
	if a.FolderName == "" {
		return album.Wrap(album.ErrSchema, "", "write album metadata", "folder name is empty", nil)
	}
	return WriteAlbumMetadataAt(s.AlbumDir(a.FolderName), a)
}

// LoadAlbumMetadataAt reads data.json from dir, naming the album after the directory.
func LoadAlbumMetadataAt(dir string) (album.Album, error) {
	folder := filepath.Base(dir)
	data, err := os.ReadFile(filepath.Join(dir, album.MetadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return album.Album{}, album.Wrap(album.ErrNotFound, folder, "load album metadata", "album is not published", err)
		}
		return album.Album{}, fmt.Errorf("read album metadata %s: %w", folder, err)
	}
	a, err := DecodeAlbum(data)
	if err != nil {
		return album.Album{}, fmt.Errorf("%s: %w", folder, err)
	}
	a.FolderName = folder
	return a, nil
}

// WriteAlbumMetadataAt validates a and atomically writes it as dir/data.json.
// The previous file, or its absence, survives any failure.
func WriteAlbumMetadataAt(dir string, a album.Album) error {
	data, err := EncodeAlbum(a)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(dir, album.MetadataFile), data, 0o644); err != nil {
		return fmt.Errorf("write album metadata %s: %w", filepath.Base(dir), err)
	}
	return nil
}

// HasMetadata reports whether dir contains a metadata file.
func HasMetadata(dir string) (bool, error) {
	info, err := os.Stat(filepath.Join(dir, album.MetadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}
