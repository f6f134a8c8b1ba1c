package origin

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"photoreel/internal/fileutil"
)

// Object describes one local file to be pushed under a key.
type Object struct {
	Key          string
	Path         string
	Size         int64
	SHA256       string
	ContentType  string
	CacheControl string
}

// Target stores objects by key.
type Target interface {
	// Name identifies the target in the ledger and in logs.
	Name() string
	Put(ctx context.Context, obj Object) error
	// List returns every key under prefix ("" lists everything).
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// ValidKey reports whether key is a clean relative slash path without hidden
// or parent segments.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") || path.Clean(key) != key {
		return false
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == ".." || strings.HasPrefix(segment, ".") {
			return false
		}
	}
	return true
}

// LocalTarget mirrors objects into a directory tree.
type LocalTarget struct {
	root string
}

// NewLocalTarget returns a target rooted at dir, creating it when missing.
func NewLocalTarget(dir string) (*LocalTarget, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("local origin directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create origin directory: %w", err)
	}
	return &LocalTarget{root: dir}, nil
}

func (t *LocalTarget) Name() string { return "local:" + t.root }

// Root is the mirrored directory.
func (t *LocalTarget) Root() string { return t.root }

func (t *LocalTarget) Put(ctx context.Context, obj Object) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidKey(obj.Key) {
		return fmt.Errorf("invalid object key %q", obj.Key)
	}
	dst := filepath.Join(t.root, filepath.FromSlash(obj.Key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}
	tmp := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".partial")
	if err := fileutil.CopyFileVerified(obj.Path, tmp); err != nil {
		return fmt.Errorf("put %s: %w", obj.Key, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("put %s: %w", obj.Key, err)
	}
	return nil
}

func (t *LocalTarget) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(t.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == t.root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(t.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.root, err)
	}
	return keys, nil
}

// Delete removes the object and any directories it leaves empty.
func (t *LocalTarget) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidKey(key) {
		return fmt.Errorf("invalid object key %q", key)
	}
	dst := filepath.Join(t.root, filepath.FromSlash(key))
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	for dir := filepath.Dir(dst); dir != t.root && strings.HasPrefix(dir, t.root); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}
