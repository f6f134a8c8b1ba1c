package transform_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"

	"photoreel/internal/album"
	"photoreel/internal/config"
	"photoreel/internal/logging"
	"photoreel/internal/manifest"
	"photoreel/internal/testsupport"
	"photoreel/internal/thumbnail"
	"photoreel/internal/transform"
)

var fixedNow = time.Date(2024, 5, 4, 18, 30, 0, 123456789, time.FixedZone("EDT", -4*3600))

func newTransformer(t *testing.T, sort string, failOn ...string) (*transform.Transformer, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	restore := thumbnail.SetRunnerForTests(testsupport.CopyingThumbnailRunner(failOn...))
	t.Cleanup(restore)

	store := manifest.NewStore(cfg.Paths.AlbumsDir, cfg.Paths.ManifestPath)
	thumbs := thumbnail.NewCLI(thumbnail.Options{Tool: "magick", Verify: true}, logging.NewNop())
	tr := transform.New(store, thumbs, logging.NewNop(), transform.Options{
		Sort:     sort,
		LockPath: cfg.LockPath(),
		Now:      func() time.Time { return fixedNow },
		Pick:     func(n int) int { return n - 1 },
	})
	return tr, cfg
}

func rawAlbum(t *testing.T, cfg *config.Config, dir string, names ...string) map[string][]byte {
	t.Helper()
	contents := make(map[string][]byte, len(names))
	for i, name := range names {
		contents[name] = testsupport.WriteImage(t, filepath.Join(cfg.Paths.AlbumsDir, dir, name), 8, 6, uint8(i+1)*17)
	}
	return contents
}

func readDirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

func TestPublishProducesDerivedAssets(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical)
	originals := rawAlbum(t, cfg, "raw shoot", "b.jpg", "a.JPG", "c.png")
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.AlbumsDir, "raw shoot", "notes.txt"), []byte("keep me"))

	got, err := tr.Publish(context.Background(), filepath.Join(cfg.Paths.AlbumsDir, "raw shoot"), "  Spring Formal 2024 ", "Ann Lee")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	folder := "spring_formal_2024"
	want := album.Album{
		FolderName:   folder,
		Name:         "Spring Formal 2024",
		Photographer: "Ann Lee",
		CreatedAt:    time.Date(2024, 5, 4, 22, 30, 0, 123000000, time.UTC),
		CoverPhoto:   folder + "_3.webp",
		Photos: []album.Photo{
			album.NewPhoto(folder, 1, "jpg"),
			album.NewPhoto(folder, 2, "jpg"),
			album.NewPhoto(folder, 3, "png"),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("album mismatch (-want +got):\n%s", diff)
	}

	if _, err := os.Stat(filepath.Join(cfg.Paths.AlbumsDir, "raw shoot")); !os.IsNotExist(err) {
		t.Fatalf("expected source directory to be renamed, stat err=%v", err)
	}
	dir := filepath.Join(cfg.Paths.AlbumsDir, folder)
	if diff := cmp.Diff([]string{album.MetadataFile, album.FullDir, album.LowDir, "notes.txt"}, readDirNames(t, dir)); diff != "" {
		t.Fatalf("album root mismatch (-want +got):\n%s", diff)
	}
	for i, source := range []string{"a.JPG", "b.jpg", "c.png"} {
		photo := want.Photos[i]
		if !bytes.Equal(mustRead(t, filepath.Join(dir, album.FullDir, photo.FullName())), originals[source]) {
			t.Errorf("full/%s is not a byte-exact copy of %s", photo.FullName(), source)
		}
		if _, err := os.Stat(filepath.Join(dir, album.LowDir, photo.WebName)); err != nil {
			t.Errorf("expected low/%s: %v", photo.WebName, err)
		}
	}

	stored, err := manifest.LoadAlbumMetadataAt(dir)
	if err != nil {
		t.Fatalf("LoadAlbumMetadataAt: %v", err)
	}
	if diff := cmp.Diff(want, stored); diff != "" {
		t.Fatalf("stored metadata mismatch (-want +got):\n%s", diff)
	}

	folders, err := tr.Store().LoadGlobalManifest()
	if err != nil {
		t.Fatalf("LoadGlobalManifest: %v", err)
	}
	if diff := cmp.Diff([]string{folder}, folders); diff != "" {
		t.Fatalf("global manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestPublishKeepsDirectoryWhenNameMatches(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical)
	rawAlbum(t, cfg, "beach_day", "1.jpg")

	if _, err := tr.Publish(context.Background(), filepath.Join(cfg.Paths.AlbumsDir, "beach_day"), "Beach Day", ""); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ok, _ := manifest.HasMetadata(filepath.Join(cfg.Paths.AlbumsDir, "beach_day")); !ok {
		t.Fatal("expected metadata in place")
	}
}

func TestResetRestoresContent(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical)
	originals := rawAlbum(t, cfg, "trip", "x.jpg", "y.jpeg")
	ctx := context.Background()

	published, err := tr.Publish(ctx, filepath.Join(cfg.Paths.AlbumsDir, "trip"), "Trip", "Sam")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := tr.Reset(ctx, published.FolderName); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	dir := filepath.Join(cfg.Paths.AlbumsDir, "trip")
	if diff := cmp.Diff([]string{"trip_1.jpg", "trip_2.jpeg"}, readDirNames(t, dir)); diff != "" {
		t.Fatalf("reset root mismatch (-want +got):\n%s", diff)
	}
	if !bytes.Equal(mustRead(t, filepath.Join(dir, "trip_1.jpg")), originals["x.jpg"]) {
		t.Error("trip_1.jpg does not match x.jpg")
	}
	if !bytes.Equal(mustRead(t, filepath.Join(dir, "trip_2.jpeg")), originals["y.jpeg"]) {
		t.Error("trip_2.jpeg does not match y.jpeg")
	}

	folders, err := tr.Store().LoadGlobalManifest()
	if err != nil {
		t.Fatalf("LoadGlobalManifest: %v", err)
	}
	if len(folders) != 0 {
		t.Fatalf("expected empty manifest after reset, got %v", folders)
	}

	// A reset album publishes again like any raw album.
	again, err := tr.Publish(ctx, dir, "Trip", "Sam")
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if len(again.Photos) != 2 {
		t.Fatalf("expected 2 photos after republish, got %d", len(again.Photos))
	}
}

func TestResetErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("not published", func(t *testing.T) {
		tr, cfg := newTransformer(t, config.SortLexical)
		rawAlbum(t, cfg, "raw", "a.jpg")
		if err := tr.Reset(ctx, "raw"); !errors.Is(err, album.ErrNotPublished) {
			t.Fatalf("expected ErrNotPublished, got %v", err)
		}
	})

	t.Run("unknown album", func(t *testing.T) {
		tr, _ := newTransformer(t, config.SortLexical)
		if err := tr.Reset(ctx, "ghost"); !errors.Is(err, album.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("missing full assets", func(t *testing.T) {
		tr, cfg := newTransformer(t, config.SortLexical)
		rawAlbum(t, cfg, "pub", "a.jpg", "b.jpg")
		if _, err := tr.Publish(ctx, filepath.Join(cfg.Paths.AlbumsDir, "pub"), "Pub", "P"); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		if err := os.Remove(filepath.Join(cfg.Paths.AlbumsDir, "pub", album.FullDir, "pub_2.jpg")); err != nil {
			t.Fatal(err)
		}
		if err := tr.Reset(ctx, "pub"); !errors.Is(err, album.ErrMissingFullAssets) {
			t.Fatalf("expected ErrMissingFullAssets, got %v", err)
		}
		if ok, _ := manifest.HasMetadata(filepath.Join(cfg.Paths.AlbumsDir, "pub")); !ok {
			t.Fatal("expected album to stay published")
		}
	})

	t.Run("conflicting root file", func(t *testing.T) {
		tr, cfg := newTransformer(t, config.SortLexical)
		rawAlbum(t, cfg, "pub", "a.jpg")
		if _, err := tr.Publish(ctx, filepath.Join(cfg.Paths.AlbumsDir, "pub"), "Pub", "P"); err != nil {
			t.Fatalf("Publish: %v", err)
		}
		testsupport.WriteFile(t, filepath.Join(cfg.Paths.AlbumsDir, "pub", "pub_1.jpg"), []byte("stray"))
		if err := tr.Reset(ctx, "pub"); !errors.Is(err, album.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(cfg.Paths.AlbumsDir, "pub", album.FullDir, "pub_1.jpg")); err != nil {
			t.Fatalf("expected archival copy untouched: %v", err)
		}
	})
}

func TestRegenerateGlobalManifestIsIdempotent(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical)
	ctx := context.Background()
	rawAlbum(t, cfg, "one", "a.jpg")
	rawAlbum(t, cfg, "two", "a.jpg")
	rawAlbum(t, cfg, "pending", "a.jpg")
	for _, dir := range []string{"one", "two"} {
		if _, err := tr.Publish(ctx, filepath.Join(cfg.Paths.AlbumsDir, dir), dir, "P"); err != nil {
			t.Fatalf("Publish %s: %v", dir, err)
		}
	}
	before := mustRead(t, cfg.Paths.ManifestPath)

	for i := 0; i < 2; i++ {
		folders, err := tr.RegenerateGlobalManifest(ctx)
		if err != nil {
			t.Fatalf("RegenerateGlobalManifest: %v", err)
		}
		if diff := cmp.Diff([]string{"one", "two"}, folders); diff != "" {
			t.Fatalf("folders mismatch (-want +got):\n%s", diff)
		}
		if !bytes.Equal(before, mustRead(t, cfg.Paths.ManifestPath)) {
			t.Fatal("manifest bytes changed on regeneration")
		}
	}
}

func TestPublishEmptyAlbumIsNoOp(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical)
	dir := filepath.Join(cfg.Paths.AlbumsDir, "empty")
	testsupport.WriteFile(t, filepath.Join(dir, "readme.txt"), []byte("no photos"))

	_, err := tr.Publish(context.Background(), dir, "Empty", "P")
	if !errors.Is(err, album.ErrEmptyAlbum) {
		t.Fatalf("expected ErrEmptyAlbum, got %v", err)
	}
	if diff := cmp.Diff([]string{"readme.txt"}, readDirNames(t, dir)); diff != "" {
		t.Fatalf("directory changed (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(cfg.Paths.ManifestPath); !os.IsNotExist(err) {
		t.Fatalf("expected no manifest write, stat err=%v", err)
	}
}

func TestPublishRejectsInvalidInput(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical)
	ctx := context.Background()
	rawAlbum(t, cfg, "raw", "a.jpg")
	dir := filepath.Join(cfg.Paths.AlbumsDir, "raw")

	if _, err := tr.Publish(ctx, dir, "!!! ???", "P"); !errors.Is(err, album.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := tr.Publish(ctx, filepath.Join(cfg.Paths.AlbumsDir, "missing"), "Missing", "P"); !errors.Is(err, album.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := tr.Publish(ctx, dir, "Raw", "P"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := tr.Publish(ctx, dir, "Raw", "P"); !errors.Is(err, album.ErrAlreadyPublished) {
		t.Fatalf("expected ErrAlreadyPublished, got %v", err)
	}
}

func TestPublishRefusesToClobberExistingFolder(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical)
	rawAlbum(t, cfg, "new upload", "a.jpg")
	rawAlbum(t, cfg, "summer", "b.jpg")

	_, err := tr.Publish(context.Background(), filepath.Join(cfg.Paths.AlbumsDir, "new upload"), "Summer", "P")
	if !errors.Is(err, album.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if diff := cmp.Diff([]string{"a.jpg"}, readDirNames(t, filepath.Join(cfg.Paths.AlbumsDir, "new upload"))); diff != "" {
		t.Fatalf("source album changed (-want +got):\n%s", diff)
	}
}

func TestPublishToolFailureKeepsSourceAndResumes(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical, "b.jpg")
	originals := rawAlbum(t, cfg, "party", "a.jpg", "b.jpg", "c.jpg")
	dir := filepath.Join(cfg.Paths.AlbumsDir, "party")
	ctx := context.Background()

	_, err := tr.Publish(ctx, dir, "Party", "P")
	if !errors.Is(err, album.ErrToolInvocation) {
		t.Fatalf("expected ErrToolInvocation, got %v", err)
	}
	if diff := cmp.Diff([]string{".photoreel-publish", "b.jpg", "c.jpg", album.FullDir, album.LowDir}, readDirNames(t, dir)); diff != "" {
		t.Fatalf("album root after failure (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"party_1.jpg"}, readDirNames(t, filepath.Join(dir, album.FullDir))); diff != "" {
		t.Fatalf("full/ after failure (-want +got):\n%s", diff)
	}

	statuses, err := tr.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(statuses) != 1 || !statuses[0].Resumable {
		t.Fatalf("expected one resumable album, got %+v", statuses)
	}

	thumbnail.SetRunnerForTests(testsupport.CopyingThumbnailRunner())
	got, err := tr.Publish(ctx, dir, "Party", "P")
	if err != nil {
		t.Fatalf("resume Publish: %v", err)
	}
	names := make([]string, 0, len(got.Photos))
	for _, p := range got.Photos {
		names = append(names, p.FullName())
	}
	if diff := cmp.Diff([]string{"party_1.jpg", "party_2.jpg", "party_3.jpg"}, names); diff != "" {
		t.Fatalf("resumed photos (-want +got):\n%s", diff)
	}
	for i, source := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		if !bytes.Equal(mustRead(t, filepath.Join(dir, album.FullDir, names[i])), originals[source]) {
			t.Errorf("%s does not hold %s", names[i], source)
		}
	}
}

func TestPublishResumeSkipsArchivedSources(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical, "b.jpg")
	originals := rawAlbum(t, cfg, "hike", "a.jpg", "b.jpg")
	dir := filepath.Join(cfg.Paths.AlbumsDir, "hike")
	ctx := context.Background()

	if _, err := tr.Publish(ctx, dir, "Hike", "P"); !errors.Is(err, album.ErrToolInvocation) {
		t.Fatalf("expected ErrToolInvocation, got %v", err)
	}
	// The run stopped after archiving a.jpg but before removing it.
	testsupport.WriteFile(t, filepath.Join(dir, "a.jpg"), originals["a.jpg"])
	if err := os.Remove(filepath.Join(dir, album.LowDir, "hike_1.webp")); err != nil {
		t.Fatalf("remove thumbnail: %v", err)
	}

	thumbnail.SetRunnerForTests(testsupport.CopyingThumbnailRunner())
	got, err := tr.Publish(ctx, dir, "Hike", "P")
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got.Photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(got.Photos))
	}
	if !bytes.Equal(mustRead(t, filepath.Join(dir, album.FullDir, "hike_2.jpg")), originals["b.jpg"]) {
		t.Error("hike_2.jpg does not hold b.jpg")
	}
	for _, name := range []string{"hike_1.webp", "hike_2.webp"} {
		if _, err := os.Stat(filepath.Join(dir, album.LowDir, name)); err != nil {
			t.Errorf("expected low/%s: %v", name, err)
		}
	}
	if diff := cmp.Diff([]string{album.MetadataFile, album.FullDir, album.LowDir}, readDirNames(t, dir)); diff != "" {
		t.Errorf("album root after resume (-want +got):\n%s", diff)
	}
}

func TestPublishResumeKeepsIdenticalSources(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical, "b.jpg")
	dir := filepath.Join(cfg.Paths.AlbumsDir, "twins")
	same := testsupport.WriteImage(t, filepath.Join(dir, "a.jpg"), 8, 6, 40)
	testsupport.WriteFile(t, filepath.Join(dir, "b.jpg"), same)
	other := testsupport.WriteImage(t, filepath.Join(dir, "c.jpg"), 8, 6, 90)
	ctx := context.Background()

	if _, err := tr.Publish(ctx, dir, "Twins", "P"); !errors.Is(err, album.ErrToolInvocation) {
		t.Fatalf("expected ErrToolInvocation, got %v", err)
	}

	thumbnail.SetRunnerForTests(testsupport.CopyingThumbnailRunner())
	got, err := tr.Publish(ctx, dir, "Twins", "P")
	if err != nil {
		t.Fatalf("resume Publish: %v", err)
	}
	if len(got.Photos) != 3 {
		t.Fatalf("expected one photo per source, got %d", len(got.Photos))
	}
	for name, want := range map[string][]byte{"twins_1.jpg": same, "twins_2.jpg": same, "twins_3.jpg": other} {
		if !bytes.Equal(mustRead(t, filepath.Join(dir, album.FullDir, name)), want) {
			t.Errorf("%s holds unexpected content", name)
		}
	}
}

func TestPublishAcceptsTrailingSlash(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical)
	rawAlbum(t, cfg, "Trip", "a.jpg")
	dir := filepath.Join(cfg.Paths.AlbumsDir, "Trip") + string(filepath.Separator)

	if _, err := tr.Publish(context.Background(), dir, "Trip 2024", "P"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	target := filepath.Join(cfg.Paths.AlbumsDir, "trip_2024")
	if _, err := os.Stat(filepath.Join(target, album.MetadataFile)); err != nil {
		t.Fatalf("expected metadata in renamed album: %v", err)
	}
	folders, err := manifest.NewStore(cfg.Paths.AlbumsDir, cfg.Paths.ManifestPath).LoadGlobalManifest()
	if err != nil {
		t.Fatalf("LoadGlobalManifest: %v", err)
	}
	if diff := cmp.Diff([]string{"trip_2024"}, folders); diff != "" {
		t.Fatalf("global manifest (-want +got):\n%s", diff)
	}
}

func TestPublishRejectsForeignArchivalFiles(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical)
	rawAlbum(t, cfg, "mixed", "a.jpg")
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.AlbumsDir, "mixed", album.FullDir, "other_1.jpg"), []byte("x"))

	_, err := tr.Publish(context.Background(), filepath.Join(cfg.Paths.AlbumsDir, "mixed"), "Mixed", "P")
	if !errors.Is(err, album.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPublishFailsWhenLocked(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical)
	rawAlbum(t, cfg, "locked", "a.jpg")

	held := flock.New(cfg.LockPath())
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}
	defer func() { _ = held.Unlock() }()

	_, err = tr.Publish(context.Background(), filepath.Join(cfg.Paths.AlbumsDir, "locked"), "Locked", "P")
	if !errors.Is(err, album.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, err := tr.RegenerateGlobalManifest(context.Background()); !errors.Is(err, album.ErrLocked) {
		t.Fatalf("expected ErrLocked from regenerate, got %v", err)
	}
}

func TestPublishSourceOrder(t *testing.T) {
	cases := []struct {
		sort  string
		order []string
	}{
		{config.SortLexical, []string{"IMG_10.jpg", "IMG_2.jpg", "IMG_9.jpg"}},
		{config.SortNatural, []string{"IMG_2.jpg", "IMG_9.jpg", "IMG_10.jpg"}},
	}
	for _, tc := range cases {
		t.Run(tc.sort, func(t *testing.T) {
			tr, cfg := newTransformer(t, tc.sort)
			originals := rawAlbum(t, cfg, "order", "IMG_2.jpg", "IMG_10.jpg", "IMG_9.jpg")
			dir := filepath.Join(cfg.Paths.AlbumsDir, "order")

			if _, err := tr.Publish(context.Background(), dir, "Order", "P"); err != nil {
				t.Fatalf("Publish: %v", err)
			}
			for i, source := range tc.order {
				name := album.NewPhoto("order", i+1, "jpg").FullName()
				if !bytes.Equal(mustRead(t, filepath.Join(dir, album.FullDir, name)), originals[source]) {
					t.Errorf("%s should hold %s", name, source)
				}
			}
		})
	}
}

func TestScanClassifiesAlbums(t *testing.T) {
	tr, cfg := newTransformer(t, config.SortLexical)
	ctx := context.Background()
	rawAlbum(t, cfg, "published", "a.jpg")
	if _, err := tr.Publish(ctx, filepath.Join(cfg.Paths.AlbumsDir, "published"), "Published", "P"); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	rawAlbum(t, cfg, "raw", "a.jpg", "b.png")
	if err := os.MkdirAll(filepath.Join(cfg.Paths.AlbumsDir, "empty"), 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.AlbumsDir, "broken", album.MetadataFile), []byte("{"))
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.AlbumsDir, ".hidden", "a.jpg"), []byte("x"))

	statuses, err := tr.Scan(ctx)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	got := make(map[string]album.State, len(statuses))
	for _, s := range statuses {
		got[s.FolderName] = s.State
	}
	want := map[string]album.State{
		"broken":    album.StateCorrupt,
		"empty":     album.StateEmpty,
		"published": album.StatePublished,
		"raw":       album.StateRaw,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}

	pending, err := tr.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 1 || pending[0].FolderName != "raw" || pending[0].Sources != 2 {
		t.Fatalf("unexpected pending set: %+v", pending)
	}
}
