package gallery_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"photoreel/internal/album"
	"photoreel/internal/gallery"
	"photoreel/internal/logging"
	"photoreel/internal/manifest"
)

type fakeFetcher struct {
	folders     []string
	manifestErr error
	albums      map[string]album.Album
	errs        map[string]error

	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeFetcher) FetchGlobalManifest(context.Context) ([]string, error) {
	return f.folders, f.manifestErr
}

func (f *fakeFetcher) FetchAlbum(_ context.Context, folder string) (album.Album, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	if err, ok := f.errs[folder]; ok {
		return album.Album{}, err
	}
	a, ok := f.albums[folder]
	if !ok {
		return album.Album{}, album.ErrNotFound
	}
	a.FolderName = folder
	return a, nil
}

func testAlbum(name string, created time.Time, photos int) album.Album {
	a := album.Album{Name: name, Photographer: "Jo", CreatedAt: created}
	for i := 1; i <= photos; i++ {
		a.Photos = append(a.Photos, album.NewPhoto(strings.ToLower(name), i, "jpg"))
	}
	if photos > 0 {
		a.CoverPhoto = a.Photos[0].WebName
	}
	return a
}

func TestListAlbumsSortsAndDropsFailures(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &fakeFetcher{
		folders: []string{"old", "new", "broken", "empty", "tie_b", "tie_a"},
		albums: map[string]album.Album{
			"old":   testAlbum("Old", day, 2),
			"new":   testAlbum("New", day.Add(48*time.Hour), 3),
			"empty": testAlbum("Empty", day.Add(72*time.Hour), 0),
			"tie_a": testAlbum("Tie_A", day.Add(24*time.Hour), 1),
			"tie_b": testAlbum("Tie_B", day.Add(24*time.Hour), 1),
		},
		errs: map[string]error{"broken": album.ErrSchema},
	}
	client := gallery.New(fetcher, logging.NewNop(), gallery.Options{AssetBase: "https://cdn.example.com/", Concurrency: 2})

	got, err := client.ListAlbums(context.Background())
	if err != nil {
		t.Fatalf("ListAlbums: %v", err)
	}
	folders := make([]string, 0, len(got))
	for _, s := range got {
		folders = append(folders, s.FolderName)
	}
	if diff := cmp.Diff([]string{"new", "tie_a", "tie_b", "old"}, folders); diff != "" {
		t.Fatalf("listing order (-want +got):\n%s", diff)
	}
	if got[0].PhotoCount != 3 || got[0].CoverURL != "https://cdn.example.com/new/low/new_1.webp" {
		t.Fatalf("unexpected summary %+v", got[0])
	}
	if peak := fetcher.peak.Load(); peak > 2 {
		t.Fatalf("expected at most 2 concurrent fetches, saw %d", peak)
	}
}

func TestListAlbumsWithoutManifest(t *testing.T) {
	fetcher := &fakeFetcher{manifestErr: album.Wrap(album.ErrNotFound, "", "fetch", "albums.json", nil)}
	client := gallery.New(fetcher, logging.NewNop(), gallery.Options{})

	got, err := client.ListAlbums(context.Background())
	if err != nil {
		t.Fatalf("ListAlbums: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil listing, got %#v", got)
	}

	fetcher.manifestErr = errors.New("connection refused")
	if _, err := client.ListAlbums(context.Background()); err == nil {
		t.Fatal("expected transport failure to surface")
	}
}

func TestLoadAlbum(t *testing.T) {
	fetcher := &fakeFetcher{
		albums: map[string]album.Album{
			"trip":  testAlbum("Trip", time.Now(), 2),
			"empty": testAlbum("Empty", time.Now(), 0),
		},
	}
	client := gallery.New(fetcher, logging.NewNop(), gallery.Options{AssetBase: "http://origin"})

	view, err := client.LoadAlbum(context.Background(), "trip")
	if err != nil {
		t.Fatalf("LoadAlbum: %v", err)
	}
	if len(view.Photos) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(view.Photos))
	}
	if view.Photos[1].ThumbnailURL != "http://origin/trip/low/trip_2.webp" || view.Photos[1].DownloadURL != "http://origin/trip/full/trip_2.jpg" {
		t.Fatalf("unexpected URLs %+v", view.Photos[1])
	}

	if _, err := client.LoadAlbum(context.Background(), "empty"); !errors.Is(err, album.ErrSchema) {
		t.Fatalf("expected ErrSchema for empty album, got %v", err)
	}
	if _, err := client.LoadAlbum(context.Background(), "missing"); !errors.Is(err, album.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestURLDerivation(t *testing.T) {
	current := album.NewPhoto("beach", 4, "PNG")
	if got := gallery.ThumbnailURL("https://o.example/", "beach", current); got != "https://o.example/beach/low/beach_4.webp" {
		t.Errorf("thumbnail = %q", got)
	}
	if got := gallery.DownloadURL("https://o.example", "beach", current); got != "https://o.example/beach/full/beach_4.png" {
		t.Errorf("download = %q", got)
	}

	legacy, err := manifest.DecodeAlbum([]byte(`{"name":"Old","photographer":"","date":"2020-01-01T00:00:00.000Z","coverPhoto":"old_1.webp","photos":["old_1.webp"]}`))
	if err != nil {
		t.Fatalf("DecodeAlbum: %v", err)
	}
	p := legacy.Photos[0]
	if gallery.ThumbnailURL("", "old", p) != "/old/low/old_1.webp" || gallery.DownloadURL("", "old", p) != "/old/full/old_1.webp" {
		t.Fatalf("legacy URLs should share the filename: %q %q", gallery.ThumbnailURL("", "old", p), gallery.DownloadURL("", "old", p))
	}
}

func TestHTTPFetcher(t *testing.T) {
	good, err := manifest.EncodeAlbum(album.Album{
		Name:       "Good",
		CreatedAt:  time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
		CoverPhoto: "good_1.webp",
		Photos:     []album.Photo{album.NewPhoto("good", 1, "jpg")},
	})
	if err != nil {
		t.Fatalf("EncodeAlbum: %v", err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/site/albums.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"albums":["good","bad","gone"]}`))
	})
	mux.HandleFunc("/site/good/data.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(good)
	})
	mux.HandleFunc("/site/bad/data.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	fetcher := gallery.NewHTTPFetcher(ts.URL+"/site/", ts.Client())
	client := gallery.New(fetcher, logging.NewNop(), gallery.Options{AssetBase: ts.URL})

	got, err := client.ListAlbums(context.Background())
	if err != nil {
		t.Fatalf("ListAlbums: %v", err)
	}
	if len(got) != 1 || got[0].FolderName != "good" || got[0].Name != "Good" {
		t.Fatalf("unexpected listing %+v", got)
	}

	if _, err := fetcher.FetchAlbum(context.Background(), "gone"); !errors.Is(err, album.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for 404, got %v", err)
	}
	if _, err := fetcher.FetchAlbum(context.Background(), "bad"); !errors.Is(err, album.ErrSchema) {
		t.Fatalf("expected ErrSchema for invalid JSON, got %v", err)
	}

	missing := gallery.NewHTTPFetcher(ts.URL+"/nowhere", nil)
	if _, err := missing.FetchGlobalManifest(context.Background()); !errors.Is(err, album.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing manifest, got %v", err)
	}
}
