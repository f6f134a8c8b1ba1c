package album_test

import (
	"errors"
	"strings"
	"testing"

	"photoreel/internal/album"
)

func TestIsSourceImage(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"IMG_0001.JPG", true},
		{"beach.jpeg", true},
		{"scan.Png", true},
		{"clip.mov", false},
		{"notes.txt", false},
		{"photo.webp", false},
		{"jpg", false},
	}
	for _, tc := range tests {
		if got := album.IsSourceImage(tc.name); got != tc.want {
			t.Errorf("IsSourceImage(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNewPhotoDerivesNames(t *testing.T) {
	photo := album.NewPhoto("spring_formal_2024", 3, ".JPG")
	if photo.BaseName != "spring_formal_2024_3" {
		t.Fatalf("unexpected base name %q", photo.BaseName)
	}
	if photo.WebName != "spring_formal_2024_3.webp" {
		t.Fatalf("unexpected web name %q", photo.WebName)
	}
	if photo.FullName() != "spring_formal_2024_3.jpg" {
		t.Fatalf("unexpected full name %q", photo.FullName())
	}
}

func TestCoverFallsBackToFirstPhoto(t *testing.T) {
	a := album.Album{Photos: []album.Photo{album.NewPhoto("x", 1, "png"), album.NewPhoto("x", 2, "png")}, CoverPhoto: "x_2.webp"}
	if cover, ok := a.Cover(); !ok || cover.BaseName != "x_2" {
		t.Fatalf("unexpected cover %+v", cover)
	}
	a.CoverPhoto = "missing.webp"
	if cover, ok := a.Cover(); !ok || cover.BaseName != "x_1" {
		t.Fatalf("expected fallback to first photo, got %+v", cover)
	}
	if _, ok := (album.Album{}).Cover(); ok {
		t.Fatal("expected no cover for empty album")
	}
}

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("exit status 1")
	err := album.Wrap(album.ErrToolInvocation, "spring", "thumbnail", "magick failed", base)
	if !errors.Is(err, album.ErrToolInvocation) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	for _, fragment := range []string{"spring", "thumbnail", "magick failed"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in error string %q", fragment, err.Error())
		}
	}
}

func TestHintMapping(t *testing.T) {
	if hint := album.Hint(album.Wrap(album.ErrEmptyAlbum, "x", "publish", "", nil)); !strings.Contains(hint, ".jpg") {
		t.Fatalf("unexpected empty-album hint %q", hint)
	}
	if hint := album.Hint(errors.New("other")); hint != "check logs for details" {
		t.Fatalf("unexpected default hint %q", hint)
	}
	if album.Hint(nil) != "" {
		t.Fatal("expected empty hint for nil error")
	}
}
