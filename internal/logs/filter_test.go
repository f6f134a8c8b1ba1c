package logs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"photoreel/internal/logs"
)

func TestMatchAlbum(t *testing.T) {
	tests := []struct {
		label  string
		line   string
		folder string
		want   bool
	}{
		{label: "no filter", line: "anything", want: true},
		{label: "console prefix", line: "2024-05-01T10:00:00Z INFO transform[beach]: album published", folder: "beach", want: true},
		{label: "console attr", line: "2024-05-01T10:00:00Z WARN gallery: album skipped album=beach", folder: "beach", want: true},
		{label: "other album", line: "INFO transform[beach_day]: album published", folder: "beach", want: false},
		{label: "json", line: `{"level":"info","msg":"album published","album":"beach"}`, folder: "beach", want: true},
		{label: "json other", line: `{"level":"info","msg":"x","album":"beach_day"}`, folder: "beach", want: false},
	}
	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			if got := logs.MatchAlbum(tc.line, tc.folder); got != tc.want {
				t.Fatalf("MatchAlbum(%q, %q) = %v, want %v", tc.line, tc.folder, got, tc.want)
			}
		})
	}
}

func TestLastWithAlbumFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photoreel.log")
	content := "INFO transform[a]: one\nINFO transform[b]: two\nINFO transform[a]: three\nINFO sync: four\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	lines, offset, err := logs.Last(path, 5, logs.AlbumFilter("a"))
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	want := []string{"INFO transform[a]: one", "INFO transform[a]: three"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
	if offset != int64(len(content)) {
		t.Fatalf("offset = %d, want %d", offset, len(content))
	}
}
