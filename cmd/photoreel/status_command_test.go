package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"photoreel/internal/album"
	"photoreel/internal/testsupport"
)

func TestStatusReportsAlbumsAndChecks(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeRawAlbum(t, "raw", "1.jpg")
	env.writeRawAlbum(t, "pending", "1.jpg", "2.jpg")
	publishForTest(t, env, "raw", "Published")

	out, _, err := runCLI(t, env, "", "status")
	if err != nil {
		t.Fatalf("status: %v\n%s", err, out)
	}
	requireContains(t, out, "1 published, 1 raw")
	requireContains(t, out, "Ready (magick at "+filepath.Join(testsupport.BaseDir(env.cfg), "bin", "magick")+")")
	requireContains(t, out, "not configured (sync disabled)")

	out, _, err = runCLI(t, env, "", "status", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var report statusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if len(report.Albums) != 2 {
		t.Fatalf("expected 2 albums, got %+v", report.Albums)
	}
	if report.Albums[0].FolderName != "pending" || report.Albums[0].State != album.StateRaw || report.Albums[0].Sources != 2 {
		t.Fatalf("unexpected pending status: %+v", report.Albums[0])
	}
	if report.Albums[1].FolderName != "published" || report.Albums[1].State != album.StatePublished {
		t.Fatalf("unexpected published status: %+v", report.Albums[1])
	}
}

func TestStatusFailsWhenThumbnailToolMissing(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithEmptyPath())

	out, _, err := runCLI(t, env, "", "status")
	if err == nil {
		t.Fatal("expected status to fail without the thumbnail tool")
	}
	requireContains(t, out, "Missing dependencies")
}

func TestSyncWithoutOrigin(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "sync")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	requireContains(t, out, "No origin configured; skipping sync")
}

func TestManifestRegenerateAndShow(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "", "manifest", "show"); err == nil {
		t.Fatal("expected error before the manifest exists")
	}

	env.writeRawAlbum(t, "raw", "1.jpg")
	publishForTest(t, env, "raw", "Alpha")

	out, _, err := runCLI(t, env, "", "manifest", "regenerate")
	if err != nil {
		t.Fatalf("manifest regenerate: %v", err)
	}
	requireContains(t, out, "with 1 album(s)")

	out, _, err = runCLI(t, env, "", "manifest", "show", "--json")
	if err != nil {
		t.Fatalf("manifest show: %v", err)
	}
	requireContains(t, out, `"alpha"`)
}

func TestLogsShowsTrailingLines(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.cfg.LogDir(), "photoreel.log"), []byte("one\ntwo\nthree\n"))

	out, _, err := runCLI(t, env, "", "logs", "-n", "2")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "two\nthree\n" {
		t.Fatalf("logs output = %q", out)
	}
}

func TestLogsFiltersByAlbum(t *testing.T) {
	env := setupCLITestEnv(t)
	content := "INFO transform[beach]: album published\nINFO transform[city]: album published\nWARN gallery: album skipped album=beach\n"
	testsupport.WriteFile(t, filepath.Join(env.cfg.LogDir(), "photoreel.log"), []byte(content))

	out, _, err := runCLI(t, env, "", "logs", "--album", "beach")
	if err != nil {
		t.Fatalf("logs --album: %v", err)
	}
	want := "INFO transform[beach]: album published\nWARN gallery: album skipped album=beach\n"
	if out != want {
		t.Fatalf("logs output = %q, want %q", out, want)
	}
}
