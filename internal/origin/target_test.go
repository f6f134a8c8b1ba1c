package origin_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"photoreel/internal/config"
	"photoreel/internal/origin"
	"photoreel/internal/testsupport"
)

func TestValidKey(t *testing.T) {
	cases := map[string]bool{
		"albums.json":            true,
		"beach/low/beach_1.webp": true,
		"":                       false,
		"/abs/key":               false,
		"beach/../secret":        false,
		"beach//low":             false,
		".hidden/data.json":      false,
		"beach/.partial":         false,
		`beach\low\x.webp`:       false,
	}
	for key, want := range cases {
		if got := origin.ValidKey(key); got != want {
			t.Errorf("ValidKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestLocalTargetPutListDelete(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "www")
	target, err := origin.NewLocalTarget(root)
	if err != nil {
		t.Fatalf("NewLocalTarget: %v", err)
	}

	src := filepath.Join(t.TempDir(), "x.webp")
	testsupport.WriteFile(t, src, []byte("thumb"))
	for _, key := range []string{"beach/low/x.webp", "albums.json"} {
		if err := target.Put(ctx, origin.Object{Key: key, Path: src}); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}
	if err := target.Put(ctx, origin.Object{Key: "../escape", Path: src}); err == nil {
		t.Fatal("expected invalid key to be rejected")
	}

	keys, err := target.List(ctx, "beach/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]string{"beach/low/x.webp"}, keys); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}

	if err := target.Delete(ctx, "beach/low/x.webp"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := target.Delete(ctx, "beach/low/x.webp"); err != nil {
		t.Fatalf("Delete of missing key should succeed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "beach")); !os.IsNotExist(err) {
		t.Fatalf("expected empty parents removed, stat err=%v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root must survive: %v", err)
	}
}

type s3Request struct {
	Method       string
	Path         string
	ContentType  string
	CacheControl string
}

func fakeS3(t *testing.T) (*httptest.Server, func() []s3Request) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []s3Request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		requests = append(requests, s3Request{
			Method:       r.Method,
			Path:         r.URL.Path,
			ContentType:  r.Header.Get("Content-Type"),
			CacheControl: r.Header.Get("Cache-Control"),
		})
		mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Query().Get("list-type") == "2":
			w.Header().Set("Content-Type", "application/xml")
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Name>photos</Name><Prefix>site/</Prefix><KeyCount>2</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>
<Contents><Key>site/albums.json</Key><Size>20</Size></Contents>
<Contents><Key>site/beach/low/beach_1.webp</Key><Size>5</Size></Contents>
</ListBucketResult>`)
		case r.Method == http.MethodPut:
			w.Header().Set("ETag", `"etag"`)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() []s3Request {
		mu.Lock()
		defer mu.Unlock()
		return append([]s3Request(nil), requests...)
	}
}

func TestS3TargetAgainstFakeEndpoint(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing-config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "missing-credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	srv, requests := fakeS3(t)

	ctx := context.Background()
	target, err := origin.NewS3Target(ctx, config.S3{
		Bucket:          "photos",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		Prefix:          "/site/",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("NewS3Target: %v", err)
	}
	if target.Name() != "s3://photos/site" {
		t.Fatalf("unexpected name %q", target.Name())
	}

	src := filepath.Join(t.TempDir(), "beach_1.webp")
	testsupport.WriteFile(t, src, []byte("thumb"))
	err = target.Put(ctx, origin.Object{
		Key:          "beach/low/beach_1.webp",
		Path:         src,
		ContentType:  "image/webp",
		CacheControl: "public, max-age=60",
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	keys, err := target.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]string{"albums.json", "beach/low/beach_1.webp"}, keys); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}

	if err := target.Delete(ctx, "beach/low/beach_1.webp"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got := requests()
	if len(got) != 3 {
		t.Fatalf("expected 3 requests, got %+v", got)
	}
	put := got[0]
	if put.Method != http.MethodPut || put.Path != "/photos/site/beach/low/beach_1.webp" {
		t.Fatalf("unexpected put request %+v", put)
	}
	if put.ContentType != "image/webp" || put.CacheControl != "public, max-age=60" {
		t.Fatalf("unexpected put headers %+v", put)
	}
	if got[1].Method != http.MethodGet || !strings.HasPrefix(got[1].Path, "/photos") {
		t.Fatalf("unexpected list request %+v", got[1])
	}
	if got[2].Method != http.MethodDelete || !strings.HasSuffix(got[2].Path, "/site/beach/low/beach_1.webp") {
		t.Fatalf("unexpected delete request %+v", got[2])
	}
}
