package gallery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"photoreel/internal/album"
	"photoreel/internal/manifest"
)

const maxManifestBytes = 4 << 20

// Fetcher retrieves manifests from wherever the gallery reads them.
type Fetcher interface {
	FetchGlobalManifest(ctx context.Context) ([]string, error)
	FetchAlbum(ctx context.Context, folder string) (album.Album, error)
}

// HTTPDoer describes the HTTP client used by HTTPFetcher.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher reads {base}/albums.json and {base}/{folder}/data.json.
type HTTPFetcher struct {
	baseURL string
	client  HTTPDoer
}

// NewHTTPFetcher returns a fetcher rooted at baseURL. A nil client selects
// http.DefaultClient.
func NewHTTPFetcher(baseURL string, client HTTPDoer) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  client,
	}
}

func (f *HTTPFetcher) FetchGlobalManifest(ctx context.Context) ([]string, error) {
	body, err := f.get(ctx, f.baseURL+"/albums.json")
	if err != nil {
		return nil, err
	}
	return manifest.DecodeGlobalManifest(body)
}

func (f *HTTPFetcher) FetchAlbum(ctx context.Context, folder string) (album.Album, error) {
	body, err := f.get(ctx, f.baseURL+"/"+url.PathEscape(folder)+"/"+album.MetadataFile)
	if err != nil {
		return album.Album{}, err
	}
	a, err := manifest.DecodeAlbum(body)
	if err != nil {
		return album.Album{}, fmt.Errorf("%s: %w", folder, err)
	}
	a.FolderName = folder
	return a, nil
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, album.Wrap(album.ErrNotFound, "", "fetch", rawURL, nil)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return body, nil
}
