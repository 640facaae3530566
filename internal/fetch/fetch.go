package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind classifies what part of a download failed. The API layer treats
// all of them as a bad/unreachable input from the caller.
type Kind string

const (
	KindNetwork Kind = "network"
	KindStatus  Kind = "http-status"
	KindIO      Kind = "io"
)

// Error is a failed asset download.
type Error struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to download %s (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Asset is a remote file materialized inside a job workspace. It is owned
// by that workspace and disappears with it.
type Asset struct {
	Path string
	Ext  string
	Size int64
}

// Fetcher downloads remote assets into a local directory. Inputs can be
// large video files, so response bodies are streamed to disk rather than
// buffered in memory.
type Fetcher struct {
	client *http.Client
}

func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Fetch streams the resource at rawURL into a freshly named file under
// destDir. The basename is a generated uuid so concurrent downloads into
// the same workspace never collide; the extension comes from the locator.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destDir string) (*Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindStatus, URL: rawURL, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	ext := Extension(rawURL)
	dest := filepath.Join(destDir, uuid.New().String()+ext)

	file, err := os.Create(dest)
	if err != nil {
		return nil, &Error{Kind: KindIO, URL: rawURL, Err: err}
	}

	size, err := io.Copy(file, resp.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return nil, &Error{Kind: KindIO, URL: rawURL, Err: err}
	}

	return &Asset{Path: dest, Ext: ext, Size: size}, nil
}

// Extension derives the file extension from the last path segment of the
// locator. Locators without a dotted extension default to .mp4.
func Extension(rawURL string) string {
	seg := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		seg = u.Path
	}
	if i := strings.LastIndex(seg, "/"); i >= 0 {
		seg = seg[i+1:]
	}
	if ext := path.Ext(seg); ext != "" {
		return ext
	}
	return ".mp4"
}
