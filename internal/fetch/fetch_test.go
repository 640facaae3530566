package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFetchWritesStreamedFile(t *testing.T) {
	payload := strings.Repeat("frame", 1000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	dir := t.TempDir()
	asset, err := New().Fetch(context.Background(), server.URL+"/clips/intro.mp4", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if asset.Ext != ".mp4" {
		t.Errorf("expected .mp4 extension, got %s", asset.Ext)
	}
	if asset.Size != int64(len(payload)) {
		t.Errorf("expected %d bytes, got %d", len(payload), asset.Size)
	}
	if filepath.Dir(asset.Path) != dir {
		t.Errorf("asset written outside destination dir: %s", asset.Path)
	}

	data, err := os.ReadFile(asset.Path)
	if err != nil {
		t.Fatalf("failed to read fetched file: %v", err)
	}
	if string(data) != payload {
		t.Error("fetched content does not match served content")
	}
}

func TestFetchUniqueBasenames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer server.Close()

	dir := t.TempDir()
	f := New()

	a, err := f.Fetch(context.Background(), server.URL+"/same.mp4", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := f.Fetch(context.Background(), server.URL+"/same.mp4", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Path == b.Path {
		t.Error("two fetches of the same locator must not collide")
	}
}

func TestFetchNon2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := New().Fetch(context.Background(), server.URL+"/missing.mp4", t.TempDir())

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetch.Error, got %v", err)
	}
	if fetchErr.Kind != KindStatus {
		t.Errorf("expected http-status kind, got %s", fetchErr.Kind)
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New().Fetch(context.Background(), url+"/clip.mp4", t.TempDir())

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetch.Error, got %v", err)
	}
	if fetchErr.Kind != KindNetwork {
		t.Errorf("expected network kind, got %s", fetchErr.Kind)
	}
}

func TestExtension(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/assets/clip.mp4", ".mp4"},
		{"https://cdn.example.com/music/track.mp3", ".mp3"},
		{"https://cdn.example.com/clip.MOV", ".MOV"},
		{"https://cdn.example.com/clips/12345", ".mp4"},
		{"https://cdn.example.com/", ".mp4"},
		{"https://cdn.example.com/a/b/archive.tar.gz", ".gz"},
		{"https://cdn.example.com/clip.webm?token=abc", ".webm"},
	}

	for _, tc := range cases {
		if got := Extension(tc.url); got != tc.want {
			t.Errorf("Extension(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
