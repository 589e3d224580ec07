package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const releasesJSON = `[
  {"tag_name": "v0.37.0-rc1", "prerelease": true},
  {"tag_name": "v0.36.0", "prerelease": false},
  {"tag_name": "v0.35.0", "prerelease": false}
]`

func newFakeAPI(t *testing.T, hits *int) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			*hits++
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(releasesJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLatestSkipsPrerelease(t *testing.T) {
	srv := newFakeAPI(t, nil)
	g := NewWithURL(srv.URL, t.TempDir())

	latest, err := g.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest != "0.36.0" {
		t.Errorf("Latest = %q, want 0.36.0", latest)
	}
}

func TestReleases(t *testing.T) {
	srv := newFakeAPI(t, nil)
	g := NewWithURL(srv.URL, t.TempDir())

	versions, err := g.Releases(context.Background())
	if err != nil {
		t.Fatalf("Releases: %v", err)
	}
	want := []string{"0.36.0", "0.35.0"}
	if len(versions) != len(want) {
		t.Fatalf("Releases = %v, want %v", versions, want)
	}
	for i := range want {
		if versions[i] != want[i] {
			t.Errorf("Releases[%d] = %q, want %q", i, versions[i], want[i])
		}
	}
}

func TestIndexFetchedOnce(t *testing.T) {
	var hits int
	srv := newFakeAPI(t, &hits)
	g := NewWithURL(srv.URL, t.TempDir())

	ctx := context.Background()
	if _, err := g.Latest(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Releases(ctx); err != nil {
		t.Fatal(err)
	}

	if hits != 1 {
		t.Errorf("API hit %d times, want 1", hits)
	}
}

func TestDiskCacheServesFreshIndex(t *testing.T) {
	cacheDir := t.TempDir()

	var hits int
	srv := newFakeAPI(t, &hits)

	g := NewWithURL(srv.URL, cacheDir)
	if _, err := g.Latest(context.Background()); err != nil {
		t.Fatal(err)
	}
	if hits != 1 {
		t.Fatalf("API hit %d times, want 1", hits)
	}

	// a second registry with an unreachable API must be served from disk
	g2 := NewWithURL("http://127.0.0.1:1/nope", cacheDir)
	latest, err := g2.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest from cache: %v", err)
	}
	if latest != "0.36.0" {
		t.Errorf("Latest = %q", latest)
	}
}

func TestStaleCacheIgnored(t *testing.T) {
	cacheDir := t.TempDir()
	path := filepath.Join(cacheDir, "releases.json")
	if err := os.WriteFile(path, []byte(`[{"tag_name": "v0.1.0", "prerelease": false}]`), 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	srv := newFakeAPI(t, nil)
	g := NewWithURL(srv.URL, cacheDir)

	latest, err := g.Latest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if latest != "0.36.0" {
		t.Errorf("Latest = %q, stale cache should have been refetched", latest)
	}
}
