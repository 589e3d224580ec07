package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const defaultAPIURL = "https://api.github.com/repos/mozilla/geckodriver/releases"

// GitHubRegistry lists published geckodriver releases, with a short-lived
// on-disk cache so repeated commands don't hammer the API.
type GitHubRegistry struct {
	sync.RWMutex
	client   *http.Client
	apiURL   string
	cacheDir string
	index    []releaseEntry
	indexMu  sync.Once
	indexErr error
}

type releaseEntry struct {
	TagName    string `json:"tag_name"`
	Prerelease bool   `json:"prerelease"`
}

func New(cacheDir string) *GitHubRegistry {
	return &GitHubRegistry{
		client:   &http.Client{},
		apiURL:   defaultAPIURL,
		cacheDir: cacheDir,
	}
}

// NewWithURL is used by tests to point at a fake API.
func NewWithURL(apiURL, cacheDir string) *GitHubRegistry {
	return &GitHubRegistry{
		client:   &http.Client{},
		apiURL:   apiURL,
		cacheDir: cacheDir,
	}
}

func (g *GitHubRegistry) decodeIndex(r io.Reader) ([]releaseEntry, error) {
	var entries []releaseEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (g *GitHubRegistry) loadIndex(ctx context.Context) error {
	g.indexMu.Do(func() {
		if cached, ok := g.getFromCache(10 * time.Minute); ok {
			index, err := g.decodeIndex(bytes.NewReader(cached))
			if err == nil {
				g.index = index
				return
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL, nil)
		if err != nil {
			g.indexErr = fmt.Errorf("creating request: %w", err)
			return
		}
		req.Header.Set("User-Agent", "geckoget")
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err := g.client.Do(req)
		if err != nil {
			g.indexErr = fmt.Errorf("fetching releases: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			g.indexErr = fmt.Errorf("unexpected status: %d", resp.StatusCode)
			return
		}

		var buf bytes.Buffer
		reader := io.TeeReader(resp.Body, &buf)

		index, err := g.decodeIndex(reader)
		if err != nil {
			g.indexErr = fmt.Errorf("decoding response: %w", err)
			return
		}

		g.index = index
		_ = g.storeToCache(buf.Bytes())
	})
	return g.indexErr
}

// Latest returns the newest stable release version, without the "v" prefix.
func (g *GitHubRegistry) Latest(ctx context.Context) (string, error) {
	if err := g.loadIndex(ctx); err != nil {
		return "", err
	}

	for _, e := range g.index {
		if e.Prerelease {
			continue
		}
		return strings.TrimPrefix(e.TagName, "v"), nil
	}

	return "", fmt.Errorf("no stable release found")
}

// Releases returns all stable release versions, newest first.
func (g *GitHubRegistry) Releases(ctx context.Context) ([]string, error) {
	if err := g.loadIndex(ctx); err != nil {
		return nil, err
	}

	versions := make([]string, 0, len(g.index))
	for _, e := range g.index {
		if e.Prerelease {
			continue
		}
		versions = append(versions, strings.TrimPrefix(e.TagName, "v"))
	}

	return versions, nil
}

func (g *GitHubRegistry) getFromCache(ttl time.Duration) ([]byte, bool) {
	g.RLock()
	defer g.RUnlock()

	path := filepath.Join(g.cacheDir, "releases.json")
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}

	if time.Since(info.ModTime()) > ttl {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	return data, true
}

func (g *GitHubRegistry) storeToCache(data []byte) error {
	g.Lock()
	defer g.Unlock()

	if err := os.MkdirAll(g.cacheDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(g.cacheDir, "releases.json")
	return os.WriteFile(path, data, 0644)
}
