package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/seleniumkit/geckoget/internal/domain"
)

type HTTPFetcher struct {
	client *http.Client
	quiet  bool
}

func New(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// NewQuiet returns a fetcher that skips the progress bar.
func NewQuiet(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		quiet:  true,
	}
}

// Fetch downloads rel to dst. Transport and HTTP failures are reported in the
// result, wrapped so callers can match on domain.ErrDownload.
func (f *HTTPFetcher) Fetch(ctx context.Context, rel domain.Release, dst string) domain.FetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rel.URL, nil)
	if err != nil {
		return f.fail(rel, err)
	}
	req.Header.Set("User-Agent", "geckoget")

	resp, err := f.client.Do(req)
	if err != nil {
		return f.fail(rel, fmt.Errorf("%w: %v", domain.ErrDownload, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return f.fail(rel, fmt.Errorf("%w: unexpected status %d for %s", domain.ErrDownload, resp.StatusCode, rel.URL))
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return f.fail(rel, err)
	}

	file, err := os.Create(dst)
	if err != nil {
		return f.fail(rel, err)
	}
	defer file.Close()

	var w io.Writer = file
	if !f.quiet {
		bar := progressbar.DefaultBytes(
			resp.ContentLength,
			fmt.Sprintf("Downloading geckodriver %s", rel.Version),
		)
		w = io.MultiWriter(file, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return f.fail(rel, fmt.Errorf("%w: %v", domain.ErrDownload, err))
	}

	if rel.SHA256 != "" {
		actual, err := computeChecksum(dst)
		if err != nil {
			return f.fail(rel, err)
		}

		if actual != rel.SHA256 {
			os.Remove(dst)
			return f.fail(rel, fmt.Errorf("checksum mismatch: expected %s, got %s", rel.SHA256, actual))
		}
	}

	return domain.FetchResult{Version: rel.Version, Path: dst}
}

func (f *HTTPFetcher) fail(rel domain.Release, err error) domain.FetchResult {
	return domain.FetchResult{Version: rel.Version, Error: err}
}

func computeChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
