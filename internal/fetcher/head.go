package fetcher

import (
	"context"
	"fmt"
	"net/http"

	"github.com/seleniumkit/geckoget/internal/domain"
)

// Stat reports the remote size of a release asset without downloading it.
func (f *HTTPFetcher) Stat(ctx context.Context, rel domain.Release) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rel.URL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "geckoget")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: unexpected status %d for %s", domain.ErrDownload, resp.StatusCode, rel.URL)
	}

	return resp.ContentLength, nil
}
