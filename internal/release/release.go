package release

import (
	"fmt"
	"strings"

	"github.com/seleniumkit/geckoget/internal/domain"
)

// DefaultBaseURL points at the upstream geckodriver release page.
const DefaultBaseURL = "https://github.com/mozilla/geckodriver/releases"

// URL builds the download URL for one geckodriver build. Assets follow the
// upstream naming scheme geckodriver-v<version>-<platform suffix>.
func URL(baseURL, version string, p domain.Platform) string {
	base := strings.TrimSuffix(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return fmt.Sprintf("%s/download/v%s/geckodriver-v%s-%s", base, version, version, p.Asset())
}

// Resolve maps a (version, platform) pair onto a concrete Release.
func Resolve(baseURL, version string, p domain.Platform) domain.Release {
	return domain.Release{
		Version:  version,
		Platform: p,
		URL:      URL(baseURL, version, p),
	}
}
