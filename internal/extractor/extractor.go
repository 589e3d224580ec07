package extractor

import (
	"fmt"
	"strings"

	"github.com/seleniumkit/geckoget/internal/domain"
)

// Extractor dispatches on the archive filename suffix. Geckodriver releases
// ship as win64 zip or macos/linux64 tar.gz; anything else is rejected before
// the file is opened, leaving it in place for cleanup.
type Extractor struct {
	tar *TARExtractor
	zip *ZIPExtractor
}

func New() *Extractor {
	return &Extractor{
		tar: NewTAR(),
		zip: NewZIP(),
	}
}

func (e *Extractor) Extract(src, dst string) error {
	lower := strings.ToLower(src)

	switch {
	case strings.HasSuffix(lower, ".zip"):
		return e.zip.Extract(src, dst)
	case strings.HasSuffix(lower, ".tar.gz"):
		return e.tar.Extract(src, dst)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, src)
	}
}
