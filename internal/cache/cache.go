package cache

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/seleniumkit/geckoget/internal/domain"
)

// DiskCache keeps downloaded release archives keyed by version and platform,
// so reinstalls and multi-platform prefetches skip the network.
type DiskCache struct {
	sync.RWMutex
	dir string
}

func New(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) GetPath(version string, platform domain.Platform) string {
	c.RLock()
	defer c.RUnlock()
	return c.getPath(version, platform)
}

func (c *DiskCache) getPath(version string, platform domain.Platform) string {
	return filepath.Join(c.dir, version, platform.String(), "geckodriver"+archiveExt(platform))
}

func (c *DiskCache) Has(version string, platform domain.Platform) bool {
	c.RLock()
	defer c.RUnlock()
	_, err := os.Stat(c.getPath(version, platform))
	return err == nil
}

func (c *DiskCache) Store(version string, platform domain.Platform, src string) (string, error) {
	c.Lock()
	defer c.Unlock()

	destPath := c.getPath(version, platform)

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", err
	}

	if err := os.Rename(src, destPath); err != nil {
		return "", err
	}

	return destPath, nil
}

// RemoveVersion drops every cached archive for one release.
func (c *DiskCache) RemoveVersion(version string) error {
	c.Lock()
	defer c.Unlock()

	err := os.RemoveAll(filepath.Join(c.dir, version))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *DiskCache) Size() (int64, error) {
	c.RLock()
	defer c.RUnlock()

	var size int64

	err := filepath.Walk(c.dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})

	return size, err
}

func (c *DiskCache) Clear() error {
	c.Lock()
	defer c.Unlock()

	return os.RemoveAll(c.dir)
}

func archiveExt(platform domain.Platform) string {
	asset := platform.Asset()
	for _, ext := range domain.Extensions() {
		if strings.HasSuffix(asset, ext) {
			return ext
		}
	}
	return ".tar.gz"
}
