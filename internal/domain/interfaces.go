package domain

import (
	"context"
)

type Fetcher interface {
	Fetch(ctx context.Context, rel Release, dst string) FetchResult
}

type Cache interface {
	Has(version string, platform Platform) bool
	GetPath(version string, platform Platform) string
	Store(version string, platform Platform, src string) (string, error)
	RemoveVersion(version string) error
	Size() (int64, error)
	Clear() error
}

type Extractor interface {
	Extract(src, dest string) error
}

type State interface {
	Load() (*Manifest, error)
	IsInstalled(targetDir string) (bool, *InstalledDriver, error)
	Add(drv *InstalledDriver) error
	AddPending(drv *InstalledDriver) error
	MarkInstalled(targetDir string) error
	Remove(targetDir string) error
	Close() error
}

type Registry interface {
	Latest(ctx context.Context) (string, error)
	Releases(ctx context.Context) ([]string, error)
}
