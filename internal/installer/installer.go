package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/seleniumkit/geckoget/internal/domain"
	"github.com/seleniumkit/geckoget/internal/release"
)

// Options configures one install run. GOOS defaults to the host OS; setting it
// lets tests exercise the platform mapping without cross-compiling.
type Options struct {
	TargetDir     string
	Version       string
	BaseURL       string
	SHA256        string
	GOOS          string
	DirectExtract bool
}

// Installer places a geckodriver binary into a target directory. The staged
// variant extracts into a transient directory and moves the binary over; the
// direct variant extracts straight into the target directory.
type Installer struct {
	fetcher  domain.Fetcher
	cache    domain.Cache
	extract  domain.Extractor
	state    domain.State
	rel      domain.Release
	platform domain.Platform
	target   string
	direct   bool

	downloadPath string
	downloadDir  string
	stagingDir   string
}

// New validates the target directory and resolves the platform before any
// network activity. A missing target directory or an OS outside the release
// matrix fails here.
func New(
	fetcher domain.Fetcher,
	cache domain.Cache,
	extract domain.Extractor,
	state domain.State,
	opts Options,
) (*Installer, error) {
	info, err := os.Stat(opts.TargetDir)
	if err != nil {
		return nil, fmt.Errorf("target directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotADirectory, opts.TargetDir)
	}

	goos := opts.GOOS
	var platform domain.Platform
	if goos == "" {
		platform, err = domain.CurrentPlatform()
	} else {
		platform, err = domain.DetectPlatform(goos)
	}
	if err != nil {
		return nil, err
	}

	rel := release.Resolve(opts.BaseURL, opts.Version, platform)
	rel.SHA256 = opts.SHA256

	return &Installer{
		fetcher:  fetcher,
		cache:    cache,
		extract:  extract,
		state:    state,
		rel:      rel,
		platform: platform,
		target:   opts.TargetDir,
		direct:   opts.DirectExtract,
	}, nil
}

// Release reports what the installer resolved to download.
func (i *Installer) Release() domain.Release {
	return i.rel
}

// Install runs the pipeline: fetch, extract, move into place, record state.
// Cleanup of the downloaded archive and the staging directory runs on every
// exit path. The error is returned to the caller; nothing is swallowed here.
func (i *Installer) Install(ctx context.Context) (drv *domain.InstalledDriver, err error) {
	defer func() {
		if cerr := i.Cleanup(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	archivePath, err := i.obtainArchive(ctx)
	if err != nil {
		return nil, err
	}

	binaryPath := filepath.Join(i.target, i.platform.DriverFilename())

	drv = &domain.InstalledDriver{
		Version:     i.rel.Version,
		Platform:    i.platform.String(),
		URL:         i.rel.URL,
		Path:        binaryPath,
		InstalledAt: time.Now(),
	}

	if i.state != nil {
		if err := i.state.AddPending(drv); err != nil {
			return nil, err
		}
	}

	if i.direct {
		if err := i.extract.Extract(archivePath, i.target); err != nil {
			return nil, err
		}
	} else {
		staging, err := os.MkdirTemp("", "geckoget-*")
		if err != nil {
			return nil, err
		}
		i.stagingDir = staging

		if err := i.extract.Extract(archivePath, staging); err != nil {
			return nil, err
		}

		if err := i.moveToTarget(staging, binaryPath); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(binaryPath); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDriverNotFound, binaryPath)
	}

	if i.state != nil {
		if err := i.state.MarkInstalled(i.target); err != nil {
			return nil, err
		}
	}

	return drv, nil
}

// obtainArchive puts the release archive somewhere extractable and returns its
// path. The staged variant goes through the cache; the direct variant drops
// the archive into the target directory under the URL's final path segment.
func (i *Installer) obtainArchive(ctx context.Context) (string, error) {
	if i.direct {
		dst := filepath.Join(i.target, path.Base(i.rel.URL))
		result := i.fetcher.Fetch(ctx, i.rel, dst)
		if result.Error != nil {
			return "", result.Error
		}
		i.downloadPath = result.Path
		return result.Path, nil
	}

	if i.cache != nil && i.cache.Has(i.rel.Version, i.platform) {
		return i.cache.GetPath(i.rel.Version, i.platform), nil
	}

	tmpDir, err := os.MkdirTemp("", "geckoget-dl-*")
	if err != nil {
		return "", err
	}
	i.downloadDir = tmpDir

	dst := filepath.Join(tmpDir, path.Base(i.rel.URL))
	i.downloadPath = dst

	result := i.fetcher.Fetch(ctx, i.rel, dst)
	if result.Error != nil {
		return "", result.Error
	}

	if i.cache != nil {
		stored, err := i.cache.Store(i.rel.Version, i.platform, result.Path)
		if err == nil {
			// the download file was renamed into the cache
			return stored, nil
		}
	}

	return result.Path, nil
}

// moveToTarget locates the driver binary inside the staging directory and
// moves it into place.
func (i *Installer) moveToTarget(staging, binaryPath string) error {
	src := filepath.Join(staging, i.platform.DriverFilename())
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s in %s", domain.ErrDriverNotFound, i.platform.DriverFilename(), staging)
		}
		return err
	}

	return moveFile(src, binaryPath)
}

// Cleanup removes the downloaded archive and the staging directory if they
// exist. Safe to call repeatedly and before anything was downloaded.
func (i *Installer) Cleanup() error {
	if i.downloadPath != "" {
		if _, err := os.Stat(i.downloadPath); err == nil {
			if err := os.Remove(i.downloadPath); err != nil {
				return err
			}
		}
	}

	if i.downloadDir != "" {
		if _, err := os.Stat(i.downloadDir); err == nil {
			if err := os.RemoveAll(i.downloadDir); err != nil {
				return err
			}
		}
	}

	if i.stagingDir != "" {
		if _, err := os.Stat(i.stagingDir); err == nil {
			if err := os.RemoveAll(i.stagingDir); err != nil {
				return err
			}
		}
	}

	return nil
}

// Uninstall removes the placed binary, its cached archives, and the state row.
func (i *Installer) Uninstall(ctx context.Context) (*domain.InstalledDriver, error) {
	var drv *domain.InstalledDriver
	if i.state != nil {
		installed, rec, err := i.state.IsInstalled(i.target)
		if err != nil {
			return nil, err
		}
		if !installed {
			return nil, fmt.Errorf("no driver installed in %s", i.target)
		}
		drv = rec
	}

	binaryPath := filepath.Join(i.target, i.platform.DriverFilename())
	if drv != nil {
		binaryPath = drv.Path
	}

	if err := os.Remove(binaryPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if i.cache != nil && drv != nil {
		if err := i.cache.RemoveVersion(drv.Version); err != nil {
			return nil, err
		}
	}

	if i.state != nil {
		if err := i.state.Remove(i.target); err != nil {
			return nil, err
		}
	}

	return drv, nil
}

// moveFile renames, falling back to copy+remove when the staging directory
// sits on a different filesystem than the target.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}

	return os.Remove(src)
}
