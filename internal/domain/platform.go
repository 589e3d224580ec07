package domain

import (
	"fmt"
	"runtime"
)

// Platform is the closed set of operating systems geckodriver releases cover.
type Platform int

const (
	Windows Platform = iota
	Darwin
	Linux
)

func Platforms() []Platform {
	return []Platform{Windows, Darwin, Linux}
}

// CurrentPlatform resolves the host OS once at startup.
func CurrentPlatform() (Platform, error) {
	return DetectPlatform(runtime.GOOS)
}

func DetectPlatform(goos string) (Platform, error) {
	switch goos {
	case "windows":
		return Windows, nil
	case "darwin":
		return Darwin, nil
	case "linux":
		return Linux, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, goos)
	}
}

func (p Platform) String() string {
	switch p {
	case Windows:
		return "windows"
	case Darwin:
		return "darwin"
	default:
		return "linux"
	}
}

// Asset is the release asset suffix published for the platform.
func (p Platform) Asset() string {
	switch p {
	case Windows:
		return "win64.zip"
	case Darwin:
		return "macos.tar.gz"
	default:
		return "linux64.tar.gz"
	}
}

// DriverFilename is the executable name inside the archive and in the target dir.
func (p Platform) DriverFilename() string {
	if p == Windows {
		return "geckodriver.exe"
	}
	return "geckodriver"
}
