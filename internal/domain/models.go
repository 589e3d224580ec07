package domain

import "time"

// Release identifies one downloadable geckodriver build.
type Release struct {
	Version  string
	Platform Platform
	URL      string
	SHA256   string
}

type FetchResult struct {
	Version string
	Path    string
	Error   error
}

type InstalledDriver struct {
	Version     string    `json:"version"`
	Platform    string    `json:"platform"`
	URL         string    `json:"url"`
	Path        string    `json:"path"`
	InstalledAt time.Time `json:"installed_at"`
}

type Manifest struct {
	Drivers map[string]InstalledDriver `json:"drivers"`
}

func NewManifest() *Manifest {
	return &Manifest{Drivers: make(map[string]InstalledDriver)}
}

// Extensions lists the archive suffixes geckodriver releases ship with.
func Extensions() []string {
	return []string{".tar.gz", ".zip"}
}
