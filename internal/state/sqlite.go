package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/seleniumkit/geckoget/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS drivers (
    target_dir   TEXT PRIMARY KEY,
    version      TEXT NOT NULL,
    platform     TEXT NOT NULL,
    url          TEXT NOT NULL,
    path         TEXT NOT NULL,
    installed_at TEXT NOT NULL,
    status       TEXT NOT NULL DEFAULT 'installed'
);
`

// SQLiteState records which driver build sits in which target directory.
// Rows left in 'pending' by an interrupted install are rolled back on open.
type SQLiteState struct {
	mu           sync.RWMutex
	db           *sql.DB
	dbPath       string
	manifestPath string
}

func NewSQLite(dbPath, manifestPath string) (*SQLiteState, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &SQLiteState{
		db:           db,
		dbPath:       dbPath,
		manifestPath: manifestPath,
	}

	if err := s.recover(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to recover: %w", err)
	}

	return s, nil
}

func (s *SQLiteState) recover() error {
	rows, err := s.db.Query("SELECT target_dir, path FROM drivers WHERE status = 'pending'")
	if err != nil {
		return err
	}
	defer rows.Close()

	var pending []struct {
		targetDir string
		path      string
	}

	for rows.Next() {
		var p struct {
			targetDir string
			path      string
		}
		if err := rows.Scan(&p.targetDir, &p.path); err != nil {
			return err
		}
		pending = append(pending, p)
	}

	for _, p := range pending {
		fmt.Fprintf(os.Stderr, "recovering from interrupted install: %s\n", p.targetDir)

		if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
			return err
		}

		if _, err := s.db.Exec("DELETE FROM drivers WHERE target_dir = ?", p.targetDir); err != nil {
			return fmt.Errorf("failed to delete pending driver in %s: %w", p.targetDir, err)
		}
	}

	return nil
}

func (s *SQLiteState) insertDriver(drv *domain.InstalledDriver, status string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO drivers
		(target_dir, version, platform, url, path, installed_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		filepath.Dir(drv.Path), drv.Version, drv.Platform, drv.URL, drv.Path,
		drv.InstalledAt.Format(time.RFC3339), status)
	return err
}

func (s *SQLiteState) Load() (*domain.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT target_dir, version, platform, url, path, installed_at
		FROM drivers WHERE status = 'installed'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	manifest := domain.NewManifest()
	for rows.Next() {
		var targetDir, installedAt string
		var drv domain.InstalledDriver
		if err := rows.Scan(&targetDir, &drv.Version, &drv.Platform, &drv.URL, &drv.Path, &installedAt); err != nil {
			return nil, err
		}
		drv.InstalledAt, _ = time.Parse(time.RFC3339, installedAt)
		manifest.Drivers[targetDir] = drv
	}

	return manifest, rows.Err()
}

func (s *SQLiteState) IsInstalled(targetDir string) (bool, *domain.InstalledDriver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var drv domain.InstalledDriver
	var installedAt string

	err := s.db.QueryRow(`
		SELECT version, platform, url, path, installed_at
		FROM drivers WHERE target_dir = ? AND status = 'installed'`, targetDir).Scan(
		&drv.Version, &drv.Platform, &drv.URL, &drv.Path, &installedAt)
	if err == sql.ErrNoRows {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}

	drv.InstalledAt, _ = time.Parse(time.RFC3339, installedAt)
	return true, &drv, nil
}

func (s *SQLiteState) Add(drv *domain.InstalledDriver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.insertDriver(drv, "installed"); err != nil {
		return err
	}
	return s.exportJSON()
}

// AddPending records the install before the binary lands, so a crash between
// extract and move leaves a row recover() can act on.
func (s *SQLiteState) AddPending(drv *domain.InstalledDriver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertDriver(drv, "pending")
}

func (s *SQLiteState) MarkInstalled(targetDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("UPDATE drivers SET status = 'installed' WHERE target_dir = ?", targetDir); err != nil {
		return err
	}
	return s.exportJSON()
}

func (s *SQLiteState) Remove(targetDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM drivers WHERE target_dir = ?", targetDir); err != nil {
		return err
	}
	return s.exportJSON()
}

func (s *SQLiteState) Close() error {
	return s.db.Close()
}

// exportJSON mirrors the database into a readable manifest next to it.
func (s *SQLiteState) exportJSON() error {
	if s.manifestPath == "" {
		return nil
	}

	rows, err := s.db.Query(`
		SELECT target_dir, version, platform, url, path, installed_at
		FROM drivers WHERE status = 'installed'`)
	if err != nil {
		return err
	}
	defer rows.Close()

	manifest := domain.NewManifest()
	for rows.Next() {
		var targetDir, installedAt string
		var drv domain.InstalledDriver
		if err := rows.Scan(&targetDir, &drv.Version, &drv.Platform, &drv.URL, &drv.Path, &installedAt); err != nil {
			return err
		}
		drv.InstalledAt, _ = time.Parse(time.RFC3339, installedAt)
		manifest.Drivers[targetDir] = drv
	}
	if err := rows.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.manifestPath, data, 0644)
}
