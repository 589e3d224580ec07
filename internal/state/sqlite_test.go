package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seleniumkit/geckoget/internal/domain"
)

func newTestState(t *testing.T, dir string) *SQLiteState {
	t.Helper()

	s, err := NewSQLite(filepath.Join(dir, "state.db"), filepath.Join(dir, "installed.json"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDriver(targetDir string) *domain.InstalledDriver {
	return &domain.InstalledDriver{
		Version:     "0.31.0",
		Platform:    "linux",
		URL:         "https://example.com/geckodriver-v0.31.0-linux64.tar.gz",
		Path:        filepath.Join(targetDir, "geckodriver"),
		InstalledAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestAddAndIsInstalled(t *testing.T) {
	dir := t.TempDir()
	s := newTestState(t, dir)

	target := filepath.Join(dir, "bin")
	if err := s.Add(testDriver(target)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	installed, drv, err := s.IsInstalled(target)
	if err != nil {
		t.Fatalf("IsInstalled: %v", err)
	}
	if !installed {
		t.Fatal("IsInstalled = false after Add")
	}
	if drv.Version != "0.31.0" || drv.Platform != "linux" {
		t.Errorf("driver = %+v", drv)
	}

	installed, _, err = s.IsInstalled(filepath.Join(dir, "elsewhere"))
	if err != nil {
		t.Fatal(err)
	}
	if installed {
		t.Error("IsInstalled = true for unknown target dir")
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	s := newTestState(t, dir)

	target := filepath.Join(dir, "bin")
	if err := s.Add(testDriver(target)); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(target); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	installed, _, err := s.IsInstalled(target)
	if err != nil {
		t.Fatal(err)
	}
	if installed {
		t.Error("IsInstalled = true after Remove")
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	s := newTestState(t, dir)

	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	if err := s.Add(testDriver(a)); err != nil {
		t.Fatal(err)
	}
	if err := s.Add(testDriver(b)); err != nil {
		t.Fatal(err)
	}

	manifest, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(manifest.Drivers) != 2 {
		t.Fatalf("manifest has %d drivers, want 2", len(manifest.Drivers))
	}
	if _, ok := manifest.Drivers[a]; !ok {
		t.Errorf("manifest missing %s", a)
	}
}

func TestManifestJSONExport(t *testing.T) {
	dir := t.TempDir()
	s := newTestState(t, dir)

	target := filepath.Join(dir, "bin")
	if err := s.Add(testDriver(target)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "installed.json"))
	if err != nil {
		t.Fatalf("manifest not exported: %v", err)
	}

	var manifest domain.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("manifest not valid JSON: %v", err)
	}
	if _, ok := manifest.Drivers[target]; !ok {
		t.Errorf("exported manifest missing %s", target)
	}
}

func TestPendingRecovery(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "bin")
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatal(err)
	}

	drv := testDriver(target)
	if err := os.WriteFile(drv.Path, []byte("half-installed"), 0755); err != nil {
		t.Fatal(err)
	}

	s, err := NewSQLite(filepath.Join(dir, "state.db"), "")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddPending(drv); err != nil {
		t.Fatalf("AddPending: %v", err)
	}
	s.Close()

	// reopening rolls the interrupted install back
	s2, err := NewSQLite(filepath.Join(dir, "state.db"), "")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	if _, err := os.Stat(drv.Path); !os.IsNotExist(err) {
		t.Error("pending binary not removed on recovery")
	}

	installed, _, err := s2.IsInstalled(target)
	if err != nil {
		t.Fatal(err)
	}
	if installed {
		t.Error("pending row survived recovery")
	}
}

func TestMarkInstalled(t *testing.T) {
	dir := t.TempDir()
	s := newTestState(t, dir)

	target := filepath.Join(dir, "bin")
	drv := testDriver(target)
	if err := s.AddPending(drv); err != nil {
		t.Fatal(err)
	}

	installed, _, err := s.IsInstalled(target)
	if err != nil {
		t.Fatal(err)
	}
	if installed {
		t.Fatal("pending row reported as installed")
	}

	if err := s.MarkInstalled(target); err != nil {
		t.Fatalf("MarkInstalled: %v", err)
	}

	installed, drv2, err := s.IsInstalled(target)
	if err != nil {
		t.Fatal(err)
	}
	if !installed {
		t.Fatal("IsInstalled = false after MarkInstalled")
	}
	if drv2.Version != drv.Version {
		t.Errorf("version = %q", drv2.Version)
	}
}
