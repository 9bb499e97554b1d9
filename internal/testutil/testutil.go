// Package testutil provides small shared helpers for tests across the
// installer's packages: temp directories, a scratch configuration, and
// basic file-existence assertions.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tsukumogami/pyinstall/internal/config"
)

// TempDir creates a temporary directory and returns a cleanup function.
func TempDir(t *testing.T) (string, func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "pyinstall-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	return dir, func() { os.RemoveAll(dir) }
}

// NewTestConfig builds a Config rooted at a fresh temporary directory,
// with every directory it names already created.
func NewTestConfig(t *testing.T) (*config.Config, func()) {
	t.Helper()
	tmpDir, cleanup := TempDir(t)

	cfg := &config.Config{
		HomeDir:      tmpDir,
		InstallsDir:  filepath.Join(tmpDir, "installs"),
		AnchorsDir:   filepath.Join(tmpDir, "anchors"),
		ScratchDir:   filepath.Join(tmpDir, "scratch"),
		CacheDir:     filepath.Join(tmpDir, "cache"),
		CatalogCache: filepath.Join(tmpDir, "cache", "catalog.json"),
		CatalogURL:   config.DefaultCatalogURL,
		LockFile:     filepath.Join(tmpDir, "installs.lock"),
	}

	if err := cfg.EnsureDirectories(); err != nil {
		cleanup()
		t.Fatalf("failed to set up test config directories: %v", err)
	}

	return cfg, cleanup
}

// FileExists reports whether a file (or directory) exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// AssertFileExists fails the test if path does not exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if !FileExists(path) {
		t.Errorf("file does not exist: %s", path)
	}
}

// AssertFileNotExists fails the test if path exists.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if FileExists(path) {
		t.Errorf("file should not exist: %s", path)
	}
}
