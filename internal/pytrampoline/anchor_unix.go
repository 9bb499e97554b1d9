//go:build !windows

package pytrampoline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsukumogami/pyinstall/internal/pykey"
)

// Retarget atomically points the per-minor anchor for key at target
// (an installed interpreter's directory), creating or replacing it.
// The anchor is a symlink; atomicity comes from creating a new symlink
// under a temporary name and renaming it over the old one, which POSIX
// guarantees is atomic on a single filesystem.
func Retarget(anchorsDir string, key pykey.Key, target string) error {
	if err := os.MkdirAll(anchorsDir, 0755); err != nil {
		return fmt.Errorf("failed to create anchors directory: %w", err)
	}

	anchorPath := AnchorPath(anchorsDir, key)
	tmpPath := anchorPath + ".tmp"

	os.Remove(tmpPath)
	if err := os.Symlink(target, tmpPath); err != nil {
		return fmt.Errorf("failed to create anchor symlink: %w", err)
	}

	if err := os.Rename(tmpPath, anchorPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to retarget anchor: %w", err)
	}

	return nil
}

// Resolve returns the current target of the per-minor anchor for key.
func Resolve(anchorsDir string, key pykey.Key) (string, error) {
	anchorPath := AnchorPath(anchorsDir, key)
	target, err := os.Readlink(anchorPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrAnchorMissing
		}
		return "", fmt.Errorf("failed to resolve anchor: %w", err)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(anchorsDir, target)
	}
	return target, nil
}

// Remove deletes the per-minor anchor for key, if present.
func Remove(anchorsDir string, key pykey.Key) error {
	anchorPath := AnchorPath(anchorsDir, key)
	if err := os.Remove(anchorPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove anchor: %w", err)
	}
	return nil
}
