//go:build !windows

package pyvenv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyplatform"
)

// createExecutables creates the venv's scripts-directory symlinks:
// "python" points at the resolved base executable (either a managed
// interpreter's stable per-minor anchor, or a system interpreter's
// literal path); "pythonM" and "pythonM.m" (and any implementation
// aliases) point at "python" by a relative symlink, so the venv
// remains valid if its root directory is moved or renamed.
func createExecutables(scheme Scheme, key pykey.Key, base Base) error {
	if err := os.MkdirAll(scheme.ScriptsDir, 0755); err != nil {
		return fmt.Errorf("failed to create scripts directory: %w", err)
	}

	canonicalName := key.ExecutableName()
	canonical := filepath.Join(scheme.ScriptsDir, canonicalName)
	if err := symlinkReplacing(base.Target, canonical); err != nil {
		return fmt.Errorf("failed to create %s: %w", canonicalName, err)
	}

	made := map[string]bool{canonicalName: true}
	aliases := append([]string{key.ExecutableNameMajor(), key.ExecutableNameMinor()}, key.AliasNames()...)
	for _, alias := range aliases {
		if made[alias] {
			continue
		}
		made[alias] = true
		aliasPath := filepath.Join(scheme.ScriptsDir, alias)
		if err := symlinkReplacing(canonicalName, aliasPath); err != nil {
			return fmt.Errorf("failed to create alias %s: %w", alias, err)
		}
	}

	return nil
}

// symlinkReplacing creates a symlink at linkPath pointing at target,
// replacing any existing entry there.
func symlinkReplacing(target, linkPath string) error {
	os.Remove(linkPath)
	return os.Symlink(target, linkPath)
}

// createLib64Compat creates the lib64 -> lib compatibility symlink
// that 64-bit POSIX distributions other than Darwin use, tolerating
// the link already existing.
func createLib64Compat(root string, key pykey.Key) error {
	if key.Os == pyplatform.OsDarwin || !is64Bit() {
		return nil
	}
	lib64 := filepath.Join(root, "lib64")
	if err := os.Symlink("lib", lib64); err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("failed to create lib64 compatibility symlink: %w", err)
	}
	return nil
}
