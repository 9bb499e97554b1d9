// Package pytrampoline manages the per-minor anchor that indirects a
// venv's base executable to a managed interpreter's current patch
// directory: a symlink on POSIX, a junction plus launcher trampoline on
// Windows. Retargeting an anchor during a patch upgrade is atomic, so
// concurrent readers never observe a broken link.
package pytrampoline

import (
	"fmt"
	"path/filepath"

	"github.com/tsukumogami/pyinstall/internal/pykey"
)

// AnchorName returns the per-minor anchor's name: stable across patch
// upgrades, varying only with (implementation, major, minor, variant,
// os, arch, libc).
func AnchorName(key pykey.Key) string {
	return key.MinorKey()
}

// AnchorPath returns the full path to the anchor for key under anchorsDir.
func AnchorPath(anchorsDir string, key pykey.Key) string {
	return filepath.Join(anchorsDir, AnchorName(key))
}

// ErrAnchorMissing is returned by Resolve when no anchor exists for the
// requested key.
var ErrAnchorMissing = fmt.Errorf("anchor not found")
