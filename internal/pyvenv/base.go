package pyvenv

import (
	"github.com/tsukumogami/pyinstall/internal/pydiscover"
	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyregistry"
)

// Base describes the interpreter a new venv should bind its scripts
// directory to.
type Base struct {
	// Managed reports whether the interpreter came from the registry of
	// managed installations (as opposed to a system/PATH interpreter).
	Managed bool
	// Target is the path POSIX symlinks are created against, and the
	// literal executable a non-managed Windows venv's trampoline execs
	// directly: the registry's per-minor anchor path when Managed, or
	// the interpreter's own base executable otherwise.
	Target string
	// Key is the installation key identifying the anchor a managed,
	// Windows venv's trampolines should resolve through. Zero value
	// when !Managed.
	Key pykey.Key
}

// ResolveBase computes the Base for interp: managed interpreters bind
// through the registry's stable per-minor anchor (so a later patch
// upgrade stays transparent to the venv); everything else
// binds directly to the interpreter's own base executable, the way
// CPython's venv module resolves sys._base_executable.
//
// key must be the installation key for interp when interp.Managed is
// true; registry resolves the anchor path for that key. Both are
// ignored when interp is not managed.
func ResolveBase(interp pydiscover.Interpreter, key pykey.Key, registry *pyregistry.Registry) Base {
	if interp.Managed {
		// POSIX symlinks point straight at the anchor path; Windows
		// trampolines resolve through the anchor by name instead
		// (AnchorPath is kept here for diagnostics and for the POSIX
		// symlink target).
		return Base{
			Managed: true,
			Target:  registry.AnchorPath(key),
			Key:     key,
		}
	}

	base := interp.BaseExecutable
	if base == "" {
		base = interp.Path
	}
	return Base{Managed: false, Target: base}
}
