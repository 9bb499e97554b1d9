//go:build windows

package pyvenv

import (
	"fmt"
	"os"

	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pytrampoline"
)

// createExecutables writes the venv's scripts-directory trampolines
// for the canonical names plus any implementation aliases. A managed
// base's trampolines re-enter pyinstall by their own basename (see
// maybeExecTrampoline) and resolve through the per-minor junction anchor the
// registry manages (see pytrampoline); a non-managed (system) base has
// no anchor, so its trampolines resolve directly to the literal
// interpreter path instead.
func createExecutables(scheme Scheme, key pykey.Key, base Base) error {
	if err := os.MkdirAll(scheme.ScriptsDir, 0755); err != nil {
		return fmt.Errorf("failed to create scripts directory: %w", err)
	}

	names := map[string]bool{
		key.ExecutableName():      true,
		key.ExecutableNameMajor(): true,
		key.ExecutableNameMinor(): true,
	}
	for _, alias := range key.AliasNames() {
		names[alias] = true
	}

	for name := range names {
		var err error
		if base.Managed {
			err = pytrampoline.WriteLauncher(scheme.ScriptsDir, name, key)
		} else {
			err = pytrampoline.WriteDirectLauncher(scheme.ScriptsDir, name, base.Target)
		}
		if err != nil {
			return fmt.Errorf("failed to install trampoline %s: %w", name, err)
		}
	}

	return nil
}

// createLib64Compat is a no-op on Windows: there is no lib64/lib
// distinction to bridge.
func createLib64Compat(root string, key pykey.Key) error {
	return nil
}
