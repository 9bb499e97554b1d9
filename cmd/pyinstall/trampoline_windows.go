//go:build windows

package main

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/tsukumogami/pyinstall/internal/config"
	"github.com/tsukumogami/pyinstall/internal/pytrampoline"
)

// maybeExecTrampoline re-enters as a copied trampoline binary when the
// running executable's own basename is recorded in its directory's
// trampoline manifest. A venv's Scripts directory holds byte-for-byte
// copies of this binary named python.exe and friends; this is the
// path those copies take on every invocation,
// ahead of any cobra command parsing, forwarding argv[1:] to the
// interpreter the trampoline resolves to.
func maybeExecTrampoline() bool {
	self, err := os.Executable()
	if err != nil {
		return false
	}
	scriptsDir := filepath.Dir(self)
	name := filepath.Base(self)

	if _, ok, lookupErr := pytrampoline.LookupTrampoline(scriptsDir, name); lookupErr != nil || !ok {
		return false
	}

	c, err := config.DefaultConfig()
	if err != nil {
		printError(err)
		exitWithCode(ExitGeneral)
		return true
	}

	if err := pytrampoline.Exec(c.AnchorsDir, scriptsDir, name, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitWithCode(exitErr.ExitCode())
			return true
		}
		printError(err)
		exitWithCode(ExitGeneral)
		return true
	}

	exitWithCode(ExitSuccess)
	return true
}
