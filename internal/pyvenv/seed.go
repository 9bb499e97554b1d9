package pyvenv

import (
	"os"
	"path/filepath"
)

// cacheDirTag is the standard marker (https://bford.info/cachedir/)
// telling backup and indexing tools to skip the venv tree.
const cacheDirTag = "Signature: 8a477f597d28d172789f06886806bc55\n" +
	"# This file is a cache directory tag created by pyinstall.\n" +
	"# For information about cache directory tags see https://bford.info/cachedir/\n"

// virtualenvPy is dropped into site-packages alongside a .pth file that
// imports it, the same indirection CPython's own venv module and
// virtualenv use to patch site initialization (disabling user site
// packages unless explicitly re-enabled, and keeping the venv's
// site-packages authoritative) without modifying the interpreter
// itself.
const virtualenvPy = `"""Site customization installed by pyinstall's venv builder.

Imported automatically by Python's site module via _virtualenv.pth.
Disables user site-packages inside this venv, matching the isolation
a virtual environment is expected to provide.
"""
import os
import site
import sys

site.ENABLE_USER_SITE = False

if hasattr(sys, "pypy_version_info"):
    # PyPy computes sys.path before site customization can run; nothing
    # further is needed here.
    pass
`

const virtualenvPth = "import _virtualenv\n"

// seedSitePackages creates the site-packages directory and drops the
// _virtualenv.py/_virtualenv.pth pair that patches site initialization
// on interpreter start.
func seedSitePackages(scheme Scheme) error {
	if err := os.MkdirAll(scheme.SitePackages, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(scheme.SitePackages, "_virtualenv.py"), []byte(virtualenvPy), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(scheme.SitePackages, "_virtualenv.pth"), []byte(virtualenvPth), 0644); err != nil {
		return err
	}
	return nil
}

// writeCacheAndGitignore drops the CACHEDIR.TAG marker and a
// catch-all .gitignore at the venv root, so the tree is excluded from
// backups and version control by default.
func writeCacheAndGitignore(root string) error {
	if err := os.WriteFile(filepath.Join(root, "CACHEDIR.TAG"), []byte(cacheDirTag), 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*\n"), 0644)
}
