package pyvenv

import (
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyplatform"
)

// Scheme is the set of directories a venv's interpreter will look in
// for its standard library, installed packages, and scripts. It
// mirrors CPython's installation scheme, computed relative to a venv
// root rather than queried from a running interpreter.
type Scheme struct {
	Root         string // the venv directory itself
	ScriptsDir   string // bin/ or Scripts/
	SitePackages string // purelib == platlib for a venv
	Include      string // headers for building C extensions against this venv
}

// NewScheme computes the on-disk layout for a venv rooted at root,
// targeting the given implementation/version/os.
func NewScheme(root string, key pykey.Key) Scheme {
	scripts := filepath.Join(root, pyplatform.ScriptsDirName(key.Os))

	var sitePackages string
	if key.Os == pyplatform.OsWindows {
		sitePackages = filepath.Join(root, "Lib", "site-packages")
	} else {
		libDirName := libDirName(key)
		sitePackages = filepath.Join(root, "lib", libDirName, "site-packages")
	}

	return Scheme{
		Root:         root,
		ScriptsDir:   scripts,
		SitePackages: sitePackages,
		Include:      filepath.Join(root, "include"),
	}
}

// libDirName returns the "pythonM.m" (or implementation-equivalent)
// directory CPython nests its POSIX standard-library/site-packages
// tree under, e.g. "python3.12". PyPy and GraalPy use their own
// implementation-prefixed form.
func libDirName(key pykey.Key) string {
	stem := "python"
	if key.Implementation.IsKnown() && key.Implementation.Known() != pykey.ImplCPython {
		stem = key.Implementation.String()
	}
	return stem + relativeVersion(key)
}

func relativeVersion(key pykey.Key) string {
	return strconv.Itoa(int(key.Major)) + "." + strconv.Itoa(int(key.Minor))
}

// is64Bit reports whether the running build targets a 64-bit platform,
// used to decide whether a lib64 -> lib compatibility symlink applies.
func is64Bit() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64", "ppc64", "ppc64le", "riscv64", "mips64", "mips64le", "s390x":
		return true
	default:
		return false
	}
}
