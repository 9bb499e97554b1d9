package pyvenv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyplatform"
)

func cpythonKey(os pyplatform.Os) pykey.Key {
	return pykey.New(pykey.NewImplementation(pykey.ImplCPython), 3, 12, 4, pykey.Prerelease{},
		os, pyplatform.ArchX8664, pyplatform.LibcGnu, pyplatform.VariantDefault)
}

func TestNewSchemePosix(t *testing.T) {
	root := "/tmp/proj/.venv"
	scheme := NewScheme(root, cpythonKey(pyplatform.OsLinux))

	require.Equal(t, filepath.Join(root, "bin"), scheme.ScriptsDir)
	require.Equal(t, filepath.Join(root, "lib", "python3.12", "site-packages"), scheme.SitePackages)
	require.Equal(t, filepath.Join(root, "include"), scheme.Include)
}

func TestNewSchemeWindows(t *testing.T) {
	root := `C:\proj\.venv`
	scheme := NewScheme(root, cpythonKey(pyplatform.OsWindows))

	require.Equal(t, filepath.Join(root, "Scripts"), scheme.ScriptsDir)
	require.Equal(t, filepath.Join(root, "Lib", "site-packages"), scheme.SitePackages)
}

func TestLibDirNameUsesImplementationStemForNonCPython(t *testing.T) {
	pypyKey := pykey.New(pykey.NewImplementation(pykey.ImplPyPy), 3, 10, 0, pykey.Prerelease{},
		pyplatform.OsLinux, pyplatform.ArchX8664, pyplatform.LibcGnu, pyplatform.VariantDefault)

	require.Equal(t, "pypy3.10", libDirName(pypyKey))
	require.Equal(t, "python3.12", libDirName(cpythonKey(pyplatform.OsLinux)))
}
