//go:build !windows

package pyvenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsukumogami/pyinstall/internal/pydiscover"
)

func fakeSystemInterpreter(t *testing.T) pydiscover.Interpreter {
	t.Helper()
	exe := filepath.Join(t.TempDir(), "python3")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755))
	return pydiscover.Interpreter{
		Path:           exe,
		Major:          3,
		Minor:          12,
		Patch:          4,
		Managed:        false,
		BaseExecutable: exe,
	}
}

func TestCreateBuildsVenvTree(t *testing.T) {
	target := filepath.Join(t.TempDir(), "myproj-venv")
	interp := fakeSystemInterpreter(t)

	venv, err := Create(Options{Path: target, Interpreter: interp})
	require.NoError(t, err)
	require.NotNil(t, venv)

	require.True(t, IsVenvDir(target))

	canonical := filepath.Join(venv.Scheme.ScriptsDir, "python")
	link, err := os.Readlink(canonical)
	require.NoError(t, err)
	require.Equal(t, interp.BaseExecutable, link)

	for _, alias := range []string{"python3", "python3.12"} {
		aliasLink, err := os.Readlink(filepath.Join(venv.Scheme.ScriptsDir, alias))
		require.NoError(t, err)
		require.Equal(t, "python", aliasLink)
	}

	require.DirExists(t, venv.Scheme.SitePackages)
	require.FileExists(t, filepath.Join(venv.Scheme.SitePackages, "_virtualenv.py"))
	require.FileExists(t, filepath.Join(venv.Scheme.SitePackages, "_virtualenv.pth"))
	require.FileExists(t, filepath.Join(target, "CACHEDIR.TAG"))
	require.FileExists(t, filepath.Join(target, ".gitignore"))
	require.FileExists(t, filepath.Join(venv.Scheme.ScriptsDir, "activate"))
	require.FileExists(t, filepath.Join(venv.Scheme.ScriptsDir, "activate.fish"))
	require.FileExists(t, filepath.Join(venv.Scheme.ScriptsDir, "activate_this.py"))

	cfg, err := ReadCfg(target)
	require.NoError(t, err)
	require.Equal(t, "3.12.4", cfg["version_info"])
	require.Equal(t, "CPython", cfg["implementation"])
	require.Equal(t, "false", cfg["include-system-site-packages"])
}

func TestCreateRejectsNonEmptyNonVenvDirectory(t *testing.T) {
	target := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(target, "README.md"), []byte("hi"), 0644))

	_, err := Create(Options{Path: target, Interpreter: fakeSystemInterpreter(t)})
	require.Error(t, err)

	var precondErr *PreconditionError
	require.ErrorAs(t, err, &precondErr)
}

func TestCreateAllowsRecreatingExistingVenv(t *testing.T) {
	target := filepath.Join(t.TempDir(), "venv")
	interp := fakeSystemInterpreter(t)

	_, err := Create(Options{Path: target, Interpreter: interp})
	require.NoError(t, err)

	_, err = Create(Options{Path: target, Interpreter: interp, AllowExisting: true, Prompt: "renamed"})
	require.NoError(t, err)

	cfg, err := ReadCfg(target)
	require.NoError(t, err)
	require.Equal(t, "renamed", cfg["prompt"])
}

func TestCreateRejectsExistingVenvWithoutAllowExisting(t *testing.T) {
	target := filepath.Join(t.TempDir(), "venv")
	interp := fakeSystemInterpreter(t)

	_, err := Create(Options{Path: target, Interpreter: interp})
	require.NoError(t, err)

	_, err = Create(Options{Path: target, Interpreter: interp})
	require.Error(t, err)
}
