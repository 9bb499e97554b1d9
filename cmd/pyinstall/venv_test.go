package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsukumogami/pyinstall/internal/pydiscover"
	"github.com/tsukumogami/pyinstall/internal/pyregistry"
)

func TestVenvRequestDefault(t *testing.T) {
	origPython := venvPython
	defer func() { venvPython = origPython }()

	venvPython = ""
	req, err := venvRequest()
	require.NoError(t, err)
	assert.Equal(t, pydiscover.RequestDefault, req.Kind)
}

func TestVenvRequestVersionConstraint(t *testing.T) {
	origPython := venvPython
	defer func() { venvPython = origPython }()

	venvPython = "3.12"
	req, err := venvRequest()
	require.NoError(t, err)
	assert.Equal(t, pydiscover.RequestVersion, req.Kind)
	assert.Equal(t, "3.12", req.VersionConstraint)
}

func TestVenvRequestInstallationKey(t *testing.T) {
	origPython := venvPython
	defer func() { venvPython = origPython }()

	venvPython = "cpython-3.12.4-linux-x86_64-gnu"
	req, err := venvRequest()
	require.NoError(t, err)
	assert.Equal(t, pydiscover.RequestKey, req.Kind)
	assert.Equal(t, uint8(12), req.Key.Minor)
}

func TestManagedKeyForMatchesPathPrefix(t *testing.T) {
	dir := t.TempDir()
	reg, err := pyregistry.New(dir+"/installs", dir+"/scratch", dir+"/anchors", dir+"/lock")
	require.NoError(t, err)

	key := cpythonKey(3, 12, 4)
	installDir := dir + "/installs/" + key.String()
	require.NoError(t, os.MkdirAll(installDir+"/bin", 0o755))

	interp := pydiscover.Interpreter{Path: installDir + "/bin/python3.12", Managed: true}

	got, ok, err := managedKeyFor(reg, interp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, got.Cmp(key))
}

func TestManagedKeyForNoMatch(t *testing.T) {
	dir := t.TempDir()
	reg, err := pyregistry.New(dir+"/installs", dir+"/scratch", dir+"/anchors", dir+"/lock")
	require.NoError(t, err)

	interp := pydiscover.Interpreter{Path: "/nowhere/bin/python3", Managed: true}
	_, ok, err := managedKeyFor(reg, interp)
	require.NoError(t, err)
	assert.False(t, ok)
}
