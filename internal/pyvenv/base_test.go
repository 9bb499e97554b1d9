package pyvenv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsukumogami/pyinstall/internal/pydiscover"
	"github.com/tsukumogami/pyinstall/internal/pyplatform"
	"github.com/tsukumogami/pyinstall/internal/pyregistry"
)

func TestResolveBaseNonManagedUsesBaseExecutable(t *testing.T) {
	interp := pydiscover.Interpreter{
		Path:           "/usr/bin/python3",
		BaseExecutable: "/usr/bin/python3.12",
		Managed:        false,
	}

	base := ResolveBase(interp, cpythonKey(pyplatform.CurrentOs()), nil)
	require.False(t, base.Managed)
	require.Equal(t, "/usr/bin/python3.12", base.Target)
}

func TestResolveBaseNonManagedFallsBackToPath(t *testing.T) {
	interp := pydiscover.Interpreter{Path: "/usr/bin/python3", Managed: false}

	base := ResolveBase(interp, cpythonKey(pyplatform.CurrentOs()), nil)
	require.Equal(t, "/usr/bin/python3", base.Target)
}

func TestResolveBaseManagedUsesRegistryAnchor(t *testing.T) {
	root := t.TempDir()
	reg, err := pyregistry.New(
		filepath.Join(root, "installs"), filepath.Join(root, "scratch"),
		filepath.Join(root, "anchors"), filepath.Join(root, "installs.lock"),
	)
	require.NoError(t, err)

	key := cpythonKey(pyplatform.CurrentOs())
	interp := pydiscover.Interpreter{Path: "/managed/path", Managed: true}

	base := ResolveBase(interp, key, reg)
	require.True(t, base.Managed)
	require.Equal(t, reg.AnchorPath(key), base.Target)
}
