package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsukumogami/pyinstall/internal/pydiscover"
)

func TestFindRequestExplicitVersion(t *testing.T) {
	req, err := findRequest([]string{"3.12"})
	require.NoError(t, err)
	assert.Equal(t, pydiscover.RequestVersion, req.Kind)
	assert.Equal(t, "3.12", req.VersionConstraint)
}

func TestFindRequestFallsBackToPinOrDefault(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	req, err := findRequest(nil)
	require.NoError(t, err)
	assert.Equal(t, pydiscover.RequestDefault, req.Kind)
}
