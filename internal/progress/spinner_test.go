package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinnerNonTTYPrintsMessageOnce(t *testing.T) {
	orig := IsTerminalFunc
	defer func() { IsTerminalFunc = orig }()
	IsTerminalFunc = func(fd int) bool { return false }

	out := &bytes.Buffer{}
	s := NewSpinner(out)
	s.Start("resolving latest release")
	s.Stop()

	assert.Equal(t, "resolving latest release\n", out.String())
}

func TestSpinnerNonTTYStopWithMessage(t *testing.T) {
	orig := IsTerminalFunc
	defer func() { IsTerminalFunc = orig }()
	IsTerminalFunc = func(fd int) bool { return false }

	out := &bytes.Buffer{}
	s := NewSpinner(out)
	s.Start("resolving latest release")
	s.StopWithMessage("resolved 3.12.4")

	assert.True(t, strings.Contains(out.String(), "resolving latest release"))
	assert.True(t, strings.Contains(out.String(), "resolved 3.12.4"))
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	orig := IsTerminalFunc
	defer func() { IsTerminalFunc = orig }()
	IsTerminalFunc = func(fd int) bool { return false }

	s := NewSpinner(&bytes.Buffer{})
	s.Start("working")
	s.Stop()
	assert.NotPanics(t, func() { s.Stop() })
}
