package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tsukumogami/pyinstall/internal/pydownload"
)

func TestListAvailableFlagRegistered(t *testing.T) {
	flag := listCmd.Flags().Lookup("available")
	if assert.NotNil(t, flag) {
		assert.Equal(t, "false", flag.DefValue)
	}
}

func TestPrintEntryDoesNotPanic(t *testing.T) {
	entry := pydownload.CatalogEntry{
		Implementation: "cpython",
		Version:        "3.12.4",
		Os:             "linux",
		Arch:           "x86_64",
		Libc:           "gnu",
	}
	assert.NotPanics(t, func() { printEntry(entry) })
}
