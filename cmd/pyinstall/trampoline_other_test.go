//go:build !windows

package main

import "testing"

func TestMaybeExecTrampolineNoopOffWindows(t *testing.T) {
	if maybeExecTrampoline() {
		t.Error("maybeExecTrampoline() = true, want false off Windows")
	}
}
