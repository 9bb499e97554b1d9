package pykey

import (
	"sort"
	"testing"

	"github.com/tsukumogami/pyinstall/internal/pyplatform"
)

func mustParse(t *testing.T, s string) Key {
	t.Helper()
	k, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", s, err)
	}
	return k
}

func TestRoundTrip(t *testing.T) {
	cases := []string{
		"cpython-3.10.17-linux-x86_64-gnu",
		"cpython-3.10.8-linux-x86_64-gnu",
		"cpython-3.10.17+freethreaded-linux-x86_64-gnu",
		"pypy-3.10.17-linux-x86_64-gnu",
		"cpython-3.13.0rc1-darwin-aarch64-none",
		"graalpy-23.1.2-linux-aarch64-musl",
	}
	for _, s := range cases {
		k := mustParse(t, s)
		if got := k.String(); got != s {
			t.Errorf("round trip failed: Parse(%q).String() = %q", s, got)
		}
	}
}

func TestParseFailures(t *testing.T) {
	cases := []string{
		"cpython-3.10.17-linux-x86_64",                // not enough fields
		"cpython-3.10.17-bogusos-x86_64-gnu",           // invalid os
		"cpython-3.10.17-linux-bogusarch-gnu",          // invalid arch
		"cpython-3.10.17-linux-x86_64-bogus",           // invalid libc
		"cpython-notaversion-linux-x86_64-gnu",         // invalid version
		"cpython-3.10.17+bogus-linux-x86_64-gnu",       // invalid variant
	}
	for _, s := range cases {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", s)
		}
	}
}

func TestOrdering(t *testing.T) {
	keys := []string{
		"cpython-3.10.17-linux-x86_64-gnu",
		"cpython-3.10.8-linux-x86_64-gnu",
		"cpython-3.10.17+freethreaded-linux-x86_64-gnu",
		"pypy-3.10.17-linux-x86_64-gnu",
	}
	parsed := make([]Key, len(keys))
	for i, s := range keys {
		parsed[i] = mustParse(t, s)
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Cmp(parsed[j]) < 0 })

	want := []string{
		"cpython-3.10.8-linux-x86_64-gnu",
		"cpython-3.10.17-linux-x86_64-gnu",
		"cpython-3.10.17+freethreaded-linux-x86_64-gnu",
		"pypy-3.10.17-linux-x86_64-gnu",
	}
	for i, k := range parsed {
		if got := k.String(); got != want[i] {
			t.Errorf("position %d: got %q, want %q", i, got, want[i])
		}
	}
}

func TestMinorKey(t *testing.T) {
	k := mustParse(t, "cpython-3.10.8-linux-x86_64-gnu")
	if got := k.MinorKey(); got != "cpython-3.10-linux-x86_64-gnu" {
		t.Errorf("MinorKey() = %q", got)
	}
	upgraded := mustParse(t, "cpython-3.10.17-linux-x86_64-gnu")
	if k.MinorKey() != upgraded.MinorKey() {
		t.Error("MinorKey should be stable across patch upgrades")
	}
}

func TestExecutableNames(t *testing.T) {
	k := New(NewImplementation(ImplCPython), 3, 12, 4, Prerelease{}, pyplatform.OsLinux, pyplatform.ArchX8664, pyplatform.LibcGnu, pyplatform.VariantDefault)
	if got := k.ExecutableName(); got != "python" {
		t.Errorf("ExecutableName() = %q", got)
	}
	if got := k.ExecutableNameMajor(); got != "python3" {
		t.Errorf("ExecutableNameMajor() = %q", got)
	}
	if got := k.ExecutableNameMinor(); got != "python3.12" {
		t.Errorf("ExecutableNameMinor() = %q", got)
	}

	pypy := New(NewImplementation(ImplPyPy), 3, 10, 17, Prerelease{}, pyplatform.OsLinux, pyplatform.ArchX8664, pyplatform.LibcGnu, pyplatform.VariantDefault)
	aliases := pypy.AliasNames()
	if len(aliases) != 3 {
		t.Errorf("AliasNames() = %v, want 3 entries", aliases)
	}
}

func TestWindowsExeSuffix(t *testing.T) {
	k := New(NewImplementation(ImplCPython), 3, 12, 0, Prerelease{}, pyplatform.OsWindows, pyplatform.ArchX8664, pyplatform.LibcNone, pyplatform.VariantDefault)
	if got := k.ExecutableName(); got != "python.exe" {
		t.Errorf("ExecutableName() = %q", got)
	}
}

func TestFreethreadedSuffix(t *testing.T) {
	k := New(NewImplementation(ImplCPython), 3, 13, 0, Prerelease{}, pyplatform.OsLinux, pyplatform.ArchX8664, pyplatform.LibcGnu, pyplatform.VariantFreethreaded)
	if got := k.ExecutableName(); got != "pythont" {
		t.Errorf("ExecutableName() = %q, want pythont", got)
	}
}
