package pyplatform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseOs(t *testing.T) {
	for _, s := range []string{"linux", "darwin", "windows"} {
		if _, err := ParseOs(s); err != nil {
			t.Errorf("ParseOs(%q) returned error: %v", s, err)
		}
	}
	if _, err := ParseOs("plan9"); err == nil {
		t.Error("expected error for unknown os")
	}
}

func TestParseArch(t *testing.T) {
	for _, s := range []string{"x86_64", "aarch64", "x86"} {
		if _, err := ParseArch(s); err != nil {
			t.Errorf("ParseArch(%q) returned error: %v", s, err)
		}
	}
	if _, err := ParseArch("mips"); err == nil {
		t.Error("expected error for unknown arch")
	}
}

func TestParseLibc(t *testing.T) {
	for _, s := range []string{"gnu", "musl", "none"} {
		if _, err := ParseLibc(s); err != nil {
			t.Errorf("ParseLibc(%q) returned error: %v", s, err)
		}
	}
	if _, err := ParseLibc("bogus"); err == nil {
		t.Error("expected error for unknown libc")
	}
}

func TestVariantSuffix(t *testing.T) {
	if got := VariantDefault.Suffix(); got != "" {
		t.Errorf("VariantDefault.Suffix() = %q, want empty", got)
	}
	if got := VariantFreethreaded.Suffix(); got != "t" {
		t.Errorf("VariantFreethreaded.Suffix() = %q, want t", got)
	}
}

func TestScriptsDirName(t *testing.T) {
	if got := ScriptsDirName(OsWindows); got != "Scripts" {
		t.Errorf("ScriptsDirName(windows) = %q, want Scripts", got)
	}
	if got := ScriptsDirName(OsLinux); got != "bin" {
		t.Errorf("ScriptsDirName(linux) = %q, want bin", got)
	}
}

func TestDetectLibcWithRoot(t *testing.T) {
	if runtime := CurrentOs(); runtime != OsLinux {
		t.Skip("musl detection only applies on linux")
	}
	dir := t.TempDir()
	if got := DetectLibcWithRoot(dir); got != LibcGnu {
		t.Errorf("DetectLibcWithRoot(empty) = %v, want gnu", got)
	}

	libDir := filepath.Join(dir, "lib")
	if err := os.MkdirAll(libDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(libDir, "ld-musl-x86_64.so.1"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := DetectLibcWithRoot(dir); got != LibcMusl {
		t.Errorf("DetectLibcWithRoot(with musl linker) = %v, want musl", got)
	}
}
