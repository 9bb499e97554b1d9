//go:build !windows

package pytrampoline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyplatform"
)

func testKey(t *testing.T) pykey.Key {
	t.Helper()
	return pykey.New(pykey.NewImplementation(pykey.ImplCPython), 3, 12, 4, pykey.Prerelease{},
		pyplatform.OsLinux, pyplatform.ArchX8664, pyplatform.LibcGnu, pyplatform.VariantDefault)
}

func TestRetargetAndResolve(t *testing.T) {
	dir := t.TempDir()
	anchorsDir := filepath.Join(dir, "anchors")
	key := testKey(t)

	oldTarget := filepath.Join(dir, "installs", key.String())
	if err := os.MkdirAll(oldTarget, 0755); err != nil {
		t.Fatal(err)
	}

	if err := Retarget(anchorsDir, key, oldTarget); err != nil {
		t.Fatalf("Retarget() failed: %v", err)
	}

	got, err := Resolve(anchorsDir, key)
	if err != nil {
		t.Fatalf("Resolve() failed: %v", err)
	}
	if got != oldTarget {
		t.Errorf("Resolve() = %q, want %q", got, oldTarget)
	}

	newPatch := pykey.New(pykey.NewImplementation(pykey.ImplCPython), 3, 12, 9, pykey.Prerelease{},
		pyplatform.OsLinux, pyplatform.ArchX8664, pyplatform.LibcGnu, pyplatform.VariantDefault)
	if newPatch.MinorKey() != key.MinorKey() {
		t.Fatal("test setup error: minor keys should match across patch versions")
	}

	newTarget := filepath.Join(dir, "installs", newPatch.String())
	if err := os.MkdirAll(newTarget, 0755); err != nil {
		t.Fatal(err)
	}

	if err := Retarget(anchorsDir, key, newTarget); err != nil {
		t.Fatalf("second Retarget() failed: %v", err)
	}

	got, err = Resolve(anchorsDir, key)
	if err != nil {
		t.Fatalf("Resolve() after retarget failed: %v", err)
	}
	if got != newTarget {
		t.Errorf("Resolve() after retarget = %q, want %q", got, newTarget)
	}
}

func TestResolveMissing(t *testing.T) {
	dir := t.TempDir()
	key := testKey(t)
	if _, err := Resolve(dir, key); err != ErrAnchorMissing {
		t.Errorf("Resolve() on missing anchor = %v, want ErrAnchorMissing", err)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	anchorsDir := filepath.Join(dir, "anchors")
	key := testKey(t)

	target := filepath.Join(dir, "installs", key.String())
	if err := os.MkdirAll(target, 0755); err != nil {
		t.Fatal(err)
	}
	if err := Retarget(anchorsDir, key, target); err != nil {
		t.Fatal(err)
	}

	if err := Remove(anchorsDir, key); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if _, err := Resolve(anchorsDir, key); err != ErrAnchorMissing {
		t.Errorf("Resolve() after Remove() = %v, want ErrAnchorMissing", err)
	}
}
