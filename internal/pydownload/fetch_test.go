package pydownload

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyplatform"
	"github.com/tsukumogami/pyinstall/internal/pyregistry"
)

func buildFakeDistribution(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)

	files := map[string]string{
		"python/bin/python3.12": "#!/bin/sh\necho fake-python\n",
	}
	if err := tw.WriteHeader(&tar.Header{Name: "python/bin/", Typeflag: tar.TypeDir, Mode: 0755}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeReg, Mode: 0755, Size: int64(len(content))}); err != nil {
			t.Fatalf("write header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("write content: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

func newTestRegistry(t *testing.T) *pyregistry.Registry {
	t.Helper()
	dir := t.TempDir()
	reg, err := pyregistry.New(
		filepath.Join(dir, "installs"),
		filepath.Join(dir, "scratch"),
		filepath.Join(dir, "anchors"),
		filepath.Join(dir, "installs.lock"),
	)
	if err != nil {
		t.Fatalf("pyregistry.New() failed: %v", err)
	}
	return reg
}

func TestFetchDownloadsVerifiesExtractsAndPublishes(t *testing.T) {
	archive := buildFakeDistribution(t)
	sum := sha256.Sum256(archive)

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/gzip")
		w.Write(archive)
	}))
	defer srv.Close()

	reg := newTestRegistry(t)
	fetcher := NewFetcher(srv.Client(), reg)

	key := pykey.New(pykey.NewImplementation(pykey.ImplCPython), 3, 12, 4, pykey.Prerelease{},
		pyplatform.OsLinux, pyplatform.ArchX8664, pyplatform.LibcGnu, pyplatform.VariantDefault)

	descriptor := Descriptor{
		Key:         key,
		URL:         srv.URL + "/archive.tar.gz",
		SHA256:      hex.EncodeToString(sum[:]),
		ArchiveKind: "tar.gz",
	}

	installation, err := fetcher.Fetch(context.Background(), descriptor)
	if err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if installation.Key.Cmp(key) != 0 {
		t.Errorf("Fetch() installation key = %v, want %v", installation.Key, key)
	}
	if _, err := os.Stat(filepath.Join(installation.Path, "bin", "python3.12")); err != nil {
		t.Errorf("published installation missing extracted executable: %v", err)
	}
}

func TestFetchWithProgressEnabled(t *testing.T) {
	archive := buildFakeDistribution(t)
	sum := sha256.Sum256(archive)

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	reg := newTestRegistry(t)
	fetcher := NewFetcher(srv.Client(), reg)
	fetcher.SetProgress(true)

	key := pykey.New(pykey.NewImplementation(pykey.ImplCPython), 3, 12, 4, pykey.Prerelease{},
		pyplatform.OsLinux, pyplatform.ArchX8664, pyplatform.LibcGnu, pyplatform.VariantDefault)

	descriptor := Descriptor{
		Key:         key,
		URL:         srv.URL + "/archive.tar.gz",
		SHA256:      hex.EncodeToString(sum[:]),
		ArchiveKind: "tar.gz",
	}

	if _, err := fetcher.Fetch(context.Background(), descriptor); err != nil {
		t.Fatalf("Fetch() with progress enabled failed: %v", err)
	}
}

func TestFetchChecksumMismatchFails(t *testing.T) {
	archive := buildFakeDistribution(t)

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	reg := newTestRegistry(t)
	fetcher := NewFetcher(srv.Client(), reg)

	key := pykey.New(pykey.NewImplementation(pykey.ImplCPython), 3, 12, 4, pykey.Prerelease{},
		pyplatform.OsLinux, pyplatform.ArchX8664, pyplatform.LibcGnu, pyplatform.VariantDefault)

	descriptor := Descriptor{
		Key:         key,
		URL:         srv.URL + "/archive.tar.gz",
		SHA256:      "0000000000000000000000000000000000000000000000000000000000000000",
		ArchiveKind: "tar.gz",
	}

	if _, err := fetcher.Fetch(context.Background(), descriptor); err == nil {
		t.Fatal("Fetch() with mismatched checksum should fail, got nil error")
	}
}

func TestFetchRejectsNonHTTPS(t *testing.T) {
	reg := newTestRegistry(t)
	fetcher := NewFetcher(http.DefaultClient, reg)

	key := pykey.New(pykey.NewImplementation(pykey.ImplCPython), 3, 12, 4, pykey.Prerelease{},
		pyplatform.OsLinux, pyplatform.ArchX8664, pyplatform.LibcGnu, pyplatform.VariantDefault)

	_, err := fetcher.Fetch(context.Background(), Descriptor{Key: key, URL: "http://example.test/archive.tar.gz"})
	if err == nil {
		t.Fatal("Fetch() with non-HTTPS URL should fail, got nil error")
	}
}

func TestVerifySHA256Mismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.bin")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if err := verifySHA256(path, "0000000000000000000000000000000000000000000000000000000000000000"); err == nil {
		t.Error("verifySHA256() with wrong checksum should fail, got nil error")
	}

	sum := sha256.Sum256([]byte("hello"))
	if err := verifySHA256(path, hex.EncodeToString(sum[:])); err != nil {
		t.Errorf("verifySHA256() with correct checksum failed: %v", err)
	}
}
