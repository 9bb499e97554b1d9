package pydownload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"
)

func TestFetchCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"entries":[{"implementation":"cpython","version":"3.12.4","os":"linux","arch":"x86_64","libc":"gnu","url":"https://example.test/a.tar.zst","sha256":"abc","archive_kind":"tar.zst","size":100}]}`))
	}))
	defer srv.Close()

	catalog, err := FetchCatalog(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("FetchCatalog() failed: %v", err)
	}
	if len(catalog.Entries) != 1 {
		t.Fatalf("FetchCatalog() entries = %d, want 1", len(catalog.Entries))
	}
	if catalog.Entries[0].Version != "3.12.4" {
		t.Errorf("FetchCatalog() version = %s, want 3.12.4", catalog.Entries[0].Version)
	}
}

func TestSaveAndLoadCachedCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	catalog := &Catalog{Entries: []CatalogEntry{
		{Implementation: "cpython", Version: "3.11.9", Os: "linux", Arch: "x86_64", Libc: "gnu"},
	}}

	if err := SaveCatalogCache(path, catalog); err != nil {
		t.Fatalf("SaveCatalogCache() failed: %v", err)
	}

	loaded, ok := LoadCachedCatalog(path, time.Hour)
	if !ok {
		t.Fatal("LoadCachedCatalog() ok = false, want true")
	}
	if len(loaded.Entries) != 1 || loaded.Entries[0].Version != "3.11.9" {
		t.Errorf("LoadCachedCatalog() = %+v, want one entry of 3.11.9", loaded.Entries)
	}
}

func TestLoadCachedCatalogMissing(t *testing.T) {
	dir := t.TempDir()
	_, ok := LoadCachedCatalog(filepath.Join(dir, "missing.json"), time.Hour)
	if ok {
		t.Error("LoadCachedCatalog() ok = true for missing file, want false")
	}
}

func TestLoadCachedCatalogExpired(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	catalog := &Catalog{Entries: []CatalogEntry{{Implementation: "cpython", Version: "3.11.9"}}}
	if err := SaveCatalogCache(path, catalog); err != nil {
		t.Fatalf("SaveCatalogCache() failed: %v", err)
	}

	_, ok := LoadCachedCatalog(path, 0)
	if ok {
		t.Error("LoadCachedCatalog() ok = true for expired cache, want false")
	}
}
