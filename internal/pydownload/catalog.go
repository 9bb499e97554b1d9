// Package pydownload turns a partially-specified interpreter download
// request into a concrete archive descriptor (the planner, C4) and
// fetches, verifies, and publishes that archive into the installations
// registry (the fetcher, C5).
package pydownload

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/tsukumogami/pyinstall/internal/httputil"
)

// CatalogEntry is one downloadable interpreter build as published by
// the distribution catalog (by default, a python-build-standalone
// style release index).
type CatalogEntry struct {
	Implementation string `json:"implementation"`
	Version        string `json:"version"`
	Os             string `json:"os"`
	Arch           string `json:"arch"`
	Libc           string `json:"libc"`
	Variant        string `json:"variant"`
	URL            string `json:"url"`
	SHA256         string `json:"sha256"`
	ArchiveKind    string `json:"archive_kind"` // tar.gz, tar.zst, tar.xz, tar.lz, zip
	Size           int64  `json:"size,omitempty"`
}

// Catalog is the full set of downloadable builds.
type Catalog struct {
	Entries []CatalogEntry `json:"entries"`
}

// FetchCatalog retrieves and parses the catalog JSON document at url
// using client. The catalog is small (tens of KB to a few MB) and is
// not streamed.
func FetchCatalog(ctx context.Context, client *http.Client, url string) (*Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("User-Agent", httputil.DefaultUserAgent)
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog request failed: %s", resp.Status)
	}

	var catalog Catalog
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return &catalog, nil
}

// LoadCachedCatalog reads a previously-cached catalog document from
// path if it exists and is younger than maxAge.
func LoadCachedCatalog(path string, maxAge time.Duration) (*Catalog, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > maxAge {
		return nil, false
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var catalog Catalog
	if err := json.NewDecoder(f).Decode(&catalog); err != nil {
		return nil, false
	}
	return &catalog, true
}

// SaveCatalogCache atomically writes catalog's JSON form to path.
func SaveCatalogCache(path string, catalog *Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog cache: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to install catalog cache: %w", err)
	}
	return nil
}
