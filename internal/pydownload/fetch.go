package pydownload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tsukumogami/pyinstall/internal/httputil"
	"github.com/tsukumogami/pyinstall/internal/log"
	"github.com/tsukumogami/pyinstall/internal/progress"
	"github.com/tsukumogami/pyinstall/internal/pyregistry"
)

// Fetcher downloads, verifies, extracts, and publishes managed
// interpreter archives into a registry.
type Fetcher struct {
	client       *http.Client
	registry     *pyregistry.Registry
	showProgress bool
}

// NewFetcher builds a Fetcher using client for downloads and
// publishing results into registry.
func NewFetcher(client *http.Client, registry *pyregistry.Registry) *Fetcher {
	return &Fetcher{client: client, registry: registry}
}

// SetProgress enables or disables the archive download progress bar.
// Callers typically gate this on progress.ShouldShowProgress so piped
// or redirected output stays clean.
func (f *Fetcher) SetProgress(enabled bool) {
	f.showProgress = enabled
}

const (
	maxRetries = 3
	baseDelay  = time.Second
)

// Fetch downloads descriptor's archive, verifies its checksum,
// extracts it into scratch, and atomically publishes it into the
// registry, returning the published installation. Transient network
// failures and 403, 429 and 5xx responses are retried with exponential
// backoff; any other non-2xx status, such as 404, fails immediately.
func (f *Fetcher) Fetch(ctx context.Context, descriptor Descriptor) (pyregistry.Installation, error) {
	if !strings.HasPrefix(descriptor.URL, "https://") {
		return pyregistry.Installation{}, fmt.Errorf("download URL must use HTTPS, got: %s", descriptor.URL)
	}

	scratchArchive := filepath.Join(os.TempDir(), "pyinstall-"+descriptor.Key.String()+filepath.Ext(descriptor.URL))
	defer os.Remove(scratchArchive)

	if err := f.downloadWithRetry(ctx, descriptor.URL, scratchArchive); err != nil {
		return pyregistry.Installation{}, fmt.Errorf("download failed: %w", err)
	}

	if descriptor.SHA256 != "" {
		if err := verifySHA256(scratchArchive, descriptor.SHA256); err != nil {
			return pyregistry.Installation{}, fmt.Errorf("checksum verification failed: %w", err)
		}
	}

	scratchDir := f.registry.ScratchPath(descriptor.Key)
	os.RemoveAll(scratchDir)
	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return pyregistry.Installation{}, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	if err := extractArchive(scratchArchive, scratchDir, descriptor.ArchiveKind, 1); err != nil {
		os.RemoveAll(scratchDir)
		return pyregistry.Installation{}, fmt.Errorf("extraction failed: %w", err)
	}

	if err := runPostInstallHooks(scratchDir, descriptor.Key); err != nil {
		log.Default().Warn("post-install hook failed", "key", descriptor.Key.String(), "error", err)
	}

	publishedPath, err := f.registry.Publish(descriptor.Key, scratchDir)
	if err != nil {
		os.RemoveAll(scratchDir)
		return pyregistry.Installation{}, fmt.Errorf("failed to publish installation: %w", err)
	}

	return pyregistry.Installation{Key: descriptor.Key, Path: publishedPath}, nil
}

func (f *Fetcher) downloadWithRetry(ctx context.Context, url, destPath string) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := f.downloadOnce(ctx, url, destPath)
		if err == nil {
			return nil
		}
		lastErr = err

		if statusErr, ok := err.(*httpStatusError); ok && !isRetryableStatus(statusErr.StatusCode) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("download failed after %d retries: %w", maxRetries, lastErr)
}

type httpStatusError struct {
	StatusCode int
	Status     string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %s", e.Status)
}

func isRetryableStatus(code int) bool {
	return code == 403 || code == 429 || code >= 500
}

func (f *Fetcher) downloadOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", httputil.DefaultUserAgent)
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &httpStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if encoding := resp.Header.Get("Content-Encoding"); encoding != "" && encoding != "identity" {
		return fmt.Errorf("compressed responses not supported (got %s)", encoding)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer out.Close()

	var dest io.Writer = out
	if f.showProgress {
		pw := progress.NewWriter(out, resp.ContentLength, os.Stderr)
		defer pw.Finish()
		dest = pw
	}

	if _, err := io.Copy(dest, resp.Body); err != nil {
		return fmt.Errorf("failed to write downloaded file: %w", err)
	}

	return nil
}

func verifySHA256(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("failed to hash file: %w", err)
	}
	actual := hex.EncodeToString(h.Sum(nil))
	expected = strings.ToLower(strings.TrimSpace(expected))

	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}
