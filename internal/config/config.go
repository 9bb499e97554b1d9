// Package config holds the installer's global configuration: the
// installations root, scratch directory, catalog URL, and tunable
// timeouts, threaded explicitly through constructors rather than held in
// a process-wide singleton.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// EnvHome is the environment variable that overrides the default
	// installer home directory.
	EnvHome = "PYINSTALL_HOME"

	// EnvAPITimeout configures the HTTP timeout used for catalog and
	// download requests.
	EnvAPITimeout = "PYINSTALL_API_TIMEOUT"

	// EnvCatalogCacheTTL configures how long a fetched download catalog
	// is considered fresh before being re-fetched.
	EnvCatalogCacheTTL = "PYINSTALL_CATALOG_CACHE_TTL"

	// EnvDownloadCacheSizeLimit configures the maximum size of the
	// scratch/download cache directory.
	EnvDownloadCacheSizeLimit = "PYINSTALL_DOWNLOAD_CACHE_SIZE_LIMIT"

	// EnvCatalogURL overrides the default interpreter download catalog URL.
	EnvCatalogURL = "PYINSTALL_CATALOG_URL"

	// DefaultAPITimeout is the default timeout for catalog/download requests.
	DefaultAPITimeout = 30 * time.Second

	// DefaultCatalogCacheTTL is the default freshness window for the
	// cached download catalog.
	DefaultCatalogCacheTTL = 1 * time.Hour

	// DefaultDownloadCacheSizeLimit is the default size limit for the
	// scratch/download cache (500MB; interpreter archives run tens of MB
	// each).
	DefaultDownloadCacheSizeLimit = 500 * 1024 * 1024

	// DefaultCatalogURL is the default interpreter distribution catalog.
	DefaultCatalogURL = "https://raw.githubusercontent.com/astral-sh/python-build-standalone/latest-release/download-metadata.json"
)

// GetAPITimeout returns the configured HTTP timeout from PYINSTALL_API_TIMEOUT.
// If not set or invalid, returns DefaultAPITimeout. Accepts duration
// strings like "30s", "1m", "2m30s".
func GetAPITimeout() time.Duration {
	envValue := os.Getenv(EnvAPITimeout)
	if envValue == "" {
		return DefaultAPITimeout
	}

	duration, err := time.ParseDuration(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n",
			EnvAPITimeout, envValue, DefaultAPITimeout)
		return DefaultAPITimeout
	}

	if duration < 1*time.Second {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%v), using minimum 1s\n", EnvAPITimeout, duration)
		return 1 * time.Second
	}
	if duration > 10*time.Minute {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%v), using maximum 10m\n", EnvAPITimeout, duration)
		return 10 * time.Minute
	}

	return duration
}

// GetCatalogCacheTTL returns the configured catalog cache TTL from
// PYINSTALL_CATALOG_CACHE_TTL. If not set or invalid, returns
// DefaultCatalogCacheTTL.
func GetCatalogCacheTTL() time.Duration {
	envValue := os.Getenv(EnvCatalogCacheTTL)
	if envValue == "" {
		return DefaultCatalogCacheTTL
	}

	duration, err := time.ParseDuration(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n",
			EnvCatalogCacheTTL, envValue, DefaultCatalogCacheTTL)
		return DefaultCatalogCacheTTL
	}

	if duration < 1*time.Minute {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%v), using minimum 1m\n", EnvCatalogCacheTTL, duration)
		return 1 * time.Minute
	}
	if duration > 7*24*time.Hour {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%v), using maximum 7d\n", EnvCatalogCacheTTL, duration)
		return 7 * 24 * time.Hour
	}

	return duration
}

// ParseByteSize parses a human-readable byte size string into bytes.
// Accepts plain numbers (52428800), KB/K (50K, 50KB), MB/M, GB/G.
// Case-insensitive.
func ParseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	s = strings.ToUpper(s)

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}

	var numStr string
	var suffix string
	for i, c := range s {
		if c >= '0' && c <= '9' || c == '.' {
			numStr += string(c)
		} else {
			suffix = s[i:]
			break
		}
	}

	if numStr == "" {
		return 0, fmt.Errorf("invalid size format: %q", s)
	}

	num, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size number: %q", numStr)
	}

	var multiplier float64
	switch suffix {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("invalid size suffix: %q", suffix)
	}

	return int64(num * multiplier), nil
}

// GetDownloadCacheSizeLimit returns the configured scratch/download cache
// size limit from PYINSTALL_DOWNLOAD_CACHE_SIZE_LIMIT. If not set or
// invalid, returns DefaultDownloadCacheSizeLimit.
func GetDownloadCacheSizeLimit() int64 {
	envValue := os.Getenv(EnvDownloadCacheSizeLimit)
	if envValue == "" {
		return DefaultDownloadCacheSizeLimit
	}

	size, err := ParseByteSize(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %dMB\n",
			EnvDownloadCacheSizeLimit, envValue, DefaultDownloadCacheSizeLimit/(1024*1024))
		return DefaultDownloadCacheSizeLimit
	}

	minSize := int64(10 * 1024 * 1024)
	maxSize := int64(50 * 1024 * 1024 * 1024)

	if size < minSize {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%d bytes), using minimum 10MB\n", EnvDownloadCacheSizeLimit, size)
		return minSize
	}
	if size > maxSize {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%d bytes), using maximum 50GB\n", EnvDownloadCacheSizeLimit, size)
		return maxSize
	}

	return size
}

// DefaultHomeOverride can be set by the binary's main package to change
// the default home directory, e.g. for dev builds. PYINSTALL_HOME still
// takes precedence.
var DefaultHomeOverride string

// Config holds the installer's global, explicitly-threaded configuration.
type Config struct {
	HomeDir       string // $PYINSTALL_HOME
	InstallsDir   string // $PYINSTALL_HOME/installs (managed interpreter distributions)
	AnchorsDir    string // $PYINSTALL_HOME/anchors (per-minor symlinks/junctions)
	ScratchDir    string // $PYINSTALL_HOME/scratch (atomic install staging)
	CacheDir      string // $PYINSTALL_HOME/cache
	CatalogCache  string // $PYINSTALL_HOME/cache/catalog.json
	CatalogURL    string // download catalog URL, overridable via PYINSTALL_CATALOG_URL
	LockFile      string // $PYINSTALL_HOME/installs.lock
}

// DefaultConfig returns the default configuration, reading PYINSTALL_HOME
// and PYINSTALL_CATALOG_URL from the environment.
func DefaultConfig() (*Config, error) {
	home := os.Getenv(EnvHome)
	if home == "" {
		if DefaultHomeOverride != "" {
			home = DefaultHomeOverride
		} else {
			userHome, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to get user home directory: %w", err)
			}
			home = filepath.Join(userHome, ".pyinstall")
		}
	}

	catalogURL := os.Getenv(EnvCatalogURL)
	if catalogURL == "" {
		catalogURL = DefaultCatalogURL
	}

	return &Config{
		HomeDir:      home,
		InstallsDir:  filepath.Join(home, "installs"),
		AnchorsDir:   filepath.Join(home, "anchors"),
		ScratchDir:   filepath.Join(home, "scratch"),
		CacheDir:     filepath.Join(home, "cache"),
		CatalogCache: filepath.Join(home, "cache", "catalog.json"),
		CatalogURL:   catalogURL,
		LockFile:     filepath.Join(home, "installs.lock"),
	}, nil
}

// EnsureDirectories creates all directories the configuration names.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.HomeDir, c.InstallsDir, c.AnchorsDir, c.ScratchDir, c.CacheDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
