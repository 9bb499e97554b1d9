package pydownload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyplatform"
)

// runPostInstallHooks applies the idempotent fixups a freshly extracted
// interpreter distribution needs before it's usable: the
// externally-managed marker, canonical executable links, and a
// best-effort dynamic-library fixup. Each hook is independent; a
// failure in one does not prevent the others from running. The caller
// treats the aggregate error as a warning, not a fatal install failure.
func runPostInstallHooks(installDir string, key pykey.Key) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	record(writeExternallyManagedMarker(installDir, key))
	record(createCanonicalExecutableLinks(installDir, key))
	record(fixupDylibPaths(installDir, key))

	return firstErr
}

// writeExternallyManagedMarker drops the PEP 668 marker pip and other
// installers check before allowing a top-level `pip install`, steering
// users toward a venv instead of polluting the managed interpreter.
func writeExternallyManagedMarker(installDir string, key pykey.Key) error {
	libDir := stdlibDir(installDir, key)
	if libDir == "" {
		return nil
	}

	markerDir := filepath.Join(libDir, fmt.Sprintf("python%d.%d", key.Major, key.Minor))
	if _, err := os.Stat(markerDir); os.IsNotExist(err) {
		markerDir = libDir
	}

	markerPath := filepath.Join(markerDir, "EXTERNALLY-MANAGED")
	if _, err := os.Stat(markerPath); err == nil {
		return nil
	}

	content := "[externally-managed]\nError=This Python installation is managed by pyinstall. Create a virtual environment instead of installing into it directly.\n"
	if err := os.WriteFile(markerPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write externally-managed marker: %w", err)
	}

	return nil
}

func stdlibDir(installDir string, key pykey.Key) string {
	if key.Os == pyplatform.OsWindows {
		return filepath.Join(installDir, "Lib")
	}
	return filepath.Join(installDir, "lib")
}

// createCanonicalExecutableLinks creates the "python", "pythonM", and
// "pythonM.m" names (plus any implementation aliases) inside the
// distribution's scripts directory as links to its real interpreter
// binary, so venv creation has stable names to bind to regardless of
// how the upstream archive names its own executable.
func createCanonicalExecutableLinks(installDir string, key pykey.Key) error {
	scriptsDir := filepath.Join(installDir, pyplatform.ScriptsDirName(key.Os))
	if _, err := os.Stat(scriptsDir); os.IsNotExist(err) {
		return nil
	}

	real, err := findRealExecutable(scriptsDir, key)
	if err != nil {
		return err
	}

	names := append([]string{key.ExecutableName(), key.ExecutableNameMajor(), key.ExecutableNameMinor()}, key.AliasNames()...)
	for _, name := range names {
		target := filepath.Join(scriptsDir, name)
		if target == real {
			continue
		}
		if _, err := os.Lstat(target); err == nil {
			continue
		}
		if key.Os == pyplatform.OsWindows {
			if err := copyFile(real, target); err != nil {
				return fmt.Errorf("failed to link %s: %w", name, err)
			}
			continue
		}
		if err := os.Symlink(filepath.Base(real), target); err != nil {
			return fmt.Errorf("failed to link %s: %w", name, err)
		}
	}

	return nil
}

// findRealExecutable locates the interpreter binary python-build-standalone
// ships under its scripts directory, preferring the most specific
// versioned name the upstream archive provides.
func findRealExecutable(scriptsDir string, key pykey.Key) (string, error) {
	candidates := []string{key.ExecutableNameMinor(), key.ExecutableNameMajor(), key.ExecutableName()}
	for _, name := range candidates {
		path := filepath.Join(scriptsDir, name)
		if info, err := os.Lstat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("no interpreter executable found in %s", scriptsDir)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0755)
}

// fixupDylibPaths performs best-effort platform-specific dynamic
// library path repairs (e.g. Darwin install_name rewrites for a
// relocated standalone build). Distributions that don't need it are
// left untouched; failures here are never fatal to the install.
func fixupDylibPaths(installDir string, key pykey.Key) error {
	if key.Os != pyplatform.OsDarwin {
		return nil
	}
	// python-build-standalone's macOS builds already use @executable_path-
	// relative install names, so there is nothing to patch in the common
	// case. This hook exists as the place a future fixup would hook in
	// without touching the fetcher's control flow.
	return nil
}
