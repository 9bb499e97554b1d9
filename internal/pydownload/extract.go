package pydownload

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	lzip "github.com/sorairolake/lzip-go"
	"github.com/ulikunitz/xz"
)

// extractArchive extracts archivePath (of the given kind) into destDir,
// stripping the first stripDirs leading path components of every
// entry (python-build-standalone archives wrap their tree in a single
// top-level "python/" directory).
func extractArchive(archivePath, destDir, kind string, stripDirs int) error {
	switch kind {
	case "tar.gz", "tgz":
		return extractTarGz(archivePath, destDir, stripDirs)
	case "tar.xz", "txz":
		return extractTarXz(archivePath, destDir, stripDirs)
	case "tar.bz2", "tbz2", "tbz":
		return extractTarBz2(archivePath, destDir, stripDirs)
	case "tar.zst", "tzst":
		return extractTarZst(archivePath, destDir, stripDirs)
	case "tar.lz", "tlz":
		return extractTarLz(archivePath, destDir, stripDirs)
	case "zip":
		return extractZip(archivePath, destDir, stripDirs)
	default:
		return fmt.Errorf("unsupported archive kind: %s", kind)
	}
}

func extractTarGz(archivePath, destDir string, stripDirs int) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzr.Close()

	return extractTarReader(tar.NewReader(gzr), destDir, stripDirs)
}

func extractTarXz(archivePath, destDir string, stripDirs int) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create xz reader: %w", err)
	}

	return extractTarReader(tar.NewReader(xzr), destDir, stripDirs)
}

func extractTarBz2(archivePath, destDir string, stripDirs int) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	return extractTarReader(tar.NewReader(bzip2.NewReader(f)), destDir, stripDirs)
}

func extractTarZst(archivePath, destDir string, stripDirs int) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	return extractTarReader(tar.NewReader(zr), destDir, stripDirs)
}

func extractTarLz(archivePath, destDir string, stripDirs int) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	lr, err := lzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to create lzip reader: %w", err)
	}

	return extractTarReader(tar.NewReader(lr), destDir, stripDirs)
}

// isPathWithinDirectory guards against path traversal in archive entries.
func isPathWithinDirectory(targetPath, basePath string) bool {
	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return false
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return false
	}
	return absTarget == absBase || strings.HasPrefix(absTarget, absBase+string(os.PathSeparator))
}

// validateSymlinkTarget guards against symlink-escape attacks in archives.
func validateSymlinkTarget(linkTarget, linkLocation, destPath string) error {
	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("absolute symlink targets are not allowed: %s -> %s", linkLocation, linkTarget)
	}
	resolved := filepath.Join(filepath.Dir(linkLocation), linkTarget)
	if !isPathWithinDirectory(resolved, destPath) {
		return fmt.Errorf("symlink target escapes destination directory: %s -> %s", linkLocation, linkTarget)
	}
	return nil
}

func stripPath(name string, stripDirs int) (string, bool) {
	clean := strings.TrimPrefix(name, "./")
	parts := strings.Split(clean, "/")
	if len(parts) <= stripDirs {
		return "", false
	}
	return filepath.Join(parts[stripDirs:]...), true
}

func extractTarReader(tr *tar.Reader, destDir string, stripDirs int) error {
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		relPath, ok := stripPath(header.Name, stripDirs)
		if !ok {
			continue
		}
		target := filepath.Join(destDir, relPath)
		if !isPathWithinDirectory(target, destDir) {
			return fmt.Errorf("archive entry escapes destination directory: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("failed to write file: %w", err)
			}
			out.Close()
		case tar.TypeSymlink:
			if err := validateSymlinkTarget(header.Linkname, target, destDir); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}
			os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return fmt.Errorf("failed to create symlink: %w", err)
			}
		}
	}
	return nil
}

func extractZip(archivePath, destDir string, stripDirs int) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		relPath, ok := stripPath(f.Name, stripDirs)
		if !ok {
			continue
		}
		target := filepath.Join(destDir, relPath)
		if !isPathWithinDirectory(target, destDir) {
			return fmt.Errorf("zip entry escapes destination directory: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open file in zip: %w", err)
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, f.Mode())
		if err != nil {
			rc.Close()
			return fmt.Errorf("failed to create file: %w", err)
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			rc.Close()
			return fmt.Errorf("failed to write file: %w", err)
		}
		out.Close()
		rc.Close()
	}

	return nil
}
