//go:build windows

package pytrampoline

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"

	"github.com/tsukumogami/pyinstall/internal/pykey"
)

// NTFS junctions (mount point reparse points) stand in for symlinks on
// Windows: they don't require the privilege elevation a symlink does,
// and venv trampolines resolve through them the same way POSIX venvs
// follow a symlink chain.

const (
	reparseTagMountPoint = 0xA0000003
	fsctlSetReparsePoint = 0x000900A4
	fsctlDeleteReparse   = 0x000900AC
)

// buildMountPointBuffer lays out a REPARSE_DATA_BUFFER for a mount point,
// per the documented NTFS reparse point format.
func buildMountPointBuffer(target string) ([]byte, error) {
	// Junction targets must be NT device paths: \??\C:\path\to\dir\
	subst := `\??\` + target
	if len(subst) > 0 && subst[len(subst)-1] != '\\' {
		subst += `\`
	}
	print := target
	if len(print) > 0 && print[len(print)-1] != '\\' {
		print += `\`
	}

	substUTF16, err := windows.UTF16FromString(subst)
	if err != nil {
		return nil, err
	}
	printUTF16, err := windows.UTF16FromString(print)
	if err != nil {
		return nil, err
	}
	substBytes := utf16ToBytes(substUTF16[:len(substUTF16)-1])
	printBytes := utf16ToBytes(printUTF16[:len(printUTF16)-1])

	pathBufLen := len(substBytes) + 2 + len(printBytes) + 2
	dataLen := 8 + 8 + pathBufLen
	buf := make([]byte, 8+dataLen)

	binary.LittleEndian.PutUint32(buf[0:4], reparseTagMountPoint)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(dataLen))

	off := 8
	binary.LittleEndian.PutUint16(buf[off:off+2], 0)                         // SubstituteNameOffset
	binary.LittleEndian.PutUint16(buf[off+2:off+4], uint16(len(substBytes))) // SubstituteNameLength
	binary.LittleEndian.PutUint16(buf[off+4:off+6], uint16(len(substBytes)+2))
	binary.LittleEndian.PutUint16(buf[off+6:off+8], uint16(len(printBytes)))
	off += 8

	copy(buf[off:], substBytes)
	off += len(substBytes)
	buf[off] = 0
	buf[off+1] = 0
	off += 2
	copy(buf[off:], printBytes)
	off += len(printBytes)
	buf[off] = 0
	buf[off+1] = 0

	return buf, nil
}

func utf16ToBytes(u []uint16) []byte {
	b := make([]byte, len(u)*2)
	for i, c := range u {
		binary.LittleEndian.PutUint16(b[i*2:], c)
	}
	return b
}

// createJunction creates an NTFS junction at linkPath pointing at target.
// linkPath must already exist as an empty directory.
func createJunction(linkPath, target string) error {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	buf, err := buildMountPointBuffer(absTarget)
	if err != nil {
		return fmt.Errorf("failed to build reparse buffer: %w", err)
	}

	pathPtr, err := windows.UTF16PtrFromString(linkPath)
	if err != nil {
		return err
	}

	handle, err := windows.CreateFile(
		pathPtr,
		windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OPEN_REPARSE_POINT,
		0,
	)
	if err != nil {
		return fmt.Errorf("failed to open junction directory: %w", err)
	}
	defer windows.CloseHandle(handle)

	var bytesReturned uint32
	err = windows.DeviceIoControl(
		handle,
		fsctlSetReparsePoint,
		&buf[0],
		uint32(len(buf)),
		nil,
		0,
		&bytesReturned,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to set reparse point: %w", err)
	}

	return nil
}

// removeJunction clears the reparse point on linkPath, if any, leaving
// an ordinary empty directory the caller can remove.
func removeJunction(linkPath string) error {
	pathPtr, err := windows.UTF16PtrFromString(linkPath)
	if err != nil {
		return err
	}

	handle, err := windows.CreateFile(
		pathPtr,
		windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OPEN_REPARSE_POINT,
		0,
	)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open junction directory: %w", err)
	}
	defer windows.CloseHandle(handle)

	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], reparseTagMountPoint)

	var bytesReturned uint32
	err = windows.DeviceIoControl(
		handle,
		fsctlDeleteReparse,
		&header[0],
		uint32(len(header)),
		nil,
		0,
		&bytesReturned,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to clear reparse point: %w", err)
	}

	return nil
}

// Retarget atomically points the per-minor anchor for key at target.
// Junctions can't be renamed over an existing reparse point directly,
// so retargeting builds the new junction under a temporary directory
// name and swaps it with os.Rename, which is atomic on NTFS for
// directory entries within the same volume.
func Retarget(anchorsDir string, key pykey.Key, target string) error {
	if err := os.MkdirAll(anchorsDir, 0755); err != nil {
		return fmt.Errorf("failed to create anchors directory: %w", err)
	}

	anchorPath := AnchorPath(anchorsDir, key)
	tmpPath := anchorPath + ".tmp"

	os.RemoveAll(tmpPath)
	if err := os.Mkdir(tmpPath, 0755); err != nil {
		return fmt.Errorf("failed to create junction directory: %w", err)
	}
	if err := createJunction(tmpPath, target); err != nil {
		os.RemoveAll(tmpPath)
		return err
	}

	if _, err := os.Stat(anchorPath); err == nil {
		os.RemoveAll(anchorPath)
	}

	if err := os.Rename(tmpPath, anchorPath); err != nil {
		removeJunction(tmpPath)
		os.RemoveAll(tmpPath)
		return fmt.Errorf("failed to retarget anchor: %w", err)
	}

	return nil
}

// Resolve returns the current target of the per-minor junction anchor.
func Resolve(anchorsDir string, key pykey.Key) (string, error) {
	anchorPath := AnchorPath(anchorsDir, key)
	if _, err := os.Stat(anchorPath); err != nil {
		if os.IsNotExist(err) {
			return "", ErrAnchorMissing
		}
		return "", err
	}
	// os.Readlink follows Windows reparse points for junctions too.
	target, err := os.Readlink(anchorPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve anchor: %w", err)
	}
	return target, nil
}

// Remove deletes the per-minor anchor for key, if present.
func Remove(anchorsDir string, key pykey.Key) error {
	anchorPath := AnchorPath(anchorsDir, key)
	if _, err := os.Stat(anchorPath); os.IsNotExist(err) {
		return nil
	}
	if err := removeJunction(anchorPath); err != nil {
		return err
	}
	if err := os.RemoveAll(anchorPath); err != nil {
		return fmt.Errorf("failed to remove anchor: %w", err)
	}
	return nil
}
