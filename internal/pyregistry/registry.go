// Package pyregistry manages the on-disk registry of installed managed
// Python interpreters: a root directory of extracted distributions,
// each named by its installation key, plus a file lock protecting
// concurrent publish/remove operations against other pyinstall
// processes sharing the same root.
package pyregistry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pytrampoline"
)

// Registry scans and mutates a root directory of managed interpreter
// installations. Each installation lives at InstallsDir/<key-string>/,
// its name parseable back into a pykey.Key. Alongside each installed
// minor version the registry keeps a per-minor anchor (see
// pytrampoline) that venvs bind to instead of a patch directory
// directly, making patch upgrades transparent.
type Registry struct {
	installsDir string
	scratchDir  string
	anchorsDir  string
	lockPath    string
	mu          sync.Mutex // serializes operations within this process
}

// New creates a Registry rooted at installsDir, staging extractions
// through scratchDir before publishing them atomically, and keeping
// per-minor anchors under anchorsDir. All three directories are
// created if they do not exist.
func New(installsDir, scratchDir, anchorsDir, lockPath string) (*Registry, error) {
	if err := os.MkdirAll(installsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create installs directory: %w", err)
	}
	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	if err := os.MkdirAll(anchorsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create anchors directory: %w", err)
	}
	return &Registry{
		installsDir: installsDir,
		scratchDir:  scratchDir,
		anchorsDir:  anchorsDir,
		lockPath:    lockPath,
	}, nil
}

// Installation describes one entry discovered under the installs root.
type Installation struct {
	Key  pykey.Key
	Path string // InstallsDir/<key-string>
}

// List scans the installs root and returns every subdirectory whose
// name parses as a pykey.Key, sorted ascending by key. Entries whose
// name does not parse are silently skipped: they may be in-progress
// scratch leftovers or installations from a newer pyinstall version
// using a key format this one doesn't recognize.
func (r *Registry) List() ([]Installation, error) {
	entries, err := os.ReadDir(r.installsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read installs directory: %w", err)
	}

	var installs []Installation
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		key, err := pykey.Parse(entry.Name())
		if err != nil {
			continue
		}
		installs = append(installs, Installation{
			Key:  key,
			Path: filepath.Join(r.installsDir, entry.Name()),
		})
	}

	sort.Slice(installs, func(i, j int) bool {
		return installs[i].Key.Cmp(installs[j].Key) < 0
	})

	return installs, nil
}

// Find returns the installation matching key exactly, or false if none
// is registered.
func (r *Registry) Find(key pykey.Key) (Installation, bool, error) {
	installs, err := r.List()
	if err != nil {
		return Installation{}, false, err
	}
	for _, inst := range installs {
		if inst.Key.Cmp(key) == 0 {
			return inst, true, nil
		}
	}
	return Installation{}, false, nil
}

// ErrAlreadyInstalled is returned by Publish when an installation with
// the same key already exists.
var ErrAlreadyInstalled = fmt.Errorf("installation already exists")

// Publish moves the extracted interpreter tree rooted at scratchPath
// (which must live under r.scratchDir) into its final location named
// by key, holding the registry's exclusive lock for the duration. The
// move is a rename, atomic on any filesystem the scratch and installs
// directories share.
func (r *Registry) Publish(key pykey.Key, scratchPath string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, err := r.lockExclusive()
	if err != nil {
		return "", err
	}
	defer lock.unlock()

	dest := filepath.Join(r.installsDir, key.String())
	if _, err := os.Stat(dest); err == nil {
		return "", ErrAlreadyInstalled
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to stat destination: %w", err)
	}

	if err := os.Rename(scratchPath, dest); err != nil {
		return "", fmt.Errorf("failed to publish installation: %w", err)
	}

	if err := r.retargetAnchorLocked(key); err != nil {
		return dest, fmt.Errorf("installation published but anchor retarget failed: %w", err)
	}

	return dest, nil
}

// Remove deletes the installation matching key, holding the registry's
// exclusive lock for the duration.
func (r *Registry) Remove(key pykey.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, err := r.lockExclusive()
	if err != nil {
		return err
	}
	defer lock.unlock()

	path := filepath.Join(r.installsDir, key.String())
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("installation %s not found", key.String())
	}

	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove installation: %w", err)
	}

	if err := r.retargetAnchorLocked(key); err != nil {
		return fmt.Errorf("installation removed but anchor retarget failed: %w", err)
	}

	return nil
}

// retargetAnchorLocked recomputes and retargets (or removes) the
// per-minor anchor for key's (implementation, major, minor, variant,
// os, arch, libc) group after a publish or remove. The anchor always points at the
// highest remaining patch version in that group. Caller must hold
// r.mu and the registry's exclusive file lock.
func (r *Registry) retargetAnchorLocked(key pykey.Key) error {
	entries, err := os.ReadDir(r.installsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return pytrampoline.Remove(r.anchorsDir, key)
		}
		return fmt.Errorf("failed to read installs directory: %w", err)
	}

	var best *pykey.Key
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate, err := pykey.Parse(entry.Name())
		if err != nil {
			continue
		}
		if candidate.MinorKey() != key.MinorKey() {
			continue
		}
		if best == nil || candidate.Cmp(*best) > 0 {
			c := candidate
			best = &c
		}
	}

	if best == nil {
		return pytrampoline.Remove(r.anchorsDir, key)
	}

	target := filepath.Join(r.installsDir, best.String())
	return pytrampoline.Retarget(r.anchorsDir, key, target)
}

// ResolveAnchor returns the directory the per-minor anchor for key
// currently points at.
func (r *Registry) ResolveAnchor(key pykey.Key) (string, error) {
	return pytrampoline.Resolve(r.anchorsDir, key)
}

// AnchorsDir returns the root directory under which per-minor anchors
// live. Callers that need to bind a venv's base executable to an
// anchor rather than a patch directory (see pytrampoline) use this to
// locate it.
func (r *Registry) AnchorsDir() string {
	return r.anchorsDir
}

// AnchorPath returns the path of the per-minor anchor for key, without
// resolving it. Unlike ResolveAnchor this does not require the anchor
// to already exist, so it can be used to compute a path a venv will
// bind to before that anchor's target is known.
func (r *Registry) AnchorPath(key pykey.Key) string {
	return pytrampoline.AnchorPath(r.anchorsDir, key)
}

// ScratchPath returns a fresh directory under the scratch root for
// staging an extraction before Publish moves it into place. The
// caller is responsible for removing it on failure.
func (r *Registry) ScratchPath(key pykey.Key) string {
	return filepath.Join(r.scratchDir, key.String()+".partial")
}

// registryLock wraps syscall.Flock on the registry's single lock file,
// held across the list-then-mutate window of Publish and Remove.
type registryLock struct {
	file *os.File
}

func (r *Registry) lockExclusive() (*registryLock, error) {
	file, err := os.OpenFile(r.lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to acquire registry lock: %w", err)
	}
	return &registryLock{file: file}, nil
}

func (l *registryLock) unlock() {
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
}
