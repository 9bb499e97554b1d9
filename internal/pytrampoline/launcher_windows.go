//go:build windows

package pytrampoline

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tsukumogami/pyinstall/internal/pykey"
)

// trampolineManifest is the sidecar file recording, for each
// trampoline copy in a venv's Scripts directory, which per-minor
// anchor it should resolve through. A trampoline is a byte-for-byte
// copy of the pyinstall binary, so it carries no state of its own;
// when it starts, pyinstall's maybeExecTrampoline looks its own
// basename up in this file, before any command parsing, to learn
// which anchor to follow.
const trampolineManifest = ".pyinstall-trampolines"

// WriteLauncher installs the trampoline executable for name at
// scriptsDir/name by copying the currently running pyinstall binary,
// and records name -> anchor name in the scripts directory's
// trampoline manifest. Copying the binary under a new name, plus the
// manifest entry, is enough to bind a trampoline to a given anchor
// without embedding any state in the binary itself.
func WriteLauncher(scriptsDir, name string, key pykey.Key) error {
	self, err := trampolineSelfPath()
	if err != nil {
		return err
	}

	dest := filepath.Join(scriptsDir, name)
	data, err := os.ReadFile(self)
	if err != nil {
		return fmt.Errorf("failed to read pyinstall binary for trampoline: %w", err)
	}

	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0755); err != nil {
		return fmt.Errorf("failed to write trampoline: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to install trampoline: %w", err)
	}

	return recordTrampoline(scriptsDir, name, AnchorName(key), key.ExecutableName())
}

// directPrefix marks a trampoline manifest entry as a literal
// executable path rather than an anchor name, for venvs bound to a
// non-managed (system) interpreter that has no registry anchor.
const directPrefix = "path:"

// WriteDirectLauncher installs the trampoline executable for name at
// scriptsDir/name, recording it as resolving directly to targetExe
// rather than through a registry anchor. Used when the venv's base
// interpreter isn't a managed installation.
func WriteDirectLauncher(scriptsDir, name, targetExe string) error {
	self, err := trampolineSelfPath()
	if err != nil {
		return err
	}

	dest := filepath.Join(scriptsDir, name)
	data, err := os.ReadFile(self)
	if err != nil {
		return fmt.Errorf("failed to read pyinstall binary for trampoline: %w", err)
	}

	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0755); err != nil {
		return fmt.Errorf("failed to write trampoline: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to install trampoline: %w", err)
	}

	return recordTrampoline(scriptsDir, name, directPrefix+targetExe, "")
}

// trampolineTarget is one manifest entry: the anchor name (or a
// "path:"-prefixed literal executable path) a trampoline resolves
// through, plus the canonical executable file name to join onto the
// anchor's resolved target directory. execName is unused for "path:"
// entries, since those already name a complete file.
type trampolineTarget struct {
	anchorOrPath string
	execName     string
}

// recordTrampoline upserts a name -> trampolineTarget entry in the
// scripts directory's trampoline manifest.
func recordTrampoline(scriptsDir, name, anchorOrPath, execName string) error {
	path := filepath.Join(scriptsDir, trampolineManifest)
	entries, err := readTrampolineManifest(path)
	if err != nil {
		return err
	}
	entries[name] = trampolineTarget{anchorOrPath: anchorOrPath, execName: execName}

	var sb strings.Builder
	for n, t := range entries {
		sb.WriteString(n)
		sb.WriteString(" ")
		sb.WriteString(t.anchorOrPath)
		sb.WriteString(" ")
		if t.execName == "" {
			sb.WriteString("-")
		} else {
			sb.WriteString(t.execName)
		}
		sb.WriteString("\n")
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

func readTrampolineManifest(path string) (map[string]trampolineTarget, error) {
	out := map[string]trampolineTarget{}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			continue
		}
		execName := fields[2]
		if execName == "-" {
			execName = ""
		}
		out[fields[0]] = trampolineTarget{anchorOrPath: fields[1], execName: execName}
	}
	return out, scanner.Err()
}

// LookupTrampoline returns the anchor name recorded for the trampoline
// named name in scriptsDir, for pyinstall's maybeExecTrampoline to
// resolve a copied binary's own identity at startup.
func LookupTrampoline(scriptsDir, name string) (string, bool, error) {
	entries, err := readTrampolineManifest(filepath.Join(scriptsDir, trampolineManifest))
	if err != nil {
		return "", false, err
	}
	entry, ok := entries[name]
	return entry.anchorOrPath, ok, nil
}

// trampolineSelfPath returns the path to the currently running
// executable, used as the source when installing trampoline copies.
func trampolineSelfPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate running executable: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return exe, nil
	}
	return resolved, nil
}

// RunTrampoline execs the base interpreter resolved through anchorName
// under anchorsDir, forwarding args and the process's standard streams.
// execName is the canonical executable file name (e.g. "python.exe" or
// "pypy.exe") to look up inside the anchor's resolved target directory.
// Copied trampolines do not go through this function; they use Exec,
// which reads the trampoline manifest first.
func RunTrampoline(anchorsDir, anchorName, execName string, args []string) error {
	targetDir, err := resolveAnchorByName(anchorsDir, anchorName)
	if err != nil {
		return err
	}

	exePath := filepath.Join(targetDir, execName)
	cmd := exec.Command(exePath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func resolveAnchorByName(anchorsDir, anchorName string) (string, error) {
	anchorPath := filepath.Join(anchorsDir, anchorName)
	target, err := os.Readlink(anchorPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve anchor %s: %w", anchorName, err)
	}
	return target, nil
}

// Exec looks up the trampoline named name in scriptsDir and runs the
// interpreter it resolves to, forwarding args and standard streams.
// This is what pyinstall's maybeExecTrampoline calls at startup after
// identifying its own basename as a copied trampoline.
func Exec(anchorsDir, scriptsDir, name string, args []string) error {
	entries, err := readTrampolineManifest(filepath.Join(scriptsDir, trampolineManifest))
	if err != nil {
		return err
	}
	entry, ok := entries[name]
	if !ok {
		return fmt.Errorf("no trampoline entry recorded for %s", name)
	}

	var exePath string
	if direct, isDirect := strings.CutPrefix(entry.anchorOrPath, directPrefix); isDirect {
		exePath = direct
	} else {
		targetDir, err := resolveAnchorByName(anchorsDir, entry.anchorOrPath)
		if err != nil {
			return err
		}
		exePath = filepath.Join(targetDir, entry.execName)
	}

	cmd := exec.Command(exePath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
