package pyvenv

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsukumogami/pyinstall/internal/buildinfo"
	"github.com/tsukumogami/pyinstall/internal/pykey"
)

// CfgFileName is the marker file identifying a directory as a venv.
const CfgFileName = "pyvenv.cfg"

// Cfg holds the recognized pyvenv.cfg keys. Home, Implementation,
// Version and IncludeSystemSite are always written; the other fields
// are omitted from the written file when left at their zero value.
type Cfg struct {
	Home                string
	Implementation      string
	Version             string // "version_info"
	IncludeSystemSite   bool
	Relocatable         bool
	Seed                bool
	Prompt              string
	VenvLauncherCommand string
}

// cfgFromKey fills the fixed, key-derived fields of a Cfg: home,
// implementation, and version_info.
func cfgFromKey(homeDir string, key pykey.Key) Cfg {
	return Cfg{
		Home:           homeDir,
		Implementation: implementationCfgName(key.Implementation),
		Version:        fmt.Sprintf("%d.%d.%d", key.Major, key.Minor, key.Patch),
	}
}

func implementationCfgName(impl pykey.Implementation) string {
	if impl.IsKnown() && impl.Known() != pykey.ImplCPython {
		return impl.String()
	}
	return "CPython"
}

// writeCfg writes pyvenv.cfg in the venv root, one `key = value` line
// per field, omitting keys that don't apply. "pyinstall" records the
// version of this tool that created the venv, the way uv's own venvs
// carry a "uv" key instead of virtualenv's "virtualenv".
func writeCfg(root string, cfg Cfg) error {
	var sb strings.Builder

	writeKV(&sb, "home", cfg.Home)
	writeKV(&sb, "implementation", cfg.Implementation)
	writeKV(&sb, "pyinstall", buildinfo.Version())
	writeKV(&sb, "version_info", cfg.Version)
	writeKV(&sb, "include-system-site-packages", boolStr(cfg.IncludeSystemSite))
	if cfg.Relocatable {
		writeKV(&sb, "relocatable", "true")
	}
	if cfg.Seed {
		writeKV(&sb, "seed", "true")
	}
	if cfg.Prompt != "" {
		writeKV(&sb, "prompt", cfg.Prompt)
	}
	if cfg.VenvLauncherCommand != "" {
		writeKV(&sb, "venvlauncher_command", cfg.VenvLauncherCommand)
	}

	return os.WriteFile(filepath.Join(root, CfgFileName), []byte(sb.String()), 0644)
}

func writeKV(sb *strings.Builder, key, value string) {
	sb.WriteString(key)
	sb.WriteString(" = ")
	sb.WriteString(value)
	sb.WriteString("\n")
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// IsVenvDir reports whether dir contains a pyvenv.cfg marker,
// identifying it as an existing virtual environment.
func IsVenvDir(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, CfgFileName))
	return err == nil
}

// ReadCfg reads and parses an existing pyvenv.cfg. Consumers treat it
// as plain key/value pairs split on the first '=', same as CPython's
// own venv module.
func ReadCfg(root string) (map[string]string, error) {
	f, err := os.Open(filepath.Join(root, CfgFileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		out[key] = value
	}
	return out, scanner.Err()
}
