//go:build windows

package pydiscover

import (
	"context"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// platformRegistrySource reads the py launcher's registration of
// installed CPython distributions from
// HKEY_CURRENT_USER\Software\Python\PythonCore\<version>\InstallPath,
// the same registry tree "py.exe" itself consults.
type platformRegistrySource struct{}

func (s platformRegistrySource) Name() string  { return "platform-registry" }
func (s platformRegistrySource) Virtual() bool { return false }

func (s platformRegistrySource) Candidates(ctx context.Context) ([]string, error) {
	root, err := registry.OpenKey(registry.CURRENT_USER, `Software\Python\PythonCore`, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return nil, nil
	}
	defer root.Close()

	versions, err := root.ReadSubKeyNames(-1)
	if err != nil {
		return nil, nil
	}

	var candidates []string
	for _, version := range versions {
		installKey, err := registry.OpenKey(registry.CURRENT_USER, `Software\Python\PythonCore\`+version+`\InstallPath`, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		dir, _, err := installKey.GetStringValue("")
		installKey.Close()
		if err != nil || dir == "" {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, "python.exe"))
	}
	return candidates, nil
}
