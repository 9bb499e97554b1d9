package pydiscover

import (
	"context"
	"os"
	"path/filepath"

	"github.com/tsukumogami/pyinstall/internal/pyplatform"
	"github.com/tsukumogami/pyinstall/internal/pyregistry"
)

// Source enumerates candidate interpreter paths from one place to
// look: an active venv, the managed installations registry, PATH, and
// so on. A Source that has nothing to offer returns an empty slice,
// not an error; only genuine lookup failures (e.g. a malformed PATH
// entry) are errors, and those are treated as soft by the finder.
type Source interface {
	// Name identifies the source for logging.
	Name() string
	// Virtual reports whether paths from this source are virtual
	// environment interpreters (so EnvironmentPreference can filter it).
	Virtual() bool
	// Candidates lists interpreter executable paths, in preference order.
	Candidates(ctx context.Context) ([]string, error)
}

// activeVenvSource returns the interpreter of the currently active
// virtual environment, identified by $VIRTUAL_ENV.
type activeVenvSource struct {
	env func(string) string
}

func (s activeVenvSource) Name() string  { return "active-venv" }
func (s activeVenvSource) Virtual() bool { return true }

func (s activeVenvSource) Candidates(ctx context.Context) ([]string, error) {
	getenv := s.env
	if getenv == nil {
		getenv = os.Getenv
	}
	root := getenv("VIRTUAL_ENV")
	if root == "" {
		return nil, nil
	}
	path := filepath.Join(root, pyplatform.ScriptsDirName(pyplatform.CurrentOs()), pythonExeName())
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	return []string{path}, nil
}

// parentVenvSource walks upward from the working directory looking for
// a pyvenv.cfg marking an enclosing (but not activated) virtual
// environment, the way a project-local ".venv" is found without
// requiring activation.
type parentVenvSource struct {
	startDir func() (string, error)
}

func (s parentVenvSource) Name() string  { return "parent-venv" }
func (s parentVenvSource) Virtual() bool { return true }

func (s parentVenvSource) Candidates(ctx context.Context) ([]string, error) {
	start := s.startDir
	if start == nil {
		start = os.Getwd
	}
	dir, err := start()
	if err != nil {
		return nil, nil
	}

	var candidates []string
	for {
		venvDir := filepath.Join(dir, ".venv")
		if _, err := os.Stat(filepath.Join(venvDir, "pyvenv.cfg")); err == nil {
			path := filepath.Join(venvDir, pyplatform.ScriptsDirName(pyplatform.CurrentOs()), pythonExeName())
			if _, err := os.Stat(path); err == nil {
				candidates = append(candidates, path)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return candidates, nil
}

// registrySource offers every managed interpreter's canonical
// executable, newest patch first within each minor.
type registrySource struct {
	registry *pyregistry.Registry
}

func (s registrySource) Name() string  { return "registry" }
func (s registrySource) Virtual() bool { return false }

func (s registrySource) Candidates(ctx context.Context) ([]string, error) {
	if s.registry == nil {
		return nil, nil
	}
	installs, err := s.registry.List()
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, len(installs))
	for i := len(installs) - 1; i >= 0; i-- {
		inst := installs[i]
		scriptsDir := filepath.Join(inst.Path, pyplatform.ScriptsDirName(inst.Key.Os))
		candidates = append(candidates, filepath.Join(scriptsDir, inst.Key.ExecutableName()))
	}
	return candidates, nil
}

// pathSource scans $PATH for "python3", "python", "pypy3", and "graalpy".
type pathSource struct {
	env func(string) string
}

func (s pathSource) Name() string  { return "path" }
func (s pathSource) Virtual() bool { return false }

func (s pathSource) Candidates(ctx context.Context) ([]string, error) {
	getenv := s.env
	if getenv == nil {
		getenv = os.Getenv
	}
	pathEnv := getenv("PATH")
	if pathEnv == "" {
		return nil, nil
	}

	names := []string{"python3", "python", "pypy3", "graalpy"}
	exe := pyplatform.ExeSuffix(pyplatform.CurrentOs())

	var candidates []string
	seen := make(map[string]bool)
	for _, dir := range filepath.SplitList(pathEnv) {
		for _, name := range names {
			path := filepath.Join(dir, name+exe)
			if seen[path] {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			seen[path] = true
			candidates = append(candidates, path)
		}
	}
	return candidates, nil
}

func pythonExeName() string {
	return "python" + pyplatform.ExeSuffix(pyplatform.CurrentOs())
}
