package pydiscover

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectConfigFileName is the project manifest ReadProjectConfig looks
// for a [tool.pyinstall] table in, matching pip/uv's pyproject.toml
// convention for per-project tool configuration.
const ProjectConfigFileName = "pyproject.toml"

// projectManifest mirrors the handful of pyproject.toml fields this
// package cares about; everything else in the file is ignored.
type projectManifest struct {
	Tool struct {
		Pyinstall ProjectConfig `toml:"pyinstall"`
	} `toml:"tool"`
}

// ProjectConfig is the [tool.pyinstall] table of a pyproject.toml.
type ProjectConfig struct {
	// Python pins a version constraint the same way a .python-version
	// file does, for projects that keep their pin alongside other
	// tool configuration instead of in a separate file.
	Python string `toml:"python"`

	// CatalogURL overrides the default interpreter download catalog
	// for this project.
	CatalogURL string `toml:"catalog-url"`
}

// ReadProjectConfig walks upward from dir looking for a pyproject.toml
// with a [tool.pyinstall] table, stopping at the first one found (even
// if its table is empty) the way ReadPin stops at the first
// .python-version file. Returns ok=false if none is found anywhere up
// to the filesystem root.
func ReadProjectConfig(dir string) (ProjectConfig, bool, error) {
	for {
		path := filepath.Join(dir, ProjectConfigFileName)
		data, err := os.ReadFile(path)
		if err == nil {
			var manifest projectManifest
			if _, decodeErr := toml.Decode(string(data), &manifest); decodeErr != nil {
				return ProjectConfig{}, false, decodeErr
			}
			return manifest.Tool.Pyinstall, true, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ProjectConfig{}, false, nil
		}
		dir = parent
	}
}

// RequestFromProjectOrPinOrDefault resolves the python request for dir
// with precedence: a .python-version pin file first (it's the more
// specific, single-purpose signal), then pyproject.toml's
// [tool.pyinstall] python field, then Default().
func RequestFromProjectOrPinOrDefault(dir string) (PythonRequest, error) {
	if pin, ok := ReadPin(dir); ok {
		return Version(pin), nil
	}

	project, ok, err := ReadProjectConfig(dir)
	if err != nil {
		return PythonRequest{}, err
	}
	if ok && project.Python != "" {
		return Version(project.Python), nil
	}

	return Default(), nil
}
