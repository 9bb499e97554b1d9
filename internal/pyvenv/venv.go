// Package pyvenv materializes a virtual environment directory tree
// pointing at a Python interpreter, with patch-transparent indirection
// for managed interpreters: the venv's scripts directory binds to a
// registry anchor rather than a specific patch install, so a later
// patch upgrade is invisible to every venv built against it.
package pyvenv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsukumogami/pyinstall/internal/pydiscover"
	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyplatform"
	"github.com/tsukumogami/pyinstall/internal/pyregistry"
)

// Options configures Create.
type Options struct {
	// Path is the venv's target directory.
	Path string
	// Interpreter is the probed base interpreter to build the venv
	// against, from pydiscover.
	Interpreter pydiscover.Interpreter
	// Key is the installation key for Interpreter when it is managed.
	// Required (and ignored otherwise) when Interpreter.Managed is true.
	Key pykey.Key
	// Registry resolves the per-minor anchor for a managed Key. Required
	// (and ignored otherwise) when Interpreter.Managed is true.
	Registry *pyregistry.Registry

	// AllowExisting permits reusing a directory that already contains a
	// pyvenv.cfg, recreating its links and activation scripts in place.
	AllowExisting bool
	// SystemSitePackages includes the base interpreter's system
	// site-packages on the venv's sys.path.
	SystemSitePackages bool
	// Relocatable rewrites the POSIX sh, fish, and cmd activation
	// scripts' VIRTUAL_ENV assignment to resolve dynamically at
	// activation time, so the venv survives being moved.
	Relocatable bool
	// Seed records that seed packages (pip, setuptools) were requested.
	// Actually installing them is outside this package; see DESIGN.md.
	Seed bool
	// Prompt overrides the activation prompt prefix; defaults to the
	// venv directory's base name in parentheses.
	Prompt string
}

// Venv describes a successfully created virtual environment.
type Venv struct {
	Scheme Scheme
	Base   Base
}

// Create materializes a venv at opts.Path. It is idempotent for
// directory structure and links; activation scripts and pyvenv.cfg are
// rewritten on every call, so re-running Create against an existing
// venv (with AllowExisting) refreshes them without disturbing
// installed packages in site-packages.
func Create(opts Options) (*Venv, error) {
	if err := validatePrecondition(opts.Path, opts.AllowExisting); err != nil {
		return nil, err
	}

	key := opts.Key
	if !opts.Interpreter.Managed {
		key = syntheticKey(opts.Interpreter)
	}

	base := ResolveBase(opts.Interpreter, key, opts.Registry)
	scheme := NewScheme(opts.Path, key)

	if err := os.MkdirAll(opts.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create venv directory: %w", err)
	}

	if err := createExecutables(scheme, key, base); err != nil {
		return nil, err
	}

	if err := seedSitePackages(scheme); err != nil {
		return nil, fmt.Errorf("failed to seed site-packages: %w", err)
	}

	if err := createLib64Compat(opts.Path, key); err != nil {
		return nil, err
	}

	if err := writeCacheAndGitignore(opts.Path); err != nil {
		return nil, fmt.Errorf("failed to write venv metadata: %w", err)
	}

	if err := writeActivationScripts(scheme, key, opts); err != nil {
		return nil, fmt.Errorf("failed to write activation scripts: %w", err)
	}

	var homeDir string
	switch {
	case base.Managed:
		homeDir = filepath.Join(base.Target, pyplatform.ScriptsDirName(key.Os))
	case opts.Interpreter.BaseExecutable != "":
		homeDir = filepath.Dir(opts.Interpreter.BaseExecutable)
	default:
		homeDir = filepath.Dir(opts.Interpreter.Path)
	}

	cfg := cfgFromKey(homeDir, key)
	cfg.IncludeSystemSite = opts.SystemSitePackages
	cfg.Relocatable = opts.Relocatable
	cfg.Seed = opts.Seed
	cfg.Prompt = promptFor(opts)
	if err := writeCfg(opts.Path, cfg); err != nil {
		return nil, fmt.Errorf("failed to write pyvenv.cfg: %w", err)
	}

	return &Venv{Scheme: scheme, Base: base}, nil
}

// validatePrecondition implements the ordered checks spec'd for
// Create's target path: it must not exist, or must be empty, or (with
// allowExisting) must already be a venv.
func validatePrecondition(path string, allowExisting bool) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat venv target: %w", err)
	}

	if !info.IsDir() {
		return &PreconditionError{Path: path, Reason: "target exists and is a regular file"}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("failed to read venv target directory: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	if IsVenvDir(path) {
		if allowExisting {
			return nil
		}
		return &PreconditionError{Path: path, Reason: "already a virtual environment; pass AllowExisting to recreate it"}
	}

	return &PreconditionError{Path: path, Reason: "non-empty directory that is not a virtual environment"}
}

// syntheticKey builds a pykey.Key describing a non-managed interpreter
// well enough to name its venv links and pyvenv.cfg fields, without it
// ever being published to the registry.
func syntheticKey(interp pydiscover.Interpreter) pykey.Key {
	return pykey.New(
		interp.Implementation,
		interp.Major, interp.Minor, interp.Patch,
		pykey.Prerelease{},
		pyplatform.CurrentOs(), pyplatform.CurrentArch(), pyplatform.DetectLibc(), pyplatform.VariantDefault,
	)
}

func promptFor(opts Options) string {
	if opts.Prompt != "" {
		return opts.Prompt
	}
	return filepath.Base(opts.Path)
}
