package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/pyinstall/internal/pydiscover"
	"github.com/tsukumogami/pyinstall/internal/pykey"
	"github.com/tsukumogami/pyinstall/internal/pyregistry"
	"github.com/tsukumogami/pyinstall/internal/pyvenv"
)

var (
	venvPython             string
	venvSystemSitePackages bool
	venvRelocatable        bool
	venvSeed               bool
	venvPrompt             string
	venvAllowExisting      bool
)

var venvCmd = &cobra.Command{
	Use:   "venv <path>",
	Short: "Create a virtual environment",
	Long: `venv materializes a virtual environment at path, pointing at the
interpreter resolved from --python (downloading a managed one if
necessary), with patch-transparent indirection: a later patch upgrade
of the same minor version is picked up without recreating the venv.`,
	Args: cobra.ExactArgs(1),
	RunE: runVenv,
}

func init() {
	venvCmd.Flags().StringVarP(&venvPython, "python", "p", "", "Version constraint or installation key of the interpreter to use")
	venvCmd.Flags().BoolVar(&venvSystemSitePackages, "system-site-packages", false, "Give the venv access to the base interpreter's site-packages")
	venvCmd.Flags().BoolVar(&venvRelocatable, "relocatable", false, "Make activation scripts resolve the venv directory dynamically")
	venvCmd.Flags().BoolVar(&venvSeed, "seed", false, "Record that seed packages (pip, setuptools) were requested")
	venvCmd.Flags().StringVar(&venvPrompt, "prompt", "", "Override the activation prompt prefix")
	venvCmd.Flags().BoolVar(&venvAllowExisting, "allow-existing", false, "Reuse a path that is already a virtual environment")
}

func runVenv(cmd *cobra.Command, args []string) error {
	path := args[0]

	req, err := venvRequest()
	if err != nil {
		return err
	}

	finder, reg, err := buildFinder()
	if err != nil {
		return err
	}

	interp, err := finder.FindOrDownload(cmd.Context(), req, pydiscover.OnlySystem, pydiscover.PreferManaged)
	if err != nil {
		return err
	}

	var key pykey.Key
	if interp.Managed {
		k, ok, err := managedKeyFor(reg, interp)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("could not determine installation key for managed interpreter at %s", interp.Path)
		}
		key = k
	}

	venv, err := pyvenv.Create(pyvenv.Options{
		Path:               path,
		Interpreter:        interp,
		Key:                key,
		Registry:           reg,
		AllowExisting:      venvAllowExisting,
		SystemSitePackages: venvSystemSitePackages,
		Relocatable:        venvRelocatable,
		Seed:               venvSeed,
		Prompt:             venvPrompt,
	})
	if err != nil {
		return err
	}

	printInfof("Created virtual environment at %s (%s)\n", venv.Scheme.Root, venv.Base.Target)
	return nil
}

func venvRequest() (pydiscover.PythonRequest, error) {
	if venvPython == "" {
		dir, err := os.Getwd()
		if err != nil {
			return pydiscover.PythonRequest{}, fmt.Errorf("failed to determine working directory: %w", err)
		}
		return pydiscover.RequestFromProjectOrPinOrDefault(dir)
	}
	if strings.Count(venvPython, "-") >= 4 {
		if key, err := pykey.Parse(venvPython); err == nil {
			return pydiscover.ForKey(key), nil
		}
	}
	return pydiscover.Version(venvPython), nil
}

// managedKeyFor finds the installation key of the registry entry
// interp's path resolves into, by matching interp.Path against each
// entry's directory.
func managedKeyFor(reg *pyregistry.Registry, interp pydiscover.Interpreter) (pykey.Key, bool, error) {
	installs, err := reg.List()
	if err != nil {
		return pykey.Key{}, false, err
	}
	for _, inst := range installs {
		if strings.HasPrefix(interp.Path, inst.Path+string(filepath.Separator)) {
			return inst.Key, true, nil
		}
	}
	return pykey.Key{}, false, nil
}
