package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsukumogami/pyinstall/internal/pydiscover"
)

var (
	findDownload   bool
	findSystemOnly bool
	findManaged    bool
)

var findCmd = &cobra.Command{
	Use:   "find [version]",
	Short: "Resolve a Python request against the host's interpreters",
	Long: `find resolves version (or, if omitted, a ".python-version" pin file
found by walking up from the current directory, or any interpreter) to
an installed interpreter, without modifying anything unless --download
is passed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().BoolVar(&findDownload, "download", false, "Fetch a managed interpreter if nothing on the host satisfies the request")
	findCmd.Flags().BoolVar(&findSystemOnly, "system", false, "Only consider unmanaged (system/PATH) interpreters")
	findCmd.Flags().BoolVar(&findManaged, "managed", false, "Only consider registry-managed interpreters")
}

func runFind(cmd *cobra.Command, args []string) error {
	req, err := findRequest(args)
	if err != nil {
		return err
	}

	finder, _, err := buildFinder()
	if err != nil {
		return err
	}

	envPref := pydiscover.Any
	pyPref := pydiscover.PreferManaged
	if findSystemOnly {
		pyPref = pydiscover.OnlySystemPython
	}
	if findManaged {
		pyPref = pydiscover.OnlyManaged
	}

	var interp pydiscover.Interpreter
	if findDownload {
		interp, err = finder.FindOrDownload(cmd.Context(), req, envPref, pyPref)
	} else {
		interp, err = finder.Find(cmd.Context(), req, envPref, pyPref)
	}
	if err != nil {
		return err
	}

	printInfof("%d.%d.%d\t%s\n", interp.Major, interp.Minor, interp.Patch, interp.Path)
	return nil
}

func findRequest(args []string) (pydiscover.PythonRequest, error) {
	if len(args) == 0 {
		dir, err := os.Getwd()
		if err != nil {
			return pydiscover.PythonRequest{}, fmt.Errorf("failed to determine working directory: %w", err)
		}
		return pydiscover.RequestFromProjectOrPinOrDefault(dir)
	}
	return pydiscover.Version(args[0]), nil
}
