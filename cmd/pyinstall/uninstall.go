package main

import (
	"github.com/spf13/cobra"

	"github.com/tsukumogami/pyinstall/internal/pykey"
)

var uninstallCmd = &cobra.Command{
	Use:     "uninstall <key>",
	Aliases: []string{"remove"},
	Short:   "Remove a managed interpreter from the registry",
	Args:    cobra.ExactArgs(1),
	RunE:    runUninstall,
}

func runUninstall(cmd *cobra.Command, args []string) error {
	key, err := pykey.Parse(args[0])
	if err != nil {
		return &usageError{msg: err.Error()}
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}

	if err := reg.Remove(key); err != nil {
		return err
	}

	printInfof("Removed %s\n", key.String())
	return nil
}
