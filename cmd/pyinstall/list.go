package main

import (
	"github.com/spf13/cobra"

	"github.com/tsukumogami/pyinstall/internal/pydownload"
)

var listAvailable bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed (or, with --available, downloadable) interpreters",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listAvailable, "available", false, "List catalog entries instead of installed interpreters")
}

func runList(cmd *cobra.Command, args []string) error {
	if listAvailable {
		return listAvailableCatalog(cmd)
	}
	return listInstalled()
}

func listInstalled() error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	installs, err := reg.List()
	if err != nil {
		return err
	}
	if len(installs) == 0 {
		printInfo("No interpreters installed.")
		return nil
	}
	for _, inst := range installs {
		printInfof("%s\t%s\n", inst.Key.String(), inst.Path)
	}
	return nil
}

func listAvailableCatalog(cmd *cobra.Command) error {
	client := httpClient()
	catalog, err := catalogProvider(client)(cmd.Context())
	if err != nil {
		return err
	}
	for _, entry := range catalog.Entries {
		printEntry(entry)
	}
	return nil
}

func printEntry(entry pydownload.CatalogEntry) {
	printInfof("%s-%s-%s-%s-%s\n", entry.Implementation, entry.Version, entry.Os, entry.Arch, entry.Libc)
}
