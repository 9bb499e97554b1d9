package main

import (
	"github.com/spf13/cobra"

	"github.com/tsukumogami/pyinstall/internal/progress"
	"github.com/tsukumogami/pyinstall/internal/pydownload"
)

var installCmd = &cobra.Command{
	Use:   "install [version]",
	Short: "Download and install a managed Python interpreter",
	Long: `install resolves version (a constraint like "3.12" or "3.12.4",
or empty for the newest CPython the catalog offers) against the
download catalog and, unless a matching installation already exists,
fetches and publishes it into the registry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	var constraint string
	if len(args) > 0 {
		constraint = args[0]
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}

	client := httpClient()
	catalog, err := catalogProvider(client)(ctx)
	if err != nil {
		return err
	}

	filled := pydownload.Fill(pydownload.Request{VersionConstraint: constraint})
	descriptor, err := pydownload.Plan(catalog, filled)
	if err != nil {
		return err
	}

	if existing, ok, err := reg.Find(descriptor.Key); err != nil {
		return err
	} else if ok {
		printInfof("%s is already installed at %s\n", existing.Key.String(), existing.Path)
		return nil
	}

	fetcher := pydownload.NewFetcher(client, reg)
	fetcher.SetProgress(progress.ShouldShowProgress())
	installation, err := fetcher.Fetch(ctx, descriptor)
	if err != nil {
		return err
	}

	printInfof("Installed %s -> %s\n", installation.Key.String(), installation.Path)
	return nil
}
