package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/tsukumogami/pyinstall/internal/config"
	"github.com/tsukumogami/pyinstall/internal/errmsg"
	"github.com/tsukumogami/pyinstall/internal/httputil"
	"github.com/tsukumogami/pyinstall/internal/log"
	"github.com/tsukumogami/pyinstall/internal/progress"
	"github.com/tsukumogami/pyinstall/internal/pydiscover"
	"github.com/tsukumogami/pyinstall/internal/pydownload"
	"github.com/tsukumogami/pyinstall/internal/pyregistry"
)

// printInfo prints a result line to stdout unless --quiet is set.
func printInfo(a ...interface{}) {
	if !quietFlag {
		fmt.Println(a...)
	}
}

func printInfof(format string, a ...interface{}) {
	if !quietFlag {
		fmt.Printf(format, a...)
	}
}

// printError formats err with errmsg's suggestions and writes it to
// stderr.
func printError(err error) {
	fmt.Fprintln(os.Stderr, errmsg.Format(err, nil))
}

// httpClient builds the secure HTTP client every network operation in
// this command shares.
func httpClient() *http.Client {
	opts := httputil.DefaultOptions()
	opts.Timeout = config.GetAPITimeout()
	return httputil.NewSecureClient(opts)
}

// openRegistry opens the managed-interpreter registry at cfg's paths.
func openRegistry() (*pyregistry.Registry, error) {
	return pyregistry.New(cfg.InstallsDir, cfg.ScratchDir, cfg.AnchorsDir, cfg.LockFile)
}

// catalogProvider returns the pydiscover.CatalogProvider the finder
// uses for find-or-download: a cached-then-refreshed download catalog,
// resolved from the configured URL or, absent an override, from
// DefaultCatalogRepo's latest GitHub release.
func catalogProvider(client *http.Client) pydiscover.CatalogProvider {
	return func(ctx context.Context) (*pydownload.Catalog, error) {
		if catalog, ok := pydownload.LoadCachedCatalog(cfg.CatalogCache, config.GetCatalogCacheTTL()); ok {
			return catalog, nil
		}

		url := cfg.CatalogURL
		switch projectURL, ok := projectCatalogURLOverride(); {
		case url != config.DefaultCatalogURL:
			// PYINSTALL_CATALOG_URL already pins an explicit URL.
		case ok:
			url = projectURL
		default:
			gh := pydownload.NewGitHubClient(client)
			if resolved, err := pydownload.ResolveLatestCatalogURL(ctx, gh, pydownload.DefaultCatalogRepo); err == nil {
				url = resolved
			} else {
				log.Default().Warn("falling back to pinned catalog URL", "error", err)
			}
		}

		catalog, err := pydownload.FetchCatalog(ctx, client, url)
		if err != nil {
			return nil, err
		}

		if err := pydownload.SaveCatalogCache(cfg.CatalogCache, catalog); err != nil {
			log.Default().Warn("failed to cache download catalog", "error", err)
		}

		return catalog, nil
	}
}

// projectCatalogURLOverride reports the [tool.pyinstall] catalog-url
// set in a pyproject.toml above the current directory, if any.
func projectCatalogURLOverride() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	project, ok, err := pydiscover.ReadProjectConfig(dir)
	if err != nil || !ok || project.CatalogURL == "" {
		return "", false
	}
	return project.CatalogURL, true
}

// buildFinder assembles the discovery pipeline against the shared
// registry, fetcher, and catalog provider.
func buildFinder() (*pydiscover.Finder, *pyregistry.Registry, error) {
	reg, err := openRegistry()
	if err != nil {
		return nil, nil, err
	}

	client := httpClient()
	fetcher := pydownload.NewFetcher(client, reg)
	fetcher.SetProgress(progress.ShouldShowProgress())
	finder := pydiscover.NewFinder(reg, fetcher, catalogProvider(client))
	return finder, reg, nil
}
