package pydownload

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/go-github/v57/github"
)

// DefaultCatalogRepo is the GitHub repository whose releases publish
// the download-metadata.json index FetchCatalog parses, used when the
// caller hasn't pinned an explicit catalog URL.
const DefaultCatalogRepo = "astral-sh/python-build-standalone"

const catalogAssetName = "download-metadata.json"

// NewGitHubClient builds a go-github client over client, authenticating
// with GITHUB_TOKEN when set to raise the unauthenticated rate limit
// ResolveLatestCatalogURL would otherwise hit.
func NewGitHubClient(client *http.Client) *github.Client {
	gh := github.NewClient(client)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		gh = gh.WithAuthToken(token)
	}
	return gh
}

// ResolveLatestCatalogURL asks GitHub for repo's latest release and
// returns the browser download URL of its download-metadata.json
// asset. It is how the planner locates the newest catalog without a
// pinned PYINSTALL_CATALOG_URL.
func ResolveLatestCatalogURL(ctx context.Context, gh *github.Client, repo string) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}

	release, _, err := gh.Repositories.GetLatestRelease(ctx, owner, name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve latest %s release: %w", repo, err)
	}

	for _, asset := range release.Assets {
		if asset.GetName() == catalogAssetName {
			return asset.GetBrowserDownloadURL(), nil
		}
	}

	return "", fmt.Errorf("release %s of %s has no %s asset", release.GetTagName(), repo, catalogAssetName)
}

func splitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format %q (expected owner/repo)", repo)
	}
	return parts[0], parts[1], nil
}
