package release

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Release describes the latest published release of an upstream repository.
type Release struct {
	// Tag is the release tag name.
	Tag string
	// Assets lists the downloadable asset names in release order.
	Assets []string
}

// Source abstracts the upstream release hosting service. Implementations
// must treat the repo argument as an "owner/name" slug.
type Source interface {
	// LatestRelease returns the latest published release of a repository.
	LatestRelease(ctx context.Context, repo string) (*Release, error)

	// DownloadAsset downloads the first asset of the tagged release whose
	// name matches the glob pattern into destDir (created if absent) and
	// returns the downloaded file path. A release or asset that does not
	// exist is reported through ErrAssetNotFound.
	DownloadAsset(ctx context.Context, repo, tag, pattern, destDir string) (string, error)
}

// ErrAssetNotFound indicates that no release asset matched the request.
var ErrAssetNotFound = errors.New("release asset not found")

// errRepoSlugInvalid indicates a repository coordinate that is not "owner/name".
var errRepoSlugInvalid = errors.New("repository must be an owner/name slug")

// splitRepo splits an "owner/name" slug into its two parts.
func splitRepo(repo string) (string, string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%q: %w", repo, errRepoSlugInvalid)
	}

	return owner, name, nil
}
