package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dangerouslaser/repogen/internal/archive"
	"github.com/dangerouslaser/repogen/internal/checksum"
	"github.com/dangerouslaser/repogen/internal/config"
	"github.com/dangerouslaser/repogen/internal/logger"
)

// sidecarFileMode is used for digest sidecar files.
const sidecarFileMode os.FileMode = 0o644

// Result carries one successfully acquired addon artifact.
type Result struct {
	// ArchivePath is the downloaded artifact on disk.
	ArchivePath string
	// Fragment is the manifest text extracted from the artifact.
	Fragment string
	// Tag is the release tag the artifact was published under.
	Tag string
}

// Acquirer turns a configured addon into a downloaded artifact with an
// extracted manifest fragment and a digest sidecar. Failures caused by the
// upstream service or by the artifact's content are converted into skips:
// one warning is logged and a nil Result is returned, so a bad addon never
// aborts the rest of the run. Only local filesystem errors surface as
// errors.
type Acquirer struct {
	// source is the upstream release service.
	source Source
	// timeout bounds one addon's release query plus download.
	timeout time.Duration
}

// NewAcquirer returns an Acquirer using the provided release source.
func NewAcquirer(source Source, timeout time.Duration) *Acquirer {
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	return &Acquirer{
		source:  source,
		timeout: timeout,
	}
}

// Acquire fetches the latest release artifact of one addon into destDir.
// It returns (nil, nil) when the addon is skipped.
func (a *Acquirer) Acquire(ctx context.Context, addon config.Addon, destDir string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	logger.InfoKV(ctx, "Fetching latest release", "addon", addon.ID, "repo", addon.Repo)

	rel, err := a.source.LatestRelease(ctx, addon.Repo)
	if err != nil {
		logger.WarnKV(ctx, "Could not fetch release, skipping addon",
			"addon", addon.ID, "repo", addon.Repo, "error", err.Error())

		return nil, nil
	}

	logger.InfoKV(ctx, "Found release", "addon", addon.ID, "tag", rel.Tag)

	if _, err := a.source.DownloadAsset(ctx, addon.Repo, rel.Tag, addon.AssetPattern, destDir); err != nil {
		logger.WarnKV(ctx, "Could not download asset, skipping addon",
			"addon", addon.ID, "pattern", addon.AssetPattern, "tag", rel.Tag, "error", err.Error())

		return nil, nil
	}

	archivePath, ok := findArchive(destDir)
	if !ok {
		logger.WarnKV(ctx, "No archive appeared after download, skipping addon",
			"addon", addon.ID, "pattern", addon.AssetPattern, "tag", rel.Tag)

		return nil, nil
	}

	fragment, found, err := archive.ExtractManifest(archivePath, addon.ID)
	if err != nil || !found {
		kvs := []any{"addon", addon.ID, "archive", filepath.Base(archivePath)}
		if err != nil {
			kvs = append(kvs, "error", err.Error())
		}

		logger.WarnKV(ctx, "No manifest found in archive, skipping addon", kvs...)

		return nil, nil
	}

	if err := writeSidecar(archivePath); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Addon acquired",
		"addon", addon.ID, "tag", rel.Tag, "archive", filepath.Base(archivePath))

	return &Result{
		ArchivePath: archivePath,
		Fragment:    fragment,
		Tag:         rel.Tag,
	}, nil
}

// writeSidecar writes the digest sidecar file beside an artifact.
func writeSidecar(archivePath string) error {
	digest, err := checksum.File(archivePath)
	if err != nil {
		return fmt.Errorf("digest %s: %w", archivePath, err)
	}

	sidecarPath := archivePath + checksum.Extension
	if err := os.WriteFile(sidecarPath, []byte(digest), sidecarFileMode); err != nil {
		return fmt.Errorf("write %s: %w", sidecarPath, err)
	}

	return nil
}

// findArchive picks the archive file to publish from a download directory.
// Directory iteration order is filesystem-dependent, so the
// lexicographically smallest name wins to keep runs deterministic when
// more than one candidate is present.
func findArchive(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	// os.ReadDir returns entries sorted by filename.
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), archive.Extension) {
			return filepath.Join(dir, entry.Name()), true
		}
	}

	return "", false
}
