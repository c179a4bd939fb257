package release

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dangerouslaser/repogen/internal/checksum"
	"github.com/dangerouslaser/repogen/internal/config"
)

// fakeSource implements Source with pluggable behavior per test.
type fakeSource struct {
	latest   func(ctx context.Context, repo string) (*Release, error)
	download func(ctx context.Context, repo, tag, pattern, destDir string) (string, error)
}

func (f *fakeSource) LatestRelease(ctx context.Context, repo string) (*Release, error) {
	return f.latest(ctx, repo)
}

func (f *fakeSource) DownloadAsset(ctx context.Context, repo, tag, pattern, destDir string) (string, error) {
	return f.download(ctx, repo, tag, pattern, destDir)
}

// writeAddonZip drops a zip with a manifest entry into destDir.
func writeAddonZip(t *testing.T, destDir, addonID, fileName, manifest string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(destDir, 0o755))

	path := filepath.Join(destDir, fileName)

	out, err := os.Create(path)
	require.NoError(t, err)

	writer := zip.NewWriter(out)

	w, err := writer.Create(addonID + "/addon.xml")
	require.NoError(t, err)

	_, err = w.Write([]byte(manifest))
	require.NoError(t, err)

	require.NoError(t, writer.Close())
	require.NoError(t, out.Close())

	return path
}

// testAddon is the configured addon used across acquirer tests.
var testAddon = config.Addon{
	ID:           "plugin.video.x",
	Repo:         "owner/name",
	AssetPattern: "plugin.video.x-*.zip",
}

// TestAcquireSuccess covers the full download-extract-digest sequence.
func TestAcquireSuccess(t *testing.T) {
	t.Parallel()

	destDir := filepath.Join(t.TempDir(), "plugin.video.x")
	manifest := `<addon id="plugin.video.x" version="1.4.0"/>`

	source := &fakeSource{
		latest: func(_ context.Context, _ string) (*Release, error) {
			return &Release{Tag: "v1.4.0", Assets: []string{"plugin.video.x-1.4.0.zip"}}, nil
		},
		download: func(_ context.Context, _, _, _, dir string) (string, error) {
			return writeAddonZip(t, dir, "plugin.video.x", "plugin.video.x-1.4.0.zip", manifest), nil
		},
	}

	acquirer := NewAcquirer(source, time.Minute)

	result, err := acquirer.Acquire(context.Background(), testAddon, destDir)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Equal(t, "v1.4.0", result.Tag)
	require.Equal(t, manifest, result.Fragment)

	// Digest sidecar sits beside the artifact and matches its content.
	sidecar, err := os.ReadFile(result.ArchivePath + checksum.Extension)
	require.NoError(t, err)

	digest, err := checksum.File(result.ArchivePath)
	require.NoError(t, err)
	require.Equal(t, digest, string(sidecar))
}

// TestAcquireSkips checks that upstream failures turn into nil results.
func TestAcquireSkips(t *testing.T) {
	t.Parallel()

	// Release query fails.
	source := &fakeSource{
		latest: func(_ context.Context, _ string) (*Release, error) {
			return nil, errors.New("rate limited")
		},
	}

	result, err := NewAcquirer(source, time.Minute).Acquire(context.Background(), testAddon, t.TempDir())
	require.NoError(t, err)
	require.Nil(t, result)

	// No matching asset.
	source = &fakeSource{
		latest: func(_ context.Context, _ string) (*Release, error) {
			return &Release{Tag: "v2.0.0"}, nil
		},
		download: func(_ context.Context, _, _, _, _ string) (string, error) {
			return "", ErrAssetNotFound
		},
	}

	result, err = NewAcquirer(source, time.Minute).Acquire(context.Background(), testAddon, t.TempDir())
	require.NoError(t, err)
	require.Nil(t, result)

	// Download reports success but no archive appears.
	source = &fakeSource{
		latest: func(_ context.Context, _ string) (*Release, error) {
			return &Release{Tag: "v2.0.0"}, nil
		},
		download: func(_ context.Context, _, _, _, dir string) (string, error) {
			require.NoError(t, os.MkdirAll(dir, 0o755))

			notZip := filepath.Join(dir, "release-notes.txt")

			return notZip, os.WriteFile(notZip, []byte("notes"), 0o600)
		},
	}

	result, err = NewAcquirer(source, time.Minute).Acquire(context.Background(), testAddon, t.TempDir())
	require.NoError(t, err)
	require.Nil(t, result)

	// Archive downloaded but holds no manifest.
	source = &fakeSource{
		latest: func(_ context.Context, _ string) (*Release, error) {
			return &Release{Tag: "v2.0.0"}, nil
		},
		download: func(_ context.Context, _, _, _, dir string) (string, error) {
			return writeAddonZip(t, dir, "unrelated.addon", "plugin.video.x-2.0.0.zip",
				`<addon id="unrelated.addon"/>`), nil
		},
	}

	result, err = NewAcquirer(source, time.Minute).Acquire(context.Background(), testAddon, t.TempDir())
	require.NoError(t, err)
	require.Nil(t, result)
}

// TestFindArchive ensures deterministic candidate selection.
func TestFindArchive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.zip"), []byte("b"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.zip"), []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("n"), 0o600))

	path, ok := findArchive(dir)
	require.True(t, ok)
	require.Equal(t, filepath.Join(dir, "a.zip"), path)

	_, ok = findArchive(filepath.Join(dir, "missing"))
	require.False(t, ok)
}
