package release

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newReleaseServer serves a minimal GitHub Releases API for owner/name with
// one release and one downloadable asset.
func newReleaseServer(t *testing.T, tag, assetName string, assetBody []byte) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	releaseJSON := func() string {
		return fmt.Sprintf(`{
			"tag_name": %q,
			"assets": [
				{"name": %q, "browser_download_url": %q}
			]
		}`, tag, assetName, server.URL+"/dl/"+assetName)
	}

	mux.HandleFunc("/repos/owner/name/releases/latest", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(releaseJSON()))
	})
	mux.HandleFunc("/repos/owner/name/releases/tags/"+tag, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(releaseJSON()))
	})
	mux.HandleFunc("/dl/"+assetName, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(assetBody)
	})

	return server
}

// TestGitHubSourceLatestRelease queries the fake API for the latest tag.
func TestGitHubSourceLatestRelease(t *testing.T) {
	t.Parallel()

	server := newReleaseServer(t, "v3.2.1", "plugin.video.x-3.2.1.zip", []byte("zipbytes"))

	source, err := NewGitHubSource(WithAPIBaseURL(server.URL), WithToken(""))
	require.NoError(t, err)

	rel, err := source.LatestRelease(context.Background(), "owner/name")
	require.NoError(t, err)
	require.Equal(t, "v3.2.1", rel.Tag)
	require.Equal(t, []string{"plugin.video.x-3.2.1.zip"}, rel.Assets)

	// Unknown repository surfaces an error.
	_, err = source.LatestRelease(context.Background(), "owner/other")
	require.Error(t, err)

	// Malformed slug is rejected before any request.
	_, err = source.LatestRelease(context.Background(), "not-a-slug")
	require.ErrorIs(t, err, errRepoSlugInvalid)
}

// TestGitHubSourceDownloadAsset downloads a glob-matched asset to disk.
func TestGitHubSourceDownloadAsset(t *testing.T) {
	t.Parallel()

	body := []byte("zip archive payload")
	server := newReleaseServer(t, "v3.2.1", "plugin.video.x-3.2.1.zip", body)

	source, err := NewGitHubSource(WithAPIBaseURL(server.URL), WithToken(""))
	require.NoError(t, err)

	destDir := filepath.Join(t.TempDir(), "plugin.video.x")

	path, err := source.DownloadAsset(context.Background(),
		"owner/name", "v3.2.1", "plugin.video.x-*.zip", destDir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(destDir, "plugin.video.x-3.2.1.zip"), path)

	downloaded, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, body, downloaded)

	// A pattern matching nothing reports ErrAssetNotFound.
	_, err = source.DownloadAsset(context.Background(),
		"owner/name", "v3.2.1", "*.tar.gz", t.TempDir())
	require.ErrorIs(t, err, ErrAssetNotFound)
}
