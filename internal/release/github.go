package release

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	// tokenEnvVar optionally authenticates API requests to raise rate limits.
	tokenEnvVar = "GITHUB_TOKEN"

	// downloadRetries caps transport-level retries within one download call.
	downloadRetries = 3

	// retryWaitMin and retryWaitMax bound the backoff between retries.
	retryWaitMin = 2 * time.Second
	retryWaitMax = 15 * time.Second

	// destDirMode is used when creating per-addon download directories.
	destDirMode os.FileMode = 0o755
)

// GitHubSource queries releases and downloads assets through the GitHub API.
type GitHubSource struct {
	apiURL string
	token  string
	api    *github.Client
	client *retryablehttp.Client
}

// OptFunc enables specifying options for the source.
type OptFunc func(*GitHubSource)

// NewGitHubSource returns a release source backed by the GitHub API.
// An API token is picked up from the GITHUB_TOKEN environment variable
// unless provided explicitly.
func NewGitHubSource(opts ...OptFunc) (*GitHubSource, error) {
	s := &GitHubSource{
		token: os.Getenv(tokenEnvVar),
	}

	for _, opt := range opts {
		opt(s)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = downloadRetries
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.Logger = nil
	s.client = client

	api := github.NewClient(nil)
	if s.token != "" {
		api = api.WithAuthToken(s.token)
	}

	if s.apiURL != "" {
		apiURL := s.apiURL
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}

		baseURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid API URL: %w", err)
		}

		api.BaseURL = baseURL
	}

	s.api = api

	return s, nil
}

// WithToken sets an explicit API token.
func WithToken(token string) OptFunc {
	return func(s *GitHubSource) {
		s.token = token
	}
}

// WithAPIBaseURL overrides the API endpoint, for GitHub Enterprise or tests.
func WithAPIBaseURL(apiURL string) OptFunc {
	return func(s *GitHubSource) {
		s.apiURL = apiURL
	}
}

// LatestRelease returns the latest published release of the repository.
func (s *GitHubSource) LatestRelease(ctx context.Context, repo string) (*Release, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	rel, _, err := s.api.Repositories.GetLatestRelease(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("latest release of %s: %w", repo, err)
	}

	assets := make([]string, 0, len(rel.Assets))
	for _, asset := range rel.Assets {
		assets = append(assets, asset.GetName())
	}

	return &Release{
		Tag:    rel.GetTagName(),
		Assets: assets,
	}, nil
}

// DownloadAsset downloads the first glob-matching asset of the tagged
// release into destDir and returns the downloaded file path.
func (s *GitHubSource) DownloadAsset(ctx context.Context, repo, tag, pattern, destDir string) (string, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return "", err
	}

	rel, _, err := s.api.Repositories.GetReleaseByTag(ctx, owner, name, tag)
	if err != nil {
		return "", fmt.Errorf("release %s of %s: %w", tag, repo, err)
	}

	for _, asset := range rel.Assets {
		matched, err := path.Match(pattern, asset.GetName())
		if err != nil {
			return "", fmt.Errorf("asset pattern %q: %w", pattern, err)
		}

		if !matched {
			continue
		}

		return s.download(ctx, asset.GetBrowserDownloadURL(), destDir, asset.GetName())
	}

	return "", fmt.Errorf("no asset matching %q in %s %s: %w", pattern, repo, tag, ErrAssetNotFound)
}

// download fetches one asset URL into destDir, creating it if absent.
func (s *GitHubSource) download(ctx context.Context, assetURL, destDir, name string) (string, error) {
	if err := os.MkdirAll(destDir, destDirMode); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", assetURL, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%s: %w", assetURL, ErrAssetNotFound)
		}

		return "", fmt.Errorf("download %s: unexpected status %s", assetURL, resp.Status)
	}

	destPath := filepath.Join(destDir, name)

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", destPath, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()

		return "", fmt.Errorf("write %s: %w", destPath, err)
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", destPath, err)
	}

	return destPath, nil
}
