package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

const (
	// GitHubRepoOwner is the GitHub repository owner
	GitHubRepoOwner = "modpanel"
	// GitHubRepoName is the GitHub repository name
	GitHubRepoName = "cli"
)

// ReleasesAPIBaseURL is the base URL for the GitHub API.
// Tests point it at a local server.
var ReleasesAPIBaseURL = "https://api.github.com"

// GitHubRelease represents a GitHub release
type GitHubRelease struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	URL     string `json:"html_url"`
}

// GetLatestRelease fetches the latest release from GitHub
func GetLatestRelease(ctx context.Context) (*GitHubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", ReleasesAPIBaseURL, GitHubRepoOwner, GitHubRepoName)

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", UserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch release: status %d, body: %s", resp.StatusCode, string(body))
	}

	var release GitHubRelease
	if err := json.Unmarshal(body, &release); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &release, nil
}

// UserAgent returns the user agent string sent with every outbound request.
func UserAgent() string {
	return "modpanel-cli-" + Version
}

// CompareVersions compares the current version with the latest version
// Returns:
// - -1 if current < latest
// - 0 if current == latest
// - 1 if current > latest
// - error if versions cannot be parsed
func CompareVersions(current, latest string) (int, error) {
	currentVer, err := semver.NewVersion(strings.TrimPrefix(current, "v"))
	if err != nil {
		return 0, fmt.Errorf("failed to parse current version %s: %w", current, err)
	}

	latestVer, err := semver.NewVersion(strings.TrimPrefix(latest, "v"))
	if err != nil {
		return 0, fmt.Errorf("failed to parse latest version %s: %w", latest, err)
	}

	return currentVer.Compare(latestVer), nil
}

// CheckForUpdate returns the latest release if it is newer than Version, nil otherwise.
func CheckForUpdate(ctx context.Context) (*GitHubRelease, error) {
	latest, err := GetLatestRelease(ctx)
	if err != nil {
		return nil, err
	}

	comparison, err := CompareVersions(Version, latest.TagName)
	if err != nil {
		return nil, err
	}

	if comparison < 0 {
		return latest, nil
	}

	return nil, nil
}

// CheckForUpdateAsync checks for updates in the background and calls showMessage
// when a newer release exists. It waits at most one second so that short commands
// still print the notice, and consults the on-disk cache so GitHub is queried at
// most once per UpdateCheckInterval.
func CheckForUpdateAsync(cacheDir string, showMessage func(*GitHubRelease)) {
	cache := &updateCache{dir: cacheDir}

	if cachedRelease, ok := cache.cachedUpdate(); ok {
		showMessage(cachedRelease)
		return
	}

	if !cache.due() {
		return
	}

	done := make(chan *GitHubRelease, 1)

	go func() {
		latest, err := CheckForUpdate(context.Background())
		if err != nil {
			// Update checks never surface errors
			done <- nil
			return
		}

		// Cache even when there is no update, to avoid checking too frequently
		_ = cache.store(latest)
		done <- latest
	}()

	select {
	case release := <-done:
		if release != nil {
			showMessage(release)
		}
	case <-time.After(1000 * time.Millisecond):
		// The check keeps running in the background
	}
}
