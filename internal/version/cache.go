package version

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// UpdateCheckInterval is how often we check for updates
	UpdateCheckInterval = 12 * time.Hour
	// UpdateCheckCacheFile is the name of the cache file
	UpdateCheckCacheFile = "modpanel-update-check.json"
)

// UpdateCheckCache stores the last update check information
type UpdateCheckCache struct {
	LastCheckTime time.Time `json:"last_check_time"`
	LatestVersion string    `json:"latest_version,omitempty"`
	UpdateURL     string    `json:"update_url,omitempty"`
}

type updateCache struct {
	dir string
}

func (c *updateCache) path() string {
	return filepath.Join(c.dir, UpdateCheckCacheFile)
}

func (c *updateCache) read() (*UpdateCheckCache, error) {
	data, err := os.ReadFile(c.path())
	if err != nil {
		if os.IsNotExist(err) {
			return &UpdateCheckCache{}, nil
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var cache UpdateCheckCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache: %w", err)
	}

	return &cache, nil
}

func (c *updateCache) write(cache *UpdateCheckCache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := os.WriteFile(c.path(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}

	return nil
}

// due reports whether UpdateCheckInterval has passed since the last check.
// An unreadable cache counts as due.
func (c *updateCache) due() bool {
	cache, err := c.read()
	if err != nil {
		return true
	}

	if cache.LastCheckTime.IsZero() {
		return true
	}

	return time.Since(cache.LastCheckTime) >= UpdateCheckInterval
}

// cachedUpdate returns the cached release when it is recent and newer than Version.
func (c *updateCache) cachedUpdate() (*GitHubRelease, bool) {
	cache, err := c.read()
	if err != nil {
		return nil, false
	}

	if cache.LatestVersion == "" || time.Since(cache.LastCheckTime) >= UpdateCheckInterval {
		return nil, false
	}

	comparison, err := CompareVersions(Version, cache.LatestVersion)
	if err != nil || comparison >= 0 {
		return nil, false
	}

	return &GitHubRelease{
		TagName: cache.LatestVersion,
		URL:     cache.UpdateURL,
	}, true
}

func (c *updateCache) store(release *GitHubRelease) error {
	cache := &UpdateCheckCache{
		LastCheckTime: time.Now(),
	}

	if release != nil {
		cache.LatestVersion = release.TagName
		cache.UpdateURL = release.URL
	}

	return c.write(cache)
}
