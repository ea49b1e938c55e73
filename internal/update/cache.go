package update

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultCheckInterval is how long a cached check stays fresh.
const DefaultCheckInterval = 24 * time.Hour

// CacheEntry stores the last update check result for one repository.
type CacheEntry struct {
	CheckedAt       time.Time `json:"checked_at"`
	Repo            string    `json:"repo"`
	LatestTag       string    `json:"latest_tag"`
	UpdateAvailable bool      `json:"update_available"`
}

// CachePath returns the cache file for repo. Repos are keyed by hash so
// switching self_update.repo never reads another repo's result.
func CachePath(cacheDir, repo string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("self-update-%016x.json", xxhash.Sum64String(repo)))
}

// LoadCache loads the cached check result for repo.
func LoadCache(cacheDir, repo string) (*CacheEntry, error) {
	data, err := os.ReadFile(CachePath(cacheDir, repo))
	if err != nil {
		return nil, err
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	if entry.Repo != repo {
		return nil, fmt.Errorf("cache entry belongs to %q", entry.Repo)
	}
	return &entry, nil
}

// SaveCache writes entry, creating cacheDir when needed.
func SaveCache(cacheDir string, entry *CacheEntry) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(CachePath(cacheDir, entry.Repo), data, 0o644)
}

// IsCacheValid reports whether entry is younger than maxAge.
func IsCacheValid(entry *CacheEntry, maxAge time.Duration) bool {
	if maxAge <= 0 {
		maxAge = DefaultCheckInterval
	}
	return time.Since(entry.CheckedAt) < maxAge
}

// CacheEntryFor records the outcome of plan.
func CacheEntryFor(repo string, plan *Plan, at time.Time) *CacheEntry {
	return &CacheEntry{
		CheckedAt:       at,
		Repo:            repo,
		LatestTag:       plan.TargetTag(),
		UpdateAvailable: plan.Decision == UpdateAvailable,
	}
}
