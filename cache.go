package nextver

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// CacheFileName is the side file in the repository root that holds the
// last branch-scoped resolution. It must never be distributed; see
// Provider.PruneFromManifest.
const CacheFileName = ".nextver_cache"

// ResolutionCache persists a single (commit id, version) pair across
// invocations so that repeated runs on an unchanged HEAD skip the
// ancestry walk. The cache never validates itself: callers compare the
// stored commit id against the current HEAD before trusting the
// version.
//
// Concurrent invocations are not guarded against; the intended use is
// a single release action at a time.
type ResolutionCache struct {
	fs billy.Filesystem
}

// NewResolutionCache stores the cache file under the given repository
// root on the host filesystem.
func NewResolutionCache(root string) *ResolutionCache {
	return &ResolutionCache{fs: osfs.New(root)}
}

// NewResolutionCacheFS stores the cache file on the given filesystem,
// which tests back with memfs.
func NewResolutionCacheFS(fs billy.Filesystem) *ResolutionCache {
	return &ResolutionCache{fs: fs}
}

// Get reads the stored pair. A missing or unreadable file and any
// content that is not exactly "<commit-id> <version>" are cache
// misses, never errors.
func (c *ResolutionCache) Get() (commitID, version string, ok bool) {
	data, err := util.ReadFile(c.fs, CacheFileName)
	if err != nil {
		return "", "", false
	}

	fields := strings.Fields(strings.TrimSpace(string(data)))
	if len(fields) != 2 {
		return "", "", false
	}

	return fields[0], fields[1], true
}

// Put overwrites the cache with the given pair. The record is written
// to a temporary file and renamed into place so a concurrent reader
// never observes a partial record.
func (c *ResolutionCache) Put(commitID, version string) error {
	record := fmt.Sprintf("%s %s\n", commitID, version)
	tmp := CacheFileName + ".tmp"

	if err := util.WriteFile(c.fs, tmp, []byte(record), 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := c.fs.Rename(tmp, CacheFileName); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}

	return nil
}

// Clear removes the cache file. Clearing an absent cache is not an
// error.
func (c *ResolutionCache) Clear() error {
	err := c.fs.Remove(CacheFileName)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing cache file: %w", err)
	}
	return nil
}
