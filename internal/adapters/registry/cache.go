package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/mpm/internal/core/domain"
	"go.trai.ch/zerr"
)

// cachePath returns the disk cache file for name.
func (c *Client) cachePath(name string) string {
	return filepath.Join(c.cacheDir, fmt.Sprintf("%016x.json", xxhash.Sum64String(name)))
}

// loadFromCache returns a cached manifest that has not expired.
// Missing, corrupt and expired entries are all misses.
func (c *Client) loadFromCache(name string) (domain.ResolvedManifest, bool) {
	if c.cacheTTL <= 0 || c.cacheDir == "" {
		return nil, false
	}

	data, err := os.ReadFile(c.cachePath(name)) //nolint:gosec // Path is a hashed file name in the cache directory
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}
	if entry.Name != name || c.now().Sub(entry.FetchedAt) > c.cacheTTL {
		return nil, false
	}
	return entry.toManifest(), true
}

func (c *Client) saveToCache(name string, m domain.ResolvedManifest) error {
	if c.cacheTTL <= 0 || c.cacheDir == "" {
		return nil
	}

	data, err := json.Marshal(newCacheEntry(name, m, c.now()))
	if err != nil {
		return zerr.Wrap(err, "failed to marshal registry cache entry")
	}
	if err := atomicWriteFile(c.cachePath(name), data); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheCreateFailed, "write registry cache"), "cause", err.Error())
	}
	return nil
}

// atomicWriteFile writes data to a temp file and renames it into place.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "registry-cache-*.json")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, domain.PrivateFilePerm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
