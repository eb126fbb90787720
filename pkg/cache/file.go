package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache keeps layout results and rendered chart artifacts on disk
// between CLI runs. Entries live under one directory per pipeline stage
// (taken from the key's namespace prefix) with a two-character hash shard
// below that, so `pedigraph cache clear` and manual inspection can tell
// layouts from artifacts at a glance.
type FileCache struct {
	dir string
}

// NewFileCache opens a file cache rooted at dir, creating it if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// fileEntry is the on-disk envelope around cached bytes. SavedAt is purely
// diagnostic; expiry is decided by ExpiresAt alone, with the zero value
// meaning the entry never expires.
type fileEntry struct {
	Data      []byte    `json:"data"`
	SavedAt   time.Time `json:"saved_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Get returns the cached bytes for key. Unreadable or expired entries are
// removed and reported as misses, never as errors, so a damaged cache can
// only cost a recompute.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return entry.Data, true, nil
}

// Set stores data under key with the given TTL; a zero TTL stores the entry
// without expiry. The write goes through a temp file and rename so a
// concurrent reader never sees a half-written entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{
		Data:    data,
		SavedAt: time.Now(),
	}
	if ttl > 0 {
		entry.ExpiresAt = entry.SavedAt.Add(ttl)
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pedigraph-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes the entry for key. A missing entry is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close is a no-op; every operation opens and closes its own files.
func (c *FileCache) Close() error {
	return nil
}

// path maps a cache key to its file. The stage namespace before the first
// ':' becomes the top-level directory ("layout", "artifact"); the rest of
// the key is hashed and sharded by its first two hex characters.
func (c *FileCache) path(key string) string {
	stage := "misc"
	rest := key
	if i := strings.IndexByte(key, ':'); i > 0 {
		stage = key[:i]
		rest = key[i+1:]
	}
	sum := Hash([]byte(rest))
	return filepath.Join(c.dir, stage, sum[:2], sum[2:]+".json")
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
