// Package cache provides pluggable byte caches for layout and artifact
// results, plus the key derivation shared by the CLI and the HTTP API.
//
// Three backends cover the deployment spectrum:
//   - FileCache: directory-backed, for CLI usage
//   - RedisCache: shared cache for multi-instance server deployments
//   - NullCache: caching disabled
//
// Keys are derived from content hashes, never from file paths, so the same
// snapshot rendered through any entry point hits the same cache entries.
package cache

import (
	"context"
	"time"
)

// Cache is the interface all cache backends implement.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per cached stage. Layouts are cheap to recompute, artifacts
// less so; neither should outlive a day of active editing.
const (
	TTLLayout   = 6 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// LayoutKeyOpts are the layout options that change geometry and therefore
// participate in the cache key.
type LayoutKeyOpts struct {
	FocalID    string
	CardWidth  float64
	CardHeight float64
	VSpace     float64
	SideOffset float64
}

// ArtifactKeyOpts are the render options that change output bytes and
// therefore participate in the cache key.
type ArtifactKeyOpts struct {
	Format string
	View   string // "chart" or "nodelink"
}

// Keyer derives cache keys for the pipeline stages.
type Keyer interface {
	// LayoutKey derives the key for a computed layout from the snapshot
	// content hash and the geometry-relevant options.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string

	// ArtifactKey derives the key for a rendered artifact from the layout
	// content hash and the render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the option structs into namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// LayoutKey implements Keyer.
func (k *DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", snapshotHash, opts)
}

// ArtifactKey implements Keyer.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
