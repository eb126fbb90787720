package cache

import (
	"context"
	"time"
)

// NullCache is the backend behind `cache.backend = "none"`: every layout
// and render recomputes from the snapshot. Also the default for library
// users who construct a pipeline Runner without a cache.
type NullCache struct{}

// NewNullCache returns the disabled-cache backend.
func NewNullCache() Cache {
	return NullCache{}
}

// Get always misses.
func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value.
func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete is a no-op.
func (NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close is a no-op.
func (NullCache) Close() error {
	return nil
}

// Ensure NullCache implements Cache.
var _ Cache = NullCache{}
