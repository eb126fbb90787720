package cli

import (
	"context"

	"github.com/pedigraph/pedigraph/pkg/cache"
	"github.com/pedigraph/pedigraph/pkg/config"
	"github.com/pedigraph/pedigraph/pkg/store"
)

// loadConfig loads the config file named by --config, or the default
// location when the flag is unset.
func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

// openCache constructs the cache backend selected by the config.
func openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Cache.URL)
	default:
		return cache.NewFileCache(cfg.Cache.Dir)
	}
}

// openStore constructs the snapshot store backend selected by the config.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "mongo":
		return store.NewMongoStore(ctx, cfg.Store.URI, cfg.Store.Database)
	default:
		return store.NewFileStore(cfg.Store.Path)
	}
}
