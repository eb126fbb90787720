// Package config loads pedigraph configuration from TOML files.
//
// Configuration is optional: every field has a working default, so the CLI
// and server run without a config file at all. When a file is given (or
// found at the default location), its values override the defaults and
// command-line flags override both.
//
// # Example
//
//	[layout]
//	card_width  = 120.0
//	card_height = 56.0
//
//	[cache]
//	backend = "file"
//	dir     = "~/.cache/pedigraph"
//
//	[store]
//	backend = "file"
//	path    = "~/.local/share/pedigraph"
//
//	[server]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/pedigraph/pedigraph/pkg/errors"
)

// Config is the full application configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig overrides the chart geometry defaults.
// Zero values mean "use the engine default".
type LayoutConfig struct {
	CardWidth  float64 `toml:"card_width"`
	CardHeight float64 `toml:"card_height"`
	VSpace     float64 `toml:"v_space"`
	SideOffset float64 `toml:"side_offset"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none".
	Backend string `toml:"backend"`
	// Dir is the cache directory for the file backend.
	Dir string `toml:"dir"`
	// URL is the connection URL for the redis backend.
	URL string `toml:"url"`
}

// StoreConfig selects and configures the snapshot store backend.
type StoreConfig struct {
	// Backend is one of "memory", "file", or "mongo".
	Backend string `toml:"backend"`
	// Path is the storage directory for the file backend.
	Path string `toml:"path"`
	// URI is the connection URI for the mongo backend.
	URI string `toml:"uri"`
	// Database is the mongo database name.
	Database string `toml:"database"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Backend: "file",
			Dir:     defaultCacheDir(),
		},
		Store: StoreConfig{
			Backend:  "file",
			Path:     defaultStoreDir(),
			Database: "pedigraph",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads a TOML config file and merges it over the defaults.
// An empty path loads the default location; a missing file at the default
// location is not an error, a missing explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks backend selectors and value ranges.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis, or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.URL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis requires a url")
	}

	switch c.Store.Backend {
	case "", "memory", "file", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (want memory, file, or mongo)", c.Store.Backend)
	}
	if c.Store.Backend == "mongo" && c.Store.URI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store backend mongo requires a uri")
	}

	if c.Layout.CardWidth < 0 || c.Layout.CardHeight < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "card dimensions must be non-negative")
	}
	if c.Layout.VSpace < 0 || c.Layout.SideOffset < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "spacing values must be non-negative")
	}
	return nil
}

// DefaultPath returns the default config file location,
// ~/.config/pedigraph/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "pedigraph.toml"
	}
	return filepath.Join(dir, "pedigraph", "config.toml")
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".pedigraph-cache"
	}
	return filepath.Join(dir, "pedigraph")
}

func defaultStoreDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".pedigraph"
	}
	return filepath.Join(dir, ".local", "share", "pedigraph")
}
