package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pedigraph/pedigraph/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Cache.Backend != "file" {
		t.Errorf("default cache backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("default store backend = %q, want file", cfg.Store.Backend)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("default server addr = %q, want :8080", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[layout]
card_width = 200.0

[cache]
backend = "none"

[server]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Layout.CardWidth != 200 {
		t.Errorf("card_width = %v, want 200", cfg.Layout.CardWidth)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("cache backend = %q, want none", cfg.Cache.Backend)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("server addr = %q, want :9090", cfg.Server.Addr)
	}
	// Untouched sections keep defaults
	if cfg.Store.Backend != "file" {
		t.Errorf("store backend = %q, want default file", cfg.Store.Backend)
	}
}

func TestLoadMissingExplicit(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[layout\ncard_width = "), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"unknown cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"redis without url", func(c *Config) { c.Cache.Backend = "redis"; c.Cache.URL = "" }, true},
		{"redis with url", func(c *Config) { c.Cache.Backend = "redis"; c.Cache.URL = "redis://localhost:6379" }, false},
		{"unknown store backend", func(c *Config) { c.Store.Backend = "dynamo" }, true},
		{"mongo without uri", func(c *Config) { c.Store.Backend = "mongo"; c.Store.URI = "" }, true},
		{"mongo with uri", func(c *Config) { c.Store.Backend = "mongo"; c.Store.URI = "mongodb://localhost" }, false},
		{"negative card width", func(c *Config) { c.Layout.CardWidth = -1 }, true},
		{"negative spacing", func(c *Config) { c.Layout.VSpace = -10 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("expected INVALID_CONFIG code, got %v", errors.GetCode(err))
			}
		})
	}
}
