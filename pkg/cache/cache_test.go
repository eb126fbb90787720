package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// LayoutKey should include options in hash
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{FocalID: "p1", CardWidth: 120})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{FocalID: "p2", CardWidth: 120})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}

	// Same inputs produce same key
	lk3 := k.LayoutKey("hash123", LayoutKeyOpts{FocalID: "p1", CardWidth: 120})
	if lk1 != lk3 {
		t.Error("LayoutKey should be deterministic")
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("layoutA", ArtifactKeyOpts{Format: "svg", View: "chart"})
	ak2 := k.ArtifactKey("layoutA", ArtifactKeyOpts{Format: "png", View: "chart"})
	if ak1 == ak2 {
		t.Error("Different formats should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	base := NewDefaultKeyer()
	scoped := NewScopedKeyer(base, "user:42:")

	opts := LayoutKeyOpts{FocalID: "p1"}
	baseKey := base.LayoutKey("hash", opts)
	scopedKey := scoped.LayoutKey("hash", opts)

	if scopedKey != "user:42:"+baseKey {
		t.Errorf("ScopedKeyer should prefix the inner key, got %s", scopedKey)
	}

	// Nil inner falls back to the default keyer
	fallback := NewScopedKeyer(nil, "pre:")
	if fallback.LayoutKey("hash", opts) != "pre:"+baseKey {
		t.Error("nil inner keyer should fall back to DefaultKeyer")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expected miss before Set")
	}

	// Set then hit
	if err := c.Set(ctx, "key1", []byte("value1"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if string(data) != "value1" {
		t.Errorf("Get returned %q, want %q", data, "value1")
	}

	// Expired entries are misses
	if err := c.Set(ctx, "key2", []byte("value2"), -time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key2")
	if hit {
		t.Error("expected miss for expired entry")
	}

	// Delete
	if err := c.Delete(ctx, "key1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key1")
	if hit {
		t.Error("expected miss after Delete")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing key error: %v", err)
	}
}

func TestFileCacheStageDirectories(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	keys := map[string]string{
		"layout:aaa":   "layout",
		"artifact:bbb": "artifact",
		"plainkey":     "misc",
	}
	for key := range keys {
		if err := c.Set(ctx, key, []byte("x"), 0); err != nil {
			t.Fatalf("Set(%q) error: %v", key, err)
		}
	}

	// Entries land under one directory per stage namespace.
	for key, stage := range keys {
		if _, err := os.Stat(filepath.Join(dir, stage)); err != nil {
			t.Errorf("key %q should create stage dir %q: %v", key, stage, err)
		}
		data, hit, err := c.Get(ctx, key)
		if err != nil || !hit || string(data) != "x" {
			t.Errorf("Get(%q) = %q, %v, %v after Set", key, data, hit, err)
		}
	}

	// Same hash under different stages must not collide.
	if err := c.Set(ctx, "layout:shared", []byte("l"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Set(ctx, "artifact:shared", []byte("a"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, _, _ := c.Get(ctx, "layout:shared")
	if string(data) != "l" {
		t.Errorf("layout:shared = %q, want %q", data, "l")
	}
	data, _, _ = c.Get(ctx, "artifact:shared")
	if string(data) != "a" {
		t.Errorf("artifact:shared = %q, want %q", data, "a")
	}
}
