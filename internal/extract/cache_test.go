package extract

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "strategy_cache.json"))

	c, err := store.Load()
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if c.LastWorkingStrategy != "" {
		t.Errorf("LastWorkingStrategy = %q, want empty", c.LastWorkingStrategy)
	}
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategy_cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	c, err := NewFileStore(path).Load()
	if err == nil {
		t.Error("Load() on corrupt file should return the parse error")
	}
	if c.LastWorkingStrategy != "" {
		t.Errorf("corrupt load should yield an empty cache, got %+v", c)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "strategy_cache.json")
	store := NewFileStore(path)

	saved := Cache{
		LastWorkingStrategy: "wrapped_state",
		LastSuccess:         time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.LastWorkingStrategy != saved.LastWorkingStrategy {
		t.Errorf("LastWorkingStrategy = %q, want %q", loaded.LastWorkingStrategy, saved.LastWorkingStrategy)
	}
	if !loaded.LastSuccess.Equal(saved.LastSuccess) {
		t.Errorf("LastSuccess = %v, want %v", loaded.LastSuccess, saved.LastSuccess)
	}
}

func TestMemStore(t *testing.T) {
	store := NewMemStore(Cache{LastWorkingStrategy: "direct_url"})

	c, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.LastWorkingStrategy != "direct_url" {
		t.Errorf("LastWorkingStrategy = %q", c.LastWorkingStrategy)
	}

	if err := store.Save(Cache{LastWorkingStrategy: "legacy_state"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	c, _ = store.Load()
	if c.LastWorkingStrategy != "legacy_state" {
		t.Errorf("LastWorkingStrategy after save = %q", c.LastWorkingStrategy)
	}
}
