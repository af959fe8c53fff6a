package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Cache is the small persisted state that makes dispatch adaptive: the name
// of the strategy that last produced a record, and when. It is overwritten
// whole on every success, never merged. Unknown fields in a stored file are
// ignored and missing fields default, so the schema is forward-compatible.
type Cache struct {
	LastWorkingStrategy string    `json:"last_working_strategy"`
	LastSuccess         time.Time `json:"last_success"`
}

// CacheStore persists the adaptive cache. Implementations must treat a
// missing cache as an empty one.
type CacheStore interface {
	Load() (Cache, error)
	Save(Cache) error
}

// FileStore persists the cache as a JSON file, written atomically
// (temp file + rename) so concurrent readers never observe a torn write.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed cache store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the cache file. A missing file yields an empty cache with no
// error; a corrupt file yields an empty cache and the parse error so the
// caller can log it.
func (f *FileStore) Load() (Cache, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Cache{}, nil
		}
		return Cache{}, fmt.Errorf("reading strategy cache: %w", err)
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return Cache{}, fmt.Errorf("parsing strategy cache %s: %w", f.path, err)
	}
	return c, nil
}

// Save writes the cache atomically.
func (f *FileStore) Save(c Cache) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding strategy cache: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "strategy-cache-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing strategy cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming strategy cache: %w", err)
	}
	return nil
}

// MemStore keeps the cache in memory. Used by tests and callers that do not
// want cross-run persistence.
type MemStore struct {
	mu sync.Mutex
	c  Cache
}

// NewMemStore creates an in-memory cache store seeded with c.
func NewMemStore(c Cache) *MemStore {
	return &MemStore{c: c}
}

func (m *MemStore) Load() (Cache, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.c, nil
}

func (m *MemStore) Save(c Cache) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.c = c
	return nil
}
