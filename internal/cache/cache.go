// Package cache implements spec.md §4.9's extraction-result cache: a
// content-fingerprint-keyed memoization layer with an in-process L1
// tier (maypok86/otter, weight-bounded) in front of a SQLite L2 tier
// (mattn/go-sqlite3), grounded on the teacher's internal/graph.Searcher
// file cache and internal/cache.Cache's SQLite connection handling
// respectively.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/maypok86/otter"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// defaultL1Weight bounds the in-process tier at roughly 50MB of stored
// result payloads, the same weight budget the teacher's file cache uses
// (internal/graph/searcher.go's MaxFileCacheWeight).
const defaultL1Weight = 50 * 1024 * 1024

// Stats reports cache hit/miss/size counters (spec.md §4.9).
type Stats struct {
	Hits   int64
	Misses int64
	Size   int64
}

// Cache is the two-tier extraction-result cache.
type Cache struct {
	mu sync.Mutex
	l1 otter.Cache[string, *kreuzberg.ExtractionResult]
	db *sql.DB

	hits, misses int64
}

// Open creates or opens the SQLite-backed cache database at
// filepath.Join(dir, "cache.db"), creating dir and the schema if
// needed.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	l1, err := otter.MustBuilder[string, *kreuzberg.ExtractionResult](defaultL1Weight).
		Cost(func(key string, value *kreuzberg.ExtractionResult) uint32 {
			return uint32(len(value.Content)) + 64
		}).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("creating L1 cache: %w", err)
	}

	dbPath := filepath.Join(dir, "cache.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS extraction_cache (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{l1: l1, db: db}, nil
}

// Close releases the L1 cache and the underlying SQLite connection.
func (c *Cache) Close() error {
	c.l1.Close()
	return c.db.Close()
}

// Get returns the cached result for key, checking L1 before falling
// back to the SQLite L2 tier. A L2 hit is promoted into L1 (spec.md
// §4.9's "a hit returns a value bit-identical to the one previously
// stored").
func (c *Cache) Get(key string) (*kreuzberg.ExtractionResult, bool) {
	if result, ok := c.l1.Get(key); ok {
		c.recordHit()
		return result, true
	}

	var payload []byte
	err := c.db.QueryRow(`SELECT payload FROM extraction_cache WHERE key = ?`, key).Scan(&payload)
	if err != nil {
		c.recordMiss()
		return nil, false
	}

	var result kreuzberg.ExtractionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		c.recordMiss()
		return nil, false
	}
	c.l1.Set(key, &result)
	c.recordHit()
	return &result, true
}

// Put stores result under key in both tiers.
func (c *Cache) Put(key string, result *kreuzberg.ExtractionResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("serializing cache entry: %w", err)
	}
	if _, err := c.db.Exec(
		`INSERT INTO extraction_cache (key, payload) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload`,
		key, payload,
	); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	c.l1.Set(key, result)
	return nil
}

// Clear empties both tiers.
func (c *Cache) Clear() error {
	c.l1.Clear()
	if _, err := c.db.Exec(`DELETE FROM extraction_cache`); err != nil {
		return fmt.Errorf("clearing cache table: %w", err)
	}
	c.mu.Lock()
	c.hits, c.misses = 0, 0
	c.mu.Unlock()
	return nil
}

// Stats reports hit/miss counters and the L2 row count.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	hits, misses := c.hits, c.misses
	c.mu.Unlock()

	var size int64
	_ = c.db.QueryRow(`SELECT COUNT(*) FROM extraction_cache`).Scan(&size)

	return Stats{Hits: hits, Misses: misses, Size: size}
}

func (c *Cache) recordHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}
