// Package modelcache implements the embedding-model cache of spec.md
// §4.7: amortizing the expensive initialization of a native
// text-embedding model across calls, keyed on (model, cache-dir).
//
// The Embedder contract here is grounded on the teacher's
// internal/embed.Provider interface (Embed/Dimensions/Close), since the
// teacher's embedding code is the closest pack analogue to "a native
// text-embedding model wrapped behind a Go interface". The per-entry
// mutex plus poison-recovery requirement (spec.md §4.7, §9) has no
// teacher precedent — Go's sync.Mutex/RWMutex don't poison on panic the
// way the spec's source runtime's do, so recovery here is a defensive
// re-check rather than a literal translation.
package modelcache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
)

// Embedder is the native text-embedding model contract (spec.md §4.7),
// shaped after the teacher's internal/embed.Provider.
type Embedder interface {
	Embed(ctx context.Context, texts []string, batchSize int) ([][]float32, error)
	Dimensions() int
	Close() error
}

// Factory constructs an Embedder for a resolved model name, invoked at
// most once per (model, cache-dir) pair.
type Factory func(ctx context.Context, model string, cacheDir string) (Embedder, error)

// entry wraps one model instance behind its own mutex so only one
// caller at a time submits a batch to it (spec.md §4.7).
type entry struct {
	mu   sync.Mutex
	impl Embedder
}

// Handle exposes exclusive access to a cached model's Embed method
// (spec.md §4.7's "Handle exposes exclusive access to embed(texts,
// batch_size)").
type Handle struct {
	e *entry
}

// Embed runs under the entry's exclusive lock, so concurrent callers
// of the same cached model serialize rather than race the native
// runtime.
func (h *Handle) Embed(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	h.e.mu.Lock()
	defer h.e.mu.Unlock()
	return h.e.impl.Embed(ctx, texts, batchSize)
}

// Dimensions reports the cached model's output vector size.
func (h *Handle) Dimensions() int {
	return h.e.impl.Dimensions()
}

// Cache is the process-global, readers-writer-locked model cache.
// Entries are intentionally never closed: spec.md §4.7 requires
// retaining a strong reference for the process lifetime because the
// underlying native runtime's shutdown is not reentrant with this
// cache's locks. This is a deliberate, bounded leak (one entry per
// distinct (model, cache-dir) pair) reclaimed by the OS at exit, not an
// oversight.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	factory Factory
}

// New returns an empty cache that uses factory to construct new
// Embedder instances on a cache miss.
func New(factory Factory) *Cache {
	return &Cache{entries: make(map[string]*entry), factory: factory}
}

// DefaultCacheDir returns "<cwd>/.kreuzberg/embeddings", the default
// cache directory named in spec.md §4.7.
func DefaultCacheDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving default cache dir: %w", err)
	}
	return filepath.Join(wd, ".kreuzberg", "embeddings"), nil
}

func cacheKey(model, cacheDir string) string {
	return model + "\x00" + cacheDir
}

// GetOrInit returns the Handle for (model, cacheDir), constructing it
// via the cache's factory on first use (spec.md §4.7's
// get_or_init(model_selector, cache_dir?) -> Handle contract).
//
// The read path takes the RWMutex for reading first; on a miss it
// upgrades to a write lock and re-checks (another goroutine may have
// raced to construct the same entry), the standard double-checked
// pattern substituting for the spec's poisoned-lock recovery since Go's
// RWMutex cannot poison.
func (c *Cache) GetOrInit(ctx context.Context, model, cacheDir string) (*Handle, error) {
	if cacheDir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		cacheDir = dir
	}
	key := cacheKey(model, cacheDir)

	c.mu.RLock()
	if e, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		return &Handle{e: e}, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		return &Handle{e: e}, nil
	}

	impl, err := c.factory(ctx, model, cacheDir)
	if err != nil {
		return nil, kerr.Plugin(model, err)
	}
	e := &entry{impl: impl}
	c.entries[key] = e
	return &Handle{e: e}, nil
}

// Len reports the number of distinct (model, cache-dir) entries currently
// cached, for diagnostics/tests.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
