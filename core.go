// Package kreuzberg is the root embeddable-library API of spec.md §2:
// a Core ties the MIME detector, extractor registry, post-processor
// pipeline, validators, and the content-fingerprint cache together into
// the single extract(bytes, mime, config) operation every other surface
// (cmd/kreuzbergd's HTTP handlers, cmd/kreuzberg-ffi's C ABI) drives.
//
// internal/kreuzberg holds the data model (ExtractionConfig,
// ExtractionResult, ...) and cannot itself depend on internal/extractors
// or internal/postprocess (those packages import internal/kreuzberg, so
// the reverse would cycle) — Core is the root package that is free to
// wire every internal/* piece together, the way the teacher's top-level
// packages (e.g. internal/indexer) compose its own leaf packages.
package kreuzberg

import (
	"context"
	"os"
	"time"

	"github.com/kreuzberg-go/kreuzberg/internal/batch"
	"github.com/kreuzberg-go/kreuzberg/internal/cache"
	"github.com/kreuzberg-go/kreuzberg/internal/extractors"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/mimetype"
	"github.com/kreuzberg-go/kreuzberg/internal/ocr"
	"github.com/kreuzberg-go/kreuzberg/internal/postprocess"
	"github.com/kreuzberg-go/kreuzberg/internal/registry"
)

// Re-exported data-model types so callers never need to import
// internal/kreuzberg directly.
type (
	ExtractionConfig = kreuzberg.ExtractionConfig
	ExtractionResult = kreuzberg.ExtractionResult
	ChunkingConfig    = kreuzberg.ChunkingConfig
	Chunk            = kreuzberg.Chunk
	Metadata         = kreuzberg.Metadata
	Table            = kreuzberg.Table
)

// DefaultConfig returns spec-conformant extraction defaults.
func DefaultConfig() *ExtractionConfig { return kreuzberg.DefaultConfig() }

// Validator inspects a finished result and may reject it (spec.md
// §4.2's "validators" plugin family).
type Validator interface {
	Name() string
	Initialize() error
	Shutdown() error
	Priority() int
	Validate(result *ExtractionResult, cfg *ExtractionConfig) error
}

// Core is the extraction engine: one per process (or per test), owning
// the extractor registry, post-processor pipeline, validator registry,
// and optional result cache.
type Core struct {
	extractors *extractors.Registry
	ocr        *ocr.Registry
	pipeline   *postprocess.Pipeline
	validators *registry.Registry[Validator]
	resultCache *cache.Cache
}

// Option configures a Core at construction time.
type Option func(*Core) error

// WithCache opens (or creates) the content-fingerprint result cache
// under dir (spec.md §4.9). Without this option, Core runs with
// caching disabled regardless of cfg.UseCache.
func WithCache(dir string) Option {
	return func(c *Core) error {
		rc, err := cache.Open(dir)
		if err != nil {
			return err
		}
		c.resultCache = rc
		return nil
	}
}

// WithEmbedding wires resolve as the Late-stage embedding processor's
// model resolver (spec.md §4.7); without it, embedding-configured
// extractions fail with MissingDependency, since the embedding runtime
// is an external collaborator outside spec.md §1's scope.
func WithEmbedding(resolve func(ctx context.Context, model, cacheDir string) (postprocess.Embedder, error)) Option {
	return func(c *Core) error {
		for _, p := range c.pipeline.Processors() {
			if emb, ok := p.(*postprocess.EmbeddingProcessor); ok {
				emb.Resolve = resolve
			}
		}
		return nil
	}
}

// New builds a Core with every built-in extractor, OCR backend slot,
// and post-processor registered (spec.md §2's extraction flow steps
// 3-6), applying opts in order.
func New(opts ...Option) (*Core, error) {
	ocrRegistry := ocr.New()

	extractorRegistry, err := extractors.NewDefaultRegistry(ocrRegistry)
	if err != nil {
		return nil, err
	}

	pipeline := postprocess.New()
	for _, proc := range []postprocess.Processor{
		&postprocess.LanguageDetectionProcessor{PriorityValue: 100},
		&postprocess.TokenReductionProcessor{PriorityValue: 90},
		&postprocess.QualityScoringProcessor{PriorityValue: 50},
		&postprocess.ChunkingProcessor{PriorityValue: 100},
		&postprocess.EmbeddingProcessor{PriorityValue: 50},
	} {
		if err := pipeline.Register(proc); err != nil {
			return nil, err
		}
	}

	c := &Core{
		extractors: extractorRegistry,
		ocr:        ocrRegistry,
		pipeline:   pipeline,
		validators: registry.New[Validator](),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RegisterValidator adds a validator, run in priority-descending order
// after post-processing (spec.md §2 step 6).
func (c *Core) RegisterValidator(v Validator) error {
	return c.validators.Register(v)
}

// Extract runs the full pipeline of spec.md §2 over data: cache lookup,
// dispatch, extraction, post-processing, validation, cache store.
func (c *Core) Extract(ctx context.Context, data []byte, mime string, cfg *ExtractionConfig) (*ExtractionResult, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := mimetype.Validate(mime); err != nil {
		return nil, err
	}

	var key string
	if cfg.UseCache && c.resultCache != nil {
		key = cache.Key(data, mime, cfg)
		if cached, ok := c.resultCache.Get(key); ok {
			return cached, nil
		}
	}

	result, err := extractors.Dispatch(c.extractors, data, mime, cfg)
	if err != nil {
		return nil, err
	}

	if err := c.pipeline.Run(result, cfg); err != nil {
		return nil, err
	}

	if err := c.runValidators(result, cfg); err != nil {
		return nil, err
	}

	if cfg.UseCache && c.resultCache != nil {
		_ = c.resultCache.Put(key, result)
	}
	return result, nil
}

// ExtractFile detects mime from path (falling back to content sniffing
// when requested) and delegates to Extract.
func (c *Core) ExtractFile(ctx context.Context, path string, cfg *ExtractionConfig, preferContentSniffing bool) (*ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mime, err := mimetype.Detect(path, data, preferContentSniffing)
	if err != nil {
		return nil, err
	}
	return c.Extract(ctx, data, mime, cfg)
}

// orderedValidators returns every registered validator sorted by
// descending priority, breaking ties by registration order — the same
// stable-sort shape postprocess.Pipeline uses for its stages (spec.md
// §4.2's priority-then-registration tie-break, generalized to the
// validator plugin family).
func orderedValidators(all []Validator) []Validator {
	ordered := make([]Validator, len(all))
	copy(ordered, all)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j-1].Priority() < ordered[j].Priority(); j-- {
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
		}
	}
	return ordered
}

func (c *Core) runValidators(result *ExtractionResult, cfg *ExtractionConfig) error {
	for _, v := range orderedValidators(c.validators.All()) {
		if err := v.Validate(result, cfg); err != nil {
			return err
		}
	}
	return nil
}

// ExtractBatch runs extract over every item with bounded concurrency
// (spec.md §4.10), preserving input order.
func (c *Core) ExtractBatch(ctx context.Context, items []batch.Item, cfg *ExtractionConfig) []*ExtractionResult {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	maxConcurrent := cfg.MaxConcurrentExtraction
	timeout := time.Duration(cfg.Timeout) * time.Second

	return batch.Run(ctx, items, maxConcurrent, timeout, func(taskCtx context.Context, item batch.Item) (*ExtractionResult, error) {
		return c.Extract(taskCtx, item.Data, item.Mime, cfg)
	})
}

// CacheStats reports the result cache's hit/miss/size counters
// (GET /cache/stats); the zero Stats value when caching is disabled.
func (c *Core) CacheStats() cache.Stats {
	if c.resultCache == nil {
		return cache.Stats{}
	}
	return c.resultCache.Stats()
}

// ClearCache empties the result cache (DELETE /cache/clear); a no-op
// when caching is disabled.
func (c *Core) ClearCache() error {
	if c.resultCache == nil {
		return nil
	}
	return c.resultCache.Clear()
}

// Close releases the Core's owned resources (currently just the result
// cache's SQLite handle).
func (c *Core) Close() error {
	if c.resultCache == nil {
		return nil
	}
	return c.resultCache.Close()
}
