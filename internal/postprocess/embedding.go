package postprocess

import (
	"context"
	"math"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/modelcache"
)

// Embedder is the narrow surface EmbeddingProcessor needs from
// internal/modelcache's cache, kept as an interface so tests can stub
// it without constructing a real model-cache entry.
type Embedder interface {
	Embed(ctx context.Context, texts []string, batchSize int) ([][]float32, error)
}

// EmbeddingProcessor is the Late-stage per-chunk embedding generator
// named in spec.md §2's post-processing pipeline responsibilities
// ("embedding generation with a cached model pool"). It runs after
// ChunkingProcessor and fills each chunk's Embedding field, normalizing
// to unit L2 length when cfg.Embedding.Normalize is set (spec.md §8:
// "each chunk.embedding.len() == declared_dimension and its L2 norm is
// within 1e-2 of 1.0").
//
// The embedding runtime itself is out of spec.md §1's scope ("specified
// only by the contracts the core requires from them"); Resolve supplies
// whatever backend the embedding process has wired via
// internal/modelcache.
type EmbeddingProcessor struct {
	PriorityValue int
	Resolve       func(ctx context.Context, model, cacheDir string) (Embedder, error)
}

func (e *EmbeddingProcessor) Name() string           { return "embedding" }
func (e *EmbeddingProcessor) Initialize() error      { return nil }
func (e *EmbeddingProcessor) Shutdown() error        { return nil }
func (e *EmbeddingProcessor) ProcessingStage() Stage { return Late }
func (e *EmbeddingProcessor) Priority() int          { return e.PriorityValue }
func (e *EmbeddingProcessor) Fatal() bool            { return false }

func (e *EmbeddingProcessor) ShouldProcess(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) bool {
	if cfg == nil || len(result.Chunks) == 0 {
		return false
	}
	return embeddingConfigFor(cfg) != nil
}

func (e *EmbeddingProcessor) Process(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) error {
	embCfg := embeddingConfigFor(cfg)
	if embCfg.ModelSelector.Kind == kreuzberg.ModelSelectorCustom {
		return kerr.Validation("Custom ONNX models are not yet supported")
	}

	cacheDir := embCfg.CacheDir
	if cacheDir == "" {
		dir, err := modelcache.DefaultCacheDir()
		if err != nil {
			return err
		}
		cacheDir = dir
	}

	resolve := e.Resolve
	if resolve == nil {
		resolve = defaultResolve
	}

	embedder, err := resolve(context.Background(), embCfg.ModelSelector.Name, cacheDir)
	if err != nil {
		return err
	}

	texts := make([]string, len(result.Chunks))
	for i, c := range result.Chunks {
		texts[i] = c.Content
	}

	batchSize := embCfg.BatchSize
	if batchSize <= 0 {
		batchSize = len(texts)
	}

	vectors, err := embedder.Embed(context.Background(), texts, batchSize)
	if err != nil {
		return err
	}

	for i := range result.Chunks {
		if i >= len(vectors) {
			break
		}
		v := vectors[i]
		if embCfg.Normalize {
			v = normalizeL2(v)
		}
		result.Chunks[i].Embedding = v
	}
	return nil
}

// embeddingConfigFor prefers chunking's own embedding override, falling
// back to the top-level config, matching spec.md §3's nested-override
// shape for chunking-scoped embedding settings.
func embeddingConfigFor(cfg *kreuzberg.ExtractionConfig) *kreuzberg.EmbeddingConfig {
	if cfg.Chunking != nil && cfg.Chunking.Embedding != nil {
		return cfg.Chunking.Embedding
	}
	return cfg.Embedding
}

func normalizeL2(v []float32) []float32 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// defaultResolve is used when no Resolve func is injected: the
// embedding runtime itself is an external collaborator outside spec.md
// §1's scope, so the built-in default reports MissingDependency rather
// than silently fabricating vectors. Callers that want real embeddings
// wire Resolve to an internal/modelcache.Cache backed by an actual
// model factory.
func defaultResolve(ctx context.Context, model, cacheDir string) (Embedder, error) {
	return nil, kerr.MissingDependency("embedding-model", "configure an embedding backend via EmbeddingProcessor.Resolve")
}
