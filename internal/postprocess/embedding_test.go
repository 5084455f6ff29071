package postprocess

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

type fakeEmbedder struct {
	dim int
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dim)
		for j := range v {
			v[j] = float32(i + j + 1)
		}
		out[i] = v
	}
	return out, nil
}

func TestEmbeddingProcessorFillsChunkEmbeddings(t *testing.T) {
	proc := &EmbeddingProcessor{
		Resolve: func(ctx context.Context, model, cacheDir string) (Embedder, error) {
			return &fakeEmbedder{dim: 4}, nil
		},
	}
	result := kreuzberg.New("text/plain")
	result.Chunks = []kreuzberg.Chunk{{Content: "a"}, {Content: "b"}}
	cfg := kreuzberg.DefaultConfig()
	cfg.Embedding = &kreuzberg.EmbeddingConfig{BatchSize: 2}

	require.True(t, proc.ShouldProcess(result, cfg))
	require.NoError(t, proc.Process(result, cfg))

	for _, c := range result.Chunks {
		require.Len(t, c.Embedding, 4)
	}
}

func TestEmbeddingProcessorNormalizesToUnitLength(t *testing.T) {
	proc := &EmbeddingProcessor{
		Resolve: func(ctx context.Context, model, cacheDir string) (Embedder, error) {
			return &fakeEmbedder{dim: 3}, nil
		},
	}
	result := kreuzberg.New("text/plain")
	result.Chunks = []kreuzberg.Chunk{{Content: "a"}}
	cfg := kreuzberg.DefaultConfig()
	cfg.Embedding = &kreuzberg.EmbeddingConfig{Normalize: true, BatchSize: 1}

	require.NoError(t, proc.Process(result, cfg))

	var sumSquares float64
	for _, x := range result.Chunks[0].Embedding {
		sumSquares += float64(x) * float64(x)
	}
	require.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-2)
}

func TestEmbeddingProcessorSkipsWhenNoEmbeddingConfig(t *testing.T) {
	proc := &EmbeddingProcessor{}
	result := kreuzberg.New("text/plain")
	result.Chunks = []kreuzberg.Chunk{{Content: "a"}}
	cfg := kreuzberg.DefaultConfig()
	require.False(t, proc.ShouldProcess(result, cfg))
}

func TestEmbeddingProcessorPrefersChunkingEmbeddingOverride(t *testing.T) {
	var seenModel string
	proc := &EmbeddingProcessor{
		Resolve: func(ctx context.Context, model, cacheDir string) (Embedder, error) {
			seenModel = model
			return &fakeEmbedder{dim: 2}, nil
		},
	}
	result := kreuzberg.New("text/plain")
	result.Chunks = []kreuzberg.Chunk{{Content: "a"}}
	cfg := kreuzberg.DefaultConfig()
	cfg.Embedding = &kreuzberg.EmbeddingConfig{ModelSelector: kreuzberg.ModelSelector{Name: "top-level"}}
	cfg.Chunking = &kreuzberg.ChunkingConfig{
		Embedding: &kreuzberg.EmbeddingConfig{ModelSelector: kreuzberg.ModelSelector{Name: "chunk-scoped"}, BatchSize: 1},
	}

	require.NoError(t, proc.Process(result, cfg))
	require.Equal(t, "chunk-scoped", seenModel)
}

func TestEmbeddingProcessorRejectsCustomModelSelector(t *testing.T) {
	proc := &EmbeddingProcessor{
		Resolve: func(ctx context.Context, model, cacheDir string) (Embedder, error) {
			t.Fatal("Resolve must not be called for a Custom model selector")
			return nil, nil
		},
	}
	result := kreuzberg.New("text/plain")
	result.Chunks = []kreuzberg.Chunk{{Content: "a"}}
	cfg := kreuzberg.DefaultConfig()
	cfg.Embedding = &kreuzberg.EmbeddingConfig{
		ModelSelector: kreuzberg.ModelSelector{Kind: kreuzberg.ModelSelectorCustom, Name: "my-custom-model"},
	}

	err := proc.Process(result, cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Custom ONNX models are not yet supported")
}

func TestEmbeddingProcessorDefaultResolveReportsMissingDependency(t *testing.T) {
	proc := &EmbeddingProcessor{}
	result := kreuzberg.New("text/plain")
	result.Chunks = []kreuzberg.Chunk{{Content: "a"}}
	cfg := kreuzberg.DefaultConfig()
	cfg.Embedding = &kreuzberg.EmbeddingConfig{}

	err := proc.Process(result, cfg)
	require.Error(t, err)
}
