package modelcache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
)

type fakeEmbedder struct {
	dims  int
	calls int
	mu    sync.Mutex
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dims)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }
func (f *fakeEmbedder) Close() error    { return nil }

func TestGetOrInitConstructsOnceAndReusesEntry(t *testing.T) {
	var constructions int
	c := New(func(ctx context.Context, model, cacheDir string) (Embedder, error) {
		constructions++
		return &fakeEmbedder{dims: 384}, nil
	})

	h1, err := c.GetOrInit(context.Background(), "bge-small", "/tmp/cache")
	require.NoError(t, err)
	h2, err := c.GetOrInit(context.Background(), "bge-small", "/tmp/cache")
	require.NoError(t, err)

	require.Equal(t, 1, constructions)
	require.Equal(t, 1, c.Len())
	require.Equal(t, 384, h1.Dimensions())
	require.Equal(t, 384, h2.Dimensions())
}

func TestGetOrInitDistinguishesByCacheDir(t *testing.T) {
	c := New(func(ctx context.Context, model, cacheDir string) (Embedder, error) {
		return &fakeEmbedder{dims: 128}, nil
	})

	_, err := c.GetOrInit(context.Background(), "bge-small", "/tmp/a")
	require.NoError(t, err)
	_, err = c.GetOrInit(context.Background(), "bge-small", "/tmp/b")
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
}

func TestGetOrInitWrapsFactoryErrorAsPlugin(t *testing.T) {
	c := New(func(ctx context.Context, model, cacheDir string) (Embedder, error) {
		return nil, errors.New("model download failed")
	})
	_, err := c.GetOrInit(context.Background(), "custom-model", "/tmp/cache")
	require.Error(t, err)
	require.Equal(t, kerr.KindPlugin, kerr.KindOf(err))
}

func TestHandleEmbedSerializesConcurrentCallers(t *testing.T) {
	embedder := &fakeEmbedder{dims: 8}
	c := New(func(ctx context.Context, model, cacheDir string) (Embedder, error) {
		return embedder, nil
	})
	h, err := c.GetOrInit(context.Background(), "m", "/tmp/cache")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.Embed(context.Background(), []string{"a"}, 1)
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Equal(t, 10, embedder.calls)
}
