package kreuzberg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kreuzberg-go/kreuzberg/internal/batch"
)

func TestExtractPlainTextMatchesSpecScenarioOne(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	cfg := DefaultConfig()
	result, err := core.Extract(context.Background(), []byte("Hello, Kreuzberg!"), "text/plain", cfg)
	require.NoError(t, err)
	require.Equal(t, "Hello, Kreuzberg!", result.Content)
	require.Equal(t, "text/plain", result.MimeType)
	require.Nil(t, result.Chunks)
	require.Nil(t, result.DetectedLanguages)
	require.Empty(t, result.Tables)
}

func TestExtractChunkingMatchesSpecScenarioTwo(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Chunking = &ChunkingConfig{MaxChars: 100, MaxOverlap: 20}
	content := make([]byte, 250)
	for i := range content {
		content[i] = 'a'
	}

	result, err := core.Extract(context.Background(), content, "text/plain", cfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(result.Chunks), 2)
	require.Equal(t, result.Chunks[0].Content[len(result.Chunks[0].Content)-20:], result.Chunks[1].Content[:20])
}

func TestExtractRejectsUnsupportedMime(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	_, err = core.Extract(context.Background(), []byte("x"), "application/x-totally-bogus", DefaultConfig())
	require.Error(t, err)
}

func TestExtractUsesCacheOnSecondCall(t *testing.T) {
	core, err := New(WithCache(t.TempDir()))
	require.NoError(t, err)
	defer core.Close()

	cfg := DefaultConfig()
	data := []byte("cache me")

	first, err := core.Extract(context.Background(), data, "text/plain", cfg)
	require.NoError(t, err)
	second, err := core.Extract(context.Background(), data, "text/plain", cfg)
	require.NoError(t, err)
	require.Equal(t, first.Content, second.Content)

	stats := core.CacheStats()
	require.Equal(t, int64(1), stats.Hits)
}

func TestExtractBatchPreservesOrder(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	items := []batch.Item{
		{Data: []byte("one"), Mime: "text/plain"},
		{Data: []byte("two"), Mime: "text/plain"},
		{Data: []byte("three"), Mime: "text/plain"},
	}
	results := core.ExtractBatch(context.Background(), items, DefaultConfig())
	require.Len(t, results, 3)
	require.Equal(t, "one", results[0].Content)
	require.Equal(t, "two", results[1].Content)
	require.Equal(t, "three", results[2].Content)
}

func TestRegisterValidatorRunsInPriorityOrder(t *testing.T) {
	core, err := New()
	require.NoError(t, err)

	var order []string
	require.NoError(t, core.RegisterValidator(&fakeValidator{name: "low", priority: 1, onRun: func() { order = append(order, "low") }}))
	require.NoError(t, core.RegisterValidator(&fakeValidator{name: "high", priority: 10, onRun: func() { order = append(order, "high") }}))

	_, err = core.Extract(context.Background(), []byte("x"), "text/plain", DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, []string{"high", "low"}, order)
}

type fakeValidator struct {
	name     string
	priority int
	onRun    func()
}

func (f *fakeValidator) Name() string     { return f.name }
func (f *fakeValidator) Initialize() error { return nil }
func (f *fakeValidator) Shutdown() error   { return nil }
func (f *fakeValidator) Priority() int     { return f.priority }
func (f *fakeValidator) Validate(result *ExtractionResult, cfg *ExtractionConfig) error {
	f.onRun()
	return nil
}
