package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Close()) })
	return c
}

func TestPutThenGetReturnsBitIdenticalResult(t *testing.T) {
	c := openTestCache(t)
	result := kreuzberg.New("text/plain")
	result.Content = "hello world"
	result.Metadata.Title = "doc"

	require.NoError(t, c.Put("key1", result))
	got, ok := c.Get("key1")
	require.True(t, ok)
	require.Equal(t, result.Content, got.Content)
	require.Equal(t, result.Metadata.Title, got.Metadata.Title)
}

func TestGetMissReturnsFalse(t *testing.T) {
	c := openTestCache(t)
	_, ok := c.Get("nonexistent")
	require.False(t, ok)
}

func TestGetPromotesL2HitIntoL1(t *testing.T) {
	c := openTestCache(t)
	result := kreuzberg.New("text/plain")
	result.Content = "content"
	require.NoError(t, c.Put("key1", result))

	// Evict from L1 directly to force an L2 read.
	c.l1.Delete("key1")
	got, ok := c.Get("key1")
	require.True(t, ok)
	require.Equal(t, "content", got.Content)

	// Now it should be back in L1.
	_, ok = c.l1.Get("key1")
	require.True(t, ok)
}

func TestClearEmptiesBothTiers(t *testing.T) {
	c := openTestCache(t)
	result := kreuzberg.New("text/plain")
	result.Content = "x"
	require.NoError(t, c.Put("key1", result))
	require.NoError(t, c.Clear())

	_, ok := c.Get("key1")
	require.False(t, ok)
	stats := c.Stats()
	require.Equal(t, int64(0), stats.Size)
}

func TestStatsReportsHitsAndMisses(t *testing.T) {
	c := openTestCache(t)
	result := kreuzberg.New("text/plain")
	result.Content = "x"
	require.NoError(t, c.Put("key1", result))

	_, _ = c.Get("key1")
	_, _ = c.Get("missing")

	stats := c.Stats()
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Misses)
	require.Equal(t, int64(1), stats.Size)
}

func TestKeyDiffersOnConfigChange(t *testing.T) {
	data := []byte("same bytes")
	cfg1 := kreuzberg.DefaultConfig()
	cfg2 := kreuzberg.DefaultConfig()
	cfg2.ForceOCR = true

	require.NotEqual(t, Key(data, "text/plain", cfg1), Key(data, "text/plain", cfg2))
}

func TestKeySameForIdenticalInputs(t *testing.T) {
	data := []byte("same bytes")
	cfg := kreuzberg.DefaultConfig()
	require.Equal(t, Key(data, "text/plain", cfg), Key(data, "text/plain", cfg))
}
