package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

func TestRunPreservesInputOrderDespiteOutOfOrderCompletion(t *testing.T) {
	items := make([]Item, 5)
	for i := range items {
		items[i] = Item{Data: []byte{byte(i)}, Mime: "text/plain"}
	}

	results := Run(context.Background(), items, 5, 0, func(ctx context.Context, item Item) (*kreuzberg.ExtractionResult, error) {
		// Reverse-order sleep so later items finish first.
		time.Sleep(time.Duration(5-int(item.Data[0])) * time.Millisecond)
		result := kreuzberg.New(item.Mime)
		result.Content = string(item.Data)
		return result, nil
	})

	require.Len(t, results, 5)
	for i, r := range results {
		require.Equal(t, string([]byte{byte(i)}), r.Content)
	}
}

func TestRunRecordsFailureWithoutAbortingBatch(t *testing.T) {
	items := []Item{
		{Data: []byte("ok"), Mime: "text/plain"},
		{Data: []byte("bad"), Mime: "text/plain"},
		{Data: []byte("ok2"), Mime: "text/plain"},
	}

	results := Run(context.Background(), items, 2, 0, func(ctx context.Context, item Item) (*kreuzberg.ExtractionResult, error) {
		if string(item.Data) == "bad" {
			return nil, errors.New("boom")
		}
		result := kreuzberg.New(item.Mime)
		result.Content = string(item.Data)
		return result, nil
	})

	require.Len(t, results, 3)
	require.Equal(t, "ok", results[0].Content)
	require.Equal(t, "boom", results[1].Metadata.Error)
	require.Equal(t, "ok2", results[2].Content)
}

func TestRunRespectsConcurrencyBound(t *testing.T) {
	items := make([]Item, 10)
	for i := range items {
		items[i] = Item{Mime: "text/plain"}
	}

	var current, maxSeen int32
	Run(context.Background(), items, 3, 0, func(ctx context.Context, item Item) (*kreuzberg.ExtractionResult, error) {
		n := atomic.AddInt32(&current, 1)
		for {
			m := atomic.LoadInt32(&maxSeen)
			if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return kreuzberg.New(item.Mime), nil
	})

	require.LessOrEqual(t, int(maxSeen), 3)
}

func TestSingleFileModeReturnsDirectResult(t *testing.T) {
	item := Item{Data: []byte("hello"), Mime: "text/plain"}
	result := SingleFileMode(context.Background(), item, func(ctx context.Context, item Item) (*kreuzberg.ExtractionResult, error) {
		result := kreuzberg.New(item.Mime)
		result.Content = string(item.Data)
		return result, nil
	})
	require.Equal(t, "hello", result.Content)
}
