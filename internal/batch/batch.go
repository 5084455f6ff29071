// Package batch implements the bounded-concurrency batch executor of
// spec.md §4.10: an ordered sequence of inputs in, the same-length
// ordered sequence of results out, regardless of completion order.
//
// The semaphore-bounded fan-out is grounded on the shape of
// standardbeagle-lci's internal/analysis.RelationshipAnalyzer
// (analyzeProjectConcurrent: a fixed-size semaphore channel plus one
// goroutine per item), generalized here onto golang.org/x/sync's
// errgroup+semaphore primitives in place of hand-rolled channels, since
// golang.org/x/sync is already the pack's concurrency-primitives
// dependency of choice (it appears in every example repo's go.mod).
package batch

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// Item is one unit of batch work: extraction bytes plus its MIME type.
type Item struct {
	Data []byte
	Mime string
}

// Extractor runs a single item, producing a result. Implementations
// are expected to return an error only for conditions Run itself
// cannot recover from; per-format failures should already be folded
// into the returned ExtractionResult's Metadata.Error by the caller's
// own extraction pipeline.
type Extractor func(ctx context.Context, item Item) (*kreuzberg.ExtractionResult, error)

// Run executes extract over every item with bounded concurrency
// (maxConcurrent, defaulting to CPU count when <= 0) and an optional
// per-task timeout, preserving input order in the returned slice
// regardless of completion order (spec.md §4.10). A task that errors
// never aborts the batch: its slot gets a result with Metadata.Error
// set instead (spec.md §4.10's "tasks never observe each other").
func Run(ctx context.Context, items []Item, maxConcurrent int, perTaskTimeout time.Duration, extract Extractor) []*kreuzberg.ExtractionResult {
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.NumCPU()
	}

	results := make([]*kreuzberg.ExtractionResult, len(items))
	sem := semaphore.NewWeighted(int64(maxConcurrent))
	g, gctx := errgroup.WithContext(ctx)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i] = failedResult(item.Mime, err)
				return nil
			}
			defer sem.Release(1)

			taskCtx := gctx
			if perTaskTimeout > 0 {
				var cancel context.CancelFunc
				taskCtx, cancel = context.WithTimeout(gctx, perTaskTimeout)
				defer cancel()
			}

			result, err := extract(taskCtx, item)
			if err != nil {
				result = failedResult(item.Mime, err)
			}
			results[i] = result
			return nil
		})
	}

	// errgroup's own Wait error is unused: per-task failures are folded
	// into results above and never propagated, per spec.md §4.10.
	_ = g.Wait()
	return results
}

func failedResult(mime string, err error) *kreuzberg.ExtractionResult {
	result := kreuzberg.New(mime)
	result.Metadata.Error = err.Error()
	return result
}

// SingleFileMode runs extract synchronously over one item with no
// concurrency bound and no timeout, the mode spec.md §4.10 calls
// "single-file mode (synchronous, one task at a time, no timeout)".
func SingleFileMode(ctx context.Context, item Item, extract Extractor) *kreuzberg.ExtractionResult {
	result, err := extract(ctx, item)
	if err != nil {
		return failedResult(item.Mime, err)
	}
	return result
}
