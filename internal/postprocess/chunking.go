package postprocess

import (
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// ChunkingProcessor is the Late-stage sliding-window chunker (spec.md
// §4.6): step = max_chars - max_overlap, each chunk carrying its byte
// range and index; a single chunk is emitted when content fits within
// max_chars.
type ChunkingProcessor struct {
	PriorityValue int
}

func (c *ChunkingProcessor) Name() string                { return "chunking" }
func (c *ChunkingProcessor) Initialize() error            { return nil }
func (c *ChunkingProcessor) Shutdown() error               { return nil }
func (c *ChunkingProcessor) ProcessingStage() Stage        { return Late }
func (c *ChunkingProcessor) Priority() int                 { return c.PriorityValue }
func (c *ChunkingProcessor) Fatal() bool                   { return false }

func (c *ChunkingProcessor) ShouldProcess(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) bool {
	return cfg != nil && cfg.Chunking != nil && len(result.Content) > 0
}

func (c *ChunkingProcessor) Process(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) error {
	chunks := ChunkContent(result.Content, cfg.Chunking.MaxChars, cfg.Chunking.MaxOverlap)
	result.Chunks = chunks
	result.Metadata.Additional["chunk_count"] = len(chunks)
	return nil
}

// ChunkContent implements spec.md §4.6's sliding-window chunking
// algorithm over byte positions.
func ChunkContent(content string, maxChars, maxOverlap int) []kreuzberg.Chunk {
	if len(content) == 0 || maxChars <= 0 {
		return nil
	}
	if len(content) <= maxChars {
		return []kreuzberg.Chunk{{
			Content: content, ByteStart: 0, ByteEnd: len(content),
			ChunkIndex: 0, TotalChunks: 1,
		}}
	}

	step := maxChars - maxOverlap
	if step <= 0 {
		step = maxChars
	}

	var starts []int
	for start := 0; start < len(content); start += step {
		starts = append(starts, start)
		end := start + maxChars
		if end >= len(content) {
			break
		}
	}

	chunks := make([]kreuzberg.Chunk, 0, len(starts))
	for i, start := range starts {
		end := start + maxChars
		if end > len(content) {
			end = len(content)
		}
		chunks = append(chunks, kreuzberg.Chunk{
			Content:    content[start:end],
			ByteStart:  start,
			ByteEnd:    end,
			ChunkIndex: i,
		})
	}
	for i := range chunks {
		chunks[i].TotalChunks = len(chunks)
	}
	return chunks
}
