// Package extractors implements the per-format extractors of spec.md
// §4.3: bytes (or a path) plus a MIME type and config in, a raw
// ExtractionResult out.
package extractors

import (
	"os"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// Extractor is the plugin contract every format extractor satisfies
// (spec.md §4.2/§4.3). It embeds registry.Plugin's Name/Initialize/
// Shutdown via the same three methods, duplicated here rather than
// importing the registry package directly so extractors never need to
// know they're registry entries (registries hold plugins, plugins don't
// hold registries — spec.md §9's "plugins never retain pointers to
// their registry").
type Extractor interface {
	Name() string
	Initialize() error
	Shutdown() error

	Priority() int
	SupportedMimeTypes() []string

	Extract(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error)
	ExtractFile(path string, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error)
}

// Base provides the lifecycle/priority/MIME-claim boilerplate common to
// every extractor so concrete types only implement Extract. ExtractFile
// defaults to "read bytes and delegate" per spec.md §4.3.
type Base struct {
	NameValue     string
	PriorityValue int
	MimeTypes     []string
	DoExtract     func(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error)
}

func (b *Base) Name() string           { return b.NameValue }
func (b *Base) Initialize() error      { return nil }
func (b *Base) Shutdown() error        { return nil }
func (b *Base) Priority() int          { return b.PriorityValue }
func (b *Base) SupportedMimeTypes() []string { return b.MimeTypes }

func (b *Base) Extract(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	return b.DoExtract(data, mime, cfg)
}

func (b *Base) ExtractFile(path string, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return b.DoExtract(data, mime, cfg)
}

// Claims reports whether mime is in e's SupportedMimeTypes, the default
// should_process predicate for extractors (spec.md §4.2).
func Claims(e Extractor, mime string) bool {
	for _, m := range e.SupportedMimeTypes() {
		if m == mime {
			return true
		}
	}
	return false
}
