package extractors

import (
	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/ocr"
	"github.com/kreuzberg-go/kreuzberg/internal/registry"
)

// Registry is the process-global extractor registry (spec.md §4.2).
type Registry = registry.Registry[Extractor]

// NewRegistry returns an empty extractor registry.
func NewRegistry() *Registry {
	return registry.New[Extractor]()
}

// NewDefaultRegistry builds and registers every built-in extractor
// (spec.md §4.3's format list), wiring in ocrRegistry for the PDF
// extractor's OCR fallback. Registration order here fixes the
// tie-break order used by Select when two extractors share a priority
// (spec.md §4.2).
func NewDefaultRegistry(ocrRegistry *ocr.Registry) (*Registry, error) {
	r := NewRegistry()
	for _, e := range []Extractor{
		NewPlainText(),
		NewMarkdown(),
		NewHTML(),
		NewRTF(),
		NewArchive(),
		NewOffice(),
		NewODT(),
		NewLegacyOffice(),
		NewPDF(ocrRegistry),
		NewDocBook(),
		NewFictionBook(),
		NewOPML(),
		NewTypst(),
		NewOrgMode(),
		NewRST(),
	} {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Select picks the highest-priority extractor claiming mime, breaking
// ties by registration order (spec.md §4.2).
func Select(r *Registry, mime string) (Extractor, bool) {
	return registry.SelectByPriority(r, Extractor.Priority, func(e Extractor) bool {
		return Claims(e, mime)
	})
}

// Dispatch runs the extractor selected for mime over data, returning
// kerr.UnsupportedFormat when no extractor claims it (spec.md §4.2:
// "a MIME type unclaimed by any registered extractor is a validation-
// level error, not a plugin failure").
func Dispatch(r *Registry, data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	e, ok := Select(r, mime)
	if !ok {
		return nil, kerr.UnsupportedFormat(mime)
	}
	return e.Extract(data, mime, cfg)
}

// DispatchFile is Dispatch's file-path counterpart, used when the
// extractor can stream from disk instead of holding the whole file in
// memory (spec.md §4.3).
func DispatchFile(r *Registry, path string, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	e, ok := Select(r, mime)
	if !ok {
		return nil, kerr.UnsupportedFormat(mime)
	}
	return e.ExtractFile(path, mime, cfg)
}
