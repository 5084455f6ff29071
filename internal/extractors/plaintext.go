package extractors

import (
	"unicode/utf8"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// NewPlainText returns the extractor for text/plain and text/csv: the
// identity transform over valid UTF-8 bytes (spec.md §4.3 common
// invariant: "content is UTF-8 valid").
func NewPlainText() Extractor {
	return &Base{
		NameValue:     "plaintext",
		PriorityValue: 0,
		MimeTypes:     []string{"text/plain", "text/csv"},
		DoExtract:     extractPlainText,
	}
}

func extractPlainText(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	if !utf8.Valid(data) {
		return nil, kerr.Parsing("input is not valid UTF-8", nil)
	}
	result := kreuzberg.New(mime)
	result.Content = string(data)
	return result, nil
}
