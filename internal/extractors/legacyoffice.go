package extractors

import (
	"context"
	"time"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/libreoffice"
)

// legacyOfficeTargets maps each legacy binary MIME to its modern
// target format and the extension LibreOffice expects on the input
// side (spec.md §4.3: "invoke the LibreOffice transcoder to produce
// DOCX/PPTX bytes, then re-dispatch to the modern extractor").
var legacyOfficeTargets = map[string]struct {
	sourceExt    string
	targetFormat string
	modernMime   string
}{
	"application/msword": {
		sourceExt: "doc", targetFormat: "docx",
		modernMime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	},
	"application/vnd.ms-powerpoint": {
		sourceExt: "ppt", targetFormat: "pptx",
		modernMime: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	},
	"application/vnd.ms-excel": {
		sourceExt: "xls", targetFormat: "xlsx",
		modernMime: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	},
}

// defaultTranscodeTimeout bounds a single LibreOffice conversion.
const defaultTranscodeTimeout = 60 * time.Second

// NewLegacyOffice returns the extractor for legacy binary DOC/PPT/XLS
// documents: transcode via LibreOffice, then re-dispatch the resulting
// bytes to the modern office extractor (spec.md §4.3).
func NewLegacyOffice() Extractor {
	return &Base{
		NameValue:     "legacy_office",
		PriorityValue: 0,
		MimeTypes: []string{
			"application/msword",
			"application/vnd.ms-powerpoint",
			"application/vnd.ms-excel",
		},
		DoExtract: extractLegacyOffice,
	}
}

func extractLegacyOffice(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) (*kreuzberg.ExtractionResult, error) {
	target, ok := legacyOfficeTargets[mime]
	if !ok {
		return nil, kerr.UnsupportedFormat(mime) // unreachable: Claims() already filtered
	}

	converted, err := libreoffice.Convert(context.Background(), data, target.sourceExt, target.targetFormat, defaultTranscodeTimeout)
	if err != nil {
		return nil, err
	}

	result, err := extractOffice(converted, target.modernMime, cfg)
	if err != nil {
		return nil, err
	}
	// Echo the caller's original MIME, not the transcoded one, per the
	// "mime_type equals the caller's canonical MIME" invariant (spec.md §4.3).
	result.MimeType = mime
	return result, nil
}
