package ocr

import "errors"

// ErrNoBackend is returned when no registered OCR backend claims the
// requested language.
var ErrNoBackend = errors.New("ocr: no backend available for requested language")
