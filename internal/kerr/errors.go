// Package kerr defines the error taxonomy shared across the extraction
// pipeline (spec.md §7). Every fallible operation in the core returns one
// of these sentinel kinds wrapped with context via fmt.Errorf("...: %w").
package kerr

import (
	"errors"
	"fmt"
)

// Kind classifies a core error so callers (including the FFI layer) can
// branch on failure category without string matching.
type Kind int

const (
	// KindOther is the catch-all for errors surfaced from upstream
	// libraries that don't map onto a more specific kind.
	KindOther Kind = iota
	KindUnsupportedFormat
	KindParsing
	KindMissingDependency
	KindIO
	KindValidation
	KindPlugin
	KindOCR
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindParsing:
		return "parsing"
	case KindMissingDependency:
		return "missing_dependency"
	case KindIO:
		return "io"
	case KindValidation:
		return "validation"
	case KindPlugin:
		return "plugin"
	case KindOCR:
		return "ocr"
	default:
		return "other"
	}
}

// Error is the concrete error type returned by the core. It carries a
// Kind for programmatic dispatch plus a human-readable message, and
// wraps an optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers
// can do errors.Is(err, kerr.New(kerr.KindParsing, "")) style checks via
// the Kind-only helpers below instead.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func new_(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// UnsupportedFormat reports that a MIME type is outside the supported
// families (spec.md §4.1). Terminal, reported verbatim.
func UnsupportedFormat(mime string) *Error {
	return new_(KindUnsupportedFormat, fmt.Sprintf("unsupported MIME type %q", mime), nil)
}

// Parsing reports that a format extractor could not make sense of the
// input bytes.
func Parsing(detail string, cause error) *Error {
	return new_(KindParsing, detail, cause)
}

// MissingDependency reports an absent external binary, always carrying
// an install hint per spec.md §7.
func MissingDependency(tool, installHint string) *Error {
	return new_(KindMissingDependency, fmt.Sprintf("%s not found; %s", tool, installHint), nil)
}

// IO wraps a file or subprocess I/O failure, optionally annotated with
// an exit code.
func IO(detail string, cause error) *Error {
	return new_(KindIO, detail, cause)
}

// Validation reports an invalid config or a validator rejection.
func Validation(detail string) *Error {
	return new_(KindValidation, detail, nil)
}

// Plugin reports a plugin initialization or execution failure.
func Plugin(name string, cause error) *Error {
	return new_(KindPlugin, fmt.Sprintf("plugin %q failed", name), cause)
}

// OCR wraps a failure propagated from the active OCR backend.
func OCR(backend string, cause error) *Error {
	return new_(KindOCR, fmt.Sprintf("ocr backend %q failed", backend), cause)
}

// Other wraps an error from an upstream library with no more specific
// home in the taxonomy.
func Other(detail string, cause error) *Error {
	return new_(KindOther, detail, cause)
}

// KindOf extracts the Kind from err, returning KindOther if err is not
// (or does not wrap) a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindOther
}
