// Package ocr implements the OCR backend registry and dispatcher of
// spec.md §4.4: a plugin contract any OCR engine can satisfy, selected
// by the same priority/registration-order rule as extractors
// (internal/registry), plus a confidence report carried back on the
// result's metadata.
package ocr

import (
	"context"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/registry"
)

// Backend is the plugin contract an OCR engine satisfies (spec.md §4.4).
// Implementations wrap an external OCR process or library; the core
// ships none built in (spec.md §1 places OCR engines among the
// third-party native libraries specified only by contract).
type Backend interface {
	Name() string
	Initialize() error
	Shutdown() error

	Priority() int
	// SupportsLanguage reports whether the backend has a language model
	// available for lang (an ISO 639-1/639-3 code, backend-defined).
	SupportsLanguage(lang string) bool

	// Recognize runs OCR over a single rasterized page image and
	// returns its text plus a [0,1] confidence score.
	Recognize(ctx context.Context, image []byte, opts *kreuzberg.OCRConfig) (Result, error)
}

// Result is a single page's OCR output.
type Result struct {
	Text       string
	Confidence float64
}

// Registry is the process-global OCR backend registry.
type Registry = registry.Registry[Backend]

// New returns an empty OCR backend registry.
func New() *Registry {
	return registry.New[Backend]()
}

// Select picks the highest-priority backend that supports the
// requested language, falling back to any backend when language is
// empty (spec.md §4.4: "language selection narrows the candidate set;
// priority and registration order break ties exactly as for
// extractors").
func Select(r *Registry, lang string) (Backend, bool) {
	return registry.SelectByPriority(r, Backend.Priority, func(b Backend) bool {
		if lang == "" {
			return true
		}
		return b.SupportsLanguage(lang)
	})
}

// RecognizePage runs the selected backend over a page image and
// reports a non-fatal confidence-below-threshold condition by
// returning ok=false rather than an error, per spec.md §4.4's "OCR
// confidence below the configured threshold is recorded, not treated
// as extraction failure".
func RecognizePage(ctx context.Context, r *Registry, image []byte, cfg *kreuzberg.OCRConfig, minConfidence float64) (Result, bool, error) {
	lang := ""
	if cfg != nil {
		lang = cfg.Language
	}
	backend, ok := Select(r, lang)
	if !ok {
		return Result{}, false, ErrNoBackend
	}
	res, err := backend.Recognize(ctx, image, cfg)
	if err != nil {
		return Result{}, false, err
	}
	return res, res.Confidence >= minConfidence, nil
}
