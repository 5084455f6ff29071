// Package ffi implements the cgo-free support layer behind the C ABI of
// spec.md §6.1: JSON config parsing with strict unknown-field
// rejection, an opaque-handle registry (so pointers crossing the C
// boundary are small integers rather than raw Go pointers, which cgo
// forbids retaining), and a last-error string. The last error is one
// mutex-guarded value shared by all threads, not a per-thread one (see
// lasterror.go). The actual
// //export functions live in cmd/kreuzberg-ffi, which is a thin cgo
// shim over this package.
package ffi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// wireConfig mirrors spec.md §6.1's flat JSON config schema with
// explicit json tags, since kreuzberg.ExtractionConfig itself is tagged
// for mapstructure/yaml rather than json. Decoding through this
// intermediate type is what lets DisallowUnknownFields name the
// offending field in the caller's own vocabulary.
type wireConfig struct {
	UseCache                bool                   `json:"use_cache"`
	EnableQualityProcessing bool                   `json:"enable_quality_processing"`
	ForceOCR                bool                   `json:"force_ocr"`
	MaxConcurrentExtraction int                    `json:"max_concurrent_extractions"`
	TimeoutSeconds          int                    `json:"timeout_seconds"`
	OCR                     *wireOCRConfig         `json:"ocr,omitempty"`
	Chunking                *wireChunkingConfig    `json:"chunking,omitempty"`
	Embedding               *wireEmbeddingConfig   `json:"embedding,omitempty"`
	LanguageDetection       *wireLanguageDetection `json:"language_detection,omitempty"`
	TokenReduction          *wireTokenReduction    `json:"token_reduction,omitempty"`
	HTMLOptions             *wireHTMLOptions       `json:"html_options,omitempty"`
}

type wireOCRConfig struct {
	BackendName string            `json:"backend_name"`
	Language    string            `json:"language"`
	Options     map[string]string `json:"options,omitempty"`
}

type wireChunkingConfig struct {
	MaxChars   int                  `json:"max_chars"`
	MaxOverlap int                  `json:"max_overlap"`
	Preset     string               `json:"preset,omitempty"`
	Embedding  *wireEmbeddingConfig `json:"embedding,omitempty"`
}

type wireEmbeddingConfig struct {
	Kind       string `json:"kind,omitempty"` // "preset" (default), "builtin", or "custom"
	Model      string `json:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty"`
	BatchSize  int    `json:"batch_size"`
	Normalize  bool   `json:"normalize"`
	CacheDir   string `json:"cache_dir,omitempty"`
}

type wireLanguageDetection struct {
	Enabled        bool    `json:"enabled"`
	MinConfidence  float64 `json:"min_confidence"`
	DetectMultiple bool    `json:"detect_multiple"`
}

type wireTokenReduction struct {
	Mode                   string `json:"mode"`
	PreserveImportantWords bool   `json:"preserve_important_words"`
}

type wireHTMLOptions struct {
	HeadingStyle     string   `json:"heading_style,omitempty"`
	BulletChar       string   `json:"bullet_char,omitempty"`
	EscapeMode       string   `json:"escape_mode,omitempty"`
	ListIndent       string   `json:"list_indent,omitempty"`
	CodeFenceStyle   string   `json:"code_fence_style,omitempty"`
	WhitespaceMode   string   `json:"whitespace_mode,omitempty"`
	KeepInlineImages []string `json:"keep_inline_images,omitempty"`
}

var validTokenReductionModes = map[string]kreuzberg.TokenReductionMode{
	"off": kreuzberg.TokenReductionOff, "light": kreuzberg.TokenReductionLight,
	"aggressive": kreuzberg.TokenReductionAggressive,
}

var validHeadingStyles = map[string]kreuzberg.HeadingStyle{
	"atx": kreuzberg.HeadingATX, "atx_closed": kreuzberg.HeadingATXClosed,
	"underlined": kreuzberg.HeadingUnderlined,
}

var validCodeFenceStyles = map[string]kreuzberg.CodeFenceStyle{
	"backticks": kreuzberg.CodeFenceBackticks, "tildes": kreuzberg.CodeFenceTildes,
	"indented": kreuzberg.CodeFenceIndented,
}

var validWhitespaceModes = map[string]kreuzberg.WhitespaceMode{
	"normalized": kreuzberg.WhitespaceNormalized, "strict": kreuzberg.WhitespaceStrict,
	"minimal": kreuzberg.WhitespaceMinimal,
}

var validListIndents = map[string]kreuzberg.ListIndent{
	"spaces": kreuzberg.ListIndentSpaces, "tabs": kreuzberg.ListIndentTabs,
}

var validEscapeModes = map[string]kreuzberg.EscapeMode{
	"standard": kreuzberg.EscapeStandard, "aggressive": kreuzberg.EscapeAggressive,
	"none": kreuzberg.EscapeNone,
}

// ConfigFromJSON parses a flat config JSON document per spec.md §6.1,
// rejecting unknown fields and invalid enum spellings with a message
// naming the offending field (kreuzberg_config_from_json).
func ConfigFromJSON(data []byte) (*kreuzberg.ExtractionConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w wireConfig
	if err := dec.Decode(&w); err != nil {
		return nil, kerr.Validation(fmt.Sprintf("config: %v", err))
	}

	cfg := kreuzberg.DefaultConfig()
	cfg.UseCache = w.UseCache
	cfg.EnableQualityProcessing = w.EnableQualityProcessing
	cfg.ForceOCR = w.ForceOCR
	cfg.MaxConcurrentExtraction = w.MaxConcurrentExtraction
	cfg.Timeout = w.TimeoutSeconds

	if w.OCR != nil {
		cfg.OCR = &kreuzberg.OCRConfig{
			BackendName: w.OCR.BackendName,
			Language:    w.OCR.Language,
			Options:     w.OCR.Options,
		}
	}

	if w.Chunking != nil {
		cfg.Chunking = &kreuzberg.ChunkingConfig{
			MaxChars:   w.Chunking.MaxChars,
			MaxOverlap: w.Chunking.MaxOverlap,
			Preset:     w.Chunking.Preset,
		}
		if w.Chunking.Embedding != nil {
			emb, err := embeddingFromWire(w.Chunking.Embedding)
			if err != nil {
				return nil, err
			}
			cfg.Chunking.Embedding = emb
		}
	}

	if w.Embedding != nil {
		emb, err := embeddingFromWire(w.Embedding)
		if err != nil {
			return nil, err
		}
		cfg.Embedding = emb
	}

	if w.LanguageDetection != nil {
		cfg.LanguageDetection = kreuzberg.LanguageDetectionConfig{
			Enabled:        w.LanguageDetection.Enabled,
			MinConfidence:  w.LanguageDetection.MinConfidence,
			DetectMultiple: w.LanguageDetection.DetectMultiple,
		}
	}

	if w.TokenReduction != nil {
		mode, ok := validTokenReductionModes[w.TokenReduction.Mode]
		if !ok {
			return nil, kerr.Validation(fmt.Sprintf("config: invalid token_reduction.mode %q", w.TokenReduction.Mode))
		}
		cfg.TokenReduction = kreuzberg.TokenReductionConfig{
			Mode:                   mode,
			PreserveImportantWords: w.TokenReduction.PreserveImportantWords,
		}
	}

	if w.HTMLOptions != nil {
		opts, err := htmlOptionsFromWire(w.HTMLOptions)
		if err != nil {
			return nil, err
		}
		cfg.HTMLOptions = opts
	}

	return cfg, nil
}

func embeddingFromWire(w *wireEmbeddingConfig) (*kreuzberg.EmbeddingConfig, error) {
	kind, ok := kreuzberg.ParseModelSelectorKind(w.Kind)
	if !ok {
		return nil, kerr.Validation(fmt.Sprintf("config: invalid embedding.kind %q", w.Kind))
	}
	return &kreuzberg.EmbeddingConfig{
		ModelSelector: kreuzberg.ModelSelector{Kind: kind, Name: w.Model, Dimensions: w.Dimensions},
		BatchSize:     w.BatchSize,
		Normalize:     w.Normalize,
		CacheDir:      w.CacheDir,
	}, nil
}

func htmlOptionsFromWire(w *wireHTMLOptions) (kreuzberg.HTMLOptions, error) {
	opts := kreuzberg.DefaultHTMLOptions()

	if w.HeadingStyle != "" {
		v, ok := validHeadingStyles[w.HeadingStyle]
		if !ok {
			return opts, kerr.Validation(fmt.Sprintf("config: invalid html_options.heading_style %q", w.HeadingStyle))
		}
		opts.HeadingStyle = v
	}
	if w.BulletChar != "" {
		opts.BulletChar = w.BulletChar
	}
	if w.EscapeMode != "" {
		v, ok := validEscapeModes[w.EscapeMode]
		if !ok {
			return opts, kerr.Validation(fmt.Sprintf("config: invalid html_options.escape_mode %q", w.EscapeMode))
		}
		opts.EscapeMode = v
	}
	if w.ListIndent != "" {
		v, ok := validListIndents[w.ListIndent]
		if !ok {
			return opts, kerr.Validation(fmt.Sprintf("config: invalid html_options.list_indent %q", w.ListIndent))
		}
		opts.ListIndent = v
	}
	if w.CodeFenceStyle != "" {
		v, ok := validCodeFenceStyles[w.CodeFenceStyle]
		if !ok {
			return opts, kerr.Validation(fmt.Sprintf("config: invalid html_options.code_fence_style %q", w.CodeFenceStyle))
		}
		opts.CodeFenceStyle = v
	}
	if w.WhitespaceMode != "" {
		v, ok := validWhitespaceModes[w.WhitespaceMode]
		if !ok {
			return opts, kerr.Validation(fmt.Sprintf("config: invalid html_options.whitespace_mode %q", w.WhitespaceMode))
		}
		opts.WhitespaceMode = v
	}
	if w.KeepInlineImages != nil {
		opts.KeepInlineImages = w.KeepInlineImages
	}
	return opts, nil
}

// ConfigIsValid reports whether data parses as a valid config
// (kreuzberg_config_is_valid), without retaining the parsed result.
func ConfigIsValid(data []byte) (bool, error) {
	_, err := ConfigFromJSON(data)
	if err != nil {
		return false, err
	}
	return true, nil
}
