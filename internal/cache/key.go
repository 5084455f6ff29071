package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// Key computes spec.md §4.9's cache key: a content hash of the input
// bytes concatenated with the canonical MIME string and a stable
// (field-ordered) serialization of the configuration. xxhash.Sum64 is
// the same "FastHash" fingerprint idiom standardbeagle-lci's
// FileContentStore uses for quick equality checks.
func Key(data []byte, mime string, cfg *kreuzberg.ExtractionConfig) string {
	h := xxhash.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(mime))
	h.Write([]byte{0})
	h.Write([]byte(canonicalConfig(cfg)))
	return fmt.Sprintf("%016x", h.Sum64())
}

// canonicalConfig serializes the fields of cfg that affect extraction
// output, in a fixed field order, so that two configs with identical
// semantic content always produce the same string regardless of
// construction order (spec.md §4.9: "a stable serialization of the
// configuration (field-ordered)").
func canonicalConfig(cfg *kreuzberg.ExtractionConfig) string {
	if cfg == nil {
		return "nil"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "force_ocr=%v;", cfg.ForceOCR)
	fmt.Fprintf(&b, "quality=%v;", cfg.EnableQualityProcessing)
	fmt.Fprintf(&b, "lang.enabled=%v;lang.multi=%v;lang.min=%v;",
		cfg.LanguageDetection.Enabled, cfg.LanguageDetection.DetectMultiple, cfg.LanguageDetection.MinConfidence)
	fmt.Fprintf(&b, "token.mode=%s;token.preserve=%v;",
		cfg.TokenReduction.Mode, cfg.TokenReduction.PreserveImportantWords)
	if cfg.Chunking != nil {
		fmt.Fprintf(&b, "chunk.max=%d;chunk.overlap=%d;", cfg.Chunking.MaxChars, cfg.Chunking.MaxOverlap)
	} else {
		b.WriteString("chunk=nil;")
	}
	if cfg.OCR != nil {
		fmt.Fprintf(&b, "ocr.backend=%s;ocr.lang=%s;", cfg.OCR.BackendName, cfg.OCR.Language)
	} else {
		b.WriteString("ocr=nil;")
	}
	if cfg.Embedding != nil {
		fmt.Fprintf(&b, "embed.model=%s;embed.batch=%d;embed.normalize=%v;",
			cfg.Embedding.ModelSelector.Name, cfg.Embedding.BatchSize, cfg.Embedding.Normalize)
	} else {
		b.WriteString("embed=nil;")
	}
	fmt.Fprintf(&b, "html.heading=%s;html.bullet=%s;html.escape=%s;html.listindent=%s;html.fence=%s;html.ws=%s;html.images=%s;",
		cfg.HTMLOptions.HeadingStyle, cfg.HTMLOptions.BulletChar, cfg.HTMLOptions.EscapeMode,
		cfg.HTMLOptions.ListIndent, cfg.HTMLOptions.CodeFenceStyle, cfg.HTMLOptions.WhitespaceMode,
		sortedJoin(cfg.HTMLOptions.KeepInlineImages))
	return b.String()
}

func sortedJoin(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	cp := make([]string, len(ss))
	copy(cp, ss)
	sort.Strings(cp)
	return strings.Join(cp, ",")
}
