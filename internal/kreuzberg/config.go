// Package kreuzberg defines the root data model shared by every
// extractor, post-processor, and validator in the core: ExtractionConfig,
// ExtractionResult, and their nested types (spec.md §3).
package kreuzberg

// ExtractionConfig is the root configuration passed to every extraction
// call (spec.md §3).
type ExtractionConfig struct {
	UseCache                bool                    `mapstructure:"use_cache" yaml:"use_cache"`
	EnableQualityProcessing bool                    `mapstructure:"enable_quality_processing" yaml:"enable_quality_processing"`
	ForceOCR                bool                    `mapstructure:"force_ocr" yaml:"force_ocr"`
	MaxConcurrentExtraction int                     `mapstructure:"max_concurrent_extractions" yaml:"max_concurrent_extractions"`
	Timeout                 int                     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	OCR                     *OCRConfig              `mapstructure:"ocr" yaml:"ocr,omitempty"`
	Chunking                *ChunkingConfig         `mapstructure:"chunking" yaml:"chunking,omitempty"`
	Embedding               *EmbeddingConfig        `mapstructure:"embedding" yaml:"embedding,omitempty"`
	LanguageDetection       LanguageDetectionConfig `mapstructure:"language_detection" yaml:"language_detection"`
	TokenReduction          TokenReductionConfig    `mapstructure:"token_reduction" yaml:"token_reduction"`
	HTMLOptions             HTMLOptions             `mapstructure:"html_options" yaml:"html_options"`
}

// OCRConfig selects and parameterizes an OCR backend.
type OCRConfig struct {
	BackendName string            `mapstructure:"backend_name" yaml:"backend_name"`
	Language    string            `mapstructure:"language" yaml:"language"`
	Options     map[string]string `mapstructure:"options" yaml:"options,omitempty"`
}

// ChunkingConfig controls the sliding-window chunker (spec.md §4.6).
type ChunkingConfig struct {
	MaxChars    int              `mapstructure:"max_chars" yaml:"max_chars"`
	MaxOverlap  int              `mapstructure:"max_overlap" yaml:"max_overlap"`
	Preset      string           `mapstructure:"preset" yaml:"preset,omitempty"`
	Embedding   *EmbeddingConfig `mapstructure:"embedding" yaml:"embedding,omitempty"`
}

// ModelSelectorKind tags which variant of ModelSelector is populated.
type ModelSelectorKind int

const (
	ModelSelectorPreset ModelSelectorKind = iota
	ModelSelectorBuiltin
	ModelSelectorCustom
)

func (k ModelSelectorKind) String() string {
	switch k {
	case ModelSelectorBuiltin:
		return "builtin"
	case ModelSelectorCustom:
		return "custom"
	default:
		return "preset"
	}
}

// ParseModelSelectorKind parses the wire/YAML spelling of a
// ModelSelectorKind ("preset"|"builtin"|"custom"), defaulting to Preset
// for an empty string so an embedding block that only sets "name" keeps
// working.
func ParseModelSelectorKind(s string) (ModelSelectorKind, bool) {
	switch s {
	case "", "preset":
		return ModelSelectorPreset, true
	case "builtin":
		return ModelSelectorBuiltin, true
	case "custom":
		return ModelSelectorCustom, true
	default:
		return ModelSelectorPreset, false
	}
}

// ModelSelector is a tagged value choosing a preset, a known built-in
// model ID, or a caller-supplied custom model (currently unsupported,
// spec.md §3/§4.6).
type ModelSelector struct {
	Kind       ModelSelectorKind `mapstructure:"kind" yaml:"kind,omitempty"`
	Name       string            `mapstructure:"name" yaml:"name,omitempty"` // Preset name, or Builtin/Custom model id
	Dimensions int               `mapstructure:"dimensions" yaml:"dimensions,omitempty"` // Builtin/Custom only
}

// EmbeddingConfig controls embedding generation (spec.md §4.6/§4.7).
type EmbeddingConfig struct {
	ModelSelector ModelSelector `mapstructure:"model_selector" yaml:"model_selector,omitempty"`
	BatchSize     int           `mapstructure:"batch_size" yaml:"batch_size"`
	Normalize     bool          `mapstructure:"normalize" yaml:"normalize"`
	CacheDir      string        `mapstructure:"cache_dir" yaml:"cache_dir,omitempty"`
}

// LanguageDetectionConfig controls the Early-stage language detector.
type LanguageDetectionConfig struct {
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
	MinConfidence  float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	DetectMultiple bool    `mapstructure:"detect_multiple" yaml:"detect_multiple"`
}

// TokenReductionMode is the token-reduction aggressiveness (spec.md §4.6).
type TokenReductionMode string

const (
	TokenReductionOff        TokenReductionMode = "off"
	TokenReductionLight      TokenReductionMode = "light"
	TokenReductionAggressive TokenReductionMode = "aggressive"
)

// TokenReductionConfig controls the Middle-stage token reducer.
type TokenReductionConfig struct {
	Mode                   TokenReductionMode `mapstructure:"mode" yaml:"mode"`
	PreserveImportantWords bool               `mapstructure:"preserve_important_words" yaml:"preserve_important_words"`
}

// HeadingStyle, BulletChar etc. are the enumerated HTML-to-markdown
// toggles of spec.md §3/§6.1.
type HeadingStyle string

const (
	HeadingATX        HeadingStyle = "atx"
	HeadingATXClosed   HeadingStyle = "atx_closed"
	HeadingUnderlined HeadingStyle = "underlined"
)

type CodeFenceStyle string

const (
	CodeFenceBackticks CodeFenceStyle = "backticks"
	CodeFenceTildes    CodeFenceStyle = "tildes"
	CodeFenceIndented  CodeFenceStyle = "indented"
)

type WhitespaceMode string

const (
	WhitespaceNormalized WhitespaceMode = "normalized"
	WhitespaceStrict     WhitespaceMode = "strict"
	WhitespaceMinimal    WhitespaceMode = "minimal"
)

type ListIndent string

const (
	ListIndentSpaces ListIndent = "spaces"
	ListIndentTabs   ListIndent = "tabs"
)

type EscapeMode string

const (
	EscapeStandard   EscapeMode = "standard"
	EscapeAggressive EscapeMode = "aggressive"
	EscapeNone       EscapeMode = "none"
)

// HTMLOptions is an enumerated bag of HTML-to-markdown toggles (spec.md
// §3). Defaults match a conservative CommonMark profile.
type HTMLOptions struct {
	HeadingStyle       HeadingStyle   `mapstructure:"heading_style" yaml:"heading_style"`
	BulletChar         string         `mapstructure:"bullet_char" yaml:"bullet_char"`
	EscapeMode         EscapeMode     `mapstructure:"escape_mode" yaml:"escape_mode"`
	ListIndent         ListIndent     `mapstructure:"list_indent" yaml:"list_indent"`
	CodeFenceStyle     CodeFenceStyle `mapstructure:"code_fence_style" yaml:"code_fence_style"`
	WhitespaceMode     WhitespaceMode `mapstructure:"whitespace_mode" yaml:"whitespace_mode"`
	KeepInlineImages   []string       `mapstructure:"keep_inline_images" yaml:"keep_inline_images,omitempty"`
}

// DefaultHTMLOptions returns the conservative CommonMark default profile.
func DefaultHTMLOptions() HTMLOptions {
	return HTMLOptions{
		HeadingStyle:     HeadingATX,
		BulletChar:       "-",
		EscapeMode:       EscapeStandard,
		ListIndent:       ListIndentSpaces,
		CodeFenceStyle:   CodeFenceBackticks,
		WhitespaceMode:   WhitespaceNormalized,
		KeepInlineImages: nil,
	}
}

// DefaultConfig returns an ExtractionConfig with spec-conformant defaults.
func DefaultConfig() *ExtractionConfig {
	return &ExtractionConfig{
		UseCache:                true,
		EnableQualityProcessing: true,
		ForceOCR:                false,
		MaxConcurrentExtraction: 0, // 0 means "default to CPU count" at the executor
		LanguageDetection: LanguageDetectionConfig{
			Enabled:        false,
			MinConfidence:  0.65,
			DetectMultiple: false,
		},
		TokenReduction: TokenReductionConfig{
			Mode:                   TokenReductionOff,
			PreserveImportantWords: true,
		},
		HTMLOptions: DefaultHTMLOptions(),
	}
}
