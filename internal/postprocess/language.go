package postprocess

import (
	"sort"
	"strings"
	"unicode"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// LanguageDetectionProcessor is the Early-stage language detector. No
// pack repo wires a language-identification library (cld3/whatlanggo/
// lingua are absent from every go.mod in the retrieval set), so
// detection counts word overlap with the fixed per-language stopword
// tables below; it uses no character n-gram profile. It follows the
// same "static table plus scoring formula" shape as internal/semantic.
type LanguageDetectionProcessor struct {
	PriorityValue int
}

func (l *LanguageDetectionProcessor) Name() string         { return "language_detection" }
func (l *LanguageDetectionProcessor) Initialize() error     { return nil }
func (l *LanguageDetectionProcessor) Shutdown() error       { return nil }
func (l *LanguageDetectionProcessor) ProcessingStage() Stage { return Early }
func (l *LanguageDetectionProcessor) Priority() int          { return l.PriorityValue }
func (l *LanguageDetectionProcessor) Fatal() bool            { return false }

func (l *LanguageDetectionProcessor) ShouldProcess(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) bool {
	return cfg != nil && cfg.LanguageDetection.Enabled && len(strings.TrimSpace(result.Content)) > 0
}

func (l *LanguageDetectionProcessor) Process(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) error {
	scores := DetectLanguages(result.Content)
	if len(scores) == 0 {
		return nil
	}

	if cfg.LanguageDetection.DetectMultiple {
		for _, s := range scores {
			if s.Proportion >= cfg.LanguageDetection.MinConfidence {
				result.DetectedLanguages = append(result.DetectedLanguages, s.Language)
			}
		}
	} else if scores[0].Proportion >= cfg.LanguageDetection.MinConfidence {
		result.DetectedLanguages = []string{scores[0].Language}
	}

	if len(result.DetectedLanguages) > 0 {
		result.Metadata.Language = result.DetectedLanguages[0]
		result.Metadata.DetectedLanguageConfidence = scores[0].Proportion
	}
	return nil
}

// LanguageScore is one candidate language's estimated proportion of the
// input, in [0,1].
type LanguageScore struct {
	Language   string
	Proportion float64
}

// languageStopwords are small, highly frequent closed-class word sets
// per language; overlap against these approximates the trigram/n-gram
// profile spec.md §4.6 calls for, without shipping a trained model.
var languageStopwords = map[string]map[string]bool{
	"en": setOf("the", "and", "is", "in", "to", "of", "a", "that", "it", "for", "with", "was", "on"),
	"de": setOf("der", "die", "das", "und", "ist", "in", "zu", "von", "mit", "ein", "eine", "nicht"),
	"fr": setOf("le", "la", "les", "et", "est", "de", "un", "une", "dans", "pour", "avec", "qui"),
	"es": setOf("el", "la", "los", "las", "y", "es", "de", "un", "una", "en", "con", "que"),
}

// iso6392Code maps this package's internal ISO 639-1 stopword-table
// keys to the ISO 639-2/3 codes spec.md §8's scenarios assert
// (detected_languages == ["eng"], not ["en"]).
var iso6392Code = map[string]string{
	"en": "eng",
	"de": "deu",
	"fr": "fra",
	"es": "spa",
}

func toISO6392(code string) string {
	if mapped, ok := iso6392Code[code]; ok {
		return mapped
	}
	return code
}

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// DetectLanguages returns per-language estimated proportions, sorted
// descending, based on stopword overlap against the tokenized content.
func DetectLanguages(content string) []LanguageScore {
	words := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) == 0 {
		return nil
	}

	counts := make(map[string]int, len(languageStopwords))
	for _, w := range words {
		for lang, stopwords := range languageStopwords {
			if stopwords[w] {
				counts[lang]++
			}
		}
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return []LanguageScore{{Language: toISO6392("en"), Proportion: 0}}
	}

	scores := make([]LanguageScore, 0, len(counts))
	for lang, c := range counts {
		scores = append(scores, LanguageScore{Language: toISO6392(lang), Proportion: float64(c) / float64(total)})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Proportion != scores[j].Proportion {
			return scores[i].Proportion > scores[j].Proportion
		}
		return scores[i].Language < scores[j].Language
	})
	return scores
}
