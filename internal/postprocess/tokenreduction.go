package postprocess

import (
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/semantic"
)

// stopwords is the fixed closed-class set "light" mode removes when
// preserve_important_words permits (spec.md §4.6).
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true, "of": true, "to": true,
	"in": true, "on": true, "at": true, "for": true, "with": true, "as": true,
}

// TokenReductionProcessor is the Middle-stage token reducer (spec.md
// §4.6): light mode strips stopwords, aggressive mode additionally
// applies internal/semantic's importance scoring and hypernym
// substitution.
type TokenReductionProcessor struct {
	PriorityValue int
}

func (t *TokenReductionProcessor) Name() string         { return "token_reduction" }
func (t *TokenReductionProcessor) Initialize() error     { return nil }
func (t *TokenReductionProcessor) Shutdown() error       { return nil }
func (t *TokenReductionProcessor) ProcessingStage() Stage { return Middle }
func (t *TokenReductionProcessor) Priority() int          { return t.PriorityValue }
func (t *TokenReductionProcessor) Fatal() bool            { return false }

func (t *TokenReductionProcessor) ShouldProcess(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) bool {
	return cfg != nil && cfg.TokenReduction.Mode != kreuzberg.TokenReductionOff && len(result.Content) > 0
}

func (t *TokenReductionProcessor) Process(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) error {
	switch cfg.TokenReduction.Mode {
	case kreuzberg.TokenReductionLight:
		result.Content = reduceLight(result.Content, cfg.TokenReduction.PreserveImportantWords)
	case kreuzberg.TokenReductionAggressive:
		result.Content = reduceLight(result.Content, cfg.TokenReduction.PreserveImportantWords)
		result.Content = semantic.CompressWithHypernyms(result.Content, nil)
	}
	return nil
}

// reduceLight removes closed-class stopwords from text. When preserve
// is true, a token is kept anyway if its semantic importance score
// already exceeds the stopword-removal threshold (capitalized
// emphasis, mid-sentence "The Project" style proper-noun usage, etc).
func reduceLight(text string, preserve bool) string {
	tokens := semantic.Tokenize(text)
	var kept []string
	for i, tok := range tokens {
		lower := strings.ToLower(tok)
		if !stopwords[lower] {
			kept = append(kept, tok)
			continue
		}
		if preserve && semantic.Score(tokens, i) >= 0.5 {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// QualityScoringProcessor is the Middle-stage quality scorer (spec.md
// §4.6): a [0,1] score from whitespace density, punctuation ratio, and
// alphabetic-run length statistics.
type QualityScoringProcessor struct {
	PriorityValue int
}

func (q *QualityScoringProcessor) Name() string         { return "quality_scoring" }
func (q *QualityScoringProcessor) Initialize() error     { return nil }
func (q *QualityScoringProcessor) Shutdown() error       { return nil }
func (q *QualityScoringProcessor) ProcessingStage() Stage { return Middle }
func (q *QualityScoringProcessor) Priority() int          { return q.PriorityValue }
func (q *QualityScoringProcessor) Fatal() bool            { return false }

func (q *QualityScoringProcessor) ShouldProcess(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) bool {
	return cfg != nil && cfg.EnableQualityProcessing && len(result.Content) > 0
}

func (q *QualityScoringProcessor) Process(result *kreuzberg.ExtractionResult, cfg *kreuzberg.ExtractionConfig) error {
	score := QualityScore(result.Content)
	result.Metadata.QualityScore = &score
	result.Metadata.Additional["quality_score"] = score
	return nil
}

// QualityScore estimates content quality in [0,1] from whitespace
// density, punctuation ratio, and the average run length of
// consecutive alphabetic characters (longer runs indicate real prose
// rather than OCR noise or binary garbage).
func QualityScore(content string) float64 {
	if len(content) == 0 {
		return 0
	}

	var whitespace, punctuation, alpha int
	var runs []int
	currentRun := 0
	for _, r := range content {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			whitespace++
		case strings.ContainsRune(".,;:!?'\"-()[]{}", r):
			punctuation++
		}
		if isAlphaRune(r) {
			alpha++
			currentRun++
		} else if currentRun > 0 {
			runs = append(runs, currentRun)
			currentRun = 0
		}
	}
	if currentRun > 0 {
		runs = append(runs, currentRun)
	}

	total := float64(len([]rune(content)))
	whitespaceDensity := float64(whitespace) / total
	punctuationRatio := float64(punctuation) / total

	avgRun := 0.0
	if len(runs) > 0 {
		sum := 0
		for _, r := range runs {
			sum += r
		}
		avgRun = float64(sum) / float64(len(runs))
	}

	// Healthy prose: whitespace density around 0.15-0.25, punctuation
	// below ~0.1, average alphabetic run length of several characters.
	whitespaceScore := 1 - clamp(absDiff(whitespaceDensity, 0.18)/0.3, 0, 1)
	punctuationScore := 1 - clamp(punctuationRatio/0.25, 0, 1)
	runScore := clamp(avgRun/6.0, 0, 1)

	score := (whitespaceScore + punctuationScore + runScore) / 3.0
	return clamp(score, 0, 1)
}

func isAlphaRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
