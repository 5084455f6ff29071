// Package semantic implements the token-importance analyzer that
// backs aggressive token reduction (spec.md §4.8): three static tables
// (base weights, hypernyms, clusters) plus a scoring formula and two
// operations, filter_by_importance and compress_with_hypernyms.
package semantic

import (
	"math"
	"sort"
	"strings"
)

// baseWeights holds per-word base importance, default 0.3 when absent
// (spec.md §4.8).
var baseWeights = map[string]float64{
	"the": 0.05, "a": 0.05, "an": 0.05, "and": 0.05, "or": 0.05, "but": 0.05,
	"is": 0.1, "are": 0.1, "was": 0.1, "were": 0.1, "be": 0.1, "been": 0.1,
	"important": 0.8, "critical": 0.9, "essential": 0.85, "key": 0.75,
	"significant": 0.7, "major": 0.65, "primary": 0.7, "main": 0.6,
	"result": 0.6, "conclusion": 0.7, "summary": 0.6, "finding": 0.65,
	"automobile": 0.1, "sedan": 0.1, "truck": 0.1,
	"sparrow": 0.1, "eagle": 0.15, "robin": 0.1,
	"oak": 0.1, "pine": 0.1, "maple": 0.1,
	"happy": 0.15, "ecstatic": 0.15, "delighted": 0.15,
}

// hypernyms maps a specific term to a broader substitute term, used by
// compress_with_hypernyms to shorten low-importance tokens in place.
var hypernyms = map[string]string{
	"automobile": "vehicle", "sedan": "vehicle", "truck": "vehicle",
	"sparrow": "bird", "eagle": "bird", "robin": "bird",
	"oak": "tree", "pine": "tree", "maple": "tree",
	"happy": "glad", "ecstatic": "glad", "delighted": "glad",
}

// clusters groups semantically related terms; membership in the same
// cluster as a token up to two positions before or after contributes
// to the contextual boost (spec.md §4.8).
var clusters = map[string]string{
	"vehicle": "transportation", "car": "transportation", "truck": "transportation",
	"bird": "animal", "dog": "animal", "cat": "animal",
	"tree": "plant", "flower": "plant", "grass": "plant",
}

var punctuationStrip = strings.NewReplacer(
	"(", "", ")", "", "[", "", "]", "", ",", "", ".", "", ";", "", ":", "", "+", "", "`", "",
)

// technicalSuffixes are heuristic markers of domain terminology (spec.md
// §4.8's "technical-term bonus ... matches heuristic suffixes/underscore
// patterns").
var technicalSuffixes = []string{"tion", "ism", "ology", "_id", "_key", "Config", "API"}

// Tokenize splits text on whitespace and strips the fixed ASCII
// punctuation set (spec.md §4.8). Tokens keep their original case; the
// table lookups and term counts in Score fold case themselves, and its
// capitalization bonus reads the original case.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		stripped := punctuationStrip.Replace(f)
		if stripped != "" {
			tokens = append(tokens, stripped)
		}
	}
	return tokens
}

// Score computes the per-token importance score for tokens[i] given
// the full token sequence, per spec.md §4.8's scoring formula.
func Score(tokens []string, i int) float64 {
	tok := tokens[i]
	lower := strings.ToLower(tok)

	score := 0.3
	if w, ok := baseWeights[lower]; ok {
		score = w
	}

	score += math.Min(0.2, float64(len(tok))*0.02)

	if len(tok) > 0 && tok[0] >= 'A' && tok[0] <= 'Z' {
		score += 0.2
	}

	if isNumeric(tok) {
		score += 0.15
	}

	if isTechnicalTerm(tok) {
		score += 0.25
	}

	if i == 0 || i == len(tokens)-1 {
		score += 0.1
	}

	if inClusterWindow(tokens, i) {
		score += 0.1
	}

	tf := termFrequency(tokens, lower)
	score += (math.Log(tf) + 1) * 0.1

	return math.Min(score, 1.0)
}

func isNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	for _, c := range tok {
		if (c < '0' || c > '9') && c != '.' && c != '-' {
			return false
		}
	}
	return true
}

func isTechnicalTerm(tok string) bool {
	if len(tok) < 6 {
		return false
	}
	if strings.Contains(tok, "_") {
		return true
	}
	for _, suffix := range technicalSuffixes {
		if strings.HasSuffix(strings.ToLower(tok), strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

// inClusterWindow reports whether tokens[i]'s cluster matches the
// cluster of any token within two positions before or after it.
func inClusterWindow(tokens []string, i int) bool {
	cluster, ok := clusters[strings.ToLower(tokens[i])]
	if !ok {
		return false
	}
	for d := -2; d <= 2; d++ {
		if d == 0 {
			continue
		}
		j := i + d
		if j < 0 || j >= len(tokens) {
			continue
		}
		if clusters[strings.ToLower(tokens[j])] == cluster {
			return true
		}
	}
	return false
}

func termFrequency(tokens []string, lower string) float64 {
	count := 0
	for _, t := range tokens {
		if strings.ToLower(t) == lower {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return float64(count)
}

// FilterByImportance keeps tokens scoring at or above threshold, in
// original order, joined by single spaces (spec.md §4.8).
func FilterByImportance(text string, threshold float64) string {
	tokens := Tokenize(text)
	var kept []string
	for i, tok := range tokens {
		if Score(tokens, i) >= threshold {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// CompressWithHypernyms implements spec.md §4.8's compress_with_hypernyms:
// with a target reduction ratio, keep the top-scoring
// round((1-target)*n) tokens (ties broken by original position) and
// downgrade-then-substitute tokens below 0.5 via the hypernym table;
// without a target, substitute every sub-0.5 token in place.
func CompressWithHypernyms(text string, targetReduction *float64) string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return ""
	}

	type scored struct {
		index int
		token string
		score float64
	}
	scoredTokens := make([]scored, len(tokens))
	for i, tok := range tokens {
		scoredTokens[i] = scored{index: i, token: tok, score: Score(tokens, i)}
	}

	if targetReduction == nil {
		out := make([]string, len(tokens))
		for i, st := range scoredTokens {
			out[i] = substituteIfLowScore(st.token, st.score)
		}
		return strings.Join(out, " ")
	}

	keepCount := int(math.Round((1 - *targetReduction) * float64(len(tokens))))
	if keepCount < 1 {
		keepCount = 1
	}
	if keepCount > len(tokens) {
		keepCount = len(tokens)
	}

	ranked := make([]scored, len(scoredTokens))
	copy(ranked, scoredTokens)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})
	ranked = ranked[:keepCount]
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].index < ranked[b].index
	})

	out := make([]string, len(ranked))
	for i, st := range ranked {
		out[i] = substituteIfLowScore(st.token, st.score*0.8)
	}
	return strings.Join(out, " ")
}

func substituteIfLowScore(token string, score float64) string {
	if score >= 0.5 {
		return token
	}
	if sub, ok := hypernyms[strings.ToLower(token)]; ok {
		return sub
	}
	return token
}
