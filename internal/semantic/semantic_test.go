package semantic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterByImportanceDropsLowScoringStopwords(t *testing.T) {
	out := FilterByImportance("the critical finding was significant", 0.6)
	require.NotContains(t, out, "the")
	require.NotContains(t, out, "was")
	require.Contains(t, out, "critical")
	require.Contains(t, out, "significant")
}

func TestFilterByImportancePreservesOriginalOrder(t *testing.T) {
	out := FilterByImportance("critical essential important", 0.5)
	require.Equal(t, "critical essential important", out)
}

func TestCompressWithHypernymsTargetReductionKeepsTopScoring(t *testing.T) {
	target := 0.5
	out := CompressWithHypernyms("the critical essential important finding was significant major", &target)
	require.NotEmpty(t, out)
	require.LessOrEqual(t, len(Tokenize(out)), 5)
}

func TestCompressWithHypernymsSubstitutesBelowThresholdWithoutTarget(t *testing.T) {
	out := CompressWithHypernyms("the automobile is red", nil)
	require.Contains(t, out, "vehicle")
}

func TestScoreCapsAtOne(t *testing.T) {
	tokens := Tokenize("CRITICAL_CONFIG_123456789")
	require.LessOrEqual(t, Score(tokens, 0), 1.0)
}
