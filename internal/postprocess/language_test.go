package postprocess

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

func TestDetectLanguagesRanksEnglishHighestForEnglishText(t *testing.T) {
	scores := DetectLanguages("the quick brown fox is in the garden and it was for the win")
	require.NotEmpty(t, scores)
	require.Equal(t, "eng", scores[0].Language)
}

func TestDetectLanguagesRanksGermanHighestForGermanText(t *testing.T) {
	scores := DetectLanguages("der Hund und die Katze ist nicht in dem Garten mit einer Maus")
	require.NotEmpty(t, scores)
	require.Equal(t, "deu", scores[0].Language)
}

func TestLanguageDetectionProcessorWritesMetadataWhenAboveThreshold(t *testing.T) {
	proc := &LanguageDetectionProcessor{PriorityValue: 0}
	cfg := kreuzberg.DefaultConfig()
	cfg.LanguageDetection.Enabled = true
	cfg.LanguageDetection.MinConfidence = 0.5

	result := kreuzberg.New("text/plain")
	result.Content = "the quick brown fox is in the garden and it was for the win"

	require.True(t, proc.ShouldProcess(result, cfg))
	require.NoError(t, proc.Process(result, cfg))
	require.Equal(t, "eng", result.Metadata.Language)
	require.Equal(t, []string{"eng"}, result.DetectedLanguages)
}

func TestLanguageDetectionProcessorSkipsWhenDisabled(t *testing.T) {
	proc := &LanguageDetectionProcessor{PriorityValue: 0}
	cfg := kreuzberg.DefaultConfig()
	result := kreuzberg.New("text/plain")
	result.Content = "some content"
	require.False(t, proc.ShouldProcess(result, cfg))
}
