package ffi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

func TestConfigFromJSONParsesKnownFields(t *testing.T) {
	cfg, err := ConfigFromJSON([]byte(`{"use_cache": false, "force_ocr": true, "token_reduction": {"mode": "light", "preserve_important_words": false}}`))
	require.NoError(t, err)
	require.False(t, cfg.UseCache)
	require.True(t, cfg.ForceOCR)
	require.Equal(t, "light", string(cfg.TokenReduction.Mode))
	require.False(t, cfg.TokenReduction.PreserveImportantWords)
}

func TestConfigFromJSONRejectsUnknownField(t *testing.T) {
	_, err := ConfigFromJSON([]byte(`{"not_a_real_field": true}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not_a_real_field")
}

func TestConfigFromJSONRejectsInvalidEnum(t *testing.T) {
	_, err := ConfigFromJSON([]byte(`{"token_reduction": {"mode": "extreme"}}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "extreme")
}

func TestConfigFromJSONRejectsNonIntegerNumericField(t *testing.T) {
	_, err := ConfigFromJSON([]byte(`{"max_concurrent_extractions": "four"}`))
	require.Error(t, err)
}

func TestConfigFromJSONParsesEmbeddingModelSelectorVariants(t *testing.T) {
	cfg, err := ConfigFromJSON([]byte(`{"embedding": {"kind": "builtin", "model": "minilm-l6", "dimensions": 384}}`))
	require.NoError(t, err)
	require.Equal(t, kreuzberg.ModelSelectorBuiltin, cfg.Embedding.ModelSelector.Kind)
	require.Equal(t, "minilm-l6", cfg.Embedding.ModelSelector.Name)
	require.Equal(t, 384, cfg.Embedding.ModelSelector.Dimensions)

	cfg, err = ConfigFromJSON([]byte(`{"embedding": {"model": "some-preset"}}`))
	require.NoError(t, err)
	require.Equal(t, kreuzberg.ModelSelectorPreset, cfg.Embedding.ModelSelector.Kind)

	cfg, err = ConfigFromJSON([]byte(`{"embedding": {"kind": "custom", "model": "my-onnx-model", "dimensions": 128}}`))
	require.NoError(t, err)
	require.Equal(t, kreuzberg.ModelSelectorCustom, cfg.Embedding.ModelSelector.Kind)
}

func TestConfigFromJSONRejectsInvalidEmbeddingKind(t *testing.T) {
	_, err := ConfigFromJSON([]byte(`{"embedding": {"kind": "bogus"}}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "bogus")
}

func TestConfigIsValidReportsBooleanAsInt(t *testing.T) {
	require.Equal(t, 1, ConfigIsValidJSON([]byte(`{}`)))
	require.Equal(t, 0, ConfigIsValidJSON([]byte(`{"bogus": 1}`)))
}

func TestConfigFromJSONHandleRoundTrips(t *testing.T) {
	h := ConfigFromJSONHandle([]byte(`{"force_ocr": true}`))
	require.NotZero(t, h)

	cfg, ok := ConfigGet(h)
	require.True(t, ok)
	require.True(t, cfg.ForceOCR)

	ConfigFree(h)
	_, ok = ConfigGet(h)
	require.False(t, ok)
}

func TestConfigFromJSONHandleReturnsZeroOnError(t *testing.T) {
	h := ConfigFromJSONHandle([]byte(`{"bogus": 1}`))
	require.Zero(t, h)
	require.NotEmpty(t, LastError())
}

func TestLastErrorClearsOnSuccess(t *testing.T) {
	SetLastError("stale")
	ConfigFromJSONHandle([]byte(`{}`))
	require.Empty(t, LastError())
}

func TestInternStringRoundTrips(t *testing.T) {
	before := InternStats().TotalRequests
	e := InternString("application/vnd.kreuzberg-ffi-test")
	require.Equal(t, "application/vnd.kreuzberg-ffi-test", e.Value)
	require.Greater(t, InternStats().TotalRequests, before)
	ReleaseInternedString(e)
}

func TestHandleTableFreeIsIdempotentSafe(t *testing.T) {
	h := ConfigFromJSONHandle([]byte(`{}`))
	ConfigFree(h)
	ConfigFree(h) // second free must not panic
}
