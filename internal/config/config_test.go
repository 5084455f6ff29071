package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

func TestDefaultMatchesKreuzbergDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, kreuzberg.DefaultConfig().UseCache, cfg.Extraction.UseCache)
	require.Equal(t, int64(defaultMaxRequestBodyBytes), cfg.Server.MaxRequestBodyBytes)
}

func TestValidateRejectsUnknownTokenReductionMode(t *testing.T) {
	cfg := Default()
	cfg.Extraction.TokenReduction.Mode = "bogus"
	err := Validate(cfg)
	require.ErrorIs(t, err, ErrInvalidTokenReductionMode)
}

func TestValidateRejectsOverlapNotLessThanMaxChars(t *testing.T) {
	cfg := Default()
	cfg.Extraction.Chunking = &kreuzberg.ChunkingConfig{MaxChars: 100, MaxOverlap: 100}
	err := Validate(cfg)
	require.ErrorIs(t, err, ErrInvalidChunking)
}

func TestValidateAcceptsDefaultConfig(t *testing.T) {
	require.NoError(t, Validate(Default()))
}
