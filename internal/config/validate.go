package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

var (
	// ErrInvalidTokenReductionMode indicates an unrecognized token
	// reduction mode.
	ErrInvalidTokenReductionMode = errors.New("invalid token reduction mode")

	// ErrInvalidConfidence indicates a confidence value outside [0,1].
	ErrInvalidConfidence = errors.New("invalid confidence value")

	// ErrInvalidChunking indicates an inconsistent chunking configuration.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrInvalidServerLimits indicates a non-positive request/field size limit.
	ErrInvalidServerLimits = errors.New("invalid server limits")
)

// Validate checks that cfg is internally consistent.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateTokenReduction(&cfg.Extraction.TokenReduction); err != nil {
		errs = append(errs, err)
	}
	if err := validateLanguageDetection(&cfg.Extraction.LanguageDetection); err != nil {
		errs = append(errs, err)
	}
	if err := validateChunking(cfg.Extraction.Chunking); err != nil {
		errs = append(errs, err)
	}
	if err := validateServer(&cfg.Server); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validateTokenReduction(cfg *kreuzberg.TokenReductionConfig) error {
	switch cfg.Mode {
	case kreuzberg.TokenReductionOff, kreuzberg.TokenReductionLight, kreuzberg.TokenReductionAggressive:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTokenReductionMode, cfg.Mode)
	}
}

func validateLanguageDetection(cfg *kreuzberg.LanguageDetectionConfig) error {
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence must be in [0,1], got %f", ErrInvalidConfidence, cfg.MinConfidence)
	}
	return nil
}

func validateChunking(cfg *kreuzberg.ChunkingConfig) error {
	if cfg == nil {
		return nil
	}
	if cfg.MaxChars <= 0 {
		return fmt.Errorf("%w: max_chars must be positive, got %d", ErrInvalidChunking, cfg.MaxChars)
	}
	if cfg.MaxOverlap < 0 {
		return fmt.Errorf("%w: max_overlap cannot be negative, got %d", ErrInvalidChunking, cfg.MaxOverlap)
	}
	if cfg.MaxOverlap >= cfg.MaxChars {
		return fmt.Errorf("%w: max_overlap (%d) must be less than max_chars (%d)", ErrInvalidChunking, cfg.MaxOverlap, cfg.MaxChars)
	}
	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.MaxRequestBodyBytes <= 0 {
		return fmt.Errorf("%w: max_request_body_bytes must be positive, got %d", ErrInvalidServerLimits, cfg.MaxRequestBodyBytes)
	}
	if cfg.MaxMultipartFieldBytes <= 0 {
		return fmt.Errorf("%w: max_multipart_field_bytes must be positive, got %d", ErrInvalidServerLimits, cfg.MaxMultipartFieldBytes)
	}
	return nil
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
