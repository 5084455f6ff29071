// Package config loads kreuzberg.ExtractionConfig from a YAML file
// plus KREUZBERG_* environment overrides, the way the teacher's
// internal/config loads its own Config (a typed struct with
// mapstructure/yaml tags, a Default() constructor, and spf13/viper
// for file+env layering).
package config

import (
	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// ServerConfig holds the settings internal/httpapi's HTTP service
// needs that have no place on kreuzberg.ExtractionConfig itself (spec.md
// §6.2): request-size limits and CORS.
type ServerConfig struct {
	MaxRequestBodyBytes      int64    `mapstructure:"max_request_body_bytes" yaml:"max_request_body_bytes"`
	MaxMultipartFieldBytes   int64    `mapstructure:"max_multipart_field_bytes" yaml:"max_multipart_field_bytes"`
	CORSOrigins              []string `mapstructure:"cors_origins" yaml:"cors_origins,omitempty"`
}

// Config is the root on-disk/env configuration: the extraction defaults
// plus server-only settings.
type Config struct {
	Extraction kreuzberg.ExtractionConfig `mapstructure:",squash" yaml:",inline"`
	Server     ServerConfig               `mapstructure:"server" yaml:"server"`
}

const defaultMaxRequestBodyBytes = 100 * 1024 * 1024 // 100 MiB, spec.md §6.2

// Default returns a Config with kreuzberg.DefaultConfig()'s extraction
// defaults plus the server's 100MiB default body limit.
func Default() *Config {
	return &Config{
		Extraction: *kreuzberg.DefaultConfig(),
		Server: ServerConfig{
			MaxRequestBodyBytes:    defaultMaxRequestBodyBytes,
			MaxMultipartFieldBytes: defaultMaxRequestBodyBytes,
		},
	}
}
