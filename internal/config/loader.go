package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/shlex"
	"github.com/spf13/viper"

	"github.com/kreuzberg-go/kreuzberg/internal/kreuzberg"
)

// Loader loads a Config from a kreuzberg.yml file plus KREUZBERG_*
// environment overrides (spec.md's ambient configuration section:
// defaults -> config file -> environment, environment wins).
type Loader interface {
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a loader that searches rootDir for kreuzberg.yml.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("kreuzberg")
	v.SetConfigType("yaml")
	v.AddConfigPath(l.rootDir)

	v.SetEnvPrefix("KREUZBERG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("extraction.use_cache")
	v.BindEnv("extraction.enable_quality_processing")
	v.BindEnv("extraction.force_ocr")
	v.BindEnv("extraction.max_concurrent_extractions")
	v.BindEnv("extraction.timeout_seconds")
	v.BindEnv("extraction.language_detection.enabled")
	v.BindEnv("extraction.language_detection.min_confidence")
	v.BindEnv("extraction.token_reduction.mode")
	v.BindEnv("extraction.embedding.model_selector.kind")
	v.BindEnv("extraction.embedding.model_selector.name")
	v.BindEnv("extraction.embedding.model_selector.dimensions")
	v.BindEnv("extraction.embedding.batch_size")
	v.BindEnv("extraction.embedding.normalize")
	v.BindEnv("extraction.embedding.cache_dir")
	v.BindEnv("server.max_request_body_bytes")
	v.BindEnv("server.max_multipart_field_bytes")

	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading kreuzberg.yml: %w", err)
		}
	}

	cfg := Default()
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		modelSelectorKindHookFunc(),
	))
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyLegacyUploadSizeEnv(cfg)
	if err := applyCORSOriginsEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// modelSelectorKindHookFunc decodes the wire/YAML spelling of a
// kreuzberg.ModelSelector's "kind" field ("preset"|"builtin"|"custom")
// into its ModelSelectorKind enum value, the way
// mvp-joe-project-cortex's internal/mcp-utils/coerce.go hooks a raw
// JSON string into a typed field during mapstructure decoding.
func modelSelectorKindHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(kreuzberg.ModelSelectorPreset) {
			return data, nil
		}
		if from.Kind() != reflect.String {
			return data, nil
		}
		s, _ := data.(string)
		kind, ok := kreuzberg.ParseModelSelectorKind(s)
		if !ok {
			return nil, fmt.Errorf("invalid model_selector.kind %q: must be one of preset, builtin, custom", s)
		}
		return kind, nil
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("extraction.use_cache", d.Extraction.UseCache)
	v.SetDefault("extraction.enable_quality_processing", d.Extraction.EnableQualityProcessing)
	v.SetDefault("extraction.force_ocr", d.Extraction.ForceOCR)
	v.SetDefault("extraction.max_concurrent_extractions", d.Extraction.MaxConcurrentExtraction)
	v.SetDefault("extraction.language_detection.enabled", d.Extraction.LanguageDetection.Enabled)
	v.SetDefault("extraction.language_detection.min_confidence", d.Extraction.LanguageDetection.MinConfidence)
	v.SetDefault("extraction.token_reduction.mode", string(d.Extraction.TokenReduction.Mode))
	v.SetDefault("extraction.token_reduction.preserve_important_words", d.Extraction.TokenReduction.PreserveImportantWords)
	v.SetDefault("server.max_request_body_bytes", d.Server.MaxRequestBodyBytes)
	v.SetDefault("server.max_multipart_field_bytes", d.Server.MaxMultipartFieldBytes)
}

// applyLegacyUploadSizeEnv honors the deprecated
// KREUZBERG_MAX_UPLOAD_SIZE_MB variable (spec.md §6.2) when the
// newer byte-precision variables are unset, converting megabytes to
// bytes.
func applyLegacyUploadSizeEnv(cfg *Config) {
	raw, ok := os.LookupEnv("KREUZBERG_MAX_UPLOAD_SIZE_MB")
	if !ok {
		return
	}
	mb, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || mb <= 0 {
		return
	}
	bytes := mb * 1024 * 1024
	if _, set := os.LookupEnv("KREUZBERG_SERVER_MAX_REQUEST_BODY_BYTES"); !set {
		cfg.Server.MaxRequestBodyBytes = bytes
	}
	if _, set := os.LookupEnv("KREUZBERG_SERVER_MAX_MULTIPART_FIELD_BYTES"); !set {
		cfg.Server.MaxMultipartFieldBytes = bytes
	}
}

// applyCORSOriginsEnv parses KREUZBERG_CORS_ORIGINS as a shell-style
// comma/space-separated list, so a quoted origin containing a comma
// survives (spec.md §6.2), the way the teacher's daemon code uses
// google/shlex to parse PROFILING_FIXTURES-style environment lists.
func applyCORSOriginsEnv(cfg *Config) error {
	raw, ok := os.LookupEnv("KREUZBERG_CORS_ORIGINS")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	fields, err := shlex.Split(strings.ReplaceAll(raw, ",", " "))
	if err != nil {
		return fmt.Errorf("parsing KREUZBERG_CORS_ORIGINS: %w", err)
	}
	origins := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			origins = append(origins, f)
		}
	}
	if len(origins) > 0 {
		cfg.Server.CORSOrigins = origins
	}
	return nil
}

// LoadConfig loads configuration rooted at the current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration rooted at dir.
func LoadConfigFromDir(dir string) (*Config, error) {
	return NewLoader(dir).Load()
}
