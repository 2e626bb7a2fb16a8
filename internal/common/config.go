package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Storage     StorageConfig  `toml:"storage"`
	Logging     LoggingConfig  `toml:"logging"`
	Pipeline    PipelineConfig `toml:"pipeline"`
	Cache       CacheConfig    `toml:"cache"`
	Claude      ClaudeConfig   `toml:"claude"`
	Gemini      GeminiConfig   `toml:"gemini"`
	LLM         LLMConfig      `toml:"llm"`
	Tasks       TasksConfig    `toml:"tasks"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration.
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
	GCSchedule     string `toml:"gc_schedule"`      // Cron schedule for value-log GC (empty disables)
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// PipelineConfig tunes the extraction pipeline.
type PipelineConfig struct {
	ExtractorTimeout  string  `toml:"extractor_timeout"`    // Per-extractor timeout, e.g. "5s"
	MinConfidence     float64 `toml:"min_confidence"`       // Results below this are discarded
	StopAfterFirstHit bool    `toml:"stop_after_first_hit"` // Stop after the first extractor that yields any field
	MaxExtractors     int     `toml:"max_extractors"`       // 0 = run all registered extractors
	SelectorsFile     string  `toml:"selectors_file"`       // Optional YAML selector override for the generic extractor
	KeepResults       bool    `toml:"keep_results"`         // Retain individual extractor results on the pipeline result
}

// CacheConfig tunes the two-tier task cache.
type CacheConfig struct {
	Enabled     bool   `toml:"enabled"`
	LongTailTTL string `toml:"longtail_ttl"` // e.g. "24h"
	MetaTTL     string `toml:"meta_ttl"`     // e.g. "6h"
	BulletsTTL  string `toml:"bullets_ttl"`  // e.g. "12h"
	GapsTTL     string `toml:"gaps_ttl"`     // e.g. "168h"
}

// ClaudeConfig holds Anthropic Claude provider settings.
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// GeminiConfig holds Google Gemini provider settings.
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
}

// LLMConfig holds provider-agnostic generation settings.
type LLMConfig struct {
	DefaultProvider   string `toml:"default_provider"`    // "claude" or "gemini"
	Model             string `toml:"model"`               // Overrides the provider default when set
	Timeout           string `toml:"timeout"`             // Per-call timeout, e.g. "30s"
	MaxRetries        int    `toml:"max_retries"`         // Retries within one logical call
	RequestsPerMinute int    `toml:"requests_per_minute"` // 0 = unlimited
}

// TasksConfig holds task-runner behavior flags.
type TasksConfig struct {
	Offline bool `toml:"offline"` // Skip provider calls, heuristics only
}

// DefaultConfig returns the built-in configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:       "./data/merx",
				GCSchedule: "@every 10m",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Pipeline: PipelineConfig{
			ExtractorTimeout: "5s",
			MinConfidence:    0.3,
			KeepResults:      true,
		},
		Cache: CacheConfig{
			Enabled:     true,
			LongTailTTL: "24h",
			MetaTTL:     "6h",
			BulletsTTL:  "12h",
			GapsTTL:     "168h",
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   2048,
			Temperature: 0.7,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider:   "claude",
			Timeout:           "30s",
			MaxRetries:        2,
			RequestsPerMinute: 30,
		},
	}
}

// LoadFromFile loads configuration in priority order:
// defaults -> TOML file (optional) -> environment overrides.
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides applies MERX_* environment variables on top of the
// loaded configuration. Provider API keys also honor the vendor-standard
// variable names.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("MERX_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("MERX_STORAGE_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("MERX_OFFLINE"); v != "" {
		config.Tasks.Offline = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("MERX_CLAUDE_API_KEY"); v != "" {
		config.Claude.APIKey = v
	} else if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("MERX_GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	} else if v := os.Getenv("GEMINI_API_KEY"); v != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("MERX_LLM_PROVIDER"); v != "" {
		config.LLM.DefaultProvider = v
	}
	if v := os.Getenv("MERX_LLM_MODEL"); v != "" {
		config.LLM.Model = v
	}
}

// ExtractorTimeout parses the configured per-extractor timeout, falling
// back to 5s on a missing or invalid value.
func (c *PipelineConfig) ExtractorTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ExtractorTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// LLMTimeoutDuration parses the configured provider timeout, falling
// back to 30s on a missing or invalid value.
func (c *LLMConfig) LLMTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ParseTTL parses a TTL string, returning fallback when unset or invalid.
func ParseTTL(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
