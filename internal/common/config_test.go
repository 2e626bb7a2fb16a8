package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "claude", config.LLM.DefaultProvider)
	assert.True(t, config.Cache.Enabled)
	assert.Equal(t, "24h", config.Cache.LongTailTTL)
	assert.Equal(t, 5*time.Second, config.Pipeline.ExtractorTimeoutDuration())
	assert.Equal(t, 30*time.Second, config.LLM.LLMTimeoutDuration())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merx.toml")
	content := []byte(`
environment = "production"

[pipeline]
extractor_timeout = "2s"
min_confidence = 0.5

[cache]
enabled = false
meta_ttl = "1h"

[llm]
default_provider = "gemini"
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, 2*time.Second, config.Pipeline.ExtractorTimeoutDuration())
	assert.Equal(t, 0.5, config.Pipeline.MinConfidence)
	assert.False(t, config.Cache.Enabled)
	assert.Equal(t, "1h", config.Cache.MetaTTL)
	assert.Equal(t, "gemini", config.LLM.DefaultProvider)

	// Unspecified sections keep their defaults.
	assert.Equal(t, "24h", config.Cache.LongTailTTL)
	assert.Equal(t, "claude-sonnet-4-20250514", config.Claude.Model)
}

func TestLoadFromFile_EmptyPathUsesDefaults(t *testing.T) {
	config, err := LoadFromFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Environment, config.Environment)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MERX_LOG_LEVEL", "debug")
	t.Setenv("MERX_OFFLINE", "true")
	t.Setenv("MERX_LLM_PROVIDER", "gemini")
	t.Setenv("MERX_CLAUDE_API_KEY", "merx-key")
	t.Setenv("ANTHROPIC_API_KEY", "vendor-key")

	config, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Logging.Level)
	assert.True(t, config.Tasks.Offline)
	assert.Equal(t, "gemini", config.LLM.DefaultProvider)
	// The MERX-prefixed key wins over the vendor-standard one.
	assert.Equal(t, "merx-key", config.Claude.APIKey)
}

func TestParseTTL(t *testing.T) {
	assert.Equal(t, 6*time.Hour, ParseTTL("6h", time.Hour))
	assert.Equal(t, time.Hour, ParseTTL("", time.Hour))
	assert.Equal(t, time.Hour, ParseTTL("not a duration", time.Hour))
	assert.Equal(t, time.Hour, ParseTTL("-5m", time.Hour))
}
