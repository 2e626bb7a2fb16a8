// Package llm provides the generation-provider transport behind the
// task runner: one logical Complete call that may be served by Claude
// or Gemini depending on the configured model.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/interfaces"
	"golang.org/x/time/rate"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
)

// Factory selects and calls the configured provider. Provider selection
// happens once per call from the model string; the factory never
// cascades between providers inside a single logical call.
type Factory struct {
	claudeConfig *common.ClaudeConfig
	geminiConfig *common.GeminiConfig
	llmConfig    *common.LLMConfig
	logger       arbor.ILogger
	limiter      *rate.Limiter
	timeout      time.Duration

	claude *claudeClient
	gemini *geminiClient
}

// NewFactory creates a provider factory from configuration. Clients are
// created lazily on first use so a missing API key only fails the call,
// which the task runner degrades to the heuristic path.
func NewFactory(config *common.Config, logger arbor.ILogger) *Factory {
	var limiter *rate.Limiter
	if config.LLM.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(config.LLM.RequestsPerMinute)/60.0), config.LLM.RequestsPerMinute)
	}

	return &Factory{
		claudeConfig: &config.Claude,
		geminiConfig: &config.Gemini,
		llmConfig:    &config.LLM,
		logger:       logger,
		limiter:      limiter,
		timeout:      config.LLM.LLMTimeoutDuration(),
	}
}

// Name identifies the factory's active provider for telemetry.
func (f *Factory) Name() string {
	return string(f.detectProvider(f.llmConfig.Model))
}

// detectProvider determines the provider type from a model string.
// Model strings can carry an explicit prefix ("claude/...", "gemini/...")
// or be recognized by their vendor naming pattern; an empty string uses
// the configured default provider.
func (f *Factory) detectProvider(model string) ProviderType {
	if model == "" {
		if f.llmConfig.DefaultProvider == string(ProviderGemini) {
			return ProviderGemini
		}
		return ProviderClaude
	}

	model = strings.ToLower(model)
	if strings.HasPrefix(model, "claude/") || strings.HasPrefix(model, "anthropic/") || strings.HasPrefix(model, "claude-") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini/") || strings.HasPrefix(model, "google/") || strings.HasPrefix(model, "gemini-") {
		return ProviderGemini
	}

	if f.llmConfig.DefaultProvider == string(ProviderGemini) {
		return ProviderGemini
	}
	return ProviderClaude
}

// normalizeModel removes a provider prefix from the model name if present
func normalizeModel(model string) string {
	for _, prefix := range []string{"claude/", "anthropic/", "gemini/", "google/"} {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// Complete sends the prompt to the selected provider and returns its raw
// text. Calls are rate limited, bounded by the configured timeout, and
// retried with linear backoff before the error escapes to the task
// runner.
func (f *Factory) Complete(ctx context.Context, prompt string) (string, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait cancelled: %w", err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	provider := f.detectProvider(f.llmConfig.Model)
	model := normalizeModel(f.llmConfig.Model)

	f.logger.Debug().
		Str("provider", string(provider)).
		Str("model", model).
		Int("prompt_length", len(prompt)).
		Msg("Generating content with provider")

	var text string
	var err error
	for attempt := 0; attempt <= f.llmConfig.MaxRetries; attempt++ {
		switch provider {
		case ProviderGemini:
			text, err = f.completeWithGemini(callCtx, model, prompt)
		default:
			text, err = f.completeWithClaude(callCtx, model, prompt)
		}
		if err == nil {
			return text, nil
		}
		if attempt == f.llmConfig.MaxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * 2 * time.Second
		f.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(err).
			Msg("Retrying provider call")

		select {
		case <-callCtx.Done():
			return "", callCtx.Err()
		case <-time.After(backoff):
		}
	}

	return "", fmt.Errorf("provider call failed after %d retries: %w", f.llmConfig.MaxRetries, err)
}

// Close releases all provider clients.
func (f *Factory) Close() error {
	f.claude = nil
	f.gemini = nil
	return nil
}

var _ interfaces.CompletionProvider = (*Factory)(nil)
