package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type claudeClient struct {
	client anthropic.Client
}

// getClaudeClient returns the Claude client, creating it on first use.
func (f *Factory) getClaudeClient() (*claudeClient, error) {
	if f.claude != nil {
		return f.claude, nil
	}

	if f.claudeConfig.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required (set MERX_CLAUDE_API_KEY, ANTHROPIC_API_KEY, or claude.api_key in config)")
	}

	f.claude = &claudeClient{
		client: anthropic.NewClient(
			option.WithAPIKey(f.claudeConfig.APIKey),
		),
	}
	return f.claude, nil
}

// completeWithClaude generates content using the Claude API.
func (f *Factory) completeWithClaude(ctx context.Context, model, prompt string) (string, error) {
	claude, err := f.getClaudeClient()
	if err != nil {
		return "", err
	}

	if model == "" {
		model = f.claudeConfig.Model
	}
	maxTokens := f.claudeConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if f.claudeConfig.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(f.claudeConfig.Temperature))
	}

	resp, err := claude.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from Claude API")
	}

	return text.String(), nil
}
