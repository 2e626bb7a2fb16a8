package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type geminiClient struct {
	client *genai.Client
}

// getGeminiClient returns the Gemini client, creating it on first use.
func (f *Factory) getGeminiClient(ctx context.Context) (*geminiClient, error) {
	if f.gemini != nil {
		return f.gemini, nil
	}

	if f.geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set MERX_GEMINI_API_KEY, GEMINI_API_KEY, or gemini.api_key in config)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  f.geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	f.gemini = &geminiClient{client: client}
	return f.gemini, nil
}

// completeWithGemini generates content using the Gemini API.
func (f *Factory) completeWithGemini(ctx context.Context, model, prompt string) (string, error) {
	gemini, err := f.getGeminiClient(ctx)
	if err != nil {
		return "", err
	}

	if model == "" {
		model = f.geminiConfig.Model
	}

	config := &genai.GenerateContentConfig{}
	if f.geminiConfig.Temperature > 0 {
		config.Temperature = genai.Ptr(f.geminiConfig.Temperature)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := gemini.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini API")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty text in Gemini response")
	}
	return text, nil
}
