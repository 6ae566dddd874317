package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// LLMProvider abstracts the text model used to draft content.
type LLMProvider interface {
	// GenerateStructured asks for JSON and decodes it into output.
	GenerateStructured(ctx context.Context, prompt string, output interface{}) error

	Close()
}

// GeminiProvider is the Google Gemini implementation of LLMProvider.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// NewGeminiProvider connects to Gemini with apiKey.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}, nil
}

// model returns a fresh handle so concurrent requests never share MIME settings.
func (g *GeminiProvider) model() *genai.GenerativeModel {
	m := g.client.GenerativeModel(g.modelName)
	m.SetTemperature(0.7)
	return m
}

// GenerateStructured implements LLMProvider for JSON output
func (g *GeminiProvider) GenerateStructured(ctx context.Context, prompt string, output interface{}) error {
	m := g.model()
	m.ResponseMIMEType = "application/json"

	txt, err := firstText(m.GenerateContent(ctx, genai.Text(prompt)))
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(txt), output); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// Close implements LLMProvider
func (g *GeminiProvider) Close() {
	g.client.Close()
}

func firstText(resp *genai.GenerateContentResponse, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from LLM")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt), nil
		}
	}

	return "", fmt.Errorf("no text content in response")
}
