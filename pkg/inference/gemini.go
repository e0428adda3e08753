package inference

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured or requested.
const DefaultGeminiModel = "gemini-3-pro-preview"

type GeminiInferencer struct {
	client *genai.Client
	apiKey string
	model  string
}

// NewGeminiInferencer creates a Gemini-backed vision inferencer.
func NewGeminiInferencer(apiKey string, model string) (*GeminiInferencer, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &GeminiInferencer{
		client: client,
		apiKey: apiKey,
		model:  model,
	}, nil
}

// Infer sends the prompt and image to Gemini configured for a JSON-typed
// reply and returns the raw response text.
func (g *GeminiInferencer) Infer(ctx context.Context, req Request) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(req.Prompt),
	}
	if len(req.Image.Data) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MIME))
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	result, err := g.client.Models.GenerateContent(
		ctx,
		cmp.Or(req.Model, g.model),
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("empty completion content")
	}
	return text, nil
}
