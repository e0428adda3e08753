package inference

import (
	"cmp"
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIInferencer implements Inferencer against any OpenAI-compatible chat
// completion endpoint with vision support.
type OpenAIInferencer struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAIInferencer creates a vision inferencer using the OpenAI client.
func NewOpenAIInferencer(apiKey string, model string) *OpenAIInferencer {
	if model == "" {
		model = "gpt-4o"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIInferencer{
		client: &client,
		apiKey: apiKey,
		model:  model,
	}
}

// ChangeBaseURL repoints the client at a compatible provider.
func (o *OpenAIInferencer) ChangeBaseURL(baseURL string) {
	client := openai.NewClient(
		option.WithAPIKey(o.apiKey),
		option.WithBaseURL(baseURL),
	)
	o.client = &client
}

func (o *OpenAIInferencer) SetModel(model string) {
	o.model = model
}

// Infer sends the prompt and image as a single user message and returns the
// completion text.
func (o *OpenAIInferencer) Infer(ctx context.Context, req Request) (string, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{
		{
			OfText: &openai.ChatCompletionContentPartTextParam{Text: req.Prompt},
		},
	}
	if len(req.Image.Data) > 0 {
		url := fmt.Sprintf("data:%s;base64,%s", req.Image.MIME, base64.StdEncoding.EncodeToString(req.Image.Data))
		parts = append(parts, openai.ChatCompletionContentPartUnionParam{
			OfImageURL: &openai.ChatCompletionContentPartImageParam{
				ImageURL: openai.ChatCompletionContentPartImageImageURLParam{URL: url},
			},
		})
	}

	params := openai.ChatCompletionNewParams{
		Model: cmp.Or(req.Model, o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Role: "user",
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: parts,
					},
				},
			},
		},
		MaxCompletionTokens: openai.Int(4096 * 4),
		Temperature:         openai.Float(0.3),
		TopP:                openai.Float(1.0),
	}
	if req.ResponseFormat != nil {
		params.ResponseFormat = *req.ResponseFormat
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai inference error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	if resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion content")
	}

	return resp.Choices[0].Message.Content, nil
}
