package inference

import (
	"context"

	"github.com/openai/openai-go/v3"
)

// Image is the raw picture payload sent alongside a prompt.
type Image struct {
	Data []byte
	MIME string
}

// Request is a single vision inference call: one prompt, one image. The
// response format constrains OpenAI-compatible gateways to a JSON schema;
// the Gemini gateway relies on its JSON response MIME type instead.
type Request struct {
	Prompt         string
	Image          Image
	Model          string
	ResponseFormat *openai.ChatCompletionNewParamsResponseFormatUnion
}

// Inferencer sends an image and prompt to a vision-capable model and returns
// the raw text of its reply, expected to be a JSON document.
type Inferencer interface {
	Infer(ctx context.Context, req Request) (string, error)
}
