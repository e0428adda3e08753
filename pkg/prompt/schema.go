package prompt

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"

	"spinestudio/pkg/rig"
)

// Reply shapes as the model is asked to produce them; the status field of
// the result types is ours, not the model's, so these mirror the raw wire
// documents.

type AnalysisReply struct {
	ImageType   string          `json:"image_type" jsonschema:"enum=face,enum=body,enum=animal,enum=character,enum=object" jsonschema_description:"Broad classification of the image content"`
	Description string          `json:"description" jsonschema_description:"Brief description of the image content"`
	Anchors     []rig.Anchor    `json:"anchors" jsonschema_description:"Detected articulation points"`
	Bones       []rig.Bone      `json:"bones" jsonschema_description:"Bone hierarchy connecting the anchors"`
	Animations  []rig.Animation `json:"animations" jsonschema_description:"3-5 context-appropriate animations"`
}

type CorrectionReply struct {
	Anchors []rig.Correction `json:"anchors" jsonschema_description:"All anchors with evaluated or corrected positions"`
}

type AnimationReply struct {
	Animations []rig.Animation `json:"animations" jsonschema_description:"Regenerated animations using the existing anchor ids"`
}

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

var (
	AnalysisSchema   = generateSchema[AnalysisReply]()
	CorrectionSchema = generateSchema[CorrectionReply]()
	AnimationSchema  = generateSchema[AnimationReply]()
)

func responseFormat(name, description string, schema any) openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(description),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}

// AnalysisResponseFormat constrains an OpenAI-compatible gateway to the full
// analysis reply shape.
func AnalysisResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	return responseFormat("rig_analysis", "Anchors, bones and animations detected in a 2D image", AnalysisSchema)
}

func CorrectionResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	return responseFormat("anchor_corrections", "Corrected anchor positions for a 2D rig", CorrectionSchema)
}

func AnimationResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	return responseFormat("animation_set", "Regenerated keyframe animations for a 2D rig", AnimationSchema)
}
