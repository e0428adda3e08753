// Package rig defines the 2D skeletal rig data model and the sanitation
// pipeline applied to untrusted model responses before a rig is considered
// usable by a downstream editor or renderer.
package rig

import "encoding/json"

type AnchorType string

const (
	Root  AnchorType = "root"
	Joint AnchorType = "joint"
	Tip   AnchorType = "tip"
)

// Anchor is a named 2D point of articulation on an image. Coordinates are
// normalized fractions of image dimensions in [0,1], origin top-left.
type Anchor struct {
	ID    string     `json:"id" jsonschema_description:"Stable snake_case identifier for this anchor"`
	Label string     `json:"label,omitempty" jsonschema_description:"Human readable display name"`
	X     float64    `json:"x" jsonschema_description:"Normalized horizontal position, 0 = left edge, 1 = right edge"`
	Y     float64    `json:"y" jsonschema_description:"Normalized vertical position, 0 = top edge, 1 = bottom edge"`
	Type  AnchorType `json:"type,omitempty" jsonschema:"enum=root,enum=joint,enum=tip" jsonschema_description:"Role of the anchor in the skeleton"`
}

// Bone is a directed connection between two anchors, optionally nested under
// a parent bone. Parent is surface-checked only; the hierarchy itself is not
// validated.
type Bone struct {
	ID     string  `json:"id" jsonschema_description:"Identifier for this bone"`
	From   string  `json:"from" jsonschema_description:"Anchor id the bone starts at"`
	To     string  `json:"to" jsonschema_description:"Anchor id the bone ends at"`
	Parent *string `json:"parent" jsonschema_description:"Parent bone id, null for the root bone"`
}

// Transform is a per-anchor keyframe offset. Rotation is in degrees and the
// translate components are normalized fractions of the image dimension.
type Transform struct {
	Rotation   float64 `json:"rotation" jsonschema_description:"Rotation in degrees, keep between -45 and 45"`
	TranslateX float64 `json:"translateX" jsonschema_description:"Horizontal offset as a fraction of image width, keep between -0.05 and 0.05"`
	TranslateY float64 `json:"translateY" jsonschema_description:"Vertical offset as a fraction of image height, keep between -0.05 and 0.05"`
	Scale      float64 `json:"scale" jsonschema_description:"Uniform scale factor, 1.0 = unchanged"`
}

// UnmarshalJSON defaults an absent scale to the neutral 1.0 instead of Go's
// zero value, which would collapse the anchor.
func (t *Transform) UnmarshalJSON(data []byte) error {
	type alias Transform
	a := alias{Scale: 1}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = Transform(a)
	return nil
}

// Keyframe carries per-anchor transforms at a point in time, conventionally
// normalized 0.0-1.0 over the animation's duration.
type Keyframe struct {
	Time    float64              `json:"time" jsonschema_description:"Keyframe time, normalized 0.0 to 1.0"`
	Anchors map[string]Transform `json:"anchors" jsonschema_description:"Anchor id to transform offsets at this time"`
}

type Animation struct {
	Name        string     `json:"name" jsonschema_description:"Display name of the animation"`
	Description string     `json:"description" jsonschema_description:"What this animation does"`
	Duration    float64    `json:"duration" jsonschema_description:"Duration in seconds"`
	Loop        bool       `json:"loop" jsonschema_description:"Whether the animation loops"`
	Keyframes   []Keyframe `json:"keyframes" jsonschema_description:"Ordered keyframes, at least start, middle and end"`
}

// Correction is a single anchor position returned by the model during the
// refinement pass.
type Correction struct {
	ID        string   `json:"id" jsonschema_description:"Anchor id being corrected"`
	X         *float64 `json:"x" jsonschema_description:"Corrected normalized horizontal position"`
	Y         *float64 `json:"y" jsonschema_description:"Corrected normalized vertical position"`
	Corrected bool     `json:"corrected" jsonschema_description:"True if the anchor was moved, false if already correct"`
}

// CorrectedAnchor is the merge result for one anchor: its final position and
// whether the refinement pass actually moved it.
type CorrectedAnchor struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Corrected bool    `json:"corrected"`
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Analysis is the sanitized result of a full image analysis.
type Analysis struct {
	Status      Status      `json:"status"`
	ImageType   string      `json:"image_type"`
	Description string      `json:"description"`
	Anchors     []Anchor    `json:"anchors"`
	Bones       []Bone      `json:"bones"`
	Animations  []Animation `json:"animations"`
}

// Refinement is the sanitized result of an anchor correction pass.
type Refinement struct {
	Status         Status            `json:"status"`
	Anchors        []CorrectedAnchor `json:"anchors"`
	CorrectedCount int               `json:"corrected_count"`
	TotalMovement  float64           `json:"total_movement"`
}

// AnimationSet is the sanitized result of an animation regeneration pass.
type AnimationSet struct {
	Status     Status      `json:"status"`
	Animations []Animation `json:"animations"`
}

// Failure is the uniform error payload shared by all operations.
type Failure struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Fail converts any operation error into the uniform error payload.
func Fail(err error) Failure {
	return Failure{Status: StatusError, Message: err.Error()}
}

// AnchorSet is a lookup of known anchor ids used for referential checks.
type AnchorSet map[string]struct{}

func AnchorIDs(anchors []Anchor) AnchorSet {
	set := make(AnchorSet, len(anchors))
	for _, a := range anchors {
		set[a.ID] = struct{}{}
	}
	return set
}

func (s AnchorSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}
