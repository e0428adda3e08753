package rig

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/charmbracelet/log"
)

// pixelReference is the assumed image dimension used to convert translate
// values that look like pixel offsets back into normalized fractions.
// TODO: pass the real image dimensions from the overlay loader instead.
const pixelReference = 500.0

const (
	maxTranslate       = 0.1
	correctedThreshold = 0.005
)

type anchorPayload struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Type  string   `json:"type"`
}

type analysisPayload struct {
	ImageType   string          `json:"image_type"`
	Description string          `json:"description"`
	Anchors     []anchorPayload `json:"anchors"`
	Bones       []Bone          `json:"bones"`
	Animations  []Animation     `json:"animations"`
}

// ParseAnalysis decodes and sanitizes a full analysis response: presence of
// the three top-level lists, coordinate clamps and field defaults for
// anchors, referential pruning for bones, and translate clamps for
// animations.
func ParseAnalysis(text string) (*Analysis, error) {
	var payload analysisPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(payload.Anchors) == 0 {
		return nil, ErrNoAnchors
	}
	if len(payload.Bones) == 0 {
		return nil, ErrNoBones
	}
	if len(payload.Animations) == 0 {
		return nil, ErrNoAnimations
	}

	anchors := sanitizeAnchors(payload.Anchors)
	bones := filterBones(payload.Bones, AnchorIDs(anchors))
	if len(bones) == 0 {
		return nil, ErrNoValidBones
	}

	return &Analysis{
		Status:      StatusSuccess,
		ImageType:   payload.ImageType,
		Description: payload.Description,
		Anchors:     anchors,
		Bones:       bones,
		Animations:  SanitizeAnimations(payload.Animations, nil),
	}, nil
}

// ParseCorrections decodes a refinement response into the model's corrected
// anchor positions.
func ParseCorrections(text string) ([]Correction, error) {
	var payload struct {
		Anchors []Correction `json:"anchors"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(payload.Anchors) == 0 {
		return nil, ErrNoCorrections
	}
	return payload.Anchors, nil
}

// ParseAnimationSet decodes a regeneration response and sanitizes it against
// the known anchor set: dangling keyframe references are pruned and translate
// components clamped.
func ParseAnimationSet(text string, known AnchorSet) (*AnimationSet, error) {
	var payload struct {
		Animations []Animation `json:"animations"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(payload.Animations) == 0 {
		return nil, ErrNoAnimations
	}
	return &AnimationSet{
		Status:     StatusSuccess,
		Animations: SanitizeAnimations(payload.Animations, known),
	}, nil
}

// sanitizeAnchors applies the coordinate clamp and field defaulting rules.
// Missing coordinates land on the image center before clamping.
func sanitizeAnchors(in []anchorPayload) []Anchor {
	out := make([]Anchor, 0, len(in))
	for _, p := range in {
		a := Anchor{
			ID:    p.ID,
			Label: p.Label,
			X:     clamp(value(p.X, 0.5), 0, 1),
			Y:     clamp(value(p.Y, 0.5), 0, 1),
			Type:  AnchorType(p.Type),
		}
		if a.Type == "" {
			a.Type = Joint
		}
		if a.ID == "" {
			a.ID = deriveID(p.Label)
		}
		out = append(out, a)
	}
	return out
}

// deriveID builds an anchor id from its label: lower-cased, spaces replaced
// with underscores, "anchor" when there is no label either.
func deriveID(label string) string {
	if label == "" {
		return "anchor"
	}
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

// filterBones keeps only bones whose endpoints both resolve to a known
// anchor; anything else is dropped silently.
func filterBones(bones []Bone, known AnchorSet) []Bone {
	out := make([]Bone, 0, len(bones))
	for _, b := range bones {
		if known.Has(b.From) && known.Has(b.To) {
			out = append(out, b)
		}
	}
	return out
}

// SanitizeAnimations clamps every keyframe transform into the allowed
// translate range, converting suspected pixel offsets first. When known is
// non-nil, keyframe entries referencing unknown anchors are dropped from the
// keyframe; the rest of the keyframe is kept.
func SanitizeAnimations(anims []Animation, known AnchorSet) []Animation {
	for ai := range anims {
		for ki := range anims[ai].Keyframes {
			kf := &anims[ai].Keyframes[ki]
			kept := make(map[string]Transform, len(kf.Anchors))
			for id, tr := range kf.Anchors {
				if known != nil && !known.Has(id) {
					continue
				}
				kept[id] = normalizeTransform(id, tr)
			}
			kf.Anchors = kept
		}
	}
	return anims
}

// normalizeTransform applies the pixel-unit heuristic and the translate
// clamp. The model occasionally answers in pixels instead of normalized
// fractions; a magnitude above 1.0 on either axis trips the conversion for
// both, using a fixed reference dimension. Best effort, hence the warning.
func normalizeTransform(anchorID string, tr Transform) Transform {
	tx, ty := tr.TranslateX, tr.TranslateY
	if math.Abs(tx) > 1.0 || math.Abs(ty) > 1.0 {
		log.Warn("translate values appear to be pixels, not normalized; converting",
			"anchor", anchorID, "translateX", tx, "translateY", ty, "reference", pixelReference)
		tx /= pixelReference
		ty /= pixelReference
	}
	tr.TranslateX = clamp(tx, -maxTranslate, maxTranslate)
	tr.TranslateY = clamp(ty, -maxTranslate, maxTranslate)
	return tr
}

// MergeCorrections folds the model's corrections into the original anchor
// list. The output always has exactly the input's ids in the input's order;
// anchors the model did not return keep their original position. An anchor
// counts as corrected when the model says so or when it measurably moved,
// since models sometimes move a point without setting the flag.
func MergeCorrections(orig []Anchor, corrections []Correction) ([]CorrectedAnchor, int, float64) {
	byID := make(map[string]Correction, len(corrections))
	for _, c := range corrections {
		byID[c.ID] = c
	}

	out := make([]CorrectedAnchor, 0, len(orig))
	var totalMovement float64
	var correctedCount int

	for _, a := range orig {
		c, ok := byID[a.ID]
		if !ok {
			out = append(out, CorrectedAnchor{ID: a.ID, X: a.X, Y: a.Y})
			continue
		}
		x := clamp(value(c.X, a.X), 0, 1)
		y := clamp(value(c.Y, a.Y), 0, 1)
		dist := math.Hypot(x-a.X, y-a.Y)
		totalMovement += dist

		corrected := c.Corrected || dist > correctedThreshold
		if corrected {
			correctedCount++
		}
		out = append(out, CorrectedAnchor{ID: a.ID, X: x, Y: y, Corrected: corrected})
	}

	return out, correctedCount, round6(totalMovement)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func value(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
