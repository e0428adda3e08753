// Package prompt builds the fixed instruction texts sent to the vision model
// together with formatted listings of the current rig state.
package prompt

import (
	"fmt"
	"strings"

	"spinestudio/pkg/rig"
)

const analyzeInstructions = `Analyze this 2D image for skeletal animation. Return a JSON object with this exact structure:

{
  "image_type": "face|body|animal|character|object",
  "description": "Brief description of the image content",
  "anchors": [
    {
      "id": "anchor_name",
      "label": "Human readable name",
      "x": 0.5,
      "y": 0.5,
      "type": "root|joint|tip"
    }
  ],
  "bones": [
    {
      "id": "bone_name",
      "from": "anchor_id",
      "to": "anchor_id",
      "parent": null
    }
  ],
  "animations": [
    {
      "name": "Animation Name",
      "description": "What this animation does",
      "duration": 1.0,
      "loop": true,
      "keyframes": [
        {
          "time": 0.0,
          "anchors": {
            "anchor_id": {"rotation": 0, "translateX": 0.0, "translateY": 0.0, "scale": 1.0}
          }
        },
        {
          "time": 0.5,
          "anchors": {
            "anchor_id": {"rotation": 15, "translateX": 0.01, "translateY": -0.02, "scale": 1.0}
          }
        },
        {
          "time": 1.0,
          "anchors": {
            "anchor_id": {"rotation": 0, "translateX": 0.0, "translateY": 0.0, "scale": 1.0}
          }
        }
      ]
    }
  ]
}

CRITICAL coordinate rules:
- All anchor x,y coordinates are normalized 0.0 to 1.0 where (0,0) = top-left corner and (1,1) = bottom-right corner
- x=0.0 means left edge, x=1.0 means right edge, x=0.5 means horizontal center
- y=0.0 means top edge, y=1.0 means bottom edge, y=0.5 means vertical center
- Be PRECISE: place each anchor exactly on the pixel location of the feature it represents
- Place anchors at natural joints/pivot points visible in the image
- For faces: eyes, eyebrows, nose, mouth corners, chin, forehead, ears
- For bodies: head, neck, shoulders, elbows, wrists, hips, knees, ankles
- For animals: head, neck, spine segments, leg joints, tail
- For objects: natural pivot/hinge points
- Create a logical bone hierarchy (parent-child relationships)
- The first anchor should be the root (type: "root"), typically the center/base
- Provide 3-5 context-appropriate animations
- Animations should use subtle, natural-looking movements (rotations in degrees, translations as normalized fractions)
- Keep rotation values between -45 and 45 degrees for natural motion
- translateX/Y are NORMALIZED fractions of image dimensions (0.02 = move right by 2% of image width)
- Keep translateX between -0.05 and 0.05 for subtle natural motion
- Keep translateY between -0.05 and 0.05 for subtle natural motion
- Each animation needs at least 3 keyframes (start, middle, end)
- Ensure keyframes at time 0 and 1.0 match for smooth looping

Return ONLY the JSON object, no other text.`

// Analyze is the instruction text for the initial detection pass.
func Analyze() string {
	return analyzeInstructions
}

// Refine asks the model to correct the marker positions drawn onto the
// annotated image.
func Refine(anchors []rig.Anchor) string {
	return fmt.Sprintf(`Look at this image. Colored dots and labels have been drawn at the current anchor positions.
Each labeled dot represents an anchor point for skeletal animation.

Current anchor positions (normalized 0-1, where 0,0 = top-left, 1,1 = bottom-right):
%s

For each anchor, evaluate whether the dot is placed at the correct anatomical/structural position on the image.
If a dot is NOT in the right place, provide corrected x,y coordinates.
If a dot IS correctly placed, return its current coordinates unchanged.

Return a JSON object with this exact structure:
{
  "anchors": [
    {
      "id": "anchor_id",
      "x": 0.5,
      "y": 0.5,
      "corrected": true
    }
  ]
}

Rules:
- All x,y coordinates must be normalized 0-1 (0,0 = top-left, 1,1 = bottom-right)
- Set "corrected" to true if you moved the anchor, false if it was already correct
- Return ALL anchors, not just corrected ones
- Be precise - place anchors exactly on the anatomical joint/feature they represent

Return ONLY the JSON object, no other text.`, RefineListing(anchors))
}

// Regenerate asks the model for a fresh animation set against the existing
// anchors and bones drawn onto the annotated image.
func Regenerate(anchors []rig.Anchor, bones []rig.Bone) string {
	return fmt.Sprintf(`Look at this image with its skeletal anchor points and bones drawn on it.

Current anchor positions (normalized 0-1, where 0,0 = top-left, 1,1 = bottom-right):
%s

Bone connections:
%s

Generate 3-5 context-appropriate animations for this character/image. Each animation should use the existing anchor IDs.

Return a JSON object with this exact structure:
{
  "animations": [
    {
      "name": "Animation Name",
      "description": "What this animation does",
      "duration": 1.0,
      "loop": true,
      "keyframes": [
        {
          "time": 0.0,
          "anchors": {
            "anchor_id": {"rotation": 0, "translateX": 0.0, "translateY": 0.0, "scale": 1.0}
          }
        },
        {
          "time": 0.5,
          "anchors": {
            "anchor_id": {"rotation": 15, "translateX": 0.01, "translateY": -0.02, "scale": 1.0}
          }
        },
        {
          "time": 1.0,
          "anchors": {
            "anchor_id": {"rotation": 0, "translateX": 0.0, "translateY": 0.0, "scale": 1.0}
          }
        }
      ]
    }
  ]
}

Rules:
- translateX/Y are NORMALIZED fractions of image dimensions (0.02 = move right by 2%% of image width)
- Keep translateX between -0.05 and 0.05 for subtle natural motion
- Keep translateY between -0.05 and 0.05 for subtle natural motion
- Keep rotation values between -45 and 45 degrees for natural motion
- Each animation needs at least 3 keyframes (start, middle, end)
- Ensure keyframes at time 0 and 1.0 match for smooth looping
- Create animations appropriate for the character (e.g., breathing, blinking, waving, idle sway)
- Only reference anchor IDs that exist in the list above

Return ONLY the JSON object, no other text.`, AnchorListing(anchors), BoneListing(bones))
}

// RefineListing formats anchors for the refinement prompt, label first.
func RefineListing(anchors []rig.Anchor) string {
	lines := make([]string, 0, len(anchors))
	for _, a := range anchors {
		lines = append(lines, fmt.Sprintf("  - %q (id=%s): currently at x=%.4f, y=%.4f", displayName(a), a.ID, a.X, a.Y))
	}
	return strings.Join(lines, "\n")
}

// AnchorListing formats anchors with their role for the regeneration prompt.
func AnchorListing(anchors []rig.Anchor) string {
	lines := make([]string, 0, len(anchors))
	for _, a := range anchors {
		typ := a.Type
		if typ == "" {
			typ = rig.Joint
		}
		lines = append(lines, fmt.Sprintf("  - %q (id=%s, type=%s): x=%.4f, y=%.4f", displayName(a), a.ID, typ, a.X, a.Y))
	}
	return strings.Join(lines, "\n")
}

func BoneListing(bones []rig.Bone) string {
	lines := make([]string, 0, len(bones))
	for _, b := range bones {
		lines = append(lines, fmt.Sprintf("  - %q: from=%s to=%s", b.ID, b.From, b.To))
	}
	return strings.Join(lines, "\n")
}

func displayName(a rig.Anchor) string {
	if a.Label != "" {
		return a.Label
	}
	return a.ID
}
