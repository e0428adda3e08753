// Package studio runs the three rig operations: initial detection, anchor
// refinement, and animation regeneration. Each is one pass through the same
// pipeline: load image, optionally annotate it, build the prompt, call the
// model gateway, sanitize the reply.
package studio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"
	"github.com/segmentio/ksuid"

	"spinestudio/pkg/inference"
	"spinestudio/pkg/overlay"
	"spinestudio/pkg/prompt"
	"spinestudio/pkg/rig"
	"spinestudio/pkg/utils"
)

// ErrNoAnchors rejects refine/regenerate calls with an empty anchor list
// before any gateway traffic happens.
var ErrNoAnchors = errors.New("No anchors provided")

type Studio struct {
	Inferencer inference.Inferencer
	Model      string

	// OverlayDump, when set, writes the annotated image to this path as webp
	// so the operator can see exactly what the model saw.
	OverlayDump string
}

func New(inf inference.Inferencer, model string) *Studio {
	return &Studio{Inferencer: inf, Model: model}
}

// Analyze detects anchors, bones and animations in the image at path. The
// original image bytes are sent as-is.
func (s *Studio) Analyze(ctx context.Context, imagePath string) (*rig.Analysis, error) {
	run := ksuid.New().String()

	img, err := readImage(imagePath)
	if err != nil {
		return nil, err
	}

	out, err := s.infer(ctx, run, prompt.Analyze(), img, format(prompt.AnalysisResponseFormat()))
	if err != nil {
		return nil, err
	}

	analysis, err := rig.ParseAnalysis(out)
	if err != nil {
		return nil, err
	}

	log.Info("analysis complete", "run", run,
		"type", analysis.ImageType,
		"anchors", len(analysis.Anchors),
		"bones", len(analysis.Bones),
		"animations", len(analysis.Animations))
	return analysis, nil
}

// Refine draws the current anchors onto a copy of the image, asks the model
// to correct their positions, and merges the corrections back over the
// original list.
func (s *Studio) Refine(ctx context.Context, imagePath string, anchors []rig.Anchor) (*rig.Refinement, error) {
	if len(anchors) == 0 {
		return nil, ErrNoAnchors
	}
	run := ksuid.New().String()

	img, err := s.annotate(run, imagePath, anchors, nil)
	if err != nil {
		return nil, err
	}

	out, err := s.infer(ctx, run, prompt.Refine(anchors), img, format(prompt.CorrectionResponseFormat()))
	if err != nil {
		return nil, err
	}

	corrections, err := rig.ParseCorrections(out)
	if err != nil {
		return nil, err
	}

	merged, count, movement := rig.MergeCorrections(anchors, corrections)
	for _, line := range listingDiff(anchors, merged) {
		log.Debug("anchor moved", "run", run, "change", line)
	}
	log.Info("refinement complete", "run", run, "corrected", count, "movement", movement)

	return &rig.Refinement{
		Status:         rig.StatusSuccess,
		Anchors:        merged,
		CorrectedCount: count,
		TotalMovement:  movement,
	}, nil
}

// Regenerate draws anchors and bones onto a copy of the image and asks the
// model for a fresh animation set against the existing anchor ids.
func (s *Studio) Regenerate(ctx context.Context, imagePath string, anchors []rig.Anchor, bones []rig.Bone) (*rig.AnimationSet, error) {
	if len(anchors) == 0 {
		return nil, ErrNoAnchors
	}
	run := ksuid.New().String()

	img, err := s.annotate(run, imagePath, anchors, bones)
	if err != nil {
		return nil, err
	}

	out, err := s.infer(ctx, run, prompt.Regenerate(anchors, bones), img, format(prompt.AnimationResponseFormat()))
	if err != nil {
		return nil, err
	}

	set, err := rig.ParseAnimationSet(out, rig.AnchorIDs(anchors))
	if err != nil {
		return nil, err
	}

	log.Info("regeneration complete", "run", run, "animations", len(set.Animations))
	return set, nil
}

// annotate loads the source image and renders the diagnostic overlay onto a
// copy, encoded as PNG for upload.
func (s *Studio) annotate(run, imagePath string, anchors []rig.Anchor, bones []rig.Bone) (inference.Image, error) {
	if !utils.Exists(imagePath) {
		return inference.Image{}, fmt.Errorf("Image not found: %s", imagePath)
	}

	src, err := overlay.Load(imagePath)
	if err != nil {
		return inference.Image{}, err
	}

	annotated := overlay.Render(src, anchors, bones)
	if s.OverlayDump != "" {
		if err := overlay.SaveWebP(annotated, s.OverlayDump); err != nil {
			log.Warn("failed to save overlay dump", "run", run, "path", s.OverlayDump, "error", err)
		} else {
			log.Debug("saved overlay dump", "run", run, "path", s.OverlayDump)
		}
	}

	data, err := overlay.EncodePNG(annotated)
	if err != nil {
		return inference.Image{}, err
	}
	return inference.Image{Data: data, MIME: "image/png"}, nil
}

// infer logs prompt size, runs the gateway call, and strips markdown fences
// from the reply.
func (s *Studio) infer(ctx context.Context, run, p string, img inference.Image, rf *openai.ChatCompletionNewParamsResponseFormatUnion) (string, error) {
	if tokens, err := utils.NumTokensFromMessages(p); err != nil {
		log.Debug("sending prompt", "run", run, "chars", len(p), "image_bytes", len(img.Data))
	} else {
		log.Debug("sending prompt", "run", run, "chars", len(p), "tokens", tokens, "image_bytes", len(img.Data))
	}

	out, err := s.Inferencer.Infer(ctx, inference.Request{
		Prompt:         p,
		Image:          img,
		Model:          s.Model,
		ResponseFormat: rf,
	})
	if err != nil {
		return "", err
	}
	return utils.CleanJSON(out), nil
}

// readImage returns the raw file bytes with a sniffed content type.
func readImage(path string) (inference.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return inference.Image{}, fmt.Errorf("Image not found: %s", path)
		}
		return inference.Image{}, err
	}
	return inference.Image{Data: data, MIME: http.DetectContentType(data)}, nil
}

func format(u openai.ChatCompletionNewParamsResponseFormatUnion) *openai.ChatCompletionNewParamsResponseFormatUnion {
	return &u
}
