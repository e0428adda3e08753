package studio

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spinestudio/pkg/inference"
	"spinestudio/pkg/rig"
)

type fakeInferencer struct {
	reply string
	err   error
	last  inference.Request
}

func (f *fakeInferencer) Infer(_ context.Context, req inference.Request) (string, error) {
	f.last = req
	return f.reply, f.err
}

func testImage(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 40, G: 40, B: 40, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "subject.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

const analysisReply = "```json\n" + `{
	"image_type": "character",
	"description": "test subject",
	"anchors": [
		{"id": "head", "label": "Head", "x": 0.5, "y": 0.2, "type": "root"},
		{"id": "chin", "label": "Chin", "x": 0.5, "y": 0.4, "type": "joint"}
	],
	"bones": [{"id": "neck", "from": "head", "to": "chin", "parent": null}],
	"animations": [{
		"name": "Nod", "description": "nods", "duration": 1.0, "loop": true,
		"keyframes": [
			{"time": 0.0, "anchors": {"head": {"rotation": 0, "translateX": 0.0, "translateY": 0.0, "scale": 1.0}}},
			{"time": 0.5, "anchors": {"head": {"rotation": 5, "translateX": 0.0, "translateY": 0.02, "scale": 1.0}}},
			{"time": 1.0, "anchors": {"head": {"rotation": 0, "translateX": 0.0, "translateY": 0.0, "scale": 1.0}}}
		]
	}]
}` + "\n```"

func TestAnalyze(t *testing.T) {
	inf := &fakeInferencer{reply: analysisReply}
	st := New(inf, "test-model")

	got, err := st.Analyze(context.Background(), testImage(t))
	require.NoError(t, err)

	assert.Equal(t, rig.StatusSuccess, got.Status)
	assert.Equal(t, "character", got.ImageType)
	assert.Len(t, got.Anchors, 2)
	assert.Len(t, got.Bones, 1)

	assert.Equal(t, "test-model", inf.last.Model)
	assert.Equal(t, "image/png", inf.last.Image.MIME)
	assert.NotEmpty(t, inf.last.Image.Data)
	assert.Contains(t, inf.last.Prompt, "Analyze this 2D image for skeletal animation")
}

func TestAnalyzeImageNotFound(t *testing.T) {
	st := New(&fakeInferencer{}, "")
	missing := filepath.Join(t.TempDir(), "absent.png")

	_, err := st.Analyze(context.Background(), missing)
	require.Error(t, err)
	assert.Equal(t, "Image not found: "+missing, err.Error())
}

func TestAnalyzeMissingAnimations(t *testing.T) {
	inf := &fakeInferencer{reply: `{
		"anchors": [{"id": "a", "x": 0.1, "y": 0.1}],
		"bones": [{"id": "b", "from": "a", "to": "a"}]
	}`}
	st := New(inf, "")

	_, err := st.Analyze(context.Background(), testImage(t))
	require.ErrorIs(t, err, rig.ErrNoAnimations)
	assert.Equal(t, "AI did not generate any animations", rig.Fail(err).Message)
}

func TestRefine(t *testing.T) {
	inf := &fakeInferencer{reply: `{"anchors": [{"id": "head", "x": 0.52, "y": 0.2, "corrected": false}]}`}
	st := New(inf, "")

	anchors := []rig.Anchor{
		{ID: "head", Label: "Head", X: 0.5, Y: 0.2, Type: rig.Root},
		{ID: "tail", X: 0.5, Y: 0.9},
	}
	got, err := st.Refine(context.Background(), testImage(t), anchors)
	require.NoError(t, err)

	require.Len(t, got.Anchors, 2, "merge is total over the input")
	assert.Equal(t, "head", got.Anchors[0].ID)
	assert.True(t, got.Anchors[0].Corrected, "0.02 displacement trips the safety net")
	assert.False(t, got.Anchors[1].Corrected)
	assert.Equal(t, 1, got.CorrectedCount)
	assert.InDelta(t, 0.02, got.TotalMovement, 1e-9)

	assert.Contains(t, inf.last.Prompt, `"Head" (id=head)`)
	assert.Equal(t, "image/png", inf.last.Image.MIME, "annotated copy is uploaded as png")
}

func TestRefineRequiresAnchors(t *testing.T) {
	st := New(&fakeInferencer{}, "")
	_, err := st.Refine(context.Background(), testImage(t), nil)
	assert.ErrorIs(t, err, ErrNoAnchors)
}

func TestRegenerate(t *testing.T) {
	inf := &fakeInferencer{reply: `{
		"animations": [{
			"name": "Sway", "description": "sways", "duration": 2.0, "loop": true,
			"keyframes": [{
				"time": 0.0,
				"anchors": {
					"head": {"rotation": 2, "translateX": 0.01, "translateY": 0.0, "scale": 1.0},
					"ghost": {"rotation": 2, "translateX": 0.01, "translateY": 0.0, "scale": 1.0}
				}
			}]
		}]
	}`}
	st := New(inf, "")

	anchors := []rig.Anchor{{ID: "head", X: 0.5, Y: 0.2, Type: rig.Root}}
	bones := []rig.Bone{{ID: "spine", From: "head", To: "head"}}

	got, err := st.Regenerate(context.Background(), testImage(t), anchors, bones)
	require.NoError(t, err)
	require.Len(t, got.Animations, 1)

	kf := got.Animations[0].Keyframes[0]
	assert.Contains(t, kf.Anchors, "head")
	assert.NotContains(t, kf.Anchors, "ghost", "dangling references are pruned")

	assert.Contains(t, inf.last.Prompt, "Bone connections:")
	assert.Contains(t, inf.last.Prompt, `"spine": from=head to=head`)
}

func TestRegenerateParseError(t *testing.T) {
	inf := &fakeInferencer{reply: "not json at all"}
	st := New(inf, "")

	_, err := st.Regenerate(context.Background(), testImage(t), []rig.Anchor{{ID: "a"}}, nil)
	var pe *rig.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "Failed to parse AI response as JSON:")
}

func TestOverlayDump(t *testing.T) {
	inf := &fakeInferencer{reply: `{"anchors": [{"id": "a", "x": 0.5, "y": 0.5, "corrected": false}]}`}
	st := New(inf, "")
	st.OverlayDump = filepath.Join(t.TempDir(), "overlay.webp")

	_, err := st.Refine(context.Background(), testImage(t), []rig.Anchor{{ID: "a", X: 0.5, Y: 0.5}})
	require.NoError(t, err)
	_, statErr := os.Stat(st.OverlayDump)
	assert.NoError(t, statErr, "annotated image dumped for debugging")
}

func TestListingDiff(t *testing.T) {
	before := []rig.Anchor{{ID: "a", X: 0.1, Y: 0.1}, {ID: "b", X: 0.2, Y: 0.2}}
	after := []rig.CorrectedAnchor{{ID: "a", X: 0.15, Y: 0.1, Corrected: true}, {ID: "b", X: 0.2, Y: 0.2}}

	lines := listingDiff(before, after)
	assert.Contains(t, lines, "- a x=0.1000 y=0.1000")
	assert.Contains(t, lines, "+ a x=0.1500 y=0.1000")
	assert.NotContains(t, lines, "- b x=0.2000 y=0.2000")
}
