// Package overlay draws anchor markers and bone lines onto a copy of the
// source image. The annotated copy is sent back to the vision model so it has
// spatial grounding for correction and animation passes.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"

	"github.com/fogleman/gg"
	"github.com/gen2brain/webp"

	"spinestudio/pkg/rig"
)

// Marker colors by anchor role, plus the bone line color.
var (
	rootColor  = color.RGBA{R: 34, G: 197, B: 94, A: 255}
	jointColor = color.RGBA{R: 99, G: 102, B: 241, A: 255}
	tipColor   = color.RGBA{R: 251, G: 146, B: 60, A: 255}
	boneColor  = color.RGBA{R: 251, G: 191, B: 36, A: 255}
)

// fontCandidates are tried in order for marker labels; the renderer falls
// back to gg's built-in face when none loads.
var fontCandidates = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
}

// Load opens and decodes an image. PNG and JPEG come from the standard
// decoders; importing the webp encoder registers its decoder as well.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

func markerColor(t rig.AnchorType) color.RGBA {
	switch t {
	case rig.Root:
		return rootColor
	case rig.Tip:
		return tipColor
	default:
		return jointColor
	}
}

// Render returns a new image with a filled circle and label per anchor and a
// line segment per resolvable bone. The source image is never modified.
func Render(src image.Image, anchors []rig.Anchor, bones []rig.Bone) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	dc := gg.NewContext(w, h)
	dc.DrawImage(src, 0, 0)

	shorter := float64(min(w, h))
	radius := math.Max(6, shorter*0.015)
	fontSize := math.Max(10, shorter*0.02)

	for _, fp := range fontCandidates {
		if err := dc.LoadFontFace(fp, fontSize); err == nil {
			break
		}
	}

	positions := make(map[string][2]float64, len(anchors))
	for _, a := range anchors {
		ax := a.X * float64(w)
		ay := a.Y * float64(h)
		positions[a.ID] = [2]float64{ax, ay}

		dc.SetColor(markerColor(a.Type))
		dc.DrawCircle(ax, ay, radius)
		dc.FillPreserve()
		dc.SetRGB255(255, 255, 255)
		dc.SetLineWidth(2)
		dc.Stroke()

		label := a.Label
		if label == "" {
			label = a.ID
		}
		dc.DrawStringAnchored(label, ax, ay-radius-4, 0.5, 0)
	}

	for _, b := range bones {
		from, okFrom := positions[b.From]
		to, okTo := positions[b.To]
		if !okFrom || !okTo {
			continue
		}
		dc.SetColor(boneColor)
		dc.SetLineWidth(2)
		dc.DrawLine(from[0], from[1], to[0], to[1])
		dc.Stroke()
	}

	return dc.Image()
}

// EncodePNG serializes an image for upload to the model gateway.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveWebP writes the image to path as a high-quality WebP. Used for
// debugging what the model actually saw.
func SaveWebP(img image.Image, path string) error {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, webp.Options{Lossless: false, Quality: 100}); err != nil {
		return fmt.Errorf("failed to encode webp: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}
