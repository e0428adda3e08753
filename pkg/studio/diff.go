package studio

import (
	"fmt"

	"github.com/aryann/difflib"

	"spinestudio/pkg/rig"
)

// listingDiff renders the before/after anchor positions as a line diff,
// keeping only the changed lines. Debug output for the refinement pass.
func listingDiff(before []rig.Anchor, after []rig.CorrectedAnchor) []string {
	at := make([]string, 0, len(before))
	for _, a := range before {
		at = append(at, fmt.Sprintf("%s x=%.4f y=%.4f", a.ID, a.X, a.Y))
	}
	bt := make([]string, 0, len(after))
	for _, a := range after {
		bt = append(bt, fmt.Sprintf("%s x=%.4f y=%.4f", a.ID, a.X, a.Y))
	}

	var out []string
	for _, rec := range difflib.Diff(at, bt) {
		switch rec.Delta {
		case difflib.LeftOnly:
			out = append(out, "- "+rec.Payload)
		case difflib.RightOnly:
			out = append(out, "+ "+rec.Payload)
		}
	}
	return out
}
