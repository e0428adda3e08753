package main

import (
	"github.com/spf13/cobra"
)

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Ask the model to correct existing anchor positions",
	Run: func(cmd *cobra.Command, args []string) {
		anchors, err := parseAnchors()
		if err != nil {
			fail(err)
		}

		st, err := newStudio()
		if err != nil {
			fail(err)
		}

		refinement, err := st.Refine(cmd.Context(), imagePath, anchors)
		if err != nil {
			fail(err)
		}
		emit(refinement)
	},
}

func init() {
	refineCmd.Flags().StringVar(&imagePath, "image", "", "path to the image the anchors belong to")
	refineCmd.Flags().StringVar(&anchorsJSON, "anchors", "", "current anchors as a JSON array or a path to a JSON file")
	refineCmd.Flags().StringVar(&overlayDump, "save-overlay", "", "also write the annotated image to this path (webp)")
	refineCmd.MarkFlagRequired("image")
	refineCmd.MarkFlagRequired("anchors")
}
