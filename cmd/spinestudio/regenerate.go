package main

import (
	"github.com/spf13/cobra"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Generate a fresh animation set for an existing rig",
	Run: func(cmd *cobra.Command, args []string) {
		anchors, err := parseAnchors()
		if err != nil {
			fail(err)
		}
		bones, err := parseBones()
		if err != nil {
			fail(err)
		}

		st, err := newStudio()
		if err != nil {
			fail(err)
		}

		set, err := st.Regenerate(cmd.Context(), imagePath, anchors, bones)
		if err != nil {
			fail(err)
		}
		emit(set)
	},
}

func init() {
	regenerateCmd.Flags().StringVar(&imagePath, "image", "", "path to the image the rig belongs to")
	regenerateCmd.Flags().StringVar(&anchorsJSON, "anchors", "", "rig anchors as a JSON array or a path to a JSON file")
	regenerateCmd.Flags().StringVar(&bonesJSON, "bones", "", "rig bones as a JSON array or a path to a JSON file")
	regenerateCmd.Flags().StringVar(&overlayDump, "save-overlay", "", "also write the annotated image to this path (webp)")
	regenerateCmd.MarkFlagRequired("image")
	regenerateCmd.MarkFlagRequired("anchors")
	regenerateCmd.MarkFlagRequired("bones")
}
