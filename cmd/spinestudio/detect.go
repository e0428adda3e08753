package main

import (
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect anchors, bones and animations in an image",
	Run: func(cmd *cobra.Command, args []string) {
		st, err := newStudio()
		if err != nil {
			fail(err)
		}

		analysis, err := st.Analyze(cmd.Context(), imagePath)
		if err != nil {
			fail(err)
		}
		emit(analysis)
	},
}

func init() {
	detectCmd.Flags().StringVar(&imagePath, "image", "", "path to the image to analyze")
	detectCmd.MarkFlagRequired("image")
}
