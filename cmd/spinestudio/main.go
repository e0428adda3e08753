// Spine Studio drives a vision model to build and maintain 2D skeletal rigs
// from single images. Every command prints exactly one JSON document on
// stdout; anything human-readable goes to stderr.
package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"spinestudio/pkg/inference"
	"spinestudio/pkg/rig"
	"spinestudio/pkg/studio"
	"spinestudio/pkg/utils"
	"spinestudio/pkg/vault"
)

var (
	verbose     bool
	modelFlag   string
	imagePath   string
	anchorsJSON string
	bonesJSON   string
	overlayDump string
	serveAddr   string
)

var rootCmd = &cobra.Command{
	Use:           "spinestudio",
	Short:         "AI-assisted 2D skeletal rigging from images",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stderr)
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "model identifier (default "+inference.DefaultGeminiModel+")")
	rootCmd.AddCommand(detectCmd, refineCmd, regenerateCmd, serveCmd)
}

// newStudio wires the first gateway with a resolvable credential: Gemini
// from the vault or environment, then any OpenAI-compatible endpoint.
func newStudio() (*studio.Studio, error) {
	if key, err := vault.GeminiKey(); err == nil {
		inf, err := inference.NewGeminiInferencer(key, modelFlag)
		if err != nil {
			return nil, err
		}
		log.Debug("using gemini gateway", "model", cmp.Or(modelFlag, inference.DefaultGeminiModel))
		return configure(studio.New(inf, modelFlag)), nil
	}

	if key, err := vault.OpenAIKey(); err == nil {
		inf := inference.NewOpenAIInferencer(key, modelFlag)
		if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
			inf.ChangeBaseURL(base)
		}
		log.Debug("using openai-compatible gateway")
		return configure(studio.New(inf, modelFlag)), nil
	}

	return nil, fmt.Errorf("No Gemini API key found")
}

func configure(st *studio.Studio) *studio.Studio {
	st.OverlayDump = overlayDump
	return st
}

// parseAnchors accepts either a JSON array or the path of a file holding one.
func parseAnchors() ([]rig.Anchor, error) {
	if utils.Exists(anchorsJSON) {
		anchors, err := utils.Load[[]rig.Anchor](anchorsJSON)
		if err != nil {
			return nil, fmt.Errorf("invalid anchors file %s: %w", anchorsJSON, err)
		}
		return anchors, nil
	}
	var anchors []rig.Anchor
	if err := json.Unmarshal([]byte(anchorsJSON), &anchors); err != nil {
		return nil, fmt.Errorf("invalid anchors JSON: %w", err)
	}
	return anchors, nil
}

func parseBones() ([]rig.Bone, error) {
	if bonesJSON == "" {
		return nil, nil
	}
	if utils.Exists(bonesJSON) {
		bones, err := utils.Load[[]rig.Bone](bonesJSON)
		if err != nil {
			return nil, fmt.Errorf("invalid bones file %s: %w", bonesJSON, err)
		}
		return bones, nil
	}
	var bones []rig.Bone
	if err := json.Unmarshal([]byte(bonesJSON), &bones); err != nil {
		return nil, fmt.Errorf("invalid bones JSON: %w", err)
	}
	return bones, nil
}

// emit writes the single JSON result document to stdout.
func emit(v any) {
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		log.Fatal("failed to encode result", "error", err)
	}
}

// fail emits an error payload and exits non-zero. This is the only path that
// produces a non-zero exit code from a completed command.
func fail(err error) {
	emit(rig.Fail(err))
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Usage errors (unknown flag, missing --image) never reach the
		// operation pipeline, so they stay off stdout.
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
