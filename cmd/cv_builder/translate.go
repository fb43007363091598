package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/translation"
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate a CV JSON document into another language",
	Long:  "Translate a normalized CV JSON document section by section into the target language, printing progress to stderr and the translated document to stdout.",
	RunE:  runTranslate,
}

var (
	translateInputFile  string
	translateOutputFile string
	translateLang       string
	translateSourceLang string
	translateAPIKey     string
)

func init() {
	translateCmd.Flags().StringVarP(&translateInputFile, "in", "i", "", "Path to the CV JSON file (required)")
	translateCmd.Flags().StringVarP(&translateOutputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	translateCmd.Flags().StringVar(&translateLang, "lang", "", "Target language code, e.g. vi or ja (required)")
	translateCmd.Flags().StringVar(&translateSourceLang, "source-lang", "en", "Language the input document is written in")
	translateCmd.Flags().StringVar(&translateAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	translateCmd.MarkFlagRequired("in")   //nolint:errcheck
	translateCmd.MarkFlagRequired("lang") //nolint:errcheck

	rootCmd.AddCommand(translateCmd)
}

func runTranslate(_ *cobra.Command, _ []string) error {
	apiKey := translateAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	inputBytes, err := os.ReadFile(translateInputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	// Accept loosely shaped documents; normalization repairs missing fields.
	var partial cv.Partial
	if err := json.Unmarshal(inputBytes, &partial); err != nil {
		return fmt.Errorf("input is not valid CV JSON: %w", err)
	}
	doc := cv.Normalize(partial)

	ctx := context.Background()
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	st := store.New(translateSourceLang)
	st.ReplaceBoth(doc, translateSourceLang)

	// The CLI exits right after the run, so the UI cooldown is pointless.
	orch := translation.NewOrchestrator(st, translation.NewGeminiTranslator(client),
		translation.WithCooldown(time.Millisecond))

	printer := observability.NewPrinter(os.Stderr)
	err = orch.Run(ctx, translateLang, printer.PrintProgress)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(st.Display(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if translateOutputFile == "" {
		fmt.Println(string(jsonBytes))
		return nil
	}
	if err := os.WriteFile(translateOutputFile, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", translateOutputFile)
	return nil
}
