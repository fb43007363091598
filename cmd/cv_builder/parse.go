package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/extraction"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/observability"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a CV document file into normalized CV JSON",
	Long:  "Parse a CV file (PDF, image or plain text) into the normalized CV JSON document used by the rest of the toolchain.",
	RunE:  runParse,
}

var (
	parseInputFile  string
	parseOutputFile string
	parseAPIKey     string
	parseSummary    bool
)

func init() {
	parseCmd.Flags().StringVarP(&parseInputFile, "in", "i", "", "Path to the CV file (required)")
	parseCmd.Flags().StringVarP(&parseOutputFile, "out", "o", "", "Path to output JSON file (default: stdout)")
	parseCmd.Flags().StringVar(&parseAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	parseCmd.Flags().BoolVar(&parseSummary, "summary", false, "Print a document summary to stderr")
	parseCmd.MarkFlagRequired("in") //nolint:errcheck

	rootCmd.AddCommand(parseCmd)
}

func runParse(_ *cobra.Command, _ []string) error {
	apiKey := parseAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	data, err := os.ReadFile(parseInputFile)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	ctx := context.Background()
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer client.Close() //nolint:errcheck

	gateway := extraction.NewGeminiGateway(client)
	partial, err := gateway.Extract(ctx, data, detectMediaType(parseInputFile, data))
	if err != nil {
		return fmt.Errorf("failed to parse CV: %w", err)
	}

	doc := cv.Normalize(partial)

	jsonBytes, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if parseSummary {
		observability.NewPrinter(os.Stderr).PrintCV(doc)
	}

	if parseOutputFile == "" {
		fmt.Println(string(jsonBytes))
		return nil
	}
	if err := os.WriteFile(parseOutputFile, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", parseOutputFile)
	return nil
}

// detectMediaType resolves the MIME type from the file extension, falling
// back to content sniffing for unknown extensions.
func detectMediaType(path string, data []byte) string {
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		return mt
	}
	return http.DetectContentType(data)
}
