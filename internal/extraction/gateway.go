// Package extraction turns an uploaded document into a loosely-shaped CV via
// the AI document-understanding service.
package extraction

import (
	"context"
	"encoding/json"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/prompts"
	"github.com/jonathan/cv-builder/internal/schemas"
)

// Gateway is the extraction service boundary: raw document bytes in, a
// partial CV document out. Implementations must not mutate any shared state;
// on failure the caller's document state stays exactly as it was.
type Gateway interface {
	Extract(ctx context.Context, data []byte, mediaType string) (cv.Partial, error)
}

// GeminiGateway extracts CV data from uploaded documents using Gemini's
// document understanding.
type GeminiGateway struct {
	client llm.Client
}

// NewGeminiGateway creates a gateway on top of an LLM client.
func NewGeminiGateway(client llm.Client) *GeminiGateway {
	return &GeminiGateway{client: client}
}

// Extract sends the document inline with the parser prompt and decodes the
// response. The raw payload is schema-checked before it is trusted as a
// cv.Partial; the normalizer downstream takes care of missing fields.
func (g *GeminiGateway) Extract(ctx context.Context, data []byte, mediaType string) (cv.Partial, error) {
	prompt := prompts.MustGet("extraction.json", "parse-cv")

	raw, err := g.client.GenerateJSONFromFile(ctx, prompt, mediaType, data, llm.TierStandard)
	if err != nil {
		return cv.Partial{}, &ExtractionError{Message: "document parsing call failed", Cause: err}
	}

	raw = llm.CleanJSONBlock(raw)

	if err := schemas.ValidateCV([]byte(raw)); err != nil {
		return cv.Partial{}, &ExtractionError{Message: "response does not match the CV shape", Cause: err}
	}

	var partial cv.Partial
	if err := json.Unmarshal([]byte(raw), &partial); err != nil {
		return cv.Partial{}, &ExtractionError{Message: "response is not valid JSON", Cause: err}
	}

	return partial, nil
}
