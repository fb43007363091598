// Package translation implements section-by-section CV translation: the
// Gemini-backed section translator and the orchestrator that drives a full
// document through it.
package translation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/prompts"
)

// SectionTranslator is the translation service boundary: one section's
// content plus a target language code in, translated content of the same
// shape out. The returned raw JSON has already been through shape recovery
// but is still validated again by the caller before it is trusted.
type SectionTranslator interface {
	TranslateSection(ctx context.Context, key cv.SectionKey, content any, targetLang string) (json.RawMessage, error)
}

// languageNames maps the closed set of recognized language codes to the full
// names used in prompts. Unrecognized codes are passed through verbatim.
var languageNames = map[string]string{
	"en": "English",
	"vi": "Vietnamese",
	"ja": "Japanese",
}

// LanguageName returns the prompt-facing name for a language code.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}

// GeminiTranslator translates CV sections with Gemini.
type GeminiTranslator struct {
	client llm.Client
}

// NewGeminiTranslator creates a translator on top of an LLM client.
func NewGeminiTranslator(client llm.Client) *GeminiTranslator {
	return &GeminiTranslator{client: client}
}

// TranslateSection sends one section's content as JSON under a translation
// system instruction and recovers a JSON value of the same shape from the
// response. Plain-string sections additionally get the scalar-in-object
// unwrap, since the model sometimes wraps a string in an object.
func (t *GeminiTranslator) TranslateSection(ctx context.Context, key cv.SectionKey, content any, targetLang string) (json.RawMessage, error) {
	payload, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding section %s: %w", key, err)
	}

	system := prompts.Format(prompts.MustGet("translation.json", "translate-section"), map[string]string{
		"Section":  string(key),
		"Language": LanguageName(targetLang),
	})

	raw, err := t.client.GenerateJSONWithSystem(ctx, system, string(payload), llm.TierStandard)
	if err != nil {
		return nil, err
	}

	recovered, err := RecoverJSON(raw)
	if err != nil {
		return nil, err
	}

	if key.Kind() == cv.KindText {
		recovered = UnwrapScalar(recovered, key)
	}

	return recovered, nil
}
