package translation

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/llm"
)

// RecoverJSON extracts a JSON value from a raw translator response that may
// contain surrounding prose or markdown. It finds the first opening bracket
// or brace and the last closing one, slices between them, and verifies the
// result parses. Responses that are a bare JSON scalar (no brackets at all)
// pass through unchanged.
func RecoverJSON(text string) (json.RawMessage, error) {
	text = llm.CleanJSONBlock(text)

	firstBracket := strings.Index(text, "[")
	firstBrace := strings.Index(text, "{")

	start := -1
	switch {
	case firstBracket != -1 && firstBrace != -1:
		start = firstBracket
		if firstBrace < firstBracket {
			start = firstBrace
		}
	case firstBracket != -1:
		start = firstBracket
	default:
		start = firstBrace
	}

	if start != -1 {
		lastBracket := strings.LastIndex(text, "]")
		lastBrace := strings.LastIndex(text, "}")
		end := lastBracket
		if lastBrace > end {
			end = lastBrace
		}
		if end > start {
			text = text[start : end+1]
		}
	}

	if !json.Valid([]byte(text)) {
		return nil, &ShapeRecoveryError{Content: text}
	}
	return json.RawMessage(text), nil
}

// UnwrapScalar repairs the case where a plain-string section comes back
// wrapped in an object (e.g. {"name": "translated"}). It prefers a
// same-named key, then the first string value in key order. Non-object input
// is returned unchanged.
func UnwrapScalar(raw json.RawMessage, key cv.SectionKey) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw
	}

	if v, ok := obj[string(key)]; ok && isJSONString(v) {
		return v
	}

	// Key order is sorted for determinism; Go maps have no insertion order.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if isJSONString(obj[k]) {
			return obj[k]
		}
	}

	return raw
}

func isJSONString(raw json.RawMessage) bool {
	var s string
	return json.Unmarshal(raw, &s) == nil
}
