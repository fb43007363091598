package extraction

import "fmt"

// ExtractionError wraps any failure of the extraction service or of decoding
// its output. Callers treat it as opaque: the document state is untouched and
// the user sees a generic extraction-failed notice.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
