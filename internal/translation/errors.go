package translation

import (
	"errors"
	"fmt"

	"github.com/jonathan/cv-builder/internal/cv"
)

// ErrBusy is returned when a translation or upload is requested while another
// exclusive operation is still running or cooling down.
var ErrBusy = errors.New("another translation or upload is in progress")

// SectionError reports that one section's translation failed and aborted the
// whole run. The display document has already been reverted to the source
// snapshot when this is returned.
type SectionError struct {
	Section cv.SectionKey
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("translating section %q failed: %v", e.Section, e.Err)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}

// ShapeRecoveryError reports that the translator's raw response could not be
// recovered into valid JSON. It is treated exactly like a hard rejection.
type ShapeRecoveryError struct {
	Content string
	Cause   error
}

func (e *ShapeRecoveryError) Error() string {
	content := e.Content
	if len(content) > 200 {
		content = content[:200] + "..."
	}
	if e.Cause != nil {
		return fmt.Sprintf("could not recover JSON from translator response: %v (content: %s)", e.Cause, content)
	}
	return fmt.Sprintf("could not recover JSON from translator response (content: %s)", content)
}

func (e *ShapeRecoveryError) Unwrap() error {
	return e.Cause
}
