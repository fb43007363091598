package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/cv-builder/internal/extraction"
	"github.com/jonathan/cv-builder/internal/translation"
)

// ErrSessionNotFound indicates the session was not found
type ErrSessionNotFound struct {
	SessionID uuid.UUID
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	if errors.Is(err, translation.ErrBusy) {
		return http.StatusConflict
	}

	var extractionErr *extraction.ExtractionError
	if errors.As(err, &extractionErr) {
		return http.StatusBadGateway
	}
	var sectionErr *translation.SectionError
	if errors.As(err, &sectionErr) {
		return http.StatusBadGateway
	}

	switch err.(type) {
	case *ErrSessionNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
