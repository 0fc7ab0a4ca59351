package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
	// ErrEmptyExtraction is returned when a document yields no text.
	ErrEmptyExtraction = errors.New("document yielded no text")
	// ErrUpsertNotCompleted is returned when the vector store acknowledged an
	// upsert without reporting completion.
	ErrUpsertNotCompleted = errors.New("upsert not completed")
	// ErrSchemaViolation is returned when a structured model call omits a
	// required field. Fatal for the query; callers must not fall back silently.
	ErrSchemaViolation = errors.New("structured output schema violation")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError attaches a cause to a sentinel error. The result still matches
// the sentinel with errors.Is, so handlers can map it to a status code while
// logs keep the underlying cause.
func WrapError(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %v", sentinel, cause)
}
