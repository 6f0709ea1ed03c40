// Package exceptions defines the closed set of error kinds the SCR core can
// surface. Every failure in the translation or submission path is mapped to
// one of these kinds or propagated as-is; nothing is swallowed.
package exceptions

import (
	"errors"
	"fmt"
	"net/http"
)

// MappingError is a fatal translation failure caused by the client's input:
// an unsupported status code, coding value or malformed structure.
type MappingError struct {
	Msg string
}

func (e MappingError) Error() string { return "mapping error: " + e.Msg }

func NewMappingError(format string, args ...any) MappingError {
	return MappingError{Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedDateError reports a timestamp that is neither the 8-digit date
// form nor the 14-digit date-time form.
type UnsupportedDateError struct {
	Value string
}

func (e UnsupportedDateError) Error() string {
	return "unsupported date format: " + e.Value
}

// MissingEntityError reports a resource graph with zero instances of a
// required entity type.
type MissingEntityError struct {
	ResourceType string
}

func (e MissingEntityError) Error() string {
	return e.ResourceType + " missing from payload"
}

// DuplicateEntityError reports a resource graph with more than one instance
// of a required entity type.
type DuplicateEntityError struct {
	ResourceType string
}

func (e DuplicateEntityError) Error() string {
	return "there is more than 1 resource of type " + e.ResourceType
}

// PathNotFoundError reports a location expression that resolved to nothing
// although the caller required a value.
type PathNotFoundError struct {
	Path string
}

func (e PathNotFoundError) Error() string {
	return "unable to extract value using path: " + e.Path
}

// TemplateRenderError is a server-side defect: an outbound message template
// failed to render.
type TemplateRenderError struct {
	Template string
	Err      error
}

func (e TemplateRenderError) Error() string {
	return fmt.Sprintf("rendering template %s: %v", e.Template, e.Err)
}

func (e TemplateRenderError) Unwrap() error { return e.Err }

// SubmissionError means Spine declined the submission outright: anything
// other than an accepted response with well-formed polling headers.
type SubmissionError struct {
	StatusCode int
	Reason     string
}

func (e SubmissionError) Error() string {
	return fmt.Sprintf("spine rejected submission (status %d): %s", e.StatusCode, e.Reason)
}

// PollingFailedError means Spine reported a terminal processing failure.
// Reasons are surfaced verbatim from the response's detected issues.
type PollingFailedError struct {
	Reasons []string
}

func (e PollingFailedError) Error() string {
	return fmt.Sprintf("spine processing failed: %v", e.Reasons)
}

// ErrTimeout is returned when no terminal processing state was reached within
// the configured deadline. Distinct from failure so callers may re-query.
var ErrTimeout = errors.New("no spine processing result received within the deadline")

// StatusCode maps an error to the HTTP-equivalent status surfaced to the
// inbound caller.
func StatusCode(err error) int {
	var (
		mapping   MappingError
		unsupDate UnsupportedDateError
		missing   MissingEntityError
		duplicate DuplicateEntityError
		pathErr   PathNotFoundError
		render    TemplateRenderError
		submit    SubmissionError
		polling   PollingFailedError
	)
	switch {
	case errors.As(err, &mapping), errors.As(err, &unsupDate),
		errors.As(err, &missing), errors.As(err, &duplicate),
		errors.As(err, &pathErr):
		return http.StatusBadRequest
	case errors.As(err, &render):
		return http.StatusInternalServerError
	case errors.As(err, &submit):
		if submit.StatusCode >= 400 && submit.StatusCode < 500 {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	case errors.As(err, &polling):
		return http.StatusBadGateway
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
