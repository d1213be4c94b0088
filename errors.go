package gcpro

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMisconfiguredRequest is returned before any network I/O when a
	// required identity or filter parameter is missing.
	ErrMisconfiguredRequest = errors.New("misconfigured request")
	// ErrCursorNotAdvancing is returned when the server answers a page
	// request with the very cursor it was asked for.
	ErrCursorNotAdvancing = errors.New("pagination cursor did not advance")
	// ErrIdempotentCreationConflict matches an APIError reporting that a
	// resource was already created with the same idempotency key.
	ErrIdempotentCreationConflict = errors.New("idempotent creation conflict")
)

func missingParam(name string) error {
	return fmt.Errorf("%w: %s is required", ErrMisconfiguredRequest, name)
}

// ErrorType classifies API errors.
type ErrorType string

const (
	ErrorTypeInvalidAPIUsage  ErrorType = "invalid_api_usage"
	ErrorTypeInvalidState     ErrorType = "invalid_state"
	ErrorTypeValidationFailed ErrorType = "validation_failed"
	ErrorTypeGoCardless       ErrorType = "gocardless"
)

const reasonIdempotentCreationConflict = "idempotent_creation_conflict"

// FieldError is one entry of APIError.Errors.
type FieldError struct {
	Field          string            `json:"field,omitempty"`
	Message        string            `json:"message"`
	Reason         string            `json:"reason,omitempty"`
	RequestPointer string            `json:"request_pointer,omitempty"`
	Links          map[string]string `json:"links,omitempty"`
}

// APIError is a non-2xx response of the API.
type APIError struct {
	StatusCode       int          `json:"-"`
	Message          string       `json:"message"`
	Type             ErrorType    `json:"type"`
	Code             int          `json:"code"`
	RequestID        string       `json:"request_id"`
	DocumentationURL string       `json:"documentation_url"`
	Errors           []FieldError `json:"errors"`
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "gcpro: %d %s", e.StatusCode, e.Type)
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	for _, fe := range e.Errors {
		if fe.Field != "" {
			fmt.Fprintf(&b, "; %s %s", fe.Field, fe.Message)
		} else if fe.Reason != "" {
			fmt.Fprintf(&b, "; %s", fe.Reason)
		}
	}
	if e.RequestID != "" {
		fmt.Fprintf(&b, " (request %s)", e.RequestID)
	}

	return b.String()
}

// Is makes errors.Is(err, ErrIdempotentCreationConflict) work on API errors.
func (e *APIError) Is(target error) bool {
	return target == ErrIdempotentCreationConflict && e.ConflictingResourceID() != ""
}

// ConflictingResourceID returns the ID of the resource that was created
// earlier with the same idempotency key, if the error reports such conflict.
func (e *APIError) ConflictingResourceID() string {
	for _, fe := range e.Errors {
		if fe.Reason == reasonIdempotentCreationConflict {
			return fe.Links["conflicting_resource_id"]
		}
	}

	return ""
}

// Retryable reports whether repeating the same request may succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

func conflictingResourceID(err error) (string, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "", false
	}

	id := apiErr.ConflictingResourceID()

	return id, id != ""
}
