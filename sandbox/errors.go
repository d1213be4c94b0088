package sandbox

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const _docsURL = "https://developer.gocardless.com/api-reference"

type fieldError struct {
	Field   string            `json:"field,omitempty"`
	Message string            `json:"message"`
	Reason  string            `json:"reason,omitempty"`
	Links   map[string]string `json:"links,omitempty"`
}

type apiError struct {
	Message          string       `json:"message"`
	Type             string       `json:"type"`
	Code             int          `json:"code"`
	RequestID        string       `json:"request_id"`
	DocumentationURL string       `json:"documentation_url"`
	Errors           []fieldError `json:"errors"`
}

func abortWith(c *gin.Context, code int, errType, message string, errs ...fieldError) {
	if errs == nil {
		errs = []fieldError{}
	}

	c.AbortWithStatusJSON(code, gin.H{"error": apiError{
		Message:          message,
		Type:             errType,
		Code:             code,
		RequestID:        c.GetString("request_id"),
		DocumentationURL: _docsURL,
		Errors:           errs,
	}})
}

func abort(c *gin.Context, code int, errType, reason, message string) {
	abortWith(c, code, errType, message, fieldError{Reason: reason, Message: message})
}

func abortField(c *gin.Context, field, message string) {
	abortWith(c, http.StatusUnprocessableEntity, "validation_failed", "Validation failed",
		fieldError{Field: field, Message: message})
}

// abortConflict reports a create request that reused an idempotency key.
func abortConflict(c *gin.Context, existingID string) {
	const message = "A resource has already been created with this idempotency key"

	abortWith(c, http.StatusConflict, "invalid_state", message, fieldError{
		Reason:  "idempotent_creation_conflict",
		Message: message,
		Links:   map[string]string{"conflicting_resource_id": existingID},
	})
}
