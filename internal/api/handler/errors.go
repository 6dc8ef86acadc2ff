package handler

import (
	"net/http"

	"github.com/mcoot/tabletag-go/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest      = apierr.CodeInvalidRequest
	CodeForbidden           = apierr.CodeForbidden
	CodeClientNotFound      = apierr.CodeClientNotFound
	CodePlayerNotFound      = apierr.CodePlayerNotFound
	CodeAllocationExhausted = apierr.CodeAllocationExhausted
	CodeInternalError       = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError() error {
	return apierr.NewForbiddenError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
