package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/tabletag-go/internal/model"
	"github.com/mcoot/tabletag-go/internal/services/authz"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeForbidden           = "FORBIDDEN"
	CodeClientNotFound      = "CLIENT_NOT_FOUND"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeAllocationExhausted = "ALLOCATION_EXHAUSTED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Every authorization failure is the same 403; the response never
	// distinguishes a missing session from an insufficient scope
	case errors.Is(err, authz.ErrForbidden):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Forbidden"}}

	case errors.Is(err, model.ErrClientNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeClientNotFound, "Client not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrInvalidClientID):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Client id must be 4 uppercase letters"}}
	case errors.Is(err, model.ErrInvalidPlayerID):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Player id must be 6 uppercase hex characters"}}
	case errors.Is(err, model.ErrInvalidScope):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Scope must be admin or room-<name>"}}
	case errors.Is(err, model.ErrInvalidStatePatch):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "State patch must be a JSON object"}}
	case errors.Is(err, model.ErrAllocationExhausted):
		return &httpError{http.StatusInternalServerError, APIError{CodeAllocationExhausted, "Could not allocate a client id"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Forbidden"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
