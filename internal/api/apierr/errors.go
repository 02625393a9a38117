package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/duelhub/duelhub/internal/model"
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
	CodeAlreadyInLobby      = "ALREADY_IN_LOBBY"
	CodeNotInLobby          = "NOT_IN_LOBBY"
	CodeMatchNotFound       = "MATCH_NOT_FOUND"
	CodeMatchEnded          = "MATCH_ENDED"
	CodeNotInvited          = "NOT_INVITED"
	CodeNotInMatch          = "NOT_IN_MATCH"
	CodeAlreadyInMatch      = "ALREADY_IN_MATCH"
	CodeSelfInvite          = "SELF_INVITE"
	CodeNoInvitees          = "NO_INVITEES"
	CodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
	CodeAccountNotBusy      = "ACCOUNT_NOT_BUSY"
	CodeNoAccountsAvailable = "NO_ACCOUNTS_AVAILABLE"
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
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrAlreadyInLobby):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInLobby, "Already in the lobby"}}
	case errors.Is(err, model.ErrNotInLobby):
		return &httpError{http.StatusNotFound, APIError{CodeNotInLobby, "Not in the lobby"}}
	case errors.Is(err, model.ErrMatchNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeMatchNotFound, "Match not found"}}
	case errors.Is(err, model.ErrMatchEnded):
		return &httpError{http.StatusConflict, APIError{CodeMatchEnded, "Match has ended"}}
	case errors.Is(err, model.ErrNotInvited):
		return &httpError{http.StatusForbidden, APIError{CodeNotInvited, "No pending invite for this match"}}
	case errors.Is(err, model.ErrNotInMatch):
		return &httpError{http.StatusNotFound, APIError{CodeNotInMatch, "Not an active participant in this match"}}
	case errors.Is(err, model.ErrAlreadyInMatch):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyInMatch, "Already in a match"}}
	case errors.Is(err, model.ErrSelfInvite):
		return &httpError{http.StatusBadRequest, APIError{CodeSelfInvite, "Cannot invite yourself"}}
	case errors.Is(err, model.ErrNoInvitees):
		return &httpError{http.StatusBadRequest, APIError{CodeNoInvitees, "At least one invitee is required"}}
	case errors.Is(err, model.ErrAccountNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeAccountNotFound, "Account not found"}}
	case errors.Is(err, model.ErrAccountNotBusy):
		return &httpError{http.StatusConflict, APIError{CodeAccountNotBusy, "Account is not checked out"}}
	case errors.Is(err, model.ErrNoAccountsAvailable):
		return &httpError{http.StatusConflict, APIError{CodeNoAccountsAvailable, "No accounts available"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
