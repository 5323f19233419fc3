package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/tcgarena/internal/model"
	"github.com/mcoot/tcgarena/internal/services/auth"
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
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeCardNotFound       = "CARD_NOT_FOUND"
	CodeDeckNotFound       = "DECK_NOT_FOUND"
	CodeDeckNotOwned       = "DECK_NOT_OWNED"
	CodeInvalidDeckSize    = "INVALID_DECK_SIZE"
	CodeInvalidCards       = "INVALID_CARDS"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeRoomNotJoinable    = "ROOM_NOT_JOINABLE"
	CodeNotRoomMember      = "NOT_ROOM_MEMBER"
	CodeInternalError      = "INTERNAL_ERROR"
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

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Accounts
	case errors.Is(err, auth.ErrMissingToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid email or password"}}
	case errors.Is(err, auth.ErrMissingFields):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Email, username and password are required"}}
	case errors.Is(err, model.ErrEmailTaken):
		return &httpError{http.StatusConflict, APIError{CodeEmailTaken, "Email already registered"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}

	// Catalog and decks
	case errors.Is(err, model.ErrCardNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeCardNotFound, "Card not found"}}
	case errors.Is(err, model.ErrDeckNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeDeckNotFound, "Deck not found"}}
	case errors.Is(err, model.ErrDeckNotOwned):
		return &httpError{http.StatusForbidden, APIError{CodeDeckNotOwned, "Deck belongs to another user"}}
	case errors.Is(err, model.ErrInvalidDeckSize):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDeckSize, "A deck must contain exactly 10 cards"}}
	case errors.Is(err, model.ErrInvalidCards):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidCards, "Deck references unknown cards"}}
	case errors.Is(err, model.ErrInvalidDeckName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Deck name is required"}}

	// Rooms
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrRoomNotJoinable):
		return &httpError{http.StatusConflict, APIError{CodeRoomNotJoinable, "Room is already full"}}
	case errors.Is(err, model.ErrNotRoomMember):
		return &httpError{http.StatusForbidden, APIError{CodeNotRoomMember, "Only room members can do this"}}
	case errors.Is(err, model.ErrInvalidPayload):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Invalid parameters"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
