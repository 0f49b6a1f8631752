package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed sync-engine error with HTTP awareness for the
// control API.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors covering the sync error taxonomy.
var (
	// ErrTransport marks a request that exhausted its retries.
	ErrTransport = New("TRANSPORT_FAILED", http.StatusBadGateway, "request failed after retries")
	// ErrSessionExpired marks a logged-out response that survived a re-login.
	ErrSessionExpired = New("SESSION_EXPIRED", http.StatusUnauthorized, "session expired and re-login failed")
	// ErrCMSRejected marks a 200 response without the success marker.
	ErrCMSRejected = New("CMS_REJECTED", http.StatusUnprocessableEntity, "form submission not accepted")
	// ErrParse marks a page missing its expected table or form.
	ErrParse = New("PARSE_FAILED", http.StatusBadGateway, "expected element not found in page")
	// ErrReference marks a failed lookup of a curriculum or sponsor reference.
	ErrReference = New("REFERENCE_UNRESOLVED", http.StatusConflict, "reference could not be resolved")
	ErrNotFound  = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict  = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrInternal  = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Is reports whether err carries the given predefined error's code.
func Is(err error, target *Error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}
