package apperrors

import (
	"encoding/json"
	"net/http"
)

// Error is an operational error that carries the HTTP status it should be
// rendered with. Anything that is not an *Error is treated as unexpected
// and rendered as a generic 500 with no internal detail.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string { return e.Message }

// Status classifies the error for the response envelope: "fail" for client
// errors, "error" for server errors.
func (e *Error) Status() string {
	if e.StatusCode >= 500 {
		return "error"
	}
	return "fail"
}

func New(statusCode int, message string) *Error {
	return &Error{StatusCode: statusCode, Message: message}
}

func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Internal(message string) *Error     { return New(http.StatusInternalServerError, message) }

// Write renders e as the standard JSON envelope.
func Write(w http.ResponseWriter, e *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  e.Status(),
		"message": e.Message,
	})
}
