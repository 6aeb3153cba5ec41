package apierrors

import "net/http"

// Error is the single wire shape every handler failure is normalized to.
// Status is "fail" for client errors and "error" for server errors, matching
// the transport-independent code the frontend switches on.
type Error struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func New(statusCode int, message string) *Error {
	status := "fail"
	if statusCode >= http.StatusInternalServerError {
		status = "error"
	}
	return &Error{StatusCode: statusCode, Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(http.StatusForbidden, message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Conflict reports a duplicate identity. The original API surfaces these as
// 400, not 409.
func Conflict(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Internal hides the underlying cause from the caller; the handler chain logs
// the wrapped error server-side.
func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}
