package apperror

import (
	"errors"
	"net/http"
)

// Status discriminators written in every response envelope.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// AppError carries everything the responder needs to render a failure.
type AppError struct {
	Code       int
	StatusText string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func New(code int, statusText, message string) *AppError {
	return &AppError{Code: code, StatusText: statusText, Message: message}
}

// Wrap attaches the underlying cause. The cause is logged, never rendered.
func (e *AppError) Wrap(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

func Validation(message string) *AppError {
	return New(http.StatusBadRequest, StatusFail, message)
}

// Conflict reports a duplicate resource. Clients expect 400, not 409.
func Conflict(message string) *AppError {
	return New(http.StatusBadRequest, StatusFail, message)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, StatusFail, message)
}

func Unauthenticated(message string) *AppError {
	return New(http.StatusUnauthorized, StatusFail, message)
}

// InvalidToken is the bearer-token failure. It reports status "error".
func InvalidToken(message string) *AppError {
	return New(http.StatusUnauthorized, StatusError, message)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, StatusFail, message)
}

func Internal(message string, err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, StatusText: StatusError, Message: message, Err: err}
}

// From converts any error into an AppError; unknown errors become a generic 500.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}
