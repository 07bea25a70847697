package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidRequest     = "invalid_request"
	CodeUnauthorized       = "unauthorized"
	CodeNotFound           = "not_found"
	CodeDuplicateUpload    = "duplicate_upload"
	CodeServiceUnavailable = "service_unavailable"
	CodeInternal           = "internal"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(err error) *Error { return New(http.StatusBadRequest, CodeInvalidRequest, err) }

func NotFound(what string) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s not found", what))
}

func Conflict(err error) *Error { return New(http.StatusConflict, CodeDuplicateUpload, err) }

func Unavailable(err error) *Error {
	return New(http.StatusServiceUnavailable, CodeServiceUnavailable, err)
}

// Internal hides the cause from callers; the cause stays reachable through Unwrap for logging.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Err: &hidden{cause: err}}
}

type hidden struct{ cause error }

func (h *hidden) Error() string { return "internal error" }
func (h *hidden) Unwrap() error { return h.cause }

// From returns the *Error carried by err, or an Internal error wrapping it.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
