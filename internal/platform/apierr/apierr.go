package apierr

import (
	"errors"
	"fmt"
	"net/http"
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

// NotImplemented marks an error as a 501-level failure. Used for relation
// types that exist in no vocabulary, which must be distinguishable from
// plain validation errors.
func NotImplemented(err error) *Error {
	return &Error{Status: http.StatusNotImplemented, Code: "not_implemented", Err: err}
}

// StatusOf reports the HTTP status carried by err, or fallback when err
// is not an *Error.
func StatusOf(err error, fallback int) int {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}
	return fallback
}
