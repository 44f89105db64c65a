// Package errors provides the coded errors shared by the worker, the HTTP
// API and the CLI.
//
// Every failure a client can act on carries a [Code]: worker error events
// send it verbatim, the HTTP API derives its status from it with
// [HTTPStatus], and the CLI prints [UserMessage].
//
// Codes follow a naming convention:
//   - INVALID_*: the request or document was rejected
//   - *_NOT_FOUND: a referenced resource does not exist
//   - LAYOUT_FAILED, STORAGE_ERROR: a subsystem failed
//   - CANCELLED, TIMEOUT: the context ended first
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidJSON, "unexpected token at offset %d", off)
//	if errors.Is(err, errors.ErrCodeInvalidJSON) {
//	    // reject the document
//	}
//
//	err = errors.Wrap(errors.ErrCodeLayoutFailed, cause, "dagre layout")
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidJSON    Code = "INVALID_JSON"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidURL     Code = "INVALID_URL"
	ErrCodeInvalidTabName Code = "INVALID_TAB_NAME"

	ErrCodeTabNotFound Code = "TAB_NOT_FOUND"

	ErrCodeLayoutFailed Code = "LAYOUT_FAILED"
	ErrCodeStorage      Code = "STORAGE_ERROR"
	ErrCodeCancelled    Code = "CANCELLED"
	ErrCodeTimeout      Code = "TIMEOUT"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// statusClientClosed is the non-standard status for a request the client
// abandoned before the server answered.
const statusClientClosed = 499

var httpStatus = map[Code]int{
	ErrCodeInvalidInput:   http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,
	ErrCodeInvalidConfig:  http.StatusBadRequest,
	ErrCodeInvalidURL:     http.StatusBadRequest,
	ErrCodeInvalidTabName: http.StatusBadRequest,
	ErrCodeTabNotFound:    http.StatusNotFound,
	ErrCodeLayoutFailed:   http.StatusUnprocessableEntity,
	ErrCodeTimeout:        http.StatusGatewayTimeout,
	ErrCodeCancelled:      statusClientClosed,
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error carrying cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode returns the code of the outermost *Error in err's chain. Context
// cancellation and deadline errors map to CANCELLED and TIMEOUT; anything
// else yields "".
func GetCode(err error) Code {
	var e *Error
	switch {
	case errors.As(err, &e):
		return e.Code
	case errors.Is(err, context.Canceled):
		return ErrCodeCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	}
	return ""
}

// UserMessage returns the message of the outermost *Error, without its code,
// or err.Error() for other errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status the HTTP API answers with. Errors
// without a client-facing code are 500.
func HTTPStatus(err error) int {
	if status, ok := httpStatus[GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
