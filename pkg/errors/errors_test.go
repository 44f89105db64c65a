package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{New(ErrCodeInvalidJSON, "unexpected token at offset %d", 4), "INVALID_JSON: unexpected token at offset 4"},
		{Wrap(ErrCodeStorage, errors.New("disk full"), "save tabs"), "STORAGE_ERROR: save tabs: disk full"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := context.DeadlineExceeded
	err := Wrap(ErrCodeLayoutFailed, cause, "dagre layout")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should see the cause")
	}
	if got := GetCode(err); got != ErrCodeLayoutFailed {
		t.Errorf("GetCode = %s, the outer code should win over the cause", got)
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeTabNotFound, "tab %q", "x"), ErrCodeTabNotFound},
		{"fmt wrapped", fmt.Errorf("load: %w", New(ErrCodeInvalidJSON, "bad")), ErrCodeInvalidJSON},
		{"outermost wins", Wrap(ErrCodeStorage, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeStorage},
		{"cancelled", fmt.Errorf("layout: %w", context.Canceled), ErrCodeCancelled},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode = %q, want %q", got, tt.want)
			}
			if tt.want != "" && !Is(tt.err, tt.want) {
				t.Errorf("Is(err, %s) = false", tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Wrap(ErrCodeLayoutFailed, errors.New("cycle"), "rank nodes")); got != "rank nodes" {
		t.Errorf("UserMessage = %q, want the message without code or cause", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage = %q, want plain", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidInput, ""), http.StatusBadRequest},
		{New(ErrCodeInvalidJSON, ""), http.StatusBadRequest},
		{New(ErrCodeInvalidConfig, ""), http.StatusBadRequest},
		{New(ErrCodeInvalidURL, ""), http.StatusBadRequest},
		{New(ErrCodeInvalidTabName, ""), http.StatusBadRequest},
		{New(ErrCodeTabNotFound, ""), http.StatusNotFound},
		{New(ErrCodeLayoutFailed, ""), http.StatusUnprocessableEntity},
		{New(ErrCodeStorage, ""), http.StatusInternalServerError},
		{New(ErrCodeInternal, ""), http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{context.Canceled, 499},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
