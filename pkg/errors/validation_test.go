package errors

import (
	"strings"
	"testing"
)

func TestValidateTabName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default", "Tab 1", false},
		{"copy suffix", "Tab 1 (copy)", false},
		{"unicode", "Données", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"newline", "foo\nbar", true},
		{"too long", strings.Repeat("x", MaxTabNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTabName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTabName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTabName) {
				t.Errorf("ValidateTabName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://jsonplaceholder.typicode.com/todos/1", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
		{"no host", "https://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHTTPMethod(t *testing.T) {
	for _, m := range []string{"GET", "POST", "DELETE"} {
		if err := ValidateHTTPMethod(m); err != nil {
			t.Errorf("ValidateHTTPMethod(%q) = %v", m, err)
		}
	}
	for _, m := range []string{"", "get", "TRACE"} {
		if err := ValidateHTTPMethod(m); err == nil {
			t.Errorf("ValidateHTTPMethod(%q) = nil, want error", m)
		}
	}
}
