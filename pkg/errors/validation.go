package errors

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTabNameLength is the longest tab name accepted by [ValidateTabName].
const MaxTabNameLength = 128

// ValidateTabName rejects blank names, control characters and names longer
// than MaxTabNameLength runes.
func ValidateTabName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return New(ErrCodeInvalidTabName, "tab name cannot be empty")
	case utf8.RuneCountInString(name) > MaxTabNameLength:
		return New(ErrCodeInvalidTabName, "tab name too long (max %d characters)", MaxTabNameLength)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidTabName, "tab name contains control characters")
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidURL, err, "malformed URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidURL, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidURL, "URL has no host")
	}
	return nil
}

// ValidateHTTPMethod accepts the request methods a tab's request settings may
// use.
func ValidateHTTPMethod(method string) error {
	switch method {
	case "GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS":
		return nil
	}
	return New(ErrCodeInvalidInput, "unsupported HTTP method: %q", method)
}
