package userboard

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// sourceConfig holds mutable state during HTTPSource construction.
type sourceConfig struct {
	headers     map[string]string
	timeout     time.Duration
	method      string
	recordsPath []string
}

// SourceOption configures an [HTTPSource] during construction.
//
// Built-in options: [WithHeaders], [WithTimeout], [WithMethod],
// [WithRecordsPath].
type SourceOption func(*sourceConfig) error

// WithHeaders adds custom HTTP headers to every request.
//
// Accepts variadic key-value pairs. Returns an error if an odd number of
// arguments is provided.
//
// Example:
//
//	src, err := userboard.NewHTTPSource(url,
//	    userboard.WithHeaders("Authorization", "Bearer token123"),
//	)
func WithHeaders(keyValues ...string) SourceOption {
	return func(cfg *sourceConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithHeaders requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithTimeout sets the per-request timeout. Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) SourceOption {
	return func(cfg *sourceConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithMethod sets the HTTP method. Only GET (the default) and POST are
// accepted; a HEAD response carries no body to decode.
func WithMethod(method string) SourceOption {
	return func(cfg *sourceConfig) error {
		switch method {
		case http.MethodGet, http.MethodPost:
			cfg.method = method
			return nil
		default:
			return errors.New("method must be GET or POST")
		}
	}
}

// WithRecordsPath sets the dot-separated path to the user array inside the
// JSON response, for APIs that wrap their results.
//
// For a response of {"data": {"users": [...]}} use "data.users". An empty
// path means the body itself is the array.
//
// Returns an error if the path has empty segments, such as "data..users".
func WithRecordsPath(path string) SourceOption {
	return func(cfg *sourceConfig) error {
		if path == "" {
			cfg.recordsPath = nil
			return nil
		}
		parts := strings.Split(path, ".")
		for _, p := range parts {
			if p == "" {
				return errors.New("records path must not contain empty segments")
			}
		}
		cfg.recordsPath = parts
		return nil
	}
}
