package userboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jpalmerr/userboard/internal/poller"
)

const defaultSourceTimeout = 10 * time.Second

// HTTPSource fetches users from a JSON HTTP API.
//
// HTTPSource is immutable after creation via [NewHTTPSource]. The response
// body must be a JSON array of [User] objects, or an object containing one
// at the path configured with [WithRecordsPath].
type HTTPSource struct {
	url         string
	headers     map[string]string
	timeout     time.Duration
	method      string
	recordsPath []string
	client      *poller.Client
}

// URL returns the source's target URL.
func (s *HTTPSource) URL() string {
	return s.url
}

// Headers returns a copy of the custom HTTP headers sent with each request.
func (s *HTTPSource) Headers() map[string]string {
	return copyMap(s.headers)
}

// Timeout returns the per-request timeout. Defaults to 10 seconds.
func (s *HTTPSource) Timeout() time.Duration {
	return s.timeout
}

// Method returns the HTTP method, or "" for the default GET.
func (s *HTTPSource) Method() string {
	return s.method
}

// RecordsPath returns the dot-separated path to the user array, or "" when
// the body is the array itself.
func (s *HTTPSource) RecordsPath() string {
	return strings.Join(s.recordsPath, ".")
}

// NewHTTPSource creates an [HTTPSource] for rawURL.
//
// rawURL must be an absolute http:// or https:// URL. Options are applied in
// order; see [WithHeaders], [WithTimeout], [WithMethod] and [WithRecordsPath].
//
// Example:
//
//	src, err := userboard.NewHTTPSource("https://api.example.com/users",
//	    userboard.WithHeaders("Authorization", "Bearer token"),
//	    userboard.WithRecordsPath("data.users"),
//	)
func NewHTTPSource(rawURL string, opts ...SourceOption) (*HTTPSource, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.New("URL must have an http:// or https:// scheme")
	}

	cfg := &sourceConfig{
		headers: make(map[string]string),
		timeout: defaultSourceTimeout,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	return &HTTPSource{
		url:         rawURL,
		headers:     cfg.headers,
		timeout:     cfg.timeout,
		method:      cfg.method,
		recordsPath: cfg.recordsPath,
		client:      poller.NewClient(),
	}, nil
}

// FetchUsers performs one request and decodes the user list.
//
// Transport failures, non-2xx responses and undecodable bodies are all
// returned as errors.
func (s *HTTPSource) FetchUsers(ctx context.Context) ([]User, error) {
	req := poller.Request{
		Method:  s.method,
		URL:     s.url,
		Headers: s.headers,
		Timeout: s.timeout,
	}
	return poller.FetchJSON(ctx, s.client, req, func(body []byte) ([]User, error) {
		users, err := decodeUsers(body, s.recordsPath)
		if err != nil {
			return nil, fmt.Errorf("decode users: %w", err)
		}
		return users, nil
	})
}

// Close releases idle connections held by the source's HTTP client.
func (s *HTTPSource) Close() {
	s.client.Close()
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
