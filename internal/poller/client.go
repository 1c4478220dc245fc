package poller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// a board talks to a single upstream, so the pool is sized for one host with
// occasional overlapping refreshes
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 4
	defaultMaxConnsPerHost     = 4
	defaultIdleConnTimeout     = 60 * time.Second
)

// Request describes one call to an upstream JSON API.
type Request struct {
	// Method defaults to GET when empty.
	Method string
	URL    string
	// Headers override the default "Accept: application/json".
	Headers map[string]string
	// Timeout of zero means no limit beyond the caller's context.
	Timeout time.Duration
}

// Response holds the raw outcome of a [Request].
type Response struct {
	// Body is capped at 1MB.
	Body []byte

	// StatusCode is zero if the request failed before a response arrived.
	StatusCode int

	Latency time.Duration

	// Error is a transport or read failure. A non-2xx status is not an error
	// at this level; see [FetchJSON].
	Error error
}

// OK reports whether the request completed with a 2xx status.
func (r Response) OK() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// StatusError is returned by [FetchJSON] for responses outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Client fetches JSON documents over a pooled HTTP transport.
//
// Timeouts are applied per request through the context, so each source keeps
// its own limit on a shared client.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a [Client] with connection pooling enabled.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// Do performs req and returns its [Response]. Failures are reported in
// Response.Error rather than as a second return value.
func (c *Client) Do(ctx context.Context, req Request) Response {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	start := time.Now()
	fail := func(status int, err error) Response {
		return Response{StatusCode: status, Latency: time.Since(start), Error: err}
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return fail(0, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fail(0, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// FetchJSON performs req and hands a 2xx body to decode.
//
// Transport failures are returned as is, other statuses as a [*StatusError],
// and decode failures wrapped with the request URL.
func FetchJSON[T any](ctx context.Context, c *Client, req Request, decode func(body []byte) (T, error)) (T, error) {
	var zero T

	resp := c.Do(ctx, req)
	if resp.Error != nil {
		return zero, resp.Error
	}
	if !resp.OK() {
		return zero, &StatusError{URL: req.URL, StatusCode: resp.StatusCode}
	}

	v, err := decode(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("decode response from %s: %w", req.URL, err)
	}
	return v, nil
}

// Close closes idle pooled connections. The client stays usable and is safe
// to close more than once, or when nil.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
