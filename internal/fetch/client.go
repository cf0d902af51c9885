package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxResponseBodySize = 1 << 20 // 1MB

// idle pool limits; active connections per host are not capped so the
// parallel task can have every request in flight at once
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

var (
	// ErrInvalidJSON is returned by [Response.JSON] when the body is not valid JSON.
	ErrInvalidJSON = errors.New("response body is not valid JSON")

	// ErrBodyTooLarge is set on a [Response] whose body exceeds 1MB.
	ErrBodyTooLarge = errors.New("response body exceeds 1MB")
)

// Response holds the result of a GET made by [Client].
type Response struct {
	// Body contains the HTTP response body, limited to 1MB. Larger bodies
	// are not returned; Error is [ErrBodyTooLarge] instead.
	Body []byte

	// StatusCode is the HTTP status code.
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any transport or read error.
	// nil does not imply a 2xx status; see [Response.JSON].
	Error error
}

// JSON returns the body as a validated JSON payload.
//
// It fails if the request itself failed, if the status is not 2xx, or if the
// body does not decode as JSON.
func (r Response) JSON() (json.RawMessage, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	if r.StatusCode < 200 || r.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code %d", r.StatusCode)
	}
	if !json.Valid(r.Body) {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(r.Body), nil
}

// Client is an HTTP client wrapper for the fetch tasks.
//
// Client has no global timeout. A timeout passed to [Client.Get] is applied
// via the request context; zero means the request may wait indefinitely.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new [Client] with a pooled transport.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// Get performs a GET request and returns a structured [Response].
//
// Get always returns a Response; errors are captured in the Error field.
func (c *Client) Get(ctx context.Context, url string, timeout time.Duration) Response {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	// one byte past the limit tells a full body from a cut one
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize+1))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}
	if len(body) > maxResponseBodySize {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      ErrBodyTooLarge,
		}
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// Close closes all idle connections in the client's pool.
//
// Safe to call multiple times and on a nil receiver. The client remains
// usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
}
