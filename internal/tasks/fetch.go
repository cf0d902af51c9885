package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jpalmerr/asyncflow/internal/fetch"
)

// The message text of these errors is part of the HTTP contract.
var (
	// ErrFetchAPI is returned by [Runner.FetchOne] for any upstream failure.
	ErrFetchAPI = errors.New("Error fetching data from API")

	// ErrFetchMany is returned by [Runner.FetchAll] when any request fails.
	ErrFetchMany = errors.New("Error fetching data from one or more URLs")
)

// Runner executes the fetch tasks against a shared [fetch.Client].
//
// Runner is safe for concurrent use.
type Runner struct {
	client  *fetch.Client
	url     string
	timeout time.Duration
	logger  *slog.Logger
}

// NewRunner creates a [Runner].
//
// Parameters:
//   - client: outbound HTTP client shared by all requests
//   - url: the resource fetched by [Runner.FetchOne]
//   - timeout: per-request timeout; zero disables it
//   - logger: receives the causes discarded by the fetch tasks
func NewRunner(client *fetch.Client, url string, timeout time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		client:  client,
		url:     url,
		timeout: timeout,
		logger:  logger,
	}
}

// FetchOne GETs the configured URL and returns its JSON body.
//
// Transport errors, non-2xx statuses, bodies over 1MB and undecodable bodies
// all yield [ErrFetchAPI].
func (r *Runner) FetchOne(ctx context.Context) (json.RawMessage, error) {
	payload, err := r.client.Get(ctx, r.url, r.timeout).JSON()
	if err != nil {
		r.logger.Warn("upstream fetch failed", "url", r.url, "error", err)
		return nil, ErrFetchAPI
	}
	return payload, nil
}

// FetchAll GETs every URL concurrently and returns the bodies in input order.
//
// All requests are started before any is awaited. The first failure cancels
// the requests still in flight and FetchAll returns [ErrFetchMany] with no
// partial results. An empty urls slice yields an empty, non-nil result.
func (r *Runner) FetchAll(ctx context.Context, urls []string) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, len(urls))
	if len(urls) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		g.Go(func() error {
			payload, err := r.client.Get(gctx, url, r.timeout).JSON()
			if err != nil {
				return fmt.Errorf("%s: %w", url, err)
			}
			results[i] = payload
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Warn("parallel fetch failed", "url_count", len(urls), "error", err)
		return nil, ErrFetchMany
	}
	return results, nil
}
