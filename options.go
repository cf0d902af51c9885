package asyncflow

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// appConfig holds mutable state during App construction.
type appConfig struct {
	port             int
	mongoURI         string
	connectTimeout   time.Duration
	connector        Connector
	values           []string
	interval         time.Duration
	observer         func(string)
	fetchURL         string
	parallelURLs     []string
	fetchTimeout     time.Duration
	logger           *slog.Logger
	outcomeCallbacks []func(Outcome)
}

// Option is a function that configures an [App] during construction.
//
// Options return an error if validation fails.
type Option func(*appConfig) error

// WithPort sets the HTTP port. Defaults to 3000.
func WithPort(port int) Option {
	return func(cfg *appConfig) error {
		cfg.port = port
		return nil
	}
}

// WithMongoURI sets the MongoDB connection string used at startup.
//
// Returns an error if the URI is empty.
func WithMongoURI(uri string) Option {
	return func(cfg *appConfig) error {
		if uri == "" {
			return errors.New("mongo uri cannot be empty")
		}
		cfg.mongoURI = uri
		return nil
	}
}

// WithConnectTimeout bounds the startup connection attempt made for
// [WithMongoURI]. Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithConnectTimeout(d time.Duration) Option {
	return func(cfg *appConfig) error {
		if d <= 0 {
			return errors.New("connect timeout must be positive")
		}
		cfg.connectTimeout = d
		return nil
	}
}

// WithConnector replaces the MongoDB connection with a custom one.
//
// The connector is called once by [App.Start] before the port is bound.
// It takes precedence over [WithMongoURI].
func WithConnector(c Connector) Option {
	return func(cfg *appConfig) error {
		if c == nil {
			return errors.New("connector cannot be nil")
		}
		cfg.connector = c
		return nil
	}
}

// WithValues sets the sequence observed by /task01.
//
// An empty sequence is allowed; /task01 then responds immediately.
func WithValues(values ...string) Option {
	return func(cfg *appConfig) error {
		cfg.values = append([]string{}, values...)
		return nil
	}
}

// WithInterval sets the pause before each /task01 value. Defaults to 1 second.
//
// Returns an error if the duration is negative.
func WithInterval(d time.Duration) Option {
	return func(cfg *appConfig) error {
		if d < 0 {
			return errors.New("interval cannot be negative")
		}
		cfg.interval = d
		return nil
	}
}

// WithObserver sets the function that receives each /task01 value.
//
// The default logs each value at INFO. The observer is not guarded; a panic
// in it aborts the request.
func WithObserver(fn func(value string)) Option {
	return func(cfg *appConfig) error {
		if fn == nil {
			return errors.New("observer cannot be nil")
		}
		cfg.observer = fn
		return nil
	}
}

// WithFetchURL sets the resource fetched by /task02.
func WithFetchURL(u string) Option {
	return func(cfg *appConfig) error {
		if err := validateURL(u); err != nil {
			return fmt.Errorf("fetch url: %w", err)
		}
		cfg.fetchURL = u
		return nil
	}
}

// WithParallelURLs sets the resources fetched concurrently by /task05.
//
// Results are returned in this order. An empty list is allowed.
func WithParallelURLs(urls ...string) Option {
	return func(cfg *appConfig) error {
		for i, u := range urls {
			if err := validateURL(u); err != nil {
				return fmt.Errorf("parallel urls[%d]: %w", i, err)
			}
		}
		cfg.parallelURLs = append([]string{}, urls...)
		return nil
	}
}

// WithFetchTimeout sets a per-request timeout for upstream calls.
//
// Zero, the default, means requests wait as long as the upstream takes.
// Returns an error if the duration is negative.
func WithFetchTimeout(d time.Duration) Option {
	return func(cfg *appConfig) error {
		if d < 0 {
			return errors.New("fetch timeout cannot be negative")
		}
		cfg.fetchTimeout = d
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithOutcomeCallback registers a function called after every task run.
//
// Callbacks run synchronously on the request goroutine, before the response
// is written, in registration order. They must not block. Panics are
// recovered and logged.
//
// Nil callbacks are silently ignored.
func WithOutcomeCallback(cb func(Outcome)) Option {
	return func(cfg *appConfig) error {
		if cb == nil {
			return nil
		}
		cfg.outcomeCallbacks = append(cfg.outcomeCallbacks, cb)
		return nil
	}
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsed.Scheme)
	}
	return nil
}
