package asyncflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/asyncflow/internal/fetch"
	"github.com/jpalmerr/asyncflow/internal/server"
	"github.com/jpalmerr/asyncflow/internal/store"
	"github.com/jpalmerr/asyncflow/internal/tasks"
)

const (
	defaultPort           = 3000
	defaultConnectTimeout = 10 * time.Second
	defaultFetchURL       = "https://jsonplaceholder.typicode.com/posts/1"
	disconnectTimeout     = 5 * time.Second
)

var (
	defaultValues       = []string{"A", "B", "C", "D"}
	defaultParallelURLs = []string{
		"https://jsonplaceholder.typicode.com/posts/1",
		"https://jsonplaceholder.typicode.com/posts/2",
	}
)

// Database is the process-wide data-store handle.
//
// It is established once by [App.Start] before any traffic is accepted and
// closed when Start returns.
type Database = store.Database

// Connector establishes the data-store connection.
type Connector func(ctx context.Context) (Database, error)

// App wires the task routes to an HTTP server behind a data-store connection.
//
// The typical lifecycle is:
//
//	app, err := asyncflow.New(asyncflow.WithMongoURI(os.Getenv("MONGO_URI")))
//	if err != nil {
//	    slog.Error("failed to create app", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	if err := app.Start(ctx); err != nil { // blocks until ctx is cancelled
//	    os.Exit(1)
//	}
type App struct {
	port             int
	connect          Connector
	values           []string
	interval         time.Duration
	observer         func(string)
	fetchURL         string
	parallelURLs     []string
	fetchTimeout     time.Duration
	logger           *slog.Logger
	outcomeCallbacks []func(Outcome)
}

// New creates a new [App] with the given options.
//
// A data store must be configured via [WithMongoURI] or [WithConnector].
// Other options default to:
//   - Port: 3000
//   - Values: A, B, C, D with a 1-second interval
//   - Fetch URL: https://jsonplaceholder.typicode.com/posts/1
//   - Parallel URLs: posts/1 and posts/2 on the same host
//   - Connect timeout: 10 seconds; no fetch timeout
func New(opts ...Option) (*App, error) {
	cfg := &appConfig{
		port:           defaultPort,
		values:         append([]string(nil), defaultValues...),
		interval:       tasks.DefaultInterval,
		fetchURL:       defaultFetchURL,
		parallelURLs:   append([]string(nil), defaultParallelURLs...),
		connectTimeout: defaultConnectTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	connect := cfg.connector
	if connect == nil {
		if cfg.mongoURI == "" {
			return nil, errors.New("a data store is required: use WithMongoURI or WithConnector")
		}
		uri, timeout := cfg.mongoURI, cfg.connectTimeout
		connect = func(ctx context.Context) (Database, error) {
			db, err := store.ConnectMongo(ctx, uri, timeout)
			if err != nil {
				return nil, err
			}
			return db, nil
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &App{
		port:             cfg.port,
		connect:          connect,
		values:           cfg.values,
		interval:         cfg.interval,
		observer:         cfg.observer,
		fetchURL:         cfg.fetchURL,
		parallelURLs:     cfg.parallelURLs,
		fetchTimeout:     cfg.fetchTimeout,
		logger:           logger,
		outcomeCallbacks: cfg.outcomeCallbacks,
	}, nil
}

// Start connects to the data store and then serves the task routes.
//
// Start blocks until ctx is cancelled. If the data store cannot be reached,
// Start logs the failure and returns an error without binding the port;
// there is no retry. Returns nil on graceful shutdown.
func (a *App) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return nil
	}

	db, err := a.connect(ctx)
	if err != nil {
		a.logger.Error("data store connection failed", "error", err)
		return fmt.Errorf("failed to connect to data store: %w", err)
	}
	a.logger.Info("data store connected")
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			a.logger.Warn("data store disconnect failed", "error", err)
		}
	}()

	client := fetch.NewClient()
	defer client.Close()

	t := server.Tasks{
		Values:   a.values,
		Interval: a.interval,
		Runner:   tasks.NewRunner(client, a.fetchURL, a.fetchTimeout, a.logger),
		URLs:     a.parallelURLs,
	}
	if a.observer != nil {
		t.Observer = a.observer
	}

	httpServer := server.NewServer(t, db, store.NewMemoryStore(), a.port, a.notify, a.logger)
	if err := httpServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	a.logger.Info("server listening", "url", fmt.Sprintf("http://localhost:%d", a.port))

	<-ctx.Done()
	httpServer.Wait()
	a.logger.Info("asyncflow stopped")
	return nil
}

// Port returns the configured HTTP port.
func (a *App) Port() int {
	return a.port
}

// notify delivers a run record to every registered outcome callback.
func (a *App) notify(rec store.RunRecord) {
	if len(a.outcomeCallbacks) == 0 {
		return
	}
	outcome := runRecordToOutcome(rec)
	for _, cb := range a.outcomeCallbacks {
		invokeCallbackSafe(cb, outcome, a.logger)
	}
}

// invokeCallbackSafe calls an outcome callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(Outcome), outcome Outcome, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("outcome callback panicked",
				"panic", r,
				"task", outcome.Task,
			)
		}
	}()
	cb(outcome)
}
