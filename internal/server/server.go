package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/asyncflow/internal/store"
	"github.com/jpalmerr/asyncflow/internal/tasks"
)

const (
	shutdownTimeout = 5 * time.Second
	healthTimeout   = 2 * time.Second

	task01Message = "Task 01 completed: Values logged with a 1-second delay"
	task02Message = "Task 02 completed"
	task05Message = "Task 05 completed"
)

// Tasks holds the inputs and collaborators for the task routes.
type Tasks struct {
	// Values is the sequence walked by /task01.
	Values []string

	// Interval is the pause before each value in /task01.
	Interval time.Duration

	// Observer receives each /task01 value.
	Observer tasks.Observer

	// Runner performs the /task02 and /task05 fetches.
	Runner *tasks.Runner

	// URLs are the resources fetched in parallel by /task05.
	URLs []string
}

// envelope is the JSON body of /task02 and /task05 responses.
type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Server handles HTTP requests for the task routes.
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	tasks      Tasks
	db         store.Database
	runs       store.Store
	port       int
	onRun      func(store.RunRecord)
	httpServer *http.Server
	addr       net.Addr
	done       chan struct{}
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - t: task inputs and the fetch runner
//   - db: data-store handle, used by /healthz
//   - runs: store receiving a record for every completed task
//   - port: TCP port to listen on; 0 picks a free port
//   - onRun: called after each record is stored (may be nil)
//   - logger: logger for server events
//
// The server is not started until [Server.Start] is called.
func NewServer(t Tasks, db store.Database, runs store.Store, port int, onRun func(store.RunRecord), logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if t.Observer == nil {
		t.Observer = func(v string) {
			logger.Info("value observed", "value", v)
		}
	}
	return &Server{
		tasks:  t,
		db:     db,
		runs:   runs,
		port:   port,
		onRun:  onRun,
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Handler returns the route multiplexer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /task01", s.handleTask01)
	mux.HandleFunc("GET /task02", s.handleTask02)
	mux.HandleFunc("GET /task05", s.handleTask05)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. When ctx is cancelled the server shuts down gracefully.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}
	s.addr = ln.Addr()

	// request contexts are not tied to ctx: Shutdown lets in-flight tasks
	// finish within shutdownTimeout, and only a client disconnect cancels them
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		defer close(s.done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// Wait blocks until a started server has shut down and in-flight requests
// have finished or the shutdown timeout has passed.
func (s *Server) Wait() {
	<-s.done
}

// Addr returns the bound listener address, or nil before [Server.Start].
func (s *Server) Addr() net.Addr {
	return s.addr
}

func (s *Server) handleTask01(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := tasks.Iterate(r.Context(), s.tasks.Values, s.tasks.Interval, s.tasks.Observer); err != nil {
		// client gone; there is no one to answer
		s.logger.Warn("task interrupted", "task", "task01", "error", err)
		return
	}
	s.record("task01", r.URL.Path, start, nil)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.WriteString(w, task01Message); err != nil {
		s.logger.Error("failed to write response", "route", r.URL.Path, "error", err)
	}
}

func (s *Server) handleTask02(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	data, err := s.tasks.Runner.FetchOne(r.Context())
	s.record("task02", r.URL.Path, start, err)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, envelope{Message: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{Message: task02Message, Data: data})
}

func (s *Server) handleTask05(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	data, err := s.tasks.Runner.FetchAll(r.Context(), s.tasks.URLs)
	s.record("task05", r.URL.Path, start, err)
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, envelope{Message: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{Message: task05Message, Data: data})
}

// handleRuns returns the latest run record of each task.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	s.writeJSON(w, http.StatusOK, s.runs.GetAll())
}

// handleHealth reports whether the data store answers a ping.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// record stores the outcome of a run and notifies the run callback.
func (s *Server) record(task, route string, start time.Time, err error) {
	rec := store.RunRecord{
		ID:         uuid.NewString(),
		Task:       task,
		Route:      route,
		Outcome:    store.OutcomeSuccess,
		DurationMs: time.Since(start).Milliseconds(),
		FinishedAt: time.Now(),
	}
	if err != nil {
		msg := err.Error()
		rec.Outcome = store.OutcomeFailure
		rec.Error = &msg
	}

	s.runs.Update(rec)

	attrs := []any{"task", task, "run_id", rec.ID, "duration_ms", rec.DurationMs}
	if err != nil {
		s.logger.Warn("task failed", append(attrs, "error", err.Error())...)
	} else {
		s.logger.Info("task completed", attrs...)
	}

	if s.onRun != nil {
		s.invokeCallbackSafe(rec)
	}
}

// invokeCallbackSafe calls the run callback with panic recovery.
// Panics are logged with a correlation ID and do not reach the client.
func (s *Server) invokeCallbackSafe(rec store.RunRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("run callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"task", rec.Task,
				"stack", string(debug.Stack()),
			)
		}
	}()
	s.onRun(rec)
}
