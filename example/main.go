// Example runs asyncflow against a local mock upstream.
//
// Usage:
//
//	MONGO_URI=mongodb://localhost:27017 go run ./example
//
// Then:
//
//	curl localhost:3000/task05
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/asyncflow"
)

func main() {
	// start mock upstream (see mock_upstream.go)
	go StartMockUpstream(":9999")
	time.Sleep(100 * time.Millisecond)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	app, err := asyncflow.New(
		asyncflow.WithMongoURI(os.Getenv("MONGO_URI")),
		asyncflow.WithConnectTimeout(5*time.Second),
		asyncflow.WithLogger(logger),
		asyncflow.WithFetchURL("http://localhost:9999/posts/1"),
		// posts/1 is the slowest; the response still lists it first
		asyncflow.WithParallelURLs(
			"http://localhost:9999/posts/1",
			"http://localhost:9999/posts/2",
			"http://localhost:9999/posts/8",
		),
		asyncflow.WithOutcomeCallback(func(o asyncflow.Outcome) {
			if !o.Succeeded() {
				logger.Warn("task failed", "task", o.Task, "error", o.Err)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create app", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		os.Exit(1)
	}
}
