// Package asyncflow provides a small HTTP service that demonstrates three
// asynchronous control-flow patterns behind three routes.
//
// # Routes
//
//   - GET /task01: waits one interval, then observes each value, strictly in
//     order, and answers with a fixed confirmation text
//   - GET /task02: fetches one upstream JSON resource and wraps it in
//     {"message": "Task 02 completed", "data": ...}
//   - GET /task05: fetches several upstream resources concurrently and returns
//     them in input order; any failure fails the whole request
//
// Failed fetches answer 500 with a fixed message. The underlying cause is
// logged but never returned to the client.
//
// # Startup
//
// [App.Start] connects to the data store before binding the port. If the
// connection fails, Start returns an error and the port is never opened:
//
//	app, _ := asyncflow.New(
//	    asyncflow.WithMongoURI("mongodb://localhost:27017"),
//	    asyncflow.WithPort(3000),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	if err := app.Start(ctx); err != nil {
//	    os.Exit(1)
//	}
//
// # Configuration
//
// Everything that the routes depend on is injected through options: the
// /task01 values and interval ([WithValues], [WithInterval]), the upstream
// resources ([WithFetchURL], [WithParallelURLs]) and an optional per-request
// timeout ([WithFetchTimeout]). The standalone binary in cmd/asyncflow reads
// the same settings from YAML via the config package.
package asyncflow
