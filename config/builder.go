package config

import (
	"log/slog"

	"github.com/jpalmerr/asyncflow"
)

// Options converts a parsed configuration into [asyncflow.Option] values.
//
// logger may be nil, in which case the App falls back to slog.Default.
func Options(cfg *Config, logger *slog.Logger) []asyncflow.Option {
	opts := []asyncflow.Option{
		asyncflow.WithPort(cfg.Port),
		asyncflow.WithMongoURI(cfg.MongoURI),
		asyncflow.WithValues(cfg.Task01.Values...),
		asyncflow.WithInterval(cfg.Task01.PauseBetween()),
		asyncflow.WithFetchURL(cfg.Task02.URL),
		asyncflow.WithParallelURLs(cfg.Task05.URLs...),
		asyncflow.WithFetchTimeout(cfg.FetchTimeout.Duration()),
	}

	if cfg.ConnectTimeout > 0 {
		opts = append(opts, asyncflow.WithConnectTimeout(cfg.ConnectTimeout.Duration()))
	}
	if logger != nil {
		opts = append(opts, asyncflow.WithLogger(logger))
	}
	return opts
}
