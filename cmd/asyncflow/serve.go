package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/asyncflow"
	"github.com/jpalmerr/asyncflow/config"
)

const shutdownTimeout = 10 * time.Second

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the asyncflow HTTP server.

The server will:
  - Load .env from the working directory, if present
  - Read configuration from the file given with -c, or from PORT and MONGO_URI
  - Connect to MongoDB, exiting with status 1 on failure
  - Serve /task01, /task02, /task05 until interrupted (Ctrl+C) or SIGTERM

Example:
  asyncflow serve
  asyncflow serve -c asyncflow.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (default: environment only)")
	serveCmd.Flags().String("env-file", ".env", "dotenv file loaded before reading configuration")
}

// loadConfig reads the .env file, then the config file or the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		return config.FromEnv()
	}
	return config.Load(configFile)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Info("config loaded",
		"port", cfg.Port,
		"task01_values", len(cfg.Task01.Values),
		"task05_urls", len(cfg.Task05.URLs),
	)

	app, err := asyncflow.New(config.Options(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start(ctx)
	}()

	select {
	case err := <-errChan:
		// startup failures (data store, port) end up here
		return err

	case <-ctx.Done():
		select {
		case err := <-errChan:
			if err != nil {
				return err
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(shutdownTimeout):
			logger.Warn("shutdown timed out",
				"timeout", shutdownTimeout.String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
