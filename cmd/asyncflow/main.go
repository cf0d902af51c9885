// Package main is the entry point for the asyncflow CLI.
//
// Usage:
//
//	asyncflow serve                     # configure from PORT / MONGO_URI (.env honoured)
//	asyncflow serve -c asyncflow.yaml   # configure from a file
//	asyncflow validate -c asyncflow.yaml
//	asyncflow version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd only displays help; functionality lives in subcommands.
var rootCmd = &cobra.Command{
	Use:   "asyncflow",
	Short: "HTTP demo of sequential, single and parallel async tasks",
	Long: `asyncflow serves three routes that demonstrate asynchronous control flow:

  GET /task01  log each value after a 1-second delay, in order
  GET /task02  fetch one upstream resource
  GET /task05  fetch several upstream resources in parallel, ordered output

A MongoDB connection is established before the port is opened; if it fails
the process exits with status 1.

Quick start:
  MONGO_URI=mongodb://localhost:27017 asyncflow serve
  curl http://localhost:3000/task05`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("asyncflow %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
