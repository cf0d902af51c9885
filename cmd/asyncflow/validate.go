package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/asyncflow/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate an asyncflow configuration file without connecting or serving.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  asyncflow validate -c asyncflow.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fetchTimeout := "none"
	if cfg.FetchTimeout > 0 {
		fetchTimeout = cfg.FetchTimeout.Duration().String()
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Port:          %d\n", cfg.Port)
	fmt.Printf("  Task01:        %d values every %s\n", len(cfg.Task01.Values), cfg.Task01.PauseBetween())
	fmt.Printf("  Task02:        %s\n", cfg.Task02.URL)
	fmt.Printf("  Task05:        %d urls\n", len(cfg.Task05.URLs))
	fmt.Printf("  Fetch timeout: %s\n", fetchTimeout)

	return nil
}
