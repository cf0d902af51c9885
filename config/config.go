// Package config provides YAML configuration parsing for asyncflow.
//
// This package lets asyncflow run as a standalone binary configured by a
// file, the environment, or both.
//
// Example configuration:
//
//	port: ${PORT:-3000}
//	mongo_uri: ${MONGO_URI}
//	connect_timeout: 10s
//	fetch_timeout: 0s
//
//	task01:
//	  values: [A, B, C, D]
//	  interval: 1s
//
//	task02:
//	  url: https://jsonplaceholder.typicode.com/posts/1
//
//	task05:
//	  urls:
//	    - https://jsonplaceholder.typicode.com/posts/1
//	    - https://jsonplaceholder.typicode.com/posts/2
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = 3000
	defaultConnectTimeout = 10 * time.Second
	defaultInterval       = time.Second
	defaultFetchURL       = "https://jsonplaceholder.typicode.com/posts/1"
)

var (
	defaultValues       = []string{"A", "B", "C", "D"}
	defaultParallelURLs = []string{
		"https://jsonplaceholder.typicode.com/posts/1",
		"https://jsonplaceholder.typicode.com/posts/2",
	}
)

// Config is the root configuration structure for asyncflow.
//
// Use [Load], [Parse] or [FromEnv] to create a Config.
type Config struct {
	// Port is the HTTP server port. Defaults to 3000.
	Port int `yaml:"port"`

	// MongoURI is the data-store connection string. Required.
	MongoURI string `yaml:"mongo_uri"`

	// ConnectTimeout bounds the startup connection attempt. Defaults to 10s.
	ConnectTimeout Duration `yaml:"connect_timeout"`

	// FetchTimeout is the per-request timeout for upstream calls.
	// Zero (the default) means no timeout.
	FetchTimeout Duration `yaml:"fetch_timeout"`

	Task01 Task01Config `yaml:"task01"`
	Task02 Task02Config `yaml:"task02"`
	Task05 Task05Config `yaml:"task05"`
}

// Task01Config configures the sequential iteration route.
type Task01Config struct {
	// Values are observed in order. Omitted means [A B C D]; an explicit
	// empty list is kept empty.
	Values []string `yaml:"values"`

	// Interval is the pause before each value. Omitted means 1s; an explicit
	// 0s is kept and observes the values back to back.
	Interval *Duration `yaml:"interval"`
}

// PauseBetween returns the configured interval, or the 1s default when
// Interval is unset.
func (t Task01Config) PauseBetween() time.Duration {
	if t.Interval == nil {
		return defaultInterval
	}
	return t.Interval.Duration()
}

// Task02Config configures the single fetch route.
type Task02Config struct {
	// URL is the resource fetched on each request.
	URL string `yaml:"url"`
}

// Task05Config configures the parallel fetch route.
type Task05Config struct {
	// URLs are fetched concurrently; results keep this order.
	// Omitted means the two default posts; an explicit empty list is kept.
	URLs []string `yaml:"urls"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part, present when a default was given
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment
// values. An unset variable without a default is an error.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		sub := envVarPattern.FindStringSubmatch(match)
		name := sub[1]
		hasDefault := sub[2] != ""

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasDefault {
			return sub[3]
		}
		firstErr = fmt.Errorf("environment variable %q is not set", name)
		return match
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded across the whole document before
// decoding, so numeric fields such as port may come from the environment.
// Defaults are applied to omitted fields, then the result is validated.
func Parse(data []byte) (*Config, error) {
	expanded, err := expandEnvVars(string(data))
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv builds a configuration without a file.
//
// PORT and MONGO_URI are read from the environment; everything else takes
// its default.
func FromEnv() (*Config, error) {
	var cfg Config

	if p, ok := os.LookupEnv("PORT"); ok && p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("PORT: invalid port %q", p)
		}
		cfg.Port = port
	}
	cfg.MongoURI = os.Getenv("MONGO_URI")

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = Duration(defaultConnectTimeout)
	}
	if c.Task01.Values == nil {
		c.Task01.Values = append([]string(nil), defaultValues...)
	}
	if c.Task01.Interval == nil {
		d := Duration(defaultInterval)
		c.Task01.Interval = &d
	}
	if c.Task02.URL == "" {
		c.Task02.URL = defaultFetchURL
	}
	if c.Task05.URLs == nil {
		c.Task05.URLs = append([]string(nil), defaultParallelURLs...)
	}
}

// Validate checks a configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.MongoURI == "" {
		return fmt.Errorf("mongo_uri is required")
	}

	if c.ConnectTimeout.Duration() < 0 {
		return fmt.Errorf("connect_timeout cannot be negative, got %s", c.ConnectTimeout.Duration())
	}
	if c.FetchTimeout.Duration() < 0 {
		return fmt.Errorf("fetch_timeout cannot be negative, got %s", c.FetchTimeout.Duration())
	}
	if c.Task01.PauseBetween() < 0 {
		return fmt.Errorf("task01: interval cannot be negative, got %s", c.Task01.PauseBetween())
	}

	if err := validateURL(c.Task02.URL); err != nil {
		return fmt.Errorf("task02: url: %w", err)
	}
	for i, u := range c.Task05.URLs {
		if err := validateURL(u); err != nil {
			return fmt.Errorf("task05: urls[%d]: %w", i, err)
		}
	}

	return nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}
	return nil
}
