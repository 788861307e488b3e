package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	FeedAddr        string
	OutputDir       string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
// SOCKET_ADDR has no default: the service is useless without a feed to listen to,
// so a missing address fails startup rather than dialing somewhere surprising.
func Load() (*Config, error) {
	shutdownTimeout, err := parseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FeedAddr:        os.Getenv("SOCKET_ADDR"),
		OutputDir:       envOrDefault("OUTPUT_DIR", "output"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.FeedAddr == "" {
		return nil, errors.New("SOCKET_ADDR is required")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("OUTPUT_DIR must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseShutdownTimeout() (time.Duration, error) {
	s := envOrDefault("SHUTDOWN_TIMEOUT", "10s")
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", s, err)
	}
	if d <= 0 {
		return 0, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return d, nil
}
