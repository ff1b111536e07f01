// Package binance provides a client for the Binance spot market REST API.
package binance

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the public Binance.US REST endpoint.
	DefaultBaseURL = "https://api.binance.us/api/v3"
	defaultTimeout = 10 * time.Second
	// Binance allows 1200 request weight per minute; the bulk ticker costs 40.
	defaultRatePerSecond = 10
)

// Config holds configuration for the Binance API client.
type Config struct {
	BaseURL       string        // Base URL for the API (e.g., "https://api.binance.us/api/v3")
	Timeout       time.Duration // HTTP request timeout
	RatePerSecond int           // Maximum outgoing requests per second
}

// LoadConfig loads Binance configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		BaseURL:       os.Getenv("BINANCE_BASE_URL"),
		Timeout:       defaultTimeout,
		RatePerSecond: defaultRatePerSecond,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if v := os.Getenv("BINANCE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("invalid BINANCE_TIMEOUT, using default", "value", v, "default", defaultTimeout)
		} else {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("BINANCE_RATE_PER_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			slog.Warn("invalid BINANCE_RATE_PER_SEC, using default", "value", v, "default", defaultRatePerSecond)
		} else {
			cfg.RatePerSecond = n
		}
	}
	return cfg
}
