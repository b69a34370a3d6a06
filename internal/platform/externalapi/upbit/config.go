// Package upbit provides a client for the Upbit cryptocurrency exchange API.
package upbit

import (
	"os"
	"time"
)

// Config holds configuration for the Upbit API client.
type Config struct {
	BaseURL string        // Base URL for the API (e.g., "https://api.upbit.com")
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads Upbit configuration from environment variables.
func LoadConfig() Config {
	return Config{
		BaseURL: os.Getenv("UPBIT_BASE_URL"),
		Timeout: 10 * time.Second,
	}
}
