// Package krx provides a client for the KRX (Korea Exchange) market data API.
package krx

import (
	"os"
	"time"
)

// Config holds configuration for the KRX API client.
type Config struct {
	BaseURL string        // Base URL for the API (e.g., "http://data.krx.co.kr")
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads KRX configuration from environment variables.
func LoadConfig() Config {
	return Config{
		BaseURL: os.Getenv("KRX_BASE_URL"),
		Timeout: 10 * time.Second,
	}
}
