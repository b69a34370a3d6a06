// Package alimtalk provides a client for sending KakaoTalk notification
// messages (알림톡) through a relay API.
package alimtalk

import (
	"os"
	"time"
)

// Config holds configuration for the AlimTalk relay client.
type Config struct {
	BaseURL string        // Relay API base URL
	APIKey  string        // API key for the relay
	Sender  string        // Registered sender profile key
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads AlimTalk configuration from environment variables.
func LoadConfig() Config {
	return Config{
		BaseURL: os.Getenv("ALIMTALK_BASE_URL"),
		APIKey:  os.Getenv("ALIMTALK_API_KEY"),
		Sender:  os.Getenv("ALIMTALK_SENDER_KEY"),
		Timeout: 10 * time.Second,
	}
}

// Enabled reports whether the relay is configured. When false, delivery
// is skipped and reports are only persisted.
func (c Config) Enabled() bool {
	return c.BaseURL != "" && c.APIKey != ""
}
