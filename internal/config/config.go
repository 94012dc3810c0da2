// Package config provides configuration loading and validation for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the runtime configuration for the matchmaking service.
// Values come from the environment; a .env file is loaded by the CLI
// entrypoint before this package reads anything.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string
	// APIKey is the Gemini API key used for generation and embeddings.
	APIKey string
	// Port is the HTTP listen port.
	Port int
	// AdminUsername and AdminPasswordHash are the single organizer
	// credential; the hash is bcrypt.
	AdminUsername     string
	AdminPasswordHash string
	// Verbose enables detailed pipeline output.
	Verbose bool
}

// Load reads service configuration from environment variables.
// DATABASE_URL and GEMINI_API_KEY are required; PORT defaults to 8080.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		APIKey:            os.Getenv("GEMINI_API_KEY"),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		Port:              8080,
	}
	if cfg.AdminUsername == "" {
		cfg.AdminUsername = "admin"
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}

	if os.Getenv("VERBOSE") == "true" {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: DATABASE_URL is required but not set")
	}
	if c.APIKey == "" {
		return fmt.Errorf("config error: GEMINI_API_KEY is required but not set")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT out of range: %d", c.Port)
	}
	return nil
}
