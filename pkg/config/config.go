// Package config loads client settings and credentials from the
// environment, with optional .env file support.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/danelimjoco/2025-external-rest-practice/pkg/client"
)

// Environment variable names.
const (
	EnvAPIToken = "API_TOKEN"
	EnvBaseURL  = "API_BASE_URL"
	EnvRate     = "API_REQUESTS_PER_SECOND"
	EnvLogLevel = "LOG_LEVEL"
)

// DefaultBaseURL is the demo API used when no base URL is configured.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// Settings holds environment-derived client settings.
type Settings struct {
	BaseURL           string
	RequestsPerSecond float64
	LogLevel          string
	Token             string
}

// Load reads settings from the environment. A .env file in the working
// directory is merged in first when present; a missing file is not an
// error.
func Load() (Settings, error) {
	_ = godotenv.Load()

	settings := Settings{
		BaseURL:           getEnv(EnvBaseURL, DefaultBaseURL),
		LogLevel:          getEnv(EnvLogLevel, "info"),
		Token:             os.Getenv(EnvAPIToken),
		RequestsPerSecond: 1.0,
	}

	if raw := os.Getenv(EnvRate); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Settings{}, &client.ConfigError{Field: EnvRate, Reason: "not a number: " + raw}
		}
		settings.RequestsPerSecond = rate
	}

	return settings, nil
}

// RequireToken returns the token, or a configuration error when it is
// absent. Call it before building authenticated requests so the failure
// happens before any network activity.
func (s Settings) RequireToken() (string, error) {
	if s.Token == "" {
		return "", &client.ConfigError{Field: EnvAPIToken, Reason: "environment variable not set"}
	}
	return s.Token, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
