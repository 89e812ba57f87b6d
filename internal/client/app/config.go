package app

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	AuthURL             string        // Required unless Emulator: GoTrue base URL, e.g. https://xyz.supabase.co
	APIKey              string        // Optional: anon key sent in the apikey header (default: none)
	DataFile            string        // Local session/flag database (default: $XDG_DATA_HOME/passage/passage.db)
	Emulator            bool          // Run an in-process auth emulator instead of AuthURL (default: false)
	EmulatorGoogleEmail string        // Account the emulated Google picker returns (default: google.user@example.com)
	GoogleClientID      string        // Optional: enables "Continue with Google"
	GoogleClientSecret  string        // Optional: OAuth client secret for the desktop client
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: text)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 5s)
}

func LoadConfig() Config {
	return Config{
		AuthURL:             os.Getenv("PASSAGE_AUTH_URL"),
		APIKey:              os.Getenv("PASSAGE_API_KEY"),
		DataFile:            getEnvOrDefault("PASSAGE_DATA_FILE", defaultDataFile()),
		Emulator:            getEnvBoolOrDefault("PASSAGE_EMULATOR", false),
		EmulatorGoogleEmail: getEnvOrDefault("PASSAGE_EMULATOR_GOOGLE_EMAIL", "google.user@example.com"),
		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "text"),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 5*time.Second),
	}
}

func defaultDataFile() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "passage.db"
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "passage", "passage.db")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
