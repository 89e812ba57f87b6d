package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer               string        // Optional: iss claim of access tokens (default: http://localhost:{Port}/auth/v1)
	APIKey               string        // Optional: anon key required in the apikey header (default: none)
	AutoConfirm          bool          // Optional: confirm signups without an emailed code (default: false)
	GoogleClientID       string        // Optional: required aud of Google ID tokens (default: any)
	AccessTokenTTL       time.Duration // Optional: access token lifetime (default: 1h)
	OTPTTL               time.Duration // Optional: emailed code lifetime (default: 1h)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 9999, GoTrue's port)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               os.Getenv("EMULATOR_ISSUER"),
		APIKey:               os.Getenv("EMULATOR_API_KEY"),
		AutoConfirm:          getEnvBoolOrDefault("EMULATOR_AUTOCONFIRM", false),
		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		AccessTokenTTL:       getEnvDurationOrDefault("EMULATOR_JWT_EXP", time.Hour),
		OTPTTL:               getEnvDurationOrDefault("EMULATOR_OTP_EXP", time.Hour),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 9999),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "http://localhost:" + strconv.Itoa(cfg.Port) + "/auth/v1"
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// GoTrue takes plain seconds for its *_EXP settings
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
