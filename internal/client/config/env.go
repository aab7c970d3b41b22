package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with values from environment variables, loading
// a .env file from the working directory first when one exists. Real
// environment variables are not overwritten by the file.
//
// Recognized variables:
//
//	MEDTRACK_SERVER_URL   — backend base URL
//	MEDTRACK_DB_PATH      — local snapshot database path
//	MEDTRACK_TIMEOUT      — request timeout, e.g. "10s"
//	MEDTRACK_LOG_LEVEL    — debug | info | warn | error
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("MEDTRACK_SERVER_URL"); v != "" {
		cfg.ServerBaseURL = v
	}
	if v := os.Getenv("MEDTRACK_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("MEDTRACK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("MEDTRACK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
