package config

import "time"

// Config holds runtime settings for the MedTrack CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API, including the /api prefix.
//   - RequestTimeout: per-request timeout for API calls.
//   - DatabasePath: path of the local sqlite file holding the session snapshot.
//   - LogLevel: slog level name (debug, info, warn, error).
type Config struct {
	ServerBaseURL  string
	RequestTimeout time.Duration
	DatabasePath   string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8000/api"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "medtrack.db"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment (.env), a JSON file (if present) and command-line
// flags (if present). Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
