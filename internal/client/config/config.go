package config

import (
	"path/filepath"
	"time"

	"github.com/georemind/georemind/internal/filex"
)

// Config holds runtime settings for the reminder CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API.
//   - DBPath: path of the local SQLite database file.
//   - RequestTimeout: per-request timeout for backend calls.
type Config struct {
	ServerBaseURL  string
	DBPath         string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults. The database lands in the
// user config directory when resolvable, else next to the working directory.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second

	if dir, err := filex.DefaultDataDir(); err == nil {
		c.DBPath = filepath.Join(dir, "georemind.db")
	} else {
		c.DBPath = "georemind.db"
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
