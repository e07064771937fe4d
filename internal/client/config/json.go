package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/georemind/georemind/internal/flagx"
	"github.com/georemind/georemind/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the timeout either as a string like
// "15s" or as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	DBPath         string         `json:"db_path"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c/-config flags (flagx.JsonConfigFlags). When no file is named the
// function returns without touching cfg. Read or unmarshal errors panic;
// the caller decided to start with an explicit config file, so a broken one
// should not be silently ignored.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerBaseURL = jc.ServerBaseURL
	cfg.DBPath = jc.DBPath
	cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
}
