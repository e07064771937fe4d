// Package config loads runtime configuration for the reminder CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend REST API
//	-d string   path of the local SQLite database file
//	-t int      backend request timeout (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be
// either strings like "15s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "https://reminders.example.com",
//	  "db_path": "/var/lib/georemind/georemind.db",
//	  "request_timeout": "15s"
//	}
//
// This package does not read environment variables; use the JSON file or
// flags to configure values.
package config
