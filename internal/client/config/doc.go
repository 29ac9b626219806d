// Package config loads runtime configuration for the peermirror client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the REST API
//	-w string   websocket URL of the event channel
//	-d string   path of the local SQLite database
//	-l string   log level (debug, info, warn, error)
//	-f string   log format (text, json, console)
//	-i int      channel reconnect interval (seconds)
//	-k string   secret used to seal the stored session token
//
// # JSON schema
//
// Intervals use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds. Keys that are absent keep their earlier value:
//
//	{
//	  "api_base_url": "https://peers.example.com",
//	  "channel_url": "wss://peers.example.com/ws",
//	  "database_path": "/var/lib/peermirror/client.db",
//	  "log_level": "debug",
//	  "log_format": "console",
//	  "reconnect_interval": "5s",
//	  "request_timeout": "15s",
//	  "token_secret": "change-me"
//	}
package config
