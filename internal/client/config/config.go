package config

import "time"

// Config holds runtime settings for the peermirror client.
type Config struct {
	APIBaseURL        string
	ChannelURL        string
	DatabasePath      string
	LogLevel          string
	LogFormat         string
	ReconnectInterval time.Duration
	RequestTimeout    time.Duration

	// TokenSecret seals the persisted session token when set.
	TokenSecret string
}

// LoadDefaults populates c with defaults for a local development server.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.ChannelURL = "ws://127.0.0.1:8080/ws"
	c.DatabasePath = "peermirror.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.ReconnectInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.TokenSecret = ""
}

// LoadConfig applies defaults, then the JSON file, then flags. Later sources
// take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
