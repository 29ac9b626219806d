package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/peermirror/internal/flagx"
	"github.com/dmitrijs2005/peermirror/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell an
// absent key from an empty one.
type JsonConfig struct {
	APIBaseURL        *string         `json:"api_base_url"`
	ChannelURL        *string         `json:"channel_url"`
	DatabasePath      *string         `json:"database_path"`
	LogLevel          *string         `json:"log_level"`
	LogFormat         *string         `json:"log_format"`
	ReconnectInterval *timex.Duration `json:"reconnect_interval"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	TokenSecret       *string         `json:"token_secret"`
}

// parseJson overlays cfg with the file named by -c/-config, if any. It panics
// on read or decode errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath(os.Args[1:])
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.ChannelURL, jc.ChannelURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.TokenSecret, jc.TokenSecret)
	if jc.ReconnectInterval != nil {
		cfg.ReconnectInterval = jc.ReconnectInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
