package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/peermirror/internal/flagx"
)

var flagNames = []string{"-a", "-w", "-d", "-l", "-f", "-i", "-k"}

// parseFlags overlays cfg with the flags in os.Args. Flags owned by other
// loaders are filtered out first. It panics on malformed values.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], flagNames)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the REST API")
	fs.StringVar(&cfg.ChannelURL, "w", cfg.ChannelURL, "websocket URL of the event channel")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format: text, json or console")
	reconnect := fs.Int("i", int(cfg.ReconnectInterval.Seconds()), "channel reconnect interval (in seconds)")
	fs.StringVar(&cfg.TokenSecret, "k", cfg.TokenSecret, "secret used to seal the stored token")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.ReconnectInterval = time.Duration(*reconnect) * time.Second
		}
	})
}
