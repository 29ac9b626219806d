package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name        string
		args        []string
		expected    Config
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "http://api:9090", "-w", "ws://api:9090/ws", "-d", "/tmp/c.db",
				"-l", "warn", "-f", "json", "-i", "10", "-k", "s3cret"},
			expected: Config{
				APIBaseURL: "http://api:9090", ChannelURL: "ws://api:9090/ws", DatabasePath: "/tmp/c.db",
				LogLevel: "warn", LogFormat: "json", ReconnectInterval: 10 * time.Second, TokenSecret: "s3cret",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"cmd", "-c", "conf.json", "-l=error", "-zzz"},
			expected: Config{LogLevel: "error", ReconnectInterval: 7 * time.Second},
		},
		{
			name:        "incorrect reconnect interval",
			args:        []string{"cmd", "-i", "abc"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			cfg := &Config{ReconnectInterval: 7 * time.Second}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(tt.expected, *cfg))
		})
	}
}
