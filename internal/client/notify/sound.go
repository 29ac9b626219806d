package notify

import (
	"context"
	"io"
	"sync"

	"github.com/dmitrijs2005/peermirror/internal/logging"
)

// Bell plays sound cues by ringing the terminal bell. Cues are always logged
// at debug level; the bell only rings when enabled.
type Bell struct {
	mu      sync.Mutex
	out     io.Writer
	enabled bool
	log     logging.Logger
}

func NewBell(out io.Writer, enabled bool, log logging.Logger) *Bell {
	if log == nil {
		log = logging.Nop()
	}
	return &Bell{out: out, enabled: enabled, log: log.With("module", "sound")}
}

func (b *Bell) Play(ctx context.Context, name string) {
	b.log.Debug(ctx, "sound", "name", name)
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.enabled {
		return
	}
	_, _ = io.WriteString(b.out, "\a")
}

// SetEnabled toggles the audible bell.
func (b *Bell) SetEnabled(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.enabled = on
}
