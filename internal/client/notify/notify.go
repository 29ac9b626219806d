// Package notify delivers user-facing notices and sound cues to the terminal.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/peermirror/internal/logging"
)

// Console writes notices to an output stream and mirrors them to the log.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	log logging.Logger
}

func NewConsole(out io.Writer, log logging.Logger) *Console {
	if log == nil {
		log = logging.Nop()
	}
	return &Console{out: out, log: log.With("module", "notify")}
}

// Error reports a failed operation.
func (c *Console) Error(ctx context.Context, err error) {
	if err == nil {
		return
	}
	c.log.Error(ctx, "operation failed", "err", err)
	c.printf("error: %v\n", err)
}

// Success reports a completed operation that has a user-visible notice.
func (c *Console) Success(ctx context.Context, msg string) {
	c.log.Info(ctx, "notice", "msg", msg)
	c.printf("%s\n", msg)
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, args...)
}
