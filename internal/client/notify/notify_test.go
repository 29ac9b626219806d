package notify

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/peermirror/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestConsole_ErrorAndSuccess(t *testing.T) {
	var out, logs bytes.Buffer
	log, err := logging.New(&logs, logging.FormatJSON, "debug")
	assert.NoError(t, err)
	c := NewConsole(&out, log)
	ctx := context.Background()

	c.Error(ctx, errors.New("bad password"))
	c.Error(ctx, nil)
	c.Success(ctx, "Account was successfully activated")

	assert.Equal(t, "error: bad password\nAccount was successfully activated\n", out.String())
	assert.Contains(t, logs.String(), `"module":"notify"`)
	assert.Contains(t, logs.String(), "bad password")
}

func TestBell_Play(t *testing.T) {
	var out bytes.Buffer
	b := NewBell(&out, false, nil)
	ctx := context.Background()

	b.Play(ctx, "connection_push")
	assert.Empty(t, out.String())

	b.SetEnabled(true)
	b.Play(ctx, "connection_pull")
	assert.Equal(t, "\a", out.String())
}

func TestBell_ConcurrentPlayAndToggle(t *testing.T) {
	var out bytes.Buffer
	b := NewBell(&out, false, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.Play(ctx, "connection_push")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.SetEnabled(i%2 == 0)
		}
	}()
	wg.Wait()

	b.SetEnabled(false)
	n := out.Len()
	b.Play(ctx, "connection_pull")
	assert.Equal(t, n, out.Len())
}
