// Package channel implements the persistent event channel the dispatcher
// listens on, over a websocket connection that is re-established whenever it
// drops.
package channel

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/peermirror/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultReconnectInterval = 3 * time.Second
	defaultHandshakeTimeout  = 10 * time.Second
	defaultReadLimit         = 1 << 20

	// ClientIDHeader carries a per-process identifier so the server can tell
	// reconnects of the same client apart from new clients.
	ClientIDHeader = "X-Client-Id"
)

// WSChannel is a websocket client channel.
type WSChannel struct {
	url       string
	header    func() http.Header
	dialer    *websocket.Dialer
	reconnect time.Duration
	readLimit int64
	clientID  string
	log       logging.Logger
}

// Option configures a WSChannel.
type Option func(*WSChannel)

// WithHeader sets a function producing the handshake headers. It is called
// before every dial so it can pick up a token that changed since.
func WithHeader(fn func() http.Header) Option {
	return func(c *WSChannel) { c.header = fn }
}

func WithReconnectInterval(d time.Duration) Option {
	return func(c *WSChannel) { c.reconnect = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *WSChannel) { c.log = l.With("module", "channel") }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *WSChannel) { c.dialer = d }
}

func NewWSChannel(url string, opts ...Option) *WSChannel {
	c := &WSChannel{
		url:       url,
		header:    func() http.Header { return http.Header{} },
		dialer:    &websocket.Dialer{HandshakeTimeout: defaultHandshakeTimeout},
		reconnect: defaultReconnectInterval,
		readLimit: defaultReadLimit,
		clientID:  uuid.NewString(),
		log:       logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ClientID returns the identifier sent on every handshake.
func (c *WSChannel) ClientID() string { return c.clientID }

// Listen dials the server and calls fn for every text or binary message, one
// at a time. A dropped connection or failed dial is retried after the
// reconnect interval. Listen returns ctx.Err() once ctx is done.
func (c *WSChannel) Listen(ctx context.Context, fn func(ctx context.Context, raw []byte)) error {
	for {
		ws, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn(ctx, "dial failed", "url", c.url, "err", err)
		} else {
			err = c.readPump(ctx, ws, fn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn(ctx, "connection lost", "url", c.url, "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.reconnect):
		}
	}
}

func (c *WSChannel) dial(ctx context.Context) (*websocket.Conn, error) {
	h := c.header()
	if h == nil {
		h = http.Header{}
	}
	h.Set(ClientIDHeader, c.clientID)

	ws, resp, err := c.dialer.DialContext(ctx, c.url, h)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	ws.SetReadLimit(c.readLimit)
	c.log.Info(ctx, "connected", "url", c.url)
	return ws, nil
}

func (c *WSChannel) readPump(ctx context.Context, ws *websocket.Conn, fn func(context.Context, []byte)) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = ws.Close()
		case <-done:
		}
	}()
	defer ws.Close()

	for {
		kind, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errors.New("closed by server")
			}
			return err
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		fn(ctx, data)
	}
}
