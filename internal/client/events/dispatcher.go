// Package events turns raw channel messages into connection index updates.
//
// Every decoded message goes through the push stage and then the pull
// stage. Both always run; each does nothing when its part of the message is
// absent. The order is fixed, so a message that adds and removes the same
// connection leaves it removed.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/peermirror/internal/client/models"
	"github.com/dmitrijs2005/peermirror/internal/logging"
)

var (
	// ErrParse wraps decode failures of inbound messages.
	ErrParse = errors.New("parse error")

	// ErrAlreadySubscribed is returned by a second Subscribe call.
	ErrAlreadySubscribed = errors.New("already subscribed")
)

// Sounds played when a message carries connection changes.
const (
	SoundConnectionPush = "connection_push"
	SoundConnectionPull = "connection_pull"
)

// Channel delivers raw messages one at a time. Listen blocks until ctx is
// done or the channel gives up, calling fn for each message in order.
type Channel interface {
	Listen(ctx context.Context, fn func(ctx context.Context, raw []byte)) error
}

// ConnectionIndex is the write side the stages feed.
type ConnectionIndex interface {
	AddConnections(ctx context.Context, conns ...models.Connection)
	RemoveConnections(ctx context.Context, conns ...models.Connection)
}

// SoundPlayer is notified about connection changes.
type SoundPlayer interface {
	Play(ctx context.Context, name string)
}

// State of a Dispatcher.
type State int32

const (
	StateIdle State = iota
	StateSubscribed
)

func (s State) String() string {
	if s == StateSubscribed {
		return "subscribed"
	}
	return "idle"
}

type stage func(ctx context.Context, msg *models.Message)

// Dispatcher routes channel messages to a ConnectionIndex.
type Dispatcher struct {
	index        ConnectionIndex
	log          logging.Logger
	sound        SoundPlayer
	onParseError func(error)
	state        atomic.Int32
	stages       []stage
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(l logging.Logger) Option {
	return func(d *Dispatcher) { d.log = l.With("module", "events") }
}

// WithParseErrorHandler observes messages dropped because they could not be
// decoded. The error wraps ErrParse.
func WithParseErrorHandler(fn func(error)) Option {
	return func(d *Dispatcher) { d.onParseError = fn }
}

func WithSoundPlayer(p SoundPlayer) Option {
	return func(d *Dispatcher) { d.sound = p }
}

func NewDispatcher(index ConnectionIndex, opts ...Option) *Dispatcher {
	d := &Dispatcher{index: index, log: logging.Nop()}
	for _, o := range opts {
		o(d)
	}
	d.stages = []stage{d.push, d.pull}
	return d
}

// State reports whether Subscribe has been called.
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Subscribe attaches the dispatcher to ch and processes messages until
// Listen returns. It can be called once; the dispatcher stays subscribed
// afterwards.
func (d *Dispatcher) Subscribe(ctx context.Context, ch Channel) error {
	if !d.state.CompareAndSwap(int32(StateIdle), int32(StateSubscribed)) {
		return ErrAlreadySubscribed
	}
	d.log.Info(ctx, "subscribed to channel")
	return ch.Listen(ctx, d.Handle)
}

// Handle decodes one raw message and runs it through both stages. Malformed
// messages are dropped without touching the index.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) {
	var msg models.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		perr := fmt.Errorf("%w: %v", ErrParse, err)
		d.log.Warn(ctx, "dropping malformed message", "err", perr, "size", len(raw))
		if d.onParseError != nil {
			d.onParseError(perr)
		}
		return
	}

	for _, run := range d.stages {
		run(ctx, &msg)
	}
}

func (d *Dispatcher) push(ctx context.Context, msg *models.Message) {
	if len(msg.Push) == 0 {
		return
	}
	conns := make([]models.Connection, 0, len(msg.Push))
	for _, e := range msg.Push {
		if e.ConnectionID == "" {
			d.log.Warn(ctx, "push entry without connection id", "peer_id", e.UserID)
			continue
		}
		conns = append(conns, e.Connection())
	}
	if len(conns) == 0 {
		return
	}
	d.index.AddConnections(ctx, conns...)
	d.play(ctx, SoundConnectionPush)
}

func (d *Dispatcher) pull(ctx context.Context, msg *models.Message) {
	if len(msg.Pull) == 0 {
		return
	}
	conns := make([]models.Connection, 0, len(msg.Pull))
	for _, e := range msg.Pull {
		if e.ConnectionID == "" {
			d.log.Warn(ctx, "pull entry without connection id", "peer_id", e.UserID)
			continue
		}
		conns = append(conns, e.Connection())
	}
	if len(conns) == 0 {
		return
	}
	d.index.RemoveConnections(ctx, conns...)
	d.play(ctx, SoundConnectionPull)
}

func (d *Dispatcher) play(ctx context.Context, name string) {
	if d.sound != nil {
		d.sound.Play(ctx, name)
	}
}
