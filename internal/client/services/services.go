// Package services holds the application services of the peermirror client:
// the session service (authentication family and logout) and the query
// service that refreshes the peer directory.
//
// Services issue one remote request per call and apply its result to the
// local state in a single step once it resolves. Failures never mutate
// state; they are forwarded to the ErrorSink.
package services

import (
	"context"

	"github.com/dmitrijs2005/peermirror/internal/client/models"
)

// Response is what every service operation returns. HasError lets callers
// branch on the outcome; the error itself has already gone to the sink.
type Response[T any] struct {
	Result   T
	HasError bool
}

// ErrorSink receives failures and user-facing notices.
type ErrorSink interface {
	Error(ctx context.Context, err error)
	Success(ctx context.Context, msg string)
}

// TokenStore persists the session token.
type TokenStore interface {
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string, secure bool) error
	Clear(ctx context.Context) error
}

// RoomResetter is the part of the room store that logout resets.
type RoomResetter interface {
	SetRooms(rooms []models.Room)
	SetRoom(room *models.Room)
}

// SoundPlayer plays a named sound cue.
type SoundPlayer interface {
	Play(ctx context.Context, name string)
}

// SessionState is the session half of the local state.
type SessionState interface {
	Generation() uint64
	StoreSession(ctx context.Context, gen uint64, res models.AuthResult) error
	SetPartialSession(gen uint64, token string) error
	ClearSession()
	ReplaceIdentity(ctx context.Context, peer models.Peer)
}

// Directory is the peer directory half of the local state.
type Directory interface {
	SetPeers(ctx context.Context, peers []models.Peer)
	Upsert(ctx context.Context, peer models.Peer)
}
