package state

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/peermirror/internal/client/models"
	"github.com/dmitrijs2005/peermirror/internal/logging"
)

// recLogger records warning messages for assertions.
type recLogger struct {
	mu    sync.Mutex
	warns []string
}

func (r *recLogger) Debug(context.Context, string, ...any) {}
func (r *recLogger) Info(context.Context, string, ...any)  {}
func (r *recLogger) Error(context.Context, string, ...any) {}
func (r *recLogger) Warn(_ context.Context, msg string, _ ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warns = append(r.warns, msg)
}
func (r *recLogger) With(...any) logging.Logger { return r }

func (r *recLogger) warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warns...)
}

func peer(id string, conns ...string) models.Peer {
	p := models.Peer{ID: id, Username: "user-" + id}
	for _, c := range conns {
		p.Connections = append(p.Connections, models.Connection{ID: c, User: id})
	}
	return p
}

func ids(peers []models.Peer) []string {
	out := make([]string, len(peers))
	for i, p := range peers {
		out[i] = p.ID
	}
	return out
}

func connIDs(p models.Peer) []string {
	out := make([]string, len(p.Connections))
	for i, c := range p.Connections {
		out[i] = c.ID
	}
	return out
}

// newSessionStore returns a store with an established session for self.
func newSessionStore(self models.Peer, opts ...Option) *Store {
	s := NewStore(opts...)
	if err := s.StoreSession(context.Background(), s.Generation(), models.AuthResult{User: &self, Token: "tok"}); err != nil {
		panic(err)
	}
	return s
}
