package state

import (
	"context"
	"errors"
	"maps"

	"github.com/dmitrijs2005/peermirror/internal/client/models"
)

var (
	// ErrStaleSession is returned when a result is applied for a session
	// generation that has since been cleared.
	ErrStaleSession = errors.New("stale session")

	// ErrNoUser is returned when an auth result carries no user id.
	ErrNoUser = errors.New("auth result without user")
)

// Session is a snapshot of the local session.
type Session struct {
	// User is the session user's directory record, nil while unresolved.
	User *models.Peer

	Token string

	// OAuth is the external identity profile, nil when none was supplied.
	OAuth *models.Profile

	// Menu holds UI toggles. They play no part in synchronization.
	Menu map[string]bool
}

func defaultMenu() map[string]bool {
	return map[string]bool{"members": true}
}

// Generation returns the current session generation. It changes whenever
// the session is cleared, so a request started under one generation can
// detect that a logout happened before its response arrived.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// StoreSession records a successful authentication: token, user and, when
// present, the OAuth profile. The user is inserted into the directory if it
// is not there yet; an existing entry is left as is (use ReplaceIdentity to
// refresh it).
//
// gen must be the value of Generation taken before the request was issued;
// if the session was cleared since, nothing is changed and ErrStaleSession
// is returned.
func (s *Store) StoreSession(ctx context.Context, gen uint64, res models.AuthResult) error {
	if res.User == nil || res.User.ID == "" {
		return ErrNoUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return ErrStaleSession
	}

	s.token = res.Token
	s.selfID = res.User.ID
	if res.OAuth != nil {
		p := res.OAuth.Clone()
		s.oauth = &p
	}

	if _, ok := s.index[s.selfID]; !ok {
		s.upsertLocked(ctx, *res.User)
	}
	return nil
}

// SetPartialSession records a token whose user is not resolved yet. Any
// previously resolved user reference is dropped.
func (s *Store) SetPartialSession(gen uint64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return ErrStaleSession
	}
	s.token = token
	s.selfID = ""
	return nil
}

// ClearSession unsets user, token and OAuth profile and starts a new
// generation. The directory is not touched.
func (s *Store) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selfID = ""
	s.token = ""
	s.oauth = nil
	s.gen++
}

// ToggleMenu flips the named UI toggle and returns its new value.
func (s *Store) ToggleMenu(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.menu[name] = !s.menu[name]
	return s.menu[name]
}

// Token returns the session token, "" when unset.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Snapshot returns a copy of the session.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Session {
	out := Session{Token: s.token, Menu: maps.Clone(s.menu)}
	if s.selfID != "" {
		if i, ok := s.index[s.selfID]; ok {
			p := s.peers[i].Clone()
			out.User = &p
		}
	}
	if s.oauth != nil {
		p := s.oauth.Clone()
		out.OAuth = &p
	}
	return out
}

// View is a copy of the directory and the session taken in one step.
type View struct {
	Peers   []models.Peer
	Session Session
}

// View returns directory and session as of a single point in time.
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	peers := make([]models.Peer, len(s.peers))
	for i, p := range s.peers {
		peers[i] = p.Clone()
	}
	return View{Peers: peers, Session: s.snapshotLocked()}
}
