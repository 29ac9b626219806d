package state

import (
	"context"

	"github.com/dmitrijs2005/peermirror/internal/client/models"
)

// SetPeers replaces the whole directory with peers. When a session user is
// set and peers does not contain it, the current record of that user is
// appended so the local user never disappears from its own directory.
//
// Later duplicates in peers win over earlier ones.
func (s *Store) SetPeers(ctx context.Context, peers []models.Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var self *models.Peer
	if s.selfID != "" {
		if i, ok := s.index[s.selfID]; ok {
			p := s.peers[i]
			self = &p
		}
	}

	next := make([]models.Peer, 0, len(peers)+1)
	index := make(map[string]int, len(peers)+1)
	for _, p := range peers {
		if p.ID == "" {
			s.log.Warn(ctx, "peer without id skipped")
			continue
		}
		p = p.Clone()
		if i, ok := index[p.ID]; ok {
			next[i] = p
			continue
		}
		index[p.ID] = len(next)
		next = append(next, p)
	}

	if self != nil {
		if _, ok := index[self.ID]; !ok {
			index[self.ID] = len(next)
			next = append(next, *self)
		}
	}

	s.peers = next
	s.index = index
}

// Upsert inserts peer or, when one with the same id exists, replaces it
// wholesale. Fields are not merged: a record without connections replaces a
// record with connections and those connections are gone.
func (s *Store) Upsert(ctx context.Context, peer models.Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(ctx, peer)
}

// ReplaceIdentity has the same wholesale contract as Upsert. It is used to
// bring the session user's own entry up to date after authentication.
func (s *Store) ReplaceIdentity(ctx context.Context, peer models.Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(ctx, peer)
}

func (s *Store) upsertLocked(ctx context.Context, peer models.Peer) {
	if peer.ID == "" {
		s.log.Warn(ctx, "peer without id skipped")
		return
	}
	peer = peer.Clone()

	i, ok := s.index[peer.ID]
	if !ok {
		s.index[peer.ID] = len(s.peers)
		s.peers = append(s.peers, peer)
		return
	}

	if old := s.peers[i]; len(old.Connections) > 0 && len(peer.Connections) == 0 {
		s.log.Warn(ctx, "peer replaced wholesale",
			"peer_id", peer.ID, "dropped_connections", len(old.Connections))
	}
	s.peers[i] = peer
}

// Remove deletes the peer with the given id. Unknown ids are ignored. The
// session user's own entry is kept.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return
	}
	if id == s.selfID {
		s.log.Warn(ctx, "refusing to remove session user", "peer_id", id)
		return
	}

	s.peers = append(s.peers[:i], s.peers[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.peers); j++ {
		s.index[s.peers[j].ID] = j
	}
}

// Find returns a copy of the peer with the given id.
func (s *Store) Find(id string) (models.Peer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return models.Peer{}, false
	}
	return s.peers[i].Clone(), true
}

// FindMany returns copies of the peers whose ids are in ids, in directory
// order. Unknown ids are skipped.
func (s *Store) FindMany(ids []string) []models.Peer {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Peer, 0, len(want))
	for _, p := range s.peers {
		if _, ok := want[p.ID]; ok {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Peers returns a copy of the whole directory in insertion order.
func (s *Store) Peers() []models.Peer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Peer, len(s.peers))
	for i, p := range s.peers {
		out[i] = p.Clone()
	}
	return out
}

// Len returns the number of peers in the directory.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}
