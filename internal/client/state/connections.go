package state

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/peermirror/internal/client/models"
)

const (
	opPush = "push"
	opPull = "pull"
)

// AddConnections attaches each connection to the peer named by its User
// field. Events are applied in order and independently: an unknown peer is
// reported as an Anomaly and does not stop the rest. Adding a connection id
// the peer already has is a no-op.
func (s *Store) AddConnections(ctx context.Context, conns ...models.Connection) {
	s.mu.Lock()
	var anomalies []Anomaly
	for _, c := range conns {
		if a, ok := s.addLocked(c.User, c); !ok {
			anomalies = append(anomalies, a)
		}
	}
	s.mu.Unlock()

	s.report(ctx, anomalies)
}

// AddConnection attaches conn to the peer peerID.
func (s *Store) AddConnection(ctx context.Context, peerID string, conn models.Connection) {
	s.mu.Lock()
	a, ok := s.addLocked(peerID, conn)
	s.mu.Unlock()

	if !ok {
		s.report(ctx, []Anomaly{a})
	}
}

// RemoveConnections detaches each connection from the peer named by its User
// field, with the same per-event independence as AddConnections. Removing a
// connection the peer does not have is a no-op.
func (s *Store) RemoveConnections(ctx context.Context, conns ...models.Connection) {
	s.mu.Lock()
	var anomalies []Anomaly
	for _, c := range conns {
		if a, ok := s.removeLocked(c.User, c.ID); !ok {
			anomalies = append(anomalies, a)
		}
	}
	s.mu.Unlock()

	s.report(ctx, anomalies)
}

// RemoveConnection detaches connID from the peer peerID.
func (s *Store) RemoveConnection(ctx context.Context, peerID, connID string) {
	s.mu.Lock()
	a, ok := s.removeLocked(peerID, connID)
	s.mu.Unlock()

	if !ok {
		s.report(ctx, []Anomaly{a})
	}
}

func (s *Store) addLocked(peerID string, conn models.Connection) (Anomaly, bool) {
	i, found := s.index[peerID]
	if !found {
		return Anomaly{Kind: AnomalyPeerNotFound, Op: opPush, PeerID: peerID, ConnectionID: conn.ID}, false
	}

	p := &s.peers[i]
	if p.HasConnection(conn.ID) {
		return Anomaly{}, true
	}
	conn = conn.Clone()
	conn.User = peerID
	p.Connections = append(p.Connections, conn)
	return Anomaly{}, true
}

func (s *Store) removeLocked(peerID, connID string) (Anomaly, bool) {
	i, found := s.index[peerID]
	if !found {
		return Anomaly{Kind: AnomalyPeerNotFound, Op: opPull, PeerID: peerID, ConnectionID: connID}, false
	}

	p := &s.peers[i]
	p.Connections = slices.DeleteFunc(p.Connections, func(c models.Connection) bool {
		return c.ID == connID
	})
	return Anomaly{}, true
}
