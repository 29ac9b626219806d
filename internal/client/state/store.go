package state

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/peermirror/internal/client/models"
	"github.com/dmitrijs2005/peermirror/internal/logging"
)

// AnomalyKind classifies a tolerated inconsistency in inbound data.
type AnomalyKind string

const (
	// AnomalyPeerNotFound is raised when a connection event names a peer
	// that is not in the directory yet.
	AnomalyPeerNotFound AnomalyKind = "peer_not_found"
)

// Anomaly describes one skipped event.
type Anomaly struct {
	Kind         AnomalyKind
	Op           string
	PeerID       string
	ConnectionID string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for anomaly and replacement warnings.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l.With("module", "state") }
}

// WithAnomalyHandler registers fn to observe anomalies. fn is called after
// the step that produced them has released the store lock.
func WithAnomalyHandler(fn func(Anomaly)) Option {
	return func(s *Store) { s.onAnomaly = fn }
}

// Store is the explicit context object shared by every writer and reader of
// the mirror.
type Store struct {
	mu sync.Mutex

	peers []models.Peer
	index map[string]int

	selfID string
	token  string
	oauth  *models.Profile
	menu   map[string]bool
	gen    uint64

	log       logging.Logger
	onAnomaly func(Anomaly)
}

// NewStore returns an empty store with no session.
func NewStore(opts ...Option) *Store {
	s := &Store{
		index: make(map[string]int),
		menu:  defaultMenu(),
		log:   logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) report(ctx context.Context, anomalies []Anomaly) {
	for _, a := range anomalies {
		s.log.Warn(ctx, "peer not found",
			"op", a.Op, "peer_id", a.PeerID, "connection_id", a.ConnectionID)
		if s.onAnomaly != nil {
			s.onAnomaly(a)
		}
	}
}
