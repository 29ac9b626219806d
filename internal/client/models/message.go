package models

import "encoding/json"

// Message is one decoded payload from the event channel. Either field may be
// absent; a single message may carry both.
type Message struct {
	Push []PushEntry `json:"push,omitempty"`
	Pull []PullEntry `json:"pull,omitempty"`
}

// PushEntry announces a new connection for a peer.
type PushEntry struct {
	ConnectionID string          `json:"connectionId"`
	UserID       string          `json:"userId"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// Connection converts the entry into the record stored on the peer.
func (e PushEntry) Connection() Connection {
	return Connection{ID: e.ConnectionID, User: e.UserID, Metadata: e.Metadata}
}

// PullEntry announces that a connection went away.
type PullEntry struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
}

// Connection converts the entry into a connection reference.
func (e PullEntry) Connection() Connection {
	return Connection{ID: e.ConnectionID, User: e.UserID}
}
