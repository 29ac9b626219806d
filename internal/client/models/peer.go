// Package models defines client-side data models shared by the directory,
// the event pipeline and the remote API client.
package models

import (
	"encoding/json"
	"slices"
)

// Peer is a locally cached profile of a remote user together with the set of
// connections that user currently holds.
type Peer struct {
	// ID is the opaque unique identifier assigned by the server.
	ID string

	// Username is empty until the account picked one.
	Username string

	// AvatarURL references the avatar image, if any.
	AvatarURL string

	// IsActive reports whether the account has been activated.
	IsActive bool

	// Connections holds the peer's live connections. Identifiers are unique
	// within one peer.
	Connections []Connection

	// Extra keeps every profile field the client does not interpret, so a
	// record survives a decode/encode round trip unchanged.
	Extra map[string]json.RawMessage
}

// peerWire is the JSON shape of a peer as served by the API.
type peerWire struct {
	ID          string       `json:"_id"`
	Username    string       `json:"username,omitempty"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	IsActive    bool         `json:"is_active"`
	Connections []Connection `json:"connections"`
}

var peerKnownFields = []string{"_id", "username", "avatar_url", "is_active", "connections"}

func (p *Peer) UnmarshalJSON(data []byte) error {
	var w peerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	extra, err := extraFields(data, peerKnownFields)
	if err != nil {
		return err
	}
	*p = Peer{
		ID:          w.ID,
		Username:    w.Username,
		AvatarURL:   w.AvatarURL,
		IsActive:    w.IsActive,
		Connections: w.Connections,
		Extra:       extra,
	}
	return nil
}

func (p Peer) MarshalJSON() ([]byte, error) {
	conns := p.Connections
	if conns == nil {
		conns = []Connection{}
	}
	return mergeExtra(peerWire{
		ID:          p.ID,
		Username:    p.Username,
		AvatarURL:   p.AvatarURL,
		IsActive:    p.IsActive,
		Connections: conns,
	}, p.Extra)
}

// HasConnection reports whether a connection with the given id is attached.
func (p *Peer) HasConnection(id string) bool {
	return slices.ContainsFunc(p.Connections, func(c Connection) bool { return c.ID == id })
}

// Online reports whether the peer holds at least one connection.
func (p *Peer) Online() bool {
	return len(p.Connections) > 0
}

// Clone returns a deep copy of p.
func (p Peer) Clone() Peer {
	out := p
	if p.Connections != nil {
		out.Connections = make([]Connection, len(p.Connections))
		for i, c := range p.Connections {
			out.Connections[i] = c.Clone()
		}
	}
	out.Extra = cloneRaw(p.Extra)
	return out
}

// Connection is one live link belonging to a peer.
type Connection struct {
	ID string `json:"_id"`

	// User is the identifier of the owning peer.
	User string `json:"user"`

	// Metadata is carried through untouched.
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// Clone returns a deep copy of c.
func (c Connection) Clone() Connection {
	if c.Metadata != nil {
		c.Metadata = slices.Clone(c.Metadata)
	}
	return c
}

// Profile is the external identity (OAuth) profile attached to a session.
type Profile struct {
	AvatarURL string
	Extra     map[string]json.RawMessage
}

type profileWire struct {
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (p *Profile) UnmarshalJSON(data []byte) error {
	var w profileWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	extra, err := extraFields(data, []string{"avatar_url"})
	if err != nil {
		return err
	}
	*p = Profile{AvatarURL: w.AvatarURL, Extra: extra}
	return nil
}

func (p Profile) MarshalJSON() ([]byte, error) {
	return mergeExtra(profileWire{AvatarURL: p.AvatarURL}, p.Extra)
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	p.Extra = cloneRaw(p.Extra)
	return p
}

// AuthResult is the success payload of every authentication-family call.
type AuthResult struct {
	User  *Peer    `json:"user"`
	Token string   `json:"token"`
	OAuth *Profile `json:"oauth,omitempty"`
}

func extraFields(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func mergeExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return b, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := m[k]; !ok {
			m[k] = raw
		}
	}
	return json.Marshal(m)
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}
