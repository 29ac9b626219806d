// Package state holds the client-local mirror of the peer directory, the
// per-peer connection sets and the local session.
//
// # Model
//
// A Store is the single writer for all of it. Every exported mutating method
// is one atomic step taken under the store mutex; no two steps interleave.
// Callers perform network I/O outside the store and apply results afterwards
// in a single call.
//
// # Invariants
//
// After every step:
//   - no two peers share an identifier;
//   - if a session user is set, the directory holds a peer with that id;
//   - connection identifiers are unique within one peer;
//   - a connection is never stored for a peer that is not in the directory.
//
// Events that reference unknown peers are reported as an Anomaly and skipped.
//
// Read methods return deep copies. Nothing returned by a Store aliases its
// internal state.
package state
