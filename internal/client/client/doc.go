// Package client contains the client-side building blocks that talk to the
// outside world.
//
// # Overview
//
// The package provides:
//  1. The remote API contract (see the Client interface): the authentication
//     family (Register, Activate, Reset, UpdateUsername, UpdatePassword,
//     Login, Me) and the peer queries (GetPeers, GetPeer).
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that injects the
//     bearer token of the current session, tags every request with an
//     X-Request-Id and maps HTTP failures to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound. Any other non-2xx
// response is an *APIError.
//
// All operations accept context.Context and honor cancellation.
package client
