// Package cli provides the interactive peermirror command-line client.
//
// It wires configuration, local storage, the REST API client, the websocket
// event channel and the services around one state.Store, then runs a REPL.
// Typical flow: restore the persisted session (me), subscribe to connection
// events in the background and execute user commands.
//
// Key features:
//   - Register / Activate / Reset / Login / Logout
//   - Update username and password
//   - Refresh the peer directory and fetch single peers
//   - Online status, room-based visibility and session details
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
