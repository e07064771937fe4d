// Package cli provides the interactive reminder command-line client.
//
// It wires configuration, the local SQLite store, the REST client, and an
// interactive REPL. Every command works offline; an authenticated session
// additionally mirrors changes to the backend.
//
// Key commands:
//   - register / login / logout / whoami
//   - add / edit / delete reminders
//   - list reminders (syncs first when signed in)
//   - sync with the server on demand
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// A background monitor additionally syncs whenever the app reports an
// active-state transition.
package cli
