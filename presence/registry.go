// Package presence maps a user id to its live session handle. It is the
// source of truth for "is this user reachable right now": a resolve miss
// means deliver nothing, never an error.
package presence

import "context"

// Registry semantics are last-writer-wins. A second connection from the same
// user silently supersedes the first session's addressability; explicit
// Unregister clears it. Transport-level disconnects are not observed here,
// only the explicit end event unregisters.
type Registry interface {
	Register(ctx context.Context, userID, sessionID string) error
	// Resolve returns the live session handle, or ok=false when the user
	// never connected or has gone offline.
	Resolve(ctx context.Context, userID string) (sessionID string, ok bool, err error)
	Unregister(ctx context.Context, userID string) error
}
