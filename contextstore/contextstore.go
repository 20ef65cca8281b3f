// Package contextstore provides the per-session append-only chat message
// log that the step loop reads from and writes to. Two implementations
// share one contract: an in-memory store and a file-backed store with
// batched write-behind persistence.
package contextstore

import (
	"context"

	"trpc.group/trpc-go/trpc-agentrt-go/model"
)

// Store is a per-session append-only log of chat messages.
//
// Invariant: Get reflects every prior Add call for the same session id;
// ordering is insertion order. Get returns a copy of the message slice, so
// callers may append to it or replace its elements without affecting the
// persisted log. Slices inside each message (Blocks, ToolCalls) are shared
// with the log, which is why the overflow manager deep-copies before editing.
type Store interface {
	// Add appends messages to a session's log, in order.
	Add(ctx context.Context, sessionID string, messages []model.Message) error

	// Get returns a snapshot copy of every message added to sessionID so far.
	Get(ctx context.Context, sessionID string) ([]model.Message, error)

	// Close releases any resources (open files, background flush loop).
	Close() error
}
