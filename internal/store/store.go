// Package store persists finished session records. Domain and CLI code use
// only the Store interface; the implementation is SQLite or in-memory.
package store

import (
	"context"

	"prescreen/internal/session"
)

// DefaultDBPath is the default relative path for the SQLite DB
// (per-workspace). Open() creates the parent dir.
const DefaultDBPath = ".prescreen/prescreen.db"

// Store is the persistence facade for session results. Record satisfies the
// controller's result sink; the query methods serve the results CLI.
type Store interface {
	// Record durably stores one finished session. Called once per session;
	// a repeated call ID replaces the earlier record.
	Record(ctx context.Context, rec *session.Record) error
	// Get returns the record for a call ID, or nil when absent.
	Get(ctx context.Context, callID string) (*session.Record, error)
	// List returns all records, most recent first.
	List(ctx context.Context) ([]*session.Record, error)
	// ListByOutcome returns records with the given terminal outcome, most
	// recent first.
	ListByOutcome(ctx context.Context, outcome session.Outcome) ([]*session.Record, error)

	Close() error
}
