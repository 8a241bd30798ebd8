// Package checkpoint provides the run journal: an append-only record of
// the state produced by every node of a graph run.
package checkpoint

import (
	"context"
	"errors"
	"time"
)

// Store persists journal entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds an entry to a run's journal.
	// Returns ErrDuplicateSequence if the run already has an entry with
	// the same sequence number.
	Append(ctx context.Context, rec Record) error

	// Load retrieves the payload of one entry.
	// Returns ErrNotFound if the entry doesn't exist.
	Load(ctx context.Context, runID string, sequence int) ([]byte, error)

	// List returns entry metadata for a run, ordered by sequence.
	// Returns an empty slice (not error) if the run has no entries.
	List(ctx context.Context, runID string) ([]Info, error)

	// DeleteRun removes a run's journal.
	// Returns nil if the run has no entries.
	DeleteRun(ctx context.Context, runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Record is one entry to append.
type Record struct {
	RunID    string
	NodeID   string
	Sequence int
	Data     []byte
}

// Info provides metadata without loading the payload.
type Info struct {
	RunID     string
	NodeID    string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for journal operations.
var (
	// ErrNotFound indicates an entry doesn't exist.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")

	// ErrDuplicateSequence indicates the run already has an entry with
	// that sequence number.
	ErrDuplicateSequence = errors.New("duplicate checkpoint sequence")

	// ErrInvalidRecord indicates a record without a run ID or with a
	// non-positive sequence.
	ErrInvalidRecord = errors.New("invalid checkpoint record")
)

func validate(rec Record) error {
	if rec.RunID == "" || rec.Sequence < 1 {
		return ErrInvalidRecord
	}
	return nil
}
