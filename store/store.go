/*
Package store defines the persistence contract for application snapshots.

PURPOSE:
  The ledger performs no I/O. After every successful mutation the new
  *ledger.State is handed to a SnapshotStore, and at start-up the last
  saved snapshot is loaded back.

SNAPSHOTS, NOT DIFFS:
  Save always writes the complete state. Recovery is "load the last
  snapshot", nothing to replay.

FAILURE MODES:
  ErrNotFound:        nothing has been saved yet, start from the zero state
  ErrCorruptSnapshot: stored bytes could not be decoded or reference ids
                      the catalog no longer knows

IMPLEMENTATIONS:
  - store/memory:   In-memory (tests/dev)
  - store/sqlite:   SQLite file, the default
  - store/redis:    Redis key
  - store/postgres: PostgreSQL jsonb row

SEE ALSO:
  - session/session.go: Calls Load once and Save after each mutation
*/
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dongoyo/taproom/ledger"
)

var (
	// ErrNotFound is returned by Load when no snapshot has been saved.
	ErrNotFound = errors.New("snapshot not found")

	// ErrCorruptSnapshot is returned by Load when stored data is unusable.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// SnapshotStore persists complete application snapshots.
type SnapshotStore interface {
	// Load returns the last saved snapshot, validated and normalized.
	Load(ctx context.Context) (*ledger.State, error)

	// Save replaces the stored snapshot with s.
	Save(ctx context.Context, s *ledger.State) error

	Close() error
}

// AuditRecord describes one past Save.
type AuditRecord struct {
	ID         int64     `json:"id"`
	SavedAt    time.Time `json:"saved_at"`
	SalesCount int       `json:"sales_count"`
	LogsCount  int       `json:"logs_count"`
	Bytes      int       `json:"bytes"`
}

// Auditor is implemented by stores that keep a history of saves.
type Auditor interface {
	AuditTrail(ctx context.Context, limit int) ([]AuditRecord, error)
}

// =============================================================================
// CODEC - shared by every driver
// =============================================================================

// Encode serializes a snapshot.
func Encode(s *ledger.State) ([]byte, error) {
	if s == nil {
		return nil, errors.New("encode snapshot: nil state")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return payload, nil
}

// Decode parses and validates a snapshot. Every failure wraps
// ErrCorruptSnapshot.
func Decode(payload []byte) (*ledger.State, error) {
	var s ledger.State
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	restored, err := ledger.Restore(&s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return restored, nil
}
