/*
Package sqlite provides a SQLite-backed SnapshotStore.

PURPOSE:
  Durable storage for the application snapshot on the single machine the
  point of sale runs on. This is the default driver.

KEY TABLES:
  app_snapshot:   Exactly one row (id = 1) holding the latest snapshot JSON.
                  Overwritten on every Save.
  snapshot_audit: Append-only. One row per Save with sizes and counts, used
                  to answer "when was this last written and how big was it".

ATOMICITY:
  The snapshot upsert and its audit row are written in one transaction.

WAL MODE:
  Opened with WAL so readers don't block the writer.

USAGE:
  s, err := sqlite.New("./taproom.db")
  if err != nil {
      log.Fatal(err)
  }
  defer s.Close()

SEE ALSO:
  - store/store.go: Interface and codec
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dongoyo/taproom/ledger"
	"github.com/dongoyo/taproom/store"
)

// Store implements store.SnapshotStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Auditor = (*Store)(nil)

// New opens (and migrates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS app_snapshot (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		payload TEXT NOT NULL,
		saved_at TEXT NOT NULL
	);

	-- Append-only: no UPDATE or DELETE is ever issued against this table
	CREATE TABLE IF NOT EXISTS snapshot_audit (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		saved_at TEXT NOT NULL,
		sales_count INTEGER NOT NULL,
		logs_count INTEGER NOT NULL,
		bytes INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshot_audit_saved_at
		ON snapshot_audit(saved_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOT STORE (store.SnapshotStore interface)
// =============================================================================

// Load returns the latest snapshot.
func (s *Store) Load(ctx context.Context) (*ledger.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM app_snapshot WHERE id = 1").Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return store.Decode([]byte(payload))
}

// Save overwrites the snapshot and appends an audit row.
func (s *Store) Save(ctx context.Context, state *ledger.State) error {
	payload, err := store.Encode(state)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO app_snapshot (id, payload, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
	`, string(payload), now)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO snapshot_audit (saved_at, sales_count, logs_count, bytes)
		VALUES (?, ?, ?, ?)
	`, now, len(state.Sales), len(state.Logs), len(payload))
	if err != nil {
		return fmt.Errorf("failed to append snapshot audit: %w", err)
	}

	return sqlTx.Commit()
}

// =============================================================================
// AUDIT
// =============================================================================

// AuditTrail returns the most recent audit rows, newest first.
func (s *Store) AuditTrail(ctx context.Context, limit int) ([]store.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, saved_at, sales_count, logs_count, bytes
		FROM snapshot_audit
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot audit: %w", err)
	}
	defer rows.Close()

	var records []store.AuditRecord
	for rows.Next() {
		var (
			r       store.AuditRecord
			savedAt string
		)
		if err := rows.Scan(&r.ID, &savedAt, &r.SalesCount, &r.LogsCount, &r.Bytes); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot audit: %w", err)
		}
		r.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse snapshot audit %d saved_at %q: %w", r.ID, savedAt, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
