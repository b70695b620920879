/*
Package session owns the current application snapshot for one operator
session and layers persistence around the pure ledger functions.

REQUEST FLOW:
  1. Take the writer lock (one mutation in flight at a time)
  2. Compute the next state with the ledger (no I/O)
  3. Swap the current pointer
  4. Hand the new snapshot to the store

PERSISTENCE FAILURES:
  A failed Save is logged and does not undo the mutation. The next
  successful Save writes the complete snapshot.

READS:
  State() returns the current *ledger.State. Snapshots are never modified
  after they are published, so readers need no lock beyond the pointer load.

SEE ALSO:
  - ledger/ledger.go: The state transitions
  - store/store.go: SnapshotStore
*/
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dongoyo/taproom/catalog"
	"github.com/dongoyo/taproom/ledger"
	"github.com/dongoyo/taproom/store"
)

type Session struct {
	writeMu sync.Mutex
	current atomic.Pointer[ledger.State]

	ledger *ledger.Ledger
	store  store.SnapshotStore
	log    zerolog.Logger
}

// Open loads the last snapshot from st. A missing or corrupt snapshot starts
// from the zero state (corruption is logged). Any other load failure is
// returned.
func Open(ctx context.Context, l *ledger.Ledger, st store.SnapshotStore, log zerolog.Logger) (*Session, error) {
	s := &Session{ledger: l, store: st, log: log}

	state, err := st.Load(ctx)
	switch {
	case err == nil:
		log.Info().
			Int("sales", len(state.Sales)).
			Int("logs", len(state.Logs)).
			Msg("snapshot restored")
	case errors.Is(err, store.ErrNotFound):
		log.Info().Msg("no snapshot found, starting empty")
		state = ledger.NewState()
	case errors.Is(err, store.ErrCorruptSnapshot):
		log.Error().Err(err).Msg("stored snapshot unreadable, starting empty")
		state = ledger.NewState()
	default:
		return nil, err
	}

	s.current.Store(state)
	return s, nil
}

// State returns the current snapshot. Do not modify it.
func (s *Session) State() *ledger.State {
	return s.current.Load()
}

// RecordSale applies a sale. An empty item list returns the current state
// and records nothing.
func (s *Session) RecordSale(ctx context.Context, agency catalog.AgencyID, items []ledger.SaleItem) (*ledger.State, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev := s.current.Load()
	next, err := s.ledger.RecordSale(prev, agency, items)
	if err != nil {
		return nil, err
	}
	if next == prev {
		return prev, nil
	}

	s.publish(ctx, next)

	sale := next.Sales[len(next.Sales)-1]
	s.log.Info().
		Str("sale_id", sale.ID).
		Str("agency", string(agency)).
		Int("units", sale.Units()).
		Msg("sale recorded")
	for _, alert := range ledger.Oversold(next.Inventory) {
		s.log.Warn().
			Str("kind", string(alert.Kind)).
			Str("id", alert.ID).
			Int("count", alert.Count).
			Msg("stock below zero")
	}
	return next, nil
}

// AdjustInventory replaces all counts with the operator's values.
func (s *Session) AdjustInventory(ctx context.Context, editor string, products map[catalog.ProductID]int, supplies map[catalog.SupplyID]int) (*ledger.State, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next, err := s.ledger.AdjustInventory(s.current.Load(), editor, products, supplies)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, next)
	s.log.Info().
		Str("editor", editor).
		Str("changes", next.Logs[0].Description).
		Msg("inventory adjusted")
	return next, nil
}

// Clear resets everything to the zero state. Confirmation is the caller's job.
func (s *Session) Clear(ctx context.Context) *ledger.State {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev := s.current.Load()
	next := s.ledger.Clear()
	s.publish(ctx, next)
	s.log.Warn().
		Int("sales_dropped", len(prev.Sales)).
		Int("logs_dropped", len(prev.Logs)).
		Msg("all data cleared")
	return next
}

// publish swaps in next and saves it. Called with writeMu held.
func (s *Session) publish(ctx context.Context, next *ledger.State) {
	s.current.Store(next)
	if err := s.store.Save(ctx, next); err != nil {
		s.log.Error().Err(err).Msg("snapshot save failed")
	}
}
