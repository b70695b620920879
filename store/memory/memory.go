// Package memory provides an in-memory SnapshotStore.
package memory

import (
	"context"
	"sync"

	"github.com/dongoyo/taproom/ledger"
	"github.com/dongoyo/taproom/store"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps the encoded snapshot, so Load always returns a value that
// shares nothing with what was saved.
type Memory struct {
	mu      sync.RWMutex
	payload []byte
	saves   int
}

func NewMemory() *Memory {
	return &Memory{}
}

// Seed stores raw bytes as if they had been saved. Used to simulate
// snapshots written by other versions, including broken ones.
func (m *Memory) Seed(payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = append([]byte(nil), payload...)
}

func (m *Memory) Load(_ context.Context) (*ledger.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.payload == nil {
		return nil, store.ErrNotFound
	}
	return store.Decode(m.payload)
}

func (m *Memory) Save(_ context.Context, s *ledger.State) error {
	payload, err := store.Encode(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = payload
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func (m *Memory) Close() error {
	return nil
}
