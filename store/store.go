// Package store persists the daily trade counters so the caps survive
// an engine restart within the same session.
package store

import (
	"context"
	"sync"
)

// Snapshot is the persisted counter state.
type Snapshot struct {
	PerStock      map[string]int `json:"per_stock"`
	TradedCodes   []string       `json:"traded_codes"`
	LastResetDate string         `json:"last_reset_date"` // YYYY-MM-DD
}

// Store reads and writes one counter snapshot.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// MemoryStore keeps the snapshot in memory. Used in tests and when no
// Redis endpoint is configured.
type MemoryStore struct {
	mu   sync.Mutex
	snap Snapshot
	set  bool
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return Snapshot{PerStock: map[string]int{}}, nil
	}
	return m.snap, nil
}

func (m *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	m.set = true
	return nil
}
