// Package ledger holds the client-side transaction store and the pure
// derivations computed from it: categories, filtered views and statistics.
package ledger

import (
	"sync"
	"time"

	"fintrack/internal/core"
)

// Store is the authoritative in-memory copy of the last successful full fetch.
//
// It is written only through ReplaceAll; there are no partial or optimistic
// updates. Readers always receive copies, so a reload never mutates a slice a
// caller is still holding.
type Store struct {
	mu       sync.RWMutex
	items    []core.Transaction
	version  uint64
	loadedAt time.Time
}

// Snapshot is a consistent read of the store contents and their version.
type Snapshot struct {
	Version      uint64
	LoadedAt     time.Time
	Transactions []core.Transaction
}

func NewStore() *Store {
	return &Store{}
}

// ReplaceAll atomically swaps the held sequence and returns the new version.
// No validation is performed; entries without a usable amount are kept.
func (s *Store) ReplaceAll(list []core.Transaction) uint64 {
	items := make([]core.Transaction, len(list))
	copy(items, list)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.version++
	s.loadedAt = time.Now()
	return s.version
}

// FindByID scans for the transaction with the given id.
func (s *Store) FindByID(id int64) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.items {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// All returns a copy of the held sequence.
func (s *Store) All() []core.Transaction {
	return s.Snapshot().Transactions
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]core.Transaction, len(s.items))
	copy(items, s.items)
	return Snapshot{Version: s.version, LoadedAt: s.loadedAt, Transactions: items}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version is 0 until the first ReplaceAll.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
