package pipeline

import (
	"errors"
	"sync"
)

// ErrNoSnapshot is returned when no pipeline run has completed yet
var ErrNoSnapshot = errors.New("no snapshot loaded")

// Store holds the latest snapshot for the serving layer. A refresh installs
// a complete new snapshot atomically; readers never observe a half-built one.
type Store struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// Swap installs a new snapshot
func (s *Store) Swap(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Latest returns the current snapshot
func (s *Store) Latest() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrNoSnapshot
	}
	return s.snap, nil
}
