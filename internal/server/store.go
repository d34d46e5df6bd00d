package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/sales-dashboard/internal/types"
)

// Store keeps uploaded datasets in memory, one per upload session.
// A dataset is only ever replaced as a whole; it is never merged. When the
// store is full the oldest upload is evicted.
type Store struct {
	mu      sync.RWMutex
	max     int
	entries map[string]*storedDataset
	order   []string
}

type storedDataset struct {
	dataset    *types.Dataset
	uploadedAt time.Time
}

// NewStore returns a store holding at most max datasets. A max of zero or
// less means unbounded.
func NewStore(max int) *Store {
	return &Store{
		max:     max,
		entries: make(map[string]*storedDataset),
	}
}

// Add stores ds under a new id and returns the id.
func (s *Store) Add(ds *types.Dataset) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = &storedDataset{dataset: ds, uploadedAt: time.Now()}
	s.order = append(s.order, id)
	s.evict()

	return id
}

// Replace swaps the dataset stored under id. It reports false when id is
// unknown.
func (s *Store) Replace(id string, ds *types.Dataset) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return false
	}
	entry.dataset = ds
	entry.uploadedAt = time.Now()
	return true
}

// Get returns the dataset stored under id.
func (s *Store) Get(id string) (*types.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return entry.dataset, true
}

// Delete removes id. It reports false when id is unknown.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of stored datasets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// evict drops the oldest uploads until the store fits. Callers hold mu.
func (s *Store) evict() {
	if s.max <= 0 {
		return
	}
	for len(s.order) > s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}
}
