package importer

import "sync"

// Store keeps one staged batch per operator. Batches live in process
// memory only; a console restart discards them the same way reloading
// the original page did.
type Store struct {
	mu      sync.Mutex
	batches map[string]*Batch
}

func NewStore() *Store {
	return &Store{batches: make(map[string]*Batch)}
}

// Batch returns the operator's batch, creating an empty one on first
// use.
func (s *Store) Batch(operatorID string) *Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[operatorID]
	if !ok {
		b = NewBatch()
		s.batches[operatorID] = b
	}
	return b
}

// Drop removes the operator's batch entirely, typically on logout.
func (s *Store) Drop(operatorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, operatorID)
}
