package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps records in process; used by tests and dry runs
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	order       []string
	records     map[string]RunRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.order = nil
	s.records = make(map[string]RunRecord)
	return nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	out := make([]RunRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return RunRecord{}, ErrNotInitialized
	}
	rec, ok := s.records[id]
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

func (s *MemoryStore) Append(_ context.Context, rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, rec.ID)
	}
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return nil
}

func (s *MemoryStore) UpdateFitness(_ context.Context, id string, fitness float64) error {
	return s.modify(id, func(rec *RunRecord) { rec.Fitness = fitness })
}

func (s *MemoryStore) AddFeedback(_ context.Context, id string, up, down int) error {
	return s.modify(id, func(rec *RunRecord) {
		rec.Upvotes += up
		rec.Downvotes += down
	})
}

func (s *MemoryStore) modify(id string, fn func(*RunRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fn(&rec)
	s.records[id] = rec
	return nil
}
