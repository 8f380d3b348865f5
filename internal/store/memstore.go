package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"prescreen/internal/session"
)

// MemStore is an in-memory Store for tests. Implements Store.
type MemStore struct {
	mu      sync.Mutex
	records map[string]*session.Record
}

// NewMemStore returns a new in-memory Store.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]*session.Record)}
}

// Record implements Store.
func (s *MemStore) Record(_ context.Context, rec *session.Record) error {
	if rec == nil {
		return errors.New("record is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.records[rec.CallID] = &cp
	return nil
}

// Get implements Store.
func (s *MemStore) Get(_ context.Context, callID string) (*session.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[callID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// List implements Store.
func (s *MemStore) List(_ context.Context) ([]*session.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*session.Record, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	return out, nil
}

// ListByOutcome implements Store.
func (s *MemStore) ListByOutcome(ctx context.Context, outcome session.Outcome) ([]*session.Record, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*session.Record
	for _, rec := range all {
		if rec.Outcome == outcome {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Close implements Store.
func (s *MemStore) Close() error { return nil }
