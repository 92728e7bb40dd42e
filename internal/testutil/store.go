package testutil

import (
	"sync"

	"edulite-cli/internal/edu"
)

// MemoryDraftStore is an in-memory edu.DraftStore for tests.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]edu.Draft
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]edu.Draft)}
}

func (s *MemoryDraftStore) GetDraft(key string) (*edu.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[key]
	if !ok {
		return nil, nil
	}
	cp := d
	cp.Slides = append([]edu.Slide{}, d.Slides...)
	return &cp, nil
}

func (s *MemoryDraftStore) PutDraft(d *edu.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	cp.Slides = append([]edu.Slide{}, d.Slides...)
	s.drafts[d.Key] = cp
	return nil
}

func (s *MemoryDraftStore) DeleteDraft(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}

// Len returns the number of drafts held.
func (s *MemoryDraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}
