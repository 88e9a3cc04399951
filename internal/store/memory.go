package store

import (
	"context"
	"sync"
)

// MemoryStore keeps documents in process memory. Used when no database DSN
// is configured and throughout tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) record(id, url string) *Record {
	r, ok := s.records[id]
	if !ok {
		r = &Record{UniqueName: id}
		s.records[id] = r
	}
	if url != "" {
		r.URL = url
	}
	return r
}

// UpsertRaw inserts or replaces the raw text for a document.
func (s *MemoryStore) UpsertRaw(_ context.Context, id, url, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(id, url).RawData = raw
	return nil
}

// ReadRaw returns the stored raw text, or "" for unknown documents.
func (s *MemoryStore) ReadRaw(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.records[id]; ok {
		return r.RawData, nil
	}
	return "", nil
}

// UpdatePagination stores the pagination payload.
func (s *MemoryStore) UpdatePagination(_ context.Context, id, url, pagination string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(id, url).PaginationData = pagination
	return nil
}

// UpdateFormatted stores the structured listings payload.
func (s *MemoryStore) UpdateFormatted(_ context.Context, id, url, formatted string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(id, url).FormattedData = formatted
	return nil
}

// ReadFormatted returns the stored structured payload, or "" when absent.
func (s *MemoryStore) ReadFormatted(_ context.Context, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.records[id]; ok {
		return r.FormattedData, nil
	}
	return "", nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
