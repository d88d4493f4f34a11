package cache

import (
	"context"
	"sync"
	"time"
)

var _ IdempotencyStore = (*MemoryIdempotencyStore)(nil)

type memoryEntry struct {
	resp      *StoredResponse
	expiresAt time.Time
}

// MemoryIdempotencyStore almacén de un solo proceso; las claves vencidas se purgan al reservar.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryIdempotencyStore crea un almacén vacío.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = memoryEntry{expiresAt: now.Add(ttl)}
	return true, nil
}

func (s *MemoryIdempotencyStore) Complete(_ context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.resp != nil {
		return ErrNotReserved
	}
	resp.Body = append([]byte(nil), resp.Body...)
	s.entries[key] = memoryEntry{resp: &resp, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryIdempotencyStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, nil
	}
	if e.resp == nil {
		return &Entry{Pending: true}, nil
	}
	resp := *e.resp
	return &Entry{Response: &resp}, nil
}

func (s *MemoryIdempotencyStore) Close() error { return nil }
