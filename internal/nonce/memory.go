package nonce

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	nonce     string
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Expired entries are dropped lazily
// on access and by PurgeExpired.
type MemoryStore struct {
	mu     sync.Mutex
	byAddr map[string]entry
	now    func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byAddr: make(map[string]entry), now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Set(_ context.Context, address, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byAddr[address] = entry{nonce: nonce, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(address)
	if !ok {
		return "", ErrNotFound
	}
	return e.nonce, nil
}

func (s *MemoryStore) Consume(_ context.Context, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(address)
	if !ok {
		return "", ErrNotFound
	}
	delete(s.byAddr, address)
	return e.nonce, nil
}

func (s *MemoryStore) Delete(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byAddr, address)
	return nil
}

// live must be called with mu held
func (s *MemoryStore) live(address string) (entry, bool) {
	e, ok := s.byAddr[address]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.byAddr, address)
		return entry{}, false
	}
	return e, true
}

// PurgeExpired drops expired nonces and returns how many were removed.
func (s *MemoryStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for addr, e := range s.byAddr {
		if !now.Before(e.expiresAt) {
			delete(s.byAddr, addr)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byAddr)
}

// RunJanitor purges expired nonces every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PurgeExpired()
		}
	}
}
