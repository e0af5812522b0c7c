// Package blacklist stores revoked bearer tokens until they expire.
package blacklist

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local revocation store. Entries are kept until
// the token's own expiry and are dropped by Sweep.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Add revokes token until expiresAt. Adding a token twice keeps the later expiry.
func (s *MemoryStore) Add(_ context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.entries[token]; ok && prev.After(expiresAt) {
		return nil
	}
	s.entries[token] = expiresAt
	return nil
}

// Contains reports whether token is revoked and not yet expired.
func (s *MemoryStore) Contains(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiresAt, ok := s.entries[token]
	if !ok {
		return false, nil
	}
	return s.now().Before(expiresAt), nil
}

// Sweep removes entries whose expiry is not after now and returns how many
// were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, expiresAt := range s.entries {
		if !now.Before(expiresAt) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
