package state

import (
	"context"
	"sync"

	"github.com/cristianxmm/tv-signage-system/internal/domain"
)

// MemoryStore is the in-memory implementation of Store. Suitable for
// single-instance deployments; state is discarded at process exit.
type MemoryStore struct {
	entries map[string]*domain.ContentDescriptor // target -> descriptor
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*domain.ContentDescriptor),
	}
}

// Set records the descriptor as the current content for its target.
func (s *MemoryStore) Set(ctx context.Context, desc *domain.ContentDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy so later caller mutations cannot corrupt the cache.
	s.entries[desc.Target] = desc.Clone()
	return nil
}

// Get returns the entry for exactly this target, or nil if absent.
func (s *MemoryStore) Get(ctx context.Context, target string) (*domain.ContentDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	desc, ok := s.entries[target]
	if !ok {
		return nil, nil
	}
	return desc.Clone(), nil
}

// Resolve applies the two-level fallback: zone entry first, "all" second.
func (s *MemoryStore) Resolve(ctx context.Context, zone string) (*domain.ContentDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if desc, ok := s.entries[zone]; ok {
		return desc.Clone(), nil
	}
	if desc, ok := s.entries[domain.TargetAll]; ok {
		return desc.Clone(), nil
	}
	return nil, nil
}
