package memory

import (
	"context"
	"sort"
	"sync"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/storage"
)

// BlacklistStore is an in-memory implementation of storage.BlacklistStore.
type BlacklistStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BlacklistEntry // keyed by token_address
}

// NewBlacklistStore creates a new in-memory blacklist store.
func NewBlacklistStore() *BlacklistStore {
	return &BlacklistStore{
		data: make(map[string]*domain.BlacklistEntry),
	}
}

var _ storage.BlacklistStore = (*BlacklistStore)(nil)

// Upsert adds or updates an entry, keeping the original blacklisted_at and
// the worst observed loss.
func (s *BlacklistStore) Upsert(_ context.Context, e *domain.BlacklistEntry) error {
	if e == nil || e.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.data[e.TokenAddress]
	if !exists {
		copy := *e
		s.data[e.TokenAddress] = &copy
		return nil
	}

	existing.TokenSymbol = e.TokenSymbol
	if e.LossPct < existing.LossPct {
		existing.LossPct = e.LossPct
		existing.Reason = e.Reason
	}
	return nil
}

// IsBlacklisted reports whether a token is blacklisted.
func (s *BlacklistStore) IsBlacklisted(_ context.Context, tokenAddress string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.data[tokenAddress]
	return exists, nil
}

// GetByToken retrieves the entry for a token. Returns ErrNotFound if not exists.
func (s *BlacklistStore) GetByToken(_ context.Context, tokenAddress string) (*domain.BlacklistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[tokenAddress]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *e
	return &copy, nil
}

// List retrieves all entries, ordered by blacklisted_at ASC.
func (s *BlacklistStore) List(_ context.Context) ([]*domain.BlacklistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BlacklistEntry
	for _, e := range s.data {
		copy := *e
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].BlacklistedAt.Equal(result[j].BlacklistedAt) {
			return result[i].TokenAddress < result[j].TokenAddress
		}
		return result[i].BlacklistedAt.Before(result[j].BlacklistedAt)
	})

	return result, nil
}
