package memory

import (
	"context"
	"sort"
	"sync"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data []*domain.PriceObservation
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{}
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// InsertBulk adds multiple observations. Empty input is a no-op.
func (s *PriceHistoryStore) InsertBulk(_ context.Context, observations []*domain.PriceObservation) error {
	if len(observations) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range observations {
		if o == nil || o.TradeID == "" {
			return storage.ErrInvalidInput
		}
		copy := *o
		s.data = append(s.data, &copy)
	}
	return nil
}

// GetByTrade retrieves all observations for a trade, ordered by timestamp ASC.
func (s *PriceHistoryStore) GetByTrade(_ context.Context, tradeID string) ([]*domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceObservation
	for _, o := range s.data {
		if o.TradeID == tradeID {
			copy := *o
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}
