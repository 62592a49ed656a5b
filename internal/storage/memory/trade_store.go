package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade // keyed by trade_id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.Trade),
	}
}

var _ storage.TradeStore = (*TradeStore)(nil)

// InsertOpen adds a new OPEN trade. Mirrors the Postgres uniqueness rules:
// trade_id, one OPEN per token, and suggestion_id.
func (s *TradeStore) InsertOpen(_ context.Context, t *domain.Trade) error {
	if t == nil || t.TradeID == "" || t.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TradeID]; exists {
		return storage.ErrDuplicateKey
	}
	for _, existing := range s.data {
		if existing.TokenAddress == t.TokenAddress && existing.Status == domain.TradeStatusOpen {
			return storage.ErrDuplicateKey
		}
		if t.SuggestionID != nil && existing.SuggestionID != nil && *existing.SuggestionID == *t.SuggestionID {
			return storage.ErrDuplicateKey
		}
	}

	copy := *t
	copy.Status = domain.TradeStatusOpen
	s.data[t.TradeID] = &copy
	return nil
}

// Close transitions an OPEN trade to CLOSED.
func (s *TradeStore) Close(_ context.Context, tradeID string, fields storage.CloseFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.data[tradeID]
	if !exists || t.Status != domain.TradeStatusOpen {
		return storage.ErrNotFound
	}

	t.SellPrice = &fields.SellPrice
	t.SellAmount = &fields.SellAmount
	t.SellTxHash = &fields.SellTxHash
	sellTime := fields.SellTime
	t.SellTime = &sellTime
	t.SellReason = &fields.SellReason
	t.ProfitLossAmount = &fields.ProfitLossAmount
	t.ProfitLossPct = &fields.ProfitLossPct
	t.Status = domain.TradeStatusClosed
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(_ context.Context, tradeID string) (*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[tradeID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *t
	return &copy, nil
}

// FindOpenByToken retrieves the OPEN trade for a token.
func (s *TradeStore) FindOpenByToken(_ context.Context, tokenAddress string) (*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.data {
		if t.TokenAddress == tokenAddress && t.Status == domain.TradeStatusOpen {
			copy := *t
			return &copy, nil
		}
	}
	return nil, storage.ErrNotFound
}

// FindBySuggestionID retrieves the trade created for a suggestion.
func (s *TradeStore) FindBySuggestionID(_ context.Context, suggestionID string) (*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.data {
		if t.SuggestionID != nil && *t.SuggestionID == suggestionID {
			copy := *t
			return &copy, nil
		}
	}
	return nil, storage.ErrNotFound
}

// ListOpen retrieves all OPEN trades, ordered by buy_time ASC.
func (s *TradeStore) ListOpen(_ context.Context) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.Status == domain.TradeStatusOpen {
			copy := *t
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].BuyTime.Equal(result[j].BuyTime) {
			return result[i].TradeID < result[j].TradeID
		}
		return result[i].BuyTime.Before(result[j].BuyTime)
	})

	return result, nil
}

// ListClosed retrieves the most recently closed trades, newest first.
func (s *TradeStore) ListClosed(_ context.Context, limit int) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.Status == domain.TradeStatusClosed {
			copy := *t
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].SellTime, result[j].SellTime
		if ti.Equal(*tj) {
			return result[i].TradeID < result[j].TradeID
		}
		return ti.After(*tj)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// CountBuysSince counts trades for a token bought at or after since.
func (s *TradeStore) CountBuysSince(_ context.Context, tokenAddress string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.data {
		if t.TokenAddress == tokenAddress && !t.BuyTime.Before(since) {
			count++
		}
	}
	return count, nil
}
