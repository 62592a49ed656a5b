package storage

import (
	"context"
	"time"

	"solana-meme-trader/internal/domain"
)

// CloseFields carries everything the OPEN -> CLOSED transition writes.
// All fields are required; the transition is atomic.
type CloseFields struct {
	SellPrice        float64
	SellAmount       float64
	SellTxHash       string
	SellTime         time.Time
	SellReason       string
	ProfitLossAmount float64
	ProfitLossPct    float64
}

// TradeStore provides access to trades storage.
type TradeStore interface {
	// InsertOpen adds a new OPEN trade. Returns ErrDuplicateKey if trade_id
	// exists, if the token already has an OPEN trade, or if suggestion_id
	// was already used.
	InsertOpen(ctx context.Context, t *domain.Trade) error

	// Close transitions an OPEN trade to CLOSED, populating the sell fields.
	// Returns ErrNotFound if the trade does not exist or is already closed.
	Close(ctx context.Context, tradeID string, fields CloseFields) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.Trade, error)

	// FindOpenByToken retrieves the OPEN trade for a token. Returns
	// ErrNotFound if the token has no open position.
	FindOpenByToken(ctx context.Context, tokenAddress string) (*domain.Trade, error)

	// FindBySuggestionID retrieves the trade created for a suggestion.
	// Returns ErrNotFound if no trade references it.
	FindBySuggestionID(ctx context.Context, suggestionID string) (*domain.Trade, error)

	// ListOpen retrieves all OPEN trades, ordered by buy_time ASC.
	ListOpen(ctx context.Context) ([]*domain.Trade, error)

	// ListClosed retrieves the most recently closed trades, newest first.
	// limit <= 0 means no limit.
	ListClosed(ctx context.Context, limit int) ([]*domain.Trade, error)

	// CountBuysSince counts trades for a token bought at or after since.
	CountBuysSince(ctx context.Context, tokenAddress string, since time.Time) (int, error)
}

// BlacklistStore provides access to blacklisted tokens.
type BlacklistStore interface {
	// Upsert adds or updates an entry. An existing entry keeps its original
	// blacklisted_at and the worst (most negative) observed loss.
	Upsert(ctx context.Context, e *domain.BlacklistEntry) error

	// IsBlacklisted reports whether a token is blacklisted.
	IsBlacklisted(ctx context.Context, tokenAddress string) (bool, error)

	// GetByToken retrieves the entry for a token. Returns ErrNotFound if not exists.
	GetByToken(ctx context.Context, tokenAddress string) (*domain.BlacklistEntry, error)

	// List retrieves all entries, ordered by blacklisted_at ASC.
	List(ctx context.Context) ([]*domain.BlacklistEntry, error)
}

// PriceHistoryStore provides access to per-position price observations.
type PriceHistoryStore interface {
	// InsertBulk adds multiple observations. Empty input is a no-op.
	InsertBulk(ctx context.Context, observations []*domain.PriceObservation) error

	// GetByTrade retrieves all observations for a trade, ordered by timestamp ASC.
	GetByTrade(ctx context.Context, tradeID string) ([]*domain.PriceObservation, error)
}
