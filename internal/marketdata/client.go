// Package marketdata provides access to the token market-data REST API:
// ranked pools, token info, price, security score, and derived
// liquidity/volume metrics.
package marketdata

import (
	"context"
	"time"

	"solana-meme-trader/internal/domain"
)

// Client is the read-only market-data contract consumed by the evaluator
// and the trading services.
type Client interface {
	// RankedPools fetches the current ranked-pool feed, best rank first.
	RankedPools(ctx context.Context, limit int) ([]domain.Candidate, error)

	// TokenInfo fetches basic token identity data.
	TokenInfo(ctx context.Context, address string) (*TokenInfo, error)

	// Price fetches the current price and its short-window variations.
	Price(ctx context.Context, address string) (*PriceInfo, error)

	// SecurityScore fetches the third-party security score (0-100).
	SecurityScore(ctx context.Context, address string) (*ScoreInfo, error)

	// Metrics fetches market cap, liquidity, volume and holder metrics.
	Metrics(ctx context.Context, address string) (*TokenMetrics, error)
}

// TokenInfo is basic token identity data.
type TokenInfo struct {
	Address      string
	Name         string
	Symbol       string
	Decimals     *int
	CreationTime *time.Time
}

// PriceInfo is the current price with variation windows.
// Variations are percentages; a missing window is nil.
type PriceInfo struct {
	Price        *float64
	Variation5m  *float64
	Variation1h  *float64
	Variation24h *float64
}

// ScoreInfo is the security score result.
type ScoreInfo struct {
	Total *float64 // 0-100
}

// TokenMetrics holds market cap, liquidity, volume and holder counts.
type TokenMetrics struct {
	MarketCap *float64
	Liquidity *float64
	Volume24h *float64
	Volume1h  *float64
	Holders   *int
}
