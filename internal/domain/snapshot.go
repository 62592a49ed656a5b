package domain

// TokenSnapshot captures the metrics read from the market-data API at
// evaluation time. Every upstream value is optional: a missing field is a
// nil pointer, never a silent zero.
type TokenSnapshot struct {
	MarketCap      *float64
	Liquidity      *float64
	Volume24h      *float64
	Volume1h       *float64
	Holders        *int
	SecurityScore  *float64
	Price          *float64
	PriceChange5m  *float64
	PriceChange1h  *float64
	PriceChange24h *float64
	AgeHours       *float64
}

// VolumeLiquidityRatio returns volume_24h / liquidity, or nil if either
// side is missing or liquidity is zero.
func (s *TokenSnapshot) VolumeLiquidityRatio() *float64 {
	if s.Volume24h == nil || s.Liquidity == nil || *s.Liquidity == 0 {
		return nil
	}
	r := *s.Volume24h / *s.Liquidity
	return &r
}
