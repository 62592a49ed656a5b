package domain

// PriceObservation is one price reading for an open position, recorded each
// monitor cycle. Stored in ClickHouse for later analysis.
type PriceObservation struct {
	TradeID      string
	TokenAddress string
	TimestampMs  int64
	Price        float64
	GainPct      float64 // vs buy price at observation time
}
