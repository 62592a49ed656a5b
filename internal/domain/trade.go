package domain

import "time"

// TradeStatus is the lifecycle state of a position.
type TradeStatus string

const (
	TradeStatusOpen   TradeStatus = "OPEN"
	TradeStatusClosed TradeStatus = "CLOSED"
)

// Exit reason codes, in evaluation priority order.
const (
	ExitReasonTimeout      = "TIMEOUT_24H"
	ExitReasonMegaProfit   = "MEGA_PROFIT"
	ExitReasonProfitTarget = "PROFIT_TARGET"
	ExitReasonStopLoss     = "STOP_LOSS"
)

// Trade represents a position. Invariant: the Sell* fields are nil iff
// Status is OPEN; the transition to CLOSED populates all of them atomically
// and only after a real on-chain confirmation.
type Trade struct {
	TradeID       string
	TokenAddress  string
	TokenSymbol   string
	TokenName     string
	TokenDecimals int // captured at buy time, authoritative for raw conversion

	BuyPrice  float64
	BuyAmount float64 // UI amount of tokens received
	BuyTxHash string
	BuyTime   time.Time

	SellPrice  *float64
	SellAmount *float64
	SellTxHash *string
	SellTime   *time.Time
	SellReason *string

	ProfitLossAmount *float64
	ProfitLossPct    *float64

	Status       TradeStatus
	SuggestionID *string
}

// HoursHeld returns how long the position has been held as of now.
func (t *Trade) HoursHeld(now time.Time) float64 {
	return now.Sub(t.BuyTime).Hours()
}

// GainPct returns the unrealized gain/loss percentage at the given price.
func (t *Trade) GainPct(currentPrice float64) float64 {
	if t.BuyPrice == 0 {
		return 0
	}
	return (currentPrice - t.BuyPrice) / t.BuyPrice * 100
}
