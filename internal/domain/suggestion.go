package domain

import "time"

// Suggestion is an approved evaluation surfaced to the trading side.
// The ID is the idempotency key: a replayed suggestion must never produce
// a second buy.
type Suggestion struct {
	ID           string
	TokenAddress string
	Symbol       string
	Name         string
	Score        float64
	Snapshot     TokenSnapshot
	CreatedAt    time.Time
}
