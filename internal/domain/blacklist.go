package domain

import "time"

// BlacklistEntry marks a token permanently ineligible for re-purchase.
// Created when a position closes via stop-loss. Upserts keep the worst
// observed loss.
type BlacklistEntry struct {
	TokenAddress  string
	TokenSymbol   string
	Reason        string
	LossPct       float64 // negative
	BlacklistedAt time.Time
}
