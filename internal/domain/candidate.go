package domain

import "time"

// Candidate represents one entry of the ranked-pool feed.
// Candidates are ephemeral: produced each analysis cycle, never persisted.
type Candidate struct {
	TokenAddress     string
	Symbol           string
	Name             string
	Chain            string
	PoolRank         int
	ExchangeName     string
	PoolCreationTime *time.Time // nullable, feed may omit it
}
