package domain

import "time"

// RejectionCategory classifies why a candidate was rejected.
// The taxonomy is consumed by the scheduler's efficiency counters and must
// stay stable.
type RejectionCategory string

const (
	RejectionAgeCheck        RejectionCategory = "age_check"
	RejectionAPIError        RejectionCategory = "api_error"
	RejectionPriceDrop       RejectionCategory = "price_drop"
	RejectionDecliningTrend  RejectionCategory = "declining_trend"
	RejectionMarketCap       RejectionCategory = "market_cap"
	RejectionLiquidity       RejectionCategory = "liquidity"
	RejectionVolume          RejectionCategory = "volume"
	RejectionPumpWarning     RejectionCategory = "pump_warning"
	RejectionHighVolumeRatio RejectionCategory = "high_volume_ratio"
	RejectionExcessiveVolume RejectionCategory = "excessive_volume"
	RejectionBadDistribution RejectionCategory = "bad_distribution"
	RejectionHolders         RejectionCategory = "holders"
	RejectionSecurityScore   RejectionCategory = "security_score"
	RejectionFinalEvaluation RejectionCategory = "final_evaluation"
	RejectionException       RejectionCategory = "exception"
)

// EvaluationOutcome is the result of running one candidate through the
// phased evaluation pipeline. Immutable after creation.
type EvaluationOutcome struct {
	TokenAddress      string
	Symbol            string
	Approved          bool
	Score             float64 // 0..100, only meaningful when Approved
	RejectionReasons  []string
	RejectionCategory RejectionCategory // empty when Approved
	Warnings          []string
	Snapshot          TokenSnapshot
	EvaluatedAt       time.Time
}
