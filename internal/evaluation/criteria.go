package evaluation

// Criteria holds all thresholds used by the evaluation pipeline. Immutable
// per cycle: the scheduler passes one value into every Evaluate call, so a
// config update never changes thresholds mid-candidate.
type Criteria struct {
	// Market cap
	MaxMarketCap        float64 // hard ceiling (USD)
	SmallMarketCapBonus float64 // scoring bonus below this cap

	// Liquidity (USD)
	MinLiquidity        float64
	OptimalLiquidityMin float64
	OptimalLiquidityMax float64
	LowLiquidityPenalty float64 // below this, scoring penalty applies

	// Volume (USD)
	MinVolume24h        float64
	MaxInitialVolume24h float64 // pump indicator independent of liquidity

	// Volume / liquidity ratio bands
	MaxVolumeLiquidityRatio     float64 // soft-reject ceiling
	WarningVolumeLiquidityRatio float64 // hard-reject ceiling (pump signature)
	OptimalRatioMin             float64
	OptimalRatioMax             float64
	TightRatioMin               float64 // extra scoring bonus inside this sub-band
	TightRatioMax               float64

	// Security
	MinSecurityScore float64

	// Holders
	MinHolders           int
	OptimalHoldersMin    int
	OptimalHoldersMax    int
	MaxHoldersIfDropping int // distribution red flag when price is falling

	// Age
	MaxAgeHours float64

	// Price change floors (percent, negative)
	MinPriceChange24h float64
	MinPriceChange1h  float64
	MinPriceChange5m  float64

	// Price drop ceilings (percent, negative)
	MaxPriceDrop24h float64
	MaxPriceDrop1h  float64
	MaxPriceDrop5m  float64

	// Scoring
	MinFinalScore float64 // approval floor after scoring
}

// DefaultCriteria returns the production thresholds.
func DefaultCriteria() Criteria {
	return Criteria{
		MaxMarketCap:        3_000_000,
		SmallMarketCapBonus: 500_000,

		MinLiquidity:        50_000,
		OptimalLiquidityMin: 100_000,
		OptimalLiquidityMax: 200_000,
		LowLiquidityPenalty: 75_000,

		MinVolume24h:        10_000,
		MaxInitialVolume24h: 2_000_000,

		MaxVolumeLiquidityRatio:     8.0,
		WarningVolumeLiquidityRatio: 10.0,
		OptimalRatioMin:             0.5,
		OptimalRatioMax:             5.0,
		TightRatioMin:               1.0,
		TightRatioMax:               3.0,

		MinSecurityScore: 85,

		MinHolders:           100,
		OptimalHoldersMin:    200,
		OptimalHoldersMax:    1000,
		MaxHoldersIfDropping: 2000,

		MaxAgeHours: 936, // 39 days

		MinPriceChange24h: -5,
		MinPriceChange1h:  -5,
		MinPriceChange5m:  -10,

		MaxPriceDrop24h: -15,
		MaxPriceDrop1h:  -10,
		MaxPriceDrop5m:  -15,

		MinFinalScore: 60,
	}
}
