package evaluation

import "solana-meme-trader/internal/domain"

// Score weights. The base is deliberately mid-range: the security score and
// band bonuses have to earn the approval floor.
const (
	scoreBase = 50.0

	securityContributionCap = 40.0

	optimalRatioBonus = 10.0
	tightRatioBonus   = 5.0

	optimalLiquidityBonus = 8.0
	lowLiquidityPenalty   = 5.0

	optimalHoldersBonus     = 5.0
	crowdedHoldersPenalty   = 8.0
	crowdedHoldersThreshold = 1500

	momentumBonus = 3.0

	smallMarketCapBonus = 5.0

	warningPenalty = 3.0
)

// computeScore produces the opportunity score in [0,100] for a candidate
// that survived every rejection phase.
func computeScore(snapshot *domain.TokenSnapshot, criteria Criteria, warningCount int) float64 {
	score := scoreBase

	if snapshot.SecurityScore != nil {
		contribution := *snapshot.SecurityScore / 2
		if contribution > securityContributionCap {
			contribution = securityContributionCap
		}
		score += contribution
	}

	if ratio := snapshot.VolumeLiquidityRatio(); ratio != nil {
		if *ratio >= criteria.OptimalRatioMin && *ratio <= criteria.OptimalRatioMax {
			score += optimalRatioBonus
			if *ratio >= criteria.TightRatioMin && *ratio <= criteria.TightRatioMax {
				score += tightRatioBonus
			}
		}
	}

	if snapshot.Liquidity != nil {
		switch {
		case *snapshot.Liquidity >= criteria.OptimalLiquidityMin && *snapshot.Liquidity <= criteria.OptimalLiquidityMax:
			score += optimalLiquidityBonus
		case *snapshot.Liquidity < criteria.LowLiquidityPenalty:
			score -= lowLiquidityPenalty
		}
	}

	if snapshot.Holders != nil {
		priceUp := snapshot.PriceChange24h == nil || *snapshot.PriceChange24h >= 0
		switch {
		case *snapshot.Holders >= criteria.OptimalHoldersMin && *snapshot.Holders <= criteria.OptimalHoldersMax && priceUp:
			score += optimalHoldersBonus
		case *snapshot.Holders > crowdedHoldersThreshold && !priceUp:
			score -= crowdedHoldersPenalty
		}
	}

	if snapshot.PriceChange1h != nil && *snapshot.PriceChange1h > 0 {
		score += momentumBonus
	}
	if snapshot.PriceChange5m != nil && *snapshot.PriceChange5m > 0 {
		score += momentumBonus
	}

	if snapshot.MarketCap != nil && *snapshot.MarketCap < criteria.SmallMarketCapBonus {
		score += smallMarketCapBonus
	}

	score -= warningPenalty * float64(warningCount)

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
