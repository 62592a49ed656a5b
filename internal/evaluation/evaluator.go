// Package evaluation implements the phased accept/reject pipeline that
// turns a ranked-pool candidate into an approval with an opportunity score
// or a categorized rejection.
package evaluation

import (
	"context"
	"fmt"
	"log"
	"time"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/marketdata"
)

// Evaluator runs candidates through the phase pipeline. Phases are strictly
// ordered cheapest-first and short-circuit on the first rejection, so the
// expensive upstream calls only happen for candidates that already passed
// the cheap filters.
type Evaluator struct {
	market marketdata.Client
	logger *log.Logger
	now    func() time.Time // injectable for tests
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(market marketdata.Client, logger *log.Logger) *Evaluator {
	if logger == nil {
		logger = log.Default()
	}
	return &Evaluator{
		market: market,
		logger: logger,
		now:    time.Now,
	}
}

// rejection is the tagged outcome of a failed phase.
type rejection struct {
	category domain.RejectionCategory
	reason   string
}

// Evaluate runs one candidate through the full pipeline.
// A panic inside a phase is recovered into an exception rejection so a
// single bad candidate never aborts the scheduler cycle.
func (e *Evaluator) Evaluate(ctx context.Context, candidate domain.Candidate, criteria Criteria) (outcome *domain.EvaluationOutcome) {
	snapshot := &domain.TokenSnapshot{}
	var warnings []string

	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("panic evaluating %s: %v", candidate.TokenAddress, r)
			outcome = e.reject(candidate, snapshot, warnings, rejection{
				category: domain.RejectionException,
				reason:   fmt.Sprintf("internal error: %v", r),
			})
		}
	}()

	phases := []func(context.Context, domain.Candidate, Criteria, *domain.TokenSnapshot, *[]string) *rejection{
		e.checkAge,
		e.checkTokenInfo,
		e.checkPrice,
		e.checkMetrics,
		e.checkVolumeLiquidityRatio,
		e.checkExcessiveVolume,
		e.checkHolderDistribution,
		e.checkHolderFloor,
		e.checkSecurityScore,
	}

	for _, phase := range phases {
		if rej := phase(ctx, candidate, criteria, snapshot, &warnings); rej != nil {
			return e.reject(candidate, snapshot, warnings, *rej)
		}
	}

	score := computeScore(snapshot, criteria, len(warnings))
	if score < criteria.MinFinalScore {
		return e.reject(candidate, snapshot, warnings, rejection{
			category: domain.RejectionFinalEvaluation,
			reason:   fmt.Sprintf("score %.1f below approval floor %.1f", score, criteria.MinFinalScore),
		})
	}

	return &domain.EvaluationOutcome{
		TokenAddress: candidate.TokenAddress,
		Symbol:       candidate.Symbol,
		Approved:     true,
		Score:        score,
		Warnings:     warnings,
		Snapshot:     *snapshot,
		EvaluatedAt:  e.now(),
	}
}

func (e *Evaluator) reject(candidate domain.Candidate, snapshot *domain.TokenSnapshot, warnings []string, rej rejection) *domain.EvaluationOutcome {
	e.logger.Printf("rejected %s (%s): %s", candidate.TokenAddress, rej.category, rej.reason)
	return &domain.EvaluationOutcome{
		TokenAddress:      candidate.TokenAddress,
		Symbol:            candidate.Symbol,
		Approved:          false,
		RejectionReasons:  []string{rej.reason},
		RejectionCategory: rej.category,
		Warnings:          warnings,
		Snapshot:          *snapshot,
		EvaluatedAt:       e.now(),
	}
}

// checkAge rejects candidates whose pool is older than the ceiling. Uses
// only metadata already in hand; no network call.
func (e *Evaluator) checkAge(_ context.Context, candidate domain.Candidate, criteria Criteria, snapshot *domain.TokenSnapshot, _ *[]string) *rejection {
	if candidate.PoolCreationTime == nil {
		return nil // verified against token creation time in the next phase
	}
	age := e.now().Sub(*candidate.PoolCreationTime).Hours()
	snapshot.AgeHours = &age
	if age > criteria.MaxAgeHours {
		return &rejection{
			category: domain.RejectionAgeCheck,
			reason:   fmt.Sprintf("pool age %.1fh exceeds maximum %.1fh", age, criteria.MaxAgeHours),
		}
	}
	return nil
}

// checkTokenInfo fetches basic token identity; a fetch failure rejects the
// candidate rather than crashing the cycle.
func (e *Evaluator) checkTokenInfo(ctx context.Context, candidate domain.Candidate, criteria Criteria, snapshot *domain.TokenSnapshot, _ *[]string) *rejection {
	info, err := e.market.TokenInfo(ctx, candidate.TokenAddress)
	if err != nil {
		return &rejection{
			category: domain.RejectionAPIError,
			reason:   fmt.Sprintf("token info fetch failed: %v", err),
		}
	}

	if info.CreationTime != nil {
		age := e.now().Sub(*info.CreationTime).Hours()
		if snapshot.AgeHours == nil {
			snapshot.AgeHours = &age
		}
		if age > criteria.MaxAgeHours {
			return &rejection{
				category: domain.RejectionAgeCheck,
				reason:   fmt.Sprintf("token age %.1fh exceeds maximum %.1fh", age, criteria.MaxAgeHours),
			}
		}
	}
	return nil
}

// checkPrice fetches price + variations and applies the drop ceilings and
// the 24h growth floor.
func (e *Evaluator) checkPrice(ctx context.Context, candidate domain.Candidate, criteria Criteria, snapshot *domain.TokenSnapshot, warnings *[]string) *rejection {
	price, err := e.market.Price(ctx, candidate.TokenAddress)
	if err != nil {
		return &rejection{
			category: domain.RejectionAPIError,
			reason:   fmt.Sprintf("price fetch failed: %v", err),
		}
	}
	if price.Price == nil {
		return &rejection{
			category: domain.RejectionAPIError,
			reason:   "price missing from response",
		}
	}

	snapshot.Price = price.Price
	snapshot.PriceChange5m = price.Variation5m
	snapshot.PriceChange1h = price.Variation1h
	snapshot.PriceChange24h = price.Variation24h

	if price.Variation24h != nil && *price.Variation24h < criteria.MaxPriceDrop24h {
		return &rejection{
			category: domain.RejectionPriceDrop,
			reason:   fmt.Sprintf("24h drop %.1f%% exceeds ceiling %.1f%%", *price.Variation24h, criteria.MaxPriceDrop24h),
		}
	}
	if price.Variation1h != nil && *price.Variation1h < criteria.MaxPriceDrop1h {
		return &rejection{
			category: domain.RejectionPriceDrop,
			reason:   fmt.Sprintf("1h drop %.1f%% exceeds ceiling %.1f%%", *price.Variation1h, criteria.MaxPriceDrop1h),
		}
	}
	if price.Variation5m != nil && *price.Variation5m < criteria.MaxPriceDrop5m {
		return &rejection{
			category: domain.RejectionPriceDrop,
			reason:   fmt.Sprintf("5m drop %.1f%% exceeds ceiling %.1f%%", *price.Variation5m, criteria.MaxPriceDrop5m),
		}
	}

	if price.Variation24h != nil && *price.Variation24h < criteria.MinPriceChange24h {
		return &rejection{
			category: domain.RejectionDecliningTrend,
			reason:   fmt.Sprintf("24h change %.1f%% below growth floor %.1f%%", *price.Variation24h, criteria.MinPriceChange24h),
		}
	}
	if price.Variation1h != nil && *price.Variation1h < criteria.MinPriceChange1h {
		*warnings = append(*warnings, fmt.Sprintf("declining 1h trend: %.1f%%", *price.Variation1h))
	}
	if price.Variation5m != nil && *price.Variation5m < criteria.MinPriceChange5m {
		*warnings = append(*warnings, fmt.Sprintf("declining 5m trend: %.1f%%", *price.Variation5m))
	}
	return nil
}

// checkMetrics fetches market cap, liquidity and volume, and applies the
// hard floors and ceilings.
func (e *Evaluator) checkMetrics(ctx context.Context, candidate domain.Candidate, criteria Criteria, snapshot *domain.TokenSnapshot, _ *[]string) *rejection {
	metrics, err := e.market.Metrics(ctx, candidate.TokenAddress)
	if err != nil {
		return &rejection{
			category: domain.RejectionAPIError,
			reason:   fmt.Sprintf("metrics fetch failed: %v", err),
		}
	}

	snapshot.MarketCap = metrics.MarketCap
	snapshot.Liquidity = metrics.Liquidity
	snapshot.Volume24h = metrics.Volume24h
	snapshot.Volume1h = metrics.Volume1h
	snapshot.Holders = metrics.Holders

	if metrics.MarketCap != nil && *metrics.MarketCap > criteria.MaxMarketCap {
		return &rejection{
			category: domain.RejectionMarketCap,
			reason:   fmt.Sprintf("market cap $%.0f exceeds maximum $%.0f", *metrics.MarketCap, criteria.MaxMarketCap),
		}
	}
	if metrics.Liquidity == nil || *metrics.Liquidity < criteria.MinLiquidity {
		got := 0.0
		if metrics.Liquidity != nil {
			got = *metrics.Liquidity
		}
		return &rejection{
			category: domain.RejectionLiquidity,
			reason:   fmt.Sprintf("liquidity $%.0f below minimum $%.0f", got, criteria.MinLiquidity),
		}
	}
	if metrics.Volume24h == nil || *metrics.Volume24h < criteria.MinVolume24h {
		got := 0.0
		if metrics.Volume24h != nil {
			got = *metrics.Volume24h
		}
		return &rejection{
			category: domain.RejectionVolume,
			reason:   fmt.Sprintf("24h volume $%.0f below minimum $%.0f", got, criteria.MinVolume24h),
		}
	}
	return nil
}

// checkVolumeLiquidityRatio applies the ratio bands: hard reject above the
// warning ratio (pump signature), soft reject above the max ratio, warn
// outside the optimal band.
func (e *Evaluator) checkVolumeLiquidityRatio(_ context.Context, _ domain.Candidate, criteria Criteria, snapshot *domain.TokenSnapshot, warnings *[]string) *rejection {
	ratio := snapshot.VolumeLiquidityRatio()
	if ratio == nil {
		return nil // both sides verified present by the metrics phase
	}

	if *ratio > criteria.WarningVolumeLiquidityRatio {
		return &rejection{
			category: domain.RejectionPumpWarning,
			reason:   fmt.Sprintf("volume/liquidity ratio %.2f above pump threshold %.2f", *ratio, criteria.WarningVolumeLiquidityRatio),
		}
	}
	if *ratio > criteria.MaxVolumeLiquidityRatio {
		return &rejection{
			category: domain.RejectionHighVolumeRatio,
			reason:   fmt.Sprintf("volume/liquidity ratio %.2f above maximum %.2f", *ratio, criteria.MaxVolumeLiquidityRatio),
		}
	}
	if *ratio > criteria.OptimalRatioMax {
		*warnings = append(*warnings, fmt.Sprintf("elevated volume/liquidity ratio: %.2f", *ratio))
	} else if *ratio < criteria.OptimalRatioMin {
		*warnings = append(*warnings, fmt.Sprintf("low trading activity: ratio %.2f", *ratio))
	}
	return nil
}

// checkExcessiveVolume rejects on an absolute 24h volume ceiling, a pump
// indicator independent of liquidity.
func (e *Evaluator) checkExcessiveVolume(_ context.Context, _ domain.Candidate, criteria Criteria, snapshot *domain.TokenSnapshot, _ *[]string) *rejection {
	if snapshot.Volume24h != nil && *snapshot.Volume24h > criteria.MaxInitialVolume24h {
		return &rejection{
			category: domain.RejectionExcessiveVolume,
			reason:   fmt.Sprintf("24h volume $%.0f exceeds absolute ceiling $%.0f", *snapshot.Volume24h, criteria.MaxInitialVolume24h),
		}
	}
	return nil
}

// checkHolderDistribution rejects when holder count is high while the price
// is simultaneously falling: large holder base distributing into weakness.
func (e *Evaluator) checkHolderDistribution(_ context.Context, _ domain.Candidate, criteria Criteria, snapshot *domain.TokenSnapshot, _ *[]string) *rejection {
	if snapshot.Holders == nil || snapshot.PriceChange24h == nil {
		return nil
	}
	if *snapshot.Holders > criteria.MaxHoldersIfDropping && *snapshot.PriceChange24h < 0 {
		return &rejection{
			category: domain.RejectionBadDistribution,
			reason: fmt.Sprintf("%d holders with falling price (%.1f%% 24h)",
				*snapshot.Holders, *snapshot.PriceChange24h),
		}
	}
	return nil
}

// checkHolderFloor rejects tokens with too few holders.
func (e *Evaluator) checkHolderFloor(_ context.Context, _ domain.Candidate, criteria Criteria, snapshot *domain.TokenSnapshot, _ *[]string) *rejection {
	if snapshot.Holders != nil && *snapshot.Holders < criteria.MinHolders {
		return &rejection{
			category: domain.RejectionHolders,
			reason:   fmt.Sprintf("%d holders below minimum %d", *snapshot.Holders, criteria.MinHolders),
		}
	}
	return nil
}

// checkSecurityScore fetches the security score last: it is the most
// expensive upstream call and only worth paying for survivors.
func (e *Evaluator) checkSecurityScore(ctx context.Context, candidate domain.Candidate, criteria Criteria, snapshot *domain.TokenSnapshot, _ *[]string) *rejection {
	score, err := e.market.SecurityScore(ctx, candidate.TokenAddress)
	if err != nil {
		return &rejection{
			category: domain.RejectionAPIError,
			reason:   fmt.Sprintf("security score fetch failed: %v", err),
		}
	}
	if score.Total == nil || *score.Total < criteria.MinSecurityScore {
		got := 0.0
		if score.Total != nil {
			got = *score.Total
		}
		return &rejection{
			category: domain.RejectionSecurityScore,
			reason:   fmt.Sprintf("security score %.0f below minimum %.0f", got, criteria.MinSecurityScore),
		}
	}
	snapshot.SecurityScore = score.Total
	return nil
}
