// Package scheduler runs the periodic analysis cycle that feeds approved
// tokens to the trading side.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/evaluation"
	"solana-meme-trader/internal/marketdata"
	"solana-meme-trader/internal/observability"
)

// Sink receives approved suggestions. Offer must not block the cycle.
type Sink interface {
	Offer(ctx context.Context, s domain.Suggestion)
}

// Default configuration values.
const (
	DefaultInterval      = 5 * time.Minute
	DefaultCooldown      = 30 * time.Minute
	DefaultMaxPerCycle   = 15
	DefaultPoolLimit     = 50
	DefaultApprovedLimit = 10
	DefaultRejectedLimit = 20
)

// Options contains configuration for creating an AnalysisScheduler.
type Options struct {
	Market        marketdata.Client
	Evaluator     *evaluation.Evaluator
	Criteria      evaluation.Criteria
	Sink          Sink // optional
	Interval      time.Duration
	Cooldown      time.Duration // per-token re-analysis cooldown
	MaxPerCycle   int
	PoolLimit     int // ranked-pool fetch size
	ApprovedLimit int // approved result window, top-N by score
	RejectedLimit int // rejected result window, last-N
	Logger        *log.Logger
}

// Stats are rolling counters for one scheduler instance.
type Stats struct {
	Cycles     int
	Evaluated  int
	Approved   int
	Skipped    int
	Categories map[string]int // rejections per category
}

// AnalysisScheduler pulls the ranked-pool feed on a fixed cadence and runs
// candidates through the evaluation pipeline. One candidate's failure never
// aborts the cycle for the rest.
type AnalysisScheduler struct {
	market        marketdata.Client
	evaluator     *evaluation.Evaluator
	criteria      evaluation.Criteria
	sink          Sink
	interval      time.Duration
	cooldown      time.Duration
	maxPerCycle   int
	poolLimit     int
	approvedLimit int
	rejectedLimit int
	logger        *log.Logger
	now           func() time.Time // injectable for tests

	mu           sync.RWMutex
	lastAnalyzed map[string]time.Time
	approved     []*domain.EvaluationOutcome // kept sorted by score desc
	rejected     []*domain.EvaluationOutcome // FIFO, newest last
	stats        Stats
}

// New creates a new AnalysisScheduler.
func New(opts Options) *AnalysisScheduler {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	cooldown := opts.Cooldown
	if cooldown == 0 {
		cooldown = DefaultCooldown
	}
	maxPerCycle := opts.MaxPerCycle
	if maxPerCycle == 0 {
		maxPerCycle = DefaultMaxPerCycle
	}
	poolLimit := opts.PoolLimit
	if poolLimit == 0 {
		poolLimit = DefaultPoolLimit
	}
	approvedLimit := opts.ApprovedLimit
	if approvedLimit == 0 {
		approvedLimit = DefaultApprovedLimit
	}
	rejectedLimit := opts.RejectedLimit
	if rejectedLimit == 0 {
		rejectedLimit = DefaultRejectedLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &AnalysisScheduler{
		market:        opts.Market,
		evaluator:     opts.Evaluator,
		criteria:      opts.Criteria,
		sink:          opts.Sink,
		interval:      interval,
		cooldown:      cooldown,
		maxPerCycle:   maxPerCycle,
		poolLimit:     poolLimit,
		approvedLimit: approvedLimit,
		rejectedLimit: rejectedLimit,
		logger:        logger,
		now:           time.Now,
		lastAnalyzed:  make(map[string]time.Time),
		stats:         Stats{Categories: make(map[string]int)},
	}
}

// Run starts the analysis loop. The first cycle runs immediately.
// It blocks until context is cancelled.
func (s *AnalysisScheduler) Run(ctx context.Context) error {
	s.logger.Printf("[scheduler] starting, interval=%s cooldown=%s", s.interval, s.cooldown)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Printf("[scheduler] cycle failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle executes one full analysis cycle.
func (s *AnalysisScheduler) RunCycle(ctx context.Context) error {
	candidates, err := s.market.RankedPools(ctx, s.poolLimit)
	if err != nil {
		return fmt.Errorf("fetch ranked pools: %w", err)
	}

	// Lowest rank first: cheaper, more proven tokens get evaluated before
	// the speculative top of the feed.
	reversed := make([]domain.Candidate, len(candidates))
	for i, c := range candidates {
		reversed[len(candidates)-1-i] = c
	}

	evaluated := 0
	approved := 0
	for _, candidate := range reversed {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if evaluated >= s.maxPerCycle {
			break
		}
		if s.inCooldown(candidate.TokenAddress) {
			s.recordSkip()
			observability.RecordCandidateSkipped()
			continue
		}

		outcome := s.evaluator.Evaluate(ctx, candidate, s.criteria)
		evaluated++
		s.recordOutcome(outcome)
		observability.RecordEvaluation(string(outcome.RejectionCategory), outcome.Approved, outcome.Score)

		if !outcome.Approved {
			continue
		}
		approved++
		s.logger.Printf("[scheduler] approved %s (%s) score=%.1f",
			outcome.Symbol, outcome.TokenAddress, outcome.Score)

		if s.sink != nil {
			s.sink.Offer(ctx, suggestionFromOutcome(outcome))
		}
	}

	now := s.now()
	s.mu.Lock()
	s.stats.Cycles++
	s.mu.Unlock()
	observability.RecordAnalysisCycle(float64(now.Unix()))

	s.logger.Printf("[scheduler] cycle done: %d candidates, %d evaluated, %d approved",
		len(candidates), evaluated, approved)
	return nil
}

// Stats returns a copy of the rolling counters.
func (s *AnalysisScheduler) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.stats
	out.Categories = make(map[string]int, len(s.stats.Categories))
	for k, v := range s.stats.Categories {
		out.Categories[k] = v
	}
	return out
}

// Approved returns the current approved window, best score first.
func (s *AnalysisScheduler) Approved() []*domain.EvaluationOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.EvaluationOutcome(nil), s.approved...)
}

// Rejected returns the current rejected window, oldest first.
func (s *AnalysisScheduler) Rejected() []*domain.EvaluationOutcome {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.EvaluationOutcome(nil), s.rejected...)
}

func (s *AnalysisScheduler) inCooldown(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if last, ok := s.lastAnalyzed[token]; ok && now.Sub(last) < s.cooldown {
		return true
	}
	s.lastAnalyzed[token] = now
	return false
}

func (s *AnalysisScheduler) recordSkip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Skipped++
}

func (s *AnalysisScheduler) recordOutcome(outcome *domain.EvaluationOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Evaluated++
	if outcome.Approved {
		s.stats.Approved++
		s.approved = append(s.approved, outcome)
		sort.SliceStable(s.approved, func(i, j int) bool {
			return s.approved[i].Score > s.approved[j].Score
		})
		if len(s.approved) > s.approvedLimit {
			s.approved = s.approved[:s.approvedLimit]
		}
		return
	}

	s.stats.Categories[string(outcome.RejectionCategory)]++
	s.rejected = append(s.rejected, outcome)
	if len(s.rejected) > s.rejectedLimit {
		s.rejected = s.rejected[len(s.rejected)-s.rejectedLimit:]
	}
}

// suggestionFromOutcome builds the trading-side suggestion for an approval.
func suggestionFromOutcome(outcome *domain.EvaluationOutcome) domain.Suggestion {
	return domain.Suggestion{
		ID:           fmt.Sprintf("%s-%d", outcome.TokenAddress, outcome.EvaluatedAt.UnixMilli()),
		TokenAddress: outcome.TokenAddress,
		Symbol:       outcome.Symbol,
		Score:        outcome.Score,
		Snapshot:     outcome.Snapshot,
		CreatedAt:    outcome.EvaluatedAt,
	}
}
