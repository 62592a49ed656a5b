package trading

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/marketdata"
	"solana-meme-trader/internal/notify"
	"solana-meme-trader/internal/observability"
	"solana-meme-trader/internal/storage"
)

// Buyer opens positions from suggestions.
type Buyer interface {
	Buy(ctx context.Context, suggestion domain.Suggestion) (*domain.Trade, error)
}

// Seller closes positions.
type Seller interface {
	Sell(ctx context.Context, trade *domain.Trade, currentPrice float64, reason string) error
}

// SuggestionSource yields pending approved suggestions.
type SuggestionSource interface {
	Drain() []domain.Suggestion
}

// Default configuration values.
const (
	DefaultMonitorInterval = 30 * time.Second
	DefaultMinBuyScore     = 80
	DefaultRebuyCooldown   = 2 * time.Hour
)

// MonitorOptions contains configuration for creating a Monitor.
type MonitorOptions struct {
	Suggestions   SuggestionSource
	Buyer         Buyer
	Seller        Seller
	Trades        storage.TradeStore
	PriceHistory  storage.PriceHistoryStore // optional
	Market        marketdata.Client
	ExitRules     []ExitRule
	Notifier      notify.Notifier
	Interval      time.Duration
	MinBuyScore   float64
	RebuyCooldown time.Duration
	Logger        *log.Logger
}

// MonitorStats are rolling counters for one monitor instance.
type MonitorStats struct {
	Cycles      int
	Open        int
	Closed      int
	Wins        int
	WinRate     float64
	TotalPnLPct float64
	AvgPnLPct   float64
}

// Monitor is the position lifecycle loop: it admits new buys from the
// suggestion source and walks every open position through the exit rules.
type Monitor struct {
	suggestions   SuggestionSource
	buyer         Buyer
	seller        Seller
	trades        storage.TradeStore
	priceHistory  storage.PriceHistoryStore
	market        marketdata.Client
	rules         []ExitRule
	notifier      notify.Notifier
	interval      time.Duration
	minBuyScore   float64
	rebuyCooldown time.Duration
	logger        *log.Logger
	now           func() time.Time // injectable for tests

	mu               sync.RWMutex
	profitableCloses map[string]time.Time // token -> close time
	stats            MonitorStats
}

// NewMonitor creates a new Monitor.
func NewMonitor(opts MonitorOptions) *Monitor {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultMonitorInterval
	}
	minBuyScore := opts.MinBuyScore
	if minBuyScore == 0 {
		minBuyScore = DefaultMinBuyScore
	}
	rebuyCooldown := opts.RebuyCooldown
	if rebuyCooldown == 0 {
		rebuyCooldown = DefaultRebuyCooldown
	}
	rules := opts.ExitRules
	if rules == nil {
		rules = DefaultExitRules(DefaultExitConfig())
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}

	return &Monitor{
		suggestions:      opts.Suggestions,
		buyer:            opts.Buyer,
		seller:           opts.Seller,
		trades:           opts.Trades,
		priceHistory:     opts.PriceHistory,
		market:           opts.Market,
		rules:            rules,
		notifier:         notifier,
		interval:         interval,
		minBuyScore:      minBuyScore,
		rebuyCooldown:    rebuyCooldown,
		logger:           logger,
		now:              time.Now,
		profitableCloses: make(map[string]time.Time),
	}
}

// Run starts the monitor loop. The first cycle runs immediately.
// It blocks until context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Printf("[monitor] starting, interval=%s", m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.logger.Printf("[monitor] cycle failed: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle executes one monitor cycle: admit buys, then evaluate exits.
func (m *Monitor) RunCycle(ctx context.Context) error {
	m.admitBuys(ctx)

	open, err := m.trades.ListOpen(ctx)
	if err != nil {
		return fmt.Errorf("list open trades: %w", err)
	}

	var observations []*domain.PriceObservation
	for _, trade := range open {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if obs := m.evaluatePosition(ctx, trade); obs != nil {
			observations = append(observations, obs)
		}
	}

	if m.priceHistory != nil && len(observations) > 0 {
		if err := m.priceHistory.InsertBulk(ctx, observations); err != nil {
			m.logger.Printf("[monitor] price history insert failed: %v", err)
		}
	}

	m.updateStats(ctx)
	observability.RecordMonitorCycle(float64(m.now().Unix()))
	return nil
}

// admitBuys drains the suggestion backlog through the buy service.
func (m *Monitor) admitBuys(ctx context.Context) {
	if m.suggestions == nil || m.buyer == nil {
		return
	}

	for _, suggestion := range m.suggestions.Drain() {
		if suggestion.Score < m.minBuyScore {
			m.logger.Printf("[monitor] skipping %s: score %.1f below %.0f",
				suggestion.Symbol, suggestion.Score, m.minBuyScore)
			continue
		}
		if m.inRebuyCooldown(suggestion.TokenAddress) {
			m.logger.Printf("[monitor] skipping %s: rebuy cooldown after profitable close",
				suggestion.Symbol)
			continue
		}

		if _, err := m.buyer.Buy(ctx, suggestion); err != nil {
			if isAdmissionError(err) {
				m.logger.Printf("[monitor] buy of %s not admitted: %v", suggestion.Symbol, err)
			} else {
				m.logger.Printf("[monitor] buy of %s failed: %v", suggestion.Symbol, err)
			}
		}
	}
}

// evaluatePosition fetches the price, runs the exit rules, and sells on a
// signal. Returns the price observation for this cycle, or nil if the
// price was unavailable.
func (m *Monitor) evaluatePosition(ctx context.Context, trade *domain.Trade) *domain.PriceObservation {
	price, err := m.market.Price(ctx, trade.TokenAddress)
	if err != nil || price.Price == nil || *price.Price <= 0 {
		m.logger.Printf("[monitor] no price for %s (%s): %v",
			trade.TokenSymbol, trade.TokenAddress, err)
		return nil
	}
	current := *price.Price
	now := m.now()

	obs := &domain.PriceObservation{
		TradeID:      trade.TradeID,
		TokenAddress: trade.TokenAddress,
		TimestampMs:  now.UnixMilli(),
		Price:        current,
		GainPct:      trade.GainPct(current),
	}

	signal := EvaluateExit(m.rules, trade, current, now)
	if signal == nil {
		return obs
	}

	m.logger.Printf("[monitor] exit signal for %s: %s (%s)",
		trade.TokenSymbol, signal.Reason, signal.Detail)
	if err := m.seller.Sell(ctx, trade, current, signal.Reason); err != nil {
		// Stays open; the next cycle retries.
		return obs
	}

	if signal.GainPct > 0 {
		m.mu.Lock()
		m.profitableCloses[trade.TokenAddress] = now
		m.mu.Unlock()
	}
	return obs
}

func (m *Monitor) inRebuyCooldown(token string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	closed, ok := m.profitableCloses[token]
	return ok && m.now().Sub(closed) < m.rebuyCooldown
}

// updateStats recomputes the rolling statistics from the store.
func (m *Monitor) updateStats(ctx context.Context) {
	open, err := m.trades.ListOpen(ctx)
	if err != nil {
		return
	}
	closed, err := m.trades.ListClosed(ctx, 0)
	if err != nil {
		return
	}

	wins := 0
	totalPnL := 0.0
	for _, t := range closed {
		if t.ProfitLossPct == nil {
			continue
		}
		totalPnL += *t.ProfitLossPct
		if *t.ProfitLossPct > 0 {
			wins++
		}
	}

	m.mu.Lock()
	m.stats.Cycles++
	m.stats.Open = len(open)
	m.stats.Closed = len(closed)
	m.stats.Wins = wins
	m.stats.TotalPnLPct = totalPnL
	if len(closed) > 0 {
		m.stats.WinRate = float64(wins) / float64(len(closed)) * 100
		m.stats.AvgPnLPct = totalPnL / float64(len(closed))
	}
	m.mu.Unlock()

	observability.SetOpenPositions(len(open))
}

// Stats returns a copy of the rolling counters.
func (m *Monitor) Stats() MonitorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// isAdmissionError reports whether a buy error is an expected admission
// rejection rather than a fault.
func isAdmissionError(err error) bool {
	return errors.Is(err, ErrBlacklisted) ||
		errors.Is(err, ErrPositionOpen) ||
		errors.Is(err, ErrRecentTrade) ||
		errors.Is(err, ErrDailyCapReached) ||
		errors.Is(err, ErrDuplicateSuggestion)
}
