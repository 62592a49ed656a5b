package trading

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-meme-trader/internal/domain"
	"solana-meme-trader/internal/storage"
	"solana-meme-trader/internal/storage/memory"
)

// queueSource is a trivial SuggestionSource for tests.
type queueSource struct {
	pending []domain.Suggestion
}

func (q *queueSource) Drain() []domain.Suggestion {
	out := q.pending
	q.pending = nil
	return out
}

// recordingBuyer opens trades directly in the store.
type recordingBuyer struct {
	trades *memory.TradeStore
	now    func() time.Time
	buyErr error
	bought []string
}

func (b *recordingBuyer) Buy(ctx context.Context, s domain.Suggestion) (*domain.Trade, error) {
	if b.buyErr != nil {
		return nil, b.buyErr
	}
	b.bought = append(b.bought, s.TokenAddress)
	trade := &domain.Trade{
		TradeID:       "trade-" + s.TokenAddress,
		TokenAddress:  s.TokenAddress,
		TokenSymbol:   s.Symbol,
		TokenDecimals: 6,
		BuyPrice:      0.001,
		BuyAmount:     10,
		BuyTxHash:     "buytx-" + s.TokenAddress,
		BuyTime:       b.now(),
		Status:        domain.TradeStatusOpen,
	}
	if err := b.trades.InsertOpen(ctx, trade); err != nil {
		return nil, err
	}
	return trade, nil
}

// recordingSeller closes trades directly in the store.
type recordingSeller struct {
	trades  *memory.TradeStore
	now     func() time.Time
	sellErr error
	sold    []string
	reasons []string
}

func (s *recordingSeller) Sell(ctx context.Context, trade *domain.Trade, price float64, reason string) error {
	if s.sellErr != nil {
		return s.sellErr
	}
	s.sold = append(s.sold, trade.TokenAddress)
	s.reasons = append(s.reasons, reason)
	pct := trade.GainPct(price)
	return s.trades.Close(ctx, trade.TradeID, storage.CloseFields{
		SellPrice:     price,
		SellAmount:    trade.BuyAmount,
		SellTxHash:    "selltx-" + trade.TokenAddress,
		SellTime:      s.now(),
		SellReason:    reason,
		ProfitLossPct: pct,
	})
}

type monitorFixture struct {
	monitor *Monitor
	queue   *queueSource
	buyer   *recordingBuyer
	seller  *recordingSeller
	trades  *memory.TradeStore
	history *memory.PriceHistoryStore
	market  *priceMarket
	nowTime time.Time
}

func newMonitorFixture(t *testing.T) *monitorFixture {
	t.Helper()

	f := &monitorFixture{
		queue:   &queueSource{},
		trades:  memory.NewTradeStore(),
		history: memory.NewPriceHistoryStore(),
		market:  newPriceMarket(),
		nowTime: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return f.nowTime }
	f.buyer = &recordingBuyer{trades: f.trades, now: now}
	f.seller = &recordingSeller{trades: f.trades, now: now}

	f.monitor = NewMonitor(MonitorOptions{
		Suggestions:  f.queue,
		Buyer:        f.buyer,
		Seller:       f.seller,
		Trades:       f.trades,
		PriceHistory: f.history,
		Market:       f.market,
		Logger:       testLogger(t),
	})
	f.monitor.now = now
	return f
}

func TestMonitorAdmitsHighScoreSuggestions(t *testing.T) {
	f := newMonitorFixture(t)
	f.queue.pending = []domain.Suggestion{
		testSuggestion("TokenA", 85),
		testSuggestion("TokenB", 75), // below the buy floor
	}

	require.NoError(t, f.monitor.RunCycle(context.Background()))

	assert.Equal(t, []string{"TokenA"}, f.buyer.bought)
	assert.Equal(t, 1, f.monitor.Stats().Open)
}

func TestMonitorSellsOnExitSignal(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	// Position held 3h and up 25%: past the hold gate, profit target fires.
	trade := &domain.Trade{
		TradeID: "trade1", TokenAddress: "TokenA", TokenSymbol: "MEME", TokenDecimals: 6,
		BuyPrice: 0.001, BuyAmount: 10, BuyTxHash: "buytx",
		BuyTime: f.nowTime.Add(-3 * time.Hour), Status: domain.TradeStatusOpen,
	}
	require.NoError(t, f.trades.InsertOpen(ctx, trade))
	f.market.prices["TokenA"] = 0.00125

	require.NoError(t, f.monitor.RunCycle(ctx))

	assert.Equal(t, []string{"TokenA"}, f.seller.sold)
	assert.Equal(t, []string{domain.ExitReasonProfitTarget}, f.seller.reasons)

	stats := f.monitor.Stats()
	assert.Equal(t, 0, stats.Open)
	assert.Equal(t, 1, stats.Closed)
	assert.Equal(t, 1, stats.Wins)
	assert.Equal(t, float64(100), stats.WinRate)
}

func TestMonitorHoldsWithoutSignal(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	trade := &domain.Trade{
		TradeID: "trade1", TokenAddress: "TokenA", TokenSymbol: "MEME", TokenDecimals: 6,
		BuyPrice: 0.001, BuyAmount: 10, BuyTxHash: "buytx",
		BuyTime: f.nowTime.Add(-3 * time.Hour), Status: domain.TradeStatusOpen,
	}
	require.NoError(t, f.trades.InsertOpen(ctx, trade))
	f.market.prices["TokenA"] = 0.00105 // +5%, no rule fires

	require.NoError(t, f.monitor.RunCycle(ctx))

	assert.Empty(t, f.seller.sold)
	assert.Equal(t, 1, f.monitor.Stats().Open)
}

func TestMonitorRecordsPriceObservations(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	trade := &domain.Trade{
		TradeID: "trade1", TokenAddress: "TokenA", TokenSymbol: "MEME", TokenDecimals: 6,
		BuyPrice: 0.001, BuyAmount: 10, BuyTxHash: "buytx",
		BuyTime: f.nowTime.Add(-time.Hour), Status: domain.TradeStatusOpen,
	}
	require.NoError(t, f.trades.InsertOpen(ctx, trade))
	f.market.prices["TokenA"] = 0.0011

	require.NoError(t, f.monitor.RunCycle(ctx))

	obs, err := f.history.GetByTrade(ctx, "trade1")
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, 0.0011, obs[0].Price)
	assert.InDelta(t, 10, obs[0].GainPct, 0.01)
	assert.Equal(t, f.nowTime.UnixMilli(), obs[0].TimestampMs)
}

func TestMonitorRebuyCooldownAfterProfitableClose(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	// Open position up 25% past the hold gate: this cycle closes it with a
	// profit, starting the rebuy cooldown.
	trade := &domain.Trade{
		TradeID: "trade1", TokenAddress: "TokenA", TokenSymbol: "MEME", TokenDecimals: 6,
		BuyPrice: 0.001, BuyAmount: 10, BuyTxHash: "buytx",
		BuyTime: f.nowTime.Add(-3 * time.Hour), Status: domain.TradeStatusOpen,
	}
	require.NoError(t, f.trades.InsertOpen(ctx, trade))
	f.market.prices["TokenA"] = 0.00125
	require.NoError(t, f.monitor.RunCycle(ctx))
	require.Equal(t, []string{"TokenA"}, f.seller.sold)

	// One hour later the token is suggested again: still in cooldown.
	f.nowTime = f.nowTime.Add(time.Hour)
	f.queue.pending = []domain.Suggestion{testSuggestion("TokenA", 90)}
	require.NoError(t, f.monitor.RunCycle(ctx))
	assert.Empty(t, f.buyer.bought)

	// Past the cooldown it is admitted again.
	f.nowTime = f.nowTime.Add(2 * time.Hour)
	f.queue.pending = []domain.Suggestion{testSuggestion("TokenA", 90)}
	require.NoError(t, f.monitor.RunCycle(ctx))
	assert.Equal(t, []string{"TokenA"}, f.buyer.bought)
}

func TestMonitorFailedSellKeepsPositionAndRetries(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	trade := &domain.Trade{
		TradeID: "trade1", TokenAddress: "TokenA", TokenSymbol: "MEME", TokenDecimals: 6,
		BuyPrice: 0.001, BuyAmount: 10, BuyTxHash: "buytx",
		BuyTime: f.nowTime.Add(-3 * time.Hour), Status: domain.TradeStatusOpen,
	}
	require.NoError(t, f.trades.InsertOpen(ctx, trade))
	f.market.prices["TokenA"] = 0.00085 // -15%, stop loss
	f.seller.sellErr = fmt.Errorf("sell swap: all strategies failed")

	require.NoError(t, f.monitor.RunCycle(ctx))
	assert.Equal(t, 1, f.monitor.Stats().Open)

	// Next cycle the sell works.
	f.seller.sellErr = nil
	require.NoError(t, f.monitor.RunCycle(ctx))
	assert.Equal(t, []string{domain.ExitReasonStopLoss}, f.seller.reasons)
	assert.Equal(t, 0, f.monitor.Stats().Open)
}

func TestMonitorMissingPriceSkipsPosition(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()

	trade := &domain.Trade{
		TradeID: "trade1", TokenAddress: "TokenA", TokenSymbol: "MEME", TokenDecimals: 6,
		BuyPrice: 0.001, BuyAmount: 10, BuyTxHash: "buytx",
		BuyTime: f.nowTime.Add(-30 * time.Hour), Status: domain.TradeStatusOpen,
	}
	require.NoError(t, f.trades.InsertOpen(ctx, trade))
	// No price available: even a 30h-old position cannot be valued, so it
	// is left alone this cycle.

	require.NoError(t, f.monitor.RunCycle(ctx))
	assert.Empty(t, f.seller.sold)

	obs, err := f.history.GetByTrade(ctx, "trade1")
	require.NoError(t, err)
	assert.Empty(t, obs)
}
